// Package model holds the document, revision and user schemas exchanged with
// the IronDoc API.
package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"irondoc/client/internal/rbac"
)

// ErrInvalid marks a payload that decoded but is missing required fields.
var ErrInvalid = errors.New("invalid payload")

// ID is a server-assigned identifier. The API emits both strings and numbers.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

type User struct {
	ID        ID        `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      rbac.Role `json:"role"`
	AvatarURL string    `json:"avatarURL,omitempty"`
}

type userWire struct {
	ID             ID     `json:"id"`
	UnderscoreID   ID     `json:"_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	AvatarURL      string `json:"avatarURL"`
	AvatarURLLower string `json:"avatarUrl"`
	AvatarURLSnake string `json:"avatar_url"`
	Avatar         string `json:"avatar"`
}

func (u *User) UnmarshalJSON(data []byte) error {
	var w userWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*u = User{
		ID:        ID(firstNonBlank(string(w.ID), string(w.UnderscoreID))),
		Name:      w.Name,
		Email:     w.Email,
		Role:      rbac.Role(w.Role),
		AvatarURL: firstNonBlank(w.AvatarURL, w.AvatarURLLower, w.AvatarURLSnake, w.Avatar),
	}
	return nil
}

// Validate reports whether the user can be used as an identity.
func (u User) Validate() error {
	if u.Email == "" {
		return fmt.Errorf("%w: user without email", ErrInvalid)
	}
	return nil
}

type Revision struct {
	ID          ID        `json:"id"`
	AuthorEmail string    `json:"authorEmail"`
	AuthorName  string    `json:"authorName"`
	CreatedAt   time.Time `json:"createdAt"`
	Changes     string    `json:"changes"`
}

type revisionWire struct {
	ID               ID     `json:"id"`
	UnderscoreID     ID     `json:"_id"`
	AuthorEmail      string `json:"authorEmail"`
	AuthorEmailSnake string `json:"author_email"`
	AuthorName       string `json:"authorName"`
	AuthorNameSnake  string `json:"author_name"`
	CreatedAt        string `json:"createdAt"`
	CreatedAtSnake   string `json:"created_at"`
	Changes          string `json:"changes"`
}

func (r *Revision) UnmarshalJSON(data []byte) error {
	var w revisionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = Revision{
		ID:          ID(firstNonBlank(string(w.ID), string(w.UnderscoreID))),
		AuthorEmail: firstNonBlank(w.AuthorEmail, w.AuthorEmailSnake),
		AuthorName:  firstNonBlank(w.AuthorName, w.AuthorNameSnake),
		CreatedAt:   ParseTime(firstNonBlank(w.CreatedAt, w.CreatedAtSnake)),
		Changes:     w.Changes,
	}
	return nil
}

// Document is a wiki page. Revisions are kept in the order the server sent
// them, oldest first; the last element is the current revision.
type Document struct {
	ID           ID         `json:"id"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	OwnerEmail   string     `json:"ownerEmail"`
	OwnerName    string     `json:"ownerName"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	IsPublic     bool       `json:"isPublic"`
	LastEditedBy string     `json:"lastEditedBy,omitempty"`
	Revisions    []Revision `json:"revisions"`
}

type documentWire struct {
	ID                ID         `json:"id"`
	UnderscoreID      ID         `json:"_id"`
	Title             string     `json:"title"`
	Content           string     `json:"content"`
	OwnerEmail        string     `json:"ownerEmail"`
	OwnerEmailSnake   string     `json:"owner_email"`
	OwnerName         string     `json:"ownerName"`
	OwnerNameSnake    string     `json:"owner_name"`
	CreatedAt         string     `json:"createdAt"`
	CreatedAtSnake    string     `json:"created_at"`
	UpdatedAt         string     `json:"updatedAt"`
	UpdatedAtSnake    string     `json:"updated_at"`
	IsPublic          bool       `json:"isPublic"`
	IsPublicSnake     bool       `json:"is_public"`
	LastEditedBy      ID         `json:"lastEditedBy"`
	LastEditedBySnake ID         `json:"last_edited_by"`
	Revisions         []Revision `json:"revisions"`
}

func (d *Document) UnmarshalJSON(data []byte) error {
	var w documentWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*d = Document{
		ID:           ID(firstNonBlank(string(w.ID), string(w.UnderscoreID))),
		Title:        w.Title,
		Content:      w.Content,
		OwnerEmail:   firstNonBlank(w.OwnerEmail, w.OwnerEmailSnake),
		OwnerName:    firstNonBlank(w.OwnerName, w.OwnerNameSnake),
		CreatedAt:    ParseTime(firstNonBlank(w.CreatedAt, w.CreatedAtSnake)),
		UpdatedAt:    ParseTime(firstNonBlank(w.UpdatedAt, w.UpdatedAtSnake)),
		IsPublic:     w.IsPublic || w.IsPublicSnake,
		LastEditedBy: firstNonBlank(string(w.LastEditedBy), string(w.LastEditedBySnake)),
		Revisions:    w.Revisions,
	}
	return nil
}

// Validate checks the fields the client relies on for identity and history.
func (d Document) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("%w: document without id", ErrInvalid)
	}
	for i, rev := range d.Revisions {
		if rev.ID == "" {
			return fmt.Errorf("%w: document %s revision %d without id", ErrInvalid, d.ID, i)
		}
	}
	return nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.RFC1123,
	time.RFC1123Z,
}

// ParseTime accepts the timestamp shapes the API has been seen to emit.
// Unparseable input yields the zero time.
func ParseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

func firstNonBlank(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
