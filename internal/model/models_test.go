package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"irondoc/client/internal/rbac"
)

func TestDocumentDecodesSnakeCaseAndUnderscoreIDs(t *testing.T) {
	payload := `{
		"_id": 42,
		"title": "Runbook",
		"content": "# Steps",
		"owner_email": "ana@example.com",
		"owner_name": "Ana",
		"created_at": "2025-03-01T10:00:00",
		"updated_at": "Sat, 01 Mar 2025 12:30:00 GMT",
		"is_public": true,
		"last_edited_by": "Ana",
		"revisions": [
			{"_id": "r1", "author_email": "ana@example.com", "author_name": "Ana", "created_at": "2025-03-01T10:00:00.123456", "changes": "Created"},
			{"id": 7, "authorEmail": "bo@example.com", "createdAt": "2025-03-01T11:00:00Z"}
		]
	}`

	var doc Document
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if doc.ID != "42" {
		t.Fatalf("expected id 42, got %q", doc.ID)
	}
	if doc.OwnerEmail != "ana@example.com" || doc.OwnerName != "Ana" {
		t.Fatalf("unexpected owner: %+v", doc)
	}
	if !doc.IsPublic {
		t.Fatal("expected is_public to be honored")
	}
	if doc.LastEditedBy != "Ana" {
		t.Fatalf("expected last editor Ana, got %q", doc.LastEditedBy)
	}
	wantCreated := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	if !doc.CreatedAt.Equal(wantCreated) {
		t.Fatalf("expected createdAt %v, got %v", wantCreated, doc.CreatedAt)
	}
	if doc.UpdatedAt.IsZero() {
		t.Fatal("expected RFC1123 updated_at to parse")
	}
	if len(doc.Revisions) != 2 {
		t.Fatalf("expected 2 revisions, got %d", len(doc.Revisions))
	}
	if doc.Revisions[0].ID != "r1" || doc.Revisions[0].AuthorEmail != "ana@example.com" {
		t.Fatalf("unexpected first revision: %+v", doc.Revisions[0])
	}
	if doc.Revisions[1].ID != "7" || doc.Revisions[1].AuthorEmail != "bo@example.com" {
		t.Fatalf("unexpected second revision: %+v", doc.Revisions[1])
	}
}

func TestDocumentPrefersCamelCase(t *testing.T) {
	var doc Document
	payload := `{"id":"d1","ownerEmail":"camel@example.com","owner_email":"snake@example.com"}`
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if doc.OwnerEmail != "camel@example.com" {
		t.Fatalf("expected camelCase to win, got %q", doc.OwnerEmail)
	}
}

func TestUserDecodesAvatarAliases(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    string
	}{
		{name: "avatarURL", payload: `{"email":"a@x.com","avatarURL":"https://img/1"}`, want: "https://img/1"},
		{name: "avatarUrl", payload: `{"email":"a@x.com","avatarUrl":"https://img/2"}`, want: "https://img/2"},
		{name: "avatar", payload: `{"email":"a@x.com","avatar":"https://img/3"}`, want: "https://img/3"},
		{name: "none", payload: `{"email":"a@x.com"}`, want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var u User
			if err := json.Unmarshal([]byte(tc.payload), &u); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if u.AvatarURL != tc.want {
				t.Fatalf("AvatarURL = %q, want %q", u.AvatarURL, tc.want)
			}
		})
	}
}

func TestUserRoundTripKeepsRole(t *testing.T) {
	in := User{ID: "1", Name: "Alice", Email: "alice@x.com", Role: rbac.RoleEditor, AvatarURL: "data:image/png;base64,AAAA"}
	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var out User
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: got %+v want %+v", out, in)
	}
}

func TestValidate(t *testing.T) {
	if err := (Document{}).Validate(); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for missing id, got %v", err)
	}
	doc := Document{ID: "d1", Revisions: []Revision{{ID: "r1"}, {}}}
	if err := doc.Validate(); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for revision without id, got %v", err)
	}
	if err := (Document{ID: "d1"}).Validate(); err != nil {
		t.Fatalf("expected document without revisions to be valid, got %v", err)
	}
	if err := (User{Name: "x"}).Validate(); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for user without email, got %v", err)
	}
}

func TestIDRejectsObjects(t *testing.T) {
	var id ID
	if err := json.Unmarshal([]byte(`{"x":1}`), &id); err == nil {
		t.Fatal("expected object id to be rejected")
	}
}

func TestParseTimeUnknownLayout(t *testing.T) {
	if got := ParseTime("yesterday"); !got.IsZero() {
		t.Fatalf("expected zero time, got %v", got)
	}
}
