// Package access decides what a user may do with a document and which parts
// of its revision history they may see. Every function is pure and total.
package access

import (
	"errors"

	"irondoc/client/internal/model"
	"irondoc/client/internal/rbac"
)

var (
	ErrForbidden        = errors.New("not allowed to modify this document")
	ErrRevisionNotFound = errors.New("revision not found")
	ErrCurrentRevision  = errors.New("revision is already current")
)

// Capabilities summarizes the document actions available to one user.
type Capabilities struct {
	Edit        bool
	Delete      bool
	Create      bool
	ViewHistory bool
}

// HistoryEntry is a visible revision annotated for display.
type HistoryEntry struct {
	Revision   model.Revision
	Current    bool
	Restorable bool
}

func role(u model.User) rbac.Role {
	return rbac.Normalize(string(u.Role))
}

func owns(u model.User, d model.Document) bool {
	return u.Email != "" && d.OwnerEmail == u.Email
}

func CanEdit(u model.User, d model.Document) bool {
	return rbac.Can(role(u), rbac.ActionEditAny) || owns(u, d)
}

func CanDelete(u model.User, d model.Document) bool {
	return CanEdit(u, d)
}

func CanCreate(u model.User) bool {
	return rbac.Can(role(u), rbac.ActionCreate)
}

func CanListUsers(u model.User) bool {
	return rbac.Can(role(u), rbac.ActionListUsers)
}

// CanViewHistory reports whether any part of a revision history is shown.
func CanViewHistory(u model.User) bool {
	r := role(u)
	return rbac.Can(r, rbac.ActionHistoryAll) || rbac.Can(r, rbac.ActionHistoryOwn)
}

func For(u model.User, d model.Document) Capabilities {
	return Capabilities{
		Edit:        CanEdit(u, d),
		Delete:      CanDelete(u, d),
		Create:      CanCreate(u),
		ViewHistory: CanViewHistory(u),
	}
}

// VisibleRevisions returns the revisions u may see, in storage order.
// The result is never nil and never aliases d.Revisions.
func VisibleRevisions(u model.User, d model.Document) []model.Revision {
	r := role(u)
	switch {
	case rbac.Can(r, rbac.ActionHistoryAll):
		out := make([]model.Revision, len(d.Revisions))
		copy(out, d.Revisions)
		return out
	case rbac.Can(r, rbac.ActionHistoryOwn):
		out := make([]model.Revision, 0, len(d.Revisions))
		if u.Email == "" {
			return out
		}
		for _, rev := range d.Revisions {
			if rev.AuthorEmail == u.Email {
				out = append(out, rev)
			}
		}
		return out
	default:
		return []model.Revision{}
	}
}

// CurrentRevisionID is the id of the last revision in storage order,
// independent of what any user may see.
func CurrentRevisionID(d model.Document) (model.ID, bool) {
	if len(d.Revisions) == 0 {
		return "", false
	}
	return d.Revisions[len(d.Revisions)-1].ID, true
}

// History returns the visible revisions most recent first.
func History(u model.User, d model.Document) []HistoryEntry {
	visible := VisibleRevisions(u, d)
	currentID, hasCurrent := CurrentRevisionID(d)
	editable := CanEdit(u, d)

	entries := make([]HistoryEntry, 0, len(visible))
	for i := len(visible) - 1; i >= 0; i-- {
		rev := visible[i]
		current := hasCurrent && rev.ID == currentID
		entries = append(entries, HistoryEntry{
			Revision:   rev,
			Current:    current,
			Restorable: editable && !current,
		})
	}
	return entries
}

// CheckRestore returns nil when u may restore revID on d.
func CheckRestore(u model.User, d model.Document, revID model.ID) error {
	if !CanEdit(u, d) {
		return ErrForbidden
	}
	found := false
	for _, rev := range d.Revisions {
		if rev.ID == revID {
			found = true
			break
		}
	}
	if !found {
		return ErrRevisionNotFound
	}
	if currentID, ok := CurrentRevisionID(d); ok && currentID == revID {
		return ErrCurrentRevision
	}
	return nil
}
