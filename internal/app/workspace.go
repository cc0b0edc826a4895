package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"irondoc/client/internal/access"
	"irondoc/client/internal/apiclient"
	"irondoc/client/internal/model"
	"irondoc/client/internal/render"
	"irondoc/client/internal/search"
)

const (
	newDocumentTitle   = "New Document"
	newDocumentContent = "Start writing..."
)

type Mode int

const (
	ModeViewing Mode = iota
	ModeEditing
)

func (m Mode) String() string {
	switch m {
	case ModeViewing:
		return "viewing"
	case ModeEditing:
		return "editing"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Draft is the editor's unsaved title and content.
type Draft struct {
	Title   string
	Content string
}

type documentAPI interface {
	ListDocuments(ctx context.Context) ([]model.Document, error)
	GetDocument(ctx context.Context, id model.ID) (model.Document, error)
	CreateDocument(ctx context.Context, title, content string) (model.Document, error)
	UpdateDocument(ctx context.Context, id model.ID, patch apiclient.DocumentPatch) (model.Document, error)
	DeleteDocument(ctx context.Context, id model.ID) error
	RestoreRevision(ctx context.Context, docID, revID model.ID) (model.Document, error)
}

type documentIndex interface {
	Sync(records []search.DocumentRecord)
	Remove(id string)
	Search(q search.Query) search.Response
}

// Workspace holds what one signed-in user is looking at: the document list,
// the selected document and, while editing, the draft. The server owns every
// document; the workspace only mirrors its latest answers.
//
// A Workspace is not safe for concurrent use.
type Workspace struct {
	api            documentAPI
	user           model.User
	logger         *zap.Logger
	index          documentIndex
	confirmRestore bool

	documents []model.Document
	notice    string
	selected  *model.Document
	mode      Mode
	draft     Draft
	baseline  Draft
}

type WorkspaceOption func(*Workspace)

func WithLogger(logger *zap.Logger) WorkspaceOption {
	return func(w *Workspace) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithSearch routes Search through svc and keeps its index in step with
// every list refresh.
func WithSearch(svc *search.Service) WorkspaceOption {
	return func(w *Workspace) {
		if svc != nil {
			w.index = svc
		}
	}
}

// WithRestoreConfirmation re-reads the document after a restore and keeps
// that copy instead of the restore response.
func WithRestoreConfirmation() WorkspaceOption {
	return func(w *Workspace) {
		w.confirmRestore = true
	}
}

func NewWorkspace(api documentAPI, user model.User, opts ...WorkspaceOption) *Workspace {
	w := &Workspace{
		api:       api,
		user:      user,
		logger:    zap.NewNop(),
		documents: []model.Document{},
		mode:      ModeViewing,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.index == nil {
		w.index = search.NewService(nil, w.logger)
	}
	return w
}

func (w *Workspace) User() model.User { return w.user }

func (w *Workspace) Mode() Mode { return w.mode }

// Notice is the inline message left by the last failed list load.
func (w *Workspace) Notice() string { return w.notice }

func (w *Workspace) Documents() []model.Document {
	out := make([]model.Document, len(w.documents))
	copy(out, w.documents)
	return out
}

func (w *Workspace) Selected() (model.Document, bool) {
	if w.selected == nil {
		return model.Document{}, false
	}
	return *w.selected, true
}

// Draft returns the current draft. It is empty outside editing mode.
func (w *Workspace) Draft() Draft { return w.draft }

// Dirty reports whether the draft differs from what editing started with.
func (w *Workspace) Dirty() bool {
	return w.mode == ModeEditing && w.draft != w.baseline
}

// Capabilities of the user on the selected document.
func (w *Workspace) Capabilities() access.Capabilities {
	if w.selected == nil {
		return access.Capabilities{Create: access.CanCreate(w.user)}
	}
	return access.For(w.user, *w.selected)
}

// History of the selected document as the user may see it.
func (w *Workspace) History() []access.HistoryEntry {
	if w.selected == nil {
		return []access.HistoryEntry{}
	}
	return access.History(w.user, *w.selected)
}

// LoadDocuments refreshes the list. A failure empties the list and sets
// Notice; it is never returned.
func (w *Workspace) LoadDocuments(ctx context.Context) {
	docs, err := w.api.ListDocuments(ctx)
	if err != nil {
		w.logger.Warn("load documents failed", zap.Error(err))
		w.documents = []model.Document{}
		w.notice = "Failed to load documents: " + UserMessage(err)
		w.index.Sync(nil)
		return
	}
	w.documents = docs
	w.notice = ""
	w.index.Sync(records(docs))
}

func records(docs []model.Document) []search.DocumentRecord {
	out := make([]search.DocumentRecord, 0, len(docs))
	for _, d := range docs {
		out = append(out, search.DocumentRecord{
			ID:         d.ID.String(),
			Title:      d.Title,
			Content:    render.PlainText(render.ForEditor(d.Content)),
			OwnerEmail: d.OwnerEmail,
			OwnerName:  d.OwnerName,
			UpdatedAt:  d.UpdatedAt.Unix(),
		})
	}
	return out
}

// Select fetches id and shows it in viewing mode. A dirty draft blocks the
// switch unless discardDraft is set.
func (w *Workspace) Select(ctx context.Context, id model.ID, discardDraft bool) error {
	if w.Dirty() && !discardDraft {
		return ErrUnsavedDraft
	}
	doc, err := w.api.GetDocument(ctx, id)
	if err != nil {
		return fmt.Errorf("get document %s: %w", id, err)
	}
	if w.Dirty() {
		w.logger.Info("discarding unsaved draft",
			zap.String("document_id", w.selected.ID.String()),
			zap.String("next_document_id", id.String()),
		)
	}
	w.show(doc)
	return nil
}

func (w *Workspace) show(doc model.Document) {
	w.selected = &doc
	w.mode = ModeViewing
	w.draft = Draft{}
	w.baseline = Draft{}
}

// BeginEdit starts editing the selected document.
func (w *Workspace) BeginEdit() error {
	if w.selected == nil {
		return ErrNoSelection
	}
	if w.mode != ModeViewing {
		return ErrNotViewing
	}
	if !access.CanEdit(w.user, *w.selected) {
		return ErrForbidden
	}
	w.startDraft(*w.selected)
	return nil
}

func (w *Workspace) startDraft(doc model.Document) {
	w.mode = ModeEditing
	w.draft = Draft{Title: doc.Title, Content: render.ForEditor(doc.Content)}
	w.baseline = w.draft
}

func (w *Workspace) SetDraft(d Draft) error {
	if w.mode != ModeEditing {
		return ErrNotEditing
	}
	w.draft = d
	return nil
}

// Save sends the draft. On failure the workspace stays in editing mode with
// the draft untouched.
func (w *Workspace) Save(ctx context.Context) error {
	if w.mode != ModeEditing {
		return ErrNotEditing
	}
	if w.selected == nil {
		return ErrNoSelection
	}
	title, content := w.draft.Title, w.draft.Content
	doc, err := w.api.UpdateDocument(ctx, w.selected.ID, apiclient.DocumentPatch{Title: &title, Content: &content})
	if err != nil {
		return fmt.Errorf("save document %s: %w", w.selected.ID, err)
	}
	w.show(doc)
	w.LoadDocuments(ctx)
	return nil
}

// Cancel drops the draft without contacting the server.
func (w *Workspace) Cancel() error {
	if w.mode != ModeEditing {
		return ErrNotEditing
	}
	w.mode = ModeViewing
	w.draft = Draft{}
	w.baseline = Draft{}
	return nil
}

// Create makes a placeholder document, selects it and opens it for editing.
func (w *Workspace) Create(ctx context.Context) error {
	if !access.CanCreate(w.user) {
		return ErrForbidden
	}
	if w.Dirty() {
		return ErrUnsavedDraft
	}
	doc, err := w.api.CreateDocument(ctx, newDocumentTitle, newDocumentContent)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	w.LoadDocuments(ctx)
	w.show(doc)
	w.startDraft(doc)
	return nil
}

// Delete removes id. The selection, and any draft on it, is cleared if it
// was the deleted document.
func (w *Workspace) Delete(ctx context.Context, id model.ID) error {
	doc, ok := w.find(id)
	if !ok {
		fetched, err := w.api.GetDocument(ctx, id)
		if err != nil {
			return fmt.Errorf("get document %s: %w", id, err)
		}
		doc = fetched
	}
	if !access.CanDelete(w.user, doc) {
		return ErrForbidden
	}
	if err := w.api.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	w.index.Remove(id.String())
	w.LoadDocuments(ctx)
	if w.selected != nil && w.selected.ID == id {
		w.selected = nil
		w.mode = ModeViewing
		w.draft = Draft{}
		w.baseline = Draft{}
	}
	return nil
}

func (w *Workspace) find(id model.ID) (model.Document, bool) {
	if w.selected != nil && w.selected.ID == id {
		return *w.selected, true
	}
	for _, d := range w.documents {
		if d.ID == id {
			return d, true
		}
	}
	return model.Document{}, false
}

// Restore asks the server to restore revID on the selected document and
// replaces the held copy with the server's answer.
func (w *Workspace) Restore(ctx context.Context, revID model.ID) error {
	if w.selected == nil {
		return ErrNoSelection
	}
	if w.mode != ModeViewing {
		return ErrNotViewing
	}
	if err := access.CheckRestore(w.user, *w.selected, revID); err != nil {
		return err
	}
	docID := w.selected.ID
	doc, err := w.api.RestoreRevision(ctx, docID, revID)
	if err != nil {
		return fmt.Errorf("restore revision %s of %s: %w", revID, docID, err)
	}
	if w.confirmRestore {
		confirmed, err := w.api.GetDocument(ctx, docID)
		if err != nil {
			w.logger.Warn("restore confirmation fetch failed", zap.String("document_id", docID.String()), zap.Error(err))
		} else {
			doc = confirmed
		}
	}
	w.LoadDocuments(ctx)
	w.show(doc)
	return nil
}

// Filter returns the listed documents whose title contains query,
// case-insensitively. An empty query returns every document.
func (w *Workspace) Filter(query string) []model.Document {
	needle := strings.ToLower(strings.TrimSpace(query))
	out := make([]model.Document, 0, len(w.documents))
	for _, d := range w.documents {
		if needle == "" || strings.Contains(strings.ToLower(d.Title), needle) {
			out = append(out, d)
		}
	}
	return out
}

// Search looks through titles and content, using the shared index when one
// is configured and healthy.
func (w *Workspace) Search(query string, limit int) search.Response {
	return w.index.Search(search.Query{Text: query, Limit: limit})
}
