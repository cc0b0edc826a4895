package export

import (
	"context"
	"fmt"
	"html/template"

	"go.uber.org/zap"

	"irondoc/client/internal/access"
	"irondoc/client/internal/render"
)

type converter func(ctx context.Context, html string) ([]byte, error)

// Service provides document export functionality.
type Service struct {
	logger *zap.Logger
	pdf    converter
	docx   converter
}

func NewService(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger, pdf: htmlToPDF, docx: htmlToDOCX}
}

// Export generates an export in the requested format. History is limited to
// the revisions req.Viewer may see.
func (s *Service) Export(ctx context.Context, req Request) (*Result, error) {
	doc := req.Document
	data := TemplateData{
		Title:        doc.Title,
		OwnerName:    doc.OwnerName,
		OwnerEmail:   doc.OwnerEmail,
		LastEditedBy: doc.LastEditedBy,
		UpdatedAt:    doc.UpdatedAt,
		ContentHTML:  template.HTML(render.Sanitize(render.ForEditor(doc.Content))),
		History:      []TemplateRevision{},
	}
	if req.IncludeHistory {
		for _, entry := range access.History(req.Viewer, doc) {
			data.History = append(data.History, TemplateRevision{
				ID:        entry.Revision.ID.String(),
				Author:    firstNonEmpty(entry.Revision.AuthorName, entry.Revision.AuthorEmail),
				CreatedAt: entry.Revision.CreatedAt,
				Changes:   entry.Revision.Changes,
				Current:   entry.Current,
			})
		}
	}

	html, err := RenderDocumentHTML(data)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	name := sanitizeFilename(doc.Title)
	s.logger.Debug("export document",
		zap.String("document_id", doc.ID.String()),
		zap.String("format", string(req.Format)),
		zap.Int("history_entries", len(data.History)),
	)

	switch req.Format {
	case FormatHTML:
		return &Result{Data: []byte(html), Filename: name + ".html", MimeType: "text/html; charset=utf-8"}, nil
	case FormatPDF:
		out, err := s.pdf(ctx, html)
		if err != nil {
			return nil, err
		}
		return &Result{Data: out, Filename: name + ".pdf", MimeType: "application/pdf"}, nil
	case FormatDOCX:
		out, err := s.docx(ctx, html)
		if err != nil {
			return nil, err
		}
		return &Result{
			Data:     out,
			Filename: name + ".docx",
			MimeType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", req.Format)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
