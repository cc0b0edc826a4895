// Package export renders a document, together with the revision history its
// viewer is allowed to see, as HTML, PDF or DOCX.
package export

import (
	"errors"
	"strings"

	"irondoc/client/internal/model"
)

type Format string

const (
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// ParseFormat accepts a format name case-insensitively.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatHTML:
		return FormatHTML, nil
	case FormatPDF:
		return FormatPDF, nil
	case FormatDOCX:
		return FormatDOCX, nil
	default:
		return "", errors.New("unsupported format: " + value)
	}
}

// Request contains parameters for an export operation.
type Request struct {
	Document       model.Document
	Viewer         model.User
	Format         Format
	IncludeHistory bool
}

// Result contains the export output.
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

var (
	// ErrPDFDependencyMissing indicates no Chrome or Chromium binary was found.
	ErrPDFDependencyMissing = errors.New("export pdf dependency missing")
	// ErrDOCXDependencyMissing indicates pandoc is not installed.
	ErrDOCXDependencyMissing = errors.New("export docx dependency missing")
)
