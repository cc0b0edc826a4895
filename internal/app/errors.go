package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"

	"irondoc/client/internal/access"
	"irondoc/client/internal/apiclient"
	"irondoc/client/internal/export"
)

var (
	ErrNotEditing       = errors.New("not in editing mode")
	ErrNotViewing       = errors.New("not in viewing mode")
	ErrNoSelection      = errors.New("no document selected")
	ErrUnsavedDraft     = errors.New("unsaved draft")
	ErrNotAuthenticated = errors.New("not signed in")
	ErrForbidden        = access.ErrForbidden
)

// DomainError is a failure the client detected itself, before or instead of
// calling the server.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func domainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

func validationError(message string) *DomainError {
	return domainError("VALIDATION_ERROR", message)
}

const (
	msgForbidden   = "You do not have permission to do that."
	msgMalformed   = "The server sent a response IronDoc could not understand."
	msgUnreachable = "Could not reach the server. Check your connection and try again."
	msgCancelled   = "The request was cancelled."
)

// UserMessage turns any error from this package or below into the single
// line shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}

	switch {
	case errors.Is(err, apiclient.ErrMalformedResponse):
		return msgMalformed
	case errors.Is(err, ErrForbidden):
		return msgForbidden
	case errors.Is(err, access.ErrCurrentRevision):
		return "That revision is already the current version."
	case errors.Is(err, access.ErrRevisionNotFound):
		return "That revision does not exist on this document."
	case errors.Is(err, ErrUnsavedDraft):
		return "You have unsaved changes. Save or cancel them first."
	case errors.Is(err, ErrNotEditing):
		return "Nothing is being edited."
	case errors.Is(err, ErrNotViewing):
		return "Finish editing before doing that."
	case errors.Is(err, ErrNoSelection):
		return "Select a document first."
	case errors.Is(err, ErrNotAuthenticated):
		return "Please sign in first."
	case errors.Is(err, export.ErrPDFDependencyMissing):
		return "PDF export needs Chrome or Chromium installed."
	case errors.Is(err, export.ErrDOCXDependencyMissing):
		return "DOCX export needs pandoc installed."
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return msgCancelled
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return msgUnreachable
	}
	return err.Error()
}
