package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"irondoc/client/internal/access"
	"irondoc/client/internal/apiclient"
)

func TestUserMessage(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "domain", err: validationError("Passwords do not match"), want: "Passwords do not match"},
		{name: "api error", err: fmt.Errorf("save: %w", &apiclient.APIError{Status: 404, Message: "Document not found"}), want: "Document not found"},
		{name: "malformed", err: fmt.Errorf("%w: missing id", apiclient.ErrMalformedResponse), want: msgMalformed},
		{name: "forbidden", err: ErrForbidden, want: msgForbidden},
		{name: "current revision", err: access.ErrCurrentRevision, want: "That revision is already the current version."},
		{name: "unsaved", err: ErrUnsavedDraft, want: "You have unsaved changes. Save or cancel them first."},
		{name: "cancelled", err: fmt.Errorf("list: %w", context.Canceled), want: msgCancelled},
		{name: "transport", err: &url.Error{Op: "Get", URL: "http://localhost:5000/api/documents", Err: errors.New("connection refused")}, want: msgUnreachable},
		{name: "other", err: errors.New("disk full"), want: "disk full"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := UserMessage(tc.err); got != tc.want {
				t.Fatalf("UserMessage() = %q, want %q", got, tc.want)
			}
		})
	}
}
