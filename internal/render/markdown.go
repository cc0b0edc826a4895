// Package render converts document content between the forms the client
// handles: legacy markdown, editor HTML and plain text for terminals.
package render

import (
	"regexp"
	"strings"
)

var (
	h3Pattern     = regexp.MustCompile(`(?im)^### (.*)$`)
	h2Pattern     = regexp.MustCompile(`(?im)^## (.*)$`)
	h1Pattern     = regexp.MustCompile(`(?im)^# (.*)$`)
	strongPattern = regexp.MustCompile(`\*\*(.+?)\*\*`)
	emPattern     = regexp.MustCompile(`\*(.+?)\*`)
	htmlTag       = regexp.MustCompile(`(?i)^\s*<(p|h[1-6]|div|ul|ol|li|blockquote|pre|table|strong|em|br|span|a|img)\b`)
)

// MarkdownToHTML handles the small markdown subset older documents were
// written in: three heading levels, bold, italics and line breaks. Anything
// else passes through untouched.
func MarkdownToHTML(md string) string {
	if md == "" {
		return ""
	}
	md = strings.ReplaceAll(md, "\r\n", "\n")
	out := h3Pattern.ReplaceAllString(md, "<h3>$1</h3>")
	out = h2Pattern.ReplaceAllString(out, "<h2>$1</h2>")
	out = h1Pattern.ReplaceAllString(out, "<h1>$1</h1>")
	out = strongPattern.ReplaceAllString(out, "<strong>$1</strong>")
	out = emPattern.ReplaceAllString(out, "<em>$1</em>")
	return strings.ReplaceAll(out, "\n", "<br/>")
}

// LooksLikeHTML reports whether content already starts with editor markup.
func LooksLikeHTML(content string) bool {
	return htmlTag.MatchString(content)
}

// ForEditor returns content ready for the editor: HTML passes through and
// legacy markdown is converted.
func ForEditor(content string) string {
	if LooksLikeHTML(content) {
		return content
	}
	return MarkdownToHTML(content)
}
