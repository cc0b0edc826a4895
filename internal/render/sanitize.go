package render

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugc    = bluemonday.UGCPolicy()
	strict = bluemonday.StrictPolicy()

	blockBreak = regexp.MustCompile(`(?i)<br\s*/?>|</(p|h[1-6]|div|li|blockquote|pre)>`)
	spaceRun   = regexp.MustCompile(`[ \t]+`)
	blankRun   = regexp.MustCompile(`\n{3,}`)
)

// Sanitize strips scripts, event handlers and unsafe URLs from HTML that is
// about to be exported or shown outside the editor.
func Sanitize(content string) string {
	if content == "" {
		return ""
	}
	return ugc.Sanitize(content)
}

// PlainText renders HTML content as readable terminal text.
func PlainText(content string) string {
	if content == "" {
		return ""
	}
	withBreaks := blockBreak.ReplaceAllStringFunc(content, func(m string) string { return m + "\n" })
	text := html.UnescapeString(strict.Sanitize(withBreaks))
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
	}
	return strings.TrimSpace(blankRun.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))
}

const (
	excerptRunes  = 90
	noDescription = "No description yet."
)

// Excerpt is the one-line description shown in document lists.
func Excerpt(content string) string {
	text := strings.Join(strings.Fields(PlainText(content)), " ")
	if text == "" {
		return noDescription
	}
	if utf8.RuneCountInString(text) <= excerptRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:excerptRunes])
}

// Initials takes the first letter of up to two words of name.
func Initials(name string) string {
	var b strings.Builder
	count := 0
	for _, part := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(part)
		b.WriteString(strings.ToUpper(string(r)))
		count++
		if count == 2 {
			break
		}
	}
	if b.Len() == 0 {
		return "U"
	}
	return b.String()
}
