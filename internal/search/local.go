package search

import (
	"strings"
	"sync"
	"unicode/utf8"
)

// Local searches the last document list handed to Replace.
type Local struct {
	mu      sync.RWMutex
	records []DocumentRecord
}

func NewLocal() *Local {
	return &Local{}
}

// Replace swaps in a fresh snapshot.
func (l *Local) Replace(records []DocumentRecord) {
	snapshot := make([]DocumentRecord, len(records))
	copy(snapshot, records)
	l.mu.Lock()
	l.records = snapshot
	l.mu.Unlock()
}

func (l *Local) Remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.records[:0:0]
	for _, r := range l.records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	l.records = kept
}

// Has reports whether id is in the current snapshot.
func (l *Local) Has(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, r := range l.records {
		if r.ID == id {
			return true
		}
	}
	return false
}

func (l *Local) Healthy() bool { return true }

// Search matches case-insensitively on title first, then on content, keeping
// list order within each group.
func (l *Local) Search(q Query) ([]Result, int, error) {
	needle := strings.ToLower(strings.TrimSpace(q.Text))
	l.mu.RLock()
	defer l.mu.RUnlock()

	var titleHits, bodyHits []Result
	for _, r := range l.records {
		switch {
		case needle == "" || strings.Contains(strings.ToLower(r.Title), needle):
			titleHits = append(titleHits, toResult(r, ""))
		case strings.Contains(strings.ToLower(r.Content), needle):
			bodyHits = append(bodyHits, toResult(r, needle))
		}
	}
	all := append(titleHits, bodyHits...)
	return page(all, q), len(all), nil
}

func toResult(r DocumentRecord, needle string) Result {
	return Result{ID: r.ID, Title: r.Title, Snippet: snippet(r.Content, needle), OwnerEmail: r.OwnerEmail}
}

const snippetRunes = 80

// snippet returns up to snippetRunes runes of content, centred on needle when
// it occurs.
func snippet(content, needle string) string {
	runes := []rune(content)
	if len(runes) <= snippetRunes {
		return content
	}
	start := 0
	if needle != "" {
		lower := strings.ToLower(content)
		if idx := strings.Index(lower, needle); idx >= 0 {
			start = utf8.RuneCountInString(lower[:idx]) - snippetRunes/4
		}
	}
	if start < 0 {
		start = 0
	}
	if start > len(runes)-snippetRunes {
		start = len(runes) - snippetRunes
	}
	return string(runes[start : start+snippetRunes])
}

func page(results []Result, q Query) []Result {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(results) {
		return []Result{}
	}
	end := offset + limit
	if end > len(results) {
		end = len(results)
	}
	return results[offset:end]
}
