package search

import (
	"sync"

	"go.uber.org/zap"
)

// index is the subset of Meili the service depends on.
type index interface {
	Searcher
	Indexer
}

// Service is the facade that tries Meilisearch first and falls back to the
// local snapshot. Remote hits are kept only when they name a document in the
// snapshot, and snapshot matches the index has not caught up with are added,
// so the server's latest list stays authoritative.
type Service struct {
	remote  index
	local   *Local
	logger  *zap.Logger
	pending sync.WaitGroup
}

// NewService creates a search service. remote may be nil when Meilisearch is
// not configured.
func NewService(remote *Meili, logger *zap.Logger) *Service {
	s := &Service{local: NewLocal(), logger: logger}
	if remote != nil {
		s.remote = remote
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

func (s *Service) Search(q Query) Response {
	if s.remote != nil && s.remote.Healthy() {
		results, total, err := s.remote.Search(q)
		if err == nil {
			kept := s.known(results)
			if dropped := len(results) - len(kept); dropped > 0 {
				total -= dropped
			}
			kept, total = s.withUnindexed(q, kept, total)
			return Response{Results: kept, Total: total, Query: q.Text, Backend: "meilisearch"}
		}
		s.logger.Warn("meilisearch error, falling back to local search", zap.Error(err))
	}

	results, total, _ := s.local.Search(q)
	return Response{Results: nonNil(results), Total: total, Query: q.Text, Backend: "local"}
}

func (s *Service) known(results []Result) []Result {
	kept := make([]Result, 0, len(results))
	for _, r := range results {
		if s.local.Has(r.ID) {
			kept = append(kept, r)
		}
	}
	return kept
}

// withUnindexed appends snapshot matches missing from the remote hits, up to
// the page limit. total never drops below the snapshot's match count.
func (s *Service) withUnindexed(q Query, kept []Result, total int) ([]Result, int) {
	local, localTotal, _ := s.local.Search(q)
	if localTotal > total {
		total = localTotal
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	seen := make(map[string]bool, len(kept))
	for _, r := range kept {
		seen[r.ID] = true
	}
	for _, r := range local {
		if len(kept) >= limit {
			break
		}
		if !seen[r.ID] {
			kept = append(kept, r)
			seen[r.ID] = true
		}
	}
	return kept, total
}

// Sync replaces the local snapshot and pushes the records to Meilisearch in
// the background. Wait blocks until the push is done.
func (s *Service) Sync(records []DocumentRecord) {
	s.local.Replace(records)
	if s.remote == nil || !s.remote.Healthy() || len(records) == 0 {
		return
	}
	batch := make([]DocumentRecord, len(records))
	copy(batch, records)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.remote.IndexDocuments(batch); err != nil {
			s.logger.Warn("index documents", zap.Int("count", len(batch)), zap.Error(err))
		}
	}()
}

// Remove drops a deleted document from both indexes. The remote delete runs
// in the background like Sync.
func (s *Service) Remove(id string) {
	s.local.Remove(id)
	if s.remote == nil || !s.remote.Healthy() {
		return
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.remote.DeleteDocument(id); err != nil {
			s.logger.Warn("delete document from index", zap.String("id", id), zap.Error(err))
		}
	}()
}

// Wait blocks until background index updates have finished.
func (s *Service) Wait() {
	s.pending.Wait()
}

func nonNil(r []Result) []Result {
	if r == nil {
		return []Result{}
	}
	return r
}
