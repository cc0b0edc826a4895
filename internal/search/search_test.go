package search

import (
	"errors"
	"strings"
	"testing"
	"time"

	meili "github.com/meilisearch/meilisearch-go"
	"go.uber.org/zap"
)

type fakeIndex struct {
	healthy  bool
	searchFn func(q Query) ([]Result, int, error)
	indexed  chan []DocumentRecord
	deleted  chan string
}

func (f *fakeIndex) Healthy() bool { return f.healthy }

func (f *fakeIndex) Search(q Query) ([]Result, int, error) {
	return f.searchFn(q)
}

func (f *fakeIndex) IndexDocuments(docs []DocumentRecord) error {
	f.indexed <- docs
	return nil
}

func (f *fakeIndex) DeleteDocument(id string) error {
	f.deleted <- id
	return nil
}

func records() []DocumentRecord {
	return []DocumentRecord{
		{ID: "1", Title: "Onboarding Guide", Content: "Welcome aboard"},
		{ID: "2", Title: "Release checklist", Content: "Tag, build and publish the guide"},
		{ID: "3", Title: "Incident runbook", Content: "Page the on-call"},
	}
}

func TestLocalSearchTitleThenContent(t *testing.T) {
	local := NewLocal()
	local.Replace(records())

	results, total, err := local.Search(Query{Text: "GUIDE"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if total != 2 || len(results) != 2 {
		t.Fatalf("expected 2 hits, got %d/%d", len(results), total)
	}
	if results[0].ID != "1" || results[1].ID != "2" {
		t.Fatalf("expected title hit before content hit, got %+v", results)
	}
}

func TestLocalSearchEmptyQueryListsAll(t *testing.T) {
	local := NewLocal()
	local.Replace(records())
	results, total, _ := local.Search(Query{})
	if total != 3 || len(results) != 3 {
		t.Fatalf("expected all documents, got %d", total)
	}
}

func TestLocalSearchPaging(t *testing.T) {
	local := NewLocal()
	local.Replace(records())
	results, total, _ := local.Search(Query{Limit: 1, Offset: 1})
	if total != 3 || len(results) != 1 || results[0].ID != "2" {
		t.Fatalf("unexpected page: %+v total %d", results, total)
	}
	results, _, _ = local.Search(Query{Offset: 10})
	if results == nil || len(results) != 0 {
		t.Fatalf("expected empty page, got %#v", results)
	}
}

func TestLocalRemove(t *testing.T) {
	local := NewLocal()
	local.Replace(records())
	local.Remove("2")
	if local.Has("2") {
		t.Fatal("expected document 2 removed")
	}
	if !local.Has("1") {
		t.Fatal("expected document 1 kept")
	}
}

func TestSnippetCentersOnMatch(t *testing.T) {
	content := strings.Repeat("a", 200) + "needle" + strings.Repeat("b", 200)
	got := snippet(content, "needle")
	if len([]rune(got)) != snippetRunes || !strings.Contains(got, "needle") {
		t.Fatalf("unexpected snippet %q", got)
	}
}

func TestServiceFallsBackWithoutRemote(t *testing.T) {
	svc := NewService(nil, zap.NewNop())
	svc.Sync(records())
	resp := svc.Search(Query{Text: "runbook"})
	if resp.Backend != "local" || resp.Total != 1 || resp.Results[0].ID != "3" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestServicePrefersHealthyRemote(t *testing.T) {
	remote := &fakeIndex{
		healthy: true,
		indexed: make(chan []DocumentRecord, 1),
		deleted: make(chan string, 1),
		searchFn: func(q Query) ([]Result, int, error) {
			return []Result{{ID: "2", Title: "Release [check]list"}, {ID: "gone", Title: "Stale"}}, 2, nil
		},
	}
	svc := &Service{remote: remote, local: NewLocal(), logger: zap.NewNop()}
	svc.Sync(records())

	select {
	case batch := <-remote.indexed:
		if len(batch) != 3 {
			t.Fatalf("expected 3 records indexed, got %d", len(batch))
		}
	case <-time.After(time.Second):
		t.Fatal("expected records pushed to remote index")
	}

	resp := svc.Search(Query{Text: "check"})
	if resp.Backend != "meilisearch" {
		t.Fatalf("expected remote backend, got %q", resp.Backend)
	}
	if len(resp.Results) != 1 || resp.Results[0].ID != "2" || resp.Total != 1 {
		t.Fatalf("expected stale hit dropped, got %+v", resp)
	}

	svc.Remove("2")
	select {
	case id := <-remote.deleted:
		if id != "2" {
			t.Fatalf("deleted %q", id)
		}
	case <-time.After(time.Second):
		t.Fatal("expected delete pushed to remote index")
	}
}

func TestServiceAddsDocumentsNotYetIndexed(t *testing.T) {
	remote := &fakeIndex{
		healthy: true,
		indexed: make(chan []DocumentRecord, 1),
		searchFn: func(Query) ([]Result, int, error) {
			return []Result{}, 0, nil
		},
	}
	svc := &Service{remote: remote, local: NewLocal(), logger: zap.NewNop()}
	svc.Sync(records())

	resp := svc.Search(Query{Text: "onboarding"})
	if resp.Backend != "meilisearch" {
		t.Fatalf("expected remote backend, got %q", resp.Backend)
	}
	if len(resp.Results) != 1 || resp.Results[0].ID != "1" || resp.Total != 1 {
		t.Fatalf("expected fresh document in results, got %+v", resp)
	}

	svc.Wait()
	select {
	case batch := <-remote.indexed:
		if len(batch) != 3 {
			t.Fatalf("expected 3 records indexed, got %d", len(batch))
		}
	default:
		t.Fatal("Wait returned before the index push finished")
	}
}

func TestServiceMergeRespectsLimit(t *testing.T) {
	remote := &fakeIndex{
		healthy: true,
		indexed: make(chan []DocumentRecord, 1),
		searchFn: func(Query) ([]Result, int, error) {
			return []Result{{ID: "2", Title: "Release checklist"}}, 1, nil
		},
	}
	svc := &Service{remote: remote, local: NewLocal(), logger: zap.NewNop()}
	svc.Sync(records())
	svc.Wait()

	resp := svc.Search(Query{Text: "guide", Limit: 1})
	if len(resp.Results) != 1 || resp.Results[0].ID != "2" {
		t.Fatalf("expected remote hit to fill the page, got %+v", resp.Results)
	}
	if resp.Total != 2 {
		t.Fatalf("expected total to count unindexed matches, got %d", resp.Total)
	}
}

func TestServiceFallsBackOnRemoteError(t *testing.T) {
	remote := &fakeIndex{
		healthy: true,
		indexed: make(chan []DocumentRecord, 1),
		searchFn: func(Query) ([]Result, int, error) {
			return nil, 0, errors.New("boom")
		},
	}
	svc := &Service{remote: remote, local: NewLocal(), logger: zap.NewNop()}
	svc.Sync(records())
	<-remote.indexed

	resp := svc.Search(Query{Text: "incident"})
	if resp.Backend != "local" || resp.Total != 1 {
		t.Fatalf("expected local fallback, got %+v", resp)
	}
}

func TestServiceSkipsUnhealthyRemote(t *testing.T) {
	remote := &fakeIndex{
		healthy: false,
		searchFn: func(Query) ([]Result, int, error) {
			t.Fatal("unhealthy remote must not be queried")
			return nil, 0, nil
		},
	}
	svc := &Service{remote: remote, local: NewLocal(), logger: zap.NewNop()}
	svc.Sync(records())
	if resp := svc.Search(Query{Text: "guide"}); resp.Backend != "local" {
		t.Fatalf("expected local backend, got %q", resp.Backend)
	}
}

func TestHitToResult(t *testing.T) {
	hit := meili.Hit{
		"id":         []byte(`7`),
		"title":      []byte(`"Runbook"`),
		"content":    []byte(`"Page the on-call"`),
		"ownerEmail": []byte(`"ana@x.com"`),
		"_formatted": []byte(`{"title":"[Run]book","content":"…the on-call…","id":"7"}`),
	}
	got := hitToResult(hit)
	want := Result{ID: "7", Title: "[Run]book", Snippet: "…the on-call…", OwnerEmail: "ana@x.com"}
	if got != want {
		t.Fatalf("hitToResult() = %+v, want %+v", got, want)
	}
}
