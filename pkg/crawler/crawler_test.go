package crawler

import (
	"context"
	"errors"
	"os"
	"reflect"
	"testing"

	"talk-catalog/pkg/domain"
	"talk-catalog/pkg/history"
	"talk-catalog/pkg/snapshot"
)

// fakeSource serves a fixed show, consulting the history index like a
// real adapter.
type fakeSource struct {
	name string
	show domain.Show
	err  error
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(ctx context.Context, hist *history.Index) (*domain.Show, error) {
	if f.err != nil {
		return nil, f.err
	}
	show := f.show
	show.Broadcasts = nil
	for _, broadcast := range f.show.Broadcasts {
		if old, ok := hist.ReuseAndRemove(broadcast.URL); ok {
			show.Broadcasts = append(show.Broadcasts, old)
			continue
		}
		show.Broadcasts = append(show.Broadcasts, broadcast)
	}
	return &show, nil
}

// fakeEnricher marks every unenriched broadcast with a fixed guest and
// records which broadcast URLs it saw.
type fakeEnricher struct {
	seen        []string
	checkpoints int
}

func (f *fakeEnricher) EnrichShow(ctx context.Context, show *domain.Show, afterBatch func() error) error {
	for _, broadcast := range show.Unenriched() {
		f.seen = append(f.seen, broadcast.URL)
		broadcast.Guests = append(broadcast.Guests, domain.Person{Name: "Extrahiert", Functions: []string{}})
	}
	if afterBatch != nil {
		f.checkpoints++
		return afterBatch()
	}
	return nil
}

func newTestCrawler(t *testing.T, baseDir string, sources []Source, enricher Enricher) *Crawler {
	t.Helper()
	return New(Config{
		Sources:   sources,
		Enricher:  enricher,
		Snapshots: snapshot.NewStore(baseDir),
	})
}

func TestRun_FirstRunPersistsCatalogue(t *testing.T) {
	dir := t.TempDir()
	source := &fakeSource{name: "feed a", show: domain.Show{
		URL:        "show-a",
		Title:      "Show A",
		Broadcasts: []domain.Broadcast{{URL: "a/1", Date: "2024-01-01T00:00:00Z"}},
	}}
	enricher := &fakeEnricher{}

	crawler := newTestCrawler(t, dir, []Source{source}, enricher)
	shows, err := crawler.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(shows) != 1 || len(shows[0].Broadcasts) != 1 {
		t.Fatalf("Expected 1 show with 1 broadcast, got %+v", shows)
	}
	if !shows[0].Broadcasts[0].Enriched() {
		t.Error("Expected new broadcast to be enriched")
	}

	store := snapshot.NewStore(dir)
	persisted, err := store.Load()
	if err != nil {
		t.Fatalf("Load persisted catalogue: %v", err)
	}
	if !reflect.DeepEqual(persisted, shows) {
		t.Error("Expected persisted catalogue to match the returned one")
	}
	if _, err := os.Stat(store.CheckpointPath()); !os.IsNotExist(err) {
		t.Error("Expected checkpoint file to be cleaned up after promote")
	}
}

func TestRun_SecondRunDoesNotReenrich(t *testing.T) {
	dir := t.TempDir()
	show := domain.Show{
		URL:        "show-a",
		Title:      "Show A",
		Broadcasts: []domain.Broadcast{{URL: "a/1", Date: "2024-01-01T00:00:00Z"}},
	}

	first := &fakeEnricher{}
	crawler := newTestCrawler(t, dir, []Source{&fakeSource{name: "feed a", show: show}}, first)
	if _, err := crawler.Run(context.Background()); err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	if len(first.seen) != 1 {
		t.Fatalf("Expected first run to enrich 1 broadcast, got %v", first.seen)
	}

	second := &fakeEnricher{}
	crawler = newTestCrawler(t, dir, []Source{&fakeSource{name: "feed a", show: show}}, second)
	shows, err := crawler.Run(context.Background())
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}

	if len(second.seen) != 0 {
		t.Errorf("Expected no re-enrichment on second run, enricher saw %v", second.seen)
	}
	if len(shows[0].Broadcasts) != 1 {
		t.Errorf("Expected no duplicate broadcasts, got %d", len(shows[0].Broadcasts))
	}
	if shows[0].Broadcasts[0].Guests[0].Name != "Extrahiert" {
		t.Error("Expected enrichment from the first run to be carried forward")
	}
}

func TestRun_SourceFailureContinues(t *testing.T) {
	dir := t.TempDir()
	failing := &fakeSource{name: "broken feed", err: errors.New("fetch failed")}
	working := &fakeSource{name: "feed b", show: domain.Show{
		URL:        "show-b",
		Title:      "Show B",
		Broadcasts: []domain.Broadcast{{URL: "b/1", Date: "2024-01-01T00:00:00Z"}},
	}}

	crawler := newTestCrawler(t, dir, []Source{failing, working}, &fakeEnricher{})
	shows, err := crawler.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(shows) != 1 || shows[0].URL != "show-b" {
		t.Errorf("Expected only the working source's show, got %+v", shows)
	}
}

func TestRun_FailedSourceKeepsHistory(t *testing.T) {
	dir := t.TempDir()
	show := domain.Show{
		URL:        "show-a",
		Title:      "Show A",
		Broadcasts: []domain.Broadcast{{URL: "a/1", Date: "2024-01-01T00:00:00Z"}},
	}

	crawler := newTestCrawler(t, dir, []Source{&fakeSource{name: "feed a", show: show}}, &fakeEnricher{})
	if _, err := crawler.Run(context.Background()); err != nil {
		t.Fatalf("First run failed: %v", err)
	}

	// Next run: the source fails. Its show must survive from history.
	crawler = newTestCrawler(t, dir, []Source{&fakeSource{name: "feed a", err: errors.New("down")}}, &fakeEnricher{})
	shows, err := crawler.Run(context.Background())
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	if len(shows) != 1 || shows[0].URL != "show-a" {
		t.Fatalf("Expected historical show to be retained, got %+v", shows)
	}
	if len(shows[0].Broadcasts) != 1 || !shows[0].Broadcasts[0].Enriched() {
		t.Error("Expected historical broadcast and its enrichment to survive")
	}
}

func TestRun_DedupInvariant(t *testing.T) {
	dir := t.TempDir()
	show := domain.Show{
		URL: "show-a",
		Broadcasts: []domain.Broadcast{
			{URL: "a/1", Date: "2024-01-01T00:00:00Z"},
			{URL: "a/2", Date: "2024-02-01T00:00:00Z"},
		},
	}

	crawler := newTestCrawler(t, dir, []Source{&fakeSource{name: "feed a", show: show}}, &fakeEnricher{})
	if _, err := crawler.Run(context.Background()); err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	crawler = newTestCrawler(t, dir, []Source{&fakeSource{name: "feed a", show: show}}, &fakeEnricher{})
	shows, err := crawler.Run(context.Background())
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}

	for _, show := range shows {
		seen := map[string]bool{}
		for _, broadcast := range show.Broadcasts {
			if seen[broadcast.URL] {
				t.Errorf("Duplicate broadcast URL %s in show %s", broadcast.URL, show.URL)
			}
			seen[broadcast.URL] = true
		}
	}
}

func TestCollect(t *testing.T) {
	shows := []domain.Show{{
		URL: "show-a",
		Broadcasts: []domain.Broadcast{
			{URL: "a/1", Moderators: []domain.Person{{Name: "M"}}, Guests: []domain.Person{{Name: "G1"}, {Name: "G2"}}},
			{URL: "a/2"},
		},
	}}

	stats := Collect(shows)
	want := Stats{Shows: 1, Broadcasts: 2, Unenriched: 1, Persons: 3}
	if stats != want {
		t.Errorf("Expected %+v, got %+v", want, stats)
	}
}
