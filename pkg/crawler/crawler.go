// Package crawler runs the full crawl-and-reconciliation pipeline: fetch
// every configured source, merge against history, enrich new broadcasts,
// and persist the result. Sources and extraction batches run strictly one
// at a time; a checkpoint follows every unit of work, so a killed run
// loses at most one source's or one batch's worth of progress.
package crawler

import (
	"context"
	"fmt"
	"log"

	"talk-catalog/pkg/domain"
	"talk-catalog/pkg/history"
	"talk-catalog/pkg/reconcile"
)

// Source fetches one configured feed or playlist into a Show.
type Source interface {
	Name() string
	Fetch(ctx context.Context, hist *history.Index) (*domain.Show, error)
}

// Enricher extracts persons for a show's unenriched broadcasts in place.
type Enricher interface {
	EnrichShow(ctx context.Context, show *domain.Show, afterBatch func() error) error
}

// Snapshots persists the catalogue across runs.
type Snapshots interface {
	Load() ([]domain.Show, error)
	Checkpoint(shows []domain.Show) error
	Promote(shows []domain.Show) error
}

// Config wires the crawler dependencies.
type Config struct {
	Sources   []Source
	Enricher  Enricher
	Snapshots Snapshots

	// RetentionYear drops broadcasts older than the given year after
	// reconciliation; 0 keeps everything.
	RetentionYear int
}

// Crawler executes crawl runs.
type Crawler struct {
	cfg Config
}

// New creates a crawler.
func New(cfg Config) *Crawler {
	return &Crawler{cfg: cfg}
}

// Run executes one full crawl and returns the final catalogue.
//
// A source failure is fatal for that source only: it is logged and the
// run continues. A checkpoint failure is fatal for the run, since the
// crash-resumption contract would otherwise be silently void.
func (c *Crawler) Run(ctx context.Context) ([]domain.Show, error) {
	log.Printf("Crawler: starting crawl")

	old, err := c.cfg.Snapshots.Load()
	if err != nil {
		return nil, fmt.Errorf("load catalogue: %w", err)
	}
	hist := history.NewIndex(old)

	shows := []domain.Show{}
	for _, source := range c.cfg.Sources {
		log.Printf("Crawler: >>> extracting %s", source.Name())
		show, err := source.Fetch(ctx, hist)
		if err != nil {
			log.Printf("Crawler: ERROR fetching %s: %v", source.Name(), err)
			continue
		}
		shows = append(shows, *show)
		if err := c.cfg.Snapshots.Checkpoint(shows); err != nil {
			return nil, fmt.Errorf("checkpoint after %s: %w", source.Name(), err)
		}
	}

	log.Printf("Crawler: >>> merging old shows and broadcasts")
	shows = reconcile.Reconcile(shows, hist, c.cfg.RetentionYear)

	log.Printf("Crawler: >>> extracting guests and moderators")
	for i := range shows {
		err := c.cfg.Enricher.EnrichShow(ctx, &shows[i], func() error {
			return c.cfg.Snapshots.Checkpoint(shows)
		})
		if err != nil {
			return nil, fmt.Errorf("enrich %s: %w", shows[i].Title, err)
		}
	}

	if err := c.cfg.Snapshots.Promote(shows); err != nil {
		return nil, fmt.Errorf("promote catalogue: %w", err)
	}

	LogReport(shows)
	log.Printf("Crawler: crawl complete")
	return shows, nil
}
