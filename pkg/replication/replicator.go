// Package replication copies the mirrored catalogue from MongoDB into a
// relational `appearance` table, one row per broadcast × person, so the
// data can be queried with plain SQL.
package replication

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"

	"talk-catalog/pkg/db"
	"talk-catalog/pkg/domain"
)

// Config wires the replication dependencies.
type Config struct {
	Mongo    *db.Client
	Postgres db.DBProvider
}

// Appearance is one person on one broadcast, flattened with its show
// and broadcast context.
type Appearance struct {
	ShowAuthor     string
	ShowTitle      string
	ShowURL        string
	BcTitle        string
	BcDate         string
	BcDescription  string
	BcURL          string
	PersonName     string
	PersonFunction string
	IsGuest        bool
}

// Replicator replicates data from MongoDB to Postgres.
//
// This is intentionally a one-shot, "copy everything" flow: existing
// rows are left alone, new rows are inserted.
type Replicator struct {
	mongo *db.Client
	pg    db.DBProvider
}

func NewReplicator(cfg Config) (*Replicator, error) {
	if cfg.Mongo == nil {
		return nil, fmt.Errorf("mongo client is required")
	}
	if cfg.Postgres == nil {
		return nil, fmt.Errorf("postgres client is required")
	}
	return &Replicator{
		mongo: cfg.Mongo,
		pg:    cfg.Postgres,
	}, nil
}

// ReplicateAppearancesMongoToPostgres reads all shows from Mongo,
// flattens them into appearance rows and inserts them into the
// Postgres `appearance` table. Rows whose (broadcast, person, role)
// key already exists are skipped.
func (r *Replicator) ReplicateAppearancesMongoToPostgres(ctx context.Context) error {
	if err := r.ensureAppearanceSchema(ctx); err != nil {
		return err
	}

	shows, err := r.mongo.GetAllShows(ctx)
	if err != nil {
		return fmt.Errorf("read shows from mongo: %w", err)
	}

	appearances := Flatten(shows)
	log.Printf("Loaded %d shows (%d appearances) from Mongo, processing in batches...", len(shows), len(appearances))

	totalProcessed, totalInserted, err := r.processBatches(ctx, appearances)
	if err != nil {
		return err
	}

	log.Printf("Replication complete: processed %d appearances, inserted %d new rows", totalProcessed, totalInserted)
	return nil
}

// Flatten turns a catalogue into appearance rows. A person with several
// functions gets them joined into a single column.
func Flatten(shows []domain.Show) []Appearance {
	var out []Appearance
	for _, show := range shows {
		for _, broadcast := range show.Broadcasts {
			add := func(persons []domain.Person, isGuest bool) {
				for _, person := range persons {
					if person.Name == "" {
						continue
					}
					out = append(out, Appearance{
						ShowAuthor:     show.Author,
						ShowTitle:      show.Title,
						ShowURL:        show.URL,
						BcTitle:        broadcast.Title,
						BcDate:         broadcast.Date,
						BcDescription:  broadcast.Description,
						BcURL:          broadcast.URL,
						PersonName:     person.Name,
						PersonFunction: strings.Join(person.Functions, ", "),
						IsGuest:        isGuest,
					})
				}
			}
			add(broadcast.Moderators, false)
			add(broadcast.Guests, true)
		}
	}
	return out
}

// processBatches inserts all appearances in parallel batches and
// returns total processed and inserted counts.
func (r *Replicator) processBatches(ctx context.Context, appearances []Appearance) (int, int, error) {
	const processBatchSize = 100
	const numWorkers = 5

	type batchJob struct {
		batch []Appearance
		start int
		end   int
	}

	type batchResult struct {
		processed int
		inserted  int
		err       error
	}

	numBatches := (len(appearances) + processBatchSize - 1) / processBatchSize
	jobs := make(chan batchJob, numBatches)
	results := make(chan batchResult, numBatches)

	for start := 0; start < len(appearances); start += processBatchSize {
		end := start + processBatchSize
		if end > len(appearances) {
			end = len(appearances)
		}
		jobs <- batchJob{batch: appearances[start:end], start: start, end: end}
	}
	close(jobs)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				inserted, err := r.processBatch(ctx, job.batch, job.start, job.end)
				results <- batchResult{
					processed: len(job.batch),
					inserted:  inserted,
					err:       err,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	totalProcessed := 0
	totalInserted := 0
	for result := range results {
		if result.err != nil {
			return totalProcessed, totalInserted, result.err
		}
		totalProcessed += result.processed
		totalInserted += result.inserted
		if totalProcessed%1000 == 0 {
			log.Printf("Progress: processed %d/%d appearances, inserted %d new rows", totalProcessed, len(appearances), totalInserted)
		}
	}

	return totalProcessed, totalInserted, nil
}

// processBatch inserts one batch inside a transaction; duplicate keys
// are skipped by the database.
func (r *Replicator) processBatch(ctx context.Context, batch []Appearance, start, end int) (int, error) {
	log.Printf("Processing batch [%d:%d] (%d appearances)...", start, end, len(batch))

	inserted, err := r.insertAppearancesTx(ctx, batch)
	if err != nil {
		return 0, fmt.Errorf("insert batch [%d:%d]: %w", start, end, err)
	}

	log.Printf("  Inserted %d of %d appearances", inserted, len(batch))
	return inserted, nil
}

func (r *Replicator) ensureAppearanceSchema(ctx context.Context) error {
	if r.pg.DB() == nil {
		return fmt.Errorf("postgres DB not connected")
	}

	// The same person can appear on the same broadcast as moderator and
	// as guest, so the role is part of the key.
	const ddl = `
CREATE TABLE IF NOT EXISTS appearance (
  show_author TEXT NOT NULL DEFAULT '',
  show_title TEXT NOT NULL DEFAULT '',
  show_url TEXT NOT NULL DEFAULT '',
  bc_title TEXT NOT NULL DEFAULT '',
  bc_date TEXT NOT NULL DEFAULT '',
  bc_description TEXT NOT NULL DEFAULT '',
  bc_url TEXT NOT NULL,
  person_name TEXT NOT NULL,
  person_function TEXT NOT NULL DEFAULT '',
  is_guest BOOLEAN NOT NULL,
  PRIMARY KEY (bc_url, person_name, is_guest)
);`

	if _, err := r.pg.DB().ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create appearance table: %w", err)
	}
	return nil
}

// insertAppearancesTx inserts a batch of appearances within a
// transaction and returns how many rows were actually inserted.
func (r *Replicator) insertAppearancesTx(ctx context.Context, batch []Appearance) (int, error) {
	tx, err := r.pg.DB().BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const insertQuery = `
INSERT INTO appearance (show_author, show_title, show_url, bc_title, bc_date, bc_description, bc_url, person_name, person_function, is_guest)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (bc_url, person_name, is_guest) DO NOTHING`

	stmt, err := tx.PrepareContext(ctx, insertQuery)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, a := range batch {
		res, err := stmt.ExecContext(ctx,
			a.ShowAuthor, a.ShowTitle, a.ShowURL,
			a.BcTitle, a.BcDate, a.BcDescription, a.BcURL,
			a.PersonName, a.PersonFunction, a.IsGuest,
		)
		if err != nil {
			return 0, fmt.Errorf("insert appearance bc=%q person=%q: %w", a.BcURL, a.PersonName, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}
