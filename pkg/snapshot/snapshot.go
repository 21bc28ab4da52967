// Package snapshot persists the catalogue as a pretty-printed JSON array
// of shows. During a run the in-progress catalogue is checkpointed to a
// "-new" suffixed path after every unit of work; the canonical path is
// only replaced, atomically, once the run completes.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"talk-catalog/pkg/domain"
)

const (
	canonicalName  = "shows.json"
	checkpointName = "shows-new.json"
)

// Store reads and writes catalogue snapshots below a base directory.
type Store struct {
	baseDir string
}

// NewStore creates a snapshot store rooted at baseDir.
func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// CanonicalPath returns the path of the last completed catalogue.
func (s *Store) CanonicalPath() string {
	return filepath.Join(s.baseDir, canonicalName)
}

// CheckpointPath returns the path of the in-progress catalogue.
func (s *Store) CheckpointPath() string {
	return filepath.Join(s.baseDir, checkpointName)
}

// Load reads the canonical catalogue. A missing file is not an error:
// the first run starts from an empty catalogue.
func (s *Store) Load() ([]domain.Show, error) {
	data, err := os.ReadFile(s.CanonicalPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read catalogue: %w", err)
	}

	var shows []domain.Show
	if err := json.Unmarshal(data, &shows); err != nil {
		return nil, fmt.Errorf("parse catalogue %s: %w", s.CanonicalPath(), err)
	}
	return shows, nil
}

// Checkpoint writes the in-progress catalogue to the checkpoint path.
// Called after every source fetch and every extraction batch, so a killed
// run loses at most one unit of work.
func (s *Store) Checkpoint(shows []domain.Show) error {
	return s.write(s.CheckpointPath(), shows)
}

// Promote writes the completed catalogue to the canonical path, replacing
// the previous snapshot atomically (temp file + rename), and removes the
// checkpoint file.
func (s *Store) Promote(shows []domain.Show) error {
	if err := s.write(s.CanonicalPath(), shows); err != nil {
		return err
	}
	if err := os.Remove(s.CheckpointPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove checkpoint: %w", err)
	}
	return nil
}

func (s *Store) write(path string, shows []domain.Show) error {
	if shows == nil {
		shows = []domain.Show{}
	}
	data, err := json.MarshalIndent(shows, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal catalogue: %w", err)
	}

	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return fmt.Errorf("create base dir: %w", err)
	}

	// Write to a temp file in the same directory, then rename over the
	// target so readers never observe a partially written snapshot.
	tmp, err := os.CreateTemp(s.baseDir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace snapshot %s: %w", path, err)
	}
	return nil
}
