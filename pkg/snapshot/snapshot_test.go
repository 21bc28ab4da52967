package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"talk-catalog/pkg/domain"
)

func sampleShows() []domain.Show {
	return []domain.Show{{
		URL:    "https://shows.example/a",
		Title:  "Show A",
		Author: "Broadcaster",
		Broadcasts: []domain.Broadcast{{
			URL:   "https://shows.example/a/1",
			Title: "Episode 1",
			Date:  "2024-02-19T22:05:00Z",
		}},
	}}
}

func TestLoad_MissingFile(t *testing.T) {
	store := NewStore(t.TempDir())

	shows, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if shows != nil {
		t.Errorf("Expected nil shows for missing file, got %v", shows)
	}
}

func TestPromote_RoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	if err := store.Promote(sampleShows()); err != nil {
		t.Fatalf("Promote failed: %v", err)
	}

	shows, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(shows) != 1 || shows[0].URL != "https://shows.example/a" {
		t.Fatalf("Expected round-tripped show, got %v", shows)
	}
	if len(shows[0].Broadcasts) != 1 || shows[0].Broadcasts[0].Title != "Episode 1" {
		t.Errorf("Expected round-tripped broadcast, got %v", shows[0].Broadcasts)
	}
}

func TestPromote_WritesPrettyJSONAndRemovesCheckpoint(t *testing.T) {
	store := NewStore(t.TempDir())

	if err := store.Checkpoint(sampleShows()); err != nil {
		t.Fatalf("Checkpoint failed: %v", err)
	}
	if _, err := os.Stat(store.CheckpointPath()); err != nil {
		t.Fatalf("Expected checkpoint file to exist: %v", err)
	}

	if err := store.Promote(sampleShows()); err != nil {
		t.Fatalf("Promote failed: %v", err)
	}

	if _, err := os.Stat(store.CheckpointPath()); !os.IsNotExist(err) {
		t.Error("Expected checkpoint file to be removed after promote")
	}

	data, err := os.ReadFile(store.CanonicalPath())
	if err != nil {
		t.Fatalf("Read canonical snapshot: %v", err)
	}
	if !strings.Contains(string(data), "\n  ") {
		t.Error("Expected pretty-printed JSON snapshot")
	}
}

func TestCheckpoint_EmptyCatalogue(t *testing.T) {
	store := NewStore(t.TempDir())

	if err := store.Checkpoint(nil); err != nil {
		t.Fatalf("Checkpoint failed: %v", err)
	}

	data, err := os.ReadFile(store.CheckpointPath())
	if err != nil {
		t.Fatalf("Read checkpoint: %v", err)
	}

	var shows []domain.Show
	if err := json.Unmarshal(data, &shows); err != nil {
		t.Fatalf("Checkpoint is not valid JSON: %v", err)
	}
	if len(shows) != 0 {
		t.Errorf("Expected empty array, got %v", shows)
	}
	if strings.TrimSpace(string(data)) == "null" {
		t.Error("Expected [] rather than null for an empty catalogue")
	}
}

func TestWrite_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	if err := store.Promote(sampleShows()); err != nil {
		t.Fatalf("Promote failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, entry := range entries {
		if strings.Contains(entry.Name(), ".tmp-") {
			t.Errorf("Found leftover temp file %s", filepath.Join(dir, entry.Name()))
		}
	}
}
