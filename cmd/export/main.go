package main

import (
	"flag"
	"log"
	"path/filepath"

	"talk-catalog/pkg/export"
	"talk-catalog/pkg/snapshot"
)

func main() {
	var (
		dataDir = flag.String("data-dir", "data", "Directory holding shows.json")
		out     = flag.String("out", "", "Output path for the spreadsheet (default <data-dir>/shows.xlsx)")
	)
	flag.Parse()

	store := snapshot.NewStore(*dataDir)
	shows, err := store.Load()
	if err != nil {
		log.Fatalf("Failed to load catalogue: %v", err)
	}
	if shows == nil {
		log.Fatalf("No catalogue at %s, run the crawler first", store.CanonicalPath())
	}

	path := *out
	if path == "" {
		path = filepath.Join(*dataDir, "shows.xlsx")
	}

	if err := export.WriteFile(shows, path); err != nil {
		log.Fatalf("Spreadsheet export failed: %v", err)
	}
	log.Printf("Wrote %d shows to %s", len(shows), path)
}
