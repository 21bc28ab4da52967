package crawler

import (
	"log"

	"talk-catalog/pkg/domain"
)

// Stats summarizes a catalogue.
type Stats struct {
	Shows      int
	Broadcasts int
	Unenriched int
	Persons    int
}

// Collect counts shows, broadcasts, unenriched broadcasts and persons.
func Collect(shows []domain.Show) Stats {
	stats := Stats{Shows: len(shows)}
	for _, show := range shows {
		stats.Broadcasts += len(show.Broadcasts)
		for _, broadcast := range show.Broadcasts {
			if !broadcast.Enriched() {
				stats.Unenriched++
			}
			stats.Persons += len(broadcast.Moderators) + len(broadcast.Guests)
		}
	}
	return stats
}

// LogReport writes the human-readable statistics report.
func LogReport(shows []domain.Show) {
	log.Printf(">>> Statistics")
	log.Printf("Shows: %d", len(shows))
	for _, show := range shows {
		stats := Collect([]domain.Show{show})
		log.Printf("Show %s - %s", show.Title, show.Author)
		log.Printf("   broadcasts: %d", stats.Broadcasts)
		log.Printf("   broadcasts without persons: %d", stats.Unenriched)
		log.Printf("   persons: %d", stats.Persons)
	}
	total := Collect(shows)
	log.Printf("Total: %d broadcasts, %d without persons, %d persons",
		total.Broadcasts, total.Unenriched, total.Persons)
}
