// Package reconcile merges freshly fetched shows with the historical
// catalogue: known broadcasts stay untouched, leftovers from history are
// folded back in, retired sources keep their shows, and every show ends
// up deduplicated by broadcast URL, newest first.
package reconcile

import (
	"sort"

	"talk-catalog/pkg/domain"
	"talk-catalog/pkg/history"
)

// Reconcile combines the fresh shows with whatever remains in the history
// index after the adapters took their reuse hits. cutoffYear drops
// broadcasts older than the given year; 0 disables the retention filter.
func Reconcile(fresh []domain.Show, hist *history.Index, cutoffYear int) []domain.Show {
	remaining := hist.RemainingShows()

	out := make([]domain.Show, 0, len(fresh))
	for _, show := range fresh {
		merged := dedupBroadcasts(show)
		if old, ok := remaining[show.URL]; ok {
			merged.Broadcasts = appendMissing(merged.Broadcasts, old.Broadcasts)
			delete(remaining, show.URL)
		}
		out = append(out, merged)
	}

	// Sources that disappeared from the configuration keep their shows:
	// history is never dropped, only extended.
	for _, url := range hist.ShowOrder() {
		if old, ok := remaining[url]; ok {
			out = append(out, dedupBroadcasts(*old))
		}
	}

	for i := range out {
		sortNewestFirst(out[i].Broadcasts)
		if cutoffYear > 0 {
			out[i].Broadcasts = applyRetention(out[i].Broadcasts, cutoffYear)
		}
	}
	return out
}

// dedupBroadcasts drops later duplicates of a broadcast URL within one
// show, keeping the first occurrence.
func dedupBroadcasts(show domain.Show) domain.Show {
	seen := make(map[string]bool, len(show.Broadcasts))
	broadcasts := make([]domain.Broadcast, 0, len(show.Broadcasts))
	for _, broadcast := range show.Broadcasts {
		if seen[broadcast.URL] {
			continue
		}
		seen[broadcast.URL] = true
		broadcasts = append(broadcasts, broadcast)
	}
	show.Broadcasts = broadcasts
	return show
}

// appendMissing appends old broadcasts whose URL is not already present.
func appendMissing(broadcasts, old []domain.Broadcast) []domain.Broadcast {
	seen := make(map[string]bool, len(broadcasts))
	for _, broadcast := range broadcasts {
		seen[broadcast.URL] = true
	}
	for _, broadcast := range old {
		if seen[broadcast.URL] {
			continue
		}
		seen[broadcast.URL] = true
		broadcasts = append(broadcasts, broadcast)
	}
	return broadcasts
}

func sortNewestFirst(broadcasts []domain.Broadcast) {
	sort.SliceStable(broadcasts, func(i, j int) bool {
		return domain.CompareDates(broadcasts[i].Date, broadcasts[j].Date) > 0
	})
}

// applyRetention drops broadcasts provably older than the cutoff year.
// Broadcasts whose date does not parse are kept.
func applyRetention(broadcasts []domain.Broadcast, cutoffYear int) []domain.Broadcast {
	kept := make([]domain.Broadcast, 0, len(broadcasts))
	for _, broadcast := range broadcasts {
		year := domain.Year(broadcast.Date)
		if year != 0 && year < cutoffYear {
			continue
		}
		kept = append(kept, broadcast)
	}
	return kept
}
