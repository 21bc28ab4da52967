// Package history indexes the previously persisted catalogue so that
// source adapters can reuse broadcasts enriched in earlier runs instead
// of rebuilding (and re-extracting) them.
package history

import "talk-catalog/pkg/domain"

// entry ties an indexed broadcast to the show it was loaded from, so a
// reuse can also remove it from that show's broadcast list.
type entry struct {
	show      *domain.Show
	broadcast domain.Broadcast
}

// Index is a URL-keyed view over the prior catalogue. It has exactly one
// lookup operation, ReuseAndRemove; whatever is left afterwards is folded
// back into the fresh catalogue by the reconciler.
type Index struct {
	broadcasts map[string]entry
	shows      []*domain.Show
}

// NewIndex builds the reuse index from the previously persisted shows.
// The shows are copied; the caller's slice is not mutated.
func NewIndex(oldShows []domain.Show) *Index {
	idx := &Index{broadcasts: make(map[string]entry)}
	for i := range oldShows {
		show := oldShows[i]
		show.Broadcasts = append([]domain.Broadcast(nil), oldShows[i].Broadcasts...)
		// Legacy snapshots may carry persons with nil function lists.
		for j := range show.Broadcasts {
			ensureFunctions(show.Broadcasts[j].Moderators)
			ensureFunctions(show.Broadcasts[j].Guests)
		}
		idx.shows = append(idx.shows, &show)
		for _, broadcast := range show.Broadcasts {
			idx.broadcasts[broadcast.URL] = entry{show: idx.shows[len(idx.shows)-1], broadcast: broadcast}
		}
	}
	return idx
}

func ensureFunctions(persons []domain.Person) {
	for i := range persons {
		if persons[i].Functions == nil {
			persons[i].Functions = []string{}
		}
	}
}

// ReuseAndRemove looks up a broadcast by URL. On a hit it removes the
// broadcast from the index and from its owning show's broadcast list, so
// the later fold-back step cannot double-count it, and returns the
// historical broadcast unchanged (prior enrichment included).
func (idx *Index) ReuseAndRemove(url string) (domain.Broadcast, bool) {
	e, ok := idx.broadcasts[url]
	if !ok {
		return domain.Broadcast{}, false
	}
	delete(idx.broadcasts, url)

	kept := e.show.Broadcasts[:0]
	for _, other := range e.show.Broadcasts {
		if other.URL != url {
			kept = append(kept, other)
		}
	}
	e.show.Broadcasts = kept

	return e.broadcast, true
}

// RemainingShows returns the historical shows with whatever broadcasts
// were not reused, keyed by show URL. The reconciler folds these back in.
func (idx *Index) RemainingShows() map[string]*domain.Show {
	remaining := make(map[string]*domain.Show, len(idx.shows))
	for _, show := range idx.shows {
		remaining[show.URL] = show
	}
	return remaining
}

// ShowOrder returns the historical show URLs in their persisted order, so
// retired sources keep a stable position in the output catalogue.
func (idx *Index) ShowOrder() []string {
	order := make([]string, 0, len(idx.shows))
	for _, show := range idx.shows {
		order = append(order, show.URL)
	}
	return order
}

// Len returns the number of broadcasts still available for reuse.
func (idx *Index) Len() int {
	return len(idx.broadcasts)
}
