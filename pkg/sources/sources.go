// Package sources fetches shows from the configured feeds and playlists.
// Every adapter consults the history index before materializing a new
// broadcast, so enrichment from earlier runs is carried forward.
package sources

import "strings"

// PickLongest returns the longest trimmed non-empty candidate, or the
// empty string. Feeds often fill one alias field with a placeholder while
// a sibling field holds the real content; picking the longest candidate
// tolerates that.
func PickLongest(candidates ...string) string {
	best := ""
	for _, candidate := range candidates {
		v := strings.TrimSpace(candidate)
		if len(v) > len(best) {
			best = v
		}
	}
	return best
}
