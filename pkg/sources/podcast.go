package sources

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"talk-catalog/pkg/content"
	"talk-catalog/pkg/domain"
	"talk-catalog/pkg/history"
	"talk-catalog/pkg/httpclient"
)

// MediaTypeAudio marks broadcasts backed by an MP3 enclosure.
const MediaTypeAudio = "audio/mpeg"

// pageFallbackMaxChars caps episode page text used as a description
// fallback, matching the transcript budget.
const pageFallbackMaxChars = 500

// PodcastSource fetches one podcast RSS feed and turns it into a Show.
type PodcastSource struct {
	feedURL    string
	parser     *gofeed.Parser
	pageClient *httpclient.HTTPClient
}

// NewPodcastSource creates an adapter for the given feed URL.
func NewPodcastSource(feedURL string) *PodcastSource {
	parser := gofeed.NewParser()
	parser.Client = httpclient.NewClient(httpclient.FeedClient, 30*time.Second).Client()
	return &PodcastSource{
		feedURL:    feedURL,
		parser:     parser,
		pageClient: httpclient.NewClient(httpclient.BrowserClient, 15*time.Second),
	}
}

// Name identifies the source in logs.
func (s *PodcastSource) Name() string {
	return "podcast " + s.feedURL
}

// Fetch downloads and parses the feed. A fetch or parse failure is fatal
// for this source only; the caller logs it and continues with the rest.
func (s *PodcastSource) Fetch(ctx context.Context, hist *history.Index) (*domain.Show, error) {
	feed, err := s.parser.ParseURLWithContext(s.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("could not crawl podcast RSS feed %s: %w", s.feedURL, err)
	}

	show := &domain.Show{
		URL:         PickLongest(feed.Link),
		Title:       PickLongest(feed.Title),
		Description: channelDescription(feed),
		ImageURL:    imageURL(feed),
		Broadcasts:  []domain.Broadcast{},
	}
	if feed.ITunesExt != nil {
		show.Author = PickLongest(feed.ITunesExt.Author)
	}

	for _, item := range feed.Items {
		broadcast := s.broadcastFromItem(item)
		if old, ok := hist.ReuseAndRemove(broadcast.URL); ok {
			show.Broadcasts = append(show.Broadcasts, old)
			continue
		}
		if broadcast.Description == "" {
			s.fillDescriptionFromPage(ctx, &broadcast)
		}
		show.Broadcasts = append(show.Broadcasts, broadcast)
	}

	return show, nil
}

// channelDescription picks the channel description among its alias fields.
func channelDescription(feed *gofeed.Feed) string {
	candidates := []string{feed.Description}
	if feed.ITunesExt != nil {
		candidates = append(candidates, feed.ITunesExt.Summary)
	}
	return PickLongest(candidates...)
}

// imageURL prefers the plain <image><url> element over itunes:image.
func imageURL(feed *gofeed.Feed) string {
	if feed.Image != nil && feed.Image.URL != "" {
		return feed.Image.URL
	}
	if feed.ITunesExt != nil {
		return feed.ITunesExt.Image
	}
	return ""
}

func (s *PodcastSource) broadcastFromItem(item *gofeed.Item) domain.Broadcast {
	broadcast := domain.Broadcast{
		URL:        PickLongest(item.Link),
		Date:       itemDate(item),
		Title:      PickLongest(item.Title),
		Moderators: []domain.Person{},
		Guests:     []domain.Person{},
	}

	subtitle := ""
	bodyCandidates := []string{item.Description, item.Content}
	if item.ITunesExt != nil {
		subtitle = PickLongest(item.ITunesExt.Subtitle)
		bodyCandidates = append(bodyCandidates, item.ITunesExt.Summary)
	}
	body := PickLongest(bodyCandidates...)
	if subtitle != "" && body != "" {
		broadcast.Description = subtitle + "\n\n" + body
	} else {
		broadcast.Description = PickLongest(subtitle, body)
	}

	for _, enclosure := range item.Enclosures {
		if enclosure != nil && enclosure.Type == MediaTypeAudio {
			broadcast.MediaURL = enclosure.URL
			broadcast.MediaType = MediaTypeAudio
			break
		}
	}

	return broadcast
}

// itemDate normalizes the publication date to ISO 8601 where the feed's
// date parses; otherwise the raw pubDate string is kept.
func itemDate(item *gofeed.Item) string {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC().Format(time.RFC3339)
	}
	return item.Published
}

// fillDescriptionFromPage fetches the episode page and uses its readable
// text when the feed item had no description. Failures are swallowed.
func (s *PodcastSource) fillDescriptionFromPage(ctx context.Context, broadcast *domain.Broadcast) {
	if broadcast.URL == "" {
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, broadcast.URL, nil)
	if err != nil {
		return
	}
	resp, err := s.pageClient.Do(req)
	if err != nil {
		log.Printf("PodcastSource: episode page fetch failed for %s: %v", broadcast.URL, err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
	if err != nil {
		return
	}
	text, err := content.ExtractPageText(string(body))
	if err != nil || text == "" {
		return
	}
	broadcast.Description = content.Truncate(text, pageFallbackMaxChars)
}
