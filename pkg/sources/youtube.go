package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"talk-catalog/pkg/content"
	"talk-catalog/pkg/domain"
	"talk-catalog/pkg/history"
)

// MediaTypeYouTube marks broadcasts backed by a YouTube video.
const MediaTypeYouTube = "video/youtube"

const (
	youtubeAPIBase = "https://www.googleapis.com/youtube/v3"
	watchURLPrefix = "https://www.youtube.com/watch?v="

	// playlistPageSize is the Data API maximum per playlistItems page.
	playlistPageSize = 50

	// transcriptMaxChars caps transcript text substituted for a
	// video description.
	transcriptMaxChars = 500
)

// --- YouTube Data API v3 response types ---

type ytPlaylistResp struct {
	Items []struct {
		Snippet ytPlaylistSnippet `json:"snippet"`
	} `json:"items"`
}

type ytPlaylistSnippet struct {
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	ChannelTitle string       `json:"channelTitle"`
	Thumbnails   ytThumbnails `json:"thumbnails"`
}

type ytThumbnails struct {
	High    ytThumbnail `json:"high"`
	Default ytThumbnail `json:"default"`
}

type ytThumbnail struct {
	URL string `json:"url"`
}

type ytPlaylistItemsResp struct {
	NextPageToken string           `json:"nextPageToken"`
	Items         []ytPlaylistItem `json:"items"`
}

type ytPlaylistItem struct {
	Snippet struct {
		Title       string       `json:"title"`
		Description string       `json:"description"`
		PublishedAt string       `json:"publishedAt"`
		ResourceID  ytResourceID `json:"resourceId"`
	} `json:"snippet"`
}

type ytResourceID struct {
	VideoID string `json:"videoId"`
}

// YouTubeAPI is a thin client for the YouTube Data API v3.
type YouTubeAPI struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewYouTubeAPI creates a Data API client with the given key.
func NewYouTubeAPI(apiKey string) *YouTubeAPI {
	return NewYouTubeAPIWithBaseURL(apiKey, youtubeAPIBase)
}

// NewYouTubeAPIWithBaseURL creates a Data API client against a custom
// endpoint (used by tests).
func NewYouTubeAPIWithBaseURL(apiKey, baseURL string) *YouTubeAPI {
	return &YouTubeAPI{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (a *YouTubeAPI) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	params.Set("key", a.apiKey)
	endpoint := a.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("youtube api request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8*1024*1024))
	if err != nil {
		return fmt.Errorf("youtube api read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("youtube api %s: status %d: %s", path, resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("youtube api decode %s: %w", path, err)
	}
	return nil
}

// Playlist resolves playlist metadata.
func (a *YouTubeAPI) Playlist(ctx context.Context, playlistID string) (*ytPlaylistSnippet, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("id", playlistID)

	var resp ytPlaylistResp
	if err := a.get(ctx, "/playlists", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("playlist %s not found", playlistID)
	}
	return &resp.Items[0].Snippet, nil
}

// PlaylistItems lists every video of a playlist, following the
// continuation token until it is absent. Pagination always completes;
// any cap is the caller's concern.
func (a *YouTubeAPI) PlaylistItems(ctx context.Context, playlistID string) ([]ytPlaylistItem, error) {
	var items []ytPlaylistItem
	pageToken := ""
	for {
		params := url.Values{}
		params.Set("part", "snippet")
		params.Set("playlistId", playlistID)
		params.Set("maxResults", fmt.Sprintf("%d", playlistPageSize))
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var resp ytPlaylistItemsResp
		if err := a.get(ctx, "/playlistItems", params, &resp); err != nil {
			return nil, err
		}
		items = append(items, resp.Items...)

		if resp.NextPageToken == "" {
			return items, nil
		}
		pageToken = resp.NextPageToken
	}
}

// TranscriptFetcher fetches the timed transcript of a video as plain text.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoID string) (string, error)
}

// YouTubeSource fetches one playlist and turns it into a Show.
type YouTubeSource struct {
	playlistID  string
	api         *YouTubeAPI
	transcripts TranscriptFetcher // nil disables transcript substitution
	maxVideos   int               // 0 means unlimited
}

// NewYouTubeSource creates an adapter for the given playlist.
// transcripts may be nil to keep the platform-provided descriptions.
func NewYouTubeSource(playlistID string, api *YouTubeAPI, transcripts TranscriptFetcher, maxVideos int) *YouTubeSource {
	return &YouTubeSource{
		playlistID:  playlistID,
		api:         api,
		transcripts: transcripts,
		maxVideos:   maxVideos,
	}
}

// Name identifies the source in logs.
func (s *YouTubeSource) Name() string {
	return "youtube playlist " + s.playlistID
}

// Fetch resolves the playlist and its videos. API failures are fatal for
// this source only.
func (s *YouTubeSource) Fetch(ctx context.Context, hist *history.Index) (*domain.Show, error) {
	snippet, err := s.api.Playlist(ctx, s.playlistID)
	if err != nil {
		return nil, fmt.Errorf("could not crawl youtube playlist %s: %w", s.playlistID, err)
	}

	show := &domain.Show{
		URL:         "https://www.youtube.com/playlist?list=" + s.playlistID,
		Author:      snippet.ChannelTitle,
		Title:       snippet.Title,
		Description: snippet.Description,
		ImageURL:    PickLongest(snippet.Thumbnails.High.URL, snippet.Thumbnails.Default.URL),
		Broadcasts:  []domain.Broadcast{},
	}

	items, err := s.api.PlaylistItems(ctx, s.playlistID)
	if err != nil {
		return nil, fmt.Errorf("could not crawl youtube playlist %s: %w", s.playlistID, err)
	}
	// The cap applies only after pagination completed, so it always
	// keeps the first N playlist entries.
	if s.maxVideos > 0 && len(items) > s.maxVideos {
		items = items[:s.maxVideos]
	}

	for _, item := range items {
		videoID := item.Snippet.ResourceID.VideoID
		if videoID == "" {
			continue
		}
		videoURL := watchURLPrefix + videoID

		if old, ok := hist.ReuseAndRemove(videoURL); ok {
			show.Broadcasts = append(show.Broadcasts, old)
			continue
		}

		broadcast := domain.Broadcast{
			URL:         videoURL,
			Date:        item.Snippet.PublishedAt,
			Title:       item.Snippet.Title,
			Description: item.Snippet.Description,
			Moderators:  []domain.Person{},
			Guests:      []domain.Person{},
			MediaURL:    videoURL,
			MediaType:   MediaTypeYouTube,
		}
		if s.transcripts != nil {
			s.substituteTranscript(ctx, videoID, &broadcast)
		}
		show.Broadcasts = append(show.Broadcasts, broadcast)
	}

	return show, nil
}

// substituteTranscript replaces the description with transcript text,
// truncated. Transcript failures keep the platform description.
func (s *YouTubeSource) substituteTranscript(ctx context.Context, videoID string, broadcast *domain.Broadcast) {
	text, err := s.transcripts.Fetch(ctx, videoID)
	if err != nil {
		log.Printf("YouTubeSource: transcript fetch failed for %s: %v", videoID, err)
		return
	}
	if text == "" {
		return
	}
	broadcast.Description = content.Truncate(text, transcriptMaxChars)
}
