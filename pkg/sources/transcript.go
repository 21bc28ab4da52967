package sources

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"talk-catalog/pkg/content"
	"talk-catalog/pkg/httpclient"
)

// TranscriptClient fetches YouTube video transcripts by scraping the
// caption track list from the watch page and downloading the timedtext
// XML it points at.
type TranscriptClient struct {
	watchBase string
	client    *httpclient.HTTPClient
	languages []string
}

// NewTranscriptClient creates a transcript fetcher preferring the given
// language codes (e.g. "de", "en"), in order.
func NewTranscriptClient(languages ...string) *TranscriptClient {
	return NewTranscriptClientWithBaseURL("https://www.youtube.com", languages...)
}

// NewTranscriptClientWithBaseURL creates a transcript fetcher against a
// custom watch-page host (used by tests).
func NewTranscriptClientWithBaseURL(watchBase string, languages ...string) *TranscriptClient {
	return &TranscriptClient{
		watchBase: strings.TrimRight(watchBase, "/"),
		client:    httpclient.NewClient(httpclient.BrowserClient, 30*time.Second),
		languages: languages,
	}
}

// captionTrack is one entry of the watch page's caption track list.
type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" for auto-generated tracks
}

// timedText is the timedtext caption XML document.
type timedText struct {
	XMLName xml.Name `xml:"transcript"`
	Lines   []struct {
		Text string `xml:",chardata"`
	} `xml:"text"`
}

const captionTracksMarker = `"captionTracks":`

// Fetch downloads the transcript of a video as one space-joined string.
func (c *TranscriptClient) Fetch(ctx context.Context, videoID string) (string, error) {
	page, err := c.getBody(ctx, c.watchBase+"/watch?v="+videoID, 6*1024*1024)
	if err != nil {
		return "", fmt.Errorf("watch page: %w", err)
	}

	tracks, err := parseCaptionTracks(page)
	if err != nil {
		return "", err
	}
	track := pickTrack(tracks, c.languages)

	raw, err := c.getBody(ctx, track.BaseURL, 512*1024)
	if err != nil {
		return "", fmt.Errorf("timedtext: %w", err)
	}

	var tt timedText
	if err := xml.Unmarshal(raw, &tt); err != nil {
		return "", fmt.Errorf("parse timedtext XML: %w", err)
	}

	var sb strings.Builder
	for _, line := range tt.Lines {
		text := content.StripTags(line.Text)
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(text)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("empty transcript for video %s", videoID)
	}
	return sb.String(), nil
}

func (c *TranscriptClient) getBody(ctx context.Context, rawURL string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, limit))
}

// parseCaptionTracks extracts the captionTracks JSON array embedded in
// the watch page HTML.
func parseCaptionTracks(page []byte) ([]captionTrack, error) {
	idx := strings.Index(string(page), captionTracksMarker)
	if idx < 0 {
		return nil, fmt.Errorf("no caption tracks on watch page")
	}
	rest := page[idx+len(captionTracksMarker):]

	// The marker is followed by a JSON array; scan to its matching
	// closing bracket, honoring strings and escapes.
	end := matchBracket(rest)
	if end < 0 {
		return nil, fmt.Errorf("malformed caption track list")
	}

	var tracks []captionTrack
	if err := json.Unmarshal(rest[:end+1], &tracks); err != nil {
		return nil, fmt.Errorf("decode caption tracks: %w", err)
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("empty caption track list")
	}
	return tracks, nil
}

// matchBracket returns the index of the ']' closing the '[' that data
// must start with, or -1.
func matchBracket(data []byte) int {
	if len(data) == 0 || data[0] != '[' {
		return -1
	}
	depth := 0
	inString := false
	escaped := false
	for i, b := range data {
		if inString {
			switch {
			case escaped:
				escaped = false
			case b == '\\':
				escaped = true
			case b == '"':
				inString = false
			}
			continue
		}
		switch b {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// pickTrack prefers a manual track in a preferred language, then any
// track in a preferred language, then the first track.
func pickTrack(tracks []captionTrack, languages []string) captionTrack {
	for _, lang := range languages {
		for _, track := range tracks {
			if track.LanguageCode == lang && track.Kind != "asr" {
				return track
			}
		}
	}
	for _, lang := range languages {
		for _, track := range tracks {
			if track.LanguageCode == lang {
				return track
			}
		}
	}
	return tracks[0]
}
