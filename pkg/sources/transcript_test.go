package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func transcriptServer(t *testing.T, tracks func(base string) string, timedtext string) *httptest.Server {
	t.Helper()
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/watch":
			fmt.Fprintf(w, `<html><script>var ytInitialPlayerResponse = {"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":%s}}};</script></html>`,
				tracks(server.URL))
		case "/api/timedtext":
			w.Header().Set("Content-Type", "text/xml")
			fmt.Fprint(w, timedtext)
		default:
			http.NotFound(w, r)
		}
	}))
	return server
}

func TestTranscriptClient_Fetch(t *testing.T) {
	timedtext := `<?xml version="1.0" encoding="utf-8"?>
<transcript>
  <text start="0.0" dur="2.5">guten abend</text>
  <text start="2.5" dur="3.0">und willkommen bei fellner live</text>
  <text start="5.5" dur="1.0"> </text>
</transcript>`

	server := transcriptServer(t, func(base string) string {
		return fmt.Sprintf(`[{"baseUrl":"%s/api/timedtext?lang=de","languageCode":"de","kind":"asr"}]`, base)
	}, timedtext)
	defer server.Close()

	client := NewTranscriptClientWithBaseURL(server.URL, "de")
	text, err := client.Fetch(context.Background(), "video123")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if text != "guten abend und willkommen bei fellner live" {
		t.Errorf("Unexpected transcript text '%s'", text)
	}
}

func TestTranscriptClient_Fetch_PrefersManualTrackInLanguage(t *testing.T) {
	timedtext := `<transcript><text>manuell</text></transcript>`

	server := transcriptServer(t, func(base string) string {
		return fmt.Sprintf(`[
			{"baseUrl":"%s/missing","languageCode":"en"},
			{"baseUrl":"%s/missing","languageCode":"de","kind":"asr"},
			{"baseUrl":"%s/api/timedtext","languageCode":"de"}
		]`, base, base, base)
	}, timedtext)
	defer server.Close()

	client := NewTranscriptClientWithBaseURL(server.URL, "de")
	text, err := client.Fetch(context.Background(), "video123")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if text != "manuell" {
		t.Errorf("Expected the manual de track, got '%s'", text)
	}
}

func TestTranscriptClient_Fetch_NoCaptions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>no captions here</body></html>`)
	}))
	defer server.Close()

	client := NewTranscriptClientWithBaseURL(server.URL, "de")
	if _, err := client.Fetch(context.Background(), "video123"); err == nil {
		t.Error("Expected error when the watch page has no caption tracks")
	}
}

func TestParseCaptionTracks_HandlesNestedStrings(t *testing.T) {
	page := []byte(`prefix "captionTracks":[{"baseUrl":"https://example.com/tt?a=[1]","languageCode":"de"}] suffix`)

	tracks, err := parseCaptionTracks(page)
	if err != nil {
		t.Fatalf("parseCaptionTracks failed: %v", err)
	}
	if len(tracks) != 1 || !strings.Contains(tracks[0].BaseURL, "a=[1]") {
		t.Errorf("Expected bracket inside string to be preserved, got %v", tracks)
	}
}
