package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"talk-catalog/pkg/crawler"
	"talk-catalog/pkg/db"
	"talk-catalog/pkg/export"
	"talk-catalog/pkg/extract"
	"talk-catalog/pkg/snapshot"
	"talk-catalog/pkg/sources"
)

func main() {
	var (
		dataDir       = flag.String("data-dir", "data", "Directory holding shows.json and the crawl checkpoint")
		interval      = flag.Duration("interval", 24*time.Hour, "Time between crawl runs (0 runs once and exits)")
		retentionYear = flag.Int("retention-year", 0, "Drop broadcasts older than this year (0 keeps everything)")

		playlist   = flag.String("youtube-playlist", "", "YouTube playlist ID to crawl (empty uses the built-in source list)")
		maxVideos  = flag.Int("max-videos", 200, "Max videos per playlist (<=0 means no limit)")
		transcript = flag.Bool("transcripts", true, "Substitute video transcripts for empty or short descriptions")
		feeds      = flag.String("podcast-feeds", "", "Comma-separated podcast RSS feed URLs (empty uses the built-in source list)")

		llmBase  = flag.String("llm-base", "https://api.openai.com/v1", "OpenAI-compatible API base URL")
		llmModel = flag.String("llm-model", "gpt-4o-mini", "Model used for person extraction")

		mongoURI   = flag.String("mongo-uri", "", "MongoDB connection string for the optional catalogue mirror (empty disables)")
		dbName     = flag.String("db", "talkcatalog", "MongoDB database name")
		collection = flag.String("collection", "shows", "MongoDB collection holding mirrored shows")
	)
	flag.Parse()

	apiKey := os.Getenv("OPENAI_KEY")
	if apiKey == "" {
		log.Fatalf("OPENAI_KEY environment variable is required")
	}

	cfg := buildSourceConfig(*playlist, *feeds, *maxVideos, *transcript)

	var srcs []crawler.Source
	if len(cfg.YouTubePlaylists) > 0 {
		youtubeKey := os.Getenv("YOUTUBE_API_KEY")
		if youtubeKey == "" {
			log.Fatalf("YOUTUBE_API_KEY environment variable is required for playlist sources")
		}
		api := sources.NewYouTubeAPI(youtubeKey)
		for _, pl := range cfg.YouTubePlaylists {
			var fetcher sources.TranscriptFetcher
			if pl.Transcripts {
				fetcher = sources.NewTranscriptClient("de", "en")
			}
			srcs = append(srcs, sources.NewYouTubeSource(pl.ID, api, fetcher, pl.MaxVideos))
		}
	}
	for _, feed := range cfg.PodcastFeeds {
		srcs = append(srcs, sources.NewPodcastSource(feed))
	}
	if len(srcs) == 0 {
		log.Fatalf("no sources configured")
	}

	store := snapshot.NewStore(*dataDir)
	enricher := extract.NewExtractor(extract.NewKitCompleter(*llmBase, apiKey, *llmModel))

	var mirror *db.Client
	if *mongoURI != "" {
		mirror = db.NewClient(*mongoURI, *dbName, *collection)
		if err := mirror.Connect(context.Background()); err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer mirror.Close(context.Background())
	}

	c := crawler.New(crawler.Config{
		Sources:       srcs,
		Enricher:      enricher,
		Snapshots:     store,
		RetentionYear: *retentionYear,
	})

	for {
		start := time.Now()
		runOnce(c, mirror, *dataDir)
		log.Printf("Crawl finished. Duration: %s", time.Since(start))

		if *interval <= 0 {
			return
		}
		log.Printf("Next crawl in %s", *interval)
		time.Sleep(*interval)
	}
}

func runOnce(c *crawler.Crawler, mirror *db.Client, dataDir string) {
	ctx := context.Background()

	shows, err := c.Run(ctx)
	if err != nil {
		log.Printf("Crawl failed: %v", err)
		return
	}

	xlsxPath := filepath.Join(dataDir, "shows.xlsx")
	if err := export.WriteFile(shows, xlsxPath); err != nil {
		log.Printf("Spreadsheet export failed: %v", err)
	} else {
		log.Printf("Wrote %s", xlsxPath)
	}

	if mirror != nil {
		if err := mirror.SaveShows(ctx, shows); err != nil {
			log.Printf("Mongo mirror failed: %v", err)
		} else {
			log.Printf("Mirrored %d shows to MongoDB", len(shows))
		}
	}
}

// buildSourceConfig applies flag overrides on top of the built-in
// source list. Setting either override replaces the whole default list.
func buildSourceConfig(playlist, feeds string, maxVideos int, transcripts bool) sources.Config {
	if playlist == "" && feeds == "" {
		return sources.DefaultConfig()
	}

	var cfg sources.Config
	if playlist != "" {
		cfg.YouTubePlaylists = []sources.PlaylistConfig{{
			ID:          playlist,
			Transcripts: transcripts,
			MaxVideos:   maxVideos,
		}}
	}
	for _, feed := range strings.Split(feeds, ",") {
		feed = strings.TrimSpace(feed)
		if feed != "" {
			cfg.PodcastFeeds = append(cfg.PodcastFeeds, feed)
		}
	}
	return cfg
}
