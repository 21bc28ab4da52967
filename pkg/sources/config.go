package sources

// PlaylistConfig configures one YouTube playlist source.
type PlaylistConfig struct {
	ID          string
	Transcripts bool // substitute transcript text for video descriptions
	MaxVideos   int  // cap applied after full pagination; 0 = unlimited
}

// Config is the static source list the crawler runs against.
type Config struct {
	YouTubePlaylists []PlaylistConfig
	PodcastFeeds     []string
}

// DefaultConfig returns the built-in Austrian talk show sources.
func DefaultConfig() Config {
	return Config{
		YouTubePlaylists: []PlaylistConfig{
			{ID: "PLgLaRsInxwnad9EE8NmTNvdXY4VYudh0n", Transcripts: true, MaxVideos: 200}, // Fellner Live & Isabella Daniel
		},
		PodcastFeeds: []string{
			// ORF
			"https://podcast.orf.at/podcast/tv/tv_zib2/tv_zib2.xml",                         // ZIB 2
			"https://podcast.orf.at/podcast/tv/tv_pressestunde/tv_pressestunde.xml",         // Pressestunde
			"https://podcast.orf.at/podcast/tv/tv_reportinterviews/tv_reportinterviews.xml", // Report Interviews
			// Servus TV
			"https://www.spreaker.com/show/5965125/episodes/feed", // Talk im Hangar 7
			"https://www.spreaker.com/show/5965147/episodes/feed", // Links. Rechts. Mitte - Duell der Meinungsmacher
			// PULS24
			"https://wildumstritten.podigee.io/feed/mp3", // Wild umstritten
			"https://pro-und-contra.podigee.io/feed/mp3", // Pro & Contra
			"https://milborn.podigee.io/feed/mp3",        // Milborn
		},
	}
}
