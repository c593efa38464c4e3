// Package keys holds various keys for software operations, such as terminal input keys and internal Viper keys.
package keys

// Channel identifiers.
const (
	Channels    string = "channel"
	ChannelID   string = "channel-id"
	ChannelName string = "channel-name"
	Category    string = "category"
	ImportFile  string = "import-file"
)

// Upstream access.
const (
	APIKey         string = "api-key"
	APIKeyEnv      string = "YOUTUBE_API_KEY"
	CatalogCacheSz string = "catalog-cache-size"
)

// Files and directories.
const (
	ArchiveDir string = "archive-dir"
	ConfigFile string = "config-file"
)

// Completeness checks and downloads.
const (
	Tolerance         string = "tolerance"
	Depth             string = "depth"
	Convert           string = "convert"
	DryRun            string = "dry-run"
	Captions          string = "captions"
	CaptionLang       string = "caption-lang"
	CookiesBrowser    string = "cookies-from-browser"
	SnapshotPages     string = "snapshot-pages"
	Offline           string = "offline"
	GlobalConcurrency string = "concurrency"
	ItemConcurrency   string = "item-concurrency"
)

// Mux inputs.
const (
	MuxVideo  string = "video"
	MuxAudio  string = "audio"
	MuxOutput string = "output"
)

// External programs.
const (
	FFprobePath string = "ffprobe-path"
	FFmpegPath  string = "ffmpeg-path"
	YTDLPPath   string = "ytdlp-path"
)

// Status server.
const (
	ServeAddr string = "addr"
)

// Program.
const (
	DebugLevel      string = "debug"
	SkipInitialWait string = "skip-initial-wait"
	SkipAllWaits    string = "skip-waits"
)

// Internal (not user facing).
const (
	TerminalRunDefaultBehavior string = "run-default-behavior"
)
