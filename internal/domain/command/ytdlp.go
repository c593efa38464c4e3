// Package command holds flag and argument constants for the external programs the archiver drives.
package command

// yt-dlp
const (
	YTDLP              = "yt-dlp"
	CookiePath         = "--cookies"
	CookiesFromBrowser = "--cookies-from-browser"
	Format             = "-f"
	NoPlaylist         = "--no-playlist"
	ForceOverwrites    = "--force-overwrites"
	Output             = "-o"
	Quiet              = "--quiet"
	NoWarnings         = "--no-warnings"
	SkipDownload       = "--skip-download"
	WriteSubs          = "--write-subs"
	SubLangs           = "--sub-langs"
	ConvertSubs        = "--convert-subs"
	SubFormatSRT       = "srt"

	// Best adaptive mp4 video-only and m4a audio-only streams.
	FormatBestVideoMP4 = "bestvideo[ext=mp4]/bestvideo"
	FormatBestAudioM4A = "bestaudio[ext=m4a]/bestaudio"
)

var (
	RandomizeRequests = []string{"--sleep-requests", "1"}
)

// ffmpeg
const (
	FFmpeg        = "ffmpeg"
	FFInput       = "-i"
	FFCodecVideo  = "-c:v"
	FFCodecAudio  = "-c:a"
	FFCopy        = "copy"
	FFOverwrite   = "-y"
	FFHideBanner  = "-hide_banner"
	FFLogLevel    = "-loglevel"
	FFLogErrOnly  = "error"
	FFMapVideo    = "0:v:0"
	FFMapAudio    = "1:a:0"
	FFMap         = "-map"
	FFMetadataArg = "-metadata"
)

// ffprobe
const (
	FFprobe            = "ffprobe"
	FFprobeLogLevel    = "-v"
	FFprobeShowEntries = "-show_entries"
	FFprobeDuration    = "format=duration"
	FFprobeOutput      = "-of"
	FFprobeBareValue   = "default=noprint_wrappers=1:nokey=1"
)
