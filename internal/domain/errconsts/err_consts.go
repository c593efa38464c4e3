// Package errconsts holds constant error messages
package errconsts

// Programs
const (
	YTDLPFailure   = "yt-dlp command failed: %w"
	FFmpegFailure  = "ffmpeg merge failed: %w"
	FFprobeFailure = "ffprobe failed for %q: %w"
)

// File
const (
	ConfigFileLoadFail = "failed to load config file %q: %w"
	RemoveArtifactFail = "failed to remove unreadable artifact %q: %v"
)
