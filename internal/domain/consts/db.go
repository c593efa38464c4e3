package consts

// Tables
const (
	DBProgram  = "program"
	DBChannels = "channels"
	DBVideos   = "videos"
	DBRuns     = "runs"

	DBBlockedDomains = "blocked_domains"
)

// Program
const (
	QProgHost      = "host"
	QProgID        = "id"
	QProgHeartbeat = "last_heartbeat"
	QProgPID       = "pid"
	QProgStartedAt = "started_at"
	QProgRunning   = "running"
)

// Channel
const (
	QChanID             = "id"
	QChanChannelID      = "channel_id"
	QChanName           = "name"
	QChanCategory       = "category"
	QChanUploadPlaylist = "upload_playlist"
	QChanDepth          = "depth"
	QChanConvert        = "convert"
	QChanPaused         = "paused"
	QChanLastScan       = "last_scan"
	QChanCreatedAt      = "created_at"
	QChanUpdatedAt      = "updated_at"
)

// Videos
const (
	QVidID          = "id"
	QVidVideoID     = "video_id"
	QVidChanID      = "channel_id"
	QVidTitle       = "title"
	QVidPublishedAt = "published_at"
	QVidDuration    = "duration_seconds"
	QVidDirectory   = "directory"
	QVidDownloaded  = "downloaded"
	QVidConverted   = "converted"
	QVidLastError   = "last_error"
	QVidMetadata    = "metadata"
	QVidCreatedAt   = "created_at"
	QVidUpdatedAt   = "updated_at"
)

// Runs
const (
	QRunID          = "id"
	QRunUUID        = "run_id"
	QRunStartedAt   = "started_at"
	QRunFinishedAt  = "finished_at"
	QRunChannels    = "channels"
	QRunListed      = "listed"
	QRunTransferred = "transferred"
	QRunMuxed       = "muxed"
	QRunFailed      = "failed"
	QRunError       = "error"
)

// Blocked domains
const (
	QBlockedDomain  = "domain"
	QBlockedContext = "context"
	QBlockedAt      = "blocked_at"
)

// ValidDBColumns lists the columns that may be looked up by key.
var ValidDBColumns = map[string]bool{
	QChanID:             true,
	QChanChannelID:      true,
	QChanName:           true,
	QChanCategory:       true,
	QChanUploadPlaylist: true,
	QVidVideoID:         true,
	QVidDirectory:       true,
}
