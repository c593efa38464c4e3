// Package contracts defines interfaces that decouple the application layer from storage implementations.
package contracts

import (
	"database/sql"
	"time"
	"tubarchive/internal/models"
)

// Store allows access to the main store repo methods.
type Store interface {
	ChannelStore() ChannelStore
	VideoStore() VideoStore
	RunStore() RunStore
}

// ChannelStore allows access to channel repo methods.
type ChannelStore interface {
	GetDB() *sql.DB

	AddChannel(c *models.Channel) (int64, error)
	ImportChannels(channels []*models.Channel) (added int, err error)
	UpdateChannelValue(key, val, col string, newVal any) error
	UpdateLastScan(channelID string) error
	ResolveChannelID(handle, channelID string) error
	DeleteChannel(key, val string) error
	GetAllChannels() (channels []*models.Channel, hasRows bool, err error)
	GetChannelModel(key, val string) (*models.Channel, bool, error)
}

// VideoStore allows access to video repo methods.
type VideoStore interface {
	GetDB() *sql.DB

	UpsertVideo(v *models.Video) error
	SetVideoState(videoID string, state models.ItemState) error
	GetVideo(videoID string) (*models.Video, bool, error)
	GetChannelVideos(channelID string) ([]*models.Video, error)
}

// RunStore allows access to archive run history.
type RunStore interface {
	StartRun(startedAt time.Time) (*models.Run, error)
	FinishRun(run *models.Run) error
	LatestRuns(limit int) ([]*models.Run, error)
}
