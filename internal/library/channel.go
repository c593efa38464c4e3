package library

import (
	"path/filepath"
	"time"
	"tubarchive/internal/file"
)

// ChannelSnapshot is the channel-level info.json.
type ChannelSnapshot struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	FetchedAt   time.Time `json:"fetched_at"`
	TotalVideos int       `json:"total_videos"`
	AboutHTML   string    `json:"about_html,omitempty"`
}

// SaveChannelInfo writes the channel snapshot into channelDir.
func SaveChannelInfo(channelDir string, snap ChannelSnapshot) error {
	return file.WriteJSON(filepath.Join(channelDir, InfoFile), snap)
}

// ReadChannelInfo reads the channel snapshot in channelDir.
func ReadChannelInfo(channelDir string) (ChannelSnapshot, error) {
	var snap ChannelSnapshot
	err := file.ReadJSON(filepath.Join(channelDir, InfoFile), &snap)
	return snap, err
}
