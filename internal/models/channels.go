// Package models holds structs for modelling data, e.g. Channel data, MediaItem data, etc.
package models

import (
	"time"
)

// Channel is a channel registered for archiving.
//
// Matches the order of the DB table, do not alter.
type Channel struct {
	ID              int64     `json:"id" db:"id"`
	ChannelID       string    `json:"channel_id" db:"channel_id"`
	Name            string    `json:"name" db:"name"`
	Category        string    `json:"category" db:"category"`
	UploadsPlaylist string    `json:"upload_playlist" db:"upload_playlist"`
	Depth           int       `json:"depth" db:"depth"`
	Convert         bool      `json:"convert" db:"convert"`
	Paused          bool      `json:"paused" db:"paused"`
	LastScan        time.Time `json:"last_scan" db:"last_scan"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// DisplayName returns the channel name, or the channel ID if no name is stored yet.
func (c *Channel) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ChannelID
}

// ChannelInfo is the upstream description of a channel.
type ChannelInfo struct {
	ID              string
	Name            string
	Description     string
	PublishedAt     time.Time
	UploadsPlaylist string
}

// ChannelCatalog is the ordered list of uploads known for one channel.
//
// When Exhaustive is true, Items holds every upload the upstream listed at FetchedAt.
// Otherwise Items is a prefix of unknown total length, holding at most Depth items.
type ChannelCatalog struct {
	ChannelID string
	// UpstreamID is the "UC..." ID the upstream reported when ChannelID was resolved
	// through it, e.g. from a handle. Empty if the catalog never had to resolve it.
	UpstreamID      string
	UploadsPlaylist string
	Items           []MediaItem
	Exhaustive      bool
	Depth           int
	FetchedAt       time.Time
}

// Satisfies reports whether the catalog can answer a request for depth items (depth <= 0 means all).
func (cc *ChannelCatalog) Satisfies(depth int) bool {
	if cc == nil {
		return false
	}
	if cc.Exhaustive {
		return true
	}
	return depth > 0 && len(cc.Items) >= depth
}

// Head returns a copy of the first depth items (all items if depth <= 0 or exceeds the length).
//
// Tags and counters are copied too, so callers may modify the result freely.
func (cc *ChannelCatalog) Head(depth int) []MediaItem {
	n := len(cc.Items)
	if depth > 0 && depth < n {
		n = depth
	}
	out := make([]MediaItem, n)
	for i, item := range cc.Items[:n] {
		out[i] = item.Clone()
	}
	return out
}
