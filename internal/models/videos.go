package models

import (
	"time"
)

// Video is the registry row for an archived upload.
//
// Matches the order of the DB table, do not alter.
type Video struct {
	ID              int64     `json:"id" db:"id"`
	VideoID         string    `json:"video_id" db:"video_id"`
	ChannelID       string    `json:"channel_id" db:"channel_id"`
	Title           string    `json:"title" db:"title"`
	PublishedAt     time.Time `json:"published_at" db:"published_at"`
	DurationSeconds float64   `json:"duration_seconds" db:"duration_seconds"`
	Directory       string    `json:"directory" db:"directory"`
	Downloaded      bool      `json:"downloaded" db:"downloaded"`
	Converted       bool      `json:"converted" db:"converted"`
	LastError       string    `json:"last_error" db:"last_error"`
	Stats           Stats     `json:"stats" db:"metadata"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// VideoFromItem builds the registry row for an item.
func VideoFromItem(m MediaItem) *Video {
	return &Video{
		VideoID:         m.ID,
		ChannelID:       m.ChannelID,
		Title:           m.Title,
		PublishedAt:     m.PublishedAt,
		DurationSeconds: m.Duration.Seconds(),
		Directory:       m.Locator,
		Stats:           m.Stats,
	}
}

// ItemState is the completeness state recorded for a video after a pass.
type ItemState struct {
	Downloaded bool
	Converted  bool
	LastError  string
}
