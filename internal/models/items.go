package models

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"tubarchive/internal/parsing"
)

const watchURLFormat = "https://www.youtube.com/watch?v=%s"

// ItemMetadata is one upload as reported by the upstream listing API.
//
// Counters are nil when the upstream omitted them.
type ItemMetadata struct {
	ID                string
	Title             string
	ChannelID         string
	ChannelName       string
	PublishedAt       string
	Duration          string // ISO-8601, e.g. PT1H2M3S
	Description       string
	Tags              []string
	CategoryID        string
	Thumbnail         string
	CaptionsAvailable bool

	Views     *int64
	Likes     *int64
	Dislikes  *int64
	Favorites *int64
	Comments  *int64
}

// UploadPage is one page of a channel's upload playlist.
type UploadPage struct {
	Items         []ItemMetadata
	NextPageToken string
}

// MediaItem describes one upload to archive.
//
// Duration is the authoritative length reported upstream and is what completeness
// checks compare against. MediaItem is a value type: catalogs hand out copies.
type MediaItem struct {
	ID                string
	URL               string
	Title             string
	ChannelID         string
	ChannelName       string
	PublishedAt       time.Time
	Duration          time.Duration
	Description       string
	Tags              []string
	CategoryID        string
	Thumbnail         string
	CaptionsAvailable bool
	Stats             Stats
	FetchedAt         time.Time

	// Locator is the item's storage directory. Empty until placed by a library layout.
	Locator string
	// Tolerance overrides the oracle's default tolerance when non-zero.
	Tolerance time.Duration
}

// ItemFromUpstream builds a MediaItem from upstream metadata.
func ItemFromUpstream(meta ItemMetadata, fetchedAt time.Time) (MediaItem, error) {
	if strings.TrimSpace(meta.ID) == "" {
		return MediaItem{}, fmt.Errorf("upstream item has no id (title %q)", meta.Title)
	}

	dur, err := parsing.ISODuration(meta.Duration)
	if err != nil {
		return MediaItem{}, fmt.Errorf("item %q: %w", meta.ID, err)
	}

	var published time.Time
	if meta.PublishedAt != "" {
		if published, err = parsing.ParseTimestamp(meta.PublishedAt); err != nil {
			return MediaItem{}, fmt.Errorf("item %q: %w", meta.ID, err)
		}
	}

	return MediaItem{
		ID:                meta.ID,
		URL:               fmt.Sprintf(watchURLFormat, meta.ID),
		Title:             meta.Title,
		ChannelID:         meta.ChannelID,
		ChannelName:       meta.ChannelName,
		PublishedAt:       published,
		Duration:          dur,
		Description:       meta.Description,
		Tags:              meta.Tags,
		CategoryID:        meta.CategoryID,
		Thumbnail:         meta.Thumbnail,
		CaptionsAvailable: meta.CaptionsAvailable,
		FetchedAt:         fetchedAt,
		Stats: Stats{
			Views:     meta.Views,
			Likes:     meta.Likes,
			Dislikes:  meta.Dislikes,
			Favorites: meta.Favorites,
			Comments:  meta.Comments,
		},
	}, nil
}

// Clone returns a copy of the item sharing no memory with m.
func (m MediaItem) Clone() MediaItem {
	m.Tags = slices.Clone(m.Tags)
	m.Stats = m.Stats.Clone()
	return m
}

// WithLocator returns a copy of the item placed at dir.
func (m MediaItem) WithLocator(dir string) MediaItem {
	m.Locator = dir
	return m
}

// String returns the item's display form, e.g. "[2021-03-04] Title".
func (m MediaItem) String() string {
	if m.PublishedAt.IsZero() {
		return m.Title
	}
	return fmt.Sprintf("[%s] %s", m.PublishedAt.Format(time.DateOnly), m.Title)
}
