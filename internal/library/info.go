package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
	"tubarchive/internal/domain/logger"
	"tubarchive/internal/file"
	"tubarchive/internal/models"
)

// ErrNotPlaced is returned when an item without a Locator is persisted.
var ErrNotPlaced = errors.New("item has no library location")

// itemInfo is the info.json document.
type itemInfo struct {
	ID                string       `json:"id"`
	URL               string       `json:"url"`
	Title             string       `json:"title"`
	ChannelID         string       `json:"channel_id"`
	ChannelName       string       `json:"channel"`
	PublishedAt       time.Time    `json:"created_at"`
	DurationSeconds   float64      `json:"duration_seconds"`
	Description       string       `json:"description"`
	Tags              []string     `json:"tags"`
	CategoryID        string       `json:"category_id,omitempty"`
	Thumbnail         string       `json:"thumbnail"`
	CaptionsAvailable bool         `json:"captions"`
	Stats             models.Stats `json:"statistics"`
	FetchedAt         time.Time    `json:"fetched_at"`
}

// SaveInfo writes the item's info.json into its directory.
func SaveInfo(item models.MediaItem) error {
	if item.Locator == "" {
		return fmt.Errorf("%w: %s", ErrNotPlaced, item.ID)
	}
	info := itemInfo{
		ID:                item.ID,
		URL:               item.URL,
		Title:             item.Title,
		ChannelID:         item.ChannelID,
		ChannelName:       item.ChannelName,
		PublishedAt:       item.PublishedAt,
		DurationSeconds:   item.Duration.Seconds(),
		Description:       item.Description,
		Tags:              item.Tags,
		CategoryID:        item.CategoryID,
		Thumbnail:         item.Thumbnail,
		CaptionsAvailable: item.CaptionsAvailable,
		Stats:             item.Stats,
		FetchedAt:         item.FetchedAt,
	}
	return file.WriteJSON(filepath.Join(item.Locator, InfoFile), info)
}

// ItemFromCache rebuilds an item from the info.json in dir.
func ItemFromCache(dir string) (models.MediaItem, error) {
	var info itemInfo
	if err := file.ReadJSON(filepath.Join(dir, InfoFile), &info); err != nil {
		return models.MediaItem{}, err
	}
	if info.ID == "" {
		return models.MediaItem{}, fmt.Errorf("info in %q has no item id", dir)
	}

	return models.MediaItem{
		ID:                info.ID,
		URL:               info.URL,
		Title:             info.Title,
		ChannelID:         info.ChannelID,
		ChannelName:       info.ChannelName,
		PublishedAt:       info.PublishedAt,
		Duration:          time.Duration(info.DurationSeconds * float64(time.Second)),
		Description:       info.Description,
		Tags:              info.Tags,
		CategoryID:        info.CategoryID,
		Thumbnail:         info.Thumbnail,
		CaptionsAvailable: info.CaptionsAvailable,
		Stats:             info.Stats,
		FetchedAt:         info.FetchedAt,
		Locator:           dir,
	}, nil
}

// LocalItems returns every item with an info.json under channelDir, newest first.
//
// Directories without a readable info.json are skipped.
func LocalItems(channelDir string) ([]models.MediaItem, error) {
	entries, err := os.ReadDir(channelDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var items []models.MediaItem
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(channelDir, e.Name())
		item, err := ItemFromCache(dir)
		if err != nil {
			logger.Pl.D(2, "Skipping %q: %v", dir, err)
			continue
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})
	return items, nil
}
