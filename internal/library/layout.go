// Package library maps items onto the archive directory tree and persists
// their metadata next to the media.
package library

import (
	"path/filepath"
	"tubarchive/internal/domain/consts"
	"tubarchive/internal/models"
	"tubarchive/internal/parsing"
)

// Fixed file names inside an item directory.
const (
	InfoFile  = "info.json"
	StatsFile = "stats.csv"

	videoPrefix    = "[video] "
	audioPrefix    = "[audio] "
	captionsPrefix = "[captions] "
	mediaExt       = ".mp4"
	captionsExt    = ".srt"
)

// Library is an archive rooted at one directory.
//
// Layout: <root>/<category>/<channel>/[yyyy-mm-dd] <title>/
type Library struct {
	Root string
}

// New returns a library rooted at root.
func New(root string) *Library {
	return &Library{Root: root}
}

// ChannelDir returns the directory holding every item of a channel.
func (l *Library) ChannelDir(category, channelName string) string {
	if category == "" {
		category = consts.DefaultCategory
	}
	return filepath.Join(l.Root, parsing.SanitizeFilename(category), parsing.SanitizeFilename(channelName))
}

// ItemDir returns the directory an item is stored in.
func (l *Library) ItemDir(category, channelName string, item models.MediaItem) string {
	name := parsing.DateSlug(item.PublishedAt) + " " + parsing.SanitizeFilename(item.Title)
	return filepath.Join(l.ChannelDir(category, channelName), name)
}

// Place returns a copy of item with its Locator set to its library directory.
//
// When that directory already holds another item's info file, the item's ID is
// appended to the directory name.
func (l *Library) Place(category, channelName string, item models.MediaItem) models.MediaItem {
	dir := l.ItemDir(category, channelName, item)
	if heldByOther(dir, item.ID) {
		dir = withID(dir, item.ID)
	}
	return item.WithLocator(dir)
}

// PlaceAll places items in order. An item whose directory was already given to
// an earlier item gets its ID appended, as Place does for items on disk.
func (l *Library) PlaceAll(category, channelName string, items []models.MediaItem) []models.MediaItem {
	out := make([]models.MediaItem, len(items))
	claimed := make(map[string]bool, len(items))
	for i, item := range items {
		placed := l.Place(category, channelName, item)
		if claimed[placed.Locator] {
			placed = placed.WithLocator(withID(placed.Locator, item.ID))
		}
		claimed[placed.Locator] = true
		out[i] = placed
	}
	return out
}

// heldByOther reports whether dir holds the info file of an item other than id.
func heldByOther(dir, id string) bool {
	held, err := ItemFromCache(dir)
	return err == nil && held.ID != id
}

func withID(dir, id string) string {
	return dir + " [" + parsing.SanitizeFilename(id) + "]"
}

// Files are the paths of every artifact an item directory may hold.
type Files struct {
	Dir      string
	Combined string
	Video    string
	Audio    string
	Captions string
	Info     string
	Stats    string
}

// FilesFor returns the artifact paths for an item placed at dir.
func FilesFor(dir, id string) Files {
	return Files{
		Dir:      dir,
		Combined: filepath.Join(dir, id+mediaExt),
		Video:    filepath.Join(dir, videoPrefix+id+mediaExt),
		Audio:    filepath.Join(dir, audioPrefix+id+mediaExt),
		Captions: filepath.Join(dir, captionsPrefix+id+captionsExt),
		Info:     filepath.Join(dir, InfoFile),
		Stats:    filepath.Join(dir, StatsFile),
	}
}

// ItemFiles returns the artifact paths for a placed item.
func ItemFiles(item models.MediaItem) Files {
	return FilesFor(item.Locator, item.ID)
}
