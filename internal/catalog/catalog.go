// Package catalog lists and caches a channel's uploads.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
	"tubarchive/internal/domain/logger"
	"tubarchive/internal/models"
	"tubarchive/internal/parsing"
)

// ErrCatalogUnavailable is returned when the upstream listing could not be completed.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// Lister is the upstream listing API.
type Lister interface {
	Channel(ctx context.Context, channelID string) (*models.ChannelInfo, error)
	ListUploads(ctx context.Context, playlistID, pageToken string) (*models.UploadPage, error)
}

// Catalog serves the uploads of one channel, newest first.
//
// Readers always see a complete snapshot. Fetches are serialised, so concurrent
// cache misses on one Catalog produce a single upstream listing.
type Catalog struct {
	channelID string
	lister    Lister
	now       func() time.Time

	fetchMu    sync.Mutex
	playlist   string // guarded by fetchMu
	upstreamID string // guarded by fetchMu

	snap atomic.Pointer[models.ChannelCatalog]
}

// New returns an empty catalog for channelID.
//
// uploadsPlaylist may be empty, in which case it is resolved on the first fetch.
func New(channelID, uploadsPlaylist string, l Lister) *Catalog {
	return &Catalog{
		channelID: channelID,
		playlist:  uploadsPlaylist,
		lister:    l,
		now:       time.Now,
	}
}

// ChannelID returns the channel this catalog lists.
func (c *Catalog) ChannelID() string {
	return c.channelID
}

// Snapshot returns a copy of the cached catalog, or nil before the first successful fetch.
func (c *Catalog) Snapshot() *models.ChannelCatalog {
	cur := c.snap.Load()
	if cur == nil {
		return nil
	}
	cp := *cur
	cp.Items = cur.Head(0)
	return &cp
}

// Fetch returns the channel's uploads, newest first.
//
// A positive depth returns at most depth items and stops paging once that many are
// known. A depth of zero or less lists everything. Results are served from the
// cache when it can answer the request; otherwise a fresh listing replaces it.
//
// Upstream failures return ErrCatalogUnavailable and leave the cache untouched.
func (c *Catalog) Fetch(ctx context.Context, depth int) ([]models.MediaItem, error) {
	if cur := c.snap.Load(); cur.Satisfies(depth) {
		logger.Pl.D(3, "Serving %d cached uploads for channel %q (depth %d)", len(cur.Items), c.channelID, depth)
		return cur.Head(depth), nil
	}

	c.fetchMu.Lock()
	defer c.fetchMu.Unlock()

	// Another fetcher may have filled the cache while we waited.
	if cur := c.snap.Load(); cur.Satisfies(depth) {
		return cur.Head(depth), nil
	}

	fresh, err := c.list(ctx, depth)
	if err != nil {
		return nil, fmt.Errorf("%w: channel %q: %w", ErrCatalogUnavailable, c.channelID, err)
	}
	c.snap.Store(fresh)

	logger.Pl.D(1, "Listed %d uploads for channel %q (exhaustive: %v)", len(fresh.Items), c.channelID, fresh.Exhaustive)
	return fresh.Head(depth), nil
}

// list pages through the upload playlist from the start. Caller holds fetchMu.
func (c *Catalog) list(ctx context.Context, depth int) (*models.ChannelCatalog, error) {
	if c.playlist == "" {
		info, err := c.lister.Channel(ctx, c.channelID)
		if err != nil {
			return nil, err
		}
		if info == nil || info.UploadsPlaylist == "" {
			return nil, fmt.Errorf("channel %q reports no upload playlist", c.channelID)
		}
		c.playlist = info.UploadsPlaylist
		c.upstreamID = info.ID
	}

	fetchedAt := c.now().UTC()
	var (
		items     []models.MediaItem
		token     string
		truncated bool
	)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := c.lister.ListUploads(ctx, c.playlist, token)
		if err != nil {
			return nil, err
		}
		if page == nil {
			return nil, errors.New("upstream returned an empty page")
		}

		for _, meta := range page.Items {
			item, err := models.ItemFromUpstream(meta, fetchedAt)
			if err != nil {
				if errors.Is(err, parsing.ErrNoDuration) {
					// Upcoming premieres and live streams have no length yet.
					logger.Pl.D(2, "Skipping upload %q with no duration", meta.ID)
					continue
				}
				return nil, err
			}
			items = append(items, item)
		}
		token = page.NextPageToken

		if depth > 0 && len(items) >= depth {
			truncated = len(items) > depth || token != ""
			items = items[:depth]
			break
		}
		if token == "" {
			break
		}
	}

	out := &models.ChannelCatalog{
		ChannelID:       c.channelID,
		UpstreamID:      c.upstreamID,
		UploadsPlaylist: c.playlist,
		Items:           items,
		Exhaustive:      !truncated,
		FetchedAt:       fetchedAt,
	}
	if truncated {
		out.Depth = depth
	}
	return out, nil
}
