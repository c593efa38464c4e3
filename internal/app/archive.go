// Package app runs archive passes over registered channels.
package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
	"tubarchive/internal/blocking"
	"tubarchive/internal/catalog"
	"tubarchive/internal/contracts"
	"tubarchive/internal/domain/consts"
	"tubarchive/internal/domain/logger"
	"tubarchive/internal/library"
	"tubarchive/internal/models"
	"tubarchive/internal/muxer"
	"tubarchive/internal/oracle"
	"tubarchive/internal/scraper"
	"tubarchive/internal/times"
	"tubarchive/internal/transfer"
)

// Options tune an archive pass.
type Options struct {
	// Depth overrides each channel's stored depth when positive.
	Depth int
	// Convert forces muxing for every channel, not only those with convert set.
	Convert bool
	// DryRun checks completeness only. Nothing is written, removed or transferred.
	DryRun bool
	// Captions requests caption transfers for items that have them.
	Captions bool
	// SnapshotPages stores each channel's about page in its channel info.
	SnapshotPages bool
	// StaggerSeconds bounds the random wait before each channel. Zero disables it.
	StaggerSeconds int

	Concurrency     int
	ItemConcurrency int
}

// Archiver ties the catalog, oracle and transfer collaborators together.
type Archiver struct {
	Store    contracts.Store
	Catalogs *catalog.Registry
	Oracle   *oracle.Oracle
	Fetcher  transfer.Fetcher
	Muxer    muxer.Muxer
	Library  *library.Library
	Scraper  *scraper.Scraper // optional
	Options  Options

	// Blocker skips transfers to domains that flagged a bot. Optional.
	Blocker      *blocking.Blocker
	BlockContext blocking.Context
}

// CheckChannels archives every registered channel that is not paused.
func (a *Archiver) CheckChannels(ctx context.Context) ([]*Report, error) {
	channels, hasRows, err := a.Store.ChannelStore().GetAllChannels()
	if err != nil {
		return nil, err
	}
	if !hasRows {
		logger.Pl.I("No channels in database")
		return nil, nil
	}
	return a.Run(ctx, channels)
}

// Run archives the given channels with bounded concurrency.
//
// A failing channel never stops its siblings; every channel error is returned joined.
func (a *Archiver) Run(ctx context.Context, channels []*models.Channel) ([]*Report, error) {
	run, err := a.startRun()
	if err != nil {
		return nil, err
	}

	var (
		conc    = max(a.Options.Concurrency, 1)
		errChan = make(chan error, len(channels))
		sem     = make(chan struct{}, conc)
		mu      sync.Mutex
		reports = make([]*Report, 0, len(channels))
		wg      sync.WaitGroup
	)

	for _, c := range channels {
		if c.Paused {
			logger.Pl.I("Channel %q is paused, skipping checks.", c.DisplayName())
			continue
		}

		wg.Add(1)
		go func(c *models.Channel) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() {
				<-sem
			}()

			r := a.ArchiveChannel(ctx, c)
			mu.Lock()
			reports = append(reports, r)
			mu.Unlock()

			if r.Err != nil {
				errChan <- fmt.Errorf("channel %q: %w", c.DisplayName(), r.Err)
			}
		}(c)
	}

	wg.Wait()
	close(errChan)

	allErrs := make([]error, 0, len(channels))
	for e := range errChan {
		allErrs = append(allErrs, e)
	}
	joined := errors.Join(allErrs...)

	slices.SortFunc(reports, func(x, y *Report) int {
		return strings.Compare(x.ChannelName, y.ChannelName)
	})
	for _, r := range reports {
		logger.Pl.I("%s", r)
	}

	a.finishRun(run, reports, joined)
	return reports, joined
}

// ArchiveChannel runs one pass over a channel.
//
// Item failures are recorded in the report and do not fail the channel. The
// report's Err is only set when the channel could not be listed.
func (a *Archiver) ArchiveChannel(ctx context.Context, c *models.Channel) *Report {
	r := &Report{ChannelID: c.ChannelID, ChannelName: c.DisplayName()}

	if a.Options.StaggerSeconds > 0 {
		if err := times.WaitTime(ctx, times.RandomSecsDuration(a.Options.StaggerSeconds), c.DisplayName()); err != nil {
			r.Err = err
			return r
		}
	}

	depth := c.Depth
	if a.Options.Depth > 0 {
		depth = a.Options.Depth
	}

	cat := a.Catalogs.Catalog(c.ChannelID, c.UploadsPlaylist)
	items, err := cat.Fetch(ctx, depth)
	if err != nil {
		r.Err = err
		return r
	}
	r.Listed = len(items)

	a.learnChannel(c, cat.Snapshot(), items)
	r.ChannelID, r.ChannelName = c.ChannelID, c.DisplayName()

	convert := c.Convert || a.Options.Convert
	logger.Pl.I("Checking %d items for channel %q (depth %d, convert %v, dry run %v)",
		len(items), r.ChannelName, depth, convert, a.Options.DryRun)

	if !a.Options.DryRun {
		a.saveChannelInfo(ctx, c, len(items))
	}

	items = a.Library.PlaceAll(c.Category, c.DisplayName(), items)

	var (
		conc = max(a.Options.ItemConcurrency, 1)
		sem  = make(chan struct{}, conc)
		memo = oracle.NewMemo()
		wg   sync.WaitGroup
		out  = make([]ItemReport, len(items))
	)
	for i, item := range items {
		wg.Add(1)
		go func(i int, item models.MediaItem) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() {
				<-sem
			}()

			out[i] = a.archiveItem(ctx, item, convert, memo)
		}(i, item)
	}
	wg.Wait()

	for _, ir := range out {
		r.add(ir)
	}

	if !a.Options.DryRun && ctx.Err() == nil {
		if err := a.Store.ChannelStore().UpdateLastScan(c.ChannelID); err != nil {
			logger.Pl.E("Failed to update last scan for channel %q: %v", c.DisplayName(), err)
		}
	}
	return r
}

// learnChannel stores the channel ID, name and upload playlist once the catalog has resolved them.
//
// A channel registered by handle is stored under its upstream ID from then on,
// so the video rows of its items can reference it.
func (a *Archiver) learnChannel(c *models.Channel, snap *models.ChannelCatalog, items []models.MediaItem) {
	if id := upstreamChannelID(c, snap, items); id != "" {
		handle := c.ChannelID
		if a.updateChannel(c, "channel ID", func(cs contracts.ChannelStore) error {
			return cs.ResolveChannelID(handle, id)
		}) {
			c.ChannelID = id
			a.Catalogs.Forget(handle)
		}
	}
	if c.UploadsPlaylist == "" && snap != nil && snap.UploadsPlaylist != "" {
		c.UploadsPlaylist = snap.UploadsPlaylist
		a.updateChannel(c, "upload playlist", func(cs contracts.ChannelStore) error {
			return cs.UpdateChannelValue(consts.QChanChannelID, c.ChannelID, consts.QChanUploadPlaylist, c.UploadsPlaylist)
		})
	}
	if c.Name == "" && len(items) > 0 && items[0].ChannelName != "" {
		c.Name = items[0].ChannelName
		a.updateChannel(c, "name", func(cs contracts.ChannelStore) error {
			return cs.UpdateChannelValue(consts.QChanChannelID, c.ChannelID, consts.QChanName, c.Name)
		})
	}
}

// upstreamChannelID returns the upstream ID of a channel still stored by handle, or "".
func upstreamChannelID(c *models.Channel, snap *models.ChannelCatalog, items []models.MediaItem) string {
	if !strings.HasPrefix(c.ChannelID, "@") {
		return ""
	}
	id := ""
	if snap != nil {
		id = snap.UpstreamID
	}
	if id == "" && len(items) > 0 {
		id = items[0].ChannelID
	}
	if id == c.ChannelID {
		return ""
	}
	return id
}

// updateChannel runs fn against the channel store unless this is a dry run, reporting whether it was stored.
func (a *Archiver) updateChannel(c *models.Channel, what string, fn func(contracts.ChannelStore) error) bool {
	if a.Options.DryRun {
		return false
	}
	if err := fn(a.Store.ChannelStore()); err != nil {
		logger.Pl.W("Could not store %s for channel %q: %v", what, c.ChannelID, err)
		return false
	}
	return true
}

// saveChannelInfo writes the channel-level info file, with the about page if requested.
func (a *Archiver) saveChannelInfo(ctx context.Context, c *models.Channel, total int) {
	snap := library.ChannelSnapshot{
		ID:          c.ChannelID,
		Name:        c.DisplayName(),
		FetchedAt:   time.Now(),
		TotalVideos: total,
	}
	if a.Options.SnapshotPages && a.Scraper != nil {
		page, err := a.Scraper.ChannelAbout(ctx, c.ChannelID)
		if err != nil {
			logger.Pl.W("Could not snapshot about page for channel %q: %v", c.DisplayName(), err)
		} else {
			snap.Description = page.Description
			snap.AboutHTML = page.HTML
		}
	}

	dir := a.Library.ChannelDir(c.Category, c.DisplayName())
	if err := library.SaveChannelInfo(dir, snap); err != nil {
		logger.Pl.E("Failed to save channel info for %q: %v", c.DisplayName(), err)
	}
}

// startRun records the start of a pass. Dry runs are not recorded.
func (a *Archiver) startRun() (*models.Run, error) {
	if a.Options.DryRun {
		return nil, nil
	}
	run, err := a.Store.RunStore().StartRun(time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to record run start: %w", err)
	}
	logger.Pl.D(1, "Started run %s", run.RunID)
	return run, nil
}

// finishRun stores the pass totals.
func (a *Archiver) finishRun(run *models.Run, reports []*Report, err error) {
	if run == nil {
		return
	}
	fillRun(run, reports)
	if err != nil {
		run.Error = err.Error()
	}
	if ferr := a.Store.RunStore().FinishRun(run); ferr != nil {
		logger.Pl.E("Failed to record run %s: %v", run.RunID, ferr)
	}
}
