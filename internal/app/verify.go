package app

import (
	"context"
	"errors"
	"fmt"
	"tubarchive/internal/domain/logger"
	"tubarchive/internal/library"
	"tubarchive/internal/models"
	"tubarchive/internal/oracle"
)

// VerifyLocal checks the channels' archived items from their info files on disk.
//
// The upstream is not listed, so uploads that were never archived are not reported.
// Nothing is written or removed.
func (a *Archiver) VerifyLocal(ctx context.Context, channels []*models.Channel) ([]*Report, error) {
	var (
		reports = make([]*Report, 0, len(channels))
		errs    []error
	)
	for _, c := range channels {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		r := a.verifyChannelLocal(ctx, c)
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("channel %q: %w", c.DisplayName(), r.Err))
		}
		reports = append(reports, r)
	}
	return reports, errors.Join(errs...)
}

func (a *Archiver) verifyChannelLocal(ctx context.Context, c *models.Channel) *Report {
	r := &Report{ChannelID: c.ChannelID, ChannelName: c.DisplayName()}
	dir := a.Library.ChannelDir(c.Category, c.DisplayName())

	if snap, err := library.ReadChannelInfo(dir); err == nil && snap.Name != "" {
		r.ChannelName = snap.Name
	}
	items, err := library.LocalItems(dir)
	if err != nil {
		r.Err = err
		return r
	}
	r.Listed = len(items)
	logger.Pl.D(1, "Verifying %d archived items of channel %q in %q", len(items), r.ChannelName, dir)

	memo := oracle.NewMemo()
	for _, item := range items {
		files := library.ItemFiles(item)
		ir := ItemReport{Item: item, Outcome: Pending}
		switch {
		case a.Oracle.IsComplete(ctx, item, oracle.Candidates{Combined: files.Combined}, memo):
			ir.Outcome, ir.Converted = Skipped, true
		case a.Oracle.IsComplete(ctx, item, oracle.Candidates{Video: files.Video, Audio: files.Audio}, memo):
			ir.Outcome = Skipped
		}
		r.add(ir)
	}
	return r
}
