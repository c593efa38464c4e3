package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"tubarchive/internal/domain/consts"
	"tubarchive/internal/domain/errconsts"
	"tubarchive/internal/domain/logger"
	"tubarchive/internal/library"
	"tubarchive/internal/models"
	"tubarchive/internal/muxer"
	"tubarchive/internal/oracle"
	"tubarchive/internal/transfer"
)

// ErrIncompleteAfterTransfer is recorded when freshly transferred streams fail the completeness check.
var ErrIncompleteAfterTransfer = errors.New("streams incomplete after transfer")

// archiveItem brings one placed item to completion.
//
// The item's info and stats are recorded first, then the oracle decides whether
// anything needs transferring. Artifacts the oracle could not probe are deleted
// before the transfer. When convert is set the separate streams are muxed.
func (a *Archiver) archiveItem(ctx context.Context, item models.MediaItem, convert bool, memo *oracle.Memo) (ir ItemReport) {
	ir.Item = item
	files := library.ItemFiles(item)
	candidates := oracle.Candidates{
		Combined: files.Combined,
		Video:    files.Video,
		Audio:    files.Audio,
	}

	if err := ctx.Err(); err != nil {
		ir.Outcome, ir.Err = Failed, err
		return ir
	}

	if !a.Options.DryRun {
		a.recordItem(item)
		defer func() {
			a.recordState(item.ID, ir)
		}()
	}

	res := a.Oracle.Check(ctx, item, candidates, memo)
	logger.Pl.D(2, "Item %s: combined=%s video=%s audio=%s", item, res.Combined.State, res.Video.State, res.Audio.State)
	if !a.Options.DryRun {
		ir.Removed = removeArtifacts(res.Removals())
	}

	switch {
	case res.Converted():
		ir.Outcome, ir.Converted = Skipped, true
		return ir
	case res.Separate():
		ir.Outcome = Skipped
	case a.Options.DryRun:
		ir.Outcome = Pending
		logger.Pl.I("Would transfer %s", item)
		return ir
	default:
		if err := a.transferItem(ctx, item, files, memo); err != nil {
			ir.Outcome, ir.Err = Failed, err
			logger.Pl.E("Failed to transfer %s: %v", item, err)
			return ir
		}
		ir.Outcome = Transferred
		logger.Pl.S("Transferred %s", item)
	}

	if !convert || a.Options.DryRun {
		return ir
	}
	if err := a.Muxer.Merge(ctx, files.Video, files.Audio, files.Combined, muxer.MetadataFor(item)); err != nil {
		ir.Outcome, ir.Err = Failed, err
		logger.Pl.E("Failed to mux %s: %v", item, err)
		return ir
	}
	ir.Muxed, ir.Converted = true, true
	logger.Pl.S("Muxed %s", item)
	return ir
}

// transferItem downloads the item's streams and re-checks them.
func (a *Archiver) transferItem(ctx context.Context, item models.MediaItem, files library.Files, memo *oracle.Memo) error {
	if err := os.MkdirAll(files.Dir, consts.PermsGenericDir); err != nil {
		return fmt.Errorf("%w: failed to create %q: %w", transfer.ErrTransferFailed, files.Dir, err)
	}

	targets := transfer.Targets{Video: files.Video, Audio: files.Audio}
	if a.Options.Captions && item.CaptionsAvailable {
		if _, err := os.Stat(files.Captions); errors.Is(err, os.ErrNotExist) {
			targets.Captions = files.Captions
		}
	}
	if a.Blocker != nil {
		if err := a.Blocker.Check(item.URL, a.BlockContext); err != nil {
			return err
		}
	}
	if err := a.Fetcher.Fetch(ctx, item, targets); err != nil {
		if a.Blocker != nil && errors.Is(err, transfer.ErrBotDetected) {
			if berr := a.Blocker.Block(item.URL, a.BlockContext); berr != nil {
				logger.Pl.E("Failed to record block: %v", berr)
			}
		}
		return err
	}

	res := a.Oracle.Check(ctx, item, oracle.Candidates{Video: files.Video, Audio: files.Audio}, memo)
	if !res.Separate() {
		return errors.Join(append([]error{ErrIncompleteAfterTransfer}, res.Errors()...)...)
	}
	return nil
}

// recordItem saves the item's info, stats row and registry entry. Failures are logged only.
func (a *Archiver) recordItem(item models.MediaItem) {
	if err := library.SaveInfo(item); err != nil {
		logger.Pl.E("Failed to save info for %s: %v", item, err)
	}
	if err := library.AppendStats(item); err != nil {
		logger.Pl.E("Failed to append stats for %s: %v", item, err)
	}
	if err := a.Store.VideoStore().UpsertVideo(models.VideoFromItem(item)); err != nil {
		logger.Pl.E("Failed to store video %s: %v", item.ID, err)
	}
}

// recordState stores the item's completeness state in the registry.
func (a *Archiver) recordState(videoID string, ir ItemReport) {
	state := models.ItemState{
		Downloaded: ir.Outcome == Skipped || ir.Outcome == Transferred,
		Converted:  ir.Converted,
	}
	if ir.Err != nil {
		state.LastError = ir.Err.Error()
	}
	if err := a.Store.VideoStore().SetVideoState(videoID, state); err != nil {
		logger.Pl.E("Failed to store state of video %s: %v", videoID, err)
	}
}

// removeArtifacts deletes files the oracle could not probe, returning how many were removed.
func removeArtifacts(paths []string) (n int) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Pl.E(errconsts.RemoveArtifactFail, p, err)
			continue
		}
		logger.Pl.W("Removed unprobeable file %q", p)
		n++
	}
	return n
}
