// Package oracle decides whether an item is already fully present on disk.
//
// The oracle compares probed file durations against the item's expected
// duration. It never deletes anything: a candidate whose duration cannot be read
// is reported as ProbeFailed and left for the caller to remove.
package oracle

import (
	"context"
	"errors"
	"math"
	"os"
	"time"
	"tubarchive/internal/domain/consts"
	"tubarchive/internal/models"
	"tubarchive/internal/probe"
)

// Oracle checks item completeness. It holds no mutable state and is safe for concurrent use.
type Oracle struct {
	Prober    probe.Prober
	Tolerance time.Duration
}

// New returns an Oracle. A non-positive tolerance selects the default.
func New(p probe.Prober, tolerance time.Duration) *Oracle {
	if tolerance <= 0 {
		tolerance = consts.DefaultTolerance
	}
	return &Oracle{Prober: p, Tolerance: tolerance}
}

// IsComplete reports whether the item is fully present at one of the candidates.
func (o *Oracle) IsComplete(ctx context.Context, item models.MediaItem, c Candidates, memo *Memo) bool {
	return o.Check(ctx, item, c, memo).Complete()
}

// Check evaluates the candidates for item.
//
// A matching combined file short-circuits the check and the separate streams are
// not probed. Otherwise the video and audio streams are probed only when both
// exist, and must each match the expected duration.
//
// memo may be nil. When set, verdicts computed earlier in the same pass for an
// unchanged file are reused instead of probing again.
func (o *Oracle) Check(ctx context.Context, item models.MediaItem, c Candidates, memo *Memo) Result {
	var r Result

	r.Combined = o.evaluate(ctx, item, c.Combined, memo)
	if r.Converted() {
		r.Video = Verdict{Path: c.Video}
		r.Audio = Verdict{Path: c.Audio}
		return r
	}

	if exists(c.Video) && exists(c.Audio) {
		r.Video = o.evaluate(ctx, item, c.Video, memo)
		r.Audio = o.evaluate(ctx, item, c.Audio, memo)
		return r
	}

	r.Video = Verdict{Path: c.Video}
	r.Audio = Verdict{Path: c.Audio}
	return r
}

// evaluate produces the verdict for one path.
func (o *Oracle) evaluate(ctx context.Context, item models.MediaItem, path string, memo *Memo) Verdict {
	if path == "" {
		return Verdict{}
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return Verdict{Path: path, State: Missing}
	}

	key := memoKey(path, info)
	secs, probeErr, ok := memo.load(key)
	if !ok {
		secs, probeErr = o.Prober.Duration(ctx, path)
		// A cancelled probe says nothing about the file.
		if !errors.Is(probeErr, context.Canceled) && !errors.Is(probeErr, context.DeadlineExceeded) {
			memo.store(key, secs, probeErr)
		}
	}

	if probeErr != nil {
		if !errors.Is(probeErr, probe.ErrUnprobeable) {
			probeErr = &probe.ProbeError{Path: path, Err: probeErr}
		}
		return Verdict{Path: path, State: ProbeFailed, Err: probeErr}
	}

	return Verdict{
		Path:     path,
		State:    Probed,
		Duration: secs,
		Match:    o.within(item, secs),
	}
}

// within reports whether the probed seconds are strictly inside the tolerance.
func (o *Oracle) within(item models.MediaItem, secs float64) bool {
	tol := o.Tolerance
	if item.Tolerance > 0 {
		tol = item.Tolerance
	}
	return math.Abs(secs-item.Duration.Seconds()) < tol.Seconds()
}

// exists reports whether a regular file is present at path.
func exists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
