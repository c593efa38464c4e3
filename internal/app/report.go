package app

import (
	"errors"
	"fmt"
	"strings"
	"tubarchive/internal/models"

	"github.com/dustin/go-humanize"
)

// Outcome is what happened to one item during a pass.
type Outcome int

const (
	// Skipped items were already complete.
	Skipped Outcome = iota
	// Transferred items were downloaded this pass.
	Transferred
	// Pending items are incomplete but were not transferred (dry run).
	Pending
	// Failed items could not be completed.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Skipped:
		return "skipped"
	case Transferred:
		return "transferred"
	case Pending:
		return "pending"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// ItemReport records the pass over one item.
type ItemReport struct {
	Item      models.MediaItem
	Outcome   Outcome
	Converted bool // a combined file is complete after the pass
	Muxed     bool
	Removed   int
	Err       error
}

// Report summarises the pass over one channel.
type Report struct {
	ChannelID   string
	ChannelName string
	Listed      int
	Skipped     int
	Transferred int
	Pending     int
	Muxed       int
	Removed     int
	Failed      int
	Items       []ItemReport
	Err         error
}

// add folds an item report into the channel totals.
func (r *Report) add(ir ItemReport) {
	switch ir.Outcome {
	case Skipped:
		r.Skipped++
	case Transferred:
		r.Transferred++
	case Pending:
		r.Pending++
	case Failed:
		r.Failed++
	}
	if ir.Muxed {
		r.Muxed++
	}
	r.Removed += ir.Removed
	r.Items = append(r.Items, ir)
}

// Errors returns the item errors of the report.
func (r *Report) Errors() error {
	var errs []error
	if r.Err != nil {
		errs = append(errs, r.Err)
	}
	for _, ir := range r.Items {
		if ir.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ir.Item.ID, ir.Err))
		}
	}
	return errors.Join(errs...)
}

// String returns a one-line summary of the report.
func (r *Report) String() string {
	name := r.ChannelName
	if name == "" {
		name = r.ChannelID
	}
	parts := []string{
		humanize.Comma(int64(r.Listed)) + " listed",
		humanize.Comma(int64(r.Skipped)) + " complete",
		humanize.Comma(int64(r.Transferred)) + " transferred",
		humanize.Comma(int64(r.Muxed)) + " muxed",
	}
	if r.Pending > 0 {
		parts = append(parts, humanize.Comma(int64(r.Pending))+" pending")
	}
	if r.Removed > 0 {
		parts = append(parts, humanize.Comma(int64(r.Removed))+" removed")
	}
	if r.Failed > 0 {
		parts = append(parts, humanize.Comma(int64(r.Failed))+" failed")
	}
	return fmt.Sprintf("%s: %s", name, strings.Join(parts, ", "))
}

// fillRun adds the channel reports to the run totals.
func fillRun(run *models.Run, reports []*Report) {
	run.Channels = len(reports)
	for _, r := range reports {
		run.Listed += r.Listed
		run.Transferred += r.Transferred
		run.Muxed += r.Muxed
		run.Failed += r.Failed
		if r.Err != nil {
			run.Failed++
		}
	}
}
