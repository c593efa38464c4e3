package oracle

import (
	"context"
	"errors"
	"fmt"
)

// State is the outcome of checking one storage candidate.
type State int

const (
	// Missing means no file exists at the candidate path (or no path was given).
	Missing State = iota
	// Probed means the file was probed; Match tells whether it is within tolerance.
	Probed
	// ProbeFailed means the file exists but its duration could not be read.
	ProbeFailed
)

func (s State) String() string {
	switch s {
	case Missing:
		return "missing"
	case Probed:
		return "probed"
	case ProbeFailed:
		return "probe-failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Verdict is the result for one candidate path.
type Verdict struct {
	Path     string
	State    State
	Duration float64 // probed seconds, when State is Probed
	Match    bool
	Err      error // probe error, when State is ProbeFailed
}

// Remove reports whether the caller should delete the file before retrying.
//
// A probe cut short by cancellation says nothing about the file, so it is kept.
func (v Verdict) Remove() bool {
	if v.State != ProbeFailed {
		return false
	}
	return !errors.Is(v.Err, context.Canceled) && !errors.Is(v.Err, context.DeadlineExceeded)
}

// Candidates are the storage paths an item may already occupy. Empty paths are skipped.
type Candidates struct {
	Combined string
	Video    string
	Audio    string
}

// Result folds the per-candidate verdicts for one item.
type Result struct {
	Combined Verdict
	Video    Verdict
	Audio    Verdict
}

// Converted reports whether the combined file is present and within tolerance.
func (r Result) Converted() bool {
	return r.Combined.State == Probed && r.Combined.Match
}

// Separate reports whether both separate streams are present and within tolerance.
func (r Result) Separate() bool {
	return r.Video.State == Probed && r.Video.Match &&
		r.Audio.State == Probed && r.Audio.Match
}

// Complete reports whether the item needs no further transfer.
func (r Result) Complete() bool {
	return r.Converted() || r.Separate()
}

// Removals lists the paths the caller should delete before a retry.
func (r Result) Removals() []string {
	var out []string
	for _, v := range [...]Verdict{r.Combined, r.Video, r.Audio} {
		if v.Remove() {
			out = append(out, v.Path)
		}
	}
	return out
}

// Errors returns the probe errors recorded in the result.
func (r Result) Errors() []error {
	var out []error
	for _, v := range [...]Verdict{r.Combined, r.Video, r.Audio} {
		if v.Err != nil {
			out = append(out, v.Err)
		}
	}
	return out
}
