// Package probe reads media durations with ffprobe.
package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"tubarchive/internal/domain/command"
	"tubarchive/internal/domain/errconsts"
)

// ErrUnprobeable is matched by every error Duration returns for a file whose duration could not be read.
var ErrUnprobeable = errors.New("duration could not be determined")

// ProbeError describes a failed probe.
type ProbeError struct {
	Path   string
	Output string
	Err    error
}

func (e *ProbeError) Error() string {
	msg := fmt.Errorf(errconsts.FFprobeFailure, e.Path, e.Err).Error()
	if e.Output != "" {
		msg += fmt.Sprintf(" (output: %q)", e.Output)
	}
	return msg
}

// Unwrap returns both the cause and ErrUnprobeable.
func (e *ProbeError) Unwrap() []error {
	return []error{ErrUnprobeable, e.Err}
}

// Prober returns a media file's duration in seconds.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// FFprobe probes files by running the ffprobe executable.
//
// A probe is attempted once; retrying is left to the caller, as are timeouts (via ctx).
type FFprobe struct {
	Path string
}

// NewFFprobe returns an FFprobe. If path is empty, "ffprobe" is looked up in PATH.
func NewFFprobe(path string) *FFprobe {
	if path == "" {
		path = command.FFprobe
	}
	return &FFprobe{Path: path}
}

// Available checks if ffprobe is executable.
func (f *FFprobe) Available() bool {
	_, err := exec.LookPath(f.Path)
	return err == nil
}

// Duration returns the container duration of the file at path.
func (f *FFprobe) Duration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, f.Path,
		command.FFprobeLogLevel, "error",
		command.FFprobeShowEntries, command.FFprobeDuration,
		command.FFprobeOutput, command.FFprobeBareValue,
		path,
	)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return 0, &ProbeError{Path: path, Output: strings.TrimSpace(out.String()), Err: err}
	}

	secs, err := ParseDuration(out.Bytes())
	if err != nil {
		return 0, &ProbeError{Path: path, Output: strings.TrimSpace(out.String()), Err: err}
	}
	return secs, nil
}

// ParseDuration parses ffprobe's bare duration output.
//
// ffprobe prints "N/A" for streams without a known duration.
func ParseDuration(out []byte) (float64, error) {
	s := strings.TrimSpace(string(out))
	if s == "" {
		return 0, errors.New("empty ffprobe output")
	}

	// Warnings may precede the value; the duration is the last line.
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[i+1:])
	}

	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable duration %q", s)
	}
	if math.IsNaN(secs) || math.IsInf(secs, 0) || secs < 0 {
		return 0, fmt.Errorf("invalid duration %v", secs)
	}
	return secs, nil
}
