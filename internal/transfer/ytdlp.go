// Package transfer downloads media streams with yt-dlp.
package transfer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"tubarchive/internal/blocking"
	"tubarchive/internal/domain/command"
	"tubarchive/internal/domain/consts"
	"tubarchive/internal/domain/errconsts"
	"tubarchive/internal/domain/logger"
	"tubarchive/internal/models"
)

// Transfer errors.
var (
	ErrTransferFailed = errors.New("transfer failed")
	ErrBotDetected    = errors.New("bot detection triggered")
)

// Targets are the exact destination paths for one item.
//
// An empty Captions path disables the captions transfer.
type Targets struct {
	Video    string
	Audio    string
	Captions string
}

// Fetcher downloads the streams of an item.
type Fetcher interface {
	Fetch(ctx context.Context, item models.MediaItem, t Targets) error
}

// YTDLP drives the yt-dlp executable.
type YTDLP struct {
	Path               string
	CookieFile         string
	CookiesFromBrowser string
	CaptionLang        string
	RandomizeRequests  bool
}

// NewYTDLP returns a YTDLP using the executable at path ("yt-dlp" from PATH if empty).
func NewYTDLP(path string) *YTDLP {
	if path == "" {
		path = command.YTDLP
	}
	return &YTDLP{Path: path, CaptionLang: consts.DefaultCaptionLang}
}

// Available reports whether the executable can be found.
func (y *YTDLP) Available() bool {
	_, err := exec.LookPath(y.Path)
	return err == nil
}

// Fetch downloads the best video-only and audio-only streams of item to the
// targets, then its captions when requested and available.
//
// yt-dlp writes into .part files and renames on completion, so an interrupted
// transfer never leaves a file at a target path. Caption failures are logged only.
func (y *YTDLP) Fetch(ctx context.Context, item models.MediaItem, t Targets) error {
	if item.URL == "" {
		return fmt.Errorf("%w: item %q has no URL", ErrTransferFailed, item.ID)
	}

	for _, s := range []struct {
		name, format, out string
	}{
		{"video", command.FormatBestVideoMP4, t.Video},
		{"audio", command.FormatBestAudioM4A, t.Audio},
	} {
		if s.out == "" {
			continue
		}
		logger.Pl.I("Downloading %s stream of %s", s.name, item)
		if err := y.run(ctx, y.streamArgs(item.URL, s.format, s.out)); err != nil {
			return fmt.Errorf("%w: %s stream of %q: %w", ErrTransferFailed, s.name, item.ID, err)
		}
	}

	if t.Captions != "" && item.CaptionsAvailable {
		if err := y.fetchCaptions(ctx, item, t.Captions); err != nil {
			logger.Pl.W("Could not download captions for %s: %v", item, err)
		}
	}
	return nil
}

// fetchCaptions downloads subtitles and moves them to target.
//
// yt-dlp appends the language and format to the output name, so the file it
// writes is located afterwards and renamed.
func (y *YTDLP) fetchCaptions(ctx context.Context, item models.MediaItem, target string) error {
	base := strings.TrimSuffix(target, filepath.Ext(target))
	if err := y.run(ctx, y.captionArgs(item.URL, base)); err != nil {
		return err
	}

	written := base + "." + y.captionLang() + "." + command.SubFormatSRT
	if _, err := os.Stat(written); err != nil {
		matches, _ := filepath.Glob(globEscape(base) + ".*." + command.SubFormatSRT)
		if len(matches) == 0 {
			return fmt.Errorf("no %s captions were written", y.captionLang())
		}
		written = matches[0]
	}
	return os.Rename(written, target)
}

func (y *YTDLP) streamArgs(url, format, out string) []string {
	args := y.commonArgs()
	args = append(args,
		command.Format, format,
		command.Output, out,
		url,
	)
	return args
}

func (y *YTDLP) captionArgs(url, outBase string) []string {
	args := y.commonArgs()
	args = append(args,
		command.SkipDownload,
		command.WriteSubs,
		command.SubLangs, y.captionLang(),
		command.ConvertSubs, command.SubFormatSRT,
		command.Output, outBase,
		url,
	)
	return args
}

func (y *YTDLP) commonArgs() []string {
	args := []string{command.Quiet, command.NoWarnings, command.NoPlaylist, command.ForceOverwrites}

	switch {
	case y.CookieFile != "":
		args = append(args, command.CookiePath, y.CookieFile)
	case y.CookiesFromBrowser != "":
		args = append(args, command.CookiesFromBrowser, y.CookiesFromBrowser)
	}
	if y.RandomizeRequests {
		args = append(args, command.RandomizeRequests...)
	}
	return args
}

func (y *YTDLP) captionLang() string {
	if y.CaptionLang == "" {
		return consts.DefaultCaptionLang
	}
	return y.CaptionLang
}

// run executes yt-dlp, reporting the tail of its output on failure.
func (y *YTDLP) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, y.Path, args...)
	logger.Pl.D(2, "Executing download command: %s", cmd.String())

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if blocking.Detected(out.String()) {
			return fmt.Errorf("%w: %s", ErrBotDetected, lastLine(out.String()))
		}
		return fmt.Errorf(errconsts.YTDLPFailure+": %s", err, lastLine(out.String()))
	}
	return nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// globEscape escapes the glob metacharacters yt-dlp output names commonly contain.
func globEscape(s string) string {
	r := strings.NewReplacer(`[`, `\[`, `]`, `\]`, `*`, `\*`, `?`, `\?`)
	return r.Replace(s)
}
