// Package muxer combines separate video and audio streams into one container.
package muxer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
	"tubarchive/internal/domain/command"
	"tubarchive/internal/domain/errconsts"
	"tubarchive/internal/domain/logger"
	"tubarchive/internal/models"
)

// Muxer merges a video and an audio stream.
type Muxer interface {
	Merge(ctx context.Context, videoPath, audioPath, outputPath string, meta Metadata) error
}

// Metadata is written into the merged container.
type Metadata struct {
	Title       string
	Artist      string
	Date        string
	Description string
}

// MetadataFor returns container metadata for an item.
func MetadataFor(item models.MediaItem) Metadata {
	m := Metadata{
		Title:       item.Title,
		Artist:      item.ChannelName,
		Description: item.Description,
	}
	if !item.PublishedAt.IsZero() {
		m.Date = item.PublishedAt.Format(time.DateOnly)
	}
	return m
}

// FFmpeg implements Muxer with the ffmpeg executable.
type FFmpeg struct {
	Path string
}

// NewFFmpeg returns an FFmpeg muxer. If path is empty, "ffmpeg" is looked up in PATH.
func NewFFmpeg(path string) *FFmpeg {
	if path == "" {
		path = command.FFmpeg
	}
	return &FFmpeg{Path: path}
}

// Available checks if ffmpeg is executable.
func (f *FFmpeg) Available() bool {
	_, err := exec.LookPath(f.Path)
	return err == nil
}

// Merge stream-copies the first video stream of videoPath and the first audio
// stream of audioPath into outputPath.
//
// The output is written under a temporary name and renamed into place, replacing
// any previous file. The inputs are deleted after a successful merge.
func (f *FFmpeg) Merge(ctx context.Context, videoPath, audioPath, outputPath string, meta Metadata) error {
	tmp := tempOutput(outputPath)
	defer func() {
		if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
			logger.Pl.W("Failed to remove temporary mux output %q: %v", tmp, err)
		}
	}()

	cmd := exec.CommandContext(ctx, f.Path, mergeArgs(videoPath, audioPath, tmp, meta)...)
	logger.Pl.D(2, "Executing mux command: %s", cmd.String())

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf(errconsts.FFmpegFailure+": %s", err, strings.TrimSpace(stderr.String()))
	}

	if err := os.Rename(tmp, outputPath); err != nil {
		return fmt.Errorf("failed to move merged file into %q: %w", outputPath, err)
	}

	for _, in := range []string{videoPath, audioPath} {
		if err := os.Remove(in); err != nil && !os.IsNotExist(err) {
			logger.Pl.W("Merged %q but could not remove input %q: %v", outputPath, in, err)
		}
	}
	return nil
}

func mergeArgs(videoPath, audioPath, outputPath string, meta Metadata) []string {
	args := []string{
		command.FFHideBanner,
		command.FFLogLevel, command.FFLogErrOnly,
		command.FFInput, videoPath,
		command.FFInput, audioPath,
		command.FFMap, command.FFMapVideo,
		command.FFMap, command.FFMapAudio,
		command.FFCodecVideo, command.FFCopy,
		command.FFCodecAudio, command.FFCopy,
	}

	for _, kv := range [][2]string{
		{"title", meta.Title},
		{"artist", meta.Artist},
		{"date", meta.Date},
		{"comment", meta.Description},
	} {
		if kv[1] != "" {
			args = append(args, command.FFMetadataArg, kv[0]+"="+kv[1])
		}
	}

	return append(args, command.FFOverwrite, outputPath)
}

// tempOutput returns a hidden sibling of path with the same extension.
func tempOutput(path string) string {
	dir, base := filepath.Split(path)
	return filepath.Join(dir, ".muxing-"+base)
}
