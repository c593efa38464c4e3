package cfg

import (
	"context"
	"errors"
	"fmt"
	"time"
	"tubarchive/internal/blocking"
	"tubarchive/internal/contracts"
	"tubarchive/internal/domain/keys"
	"tubarchive/internal/muxer"
	"tubarchive/internal/probe"
	"tubarchive/internal/server"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// initProbeCmd returns the command printing the duration of media files.
func initProbeCmd(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "probe FILE...",
		Short: "Print the duration of media files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prober := probe.NewFFprobe(viper.GetString(keys.FFprobePath))
			out := cmd.OutOrStdout()

			var errs []error
			for _, path := range args {
				secs, err := prober.Duration(ctx, path)
				if err != nil {
					errs = append(errs, err)
					fmt.Fprintf(out, "%s\terror\n", path)
					continue
				}
				d := time.Duration(secs * float64(time.Second)).Round(time.Millisecond)
				fmt.Fprintf(out, "%s\t%.3f\t%s\n", path, secs, d)
			}
			return errors.Join(errs...)
		},
	}
}

// initMuxCmd returns the command merging a video and an audio stream.
func initMuxCmd(ctx context.Context) *cobra.Command {
	var (
		video, audio, output string
		meta                 muxer.Metadata
	)

	muxCmd := &cobra.Command{
		Use:   "mux",
		Short: "Merge a video stream and an audio stream into one file",
		Long:  "Mux copies a video-only and an audio-only stream into one container. The inputs are deleted after a successful merge.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if video == "" || audio == "" || output == "" {
				return errors.New("--video, --audio and --output are all required")
			}
			ffmpeg := muxer.NewFFmpeg(viper.GetString(keys.FFmpegPath))
			return ffmpeg.Merge(ctx, video, audio, output, meta)
		},
	}

	muxCmd.Flags().StringVar(&video, keys.MuxVideo, "", "Video-only input")
	muxCmd.Flags().StringVar(&audio, keys.MuxAudio, "", "Audio-only input")
	muxCmd.Flags().StringVarP(&output, keys.MuxOutput, "o", "", "Merged output")
	muxCmd.Flags().StringVar(&meta.Title, "title", "", "Title metadata")
	muxCmd.Flags().StringVar(&meta.Artist, "artist", "", "Artist metadata")
	muxCmd.Flags().StringVar(&meta.Date, "date", "", "Date metadata")
	return muxCmd
}

// initRunsCmd returns the command listing recent archive passes.
func initRunsCmd(s contracts.Store) *cobra.Command {
	var limit int

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent archive passes",
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := s.RunStore().LatestRuns(limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			for _, r := range runs {
				took := "unfinished"
				if !r.FinishedAt.IsZero() {
					took = "took " + r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String()
				}
				fmt.Fprintf(out, "%s  %s (%s): %d channels, %s listed, %s transferred, %s muxed, %s failed\n",
					r.RunID,
					humanize.Time(r.StartedAt),
					took,
					r.Channels,
					humanize.Comma(int64(r.Listed)),
					humanize.Comma(int64(r.Transferred)),
					humanize.Comma(int64(r.Muxed)),
					humanize.Comma(int64(r.Failed)))
				if r.Error != "" {
					fmt.Fprintf(out, "    %s\n", r.Error)
				}
			}
			return nil
		},
	}
	runsCmd.Flags().IntVarP(&limit, "limit", "l", 10, "Runs to list (0 for all)")
	return runsCmd
}

// initBlockedCmd returns the commands listing and clearing bot detection blocks.
func initBlockedCmd(s contracts.Store) *cobra.Command {
	blockedCmd := &cobra.Command{
		Use:   "blocked",
		Short: "List domains blocked after bot detection",
		Long:  "Transfers to a domain that asked to confirm the archiver is not a bot are skipped until the domain's cooldown passes.",
		RunE: func(cmd *cobra.Command, args []string) error {
			b := blocking.New(s.ChannelStore().GetDB())
			if err := b.Load(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			active := b.Active()
			if len(active) == 0 {
				fmt.Fprintln(out, "No blocked domains")
				return nil
			}
			for _, bl := range active {
				fmt.Fprintf(out, "%s (%s): blocked %s, unblocks in %s\n",
					bl.Domain, bl.Context, humanize.Time(bl.BlockedAt), bl.Remaining.Round(time.Minute))
			}
			return nil
		},
	}

	blockedCmd.AddCommand(&cobra.Command{
		Use:   "clear DOMAIN",
		Short: "Lift every block on a domain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return blocking.New(s.ChannelStore().GetDB()).Unblock(args[0])
		},
	})
	return blockedCmd
}

// initServeCmd returns the command serving the registry as read-only JSON.
func initServeCmd(ctx context.Context, s contracts.Store) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the archive registry as JSON",
		Long:  "Serve exposes channels, videos, runs and blocked domains under /api/v1 until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := bindFlags(cmd.Flags()); err != nil {
				return err
			}
			return server.Serve(ctx, viper.GetString(keys.ServeAddr), s)
		},
	}
	serveCmd.Flags().String(keys.ServeAddr, "localhost:"+server.DefaultPort, "Address to listen on")
	return serveCmd
}
