package cfg

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"tubarchive/internal/app"
	"tubarchive/internal/blocking"
	"tubarchive/internal/catalog"
	"tubarchive/internal/contracts"
	"tubarchive/internal/domain/consts"
	"tubarchive/internal/domain/keys"
	"tubarchive/internal/domain/logger"
	"tubarchive/internal/domain/paths"
	"tubarchive/internal/library"
	"tubarchive/internal/models"
	"tubarchive/internal/muxer"
	"tubarchive/internal/oracle"
	"tubarchive/internal/parsing"
	"tubarchive/internal/probe"
	"tubarchive/internal/scraper"
	"tubarchive/internal/transfer"
	"tubarchive/internal/validation"
	"tubarchive/internal/youtube"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	archiveSubdir = "archive"
	cookieDomain  = ".youtube.com"
)

// initCheckCmd returns the command running an archive pass.
func initCheckCmd(ctx context.Context, s contracts.Store) (*cobra.Command, error) {
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Archive channels",
		Long:  "Check lists each channel's uploads, transfers what is missing or incomplete on disk, and muxes the streams of channels with convert set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := bindFlags(cmd.Flags()); err != nil {
				return err
			}
			_, err := RunArchive(ctx, s, archiveOptions())
			return err
		},
	}
	if err := initArchiveFlags(checkCmd, true); err != nil {
		return nil, err
	}
	return checkCmd, nil
}

// initVerifyCmd returns the command reporting completeness without transferring.
func initVerifyCmd(ctx context.Context, s contracts.Store) (*cobra.Command, error) {
	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Report which uploads are complete on disk",
		Long:  "Verify runs the completeness check over each channel's uploads without writing, removing or transferring anything.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := bindFlags(cmd.Flags()); err != nil {
				return err
			}
			opts := archiveOptions()
			opts.DryRun = true

			run := RunArchive
			if viper.GetBool(keys.Offline) {
				run = verifyOffline
			}
			reports, err := run(ctx, s, opts)
			for _, r := range reports {
				printVerifyReport(cmd, r)
			}
			return err
		},
	}
	if err := initArchiveFlags(verifyCmd, false); err != nil {
		return nil, err
	}
	return verifyCmd, nil
}

// RunDefault runs the pass started by invoking the program without a subcommand.
//
// Every registered channel is checked, with options taken from the config file or environment.
func RunDefault(ctx context.Context, s contracts.Store) error {
	viper.SetDefault(keys.Captions, true)
	_, err := RunArchive(ctx, s, archiveOptions())
	return err
}

// archiveOptions reads the archive pass options from viper.
func archiveOptions() app.Options {
	opts := app.Options{
		Depth:           validation.ValidateDepth(viper.GetInt(keys.Depth)),
		Convert:         viper.GetBool(keys.Convert),
		DryRun:          viper.GetBool(keys.DryRun),
		Captions:        viper.GetBool(keys.Captions),
		SnapshotPages:   viper.GetBool(keys.SnapshotPages),
		Concurrency:     validation.ValidateConcurrencyLimit(viper.GetInt(keys.GlobalConcurrency)),
		ItemConcurrency: validation.ValidateConcurrencyLimit(viper.GetInt(keys.ItemConcurrency)),
	}
	if !viper.GetBool(keys.SkipAllWaits) {
		opts.StaggerSeconds = consts.DefaultBotAvoidanceSeconds
	}
	return opts
}

// RunArchive runs one pass over the requested channels, or every registered channel.
func RunArchive(ctx context.Context, s contracts.Store, opts app.Options) ([]*app.Report, error) {
	a, err := newArchiver(ctx, s, opts)
	if err != nil {
		return nil, err
	}

	requested := viper.GetStringSlice(keys.Channels)
	if len(requested) == 0 {
		return a.CheckChannels(ctx)
	}

	channels, err := resolveChannels(ctx, s.ChannelStore(), a.Catalogs.Lister(), requested, opts.DryRun)
	if err != nil {
		return nil, err
	}
	return a.Run(ctx, channels)
}

// verifyOffline checks the archived items of the requested channels, or every registered channel, from disk.
func verifyOffline(ctx context.Context, s contracts.Store, opts app.Options) ([]*app.Report, error) {
	o, err := newOracle()
	if err != nil {
		return nil, err
	}
	a := &app.Archiver{
		Store:   s,
		Oracle:  o,
		Library: library.New(archiveRoot()),
		Options: opts,
	}

	var channels []*models.Channel
	if requested := viper.GetStringSlice(keys.Channels); len(requested) > 0 {
		channels, err = resolveChannels(ctx, s.ChannelStore(), nil, requested, true)
	} else {
		channels, _, err = s.ChannelStore().GetAllChannels()
	}
	if err != nil {
		return nil, err
	}
	return a.VerifyLocal(ctx, channels)
}

// resolveChannels finds each requested channel by ID or name.
//
// Valid channel IDs that are not registered yet are registered, except in dry runs.
// Handles are looked up through l first, so channels are registered by their upstream ID.
// A nil l registers handles as given.
func resolveChannels(ctx context.Context, cs contracts.ChannelStore, l catalog.Lister, requested []string, dryRun bool) ([]*models.Channel, error) {
	var (
		out  = make([]*models.Channel, 0, len(requested))
		errs []error
	)
	for _, r := range requested {
		c, err := findChannel(cs, r)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if c != nil {
			out = append(out, c)
			continue
		}

		id, err := validation.ValidateChannelID(r)
		if err != nil {
			errs = append(errs, fmt.Errorf("%q is neither a registered channel nor a channel ID: %w", r, err))
			continue
		}
		c = &models.Channel{ChannelID: id, Convert: true}
		if strings.HasPrefix(id, "@") && l != nil {
			info, err := l.Channel(ctx, id)
			if err != nil {
				errs = append(errs, fmt.Errorf("could not resolve channel %q: %w", id, err))
				continue
			}
			existing, err := findChannel(cs, info.ID)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if existing != nil {
				out = append(out, existing)
				continue
			}
			c.ChannelID, c.Name, c.UploadsPlaylist = info.ID, info.Name, info.UploadsPlaylist
		}
		if !dryRun {
			logger.Pl.I("Registering channel %q", c.ChannelID)
			if _, err := cs.AddChannel(c); err != nil {
				errs = append(errs, err)
				continue
			}
		}
		out = append(out, c)
	}
	return out, errors.Join(errs...)
}

// findChannel looks a channel up by channel ID, then by name. A nil channel means not found.
func findChannel(cs contracts.ChannelStore, idOrName string) (*models.Channel, error) {
	for _, key := range []string{consts.QChanChannelID, consts.QChanName} {
		c, ok, err := cs.GetChannelModel(key, idOrName)
		if err != nil {
			return nil, err
		}
		if ok {
			return c, nil
		}
	}
	return nil, nil
}

// newArchiver wires the archive collaborators from the program configuration.
func newArchiver(ctx context.Context, s contracts.Store, opts app.Options) (*app.Archiver, error) {
	apiKey := viper.GetString(keys.APIKey)
	yt, err := youtube.New(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	registry, err := catalog.NewRegistry(yt, viper.GetInt(keys.CatalogCacheSz))
	if err != nil {
		return nil, err
	}

	o, err := newOracle()
	if err != nil {
		return nil, err
	}

	root := archiveRoot()
	if !opts.DryRun {
		if _, err := validation.ValidateDirectory(root, true); err != nil {
			return nil, err
		}
	}

	ytdlp := transfer.NewYTDLP(viper.GetString(keys.YTDLPPath))
	ytdlp.CaptionLang = viper.GetString(keys.CaptionLang)
	ytdlp.RandomizeRequests = !viper.GetBool(keys.SkipAllWaits)
	ffmpeg := muxer.NewFFmpeg(viper.GetString(keys.FFmpegPath))
	if !opts.DryRun {
		if !ytdlp.Available() {
			return nil, fmt.Errorf("%s not found, it is required to download", ytdlp.Path)
		}
		if !ffmpeg.Available() {
			logger.Pl.W("%s not found, muxing will fail", ffmpeg.Path)
		}
	}

	var (
		cm       *scraper.CookieManager
		blockCtx = blocking.ContextUnauth
		blocker  = blocking.New(s.ChannelStore().GetDB())
	)
	if browser := viper.GetString(keys.CookiesBrowser); browser != "" {
		cm = scraper.NewCookieManager(browser)
		configureCookies(cm, ytdlp, browser)
		blockCtx = blocking.ContextCookie
	}
	if err := blocker.Load(); err != nil {
		logger.Pl.W("Could not load blocked domains: %v", err)
	}

	return &app.Archiver{
		Store:    s,
		Catalogs: registry,
		Oracle:   o,
		Fetcher:  ytdlp,
		Muxer:    ffmpeg,
		Library:  library.New(root),
		Scraper:  scraper.New(cm),
		Options:  opts,

		Blocker:      blocker,
		BlockContext: blockCtx,
	}, nil
}

// newOracle returns the completeness oracle backed by ffprobe.
func newOracle() (*oracle.Oracle, error) {
	tolerance, err := toleranceSetting()
	if err != nil {
		return nil, err
	}
	prober := probe.NewFFprobe(viper.GetString(keys.FFprobePath))
	if !prober.Available() {
		return nil, fmt.Errorf("%s not found, it is required to check downloads", prober.Path)
	}
	return oracle.New(prober, tolerance), nil
}

// toleranceSetting reads the tolerance from flags, config or environment.
//
// The value is read as a string so a bare number means seconds wherever it was set.
func toleranceSetting() (time.Duration, error) {
	d, err := parsing.SettingDuration(viper.GetString(keys.Tolerance))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", keys.Tolerance, err)
	}
	return validation.ValidateTolerance(d)
}

// archiveRoot returns the configured archive root, defaulting under the program directory.
func archiveRoot() string {
	if root := viper.GetString(keys.ArchiveDir); root != "" {
		return root
	}
	return filepath.Join(paths.HomeProgDir, archiveSubdir)
}

// configureCookies exports browser cookies for yt-dlp, falling back to yt-dlp's own browser reader.
func configureCookies(cm *scraper.CookieManager, ytdlp *transfer.YTDLP, browser string) {
	cookies, err := cm.GetCookies(scraper.DefaultBaseURL)
	if err != nil {
		logger.Pl.W("Could not read %s cookies: %v", browser, err)
	}
	saved, err := scraper.SaveCookiesToFile(cookies, cookieDomain, paths.CookieFilePath)
	if err != nil {
		logger.Pl.W("Could not write cookie file %q: %v", paths.CookieFilePath, err)
	}
	if saved {
		ytdlp.CookieFile = paths.CookieFilePath
		return
	}
	ytdlp.CookiesFromBrowser = browser
}

// printVerifyReport prints the completeness of every item in a report.
func printVerifyReport(cmd *cobra.Command, r *app.Report) {
	out := cmd.OutOrStdout()
	if r.Err != nil {
		fmt.Fprintf(out, "%s: %v\n", r.ChannelName, r.Err)
		return
	}
	fmt.Fprintf(out, "%s\n", r)
	for _, ir := range r.Items {
		fmt.Fprintf(out, "  %-9s %s\n", verifyState(ir), ir.Item)
	}
}

// verifyState names an item's completeness for verify output.
func verifyState(ir app.ItemReport) string {
	switch {
	case ir.Outcome == app.Skipped && ir.Converted:
		return "complete"
	case ir.Outcome == app.Skipped:
		return "streams"
	case ir.Outcome == app.Failed:
		return "error"
	default:
		return "missing"
	}
}
