package cfg

import (
	"tubarchive/internal/domain/consts"
	"tubarchive/internal/domain/keys"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// initProgramFlags sets the persistent flags shared by every command.
func initProgramFlags(rootCmd *cobra.Command) error {
	pf := rootCmd.PersistentFlags()

	pf.Int(keys.DebugLevel, 0, "Debug level (0-5)")
	pf.String(keys.ConfigFile, "", "Config file (any format Viper reads: yaml, toml, json...)")
	pf.String(keys.ArchiveDir, "", "Root directory of the archive (default ~/.tubarchive/archive)")
	pf.String(keys.APIKey, "", "YouTube Data API key (or set "+keys.APIKeyEnv+")")
	pf.Int(keys.GlobalConcurrency, consts.DefaultConcurrency, "Channels archived at once")
	pf.Int(keys.ItemConcurrency, consts.DefaultItemConcurrency, "Items checked at once per channel")
	pf.Int(keys.CatalogCacheSz, consts.DefaultCatalogCache, "Channel catalogs kept in memory")
	pf.Duration(keys.Tolerance, consts.DefaultTolerance, "Allowed difference between a file's duration and the listed duration")
	pf.String(keys.CookiesBrowser, "", "Browser to read cookies from for downloads and page snapshots (e.g. firefox)")
	pf.String(keys.CaptionLang, consts.DefaultCaptionLang, "Caption language to download")
	pf.String(keys.FFprobePath, "", "Path to ffprobe (default from PATH)")
	pf.String(keys.FFmpegPath, "", "Path to ffmpeg (default from PATH)")
	pf.String(keys.YTDLPPath, "", "Path to yt-dlp (default from PATH)")
	pf.Bool(keys.SkipInitialWait, false, "Skip the random startup wait")
	pf.Bool(keys.SkipAllWaits, false, "Skip every random wait, including the per-channel stagger")

	return bindFlags(pf)
}

// initArchiveFlags sets the flags of commands that run an archive pass.
func initArchiveFlags(cmd *cobra.Command, withTransfer bool) error {
	f := cmd.Flags()
	f.StringSlice(keys.Channels, nil, "Channel IDs, @handles or registered names (default every registered channel)")
	f.Int(keys.Depth, 0, "Newest uploads to check per channel (0 uses each channel's depth, which defaults to all)")
	if withTransfer {
		f.Bool(keys.Convert, false, "Mux separate video and audio streams for every channel")
		f.Bool(keys.DryRun, false, "Only report what would be transferred")
		f.Bool(keys.Captions, true, "Download captions where available")
		f.Bool(keys.SnapshotPages, false, "Store each channel's about page with its channel info")
	} else {
		f.Bool(keys.Offline, false, "Check archived items from their info files without listing the upstream")
	}
	return nil
}

// bindFlags binds every flag in the set to its viper key.
func bindFlags(fs *pflag.FlagSet) (err error) {
	fs.VisitAll(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		err = viper.BindPFlag(f.Name, f)
	})
	return err
}
