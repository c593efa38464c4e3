// Package cfg provides configuration and command-line interface setup for the archiver.
package cfg

import (
	"context"
	"fmt"
	"strings"
	"tubarchive/internal/contracts"
	"tubarchive/internal/domain/keys"
	"tubarchive/internal/domain/logger"
	"tubarchive/internal/validation"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "TUBARCHIVE"

var rootCmd = &cobra.Command{
	Use:           "tubarchive",
	Short:         "tubarchive archives the uploads of YouTube channels.",
	Long:          "tubarchive lists the uploads of registered channels, skips what is already complete on disk, and downloads and muxes the rest.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configFile := viper.GetString(keys.ConfigFile); configFile != "" {
			if err := loadConfigFile(cmd, configFile); err != nil {
				return fmt.Errorf("failed loading config file: %w", err)
			}
		}
		logger.Pl.SetLevel(validation.ValidateLoggingLevel(viper.GetInt(keys.DebugLevel)))
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Lookup("help").Changed {
			return nil
		}
		viper.Set(keys.TerminalRunDefaultBehavior, true)
		return nil
	},
}

// InitCommands initializes all commands and their flags.
func InitCommands(ctx context.Context, s contracts.Store) error {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := initProgramFlags(rootCmd); err != nil {
		return err
	}
	if err := viper.BindEnv(keys.APIKey, envPrefix+"_API_KEY", keys.APIKeyEnv); err != nil {
		return err
	}

	checkCmd, err := initCheckCmd(ctx, s)
	if err != nil {
		return err
	}
	verifyCmd, err := initVerifyCmd(ctx, s)
	if err != nil {
		return err
	}

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(initChannelCmds(s))
	rootCmd.AddCommand(initRunsCmd(s))
	rootCmd.AddCommand(initBlockedCmd(s))
	rootCmd.AddCommand(initProbeCmd(ctx))
	rootCmd.AddCommand(initMuxCmd(ctx))
	rootCmd.AddCommand(initServeCmd(ctx, s))
	return nil
}

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}
