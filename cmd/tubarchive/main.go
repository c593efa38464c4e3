// Package main is the entrypoint of tubarchive.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
	"tubarchive/internal/cfg"
	"tubarchive/internal/domain/keys"
	"tubarchive/internal/domain/logger"
	"tubarchive/internal/domain/paths"
	"tubarchive/internal/times"
	"tubarchive/internal/utils/logging"

	"github.com/spf13/viper"
)

func main() {
	os.Exit(run())
}

// run executes the program and returns its exit code.
func run() int {
	startTime := time.Now()

	if err := paths.InitProgFilesDirs(); err != nil {
		fmt.Fprintf(os.Stderr, "tubarchive exiting with error: %v\n", err)
		return 1
	}

	pl, err := logging.SetupLogging(logging.LoggingConfig{
		LogFilePath: paths.LogFilePath,
		MaxSizeMB:   1,
		MaxBackups:  3,
		Console:     os.Stdout,
		Program:     "tubarchive",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "tubarchive exiting with error: %v\n", err)
		return 1
	}
	logger.Pl = pl
	logger.Pl.D(1, "Database: %s, log file: %s", paths.DBFilePath, paths.LogFilePath)

	store, db, progControl, err := initializeApplication(paths.DBFilePath)
	if err != nil {
		logger.Pl.E("Error initializing tubarchive: %v", err)
		_ = pl.Close()
		return 1
	}
	defer db.Close()

	logger.Pl.I("tubarchive (PID: %d) started at: %v",
		progControl.ProcessID, startTime.Format("2006-01-02 15:04:05.00 MST"))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)

	heartbeatDone := make(chan struct{})
	go func() {
		startHeartbeat(ctx, progControl)
		close(heartbeatDone)
	}()
	defer cleanup(progControl, startTime, func() {
		cancel()
		<-heartbeatDone
	})

	runErr := func() error {
		if err := cfg.InitCommands(ctx, store); err != nil {
			return err
		}
		if err := cfg.Execute(); err != nil {
			return err
		}
		if viper.GetBool(keys.TerminalRunDefaultBehavior) {
			if err := times.StartupWait(ctx); err != nil {
				return err
			}
			return cfg.RunDefault(ctx, store)
		}
		return nil
	}()

	if runErr != nil {
		logger.Pl.E("Error: %v", runErr)
		return 1
	}
	return 0
}
