package main

import (
	"context"
	"fmt"
	"os"
	"time"
	"tubarchive/internal/domain/consts"
	"tubarchive/internal/domain/logger"
	"tubarchive/internal/repo"
)

// startHeartbeat refreshes the program guard until the context ends.
func startHeartbeat(ctx context.Context, progControl *repo.ProgControl) {
	ticker := time.NewTicker(consts.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := progControl.UpdateHeartbeat(); err != nil {
				logger.Pl.E("Failed to update heartbeat for process ID %d: %v", progControl.ProcessID, err)
			}
		}
	}
}

// cleanup stops background work and releases the program guard.
//
// It must be deferred. A panic is logged and re-raised once the guard is released.
func cleanup(progControl *repo.ProgControl, startTime time.Time, stop func()) {
	r := recover()
	if r != nil {
		logger.Pl.E("Panic occurred: %v", r)
	}
	stop()

	if err := progControl.QuitProgram(startTime); err != nil {
		logger.Pl.E("Failed to release the run guard, next run waits until the heartbeat is stale (%v): %v",
			consts.StaleProcessThreshold, err)
	}
	if err := logger.Pl.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
	}

	if r != nil {
		panic(r)
	}
}
