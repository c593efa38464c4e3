// Package times holds the randomized waits spacing out upstream requests.
package times

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
	"tubarchive/internal/domain/consts"
	"tubarchive/internal/domain/keys"
	"tubarchive/internal/domain/logger"

	"github.com/spf13/viper"
)

// StartupWait sleeps a random 0 to consts.DefaultStartupStaggerMinutes minutes, printing a countdown.
//
// Scheduled passes start at unpredictable times this way.
func StartupWait(ctx context.Context) error {
	if viper.GetBool(keys.SkipInitialWait) || viper.GetBool(keys.SkipAllWaits) {
		logger.Pl.W("Skipping startup wait. Scheduled passes may be rate limited when they start at predictable times.")
		return nil
	}

	wait := RandomMinsDuration(consts.DefaultStartupStaggerMinutes)
	logger.Pl.I("Waiting %v before the first channel. Skip with: tubarchive --%s", wait.Round(time.Second), keys.SkipInitialWait)
	return countdown(ctx, wait)
}

// WaitTime sleeps for stagger before a channel is listed.
func WaitTime(ctx context.Context, stagger time.Duration, channelName string) error {
	if stagger <= 0 || viper.GetBool(keys.SkipAllWaits) {
		logger.Pl.D(3, "No wait before channel %q", channelName)
		return nil
	}

	logger.Pl.I("Sleeping %v before channel %q", stagger.Round(time.Second), channelName)
	t := time.NewTimer(stagger)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait before channel %q: %w", channelName, ctx.Err())
	}
}

// countdown blocks for d, redrawing the time remaining on one terminal line.
func countdown(ctx context.Context, d time.Duration) error {
	end := time.Now().Add(d)
	done := time.NewTimer(d)
	defer done.Stop()
	tick := time.NewTicker(consts.CountdownTickInterval)
	defer tick.Stop()
	defer fmt.Print(consts.ClearLine)

	for {
		remaining := time.Until(end)
		fmt.Printf("%s%s %dm%02ds", consts.ClearLine, consts.TimeRemainingMsg, int(remaining.Minutes()), int(remaining.Seconds())%60)

		select {
		case <-tick.C:
		case <-done.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RandomSecsDuration returns a random duration of 0 to s whole seconds.
func RandomSecsDuration(s int) time.Duration {
	return randomUnits(s, time.Second)
}

// RandomMinsDuration returns a random duration of 0 to m whole minutes.
func RandomMinsDuration(m int) time.Duration {
	return randomUnits(m, time.Minute)
}

func randomUnits(n int, unit time.Duration) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(rand.IntN(n+1)) * unit
}
