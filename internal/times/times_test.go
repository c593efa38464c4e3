package times

import (
	"context"
	"errors"
	"testing"
	"time"
	"tubarchive/internal/domain/keys"

	"github.com/spf13/viper"
)

func TestRandomDurationsStayInRange(t *testing.T) {
	t.Parallel()

	for range 50 {
		if d := RandomSecsDuration(5); d < 0 || d > 5*time.Second {
			t.Fatalf("RandomSecsDuration(5) = %v", d)
		}
		if d := RandomMinsDuration(2); d < 0 || d > 2*time.Minute {
			t.Fatalf("RandomMinsDuration(2) = %v", d)
		}
	}
	if RandomSecsDuration(0) != 0 || RandomMinsDuration(-1) != 0 {
		t.Fatal("non-positive bounds should give zero")
	}
}

func TestWaitTimeHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	viper.Set(keys.SkipAllWaits, false)
	err := WaitTime(ctx, time.Hour, "chan")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled wait to fail, got %v", err)
	}

	viper.Set(keys.SkipAllWaits, true)
	t.Cleanup(func() { viper.Set(keys.SkipAllWaits, false) })
	if err := WaitTime(ctx, time.Hour, "chan"); err != nil {
		t.Fatalf("skipped wait should not fail: %v", err)
	}
}

func TestStartupWaitSkipped(t *testing.T) {
	viper.Set(keys.SkipInitialWait, true)
	t.Cleanup(func() { viper.Set(keys.SkipInitialWait, false) })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := StartupWait(ctx); errors.Is(err, context.Canceled) {
		t.Fatal("skipped startup wait should not observe the context")
	}
}

func TestCountdownEnds(t *testing.T) {
	t.Parallel()

	start := time.Now()
	if err := countdown(context.Background(), 20*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Error("countdown returned early")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := countdown(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
