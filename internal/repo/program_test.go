package repo

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
	"tubarchive/internal/database"
	"tubarchive/internal/domain/consts"
)

func newProgController(t *testing.T) *ProgControl {
	t.Helper()
	d, err := database.InitDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return NewProgController(d.DB)
}

func TestStartProgramGuardsSecondInstance(t *testing.T) {
	t.Parallel()
	pc := newProgController(t)

	start := time.Now()
	if _, err := pc.StartProgram(); err != nil {
		t.Fatalf("first start: %v", err)
	}
	if _, err := pc.StartProgram(); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("second start with a fresh heartbeat should fail, got %v", err)
	}
	if err := pc.QuitProgram(start); err != nil {
		t.Fatalf("QuitProgram: %v", err)
	}
	if _, err := pc.StartProgram(); err != nil {
		t.Fatalf("start after quit: %v", err)
	}
}

func TestStartProgramResetsStaleGuard(t *testing.T) {
	t.Parallel()
	pc := newProgController(t)

	if _, err := pc.StartProgram(); err != nil {
		t.Fatalf("first start: %v", err)
	}
	pc.now = func() time.Time { return time.Now().Add(consts.StaleProcessThreshold + time.Minute) }
	if _, err := pc.StartProgram(); err != nil {
		t.Fatalf("stale guard should be reset, got %v", err)
	}
}

func TestQuitProgramWhenNotRunning(t *testing.T) {
	t.Parallel()
	pc := newProgController(t)
	if err := pc.QuitProgram(time.Now()); err == nil {
		t.Fatal("quitting without a start should fail")
	}
}

func TestHeartbeatKeepsGuardFresh(t *testing.T) {
	t.Parallel()
	pc := newProgController(t)

	base := time.Now()
	pc.now = func() time.Time { return base }
	if _, err := pc.StartProgram(); err != nil {
		t.Fatal(err)
	}

	base = base.Add(consts.StaleProcessThreshold + time.Minute)
	if err := pc.UpdateHeartbeat(); err != nil {
		t.Fatal(err)
	}
	if _, err := pc.StartProgram(); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("refreshed guard should still block, got %v", err)
	}
}
