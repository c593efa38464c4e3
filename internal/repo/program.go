package repo

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"
	"tubarchive/internal/domain/consts"
	"tubarchive/internal/domain/logger"

	"github.com/Masterminds/squirrel"
)

// ErrAlreadyRunning is returned when a live instance holds the run guard.
var ErrAlreadyRunning = errors.New("another instance is already running")

// ProgControl owns the single-instance run guard stored in the program row.
type ProgControl struct {
	DB        *sql.DB
	ProcessID int

	now func() time.Time
}

// guardState is the program row.
type guardState struct {
	running   bool
	pid       int
	heartbeat time.Time
}

// NewProgController returns a program controller guarding against concurrent archiver runs.
func NewProgController(database *sql.DB) *ProgControl {
	return &ProgControl{
		DB:  database,
		now: time.Now,
	}
}

// StartProgram takes the run guard.
//
// A guard whose heartbeat is older than consts.StaleProcessThreshold belonged to
// a process that died without releasing it, and is taken over.
func (pc *ProgControl) StartProgram() (pid int, err error) {
	state, err := pc.guard()
	if err != nil {
		return 0, err
	}
	now := pc.now()
	if state.running {
		if now.Sub(state.heartbeat) <= consts.StaleProcessThreshold {
			return 0, fmt.Errorf("%w (PID: %d)", ErrAlreadyRunning, state.pid)
		}
		logger.Pl.W("Taking over stale run guard of PID %d (last heartbeat %s)",
			state.pid, state.heartbeat.Local().Format(time.DateTime))
	}

	pid = os.Getpid()
	if err := pc.setGuard(map[string]any{
		consts.QProgRunning:   true,
		consts.QProgPID:       pid,
		consts.QProgStartedAt: now,
		consts.QProgHeartbeat: now,
	}); err != nil {
		return 0, fmt.Errorf("failed to take run guard: %w", err)
	}
	pc.ProcessID = pid
	return pid, nil
}

// QuitProgram releases the run guard.
func (pc *ProgControl) QuitProgram(startTime time.Time) error {
	state, err := pc.guard()
	if err != nil {
		return err
	}
	if !state.running {
		return fmt.Errorf("run guard is not held (last PID %d)", state.pid)
	}

	now := pc.now()
	if err := pc.setGuard(map[string]any{
		consts.QProgRunning:   false,
		consts.QProgPID:       0,
		consts.QProgHeartbeat: now,
	}); err != nil {
		return fmt.Errorf("failed to release run guard: %w", err)
	}

	logger.Pl.I("Archive finished: %v (elapsed %.2f seconds)",
		now.Local().Format("2006-01-02 15:04:05.00 MST"),
		now.Sub(startTime).Seconds())
	return nil
}

// UpdateHeartbeat refreshes the guard heartbeat.
func (pc *ProgControl) UpdateHeartbeat() error {
	return pc.setGuard(map[string]any{consts.QProgHeartbeat: pc.now()})
}

// guard reads the program row.
func (pc *ProgControl) guard() (guardState, error) {
	var (
		state     guardState
		pid       sql.NullInt64
		heartbeat sql.NullTime
	)
	err := squirrel.
		Select(consts.QProgRunning, consts.QProgPID, consts.QProgHeartbeat).
		From(consts.DBProgram).
		Where(squirrel.Eq{consts.QProgID: 1}).
		RunWith(pc.DB).
		QueryRow().
		Scan(&state.running, &pid, &heartbeat)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return state, fmt.Errorf("failed to read run guard: %w", err)
	}
	state.pid = int(pid.Int64)
	state.heartbeat = heartbeat.Time
	return state, nil
}

// setGuard updates the program row, stamping the host.
func (pc *ProgControl) setGuard(values map[string]any) error {
	host, err := os.Hostname()
	if err != nil {
		logger.Pl.E("Failed to get device hostname: %v", err)
	}
	values[consts.QProgHost] = host

	_, err = squirrel.
		Update(consts.DBProgram).
		SetMap(values).
		Where(squirrel.Eq{consts.QProgID: 1}).
		RunWith(pc.DB).
		Exec()
	return err
}
