package repo

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
	"tubarchive/internal/domain/consts"
	"tubarchive/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

// RunStore records archive passes.
type RunStore struct {
	DB *sql.DB
}

// GetRunStore returns a run store instance with injected database.
func GetRunStore(db *sql.DB) *RunStore {
	return &RunStore{
		DB: db,
	}
}

// StartRun inserts a new run row and returns it.
func (rs *RunStore) StartRun(startedAt time.Time) (*models.Run, error) {
	run := &models.Run{
		RunID:     uuid.NewString(),
		StartedAt: startedAt,
	}

	result, err := squirrel.
		Insert(consts.DBRuns).
		Columns(consts.QRunUUID, consts.QRunStartedAt).
		Values(run.RunID, run.StartedAt).
		RunWith(rs.DB).
		Exec()
	if err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}
	if run.ID, err = result.LastInsertId(); err != nil {
		return nil, fmt.Errorf("failed to get run row ID: %w", err)
	}
	return run, nil
}

// FinishRun stores the run's counters and finish time.
func (rs *RunStore) FinishRun(run *models.Run) error {
	if run == nil {
		return errors.New("dev error: run sent in nil")
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}

	result, err := squirrel.
		Update(consts.DBRuns).
		SetMap(map[string]any{
			consts.QRunFinishedAt:  run.FinishedAt,
			consts.QRunChannels:    run.Channels,
			consts.QRunListed:      run.Listed,
			consts.QRunTransferred: run.Transferred,
			consts.QRunMuxed:       run.Muxed,
			consts.QRunFailed:      run.Failed,
			consts.QRunError:       run.Error,
		}).
		Where(squirrel.Eq{consts.QRunUUID: run.RunID}).
		RunWith(rs.DB).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", run.RunID, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %s does not exist", run.RunID)
	}
	return nil
}

// LatestRuns returns up to limit runs, newest first.
func (rs *RunStore) LatestRuns(limit int) ([]*models.Run, error) {
	q := squirrel.
		Select(
			consts.QRunID,
			consts.QRunUUID,
			consts.QRunStartedAt,
			consts.QRunFinishedAt,
			consts.QRunChannels,
			consts.QRunListed,
			consts.QRunTransferred,
			consts.QRunMuxed,
			consts.QRunFailed,
			consts.QRunError,
		).
		From(consts.DBRuns).
		OrderBy(consts.QRunStartedAt + " DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	rows, err := q.RunWith(rs.DB).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		var (
			r        models.Run
			finished sql.NullTime
		)
		if err := rows.Scan(
			&r.ID,
			&r.RunID,
			&r.StartedAt,
			&finished,
			&r.Channels,
			&r.Listed,
			&r.Transferred,
			&r.Muxed,
			&r.Failed,
			&r.Error,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.FinishedAt = finished.Time
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}
