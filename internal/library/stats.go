package library

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
	"tubarchive/internal/domain/consts"
	"tubarchive/internal/domain/logger"
	"tubarchive/internal/models"
)

var statsHeader = []string{"timestamp", "views", "likes", "dislikes", "favorites"}

// StatsRow is one recorded statistics sample.
type StatsRow struct {
	Timestamp time.Time
	Stats     models.Stats
}

// AppendStats appends the item's current counters to its stats.csv.
//
// The header is only written when the file is created. Unknown counters are
// written as empty cells.
func AppendStats(item models.MediaItem) (err error) {
	if item.Locator == "" {
		return fmt.Errorf("%w: %s", ErrNotPlaced, item.ID)
	}
	if err := os.MkdirAll(item.Locator, consts.PermsGenericDir); err != nil {
		return fmt.Errorf("failed to create %q: %w", item.Locator, err)
	}

	path := filepath.Join(item.Locator, StatsFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, consts.PermsStatsFile)
	if err != nil {
		return fmt.Errorf("failed to open %q: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(statsHeader); err != nil {
			return err
		}
	}

	ts := item.FetchedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	s := item.Stats
	if err := w.Write([]string{
		ts.UTC().Format(time.RFC3339),
		models.FormatCount(s.Views),
		models.FormatCount(s.Likes),
		models.FormatCount(s.Dislikes),
		models.FormatCount(s.Favorites),
	}); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// ReadStats returns the samples recorded in dir's stats.csv, oldest first.
func ReadStats(dir string) ([]StatsRow, error) {
	f, err := os.Open(filepath.Join(dir, StatsFile))
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Pl.E("failed to close stats file in %q: %v", dir, err)
		}
	}()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(statsHeader)

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[h] = i
	}
	for _, h := range statsHeader {
		if _, ok := col[h]; !ok {
			return nil, fmt.Errorf("stats file in %q has no %q column", dir, h)
		}
	}

	var rows []StatsRow
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row, err := parseStatsRecord(rec, col)
		if err != nil {
			return nil, fmt.Errorf("stats file in %q: %w", dir, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseStatsRecord(rec []string, col map[string]int) (StatsRow, error) {
	var (
		row StatsRow
		err error
	)
	if row.Timestamp, err = time.Parse(time.RFC3339, rec[col["timestamp"]]); err != nil {
		return row, err
	}
	counters := []struct {
		name string
		dst  **int64
	}{
		{"views", &row.Stats.Views},
		{"likes", &row.Stats.Likes},
		{"dislikes", &row.Stats.Dislikes},
		{"favorites", &row.Stats.Favorites},
	}
	for _, c := range counters {
		if *c.dst, err = models.ParseCount(rec[col[c.name]]); err != nil {
			return row, fmt.Errorf("%s: %w", c.name, err)
		}
	}
	return row, nil
}
