package repo

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"tubarchive/internal/domain/consts"
	"tubarchive/internal/domain/logger"
	"tubarchive/internal/models"

	"github.com/Masterminds/squirrel"
)

// VideoStore holds a pointer to the sql.DB.
type VideoStore struct {
	DB *sql.DB
}

// GetVideoStore returns a video store instance with injected database.
func GetVideoStore(db *sql.DB) *VideoStore {
	return &VideoStore{
		DB: db,
	}
}

// GetDB returns the database.
func (vs *VideoStore) GetDB() *sql.DB {
	return vs.DB
}

// UpsertVideo inserts the video or refreshes its listing fields.
//
// Completeness state (downloaded, converted, last error) is left untouched on conflict.
func (vs *VideoStore) UpsertVideo(v *models.Video) error {
	if v == nil {
		return errors.New("dev error: video sent in nil")
	}
	if v.VideoID == "" || v.ChannelID == "" {
		return fmt.Errorf("video %q must have a video ID and channel ID", v.Title)
	}

	metadataJSON, err := json.Marshal(v.Stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats for video %q: %w", v.VideoID, err)
	}

	now := time.Now()
	_, err = squirrel.
		Insert(consts.DBVideos).
		Columns(
			consts.QVidVideoID,
			consts.QVidChanID,
			consts.QVidTitle,
			consts.QVidPublishedAt,
			consts.QVidDuration,
			consts.QVidDirectory,
			consts.QVidMetadata,
			consts.QVidCreatedAt,
			consts.QVidUpdatedAt,
		).
		Values(
			v.VideoID,
			v.ChannelID,
			v.Title,
			v.PublishedAt,
			v.DurationSeconds,
			v.Directory,
			string(metadataJSON),
			now,
			now,
		).
		Suffix(fmt.Sprintf(
			"ON CONFLICT(%[1]s) DO UPDATE SET "+
				"%[2]s = excluded.%[2]s, %[3]s = excluded.%[3]s, %[4]s = excluded.%[4]s, "+
				"%[5]s = excluded.%[5]s, %[6]s = excluded.%[6]s, %[7]s = excluded.%[7]s",
			consts.QVidVideoID,
			consts.QVidTitle,
			consts.QVidPublishedAt,
			consts.QVidDuration,
			consts.QVidDirectory,
			consts.QVidMetadata,
			consts.QVidUpdatedAt,
		)).
		RunWith(vs.DB).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to upsert video %q: %w", v.VideoID, err)
	}

	logger.Pl.D(3, "Upserted video %q for channel %q", v.VideoID, v.ChannelID)
	return nil
}

// SetVideoState records the completeness state of a video after a pass.
func (vs *VideoStore) SetVideoState(videoID string, state models.ItemState) error {
	query := fmt.Sprintf(
		"UPDATE %s SET %s = ?, %s = ?, %s = ?, %s = ? WHERE %s = ?",
		consts.DBVideos,
		consts.QVidDownloaded,
		consts.QVidConverted,
		consts.QVidLastError,
		consts.QVidUpdatedAt,
		consts.QVidVideoID,
	)

	result, err := vs.DB.Exec(query, state.Downloaded, state.Converted, state.LastError, time.Now(), videoID)
	if err != nil {
		return fmt.Errorf("failed to set state for video %q: %w", videoID, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("video %q does not exist", videoID)
	}
	return nil
}

// GetVideo returns the video row for videoID.
func (vs *VideoStore) GetVideo(videoID string) (*models.Video, bool, error) {
	row := videoSelect().
		Where(squirrel.Eq{consts.QVidVideoID: videoID}).
		RunWith(vs.DB).
		QueryRow()

	v, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get video %q: %w", videoID, err)
	}
	return v, true, nil
}

// GetChannelVideos returns a channel's video rows, newest first.
func (vs *VideoStore) GetChannelVideos(channelID string) ([]*models.Video, error) {
	rows, err := videoSelect().
		Where(squirrel.Eq{consts.QVidChanID: channelID}).
		OrderBy(consts.QVidPublishedAt + " DESC").
		RunWith(vs.DB).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query videos for channel %q: %w", channelID, err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			logger.Pl.E("Failed to close video rows: %v", cerr)
		}
	}()

	var videos []*models.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

// ******************************** Private ***************************************************************************************

// videoSelect selects every video column in models.Video order.
func videoSelect() squirrel.SelectBuilder {
	return squirrel.
		Select(
			consts.QVidID,
			consts.QVidVideoID,
			consts.QVidChanID,
			consts.QVidTitle,
			consts.QVidPublishedAt,
			consts.QVidDuration,
			consts.QVidDirectory,
			consts.QVidDownloaded,
			consts.QVidConverted,
			consts.QVidLastError,
			consts.QVidMetadata,
			consts.QVidCreatedAt,
			consts.QVidUpdatedAt,
		).
		From(consts.DBVideos)
}

// scanVideo scans a row produced by videoSelect.
func scanVideo(row squirrel.RowScanner) (*models.Video, error) {
	var (
		v                                 models.Video
		metadata                          sql.NullString
		publishedAt, createdAt, updatedAt sql.NullTime
	)
	if err := row.Scan(
		&v.ID,
		&v.VideoID,
		&v.ChannelID,
		&v.Title,
		&publishedAt,
		&v.DurationSeconds,
		&v.Directory,
		&v.Downloaded,
		&v.Converted,
		&v.LastError,
		&metadata,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	v.PublishedAt = publishedAt.Time
	v.CreatedAt = createdAt.Time
	v.UpdatedAt = updatedAt.Time

	if metadata.Valid && metadata.String != "" {
		if err := json.Unmarshal([]byte(metadata.String), &v.Stats); err != nil {
			return nil, fmt.Errorf("failed to unmarshal stats for video %q: %w", v.VideoID, err)
		}
	}
	return &v, nil
}
