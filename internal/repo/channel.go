package repo

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"tubarchive/internal/domain/consts"
	"tubarchive/internal/domain/logger"
	"tubarchive/internal/models"
	"tubarchive/internal/validation"

	"github.com/Masterminds/squirrel"
)

// ErrChannelExists is returned when adding a channel that is already registered.
var ErrChannelExists = errors.New("channel already registered")

// ChannelStore holds a pointer to the sql.DB.
type ChannelStore struct {
	DB *sql.DB
}

// GetChannelStore returns a channel store instance with injected database.
func GetChannelStore(db *sql.DB) *ChannelStore {
	return &ChannelStore{
		DB: db,
	}
}

// GetDB returns the database.
func (cs *ChannelStore) GetDB() *sql.DB {
	return cs.DB
}

// AddChannel registers a channel, returning its row ID.
func (cs *ChannelStore) AddChannel(c *models.Channel) (int64, error) {
	if c == nil {
		return 0, errors.New("dev error: channel sent in nil")
	}
	id, err := validation.ValidateChannelID(c.ChannelID)
	if err != nil {
		return 0, err
	}
	c.ChannelID = id
	if cs.channelExists(consts.QChanChannelID, c.ChannelID) {
		return 0, fmt.Errorf("%w: %q", ErrChannelExists, c.ChannelID)
	}

	now := time.Now()
	query := squirrel.
		Insert(consts.DBChannels).
		Columns(
			consts.QChanChannelID,
			consts.QChanName,
			consts.QChanCategory,
			consts.QChanUploadPlaylist,
			consts.QChanDepth,
			consts.QChanConvert,
			consts.QChanPaused,
			consts.QChanCreatedAt,
			consts.QChanUpdatedAt,
		).
		Values(
			c.ChannelID,
			c.Name,
			c.Category,
			c.UploadsPlaylist,
			c.Depth,
			c.Convert,
			c.Paused,
			now,
			now,
		).
		RunWith(cs.DB)

	result, err := query.Exec()
	if err != nil {
		return 0, fmt.Errorf("failed to insert channel %q: %w", c.ChannelID, err)
	}

	rowID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get channel row ID: %w", err)
	}
	c.ID = rowID
	c.CreatedAt = now
	c.UpdatedAt = now

	logger.Pl.S("Added channel %q (%s)", c.DisplayName(), c.ChannelID)
	return rowID, nil
}

// DeleteChannel deletes a channel and its video rows by a key and value.
func (cs *ChannelStore) DeleteChannel(key, val string) error {
	if err := validation.ValidateColumnKeyVal(key, val); err != nil {
		return err
	}

	query := squirrel.
		Delete(consts.DBChannels).
		Where(squirrel.Eq{key: val}).
		RunWith(cs.DB)

	result, err := query.Exec()
	if err != nil {
		return fmt.Errorf("failed to delete channel with %s %q: %w", key, val, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("channel with %s %q does not exist", key, val)
	}
	return nil
}

// GetChannelModel returns the channel matching a key and value.
func (cs *ChannelStore) GetChannelModel(key, val string) (*models.Channel, bool, error) {
	if err := validation.ValidateColumnKeyVal(key, val); err != nil {
		return nil, false, err
	}

	row := channelSelect().
		Where(squirrel.Eq{key: val}).
		RunWith(cs.DB).
		QueryRow()

	c, err := scanChannel(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get channel with %s %q: %w", key, val, err)
	}
	return c, true, nil
}

// GetAllChannels returns every registered channel ordered by category and name.
func (cs *ChannelStore) GetAllChannels() (channels []*models.Channel, hasRows bool, err error) {
	rows, err := channelSelect().
		OrderBy(consts.QChanCategory, consts.QChanName).
		RunWith(cs.DB).
		Query()
	if err != nil {
		return nil, false, fmt.Errorf("failed to query channels: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			logger.Pl.E("Failed to close channel rows: %v", cerr)
		}
	}()

	for rows.Next() {
		c, err := scanChannel(rows)
		if err != nil {
			return nil, false, fmt.Errorf("failed to scan channel: %w", err)
		}
		channels = append(channels, c)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("failed iterating channel rows: %w", err)
	}
	return channels, len(channels) > 0, nil
}

// UpdateChannelValue sets one column for the channel matching a key and value.
func (cs *ChannelStore) UpdateChannelValue(key, val, col string, newVal any) error {
	if err := validation.ValidateColumnKeyVal(key, val); err != nil {
		return err
	}
	switch col {
	case consts.QChanName, consts.QChanCategory, consts.QChanUploadPlaylist,
		consts.QChanDepth, consts.QChanConvert, consts.QChanPaused:
	default:
		return fmt.Errorf("column %q cannot be updated", col)
	}

	result, err := squirrel.
		Update(consts.DBChannels).
		Set(col, newVal).
		Set(consts.QChanUpdatedAt, time.Now()).
		Where(squirrel.Eq{key: val}).
		RunWith(cs.DB).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to update %s for channel with %s %q: %w", col, key, val, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("channel with %s %q does not exist", key, val)
	}

	logger.Pl.D(1, "Updated column %q for channel with %s %q", col, key, val)
	return nil
}

// UpdateLastScan updates the DB entry for when the channel was last scanned.
func (cs *ChannelStore) UpdateLastScan(channelID string) error {
	now := time.Now()
	query := fmt.Sprintf(
		"UPDATE %s SET %s = ?, %s = ? WHERE %s = ?",
		consts.DBChannels,
		consts.QChanLastScan,
		consts.QChanUpdatedAt,
		consts.QChanChannelID,
	)

	result, err := cs.DB.Exec(query, now, now, channelID)
	if err != nil {
		return fmt.Errorf("failed to update last scan for channel %q: %w", channelID, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("no channel found with channel ID %q", channelID)
	}

	logger.Pl.D(1, "Last scan time updated for channel %q", channelID)
	return nil
}

// ResolveChannelID replaces a channel's stored handle with the channel ID the upstream resolved it to.
//
// If channelID is already registered, the handle row is a duplicate and is deleted.
func (cs *ChannelStore) ResolveChannelID(handle, channelID string) error {
	id, err := validation.ValidateChannelID(channelID)
	if err != nil {
		return err
	}
	if strings.HasPrefix(id, "@") {
		return fmt.Errorf("channel %q must resolve to a channel ID, got handle %q", handle, id)
	}

	if cs.channelExists(consts.QChanChannelID, id) {
		logger.Pl.I("Channel %q is already registered as %q, removing the duplicate", handle, id)
		return cs.DeleteChannel(consts.QChanChannelID, handle)
	}

	result, err := squirrel.
		Update(consts.DBChannels).
		Set(consts.QChanChannelID, id).
		Set(consts.QChanUpdatedAt, time.Now()).
		Where(squirrel.Eq{consts.QChanChannelID: handle}).
		RunWith(cs.DB).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to resolve channel %q to %q: %w", handle, id, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("channel with %s %q does not exist", consts.QChanChannelID, handle)
	}

	logger.Pl.S("Resolved channel %q to %q", handle, id)
	return nil
}

// ******************************** Private ***************************************************************************************

// channelExists returns true if the channel exists in the database.
func (cs *ChannelStore) channelExists(key, val string) bool {
	var exists bool
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE %s = ?)", consts.DBChannels, key)
	if err := cs.DB.QueryRow(query, val).Scan(&exists); err != nil {
		logger.Pl.E("Failed to check if channel with %s %q exists: %v", key, val, err)
		return false
	}
	return exists
}

// channelSelect selects every channel column in models.Channel order.
func channelSelect() squirrel.SelectBuilder {
	return squirrel.
		Select(
			consts.QChanID,
			consts.QChanChannelID,
			consts.QChanName,
			consts.QChanCategory,
			consts.QChanUploadPlaylist,
			consts.QChanDepth,
			consts.QChanConvert,
			consts.QChanPaused,
			consts.QChanLastScan,
			consts.QChanCreatedAt,
			consts.QChanUpdatedAt,
		).
		From(consts.DBChannels)
}

// scanChannel scans a row produced by channelSelect.
func scanChannel(row squirrel.RowScanner) (*models.Channel, error) {
	var (
		c                              models.Channel
		lastScan, createdAt, updatedAt sql.NullTime
	)
	if err := row.Scan(
		&c.ID,
		&c.ChannelID,
		&c.Name,
		&c.Category,
		&c.UploadsPlaylist,
		&c.Depth,
		&c.Convert,
		&c.Paused,
		&lastScan,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	c.LastScan = lastScan.Time
	c.CreatedAt = createdAt.Time
	c.UpdatedAt = updatedAt.Time
	return &c, nil
}
