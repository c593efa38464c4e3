// Package repo holds the registry stores backed by the program database.
package repo

import (
	"database/sql"
	"tubarchive/internal/contracts"
)

// Store bundles the registry stores sharing one database handle.
type Store struct {
	db           *sql.DB
	channelStore *ChannelStore
	videoStore   *VideoStore
	runStore     *RunStore
}

// InitStores returns the stores for db.
func InitStores(db *sql.DB) *Store {
	return &Store{
		db:           db,
		channelStore: GetChannelStore(db),
		videoStore:   GetVideoStore(db),
		runStore:     GetRunStore(db),
	}
}

// ChannelStore returns the channel store.
func (s *Store) ChannelStore() contracts.ChannelStore {
	return s.channelStore
}

// VideoStore returns the video store.
func (s *Store) VideoStore() contracts.VideoStore {
	return s.videoStore
}

// RunStore returns the run store.
func (s *Store) RunStore() contracts.RunStore {
	return s.runStore
}

// GetDB returns the database.
func (s *Store) GetDB() *sql.DB {
	return s.db
}
