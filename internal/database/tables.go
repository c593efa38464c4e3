package database

import (
	"database/sql"
	"embed"
	"fmt"
)

//go:embed sql/*.sql
var sqlFiles embed.FS

const (
	blockedSQL = "sql/blocked_domains.sql"
	channelSQL = "sql/channels.sql"
	programSQL = "sql/program.sql"
	runSQL     = "sql/runs.sql"
	videoSQL   = "sql/videos.sql"
)

// initProgramTable initializes the primary program database table.
func initProgramTable(tx *sql.Tx) error {
	return executeSQLFile(tx, programSQL, "program table")
}

// initChannelsTable intializes channel tables.
func initChannelsTable(tx *sql.Tx) error {
	return executeSQLFile(tx, channelSQL, "channels table")
}

// initVideosTable initializes videos tables.
func initVideosTable(tx *sql.Tx) error {
	return executeSQLFile(tx, videoSQL, "videos table")
}

// initRunsTable initializes the archive run history table.
func initRunsTable(tx *sql.Tx) error {
	return executeSQLFile(tx, runSQL, "runs table")
}

// initBlockedDomainsTable initializes the bot detection block table.
func initBlockedDomainsTable(tx *sql.Tx) error {
	return executeSQLFile(tx, blockedSQL, "blocked domains table")
}

// executeSQLFile executes the SQL file stored in memory from go:embed.
func executeSQLFile(tx *sql.Tx, filename, tableName string) error {
	data, err := sqlFiles.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read SQL file %s: %w", filename, err)
	}
	if _, err := tx.Exec(string(data)); err != nil {
		return fmt.Errorf("failed to execute SQL for %s: %w", tableName, err)
	}
	return nil
}
