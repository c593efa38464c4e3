package main

import (
	"tubarchive/internal/database"
	"tubarchive/internal/repo"
)

// initializeApplication opens the registry and takes the single-instance guard.
func initializeApplication(dbPath string) (*repo.Store, *database.Database, *repo.ProgControl, error) {
	db, err := database.InitDB(dbPath)
	if err != nil {
		return nil, nil, nil, err
	}
	store := repo.InitStores(db.DB)

	progControl := repo.NewProgController(db.DB)
	if _, err := progControl.StartProgram(); err != nil {
		_ = db.Close()
		return nil, nil, nil, err
	}
	return store, db, progControl, nil
}
