// Package paths initializes the archiver's filepaths, directories, etc.
package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"tubarchive/internal/domain/consts"
)

const (
	tDir     = ".tubarchive"
	tDBFile  = "tubarchive.db"
	tLogFile = "tubarchive.log"
	tCookies = "cookies.txt"
)

// File and directory path strings.
var (
	HomeProgDir    string
	DBFilePath     string
	LogFilePath    string
	CookieFilePath string
)

// InitProgFilesDirs initializes necessary program directories and filepaths.
func InitProgFilesDirs() error {
	userHomeDir, err := os.UserHomeDir()
	if err != nil {
		return errors.New("failed to get home directory")
	}

	// Home program dir ~/.tubarchive
	HomeProgDir = filepath.Join(userHomeDir, tDir)
	if _, err := os.Stat(HomeProgDir); os.IsNotExist(err) {
		if err := os.MkdirAll(HomeProgDir, consts.PermsHomeProgDir); err != nil {
			return fmt.Errorf("failed to make directories: %w", err)
		}
	}

	// Main files
	DBFilePath = filepath.Join(HomeProgDir, tDBFile)
	LogFilePath = filepath.Join(HomeProgDir, tLogFile)
	CookieFilePath = filepath.Join(HomeProgDir, tCookies)
	return nil
}
