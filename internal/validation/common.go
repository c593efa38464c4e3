// Package validation handles validation of user flag input.
package validation

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"tubarchive/internal/domain/consts"
	"tubarchive/internal/domain/logger"
)

var (
	channelIDRegex = regexp.MustCompile(`^UC[0-9A-Za-z_-]{22}$`)
	handleRegex    = regexp.MustCompile(`^@[0-9A-Za-z._-]{3,30}$`)
)

// ValidateDirectory validates that the directory exists, else creates it if desired.
func ValidateDirectory(dir string, createIfNotFound bool) (os.FileInfo, error) {
	logger.Pl.D(3, "Statting directory %q...", dir)

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return nil, fmt.Errorf("path %q is a file, not a directory", dir)
		}
		return info, nil
	}
	if !os.IsNotExist(err) || !createIfNotFound {
		return nil, fmt.Errorf("directory %q is not accessible: %w", dir, err)
	}

	if err := os.MkdirAll(dir, consts.PermsGenericDir); err != nil {
		return nil, fmt.Errorf("directory %q does not exist and creation failed: %w", dir, err)
	}
	return os.Stat(dir)
}

// ValidateFile validates that the file exists, else creates it if desired.
func ValidateFile(f string, createIfNotFound bool) (os.FileInfo, error) {
	logger.Pl.D(3, "Statting file %q...", f)

	info, err := os.Stat(f)
	if err == nil {
		if info.IsDir() {
			return nil, fmt.Errorf("path %q is a directory, not a file", f)
		}
		return info, nil
	}
	if !os.IsNotExist(err) || !createIfNotFound {
		return nil, fmt.Errorf("file %q is not accessible: %w", f, err)
	}

	if err := os.MkdirAll(filepath.Dir(f), consts.PermsGenericDir); err != nil {
		return nil, fmt.Errorf("failed to create parent of %q: %w", f, err)
	}
	file, err := os.OpenFile(f, os.O_CREATE|os.O_WRONLY, consts.PermsJSONFile)
	if err != nil {
		return nil, fmt.Errorf("file %q does not exist and creation failed: %w", f, err)
	}
	if err := file.Close(); err != nil {
		return nil, err
	}
	return os.Stat(f)
}

// ValidateChannelID checks an upstream channel ID ("UC" + 22 characters) or handle ("@name").
func ValidateChannelID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.New("channel ID must not be empty")
	}
	if channelIDRegex.MatchString(id) || handleRegex.MatchString(id) {
		return id, nil
	}
	return "", fmt.Errorf("invalid channel ID %q: expected \"UC\" followed by 22 characters, or an @handle", id)
}

// ValidateLoggingLevel clamps the debug level into 0-5.
func ValidateLoggingLevel(l int) int {
	return min(max(l, 0), 5)
}

// ValidateConcurrencyLimit ensures the concurrency limit is at least 1.
func ValidateConcurrencyLimit(n int) int {
	if n < 1 {
		logger.Pl.D(2, "Concurrency %d is invalid, using 1", n)
		return 1
	}
	return n
}

// ValidateDepth normalises a listing depth, where anything below 1 means "all uploads".
func ValidateDepth(d int) int {
	if d < 0 {
		return 0
	}
	return d
}

// ValidateTolerance rejects negative tolerances. Zero selects the default.
func ValidateTolerance(d time.Duration) (time.Duration, error) {
	if d < 0 {
		return 0, fmt.Errorf("tolerance must not be negative, got %v", d)
	}
	if d == 0 {
		return consts.DefaultTolerance, nil
	}
	return d, nil
}
