// Package file contains utilities related to file operations (e.g. reading files).
package file

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"tubarchive/internal/domain/errconsts"
	"tubarchive/internal/domain/logger"
	"tubarchive/internal/validation"

	"github.com/spf13/viper"
)

// LoadConfigFile loads in the configuration file.
func LoadConfigFile(v *viper.Viper, file string) error {
	if !IsConfigFile(file) {
		return fmt.Errorf("config file %q has an unsupported extension", file)
	}
	if _, err := validation.ValidateFile(file, false); err != nil {
		return err
	}

	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf(errconsts.ConfigFileLoadFail, file, err)
	}
	return nil
}

// ReadJSON decodes the JSON file at path into v.
func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse JSON %q: %w", path, err)
	}
	return nil
}

// ReadFileLines loads lines from a file (one per line, ignoring '#' comment lines).
func ReadFileLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Pl.E("failed to close file %v due to error: %v", path, err)
		}
	}()

	f := []string{}
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue // skip blank lines and comments
		}
		f = append(f, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return f, nil
}

// IsConfigFile reports whether path has an extension viper can read.
func IsConfigFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".toml", ".json", ".hcl", ".properties", ".props", ".prop", ".ini", ".env":
		return true
	}
	return false
}
