package validation

import (
	"errors"
	"fmt"
	"tubarchive/internal/domain/consts"
)

// ValidateColumnKeyVal ensures that the provided column 'key' with value 'val' is valid.
func ValidateColumnKeyVal(key, val string) error {
	if key == "" || val == "" {
		return errors.New("key and value must not be empty")
	}
	if !consts.ValidDBColumns[key] {
		return fmt.Errorf("invalid database column key: %q", key)
	}
	return nil
}
