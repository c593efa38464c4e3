package parsing

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// GetConfigValue normalizes and retrieves values from the config file.
//
// Supports both kebab-case and snake_case keys.
func GetConfigValue[T any](key string) (T, bool) {
	var zero T

	for _, k := range []string{
		key,
		strings.ReplaceAll(key, "-", "_"),
		strings.ReplaceAll(key, "_", "-"),
	} {
		if !viper.IsSet(k) {
			continue
		}
		if val, ok := convertConfigValue[T](viper.Get(k)); ok {
			return val, true
		}
	}
	return zero, false
}

// convertConfigValue handles config entry conversions safely.
func convertConfigValue[T any](v any) (T, bool) {
	var zero T

	// Direct type match
	if val, ok := v.(T); ok {
		return val, true
	}

	switch any(zero).(type) {
	case string:
		return any(fmt.Sprintf("%v", v)).(T), true

	case int:
		switch n := v.(type) {
		case int64:
			return any(int(n)).(T), true
		case float64:
			return any(int(n)).(T), true
		}

	case float64:
		switch n := v.(type) {
		case int:
			return any(float64(n)).(T), true
		case int64:
			return any(float64(n)).(T), true
		}

	case []string:
		if slice, ok := v.([]any); ok {
			strSlice := make([]string, len(slice))
			for i, item := range slice {
				strSlice[i] = fmt.Sprintf("%v", item)
			}
			return any(strSlice).(T), true
		}
	}

	return zero, false
}
