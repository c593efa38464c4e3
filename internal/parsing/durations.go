package parsing

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	duration "github.com/ChannelMeter/iso8601duration"
)

// ErrNoDuration is returned for empty duration strings.
var ErrNoDuration = errors.New("no duration reported")

// ISODuration parses an ISO-8601 duration such as "PT1H2M3S".
func ISODuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrNoDuration
	}
	d, err := duration.FromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid ISO-8601 duration %q: %w", s, err)
	}
	return d.ToDuration(), nil
}

// Seconds converts float seconds (as reported by ffprobe) into a time.Duration.
func Seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}

// SettingDuration parses a user supplied duration. Bare numbers are seconds,
// anything else must be a Go duration such as "2.5s" or "1m". Blank is zero.
func SettingDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Seconds(f), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: use seconds or a value like 2.5s", s)
	}
	return d, nil
}
