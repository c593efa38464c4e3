package parsing

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestISODuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want time.Duration
	}{
		{"PT15S", 15 * time.Second},
		{"PT4M13S", 4*time.Minute + 13*time.Second},
		{"PT1H2M3S", time.Hour + 2*time.Minute + 3*time.Second},
		{"P1DT1S", 24*time.Hour + time.Second},
	}
	for _, tt := range tests {
		got, err := ISODuration(tt.in)
		if err != nil {
			t.Fatalf("ISODuration(%q) unexpected error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ISODuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestISODurationInvalid(t *testing.T) {
	t.Parallel()

	if _, err := ISODuration("  "); !errors.Is(err, ErrNoDuration) {
		t.Fatalf("expected ErrNoDuration for blank input, got %v", err)
	}
	if _, err := ISODuration("four minutes"); err == nil {
		t.Fatalf("expected error for non ISO input")
	}
}

func TestSettingDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"5", 5 * time.Second, false},
		{" 2.5 ", 2500 * time.Millisecond, false},
		{"4s", 4 * time.Second, false},
		{"1m", time.Minute, false},
		{"", 0, false},
		{"5 seconds", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := SettingDuration(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SettingDuration(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("SettingDuration(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	got, err := ParseTimestamp("2021-03-04T05:06:07Z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	if _, err := ParseTimestamp("not a date at all"); err == nil {
		t.Fatalf("expected error for garbage timestamp")
	}
}

func TestDateSlug(t *testing.T) {
	t.Parallel()

	if got := DateSlug(time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)); got != "[2020-01-02]" {
		t.Errorf("got %q", got)
	}
	if got := DateSlug(time.Time{}); got != "[unknown-date]" {
		t.Errorf("got %q for zero time", got)
	}
}

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{`What is "news"? A/B test: part 1*`, `What is 'news' A-B test part 1`},
		{"  lots   of\t\tspace  ", "lots of space"},
		{"<>:?*", "untitled"},
		{`pipe|back\slash`, "pipe-back-slash"},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	long := strings.Repeat("a", 500)
	if got := SanitizeFilename(long); len([]rune(got)) != maxNameRunes {
		t.Errorf("expected %d runes, got %d", maxNameRunes, len([]rune(got)))
	}
}

func TestGetConfigValueKeyForms(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("item_concurrency", 3)
	viper.Set("archive-dir", "/srv/archive")

	if got, ok := GetConfigValue[int]("item-concurrency"); !ok || got != 3 {
		t.Errorf("expected snake_case fallback to find 3, got %v (%v)", got, ok)
	}
	if got, ok := GetConfigValue[string]("archive-dir"); !ok || got != "/srv/archive" {
		t.Errorf("got %q (%v)", got, ok)
	}
	if _, ok := GetConfigValue[bool]("missing-key"); ok {
		t.Errorf("expected missing key to report not found")
	}
}
