package validation_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	"tubarchive/internal/domain/consts"
	"tubarchive/internal/validation"
)

// TestValidateDirectory runs checks for directory validation --------------------------------------------------------------------
func TestValidateDirectory_ExistingDirectory(t *testing.T) {
	tmp := t.TempDir()

	info, err := validation.ValidateDirectory(tmp, false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if info == nil {
		t.Fatalf("expected file info, got nil")
	}
}

func TestValidateDirectory_CreateIfMissing(t *testing.T) {
	tmp := t.TempDir()
	missing := filepath.Join(tmp, "new", "nested")
	invalidName := tmp + "/bad\x00name"

	// Missing, create it
	info, err := validation.ValidateDirectory(missing, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, statErr := os.Stat(missing); statErr != nil {
		t.Fatalf("directory was not created")
	}
	if info == nil {
		t.Fatalf("expected file info, got nil")
	}

	// Missing, invalid directory name
	info, err = validation.ValidateDirectory(invalidName, true)
	if err == nil {
		t.Fatalf("expected error, got: %v", err)
	}
	if info != nil {
		t.Fatalf("expected nil file info, got info")
	}
}

func TestValidateDirectory_ErrorIfMissing(t *testing.T) {
	tmp := t.TempDir()
	missing := tmp + "/missing"

	info, err := validation.ValidateDirectory(missing, false)
	if err == nil {
		t.Fatalf("expected error for missing directory, got nil")
	}
	if info != nil {
		t.Fatalf("expected nil os.FileInfo for missing, uncreated directory")
	}
}

func TestValidateDirectory_PathIsFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(f, nil, 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	if _, err := validation.ValidateDirectory(f, true); err == nil {
		t.Fatalf("expected error when path is a file")
	}
}

// TestValidateFile runs checks for file validation -----------------------------------------------------------------------------
func TestValidateFile_ExistingFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "x.txt")
	if err := os.WriteFile(f, []byte("hello"), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	info, err := validation.ValidateFile(f, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info == nil {
		t.Fatalf("expected file info, got nil")
	}
}

func TestValidateFile_CreateIfMissing(t *testing.T) {
	tmp := t.TempDir()
	valid := filepath.Join(tmp, "sub", "newfile.txt")
	invalid := tmp + "/\x00"

	info, err := validation.ValidateFile(valid, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, statErr := os.Stat(valid); statErr != nil {
		t.Fatalf("file was not created")
	}
	if info == nil {
		t.Fatalf("expected os.FileInfo, got nil")
	}

	info, err = validation.ValidateFile(invalid, true)
	if err == nil {
		t.Fatalf("expected error, got: %v", err)
	}
	if info != nil {
		t.Fatalf("expected nil os.FileInfo, got info")
	}
}

func TestValidateFile_MissingNoCreate(t *testing.T) {
	f := filepath.Join(t.TempDir(), "does_not_exist.txt")

	if _, err := validation.ValidateFile(f, false); err == nil {
		t.Fatalf("expected error for missing file without create flag")
	}
}

func TestValidateFile_PathIsDirectory(t *testing.T) {
	if _, err := validation.ValidateFile(t.TempDir(), false); err == nil {
		t.Fatalf("expected error when path is a directory")
	}
}

// TestValidateChannelID checks channel IDs and handles -------------------------------------------------------------------------
func TestValidateChannelID(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"UC_x5XG1OV2P6uZZ5FSM9Ttw", "UC_x5XG1OV2P6uZZ5FSM9Ttw", false},
		{"  UC_x5XG1OV2P6uZZ5FSM9Ttw ", "UC_x5XG1OV2P6uZZ5FSM9Ttw", false},
		{"@GoogleDevelopers", "@GoogleDevelopers", false},
		{"", "", true},
		{"UCshort", "", true},
		{"https://www.youtube.com/channel/UC_x5XG1OV2P6uZZ5FSM9Ttw", "", true},
		{"@a", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := validation.ValidateChannelID(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateChannelID(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("ValidateChannelID(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestValidateLimits checks numeric clamping -----------------------------------------------------------------------------------
func TestValidateLimits(t *testing.T) {
	if got := validation.ValidateLoggingLevel(9); got != 5 {
		t.Errorf("logging level 9 clamped to %d, want 5", got)
	}
	if got := validation.ValidateLoggingLevel(-1); got != 0 {
		t.Errorf("logging level -1 clamped to %d, want 0", got)
	}
	if got := validation.ValidateConcurrencyLimit(0); got != 1 {
		t.Errorf("concurrency 0 became %d, want 1", got)
	}
	if got := validation.ValidateConcurrencyLimit(8); got != 8 {
		t.Errorf("concurrency 8 became %d", got)
	}
	if got := validation.ValidateDepth(-4); got != 0 {
		t.Errorf("depth -4 became %d, want 0", got)
	}
	if got := validation.ValidateDepth(64); got != 64 {
		t.Errorf("depth 64 became %d", got)
	}
}

func TestValidateTolerance(t *testing.T) {
	if _, err := validation.ValidateTolerance(-time.Second); err == nil {
		t.Errorf("expected error for negative tolerance")
	}
	if got, _ := validation.ValidateTolerance(0); got != consts.DefaultTolerance {
		t.Errorf("zero tolerance became %v, want default", got)
	}
	if got, _ := validation.ValidateTolerance(5 * time.Second); got != 5*time.Second {
		t.Errorf("5s tolerance became %v", got)
	}
}

func TestValidateColumnKeyVal(t *testing.T) {
	if err := validation.ValidateColumnKeyVal(consts.QChanChannelID, "UCx"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := validation.ValidateColumnKeyVal("password", "x"); err == nil {
		t.Errorf("expected error for unknown column")
	}
	if err := validation.ValidateColumnKeyVal(consts.QChanName, ""); err == nil {
		t.Errorf("expected error for empty value")
	}
}
