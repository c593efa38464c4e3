package file_test

import (
	"os"
	"path/filepath"
	"testing"
	"tubarchive/internal/file"

	"github.com/spf13/viper"
)

func TestWriteJSONAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "info.json")

	in := map[string]any{"id": "abc", "n": 3.0}
	if err := file.WriteJSON(path, in); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var out map[string]any
	if err := file.ReadJSON(path, &out); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if out["id"] != "abc" || out["n"] != 3.0 {
		t.Fatalf("unexpected contents %v", out)
	}

	// No temp files may be left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only info.json, found %d entries", len(entries))
	}
}

func TestWriteBytesReplaces(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "f.txt")
	if err := file.WriteBytes(path, []byte("first")); err != nil {
		t.Fatal(err)
	}
	if err := file.WriteBytes(path, []byte("second")); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second" {
		t.Fatalf("got %q, want %q", got, "second")
	}
}

func TestReadFileLines(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "channels.txt")
	content := "# channels\nUC_x5XG1OV2P6uZZ5FSM9Ttw\n\n   @handle  \n#skip\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	lines, err := file.ReadFileLines(path)
	if err != nil {
		t.Fatalf("ReadFileLines: %v", err)
	}
	if len(lines) != 2 || lines[0] != "UC_x5XG1OV2P6uZZ5FSM9Ttw" || lines[1] != "@handle" {
		t.Fatalf("unexpected lines %q", lines)
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("depth: 12\narchive-dir: /srv/archive\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	v := viper.New()
	if err := file.LoadConfigFile(v, path); err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	if v.GetInt("depth") != 12 || v.GetString("archive-dir") != "/srv/archive" {
		t.Fatalf("config values not loaded: %v", v.AllSettings())
	}
	if err := file.LoadConfigFile(viper.New(), filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestIsConfigFile(t *testing.T) {
	t.Parallel()

	for path, want := range map[string]bool{
		"a.yaml": true,
		"b.TOML": true,
		"c.json": true,
		"d.txt":  false,
		"e":      false,
	} {
		if got := file.IsConfigFile(path); got != want {
			t.Errorf("IsConfigFile(%q) = %v, want %v", path, got, want)
		}
	}
}
