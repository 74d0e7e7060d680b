package fixture

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRecorderDisabledByDefault(t *testing.T) {
	os.Unsetenv(envRecordFlag)
	r := New()
	if r.Enabled() {
		t.Error("Recorder should be disabled without YF_RECORD=1")
	}
	if err := r.Record("chart", "AAPL", "json", "{}"); err != nil {
		t.Errorf("Record should no-op without error when disabled: %v", err)
	}
}

func TestRecorderWritesKeyedFilename(t *testing.T) {
	dir := t.TempDir()
	os.Setenv(envRecordFlag, "1")
	os.Setenv(envFixtureDir, dir)
	defer os.Unsetenv(envRecordFlag)
	defer os.Unsetenv(envFixtureDir)

	r := New()
	if !r.Enabled() {
		t.Fatal("Recorder should be enabled with YF_RECORD=1")
	}
	if err := r.Record("chart", "AAPL", "json", `{"ok":true}`); err != nil {
		t.Fatalf("Record: %v", err)
	}

	path := filepath.Join(dir, "chart_AAPL.json")
	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected fixture at %s: %v", path, err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("body = %q", body)
	}

	loaded, err := r.Load("chart", "AAPL", "json")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded != `{"ok":true}` {
		t.Errorf("Load = %q", loaded)
	}
}
