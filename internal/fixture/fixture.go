// Package fixture implements C18: the optional response-body recorder used
// only by tests. When record mode is enabled, normalized response bodies
// are persisted under a keyed filename scheme so tests can replay them
// offline, grounded on original_source's internal::fixtures::record_fixture.
package fixture

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// envFixtureDir and envRecordFlag name the two environment variables C18
// reads: where to write fixtures, and whether recording is enabled at all
// (spec §6.3's record-mode flag). Named for parity with the original
// source's YF_FIXDIR/YF_RECORD.
const (
	envFixtureDir = "YF_FIXDIR"
	envRecordFlag = "YF_RECORD"
	defaultFixDir = "testdata/fixtures"
)

// Recorder persists response bodies under {endpoint}_{symbol}.{ext} inside
// its fixture directory, one Recorder per test run. RunID is a per-instance
// identifier for correlating log lines; it is not used in the filename or
// in the write, so two Recorders writing the same key into the same
// directory overwrite each other's file.
type Recorder struct {
	dir     string
	enabled bool
	runID   string
}

// New builds a Recorder. Recording is enabled only when YF_RECORD=1; an
// explicit YF_FIXDIR overrides the default testdata/fixtures directory.
func New() *Recorder {
	dir := os.Getenv(envFixtureDir)
	if dir == "" {
		dir = defaultFixDir
	}
	return &Recorder{
		dir:     dir,
		enabled: os.Getenv(envRecordFlag) == "1",
		runID:   uuid.NewString(),
	}
}

// Enabled reports whether record mode is active.
func (r *Recorder) Enabled() bool {
	return r != nil && r.enabled
}

// RunID returns the recorder's run identifier, useful for correlating log
// lines across a single test invocation.
func (r *Recorder) RunID() string {
	if r == nil {
		return ""
	}
	return r.runID
}

// Record writes body to {endpoint}_{symbol}.{ext} under the fixture
// directory. A no-op, returning nil, when recording is disabled (spec §6.3:
// "used only by tests").
func (r *Recorder) Record(endpoint, symbol, ext, body string) error {
	if !r.Enabled() {
		return nil
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("fixture: create dir %s: %w", r.dir, err)
	}
	filename := fmt.Sprintf("%s_%s.%s", endpoint, symbol, ext)
	path := filepath.Join(r.dir, filename)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return fmt.Errorf("fixture: write %s: %w", path, err)
	}
	return nil
}

// Load reads a previously recorded fixture for offline test replay.
func (r *Recorder) Load(endpoint, symbol, ext string) (string, error) {
	dir := r.dir
	if dir == "" {
		dir = defaultFixDir
	}
	filename := fmt.Sprintf("%s_%s.%s", endpoint, symbol, ext)
	body, err := os.ReadFile(filepath.Join(dir, filename))
	if err != nil {
		return "", fmt.Errorf("fixture: load %s: %w", filename, err)
	}
	return string(body), nil
}
