package health

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileSink publishes snapshots to a JSON file that external processes
// (container healthchecks, monitoring scripts) may read at any time.
// Each write goes to a temporary file in the same directory and is
// renamed into place, so readers see either the old document or the
// new one, never a partial write.
type FileSink struct {
	path string
}

// NewFileSink creates a sink writing to path
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

// Path returns the sink file location
func (f *FileSink) Path() string {
	return f.path
}

// Write publishes a snapshot
func (f *FileSink) Write(snap Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding health snapshot: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating health directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".status-*.json")
	if err != nil {
		return fmt.Errorf("creating health temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing health snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing health snapshot: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing health snapshot: %w", err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publishing health snapshot: %w", err)
	}
	return nil
}

// Remove deletes the sink file. Called at shutdown so a stale snapshot
// does not outlive the process.
func (f *FileSink) Remove() error {
	err := os.Remove(f.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Read loads the last published snapshot from disk
func Read(path string) (Snapshot, error) {
	var snap Snapshot
	data, err := os.ReadFile(path)
	if err != nil {
		return snap, err
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("decoding health snapshot: %w", err)
	}
	return snap, nil
}
