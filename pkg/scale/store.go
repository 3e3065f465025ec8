package scale

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultPath is the settings file written next to the working directory.
const DefaultPath = "settings.json"

// Record sources.
const (
	SourceManual     = "manual"
	SourceCalibrated = "calibrated"
)

// Record is the persisted scale factor plus how it was derived.
type Record struct {
	UmPerPx       float64 `json:"um_per_px"`
	Source        string  `json:"source,omitempty"`
	KnownLengthUm float64 `json:"known_length_um,omitempty"`
	LinePxLength  float64 `json:"line_px_length,omitempty"`
	Timestamp     string  `json:"timestamp,omitempty"`
}

// rawRecord additionally understands the legacy key written by earlier
// versions of the tool, consulted only on load.
type rawRecord struct {
	Record
	LegacyUmPerPx float64 `json:"scale_um_per_px"`
}

// Store reads and writes the single persisted calibration record.
type Store struct {
	path string
}

// NewStore creates a store bound to the given settings path. An empty path
// selects DefaultPath.
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{path: path}
}

// Path returns the settings file path the store is bound to.
func (s *Store) Path() string { return s.path }

// Load returns the persisted record, or nil when no usable record exists.
// A missing, unreadable or malformed file is not an error: the caller falls
// back to the default scale and the user keeps working.
func (s *Store) Load() *Record {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logrus.Warnf("calibration file %s unreadable, falling back to default scale: %v", s.path, err)
		}
		return nil
	}

	var raw rawRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		logrus.Warnf("calibration file %s malformed, falling back to default scale: %v", s.path, err)
		return nil
	}

	rec := raw.Record
	if rec.UmPerPx <= 0 && raw.LegacyUmPerPx > 0 {
		rec.UmPerPx = raw.LegacyUmPerPx
	}
	if rec.UmPerPx <= 0 {
		logrus.Warnf("calibration file %s carries no positive scale, falling back to default scale", s.path)
		return nil
	}

	return &rec
}

// LoadOrDefault returns the persisted scale factor, or def when no usable
// record exists.
func (s *Store) LoadOrDefault(def float64) float64 {
	if rec := s.Load(); rec != nil {
		return rec.UmPerPx
	}
	return def
}

// Save overwrites the persisted record. The file is replaced atomically
// (temp file plus rename) so a crash mid-write cannot leave a truncated
// settings file behind. A missing timestamp is filled in.
func (s *Store) Save(rec Record) error {
	if rec.UmPerPx <= 0 {
		return fmt.Errorf("um_per_px must be positive, got %v", rec.UmPerPx)
	}
	if rec.Timestamp == "" {
		rec.Timestamp = time.Now().Format(time.RFC3339)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal calibration record: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".settings-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp settings file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write calibration record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp settings file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}

	return nil
}
