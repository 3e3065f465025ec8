package scale

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "settings.json"))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := tempStore(t)

	rec := Record{
		UmPerPx:       2.0,
		Source:        SourceCalibrated,
		KnownLengthUm: 400,
		LinePxLength:  200,
		Timestamp:     "2026-08-25T10:00:00Z",
	}

	if err := store.Save(rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got := store.Load()
	if got == nil {
		t.Fatal("Load returned nil after Save")
	}
	if *got != rec {
		t.Errorf("Round trip mismatch: saved %+v, loaded %+v", rec, *got)
	}
}

func TestSaveFillsTimestamp(t *testing.T) {
	store := tempStore(t)

	if err := store.Save(Record{UmPerPx: 1.5, Source: SourceManual}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got := store.Load()
	if got == nil {
		t.Fatal("Load returned nil after Save")
	}
	if got.Timestamp == "" {
		t.Error("Expected Save to fill in a timestamp")
	}
}

func TestSaveRejectsNonPositiveScale(t *testing.T) {
	store := tempStore(t)

	for _, v := range []float64{0, -1} {
		if err := store.Save(Record{UmPerPx: v}); err == nil {
			t.Errorf("Expected error for um_per_px %v", v)
		}
	}
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "settings.json"))

	if err := store.Save(Record{UmPerPx: 1.0}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "settings.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("Expected only settings.json, found %v", names)
	}
}

func TestSaveOverwrites(t *testing.T) {
	store := tempStore(t)

	if err := store.Save(Record{UmPerPx: 1.0, Source: SourceManual}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(Record{UmPerPx: 2.5, Source: SourceCalibrated}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got := store.Load()
	if got == nil || got.UmPerPx != 2.5 || got.Source != SourceCalibrated {
		t.Errorf("Expected the second record to win, got %+v", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if rec := tempStore(t).Load(); rec != nil {
		t.Errorf("Expected nil for missing file, got %+v", rec)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	cases := map[string]string{
		"not json":           "not json at all {",
		"empty":              "",
		"non-positive scale": `{"um_per_px": -3}`,
		"wrong shape":        `{"um_per_px": "two"}`,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "settings.json")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatalf("WriteFile failed: %v", err)
			}

			if rec := NewStore(path).Load(); rec != nil {
				t.Errorf("Expected nil for %s file, got %+v", name, rec)
			}
		})
	}
}

func TestLoadLegacyKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"scale_um_per_px": 1.342281879}`), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	rec := NewStore(path).Load()
	if rec == nil {
		t.Fatal("Expected legacy settings file to load")
	}
	if rec.UmPerPx != 1.342281879 {
		t.Errorf("Expected legacy scale 1.342281879, got %v", rec.UmPerPx)
	}
}

func TestLoadOrDefault(t *testing.T) {
	store := tempStore(t)

	if got := store.LoadOrDefault(1.25); got != 1.25 {
		t.Errorf("Expected default 1.25, got %v", got)
	}

	if err := store.Save(Record{UmPerPx: 3.0}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if got := store.LoadOrDefault(1.25); got != 3.0 {
		t.Errorf("Expected persisted 3.0, got %v", got)
	}
}

func TestSavedFileIsIndentedJSON(t *testing.T) {
	store := tempStore(t)
	if err := store.Save(Record{UmPerPx: 2.0, Source: SourceManual}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.Contains(string(data), "\n  \"um_per_px\"") {
		t.Errorf("Expected indented JSON, got: %s", data)
	}
}
