package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetFileExtension(t *testing.T) {
	cases := map[string]string{
		"slide.PNG":       "png",
		"a/b/image.jpeg":  "jpeg",
		"noext":           "",
		"archive.tar.gz":  "gz",
	}
	for in, want := range cases {
		if got := GetFileExtension(in); got != want {
			t.Errorf("GetFileExtension(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsImageFile(t *testing.T) {
	if !IsImageFile("slide.webp") {
		t.Error("Expected webp to be an image file")
	}
	if IsImageFile("notes.txt") {
		t.Error("Expected txt to not be an image file")
	}
}

func TestGenerateOutputFilename(t *testing.T) {
	got := GenerateOutputFilename("/data/slide.png", "", "_annotated", "")
	if got != filepath.Join("/data", "slide_annotated.png") {
		t.Errorf("Unexpected output filename: %s", got)
	}

	got = GenerateOutputFilename("slide.webp", "/out", "_annotated", "jpg")
	if got != filepath.Join("/out", "slide_annotated.jpg") {
		t.Errorf("Unexpected output filename: %s", got)
	}
}

func TestEnsureDirAndFileExists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir failed: %v", err)
	}
	if FileExists(dir) {
		t.Error("Expected FileExists to be false for a directory")
	}

	file := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if !FileExists(file) {
		t.Error("Expected FileExists to be true for a regular file")
	}
	if FileExists(filepath.Join(dir, "missing.txt")) {
		t.Error("Expected FileExists to be false for a missing file")
	}
}
