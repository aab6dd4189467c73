package archive

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFolder(t *testing.T) {
	tmpDir := t.TempDir()

	// Create the cache directory with a nested file
	cacheDir := filepath.Join(tmpDir, "pronunciations")
	if err := os.MkdirAll(filepath.Join(cacheDir, "en"), 0755); err != nil {
		t.Fatalf("Failed to create cache directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cacheDir, "en", "cat.mp3"), []byte("audio"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	now := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)
	archived, err := Folder(cacheDir, now)
	if err != nil {
		t.Fatalf("Folder failed: %v", err)
	}

	want := filepath.Join(tmpDir, DirName, "pronunciations-20250314-150926")
	if archived != want {
		t.Errorf("archived to %s, want %s", archived, want)
	}

	// The original directory is gone
	if _, err := os.Stat(cacheDir); !os.IsNotExist(err) {
		t.Error("Cache directory still exists after archiving")
	}

	// The content moved with it
	content, err := os.ReadFile(filepath.Join(archived, "en", "cat.mp3"))
	if err != nil {
		t.Fatalf("Failed to read archived file: %v", err)
	}
	if string(content) != "audio" {
		t.Errorf("Archived file content = %q", content)
	}
}

func TestFolderSameSecond(t *testing.T) {
	tmpDir := t.TempDir()
	cacheDir := filepath.Join(tmpDir, "audio")
	now := time.Date(2025, 3, 14, 15, 9, 26, 123456000, time.UTC)

	var paths []string
	for range 2 {
		if err := os.MkdirAll(cacheDir, 0755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		p, err := Folder(cacheDir, now)
		if err != nil {
			t.Fatalf("Folder failed: %v", err)
		}
		paths = append(paths, p)
	}

	if paths[0] == paths[1] {
		t.Fatalf("both archives got the same path %s", paths[0])
	}
	if !strings.HasSuffix(paths[1], ".123456") {
		t.Errorf("second archive should carry microseconds, got %s", paths[1])
	}
}

func TestFolderErrors(t *testing.T) {
	tmpDir := t.TempDir()

	if _, err := Folder(filepath.Join(tmpDir, "missing"), time.Now()); err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("Expected 'does not exist' error, got %v", err)
	}

	file := filepath.Join(tmpDir, "file")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Folder(file, time.Now()); err == nil || !strings.Contains(err.Error(), "not a directory") {
		t.Errorf("Expected 'not a directory' error, got %v", err)
	}
}
