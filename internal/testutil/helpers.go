package testutil

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// CreateTestVault creates a temporary vault with a notes folder and an
// empty pronunciation cache folder.
func CreateTestVault(t *testing.T) string {
	t.Helper()

	vault := t.TempDir()

	for _, dir := range []string{"notes", "pronunciations"} {
		path := filepath.Join(vault, dir)
		if err := os.MkdirAll(path, 0755); err != nil {
			t.Fatalf("Failed to create test directory %s: %v", path, err)
		}
	}

	return vault
}

// CreateTestFile creates a test file with content
func CreateTestFile(t *testing.T, path string, content []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create directory for test file: %v", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
}

// CreateTestNote writes a markdown note below vault and returns its
// vault-relative path.
func CreateTestNote(t *testing.T, vault, name string, lines ...string) string {
	t.Helper()

	rel := filepath.ToSlash(name)
	CreateTestFile(t, filepath.Join(vault, filepath.FromSlash(rel)), []byte(strings.Join(lines, "\n")))
	return rel
}

// CreateCachedAudio places a fake audio file in the cache folder.
func CreateCachedAudio(t *testing.T, vault, cacheDir, word, ext string) string {
	t.Helper()

	path := filepath.Join(vault, filepath.FromSlash(cacheDir), word+"."+ext)
	CreateTestFile(t, path, MP3Header())
	return path
}

// MP3Header returns the first bytes of an MP3 frame.
func MP3Header() []byte {
	return []byte{0xFF, 0xFB, 0x90, 0x00}
}

// AssertFileExists checks if a file exists
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Expected file to exist: %s", path)
	}
}

// AssertFileNotExists checks if a file does not exist
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); err == nil {
		t.Errorf("Expected file to not exist: %s", path)
	}
}

// AssertFileContent checks if a file has expected content
func AssertFileContent(t *testing.T, path string, expected []byte) {
	t.Helper()

	actual, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	if !bytes.Equal(actual, expected) {
		t.Errorf("File content mismatch in %s\nExpected: %q\nActual: %q", path, expected, actual)
	}
}

// AssertFileContains checks if a file contains a substring
func AssertFileContains(t *testing.T, path string, substring string) {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	if !strings.Contains(string(content), substring) {
		t.Errorf("File %s does not contain expected substring: %q", path, substring)
	}
}

// CaptureOutput captures stdout during test execution
func CaptureOutput(t *testing.T, f func()) string {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	os.Stdout = w

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.String()
	}()

	defer func() { os.Stdout = old }()
	f()
	_ = w.Close()

	return <-done
}
