// Package archive moves a folder aside under a timestamped name.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DirName is the folder archives are collected in, next to the archived
// folder. The leading dot keeps note scanners away from it.
const DirName = ".archive"

// Folder moves dir to {parent}/.archive/{name}-{timestamp} and returns the
// new location.
func Folder(dir string, now time.Time) (string, error) {
	// Check if the directory exists
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("directory does not exist: %s", dir)
	}
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", dir)
	}

	archiveDir := filepath.Join(filepath.Dir(dir), DirName)
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	archivePath := filepath.Join(archiveDir, fmt.Sprintf("%s-%s", filepath.Base(dir), now.Format("20060102-150405")))

	// Two archives within the same second get sub-second precision.
	if _, err := os.Stat(archivePath); err == nil {
		archivePath = filepath.Join(archiveDir, fmt.Sprintf("%s-%s", filepath.Base(dir), now.Format("20060102-150405.000000")))
	}

	if err := os.Rename(dir, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", dir, err)
	}
	return archivePath, nil
}
