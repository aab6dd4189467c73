package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// FS is storage backed by a directory on the local filesystem.
type FS struct {
	root string
}

var (
	_ IO             = (*FS)(nil)
	_ ResourcePather = (*FS)(nil)
)

// NewFS returns storage rooted at root. A leading ~ expands to the home
// directory.
func NewFS(root string) *FS {
	if strings.HasPrefix(root, "~") {
		home, _ := os.UserHomeDir()
		root = filepath.Join(home, root[1:])
	}
	return &FS{root: root}
}

// Root returns the directory the storage is rooted at.
func (s *FS) Root() string {
	return s.root
}

// Abs maps a vault-relative path to a filesystem path. Paths escaping the
// root are rejected.
func (s *FS) Abs(p string) (string, error) {
	rel := path.Clean(filepath.ToSlash(p))
	if rel == ".." || strings.HasPrefix(rel, "../") || path.IsAbs(rel) {
		return "", fmt.Errorf("path %q is outside the vault", p)
	}
	return filepath.Join(s.root, filepath.FromSlash(rel)), nil
}

// Exists implements IO.
func (s *FS) Exists(p string) (bool, error) {
	abs, err := s.Abs(p)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(abs)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// CreateFolder implements IO.
func (s *FS) CreateFolder(p string) error {
	abs, err := s.Abs(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return fmt.Errorf("failed to create folder %s: %w", p, err)
	}
	return nil
}

// WriteBinary implements IO. Data goes to a temporary file next to the
// target which is then renamed over it, so readers never see a partial file.
func (s *FS) WriteBinary(p string, data []byte) error {
	abs, err := s.Abs(p)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(abs), "."+filepath.Base(abs)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", p, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set permissions on %s: %w", p, err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move %s into place: %w", p, err)
	}
	return nil
}

// Read implements IO.
func (s *FS) Read(p string) (string, error) {
	abs, err := s.Abs(p)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%s: %w", p, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", p, err)
	}
	return string(data), nil
}

// ResourcePath implements ResourcePather with a file:// URL.
func (s *FS) ResourcePath(p string) (string, error) {
	abs, err := s.Abs(p)
	if err != nil {
		return "", err
	}
	abs, err = filepath.Abs(abs)
	if err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}

// Markdown lists the markdown notes below folder, vault-relative and
// sorted. Hidden directories are skipped. An empty folder means the whole
// vault.
func (s *FS) Markdown(folder string) ([]string, error) {
	base, err := s.Abs(folder)
	if err != nil {
		return nil, err
	}

	var notes []string
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != base && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(d.Name()), ".md") {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		notes = append(notes, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list notes in %q: %w", folder, err)
	}

	sort.Strings(notes)
	return notes, nil
}
