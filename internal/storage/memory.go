package storage

import (
	"fmt"
	"path"
	"strings"
	"sync"
)

// Memory is an in-memory storage keeping an index of its files. It has no
// ResourcePath capability; handles come from Lookup.
type Memory struct {
	mu      sync.Mutex
	files   map[string][]byte
	folders map[string]bool

	// Errors injected per operation, keyed "exists:", "mkdir:", "write:" or
	// "read:" followed by the path.
	Errors map[string]error
	Writes int
}

var (
	_ IO      = (*Memory)(nil)
	_ Indexer = (*Memory)(nil)
)

// NewMemory returns an empty in-memory storage.
func NewMemory() *Memory {
	return &Memory{
		files:   make(map[string][]byte),
		folders: make(map[string]bool),
		Errors:  make(map[string]error),
	}
}

func memClean(p string) string {
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}

func (m *Memory) injected(op, p string) error {
	return m.Errors[op+":"+p]
}

// Exists implements IO.
func (m *Memory) Exists(p string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p = memClean(p)
	if err := m.injected("exists", p); err != nil {
		return false, err
	}
	_, isFile := m.files[p]
	return isFile || m.folders[p], nil
}

// CreateFolder implements IO.
func (m *Memory) CreateFolder(p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p = memClean(p)
	if err := m.injected("mkdir", p); err != nil {
		return err
	}
	for dir := p; dir != "." && dir != ""; dir = path.Dir(dir) {
		m.folders[dir] = true
	}
	return nil
}

// WriteBinary implements IO. The parent folder must exist.
func (m *Memory) WriteBinary(p string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p = memClean(p)
	if err := m.injected("write", p); err != nil {
		return err
	}
	if dir := path.Dir(p); dir != "." && !m.folders[dir] {
		return fmt.Errorf("write %s: parent folder %s: %w", p, dir, ErrNotFound)
	}
	m.files[p] = append([]byte(nil), data...)
	m.Writes++
	return nil
}

// Read implements IO.
func (m *Memory) Read(p string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p = memClean(p)
	if err := m.injected("read", p); err != nil {
		return "", err
	}
	data, ok := m.files[p]
	if !ok {
		return "", fmt.Errorf("%s: %w", p, ErrNotFound)
	}
	return string(data), nil
}

// Lookup implements Indexer.
func (m *Memory) Lookup(p string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p = memClean(p)
	if _, ok := m.files[p]; !ok {
		return "", false
	}
	return "memory://" + p, true
}

// Files returns a copy of the stored files.
func (m *Memory) Files() map[string][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string][]byte, len(m.files))
	for k, v := range m.files {
		out[k] = v
	}
	return out
}
