// Package storage provides the file operations used by the cache
// synchronizer and the audio resolver. Paths are vault-relative and use
// forward slashes, as notes refer to them.
package storage

import (
	"errors"
)

// ErrNotFound is returned by Read when the path does not exist.
var ErrNotFound = errors.New("not found")

// IO is the storage surface consumed by the cache and the resolver.
type IO interface {
	Exists(path string) (bool, error)
	CreateFolder(path string) error
	// WriteBinary replaces the file at path with data as a whole.
	WriteBinary(path string, data []byte) error
	Read(path string) (string, error)
}

// ResourcePather is implemented by storage that can turn a path into a
// handle a media player can load directly.
type ResourcePather interface {
	ResourcePath(path string) (string, error)
}

// Indexer is implemented by storage that keeps an index of known files
// and can hand out a resource handle for an indexed path.
type Indexer interface {
	Lookup(path string) (string, bool)
}
