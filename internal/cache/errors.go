package cache

import (
	"errors"
	"fmt"
)

// ErrSyncInProgress is returned when a run starts while another one is
// still working.
var ErrSyncInProgress = errors.New("cache sync already in progress")

// ErrStorage matches every StorageError via errors.Is.
var ErrStorage = errors.New("storage error")

// StorageError aborts a run because the cache folder is unusable.
type StorageError struct {
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("cache folder %s: %v", e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// HTTPError records a non-2xx answer for a word.
type HTTPError struct {
	URL    string
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.Status)
}
