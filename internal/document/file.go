package document

import "fmt"

// Store reads and writes whole notes by vault-relative path.
type Store interface {
	Read(path string) (string, error)
	WriteBinary(path string, data []byte) error
}

// Load reads the note at path into a Buffer.
func Load(s Store, path string) (*Buffer, error) {
	text, err := s.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return NewBuffer(text), nil
}

// Save writes b back to path.
func Save(s Store, path string, b *Buffer) error {
	if err := s.WriteBinary(path, []byte(b.Value())); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
