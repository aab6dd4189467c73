package document

import (
	"testing"

	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/vocabaudio/internal/storage"
)

func TestLoadAndSave(t *testing.T) {
	s := storage.NewMemory()
	require.NoError(t, s.CreateFolder("notes"))
	require.NoError(t, s.WriteBinary("notes/a.md", []byte("one\r\ntwo")))

	b, err := Load(s, "notes/a.md")
	require.NoError(t, err)
	require.Equal(t, 2, b.LineCount())

	b.ReplaceRange("zero\n", Position{}, nil)
	require.NoError(t, Save(s, "notes/a.md", b))

	text, err := s.Read("notes/a.md")
	require.NoError(t, err)
	require.Equal(t, "zero\none\ntwo", text)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(storage.NewMemory(), "nope.md")
	require.ErrorIs(t, err, storage.ErrNotFound)
}
