package filestore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/agfdbk.net/internal/config"
	"gitlab.com/agfdbk.net/internal/static/errs"
)

func readAll(t *testing.T, s *OutputStore, name string) []byte {
	t.Helper()
	rc, err := s.Open(context.Background(), name)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return data
}

func TestOpenPlainFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub1"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub1", "stdout"), []byte("hello\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty"), nil, 0o644))

	s := NewOutputStore(&config.OutputStoreCfg{Dir: dir})
	assert.Equal(t, []byte("hello\n"), readAll(t, s, "sub1/stdout"))
	assert.Empty(t, readAll(t, s, "empty"))
}

func TestOpenCompressedFile(t *testing.T) {
	s := NewOutputStore(&config.OutputStoreCfg{Dir: t.TempDir()})
	require.NoError(t, s.Compress("sub2/stderr", []byte("\xffbinary\x00")))

	assert.Equal(t, []byte("\xffbinary\x00"), readAll(t, s, "sub2/stderr"))
}

func TestOpenMissing(t *testing.T) {
	s := NewOutputStore(&config.OutputStoreCfg{Dir: t.TempDir()})

	_, err := s.Open(context.Background(), "nope")
	assert.ErrorIs(t, err, errs.ErrOutputUnavailable)

	_, err = s.Open(context.Background(), "")
	assert.ErrorIs(t, err, errs.ErrOutputUnavailable)
}

func TestOpenStaysInsideDir(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "media")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "secret"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "secret"), []byte("inside"), 0o644))

	s := NewOutputStore(&config.OutputStoreCfg{Dir: dir})
	assert.Equal(t, []byte("inside"), readAll(t, s, "../secret"))
}
