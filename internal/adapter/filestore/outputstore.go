package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"gitlab.com/agfdbk.net/internal/config"
	"gitlab.com/agfdbk.net/internal/core/ports/secondary"
	"gitlab.com/agfdbk.net/internal/static/errs"
)

var _ secondary.OutputStore = (*OutputStore)(nil)

const compressedSuffix = ".zst"

// OutputStore reads captured output from a directory tree. A file stored
// as <name>.zst is decompressed transparently.
type OutputStore struct {
	dir string
}

func NewOutputStore(cfg *config.OutputStoreCfg) *OutputStore {
	return &OutputStore{dir: cfg.Dir}
}

func (s *OutputStore) resolve(filename string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash("/" + filename))
	rel := strings.TrimPrefix(cleaned, string(filepath.Separator))
	if rel == "" || rel == "." {
		return "", fmt.Errorf("%w: empty filename", errs.ErrOutputUnavailable)
	}
	return filepath.Join(s.dir, rel), nil
}

func (s *OutputStore) Open(ctx context.Context, filename string) (io.ReadCloser, error) {
	path, err := s.resolve(filename)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %v", errs.ErrOutputUnavailable, err)
	}

	zf, err := os.Open(path + compressedSuffix)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrOutputUnavailable, err)
	}
	dec, err := zstd.NewReader(zf)
	if err != nil {
		zf.Close()
		return nil, fmt.Errorf("%w: failed to create zstd decoder: %v", errs.ErrOutputUnavailable, err)
	}
	return &zstdFile{dec: dec, file: zf}, nil
}

type zstdFile struct {
	dec  *zstd.Decoder
	file *os.File
}

func (z *zstdFile) Read(p []byte) (int, error) {
	return z.dec.Read(p)
}

func (z *zstdFile) Close() error {
	z.dec.Close()
	return z.file.Close()
}

// Compress writes content as filename.zst under the store's directory
func (s *OutputStore) Compress(filename string, content []byte) error {
	path, err := s.resolve(filename)
	if err != nil {
		return err
	}
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	defer encoder.Close()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	compressed := encoder.EncodeAll(content, make([]byte, 0, len(content)))
	return os.WriteFile(path+compressedSuffix, compressed, 0o644)
}
