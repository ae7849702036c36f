package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"gitlab.com/agfdbk.net/internal/core/ports/secondary"
	"gitlab.com/agfdbk.net/internal/static/errs"
)

var _ secondary.OutputStore = (*OutputStore)(nil)

// OutputStore serves captured output from memory
type OutputStore struct {
	mu    sync.RWMutex
	files map[string][]byte
}

func NewOutputStore() *OutputStore {
	return &OutputStore{files: make(map[string][]byte)}
}

func (s *OutputStore) Put(filename string, content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[filename] = content
}

func (s *OutputStore) Open(ctx context.Context, filename string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.files[filename]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrOutputUnavailable, filename)
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}
