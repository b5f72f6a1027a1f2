package audiostore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/podhaven/podhaven/internal/utils/apiError"
)

type memoryService struct {
	blobs map[string][]byte
	mu    *sync.RWMutex
}

func NewInMemoryService() Service {
	return &memoryService{
		blobs: make(map[string][]byte),
		mu:    &sync.RWMutex{},
	}
}

func (m *memoryService) Upload(_ context.Context, key string, reader io.Reader, _ int64) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("reading upload: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.blobs[key] = data
	return nil
}

func (m *memoryService) Download(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[key]
	if !ok {
		return nil, fmt.Errorf("object %q: %w", key, apiError.ErrApiAudioNotFound)
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memoryService) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.blobs, key)
	return nil
}

func (m *memoryService) BulkDelete(ctx context.Context, keys []string) []KeyResult {
	results := make([]KeyResult, len(keys))
	for i, key := range keys {
		results[i] = KeyResult{
			Key: key,
			Err: m.Delete(ctx, key),
		}
	}

	return results
}

func (m *memoryService) PlayUrl(_ context.Context, key string) (string, time.Duration, error) {
	return "/media/api/v1/" + url.PathEscape(key), PresignExpiry, nil
}
