package audiostore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/podhaven/podhaven/internal/config"
	"github.com/podhaven/podhaven/internal/utils"
	"github.com/podhaven/podhaven/internal/utils/apiError"
)

type directoryService struct {
	path string
}

func NewDirectoryService(c config.AudioStoreDirectoryConfig) Service {
	return &directoryService{
		path: c.Path,
	}
}

func (d *directoryService) filePath(key string) string {
	return filepath.Join(d.path, filepath.FromSlash(key))
}

func (d *directoryService) Upload(_ context.Context, key string, reader io.Reader, _ int64) error {
	path := d.filePath(key)

	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		return fmt.Errorf("creating directory for %q: %w", key, err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file for %q: %w", key, err)
	}
	defer utils.LogOnError(file.Close, "closing audio file")

	_, err = io.Copy(file, reader)
	if err != nil {
		return fmt.Errorf("writing file for %q: %w", key, err)
	}

	return nil
}

func (d *directoryService) Download(_ context.Context, key string) (io.ReadCloser, error) {
	file, err := os.Open(d.filePath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("object %q: %w", key, apiError.ErrApiAudioNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("opening file for %q: %w", key, err)
	}

	return file, nil
}

func (d *directoryService) Delete(_ context.Context, key string) error {
	err := os.Remove(d.filePath(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing file for %q: %w", key, err)
	}

	return nil
}

func (d *directoryService) BulkDelete(ctx context.Context, keys []string) []KeyResult {
	results := make([]KeyResult, len(keys))
	for i, key := range keys {
		results[i] = KeyResult{
			Key: key,
			Err: d.Delete(ctx, key),
		}
	}

	return results
}

func (d *directoryService) PlayUrl(_ context.Context, key string) (string, time.Duration, error) {
	return "/media/api/v1/" + url.PathEscape(key), PresignExpiry, nil
}
