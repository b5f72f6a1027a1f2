package audiostore

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PresignExpiry is how long playback links stay valid.
const PresignExpiry = 3 * time.Minute

// MaxDeleteBatch is the largest number of keys a single bulk delete
// request may carry.
const MaxDeleteBatch = 1000

// KeyResult reports the outcome of one key in a bulk delete. Bulk
// deletes are best effort, a failed key never aborts the batch.
type KeyResult struct {
	Key string
	Err error
}

type Service interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete is idempotent, removing an absent key is not an error.
	Delete(ctx context.Context, key string) error
	BulkDelete(ctx context.Context, keys []string) []KeyResult
	PlayUrl(ctx context.Context, key string) (string, time.Duration, error)
}

// NewKey builds the object key for an uploaded episode audio file. The
// file name is reduced to a safe base name so that user input can never
// traverse out of the podcast prefix.
func NewKey(podcastId int64, fileName string) string {
	return fmt.Sprintf("%d/%s_%s", podcastId, uuid.New(), sanitizeFileName(fileName))
}

func sanitizeFileName(fileName string) string {
	// strip any directory part, both separator styles
	if i := strings.LastIndexAny(fileName, "/\\"); i >= 0 {
		fileName = fileName[i+1:]
	}

	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, fileName)

	if sanitized == "" || strings.Trim(sanitized, "._") == "" {
		return "audio"
	}

	return sanitized
}
