package mediapolicy

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/podhaven/podhaven/internal/utils/apiError"
)

const MaxUploadBytes = 150 << 20

// ValidateAudioUpload enforces the platform media policy: mp3 only,
// at most 150 MiB. A file passes the format check when either the
// declared content type or the file extension says mp3, so that
// clients with sloppy mime handling still work.
func ValidateAudioUpload(fileName string, contentType string, size int64) error {
	if size <= 0 {
		return fmt.Errorf("audio file is empty: %w", apiError.ErrValidation)
	}

	if size > MaxUploadBytes {
		return fmt.Errorf("audio file exceeds %d bytes: %w", int64(MaxUploadBytes), apiError.ErrValidation)
	}

	if !isMp3(fileName, contentType) {
		return fmt.Errorf("only mp3 audio is supported: %w", apiError.ErrValidation)
	}

	return nil
}

func isMp3(fileName string, contentType string) bool {
	mediaType := contentType
	if idx := strings.IndexByte(mediaType, ';'); idx >= 0 {
		mediaType = mediaType[:idx]
	}
	mediaType = strings.TrimSpace(mediaType)

	if strings.EqualFold(mediaType, "audio/mpeg") {
		return true
	}

	return strings.EqualFold(filepath.Ext(fileName), ".mp3")
}
