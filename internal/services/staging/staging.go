package staging

import (
	"fmt"
	"io"
	"os"

	"github.com/podhaven/podhaven/internal/utils/apiError"
)

// TempFile is an uploaded payload spooled to local disk so that it can
// be read more than once (probing, then upload). Release removes the
// file and is safe to call multiple times.
type TempFile struct {
	file     *os.File
	size     int64
	released bool
}

// Stage copies the reader into a fresh temp file.
func Stage(reader io.Reader) (*TempFile, error) {
	file, err := os.CreateTemp("", "podhaven-upload-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", apiError.ErrStaging)
	}

	size, err := io.Copy(file, reader)
	if err != nil {
		_ = file.Close()
		_ = os.Remove(file.Name())
		return nil, fmt.Errorf("writing temp file: %w", apiError.ErrStaging)
	}

	return &TempFile{
		file: file,
		size: size,
	}, nil
}

func (t *TempFile) Size() int64 {
	return t.size
}

// Reader rewinds the staged file and returns it for another full read.
func (t *TempFile) Reader() (io.Reader, error) {
	_, err := t.file.Seek(0, io.SeekStart)
	if err != nil {
		return nil, fmt.Errorf("rewinding temp file: %w", apiError.ErrStaging)
	}

	return t.file, nil
}

func (t *TempFile) Release() error {
	if t.released {
		return nil
	}
	t.released = true

	name := t.file.Name()
	closeErr := t.file.Close()

	err := os.Remove(name)
	if err != nil {
		return fmt.Errorf("removing temp file %q: %w", name, err)
	}

	if closeErr != nil {
		return fmt.Errorf("closing temp file %q: %w", name, closeErr)
	}

	return nil
}
