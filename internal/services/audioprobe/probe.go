package audioprobe

import (
	"io"
	"math"
	"time"

	"github.com/podhaven/podhaven/internal/logging"
	"github.com/tcolgate/mp3"
)

// DurationMinutes decodes the mpeg frames of the reader and sums their
// durations. Probing is best effort, a stream that cannot be decoded
// reports a duration of zero instead of failing the upload.
func DurationMinutes(reader io.Reader) int {
	decoder := mp3.NewDecoder(reader)

	var total time.Duration
	var frame mp3.Frame
	var skipped int

	for {
		err := decoder.Decode(&frame, &skipped)
		if err == io.EOF {
			break
		}
		if err != nil {
			logging.Logger.Debugf("audio probe stopped: %v", err)
			return 0
		}

		total += frame.Duration()
	}

	return int(math.Round(total.Minutes()))
}
