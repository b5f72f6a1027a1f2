package apiError

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/podhaven/podhaven/internal/args"
	"github.com/podhaven/podhaven/internal/logging"
)

var ErrApiBadRequest = errors.New("bad request")
var ErrApiUnsupportedMediaType = errors.New("unsupported media type")

// ErrValidation covers rejected uploads (bad format or size). No side
// effects have occurred when it is returned.
var ErrValidation = fmt.Errorf("validation failed: %w", ErrApiBadRequest)

// ErrStaging means the local temp copy of an upload could not be written.
// No external store has been touched.
var ErrStaging = errors.New("staging failed")

// ErrUpload means the object store rejected or failed the blob write.
var ErrUpload = errors.New("object store upload failed")

// ErrMetadata means the metadata commit failed after external side effects
// may already have happened. Callers log it with the keys involved so
// operators can reconcile orphaned objects.
var ErrMetadata = errors.New("metadata store failure")

var ErrApiNotFound = errors.New("not found")
var ErrApiPodcastNotFound = fmt.Errorf("podcast not found: %w", ErrApiNotFound)
var ErrApiEpisodeNotFound = fmt.Errorf("episode not found: %w", ErrApiNotFound)
var ErrApiUserNotFound = fmt.Errorf("user not found: %w", ErrApiNotFound)
var ErrApiSubscriptionNotFound = fmt.Errorf("subscription not found: %w", ErrApiNotFound)
var ErrApiCommentNotFound = fmt.Errorf("comment not found: %w", ErrApiNotFound)
var ErrApiAudioNotFound = fmt.Errorf("audio not found: %w", ErrApiNotFound)

var ErrApiConflict = errors.New("conflict")
var ErrApiConcurrentUpdate = fmt.Errorf("concurrent update: %w", ErrApiConflict)

var ErrApiUnauthorized = errors.New("unauthorized")
var ErrApiForbidden = errors.New("forbidden")

func HandleHttpError(w http.ResponseWriter, err error) {
	var code int
	var message string

	switch {
	case errors.Is(err, ErrApiBadRequest):
		code = http.StatusBadRequest
		message = err.Error()

	case errors.Is(err, ErrApiNotFound):
		code = http.StatusNotFound
		message = err.Error()

	case errors.Is(err, ErrApiUnsupportedMediaType):
		code = http.StatusUnsupportedMediaType
		message = err.Error()

	case errors.Is(err, ErrApiUnauthorized):
		code = http.StatusUnauthorized
		message = err.Error()

	case errors.Is(err, ErrApiForbidden):
		code = http.StatusForbidden
		message = err.Error()

	case errors.Is(err, ErrApiConflict):
		code = http.StatusConflict
		message = err.Error()

	case errors.Is(err, ErrUpload):
		code = http.StatusBadGateway
		message = err.Error()

	default:
		code = http.StatusInternalServerError
		if args.IsProduction() {
			message = "Internal Server Error"
		} else {
			message = err.Error()
		}
	}

	logging.Logger.Errorf("HTTP Error: %d %s", code, message)
	http.Error(w, message, code)
}
