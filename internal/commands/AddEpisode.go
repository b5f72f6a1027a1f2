package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/The127/ioc"
	"github.com/google/uuid"
	db "github.com/podhaven/podhaven/internal/database"
	"github.com/podhaven/podhaven/internal/logging"
	"github.com/podhaven/podhaven/internal/mediapolicy"
	"github.com/podhaven/podhaven/internal/middlewares"
	"github.com/podhaven/podhaven/internal/repositories"
	"github.com/podhaven/podhaven/internal/services/audioprobe"
	"github.com/podhaven/podhaven/internal/services/audiostore"
	"github.com/podhaven/podhaven/internal/services/clock"
	"github.com/podhaven/podhaven/internal/services/staging"
	"github.com/podhaven/podhaven/internal/utils"
	"github.com/podhaven/podhaven/internal/utils/apiError"
)

type AddEpisode struct {
	UserId    uuid.UUID
	PodcastId int64
	Title     string

	ReleaseDate *time.Time

	FileName    string
	ContentType string
	Size        int64
	Content     io.Reader
}

type AddEpisodeResponse struct {
	Id              int64
	DurationMinutes int
}

// HandleAddEpisode ingests a new episode: validate, stage, probe,
// upload, then commit the metadata row. The staged file is released on
// every exit path. An upload failure leaves the metadata untouched, a
// metadata failure after the upload orphans the blob and compensates
// by deleting it again.
func HandleAddEpisode(ctx context.Context, command AddEpisode) (*AddEpisodeResponse, error) {
	scope := middlewares.GetScope(ctx)
	dbContext := ioc.GetDependency[db.Context](scope)
	audioStore := ioc.GetDependency[audiostore.Service](scope)
	clockService := ioc.GetDependency[clock.Service](scope)

	err := mediapolicy.ValidateAudioUpload(command.FileName, command.ContentType, command.Size)
	if err != nil {
		return nil, err
	}

	podcast, err := getOwnedPodcast(ctx, dbContext, command.PodcastId, command.UserId)
	if err != nil {
		return nil, err
	}

	staged, err := staging.Stage(command.Content)
	if err != nil {
		return nil, err
	}
	defer utils.LogOnError(staged.Release, "releasing staged upload")

	duration := probeStaged(staged)

	key := audiostore.NewKey(podcast.GetId(), command.FileName)

	reader, err := staged.Reader()
	if err != nil {
		return nil, err
	}

	err = audioStore.Upload(ctx, key, reader, staged.Size())
	if err != nil {
		return nil, fmt.Errorf("uploading %q: %w", key, apiError.ErrUpload)
	}

	releaseDate := clockService.Now()
	if command.ReleaseDate != nil {
		releaseDate = *command.ReleaseDate
	}

	episode := repositories.NewEpisode(podcast.GetId(), command.Title, key, duration, releaseDate)
	dbContext.Episodes().Insert(episode)

	err = dbContext.SaveChanges(ctx)
	if err != nil {
		logging.Logger.Errorf("episode metadata commit failed after upload, compensating by deleting %q: %v", key, err)
		compensationErr := audioStore.Delete(ctx, key)
		if compensationErr != nil {
			logging.Logger.Errorf("compensation failed, object %q is orphaned: %v", key, compensationErr)
		}
		return nil, fmt.Errorf("committing episode metadata: %w", apiError.ErrMetadata)
	}

	return &AddEpisodeResponse{
		Id:              episode.GetId(),
		DurationMinutes: duration,
	}, nil
}

// probeStaged extracts the duration from the staged file, best effort.
func probeStaged(staged *staging.TempFile) int {
	reader, err := staged.Reader()
	if err != nil {
		logging.Logger.Debugf("cannot rewind staged file for probing: %v", err)
		return 0
	}

	return audioprobe.DurationMinutes(reader)
}
