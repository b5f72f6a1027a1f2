package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/The127/ioc"
	"github.com/google/uuid"
	db "github.com/podhaven/podhaven/internal/database"
	"github.com/podhaven/podhaven/internal/logging"
	"github.com/podhaven/podhaven/internal/mediapolicy"
	"github.com/podhaven/podhaven/internal/middlewares"
	"github.com/podhaven/podhaven/internal/repositories"
	"github.com/podhaven/podhaven/internal/services/audiostore"
	"github.com/podhaven/podhaven/internal/services/staging"
	"github.com/podhaven/podhaven/internal/utils"
	"github.com/podhaven/podhaven/internal/utils/apiError"
)

type ReplaceEpisodeAudio struct {
	UserId    uuid.UUID
	EpisodeId int64

	FileName    string
	ContentType string
	Size        int64
	Content     io.Reader
}

type ReplaceEpisodeAudioResponse struct {
	DurationMinutes int
}

// HandleReplaceEpisodeAudio swaps the audio of an existing episode.
// The new object is uploaded first so a failed upload leaves the old
// asset serving. The old object is then deleted best effort, and the
// key, duration and a reset to pending moderation are committed in one
// metadata write. A commit failure orphans the new object, which is
// logged with its key so operators can reconcile.
func HandleReplaceEpisodeAudio(ctx context.Context, command ReplaceEpisodeAudio) (*ReplaceEpisodeAudioResponse, error) {
	scope := middlewares.GetScope(ctx)
	dbContext := ioc.GetDependency[db.Context](scope)
	audioStore := ioc.GetDependency[audiostore.Service](scope)

	err := mediapolicy.ValidateAudioUpload(command.FileName, command.ContentType, command.Size)
	if err != nil {
		return nil, err
	}

	episode, err := dbContext.Episodes().First(ctx, repositories.NewEpisodeFilter().ById(command.EpisodeId))
	if err != nil {
		return nil, fmt.Errorf("getting episode: %w", err)
	}
	if episode == nil {
		return nil, fmt.Errorf("episode %d: %w", command.EpisodeId, apiError.ErrApiEpisodeNotFound)
	}

	podcast, err := getOwnedPodcast(ctx, dbContext, episode.GetPodcastId(), command.UserId)
	if err != nil {
		return nil, err
	}

	staged, err := staging.Stage(command.Content)
	if err != nil {
		return nil, err
	}
	defer utils.LogOnError(staged.Release, "releasing staged upload")

	duration := probeStaged(staged)

	newKey := audiostore.NewKey(podcast.GetId(), command.FileName)

	reader, err := staged.Reader()
	if err != nil {
		return nil, err
	}

	err = audioStore.Upload(ctx, newKey, reader, staged.Size())
	if err != nil {
		return nil, fmt.Errorf("uploading %q: %w", newKey, apiError.ErrUpload)
	}

	oldKey := episode.GetAudioKey()
	if oldKey != "" {
		err = audioStore.Delete(ctx, oldKey)
		if err != nil {
			logging.Logger.Warnf("failed to delete replaced object %q: %v", oldKey, err)
		}
	}

	// new content invalidates any prior moderation decision
	episode.SetAudioKey(newKey)
	episode.SetDurationMinutes(duration)
	episode.SetStatus(repositories.EpisodeStatusPending)
	dbContext.Episodes().Update(episode)

	err = dbContext.SaveChanges(ctx)
	if err != nil {
		logging.Logger.Errorf("episode metadata commit failed after replace, object %q is orphaned: %v", newKey, err)
		return nil, fmt.Errorf("committing episode metadata: %w", apiError.ErrMetadata)
	}

	return &ReplaceEpisodeAudioResponse{
		DurationMinutes: duration,
	}, nil
}
