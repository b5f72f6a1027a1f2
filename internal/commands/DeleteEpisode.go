package commands

import (
	"context"
	"fmt"

	"github.com/The127/ioc"
	"github.com/google/uuid"
	db "github.com/podhaven/podhaven/internal/database"
	"github.com/podhaven/podhaven/internal/logging"
	"github.com/podhaven/podhaven/internal/middlewares"
	"github.com/podhaven/podhaven/internal/repositories"
	"github.com/podhaven/podhaven/internal/services/audiostore"
)

type DeleteEpisode struct {
	UserId    uuid.UUID
	EpisodeId int64
}

type DeleteEpisodeResponse struct{}

// HandleDeleteEpisode removes a single episode. The object delete is
// best effort, the row delete is authoritative and proceeds either
// way. Comments stay behind in the comment store, which is logged.
// Deleting an episode that no longer exists succeeds.
func HandleDeleteEpisode(ctx context.Context, command DeleteEpisode) (*DeleteEpisodeResponse, error) {
	scope := middlewares.GetScope(ctx)
	dbContext := ioc.GetDependency[db.Context](scope)
	audioStore := ioc.GetDependency[audiostore.Service](scope)

	episode, err := dbContext.Episodes().First(ctx, repositories.NewEpisodeFilter().ById(command.EpisodeId))
	if err != nil {
		return nil, fmt.Errorf("getting episode: %w", err)
	}
	if episode == nil {
		return &DeleteEpisodeResponse{}, nil
	}

	_, err = getOwnedPodcast(ctx, dbContext, episode.GetPodcastId(), command.UserId)
	if err != nil {
		return nil, err
	}

	if key := episode.GetAudioKey(); key != "" {
		err = audioStore.Delete(ctx, key)
		if err != nil {
			logging.Logger.Warnf("failed to delete object %q of episode %d: %v", key, command.EpisodeId, err)
		}
	}

	dbContext.Episodes().Delete(episode)

	err = dbContext.SaveChanges(ctx)
	if err != nil {
		return nil, fmt.Errorf("deleting episode: %w", err)
	}

	logging.Logger.Infof("episode %d deleted, its comments remain in the comment store", command.EpisodeId)

	return &DeleteEpisodeResponse{}, nil
}
