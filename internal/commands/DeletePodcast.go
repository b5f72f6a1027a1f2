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
	"github.com/podhaven/podhaven/internal/utils/apiError"
)

type DeletePodcast struct {
	UserId    uuid.UUID
	PodcastId int64
}

type DeletePodcastResponse struct{}

// HandleDeletePodcast removes a podcast with all its episodes and
// subscriptions. Objects are bulk deleted best effort first, then the
// metadata rows go unconditionally. A failed blob delete never blocks
// the removal, it is logged per key. Deleting a podcast that no longer
// exists succeeds.
func HandleDeletePodcast(ctx context.Context, command DeletePodcast) (*DeletePodcastResponse, error) {
	scope := middlewares.GetScope(ctx)
	dbContext := ioc.GetDependency[db.Context](scope)
	audioStore := ioc.GetDependency[audiostore.Service](scope)

	podcast, err := dbContext.Podcasts().First(ctx, repositories.NewPodcastFilter().ById(command.PodcastId))
	if err != nil {
		return nil, fmt.Errorf("getting podcast: %w", err)
	}
	if podcast == nil {
		return &DeletePodcastResponse{}, nil
	}

	if !podcast.IsOwnedBy(command.UserId) {
		return nil, fmt.Errorf("podcast %d is not owned by %s: %w", command.PodcastId, command.UserId, apiError.ErrApiForbidden)
	}

	episodes, _, err := dbContext.Episodes().List(ctx, repositories.NewEpisodeFilter().ByPodcastId(podcast.GetId()))
	if err != nil {
		return nil, fmt.Errorf("listing episodes: %w", err)
	}

	var keys []string
	for _, episode := range episodes {
		if key := episode.GetAudioKey(); key != "" {
			keys = append(keys, key)
		}
	}

	for _, result := range audioStore.BulkDelete(ctx, keys) {
		if result.Err != nil {
			logging.Logger.Warnf("failed to delete object %q of podcast %d: %v", result.Key, command.PodcastId, result.Err)
		}
	}

	// the row delete cascades to episodes and subscriptions
	dbContext.Podcasts().Delete(podcast)

	err = dbContext.SaveChanges(ctx)
	if err != nil {
		return nil, fmt.Errorf("deleting podcast: %w", err)
	}

	return &DeletePodcastResponse{}, nil
}
