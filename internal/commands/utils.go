package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/podhaven/podhaven/internal/database"
	"github.com/podhaven/podhaven/internal/repositories"
	"github.com/podhaven/podhaven/internal/utils/apiError"
)

// getOwnedPodcast loads a podcast and verifies the caller owns it.
// Ownership is always checked before any mutation is attempted.
func getOwnedPodcast(ctx context.Context, dbContext database.Context, podcastId int64, userId uuid.UUID) (*repositories.Podcast, error) {
	podcast, err := dbContext.Podcasts().First(ctx, repositories.NewPodcastFilter().ById(podcastId))
	if err != nil {
		return nil, fmt.Errorf("getting podcast: %w", err)
	}
	if podcast == nil {
		return nil, fmt.Errorf("podcast %d: %w", podcastId, apiError.ErrApiPodcastNotFound)
	}

	if !podcast.IsOwnedBy(userId) {
		return nil, fmt.Errorf("podcast %d is not owned by %s: %w", podcastId, userId, apiError.ErrApiForbidden)
	}

	return podcast, nil
}
