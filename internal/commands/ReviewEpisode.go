package commands

import (
	"context"
	"fmt"

	"github.com/The127/ioc"
	db "github.com/podhaven/podhaven/internal/database"
	"github.com/podhaven/podhaven/internal/middlewares"
	"github.com/podhaven/podhaven/internal/repositories"
	"github.com/podhaven/podhaven/internal/utils/apiError"
)

type ReviewEpisode struct {
	EpisodeId int64
	Decision  repositories.EpisodeStatus
}

type ReviewEpisodeResponse struct{}

// HandleReviewEpisode applies a moderation decision. Only pending
// episodes can be decided, and the only legal decisions are approved
// and rejected. A decided episode goes back to pending through a
// content replace, never through this command.
func HandleReviewEpisode(ctx context.Context, command ReviewEpisode) (*ReviewEpisodeResponse, error) {
	scope := middlewares.GetScope(ctx)
	dbContext := ioc.GetDependency[db.Context](scope)

	if command.Decision != repositories.EpisodeStatusApproved && command.Decision != repositories.EpisodeStatusRejected {
		return nil, fmt.Errorf("decision must be approved or rejected: %w", apiError.ErrApiBadRequest)
	}

	episode, err := dbContext.Episodes().First(ctx, repositories.NewEpisodeFilter().ById(command.EpisodeId))
	if err != nil {
		return nil, fmt.Errorf("getting episode: %w", err)
	}
	if episode == nil {
		return nil, fmt.Errorf("episode %d: %w", command.EpisodeId, apiError.ErrApiEpisodeNotFound)
	}

	if episode.GetStatus() != repositories.EpisodeStatusPending {
		return nil, fmt.Errorf("episode %d is already %s: %w", command.EpisodeId, episode.GetStatus(), apiError.ErrApiConflict)
	}

	episode.SetStatus(command.Decision)
	dbContext.Episodes().Update(episode)

	err = dbContext.SaveChanges(ctx)
	if err != nil {
		return nil, fmt.Errorf("saving episode: %w", err)
	}

	return &ReviewEpisodeResponse{}, nil
}
