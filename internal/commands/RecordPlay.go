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

type RecordPlay struct {
	EpisodeId int64
}

type RecordPlayResponse struct {
	PlayCount int64
}

// HandleRecordPlay bumps the play count of an episode. The increment
// is applied as a relative delta at the store so concurrent plays
// never lose updates.
func HandleRecordPlay(ctx context.Context, command RecordPlay) (*RecordPlayResponse, error) {
	scope := middlewares.GetScope(ctx)
	dbContext := ioc.GetDependency[db.Context](scope)

	episode, err := dbContext.Episodes().First(ctx, repositories.NewEpisodeFilter().ById(command.EpisodeId))
	if err != nil {
		return nil, fmt.Errorf("getting episode: %w", err)
	}
	if episode == nil {
		return nil, fmt.Errorf("episode %d: %w", command.EpisodeId, apiError.ErrApiEpisodeNotFound)
	}

	episode.IncrementPlayCount()
	dbContext.Episodes().Update(episode)

	err = dbContext.SaveChanges(ctx)
	if err != nil {
		return nil, fmt.Errorf("saving episode: %w", err)
	}

	return &RecordPlayResponse{
		PlayCount: episode.GetPlayCount(),
	}, nil
}
