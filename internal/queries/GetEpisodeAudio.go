package queries

import (
	"context"
	"fmt"
	"io"

	"github.com/The127/ioc"
	"github.com/google/uuid"
	db "github.com/podhaven/podhaven/internal/database"
	"github.com/podhaven/podhaven/internal/middlewares"
	"github.com/podhaven/podhaven/internal/repositories"
	"github.com/podhaven/podhaven/internal/services/audiostore"
	"github.com/podhaven/podhaven/internal/utils/apiError"
)

type GetEpisodeAudio struct {
	UserId    uuid.UUID
	EpisodeId int64
}

type GetEpisodeAudioResponse struct {
	Key string
	// Content must be closed by the caller.
	Content io.ReadCloser
}

// HandleGetEpisodeAudio streams the raw audio object to the podcast
// owner, regardless of moderation status.
func HandleGetEpisodeAudio(ctx context.Context, query GetEpisodeAudio) (*GetEpisodeAudioResponse, error) {
	scope := middlewares.GetScope(ctx)
	dbContext := ioc.GetDependency[db.Context](scope)
	audioStore := ioc.GetDependency[audiostore.Service](scope)

	episode, err := dbContext.Episodes().First(ctx, repositories.NewEpisodeFilter().ById(query.EpisodeId))
	if err != nil {
		return nil, fmt.Errorf("getting episode: %w", err)
	}
	if episode == nil {
		return nil, fmt.Errorf("episode %d: %w", query.EpisodeId, apiError.ErrApiEpisodeNotFound)
	}

	podcast, err := dbContext.Podcasts().First(ctx, repositories.NewPodcastFilter().ById(episode.GetPodcastId()))
	if err != nil {
		return nil, fmt.Errorf("getting podcast: %w", err)
	}
	if podcast == nil || !podcast.IsOwnedBy(query.UserId) {
		return nil, fmt.Errorf("episode %d is not owned by %s: %w", query.EpisodeId, query.UserId, apiError.ErrApiForbidden)
	}

	if episode.GetAudioKey() == "" {
		return nil, fmt.Errorf("episode %d has no audio: %w", query.EpisodeId, apiError.ErrApiAudioNotFound)
	}

	content, err := audioStore.Download(ctx, episode.GetAudioKey())
	if err != nil {
		return nil, fmt.Errorf("downloading %q: %w", episode.GetAudioKey(), err)
	}

	return &GetEpisodeAudioResponse{
		Key:     episode.GetAudioKey(),
		Content: content,
	}, nil
}
