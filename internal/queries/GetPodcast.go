package queries

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/The127/ioc"
	"github.com/google/uuid"
	db "github.com/podhaven/podhaven/internal/database"
	"github.com/podhaven/podhaven/internal/middlewares"
	"github.com/podhaven/podhaven/internal/repositories"
	"github.com/podhaven/podhaven/internal/utils/apiError"
)

type GetPodcast struct {
	PodcastId int64

	// CallerId is uuid.Nil for anonymous callers. The owner sees all
	// episodes, everyone else only the approved ones.
	CallerId uuid.UUID
}

type GetPodcastResponse struct {
	Id          int64
	Title       string
	Description string
	OwnerId     *uuid.UUID
	CreatedAt   time.Time
	Episodes    []GetPodcastResponseEpisode
}

type GetPodcastResponseEpisode struct {
	Id              int64
	Title           string
	DurationMinutes int
	Status          string
	ReleaseDate     time.Time
	PlayCount       int64
}

func HandleGetPodcast(ctx context.Context, query GetPodcast) (*GetPodcastResponse, error) {
	scope := middlewares.GetScope(ctx)
	dbContext := ioc.GetDependency[db.Context](scope)

	podcast, err := dbContext.Podcasts().First(ctx, repositories.NewPodcastFilter().ById(query.PodcastId))
	if err != nil {
		return nil, fmt.Errorf("getting podcast: %w", err)
	}
	if podcast == nil {
		return nil, fmt.Errorf("podcast %d: %w", query.PodcastId, apiError.ErrApiPodcastNotFound)
	}

	episodeFilter := repositories.NewEpisodeFilter().ByPodcastId(podcast.GetId())
	if query.CallerId == uuid.Nil || !podcast.IsOwnedBy(query.CallerId) {
		episodeFilter = episodeFilter.ByStatus(repositories.EpisodeStatusApproved)
	}

	episodes, _, err := dbContext.Episodes().List(ctx, episodeFilter)
	if err != nil {
		return nil, fmt.Errorf("listing episodes: %w", err)
	}

	sort.Slice(episodes, func(i, j int) bool {
		return episodes[i].GetReleaseDate().After(episodes[j].GetReleaseDate())
	})

	items := make([]GetPodcastResponseEpisode, len(episodes))
	for i, episode := range episodes {
		items[i] = GetPodcastResponseEpisode{
			Id:              episode.GetId(),
			Title:           episode.GetTitle(),
			DurationMinutes: episode.GetDurationMinutes(),
			Status:          episode.GetStatus().String(),
			ReleaseDate:     episode.GetReleaseDate(),
			PlayCount:       episode.GetPlayCount(),
		}
	}

	return &GetPodcastResponse{
		Id:          podcast.GetId(),
		Title:       podcast.GetTitle(),
		Description: podcast.GetDescription(),
		OwnerId:     podcast.GetOwnerId(),
		CreatedAt:   podcast.GetCreatedAt(),
		Episodes:    items,
	}, nil
}
