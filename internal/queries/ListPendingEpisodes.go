package queries

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/The127/ioc"
	db "github.com/podhaven/podhaven/internal/database"
	"github.com/podhaven/podhaven/internal/middlewares"
	"github.com/podhaven/podhaven/internal/repositories"
)

type ListPendingEpisodes struct{}

type ListPendingEpisodesResponse PagedResponse[ListPendingEpisodesResponseItem]

type ListPendingEpisodesResponseItem struct {
	Id              int64
	PodcastId       int64
	PodcastTitle    string
	Title           string
	DurationMinutes int
	ReleaseDate     time.Time
}

// HandleListPendingEpisodes is the moderation queue, newest release
// first.
func HandleListPendingEpisodes(ctx context.Context, query ListPendingEpisodes) (*ListPendingEpisodesResponse, error) {
	scope := middlewares.GetScope(ctx)
	dbContext := ioc.GetDependency[db.Context](scope)

	episodes, _, err := dbContext.Episodes().List(ctx, repositories.NewEpisodeFilter().ByStatus(repositories.EpisodeStatusPending))
	if err != nil {
		return nil, fmt.Errorf("listing pending episodes: %w", err)
	}

	sort.Slice(episodes, func(i, j int) bool {
		return episodes[i].GetReleaseDate().After(episodes[j].GetReleaseDate())
	})

	podcasts, _, err := dbContext.Podcasts().List(ctx, repositories.NewPodcastFilter())
	if err != nil {
		return nil, fmt.Errorf("listing podcasts: %w", err)
	}

	titles := make(map[int64]string, len(podcasts))
	for _, podcast := range podcasts {
		titles[podcast.GetId()] = podcast.GetTitle()
	}

	items := make([]ListPendingEpisodesResponseItem, len(episodes))
	for i, episode := range episodes {
		items[i] = ListPendingEpisodesResponseItem{
			Id:              episode.GetId(),
			PodcastId:       episode.GetPodcastId(),
			PodcastTitle:    titles[episode.GetPodcastId()],
			Title:           episode.GetTitle(),
			DurationMinutes: episode.GetDurationMinutes(),
			ReleaseDate:     episode.GetReleaseDate(),
		}
	}

	return &ListPendingEpisodesResponse{
		Items: items,
		Total: len(items),
	}, nil
}
