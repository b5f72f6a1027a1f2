package queries

import (
	"context"
	"fmt"

	"github.com/The127/ioc"
	"github.com/google/uuid"
	db "github.com/podhaven/podhaven/internal/database"
	"github.com/podhaven/podhaven/internal/middlewares"
	"github.com/podhaven/podhaven/internal/repositories"
)

type ListPodcasts struct {
	// OwnerId narrows the listing to one creator's podcasts. Without
	// it the listing is the public catalog, podcasts with at least one
	// approved episode.
	OwnerId *uuid.UUID
}

type ListPodcastsResponse PagedResponse[ListPodcastsResponseItem]

type ListPodcastsResponseItem struct {
	Id          int64
	Title       string
	Description string
}

func HandleListPodcasts(ctx context.Context, query ListPodcasts) (*ListPodcastsResponse, error) {
	scope := middlewares.GetScope(ctx)
	dbContext := ioc.GetDependency[db.Context](scope)

	filter := repositories.NewPodcastFilter()
	if query.OwnerId != nil {
		filter = filter.ByOwnerId(*query.OwnerId)
	}

	podcasts, _, err := dbContext.Podcasts().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing podcasts: %w", err)
	}

	if query.OwnerId == nil {
		podcasts, err = onlyWithApprovedEpisodes(ctx, dbContext, podcasts)
		if err != nil {
			return nil, err
		}
	}

	items := make([]ListPodcastsResponseItem, len(podcasts))
	for i, podcast := range podcasts {
		items[i] = ListPodcastsResponseItem{
			Id:          podcast.GetId(),
			Title:       podcast.GetTitle(),
			Description: podcast.GetDescription(),
		}
	}

	return &ListPodcastsResponse{
		Items: items,
		Total: len(items),
	}, nil
}

func onlyWithApprovedEpisodes(ctx context.Context, dbContext db.Context, podcasts []*repositories.Podcast) ([]*repositories.Podcast, error) {
	approved, _, err := dbContext.Episodes().List(ctx, repositories.NewEpisodeFilter().ByStatus(repositories.EpisodeStatusApproved))
	if err != nil {
		return nil, fmt.Errorf("listing approved episodes: %w", err)
	}

	hasApproved := make(map[int64]bool, len(approved))
	for _, episode := range approved {
		hasApproved[episode.GetPodcastId()] = true
	}

	var result []*repositories.Podcast
	for _, podcast := range podcasts {
		if hasApproved[podcast.GetId()] {
			result = append(result, podcast)
		}
	}

	return result, nil
}
