package queries

import (
	"context"
	"fmt"

	"github.com/The127/ioc"
	db "github.com/podhaven/podhaven/internal/database"
	"github.com/podhaven/podhaven/internal/middlewares"
	"github.com/podhaven/podhaven/internal/repositories"
)

type GetDashboard struct{}

type GetDashboardResponse struct {
	Podcasts        int
	Episodes        int
	PendingEpisodes int
	Users           int
	Subscriptions   int
}

func HandleGetDashboard(ctx context.Context, query GetDashboard) (*GetDashboardResponse, error) {
	scope := middlewares.GetScope(ctx)
	dbContext := ioc.GetDependency[db.Context](scope)

	_, podcasts, err := dbContext.Podcasts().List(ctx, repositories.NewPodcastFilter())
	if err != nil {
		return nil, fmt.Errorf("counting podcasts: %w", err)
	}

	_, episodes, err := dbContext.Episodes().List(ctx, repositories.NewEpisodeFilter())
	if err != nil {
		return nil, fmt.Errorf("counting episodes: %w", err)
	}

	_, pending, err := dbContext.Episodes().List(ctx, repositories.NewEpisodeFilter().ByStatus(repositories.EpisodeStatusPending))
	if err != nil {
		return nil, fmt.Errorf("counting pending episodes: %w", err)
	}

	_, users, err := dbContext.Users().List(ctx, repositories.NewUserFilter())
	if err != nil {
		return nil, fmt.Errorf("counting users: %w", err)
	}

	_, subscriptions, err := dbContext.Subscriptions().List(ctx, repositories.NewSubscriptionFilter())
	if err != nil {
		return nil, fmt.Errorf("counting subscriptions: %w", err)
	}

	return &GetDashboardResponse{
		Podcasts:        podcasts,
		Episodes:        episodes,
		PendingEpisodes: pending,
		Users:           users,
		Subscriptions:   subscriptions,
	}, nil
}
