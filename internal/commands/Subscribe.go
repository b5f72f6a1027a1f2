package commands

import (
	"context"
	"fmt"

	"github.com/The127/ioc"
	"github.com/google/uuid"
	db "github.com/podhaven/podhaven/internal/database"
	"github.com/podhaven/podhaven/internal/middlewares"
	"github.com/podhaven/podhaven/internal/repositories"
	"github.com/podhaven/podhaven/internal/utils/apiError"
)

type Subscribe struct {
	UserId    uuid.UUID
	PodcastId int64
}

type SubscribeResponse struct{}

// HandleSubscribe creates a subscription. Existence is checked first
// and a concurrent duplicate insert is caught again by the store's
// unique constraint, both report a conflict.
func HandleSubscribe(ctx context.Context, command Subscribe) (*SubscribeResponse, error) {
	scope := middlewares.GetScope(ctx)
	dbContext := ioc.GetDependency[db.Context](scope)

	podcast, err := dbContext.Podcasts().First(ctx, repositories.NewPodcastFilter().ById(command.PodcastId))
	if err != nil {
		return nil, fmt.Errorf("getting podcast: %w", err)
	}
	if podcast == nil {
		return nil, fmt.Errorf("podcast %d: %w", command.PodcastId, apiError.ErrApiPodcastNotFound)
	}

	filter := repositories.NewSubscriptionFilter().
		ByUserId(command.UserId).
		ByPodcastId(command.PodcastId)
	existing, err := dbContext.Subscriptions().First(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("getting subscription: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("user %s is already subscribed to podcast %d: %w", command.UserId, command.PodcastId, apiError.ErrApiConflict)
	}

	subscription := repositories.NewSubscription(command.UserId, command.PodcastId)
	dbContext.Subscriptions().Insert(subscription)

	err = dbContext.SaveChanges(ctx)
	if err != nil {
		return nil, fmt.Errorf("saving subscription: %w", err)
	}

	return &SubscribeResponse{}, nil
}
