package commands

import (
	"context"
	"fmt"

	"github.com/The127/ioc"
	"github.com/google/uuid"
	db "github.com/podhaven/podhaven/internal/database"
	"github.com/podhaven/podhaven/internal/middlewares"
	"github.com/podhaven/podhaven/internal/repositories"
)

type Unsubscribe struct {
	UserId    uuid.UUID
	PodcastId int64
}

type UnsubscribeResponse struct{}

// HandleUnsubscribe removes a subscription. Unsubscribing without
// being subscribed succeeds, so duplicate submissions are harmless.
func HandleUnsubscribe(ctx context.Context, command Unsubscribe) (*UnsubscribeResponse, error) {
	scope := middlewares.GetScope(ctx)
	dbContext := ioc.GetDependency[db.Context](scope)

	filter := repositories.NewSubscriptionFilter().
		ByUserId(command.UserId).
		ByPodcastId(command.PodcastId)
	subscription, err := dbContext.Subscriptions().First(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("getting subscription: %w", err)
	}
	if subscription == nil {
		return &UnsubscribeResponse{}, nil
	}

	dbContext.Subscriptions().Delete(subscription)

	err = dbContext.SaveChanges(ctx)
	if err != nil {
		return nil, fmt.Errorf("deleting subscription: %w", err)
	}

	return &UnsubscribeResponse{}, nil
}
