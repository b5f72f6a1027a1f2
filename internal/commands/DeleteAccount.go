package commands

import (
	"context"
	"fmt"

	"github.com/The127/ioc"
	"github.com/google/uuid"
	db "github.com/podhaven/podhaven/internal/database"
	"github.com/podhaven/podhaven/internal/logging"
	"github.com/podhaven/podhaven/internal/middlewares"
	"github.com/podhaven/podhaven/internal/repositories"
	"github.com/podhaven/podhaven/internal/services/audiostore"
)

type DeleteAccount struct {
	UserId uuid.UUID
}

type DeleteAccountResponse struct{}

// HandleDeleteAccount removes a user together with every podcast they
// own. The owned podcasts' episode objects are bulk deleted best
// effort first, then all metadata rows go unconditionally in one
// commit, the podcast deletes cascading to episodes and subscriptions.
// A failed blob delete never blocks the removal, it is logged per key.
// Deleting an account that no longer exists succeeds.
func HandleDeleteAccount(ctx context.Context, command DeleteAccount) (*DeleteAccountResponse, error) {
	scope := middlewares.GetScope(ctx)
	dbContext := ioc.GetDependency[db.Context](scope)
	audioStore := ioc.GetDependency[audiostore.Service](scope)

	user, err := dbContext.Users().First(ctx, repositories.NewUserFilter().ById(command.UserId))
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	if user == nil {
		return &DeleteAccountResponse{}, nil
	}

	podcasts, _, err := dbContext.Podcasts().List(ctx, repositories.NewPodcastFilter().ByOwnerId(command.UserId))
	if err != nil {
		return nil, fmt.Errorf("listing owned podcasts: %w", err)
	}

	var keys []string
	for _, podcast := range podcasts {
		episodes, _, err := dbContext.Episodes().List(ctx, repositories.NewEpisodeFilter().ByPodcastId(podcast.GetId()))
		if err != nil {
			return nil, fmt.Errorf("listing episodes of podcast %d: %w", podcast.GetId(), err)
		}

		for _, episode := range episodes {
			if key := episode.GetAudioKey(); key != "" {
				keys = append(keys, key)
			}
		}
	}

	for _, result := range audioStore.BulkDelete(ctx, keys) {
		if result.Err != nil {
			logging.Logger.Warnf("failed to delete object %q of account %s: %v", result.Key, command.UserId, result.Err)
		}
	}

	for _, podcast := range podcasts {
		dbContext.Podcasts().Delete(podcast)
	}
	dbContext.Users().Delete(user)

	err = dbContext.SaveChanges(ctx)
	if err != nil {
		return nil, fmt.Errorf("deleting user: %w", err)
	}

	return &DeleteAccountResponse{}, nil
}
