package database

import (
	"context"

	"github.com/podhaven/podhaven/internal/repositories"
)

const (
	UserType int = iota
	PodcastType
	EpisodeType
	SubscriptionType
)

// Context is the unit of work over the metadata store. Repositories only
// record writes, SaveChanges applies all of them in a single transaction.
type Context interface {
	Users() repositories.UserRepository
	Podcasts() repositories.PodcastRepository
	Episodes() repositories.EpisodeRepository
	Subscriptions() repositories.SubscriptionRepository

	SaveChanges(ctx context.Context) error
}
