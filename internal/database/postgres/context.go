package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/podhaven/podhaven/internal/change"
	db "github.com/podhaven/podhaven/internal/database"
	"github.com/podhaven/podhaven/internal/repositories"
	"github.com/podhaven/podhaven/internal/repositories/postgres"
	"github.com/podhaven/podhaven/internal/utils"
)

type Context struct {
	db            *sql.DB
	changeTracker *change.Tracker

	users         *postgres.UserRepository
	podcasts      *postgres.PodcastRepository
	episodes      *postgres.EpisodeRepository
	subscriptions *postgres.SubscriptionRepository
}

func newContext(db *sql.DB) *Context {
	return &Context{
		db:            db,
		changeTracker: change.NewTracker(),
	}
}

func (c *Context) Users() repositories.UserRepository {
	if c.users == nil {
		c.users = postgres.NewPostgresUserRepository(c.db, c.changeTracker, db.UserType)
	}

	return c.users
}

func (c *Context) Podcasts() repositories.PodcastRepository {
	if c.podcasts == nil {
		c.podcasts = postgres.NewPostgresPodcastRepository(c.db, c.changeTracker, db.PodcastType)
	}

	return c.podcasts
}

func (c *Context) Episodes() repositories.EpisodeRepository {
	if c.episodes == nil {
		c.episodes = postgres.NewPostgresEpisodeRepository(c.db, c.changeTracker, db.EpisodeType)
	}

	return c.episodes
}

func (c *Context) Subscriptions() repositories.SubscriptionRepository {
	if c.subscriptions == nil {
		c.subscriptions = postgres.NewPostgresSubscriptionRepository(c.db, c.changeTracker, db.SubscriptionType)
	}

	return c.subscriptions
}

func (c *Context) SaveChanges(ctx context.Context) error {
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: 0,
		ReadOnly:  false,
	})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer utils.IgnoreError(tx.Rollback)

	changes := c.changeTracker.GetChanges()
	for _, changeEntry := range changes {
		err := c.applyChange(ctx, tx, changeEntry)
		if err != nil {
			return fmt.Errorf("failed to apply change: %w", err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	c.changeTracker.Clear()
	return nil
}

func (c *Context) applyChange(ctx context.Context, tx *sql.Tx, entry *change.Entry) error {
	switch entry.GetItemType() {
	case db.UserType:
		c.Users()
		return c.applyUserChange(ctx, tx, entry)

	case db.PodcastType:
		c.Podcasts()
		return c.applyPodcastChange(ctx, tx, entry)

	case db.EpisodeType:
		c.Episodes()
		return c.applyEpisodeChange(ctx, tx, entry)

	case db.SubscriptionType:
		c.Subscriptions()
		return c.applySubscriptionChange(ctx, tx, entry)

	default:
		return fmt.Errorf("unsupported item type: %d", entry.GetItemType())
	}
}

func (c *Context) applyUserChange(ctx context.Context, tx *sql.Tx, entry *change.Entry) error {
	switch entry.GetChangeType() {
	case change.Added:
		return c.users.ExecuteInsert(ctx, tx, entry.GetItem().(*repositories.User))

	case change.Updated:
		return c.users.ExecuteUpdate(ctx, tx, entry.GetItem().(*repositories.User))

	case change.Deleted:
		return c.users.ExecuteDelete(ctx, tx, entry.GetItem().(*repositories.User))

	default:
		return fmt.Errorf("unsupported change type: %s", entry.GetChangeType())
	}
}

func (c *Context) applyPodcastChange(ctx context.Context, tx *sql.Tx, entry *change.Entry) error {
	switch entry.GetChangeType() {
	case change.Added:
		return c.podcasts.ExecuteInsert(ctx, tx, entry.GetItem().(*repositories.Podcast))

	case change.Updated:
		return c.podcasts.ExecuteUpdate(ctx, tx, entry.GetItem().(*repositories.Podcast))

	case change.Deleted:
		return c.podcasts.ExecuteDelete(ctx, tx, entry.GetItem().(*repositories.Podcast))

	default:
		return fmt.Errorf("unsupported change type: %s", entry.GetChangeType())
	}
}

func (c *Context) applyEpisodeChange(ctx context.Context, tx *sql.Tx, entry *change.Entry) error {
	switch entry.GetChangeType() {
	case change.Added:
		return c.episodes.ExecuteInsert(ctx, tx, entry.GetItem().(*repositories.Episode))

	case change.Updated:
		return c.episodes.ExecuteUpdate(ctx, tx, entry.GetItem().(*repositories.Episode))

	case change.Deleted:
		return c.episodes.ExecuteDelete(ctx, tx, entry.GetItem().(*repositories.Episode))

	default:
		return fmt.Errorf("unsupported change type: %s", entry.GetChangeType())
	}
}

func (c *Context) applySubscriptionChange(ctx context.Context, tx *sql.Tx, entry *change.Entry) error {
	switch entry.GetChangeType() {
	case change.Added:
		return c.subscriptions.ExecuteInsert(ctx, tx, entry.GetItem().(*repositories.Subscription))

	case change.Deleted:
		return c.subscriptions.ExecuteDelete(ctx, tx, entry.GetItem().(*repositories.Subscription))

	default:
		return fmt.Errorf("unsupported change type: %s", entry.GetChangeType())
	}
}
