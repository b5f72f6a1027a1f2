package inmemory

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-memdb"
	"github.com/podhaven/podhaven/internal/change"
	db "github.com/podhaven/podhaven/internal/database"
	"github.com/podhaven/podhaven/internal/repositories"
	"github.com/podhaven/podhaven/internal/repositories/inmemory"
)

type Context struct {
	db            *memdb.MemDB
	txn           *memdb.Txn
	changeTracker *change.Tracker
	sequence      *inmemory.Sequence

	users         *inmemory.UserRepository
	podcasts      *inmemory.PodcastRepository
	episodes      *inmemory.EpisodeRepository
	subscriptions *inmemory.SubscriptionRepository
}

func newContext(db *memdb.MemDB, sequence *inmemory.Sequence) *Context {
	return &Context{
		db:            db,
		txn:           db.Txn(false),
		changeTracker: change.NewTracker(),
		sequence:      sequence,
	}
}

func (c *Context) Users() repositories.UserRepository {
	if c.users == nil {
		c.users = inmemory.NewInMemoryUserRepository(c.txn, c.changeTracker, db.UserType)
	}
	return c.users
}

func (c *Context) Podcasts() repositories.PodcastRepository {
	if c.podcasts == nil {
		c.podcasts = inmemory.NewInMemoryPodcastRepository(c.txn, c.changeTracker, db.PodcastType, c.sequence)
	}
	return c.podcasts
}

func (c *Context) Episodes() repositories.EpisodeRepository {
	if c.episodes == nil {
		c.episodes = inmemory.NewInMemoryEpisodeRepository(c.txn, c.changeTracker, db.EpisodeType, c.sequence)
	}
	return c.episodes
}

func (c *Context) Subscriptions() repositories.SubscriptionRepository {
	if c.subscriptions == nil {
		c.subscriptions = inmemory.NewInMemorySubscriptionRepository(c.txn, c.changeTracker, db.SubscriptionType, c.sequence)
	}
	return c.subscriptions
}

func (c *Context) SaveChanges(_ context.Context) error {
	tx := c.db.Txn(true)

	changes := c.changeTracker.GetChanges()
	for _, changeEntry := range changes {
		err := c.applyChange(tx, changeEntry)
		if err != nil {
			tx.Abort()
			return fmt.Errorf("failed to apply change: %w", err)
		}
	}

	tx.Commit()
	c.changeTracker.Clear()
	return nil
}

func (c *Context) applyChange(tx *memdb.Txn, entry *change.Entry) error {
	switch entry.GetItemType() {
	case db.UserType:
		c.Users()
		return c.applyUserChange(tx, entry)

	case db.PodcastType:
		c.Podcasts()
		return c.applyPodcastChange(tx, entry)

	case db.EpisodeType:
		c.Episodes()
		return c.applyEpisodeChange(tx, entry)

	case db.SubscriptionType:
		c.Subscriptions()
		return c.applySubscriptionChange(tx, entry)

	default:
		return fmt.Errorf("unsupported item type: %d", entry.GetItemType())
	}
}

func (c *Context) applyUserChange(tx *memdb.Txn, entry *change.Entry) error {
	switch entry.GetChangeType() {
	case change.Added:
		return c.users.ExecuteInsert(tx, entry.GetItem().(*repositories.User))

	case change.Updated:
		return c.users.ExecuteUpdate(tx, entry.GetItem().(*repositories.User))

	case change.Deleted:
		return c.users.ExecuteDelete(tx, entry.GetItem().(*repositories.User))

	default:
		return fmt.Errorf("unsupported change type: %s", entry.GetChangeType())
	}
}

func (c *Context) applyPodcastChange(tx *memdb.Txn, entry *change.Entry) error {
	switch entry.GetChangeType() {
	case change.Added:
		return c.podcasts.ExecuteInsert(tx, entry.GetItem().(*repositories.Podcast))

	case change.Updated:
		return c.podcasts.ExecuteUpdate(tx, entry.GetItem().(*repositories.Podcast))

	case change.Deleted:
		return c.podcasts.ExecuteDelete(tx, entry.GetItem().(*repositories.Podcast))

	default:
		return fmt.Errorf("unsupported change type: %s", entry.GetChangeType())
	}
}

func (c *Context) applyEpisodeChange(tx *memdb.Txn, entry *change.Entry) error {
	switch entry.GetChangeType() {
	case change.Added:
		return c.episodes.ExecuteInsert(tx, entry.GetItem().(*repositories.Episode))

	case change.Updated:
		return c.episodes.ExecuteUpdate(tx, entry.GetItem().(*repositories.Episode))

	case change.Deleted:
		return c.episodes.ExecuteDelete(tx, entry.GetItem().(*repositories.Episode))

	default:
		return fmt.Errorf("unsupported change type: %s", entry.GetChangeType())
	}
}

func (c *Context) applySubscriptionChange(tx *memdb.Txn, entry *change.Entry) error {
	switch entry.GetChangeType() {
	case change.Added:
		return c.subscriptions.ExecuteInsert(tx, entry.GetItem().(*repositories.Subscription))

	case change.Deleted:
		return c.subscriptions.ExecuteDelete(tx, entry.GetItem().(*repositories.Subscription))

	default:
		return fmt.Errorf("unsupported change type: %s", entry.GetChangeType())
	}
}
