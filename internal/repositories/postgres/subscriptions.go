package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"
	"github.com/lib/pq"
	"github.com/podhaven/podhaven/internal/change"
	"github.com/podhaven/podhaven/internal/logging"
	"github.com/podhaven/podhaven/internal/repositories"
	"github.com/podhaven/podhaven/internal/utils"
	"github.com/podhaven/podhaven/internal/utils/apiError"
)

const pqUniqueViolation = "23505"

type postgresSubscription struct {
	postgresBaseModel
	userId    uuid.UUID
	podcastId int64
}

func mapSubscription(s *repositories.Subscription) *postgresSubscription {
	return &postgresSubscription{
		postgresBaseModel: mapBase(s.BaseModel),
		userId:            s.GetUserId(),
		podcastId:         s.GetPodcastId(),
	}
}

func (s *postgresSubscription) Map() *repositories.Subscription {
	return repositories.NewSubscriptionFromDB(
		s.userId,
		s.podcastId,
		s.MapBase(),
	)
}

func (s *postgresSubscription) scan(row RowScanner) error {
	return row.Scan(
		&s.id,
		&s.createdAt,
		&s.updatedAt,
		&s.xmin,
		&s.userId,
		&s.podcastId,
	)
}

type SubscriptionRepository struct {
	db            *sql.DB
	changeTracker *change.Tracker
	entityType    int
}

func NewPostgresSubscriptionRepository(db *sql.DB, changeTracker *change.Tracker, entityType int) *SubscriptionRepository {
	return &SubscriptionRepository{
		db:            db,
		changeTracker: changeTracker,
		entityType:    entityType,
	}
}

func (r *SubscriptionRepository) selectQuery(filter *repositories.SubscriptionFilter) *sqlbuilder.SelectBuilder {
	s := sqlbuilder.Select(
		"subscriptions.id",
		"subscriptions.created_at",
		"subscriptions.updated_at",
		"subscriptions.xmin",
		"subscriptions.user_id",
		"subscriptions.podcast_id",
	).From("subscriptions")

	if filter.HasId() {
		s.Where(s.Equal("subscriptions.id", filter.GetId()))
	}

	if filter.HasUserId() {
		s.Where(s.Equal("subscriptions.user_id", filter.GetUserId()))
	}

	if filter.HasPodcastId() {
		s.Where(s.Equal("subscriptions.podcast_id", filter.GetPodcastId()))
	}

	return s
}

func (r *SubscriptionRepository) First(ctx context.Context, filter *repositories.SubscriptionFilter) (*repositories.Subscription, error) {
	s := r.selectQuery(filter)
	s.Limit(1)

	query, args := s.BuildWithFlavor(sqlbuilder.PostgreSQL)
	logging.Logger.Debugf("query: %s, args: %+v", query, args)
	row := r.db.QueryRowContext(ctx, query, args...)

	subscription := &postgresSubscription{}
	err := subscription.scan(row)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("scanning row: %w", err)
	}

	return subscription.Map(), nil
}

func (r *SubscriptionRepository) Single(ctx context.Context, filter *repositories.SubscriptionFilter) (*repositories.Subscription, error) {
	result, err := r.First(ctx, filter)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, apiError.ErrApiSubscriptionNotFound
	}
	return result, nil
}

func (r *SubscriptionRepository) List(ctx context.Context, filter *repositories.SubscriptionFilter) ([]*repositories.Subscription, int, error) {
	s := r.selectQuery(filter)
	s.SelectMore("count(*) over() as total_count")

	query, args := s.BuildWithFlavor(sqlbuilder.PostgreSQL)
	logging.Logger.Debugf("query: %s, args: %+v", query, args)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying db: %w", err)
	}
	defer utils.PanicOnError(rows.Close, "closing rows")

	var subscriptions []*repositories.Subscription
	var totalCount int
	for rows.Next() {
		subscription := &postgresSubscription{}
		err := rows.Scan(&subscription.id, &subscription.createdAt, &subscription.updatedAt, &subscription.xmin, &subscription.userId, &subscription.podcastId, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning row: %w", err)
		}
		subscriptions = append(subscriptions, subscription.Map())
	}

	return subscriptions, totalCount, nil
}

func (r *SubscriptionRepository) Insert(subscription *repositories.Subscription) {
	r.changeTracker.Add(change.NewEntry(change.Added, r.entityType, subscription))
}

func (r *SubscriptionRepository) ExecuteInsert(ctx context.Context, tx *sql.Tx, subscription *repositories.Subscription) error {
	mapped := mapSubscription(subscription)

	s := sqlbuilder.InsertInto("subscriptions").
		Cols(
			"created_at",
			"updated_at",
			"user_id",
			"podcast_id",
		).
		Values(
			mapped.createdAt,
			mapped.updatedAt,
			mapped.userId,
			mapped.podcastId,
		)

	s.Returning("id", "xmin")

	query, args := s.BuildWithFlavor(sqlbuilder.PostgreSQL)
	logging.Logger.Debugf("query: %s, args: %+v", query, args)
	row := tx.QueryRowContext(ctx, query, args...)

	var id int64
	var xmin uint32

	err := row.Scan(&id, &xmin)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return fmt.Errorf("user %s is already subscribed to podcast %d: %w", mapped.userId, mapped.podcastId, apiError.ErrApiConflict)
	}
	if err != nil {
		return fmt.Errorf("inserting subscription: %w", err)
	}

	subscription.SetId(id)
	subscription.SetVersion(xmin)
	return nil
}

func (r *SubscriptionRepository) Delete(subscription *repositories.Subscription) {
	r.changeTracker.Add(change.NewEntry(change.Deleted, r.entityType, subscription))
}

func (r *SubscriptionRepository) ExecuteDelete(ctx context.Context, tx *sql.Tx, subscription *repositories.Subscription) error {
	s := sqlbuilder.DeleteFrom("subscriptions")
	s.Where(s.Equal("id", subscription.GetId()))

	query, args := s.BuildWithFlavor(sqlbuilder.PostgreSQL)
	logging.Logger.Debugf("query: %s, args: %+v", query, args)
	_, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting subscription: %w", err)
	}

	return nil
}
