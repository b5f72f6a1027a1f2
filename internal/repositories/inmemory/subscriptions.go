package inmemory

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-memdb"
	"github.com/podhaven/podhaven/internal/change"
	"github.com/podhaven/podhaven/internal/repositories"
	"github.com/podhaven/podhaven/internal/utils/apiError"
)

type SubscriptionRepository struct {
	txn           *memdb.Txn
	changeTracker *change.Tracker
	entityType    int
	sequence      *Sequence
}

func NewInMemorySubscriptionRepository(txn *memdb.Txn, changeTracker *change.Tracker, entityType int, sequence *Sequence) *SubscriptionRepository {
	return &SubscriptionRepository{
		txn:           txn,
		changeTracker: changeTracker,
		entityType:    entityType,
		sequence:      sequence,
	}
}

func (r *SubscriptionRepository) matches(subscription *repositories.Subscription, filter *repositories.SubscriptionFilter) bool {
	if filter.HasId() {
		if subscription.GetId() != filter.GetId() {
			return false
		}
	}

	if filter.HasUserId() {
		if subscription.GetUserId() != filter.GetUserId() {
			return false
		}
	}

	if filter.HasPodcastId() {
		if subscription.GetPodcastId() != filter.GetPodcastId() {
			return false
		}
	}

	return true
}

func (r *SubscriptionRepository) applyFilter(iterator memdb.ResultIterator, filter *repositories.SubscriptionFilter) ([]*repositories.Subscription, int) {
	var result []*repositories.Subscription

	obj := iterator.Next()
	for obj != nil {
		subscription := obj.(*subscriptionRow).Map()

		if r.matches(subscription, filter) {
			result = append(result, subscription)
		}

		obj = iterator.Next()
	}

	return result, len(result)
}

func (r *SubscriptionRepository) First(_ context.Context, filter *repositories.SubscriptionFilter) (*repositories.Subscription, error) {
	iterator, err := r.txn.Get("subscriptions", "id")
	if err != nil {
		return nil, fmt.Errorf("failed to get subscriptions: %w", err)
	}

	result, _ := r.applyFilter(iterator, filter)

	if len(result) == 0 {
		return nil, nil
	}

	return result[0], nil
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

func (r *SubscriptionRepository) List(_ context.Context, filter *repositories.SubscriptionFilter) ([]*repositories.Subscription, int, error) {
	iterator, err := r.txn.Get("subscriptions", "id")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get subscriptions: %w", err)
	}

	result, count := r.applyFilter(iterator, filter)

	return result, count, nil
}

func (r *SubscriptionRepository) Insert(subscription *repositories.Subscription) {
	r.changeTracker.Add(change.NewEntry(change.Added, r.entityType, subscription))
}

func (r *SubscriptionRepository) ExecuteInsert(txn *memdb.Txn, subscription *repositories.Subscription) error {
	// enforce the (user_id, podcast_id) unique index of the sql schema
	iterator, err := txn.Get("subscriptions", "id")
	if err != nil {
		return fmt.Errorf("failed to get subscriptions: %w", err)
	}

	for obj := iterator.Next(); obj != nil; obj = iterator.Next() {
		row := obj.(*subscriptionRow)
		if row.UserId == subscription.GetUserId().String() && row.PodcastId == subscription.GetPodcastId() {
			return fmt.Errorf("user %s is already subscribed to podcast %d: %w", subscription.GetUserId(), subscription.GetPodcastId(), apiError.ErrApiConflict)
		}
	}

	if subscription.GetId() == 0 {
		subscription.SetId(r.sequence.Next())
	}

	row := mapSubscriptionRow(subscription)
	row.Version = 1

	err = txn.Insert("subscriptions", row)
	if err != nil {
		return fmt.Errorf("failed to insert subscription: %w", err)
	}

	subscription.SetVersion(row.Version)
	return nil
}

func (r *SubscriptionRepository) Delete(subscription *repositories.Subscription) {
	r.changeTracker.Add(change.NewEntry(change.Deleted, r.entityType, subscription))
}

func (r *SubscriptionRepository) ExecuteDelete(txn *memdb.Txn, subscription *repositories.Subscription) error {
	raw, err := txn.First("subscriptions", "id", subscription.GetId())
	if err != nil {
		return fmt.Errorf("failed to get subscription: %w", err)
	}
	if raw == nil {
		return nil
	}

	err = txn.Delete("subscriptions", raw)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}

	return nil
}
