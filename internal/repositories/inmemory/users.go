package inmemory

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-memdb"
	"github.com/podhaven/podhaven/internal/change"
	"github.com/podhaven/podhaven/internal/repositories"
	"github.com/podhaven/podhaven/internal/utils/apiError"
)

type UserRepository struct {
	txn           *memdb.Txn
	changeTracker *change.Tracker
	entityType    int
}

func NewInMemoryUserRepository(txn *memdb.Txn, changeTracker *change.Tracker, entityType int) *UserRepository {
	return &UserRepository{
		txn:           txn,
		changeTracker: changeTracker,
		entityType:    entityType,
	}
}

func (r *UserRepository) matches(user *repositories.User, filter *repositories.UserFilter) bool {
	if filter.HasId() {
		if user.GetId() != filter.GetId() {
			return false
		}
	}

	if filter.HasEmail() {
		if user.GetEmail() != filter.GetEmail() {
			return false
		}
	}

	return true
}

func (r *UserRepository) applyFilter(iterator memdb.ResultIterator, filter *repositories.UserFilter) ([]*repositories.User, int) {
	var result []*repositories.User

	obj := iterator.Next()
	for obj != nil {
		user := obj.(*userRow).Map()

		if r.matches(user, filter) {
			result = append(result, user)
		}

		obj = iterator.Next()
	}

	return result, len(result)
}

func (r *UserRepository) First(_ context.Context, filter *repositories.UserFilter) (*repositories.User, error) {
	iterator, err := r.txn.Get("users", "id")
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	result, _ := r.applyFilter(iterator, filter)

	if len(result) == 0 {
		return nil, nil
	}

	return result[0], nil
}

func (r *UserRepository) Single(ctx context.Context, filter *repositories.UserFilter) (*repositories.User, error) {
	result, err := r.First(ctx, filter)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, apiError.ErrApiUserNotFound
	}
	return result, nil
}

func (r *UserRepository) List(_ context.Context, filter *repositories.UserFilter) ([]*repositories.User, int, error) {
	iterator, err := r.txn.Get("users", "id")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get users: %w", err)
	}

	result, count := r.applyFilter(iterator, filter)

	return result, count, nil
}

func (r *UserRepository) Insert(user *repositories.User) {
	r.changeTracker.Add(change.NewEntry(change.Added, r.entityType, user))
}

func (r *UserRepository) ExecuteInsert(txn *memdb.Txn, user *repositories.User) error {
	row := mapUserRow(user)
	row.Version = 1

	err := txn.Insert("users", row)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	user.SetVersion(row.Version)
	user.ClearChanges()
	return nil
}

func (r *UserRepository) Update(user *repositories.User) {
	r.changeTracker.Add(change.NewEntry(change.Updated, r.entityType, user))
}

func (r *UserRepository) ExecuteUpdate(txn *memdb.Txn, user *repositories.User) error {
	if !user.HasChanges() {
		return nil
	}

	raw, err := txn.First("users", "id", user.GetId().String())
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("updating user: %w", apiError.ErrApiConcurrentUpdate)
	}

	existing := raw.(*userRow)
	if existing.Version != user.GetVersion() {
		return fmt.Errorf("updating user: %w", apiError.ErrApiConcurrentUpdate)
	}

	row := mapUserRow(user)
	row.Version = existing.Version + 1

	err = txn.Insert("users", row)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	user.SetVersion(row.Version)
	user.ClearChanges()
	return nil
}

func (r *UserRepository) Delete(user *repositories.User) {
	r.changeTracker.Add(change.NewEntry(change.Deleted, r.entityType, user))
}

func (r *UserRepository) ExecuteDelete(txn *memdb.Txn, user *repositories.User) error {
	// mirror the schema cascades: subscriptions of the user go away, owned
	// podcasts are detached
	subscriptions, err := txn.Get("subscriptions", "id")
	if err != nil {
		return fmt.Errorf("failed to get subscriptions: %w", err)
	}

	var subscriptionRows []*subscriptionRow
	for obj := subscriptions.Next(); obj != nil; obj = subscriptions.Next() {
		row := obj.(*subscriptionRow)
		if row.UserId == user.GetId().String() {
			subscriptionRows = append(subscriptionRows, row)
		}
	}

	for _, row := range subscriptionRows {
		err = txn.Delete("subscriptions", row)
		if err != nil {
			return fmt.Errorf("failed to delete subscription: %w", err)
		}
	}

	podcasts, err := txn.Get("podcasts", "id")
	if err != nil {
		return fmt.Errorf("failed to get podcasts: %w", err)
	}

	var ownedRows []*podcastRow
	for obj := podcasts.Next(); obj != nil; obj = podcasts.Next() {
		row := obj.(*podcastRow)
		if row.OwnerId == user.GetId().String() {
			ownedRows = append(ownedRows, row)
		}
	}

	for _, row := range ownedRows {
		detached := *row
		detached.OwnerId = ""
		err = txn.Insert("podcasts", &detached)
		if err != nil {
			return fmt.Errorf("failed to detach podcast: %w", err)
		}
	}

	raw, err := txn.First("users", "id", user.GetId().String())
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if raw == nil {
		return nil
	}

	err = txn.Delete("users", raw)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return nil
}
