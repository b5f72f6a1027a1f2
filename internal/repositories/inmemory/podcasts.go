package inmemory

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-memdb"
	"github.com/podhaven/podhaven/internal/change"
	"github.com/podhaven/podhaven/internal/repositories"
	"github.com/podhaven/podhaven/internal/utils/apiError"
)

type PodcastRepository struct {
	txn           *memdb.Txn
	changeTracker *change.Tracker
	entityType    int
	sequence      *Sequence
}

func NewInMemoryPodcastRepository(txn *memdb.Txn, changeTracker *change.Tracker, entityType int, sequence *Sequence) *PodcastRepository {
	return &PodcastRepository{
		txn:           txn,
		changeTracker: changeTracker,
		entityType:    entityType,
		sequence:      sequence,
	}
}

func (r *PodcastRepository) matches(podcast *repositories.Podcast, filter *repositories.PodcastFilter) bool {
	if filter.HasId() {
		if podcast.GetId() != filter.GetId() {
			return false
		}
	}

	if filter.HasOwnerId() {
		if !podcast.IsOwnedBy(filter.GetOwnerId()) {
			return false
		}
	}

	return true
}

func (r *PodcastRepository) applyFilter(iterator memdb.ResultIterator, filter *repositories.PodcastFilter) ([]*repositories.Podcast, int) {
	var result []*repositories.Podcast

	obj := iterator.Next()
	for obj != nil {
		podcast := obj.(*podcastRow).Map()

		if r.matches(podcast, filter) {
			result = append(result, podcast)
		}

		obj = iterator.Next()
	}

	return result, len(result)
}

func (r *PodcastRepository) First(_ context.Context, filter *repositories.PodcastFilter) (*repositories.Podcast, error) {
	iterator, err := r.txn.Get("podcasts", "id")
	if err != nil {
		return nil, fmt.Errorf("failed to get podcasts: %w", err)
	}

	result, _ := r.applyFilter(iterator, filter)

	if len(result) == 0 {
		return nil, nil
	}

	return result[0], nil
}

func (r *PodcastRepository) Single(ctx context.Context, filter *repositories.PodcastFilter) (*repositories.Podcast, error) {
	result, err := r.First(ctx, filter)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, apiError.ErrApiPodcastNotFound
	}
	return result, nil
}

func (r *PodcastRepository) List(_ context.Context, filter *repositories.PodcastFilter) ([]*repositories.Podcast, int, error) {
	iterator, err := r.txn.Get("podcasts", "id")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get podcasts: %w", err)
	}

	result, count := r.applyFilter(iterator, filter)

	return result, count, nil
}

func (r *PodcastRepository) Insert(podcast *repositories.Podcast) {
	r.changeTracker.Add(change.NewEntry(change.Added, r.entityType, podcast))
}

func (r *PodcastRepository) ExecuteInsert(txn *memdb.Txn, podcast *repositories.Podcast) error {
	if podcast.GetId() == 0 {
		podcast.SetId(r.sequence.Next())
	}

	row := mapPodcastRow(podcast)
	row.Version = 1

	err := txn.Insert("podcasts", row)
	if err != nil {
		return fmt.Errorf("failed to insert podcast: %w", err)
	}

	podcast.SetVersion(row.Version)
	podcast.ClearChanges()
	return nil
}

func (r *PodcastRepository) Update(podcast *repositories.Podcast) {
	r.changeTracker.Add(change.NewEntry(change.Updated, r.entityType, podcast))
}

func (r *PodcastRepository) ExecuteUpdate(txn *memdb.Txn, podcast *repositories.Podcast) error {
	if !podcast.HasChanges() {
		return nil
	}

	raw, err := txn.First("podcasts", "id", podcast.GetId())
	if err != nil {
		return fmt.Errorf("failed to get podcast: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("updating podcast: %w", apiError.ErrApiConcurrentUpdate)
	}

	existing := raw.(*podcastRow)
	if existing.Version != podcast.GetVersion() {
		return fmt.Errorf("updating podcast: %w", apiError.ErrApiConcurrentUpdate)
	}

	row := mapPodcastRow(podcast)
	row.Version = existing.Version + 1

	err = txn.Insert("podcasts", row)
	if err != nil {
		return fmt.Errorf("failed to update podcast: %w", err)
	}

	podcast.SetVersion(row.Version)
	podcast.ClearChanges()
	return nil
}

func (r *PodcastRepository) Delete(podcast *repositories.Podcast) {
	r.changeTracker.Add(change.NewEntry(change.Deleted, r.entityType, podcast))
}

func (r *PodcastRepository) ExecuteDelete(txn *memdb.Txn, podcast *repositories.Podcast) error {
	// mirror the schema cascades: episodes and subscriptions of the podcast
	// go away with it
	episodes, err := txn.Get("episodes", "id")
	if err != nil {
		return fmt.Errorf("failed to get episodes: %w", err)
	}

	var episodeRows []*episodeRow
	for obj := episodes.Next(); obj != nil; obj = episodes.Next() {
		row := obj.(*episodeRow)
		if row.PodcastId == podcast.GetId() {
			episodeRows = append(episodeRows, row)
		}
	}

	for _, row := range episodeRows {
		err = txn.Delete("episodes", row)
		if err != nil {
			return fmt.Errorf("failed to delete episode: %w", err)
		}
	}

	subscriptions, err := txn.Get("subscriptions", "id")
	if err != nil {
		return fmt.Errorf("failed to get subscriptions: %w", err)
	}

	var subscriptionRows []*subscriptionRow
	for obj := subscriptions.Next(); obj != nil; obj = subscriptions.Next() {
		row := obj.(*subscriptionRow)
		if row.PodcastId == podcast.GetId() {
			subscriptionRows = append(subscriptionRows, row)
		}
	}

	for _, row := range subscriptionRows {
		err = txn.Delete("subscriptions", row)
		if err != nil {
			return fmt.Errorf("failed to delete subscription: %w", err)
		}
	}

	raw, err := txn.First("podcasts", "id", podcast.GetId())
	if err != nil {
		return fmt.Errorf("failed to get podcast: %w", err)
	}
	if raw == nil {
		return nil
	}

	err = txn.Delete("podcasts", raw)
	if err != nil {
		return fmt.Errorf("failed to delete podcast: %w", err)
	}

	return nil
}
