package inmemory

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-memdb"
	"github.com/podhaven/podhaven/internal/change"
	"github.com/podhaven/podhaven/internal/repositories"
	"github.com/podhaven/podhaven/internal/utils/apiError"
)

type EpisodeRepository struct {
	txn           *memdb.Txn
	changeTracker *change.Tracker
	entityType    int
	sequence      *Sequence
}

func NewInMemoryEpisodeRepository(txn *memdb.Txn, changeTracker *change.Tracker, entityType int, sequence *Sequence) *EpisodeRepository {
	return &EpisodeRepository{
		txn:           txn,
		changeTracker: changeTracker,
		entityType:    entityType,
		sequence:      sequence,
	}
}

func (r *EpisodeRepository) matches(episode *repositories.Episode, filter *repositories.EpisodeFilter) bool {
	if filter.HasId() {
		if episode.GetId() != filter.GetId() {
			return false
		}
	}

	if filter.HasPodcastId() {
		if episode.GetPodcastId() != filter.GetPodcastId() {
			return false
		}
	}

	if filter.HasStatus() {
		if episode.GetStatus() != filter.GetStatus() {
			return false
		}
	}

	return true
}

func (r *EpisodeRepository) applyFilter(iterator memdb.ResultIterator, filter *repositories.EpisodeFilter) ([]*repositories.Episode, int) {
	var result []*repositories.Episode

	obj := iterator.Next()
	for obj != nil {
		episode := obj.(*episodeRow).Map()

		if r.matches(episode, filter) {
			result = append(result, episode)
		}

		obj = iterator.Next()
	}

	return result, len(result)
}

func (r *EpisodeRepository) First(_ context.Context, filter *repositories.EpisodeFilter) (*repositories.Episode, error) {
	iterator, err := r.txn.Get("episodes", "id")
	if err != nil {
		return nil, fmt.Errorf("failed to get episodes: %w", err)
	}

	result, _ := r.applyFilter(iterator, filter)

	if len(result) == 0 {
		return nil, nil
	}

	return result[0], nil
}

func (r *EpisodeRepository) Single(ctx context.Context, filter *repositories.EpisodeFilter) (*repositories.Episode, error) {
	result, err := r.First(ctx, filter)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, apiError.ErrApiEpisodeNotFound
	}
	return result, nil
}

func (r *EpisodeRepository) List(_ context.Context, filter *repositories.EpisodeFilter) ([]*repositories.Episode, int, error) {
	iterator, err := r.txn.Get("episodes", "id")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get episodes: %w", err)
	}

	result, count := r.applyFilter(iterator, filter)

	return result, count, nil
}

func (r *EpisodeRepository) Insert(episode *repositories.Episode) {
	r.changeTracker.Add(change.NewEntry(change.Added, r.entityType, episode))
}

func (r *EpisodeRepository) ExecuteInsert(txn *memdb.Txn, episode *repositories.Episode) error {
	if episode.GetId() == 0 {
		episode.SetId(r.sequence.Next())
	}

	row := mapEpisodeRow(episode)
	row.Version = 1

	err := txn.Insert("episodes", row)
	if err != nil {
		return fmt.Errorf("failed to insert episode: %w", err)
	}

	episode.SetVersion(row.Version)
	episode.ClearChanges()
	episode.ResetPlayCountDelta()
	return nil
}

func (r *EpisodeRepository) Update(episode *repositories.Episode) {
	r.changeTracker.Add(change.NewEntry(change.Updated, r.entityType, episode))
}

func (r *EpisodeRepository) ExecuteUpdate(txn *memdb.Txn, episode *repositories.Episode) error {
	if !episode.HasChanges() {
		return nil
	}

	raw, err := txn.First("episodes", "id", episode.GetId())
	if err != nil {
		return fmt.Errorf("failed to get episode: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("updating episode: %w", apiError.ErrApiConcurrentUpdate)
	}

	existing := raw.(*episodeRow)

	// the version guard only applies to content changes, play counts are
	// merged as relative increments against the stored row
	guarded := false
	for _, field := range episode.GetChanges() {
		if field != repositories.EpisodeChangePlayCount {
			guarded = true
		}
	}

	if guarded && existing.Version != episode.GetVersion() {
		return fmt.Errorf("updating episode: %w", apiError.ErrApiConcurrentUpdate)
	}

	row := mapEpisodeRow(episode)
	row.PlayCount = existing.PlayCount + episode.GetPlayCountDelta()
	if !guarded {
		// keep concurrent content edits intact when only plays were recorded
		row.Title = existing.Title
		row.AudioKey = existing.AudioKey
		row.DurationMinutes = existing.DurationMinutes
		row.Status = existing.Status
		row.ReleaseDate = existing.ReleaseDate
	}
	row.Version = existing.Version + 1

	err = txn.Insert("episodes", row)
	if err != nil {
		return fmt.Errorf("failed to update episode: %w", err)
	}

	episode.SetVersion(row.Version)
	episode.ClearChanges()
	episode.ResetPlayCountDelta()
	return nil
}

func (r *EpisodeRepository) Delete(episode *repositories.Episode) {
	r.changeTracker.Add(change.NewEntry(change.Deleted, r.entityType, episode))
}

func (r *EpisodeRepository) ExecuteDelete(txn *memdb.Txn, episode *repositories.Episode) error {
	raw, err := txn.First("episodes", "id", episode.GetId())
	if err != nil {
		return fmt.Errorf("failed to get episode: %w", err)
	}
	if raw == nil {
		return nil
	}

	err = txn.Delete("episodes", raw)
	if err != nil {
		return fmt.Errorf("failed to delete episode: %w", err)
	}

	return nil
}
