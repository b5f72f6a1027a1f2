package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/huandu/go-sqlbuilder"
	"github.com/podhaven/podhaven/internal/change"
	"github.com/podhaven/podhaven/internal/logging"
	"github.com/podhaven/podhaven/internal/repositories"
	"github.com/podhaven/podhaven/internal/utils"
	"github.com/podhaven/podhaven/internal/utils/apiError"
)

type postgresEpisode struct {
	postgresBaseModel
	podcastId       int64
	title           string
	audioKey        string
	durationMinutes int
	status          string
	releaseDate     time.Time
	playCount       int64
}

func mapEpisode(e *repositories.Episode) *postgresEpisode {
	return &postgresEpisode{
		postgresBaseModel: mapBase(e.BaseModel),
		podcastId:         e.GetPodcastId(),
		title:             e.GetTitle(),
		audioKey:          e.GetAudioKey(),
		durationMinutes:   e.GetDurationMinutes(),
		status:            e.GetStatus().String(),
		releaseDate:       e.GetReleaseDate(),
		playCount:         e.GetPlayCount(),
	}
}

func (e *postgresEpisode) Map() (*repositories.Episode, error) {
	status, err := repositories.EpisodeStatusFromString(e.status)
	if err != nil {
		return nil, fmt.Errorf("mapping episode %d: %w", e.id, err)
	}

	return repositories.NewEpisodeFromDB(
		e.podcastId,
		e.title,
		e.audioKey,
		e.durationMinutes,
		status,
		e.releaseDate,
		e.playCount,
		e.MapBase(),
	), nil
}

func (e *postgresEpisode) scan(row RowScanner) error {
	return row.Scan(
		&e.id,
		&e.createdAt,
		&e.updatedAt,
		&e.xmin,
		&e.podcastId,
		&e.title,
		&e.audioKey,
		&e.durationMinutes,
		&e.status,
		&e.releaseDate,
		&e.playCount,
	)
}

type EpisodeRepository struct {
	db            *sql.DB
	changeTracker *change.Tracker
	entityType    int
}

func NewPostgresEpisodeRepository(db *sql.DB, changeTracker *change.Tracker, entityType int) *EpisodeRepository {
	return &EpisodeRepository{
		db:            db,
		changeTracker: changeTracker,
		entityType:    entityType,
	}
}

func (r *EpisodeRepository) selectQuery(filter *repositories.EpisodeFilter) *sqlbuilder.SelectBuilder {
	s := sqlbuilder.Select(
		"episodes.id",
		"episodes.created_at",
		"episodes.updated_at",
		"episodes.xmin",
		"episodes.podcast_id",
		"episodes.title",
		"episodes.audio_key",
		"episodes.duration_minutes",
		"episodes.status",
		"episodes.release_date",
		"episodes.play_count",
	).From("episodes")

	if filter.HasId() {
		s.Where(s.Equal("episodes.id", filter.GetId()))
	}

	if filter.HasPodcastId() {
		s.Where(s.Equal("episodes.podcast_id", filter.GetPodcastId()))
	}

	if filter.HasStatus() {
		s.Where(s.Equal("episodes.status", filter.GetStatus().String()))
	}

	return s
}

func (r *EpisodeRepository) First(ctx context.Context, filter *repositories.EpisodeFilter) (*repositories.Episode, error) {
	s := r.selectQuery(filter)
	s.Limit(1)

	query, args := s.BuildWithFlavor(sqlbuilder.PostgreSQL)
	logging.Logger.Debugf("query: %s, args: %+v", query, args)
	row := r.db.QueryRowContext(ctx, query, args...)

	episode := &postgresEpisode{}
	err := episode.scan(row)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("scanning row: %w", err)
	}

	return episode.Map()
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

func (r *EpisodeRepository) List(ctx context.Context, filter *repositories.EpisodeFilter) ([]*repositories.Episode, int, error) {
	s := r.selectQuery(filter)
	s.SelectMore("count(*) over() as total_count")

	query, args := s.BuildWithFlavor(sqlbuilder.PostgreSQL)
	logging.Logger.Debugf("query: %s, args: %+v", query, args)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying db: %w", err)
	}
	defer utils.PanicOnError(rows.Close, "closing rows")

	var episodes []*repositories.Episode
	var totalCount int
	for rows.Next() {
		episode := &postgresEpisode{}
		err := rows.Scan(&episode.id, &episode.createdAt, &episode.updatedAt, &episode.xmin, &episode.podcastId, &episode.title, &episode.audioKey, &episode.durationMinutes, &episode.status, &episode.releaseDate, &episode.playCount, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning row: %w", err)
		}

		mapped, err := episode.Map()
		if err != nil {
			return nil, 0, err
		}
		episodes = append(episodes, mapped)
	}

	return episodes, totalCount, nil
}

func (r *EpisodeRepository) Insert(episode *repositories.Episode) {
	r.changeTracker.Add(change.NewEntry(change.Added, r.entityType, episode))
}

func (r *EpisodeRepository) ExecuteInsert(ctx context.Context, tx *sql.Tx, episode *repositories.Episode) error {
	mapped := mapEpisode(episode)

	s := sqlbuilder.InsertInto("episodes").
		Cols(
			"created_at",
			"updated_at",
			"podcast_id",
			"title",
			"audio_key",
			"duration_minutes",
			"status",
			"release_date",
			"play_count",
		).
		Values(
			mapped.createdAt,
			mapped.updatedAt,
			mapped.podcastId,
			mapped.title,
			mapped.audioKey,
			mapped.durationMinutes,
			mapped.status,
			mapped.releaseDate,
			mapped.playCount,
		)

	s.Returning("id", "xmin")

	query, args := s.BuildWithFlavor(sqlbuilder.PostgreSQL)
	logging.Logger.Debugf("query: %s, args: %+v", query, args)
	row := tx.QueryRowContext(ctx, query, args...)

	var id int64
	var xmin uint32

	err := row.Scan(&id, &xmin)
	if err != nil {
		return fmt.Errorf("inserting episode: %w", err)
	}

	episode.SetId(id)
	episode.SetVersion(xmin)
	episode.ClearChanges()
	episode.ResetPlayCountDelta()
	return nil
}

func (r *EpisodeRepository) Update(episode *repositories.Episode) {
	r.changeTracker.Add(change.NewEntry(change.Updated, r.entityType, episode))
}

func (r *EpisodeRepository) ExecuteUpdate(ctx context.Context, tx *sql.Tx, episode *repositories.Episode) error {
	if !episode.HasChanges() {
		return nil
	}

	mapped := mapEpisode(episode)

	s := sqlbuilder.Update("episodes")
	s.Where(s.Equal("id", episode.GetId()))

	// Play counts are applied as relative increments so that concurrent
	// listeners never conflict. The xmin guard is only added when actual
	// content fields changed.
	guarded := false

	for _, field := range episode.GetChanges() {
		switch field {
		case repositories.EpisodeChangeTitle:
			s.SetMore(s.Assign("title", mapped.title))
			guarded = true
		case repositories.EpisodeChangeAudioKey:
			s.SetMore(s.Assign("audio_key", mapped.audioKey))
			guarded = true
		case repositories.EpisodeChangeDuration:
			s.SetMore(s.Assign("duration_minutes", mapped.durationMinutes))
			guarded = true
		case repositories.EpisodeChangeStatus:
			s.SetMore(s.Assign("status", mapped.status))
			guarded = true
		case repositories.EpisodeChangeReleaseDate:
			s.SetMore(s.Assign("release_date", mapped.releaseDate))
			guarded = true
		case repositories.EpisodeChangePlayCount:
			s.SetMore(fmt.Sprintf("play_count = play_count + %s", s.Var(episode.GetPlayCountDelta())))
		default:
			panic(fmt.Errorf("unknown episode change: %d", field))
		}
	}

	if guarded {
		s.Where(s.Equal("xmin", episode.GetVersion()))
	}

	s.Returning("xmin")
	query, args := s.BuildWithFlavor(sqlbuilder.PostgreSQL)
	logging.Logger.Debugf("query: %s, args: %+v", query, args)
	row := tx.QueryRowContext(ctx, query, args...)

	var xmin uint32

	err := row.Scan(&xmin)
	if errors.Is(err, sql.ErrNoRows) {
		// no row was updated, which means the row was either already deleted or concurrently updated
		return fmt.Errorf("updating episode: %w", apiError.ErrApiConcurrentUpdate)
	}

	if err != nil {
		return fmt.Errorf("updating episode: %w", err)
	}

	episode.SetVersion(xmin)
	episode.ClearChanges()
	episode.ResetPlayCountDelta()
	return nil
}

func (r *EpisodeRepository) Delete(episode *repositories.Episode) {
	r.changeTracker.Add(change.NewEntry(change.Deleted, r.entityType, episode))
}

func (r *EpisodeRepository) ExecuteDelete(ctx context.Context, tx *sql.Tx, episode *repositories.Episode) error {
	s := sqlbuilder.DeleteFrom("episodes")
	s.Where(s.Equal("id", episode.GetId()))

	query, args := s.BuildWithFlavor(sqlbuilder.PostgreSQL)
	logging.Logger.Debugf("query: %s, args: %+v", query, args)
	_, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting episode: %w", err)
	}

	return nil
}
