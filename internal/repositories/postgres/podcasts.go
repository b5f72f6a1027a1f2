package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"
	"github.com/podhaven/podhaven/internal/change"
	"github.com/podhaven/podhaven/internal/logging"
	"github.com/podhaven/podhaven/internal/repositories"
	"github.com/podhaven/podhaven/internal/utils"
	"github.com/podhaven/podhaven/internal/utils/apiError"
)

type postgresPodcast struct {
	postgresBaseModel
	ownerId     *uuid.UUID
	title       string
	description string
}

func mapPodcast(p *repositories.Podcast) *postgresPodcast {
	return &postgresPodcast{
		postgresBaseModel: mapBase(p.BaseModel),
		ownerId:           p.GetOwnerId(),
		title:             p.GetTitle(),
		description:       p.GetDescription(),
	}
}

func (p *postgresPodcast) Map() *repositories.Podcast {
	return repositories.NewPodcastFromDB(
		p.ownerId,
		p.title,
		p.description,
		p.MapBase(),
	)
}

func (p *postgresPodcast) scan(row RowScanner) error {
	return row.Scan(
		&p.id,
		&p.createdAt,
		&p.updatedAt,
		&p.xmin,
		&p.ownerId,
		&p.title,
		&p.description,
	)
}

type PodcastRepository struct {
	db            *sql.DB
	changeTracker *change.Tracker
	entityType    int
}

func NewPostgresPodcastRepository(db *sql.DB, changeTracker *change.Tracker, entityType int) *PodcastRepository {
	return &PodcastRepository{
		db:            db,
		changeTracker: changeTracker,
		entityType:    entityType,
	}
}

func (r *PodcastRepository) selectQuery(filter *repositories.PodcastFilter) *sqlbuilder.SelectBuilder {
	s := sqlbuilder.Select(
		"podcasts.id",
		"podcasts.created_at",
		"podcasts.updated_at",
		"podcasts.xmin",
		"podcasts.owner_id",
		"podcasts.title",
		"podcasts.description",
	).From("podcasts")

	if filter.HasId() {
		s.Where(s.Equal("podcasts.id", filter.GetId()))
	}

	if filter.HasOwnerId() {
		s.Where(s.Equal("podcasts.owner_id", filter.GetOwnerId()))
	}

	return s
}

func (r *PodcastRepository) First(ctx context.Context, filter *repositories.PodcastFilter) (*repositories.Podcast, error) {
	s := r.selectQuery(filter)
	s.Limit(1)

	query, args := s.BuildWithFlavor(sqlbuilder.PostgreSQL)
	logging.Logger.Debugf("query: %s, args: %+v", query, args)
	row := r.db.QueryRowContext(ctx, query, args...)

	podcast := &postgresPodcast{}
	err := podcast.scan(row)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("scanning row: %w", err)
	}

	return podcast.Map(), nil
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

func (r *PodcastRepository) List(ctx context.Context, filter *repositories.PodcastFilter) ([]*repositories.Podcast, int, error) {
	s := r.selectQuery(filter)
	s.SelectMore("count(*) over() as total_count")

	query, args := s.BuildWithFlavor(sqlbuilder.PostgreSQL)
	logging.Logger.Debugf("query: %s, args: %+v", query, args)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying db: %w", err)
	}
	defer utils.PanicOnError(rows.Close, "closing rows")

	var podcasts []*repositories.Podcast
	var totalCount int
	for rows.Next() {
		podcast := &postgresPodcast{}
		err := rows.Scan(&podcast.id, &podcast.createdAt, &podcast.updatedAt, &podcast.xmin, &podcast.ownerId, &podcast.title, &podcast.description, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning row: %w", err)
		}
		podcasts = append(podcasts, podcast.Map())
	}

	return podcasts, totalCount, nil
}

func (r *PodcastRepository) Insert(podcast *repositories.Podcast) {
	r.changeTracker.Add(change.NewEntry(change.Added, r.entityType, podcast))
}

func (r *PodcastRepository) ExecuteInsert(ctx context.Context, tx *sql.Tx, podcast *repositories.Podcast) error {
	mapped := mapPodcast(podcast)

	s := sqlbuilder.InsertInto("podcasts").
		Cols(
			"created_at",
			"updated_at",
			"owner_id",
			"title",
			"description",
		).
		Values(
			mapped.createdAt,
			mapped.updatedAt,
			mapped.ownerId,
			mapped.title,
			mapped.description,
		)

	s.Returning("id", "xmin")

	query, args := s.BuildWithFlavor(sqlbuilder.PostgreSQL)
	logging.Logger.Debugf("query: %s, args: %+v", query, args)
	row := tx.QueryRowContext(ctx, query, args...)

	var id int64
	var xmin uint32

	err := row.Scan(&id, &xmin)
	if err != nil {
		return fmt.Errorf("inserting podcast: %w", err)
	}

	podcast.SetId(id)
	podcast.SetVersion(xmin)
	podcast.ClearChanges()
	return nil
}

func (r *PodcastRepository) Update(podcast *repositories.Podcast) {
	r.changeTracker.Add(change.NewEntry(change.Updated, r.entityType, podcast))
}

func (r *PodcastRepository) ExecuteUpdate(ctx context.Context, tx *sql.Tx, podcast *repositories.Podcast) error {
	if !podcast.HasChanges() {
		return nil
	}

	mapped := mapPodcast(podcast)

	s := sqlbuilder.Update("podcasts")
	s.Where(s.Equal("id", podcast.GetId()))
	s.Where(s.Equal("xmin", podcast.GetVersion()))

	for _, field := range podcast.GetChanges() {
		switch field {
		case repositories.PodcastChangeTitle:
			s.SetMore(s.Assign("title", mapped.title))
		case repositories.PodcastChangeDescription:
			s.SetMore(s.Assign("description", mapped.description))
		case repositories.PodcastChangeOwner:
			s.SetMore(s.Assign("owner_id", mapped.ownerId))
		default:
			panic(fmt.Errorf("unknown podcast change: %d", field))
		}
	}

	s.Returning("xmin")
	query, args := s.BuildWithFlavor(sqlbuilder.PostgreSQL)
	logging.Logger.Debugf("query: %s, args: %+v", query, args)
	row := tx.QueryRowContext(ctx, query, args...)

	var xmin uint32

	err := row.Scan(&xmin)
	if errors.Is(err, sql.ErrNoRows) {
		// no row was updated, which means the row was either already deleted or concurrently updated
		return fmt.Errorf("updating podcast: %w", apiError.ErrApiConcurrentUpdate)
	}

	if err != nil {
		return fmt.Errorf("updating podcast: %w", err)
	}

	podcast.SetVersion(xmin)
	podcast.ClearChanges()
	return nil
}

func (r *PodcastRepository) Delete(podcast *repositories.Podcast) {
	r.changeTracker.Add(change.NewEntry(change.Deleted, r.entityType, podcast))
}

func (r *PodcastRepository) ExecuteDelete(ctx context.Context, tx *sql.Tx, podcast *repositories.Podcast) error {
	s := sqlbuilder.DeleteFrom("podcasts")
	s.Where(s.Equal("id", podcast.GetId()))

	query, args := s.BuildWithFlavor(sqlbuilder.PostgreSQL)
	logging.Logger.Debugf("query: %s, args: %+v", query, args)
	_, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting podcast: %w", err)
	}

	return nil
}
