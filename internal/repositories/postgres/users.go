package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"
	"github.com/podhaven/podhaven/internal/change"
	"github.com/podhaven/podhaven/internal/logging"
	"github.com/podhaven/podhaven/internal/repositories"
	"github.com/podhaven/podhaven/internal/utils"
	"github.com/podhaven/podhaven/internal/utils/apiError"
)

type postgresUser struct {
	id          uuid.UUID
	createdAt   time.Time
	updatedAt   time.Time
	xmin        uint32
	displayName string
	email       string
}

func mapUser(u *repositories.User) *postgresUser {
	var xmin uint32
	if v, ok := u.GetVersion().(uint32); ok {
		xmin = v
	}

	return &postgresUser{
		id:          u.GetId(),
		createdAt:   u.GetCreatedAt(),
		updatedAt:   u.GetUpdatedAt(),
		xmin:        xmin,
		displayName: u.GetDisplayName(),
		email:       u.GetEmail(),
	}
}

func (u *postgresUser) Map() *repositories.User {
	return repositories.NewUserFromDB(
		u.id,
		u.displayName,
		u.email,
		u.createdAt,
		u.updatedAt,
		u.xmin,
	)
}

func (u *postgresUser) scan(row RowScanner) error {
	return row.Scan(
		&u.id,
		&u.createdAt,
		&u.updatedAt,
		&u.xmin,
		&u.displayName,
		&u.email,
	)
}

type UserRepository struct {
	db            *sql.DB
	changeTracker *change.Tracker
	entityType    int
}

func NewPostgresUserRepository(db *sql.DB, changeTracker *change.Tracker, entityType int) *UserRepository {
	return &UserRepository{
		db:            db,
		changeTracker: changeTracker,
		entityType:    entityType,
	}
}

func (r *UserRepository) selectQuery(filter *repositories.UserFilter) *sqlbuilder.SelectBuilder {
	s := sqlbuilder.Select(
		"users.id",
		"users.created_at",
		"users.updated_at",
		"users.xmin",
		"users.display_name",
		"users.email",
	).From("users")

	if filter.HasId() {
		s.Where(s.Equal("users.id", filter.GetId()))
	}

	if filter.HasEmail() {
		s.Where(s.Equal("users.email", filter.GetEmail()))
	}

	return s
}

func (r *UserRepository) First(ctx context.Context, filter *repositories.UserFilter) (*repositories.User, error) {
	s := r.selectQuery(filter)
	s.Limit(1)

	query, args := s.BuildWithFlavor(sqlbuilder.PostgreSQL)
	logging.Logger.Debugf("query: %s, args: %+v", query, args)
	row := r.db.QueryRowContext(ctx, query, args...)

	user := &postgresUser{}
	err := user.scan(row)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("scanning row: %w", err)
	}

	return user.Map(), nil
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

func (r *UserRepository) List(ctx context.Context, filter *repositories.UserFilter) ([]*repositories.User, int, error) {
	s := r.selectQuery(filter)
	s.SelectMore("count(*) over() as total_count")

	query, args := s.BuildWithFlavor(sqlbuilder.PostgreSQL)
	logging.Logger.Debugf("query: %s, args: %+v", query, args)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying db: %w", err)
	}
	defer utils.PanicOnError(rows.Close, "closing rows")

	var users []*repositories.User
	var totalCount int
	for rows.Next() {
		user := &postgresUser{}
		err := rows.Scan(&user.id, &user.createdAt, &user.updatedAt, &user.xmin, &user.displayName, &user.email, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning row: %w", err)
		}
		users = append(users, user.Map())
	}

	return users, totalCount, nil
}

func (r *UserRepository) Insert(user *repositories.User) {
	r.changeTracker.Add(change.NewEntry(change.Added, r.entityType, user))
}

func (r *UserRepository) ExecuteInsert(ctx context.Context, tx *sql.Tx, user *repositories.User) error {
	mapped := mapUser(user)

	s := sqlbuilder.InsertInto("users").
		Cols(
			"id",
			"created_at",
			"updated_at",
			"display_name",
			"email",
		).
		Values(
			mapped.id,
			mapped.createdAt,
			mapped.updatedAt,
			mapped.displayName,
			mapped.email,
		)

	s.Returning("xmin")

	query, args := s.BuildWithFlavor(sqlbuilder.PostgreSQL)
	logging.Logger.Debugf("query: %s, args: %+v", query, args)
	row := tx.QueryRowContext(ctx, query, args...)

	var xmin uint32

	err := row.Scan(&xmin)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}

	user.SetVersion(xmin)
	user.ClearChanges()
	return nil
}

func (r *UserRepository) Update(user *repositories.User) {
	r.changeTracker.Add(change.NewEntry(change.Updated, r.entityType, user))
}

func (r *UserRepository) ExecuteUpdate(ctx context.Context, tx *sql.Tx, user *repositories.User) error {
	if !user.HasChanges() {
		return nil
	}

	mapped := mapUser(user)

	s := sqlbuilder.Update("users")
	s.Where(s.Equal("id", user.GetId()))
	s.Where(s.Equal("xmin", user.GetVersion()))

	for _, field := range user.GetChanges() {
		switch field {
		case repositories.UserChangeDisplayName:
			s.SetMore(s.Assign("display_name", mapped.displayName))
		case repositories.UserChangeEmail:
			s.SetMore(s.Assign("email", mapped.email))
		default:
			panic(fmt.Errorf("unknown user change: %d", field))
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
		return fmt.Errorf("updating user: %w", apiError.ErrApiConcurrentUpdate)
	}

	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}

	user.SetVersion(xmin)
	user.ClearChanges()
	return nil
}

func (r *UserRepository) Delete(user *repositories.User) {
	r.changeTracker.Add(change.NewEntry(change.Deleted, r.entityType, user))
}

func (r *UserRepository) ExecuteDelete(ctx context.Context, tx *sql.Tx, user *repositories.User) error {
	s := sqlbuilder.DeleteFrom("users")
	s.Where(s.Equal("id", user.GetId()))

	query, args := s.BuildWithFlavor(sqlbuilder.PostgreSQL)
	logging.Logger.Debugf("query: %s, args: %+v", query, args)
	_, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	return nil
}
