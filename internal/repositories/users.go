package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/podhaven/podhaven/internal/change"
	"github.com/podhaven/podhaven/internal/utils/pointer"
)

type UserChange int

const (
	UserChangeDisplayName UserChange = iota
	UserChangeEmail
)

// User rows mirror the accounts of the identity provider. The id is the
// token subject, so it is assigned by the caller instead of the store.
type User struct {
	change.List[UserChange]

	id        uuid.UUID
	createdAt time.Time
	updatedAt time.Time
	version   any

	displayName string
	email       string
}

func NewUser(id uuid.UUID, displayName string, email string) *User {
	return &User{
		List:        change.NewChanges[UserChange](),
		id:          id,
		createdAt:   time.Now(),
		updatedAt:   time.Now(),
		version:     nil,
		displayName: displayName,
		email:       email,
	}
}

func NewUserFromDB(id uuid.UUID, displayName string, email string, createdAt time.Time, updatedAt time.Time, version any) *User {
	return &User{
		List:        change.NewChanges[UserChange](),
		id:          id,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
		version:     version,
		displayName: displayName,
		email:       email,
	}
}

func (u *User) GetId() uuid.UUID {
	return u.id
}

func (u *User) GetCreatedAt() time.Time {
	return u.createdAt
}

func (u *User) GetUpdatedAt() time.Time {
	return u.updatedAt
}

func (u *User) GetVersion() any {
	return u.version
}

// SetVersion is only supposed to be called by the repository implementations.
func (u *User) SetVersion(version any) {
	u.version = version
}

func (u *User) GetDisplayName() string {
	return u.displayName
}

func (u *User) SetDisplayName(displayName string) {
	if u.displayName == displayName {
		return
	}

	u.displayName = displayName
	u.TrackChange(UserChangeDisplayName)
}

func (u *User) GetEmail() string {
	return u.email
}

func (u *User) SetEmail(email string) {
	if u.email == email {
		return
	}

	u.email = email
	u.TrackChange(UserChangeEmail)
}

type UserFilter struct {
	id    *uuid.UUID
	email *string
}

func NewUserFilter() *UserFilter {
	return &UserFilter{}
}

func (f *UserFilter) clone() *UserFilter {
	cloned := *f
	return &cloned
}

func (f *UserFilter) ById(id uuid.UUID) *UserFilter {
	cloned := f.clone()
	cloned.id = &id
	return cloned
}

func (f *UserFilter) HasId() bool {
	return f.id != nil
}

func (f *UserFilter) GetId() uuid.UUID {
	return pointer.DerefOrZero(f.id)
}

func (f *UserFilter) ByEmail(email string) *UserFilter {
	cloned := f.clone()
	cloned.email = &email
	return cloned
}

func (f *UserFilter) HasEmail() bool {
	return f.email != nil
}

func (f *UserFilter) GetEmail() string {
	return pointer.DerefOrZero(f.email)
}

type UserRepository interface {
	Single(ctx context.Context, filter *UserFilter) (*User, error)
	First(ctx context.Context, filter *UserFilter) (*User, error)
	List(ctx context.Context, filter *UserFilter) ([]*User, int, error)
	Insert(user *User)
	Update(user *User)
	Delete(user *User)
}
