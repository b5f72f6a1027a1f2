package authentication

import (
	"context"
	"slices"

	"github.com/google/uuid"
)

const (
	RoleAdmin = "admin"
)

type CurrentUser struct {
	UserId          uuid.UUID
	Name            string
	Roles           []string
	IsAuthenticated bool
}

func (c CurrentUser) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

var CurrentUserContextKey = &CurrentUser{}

func ContextWithCurrentUser(ctx context.Context, user CurrentUser) context.Context {
	return context.WithValue(ctx, CurrentUserContextKey, user)
}

func GetCurrentUser(ctx context.Context) CurrentUser {
	value, ok := ctx.Value(CurrentUserContextKey).(CurrentUser)
	if !ok {
		panic("current user not found")
	}
	return value
}
