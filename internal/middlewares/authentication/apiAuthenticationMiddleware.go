package authentication

import (
	"fmt"
	"net/http"

	"github.com/The127/ioc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/podhaven/podhaven/internal/config"
	"github.com/podhaven/podhaven/internal/database"
	"github.com/podhaven/podhaven/internal/middlewares"
	"github.com/podhaven/podhaven/internal/repositories"
	"github.com/podhaven/podhaven/internal/utils/apiError"
)

type apiClaims struct {
	jwt.RegisteredClaims
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// ApiAuthenticationMiddleware resolves the bearer token into a
// CurrentUser. Requests without a token continue anonymously, requests
// with an invalid token are rejected. Users are created on first sight.
func ApiAuthenticationMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			currentUser, err := getApiCurrentUser(r)
			if err != nil {
				apiError.HandleHttpError(w, err)
				return
			}

			if currentUser == nil {
				currentUser = &CurrentUser{
					UserId: uuid.Nil,
					Roles:  []string{},
				}
			}

			ctx := ContextWithCurrentUser(r.Context(), *currentUser)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func getApiCurrentUser(r *http.Request) (*CurrentUser, error) {
	tokenStr, err := extractBearerToken(r)
	if err != nil {
		return nil, nil
	}

	var claims apiClaims
	_, err = jwt.ParseWithClaims(tokenStr, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.C.Auth.JwtSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to verify token: %w", apiError.ErrApiUnauthorized)
	}

	userId, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("token subject is not a user id: %w", apiError.ErrApiUnauthorized)
	}

	ctx := r.Context()
	scope := middlewares.GetScope(ctx)
	dbContext := ioc.GetDependency[database.Context](scope)

	user, err := dbContext.Users().First(ctx, repositories.NewUserFilter().ById(userId))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user == nil {
		user = repositories.NewUser(userId, claims.Name, claims.Email)
		dbContext.Users().Insert(user)

		err = dbContext.SaveChanges(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to insert user: %w", err)
		}
	}

	return &CurrentUser{
		UserId:          user.GetId(),
		Name:            user.GetDisplayName(),
		Roles:           claims.Roles,
		IsAuthenticated: true,
	}, nil
}
