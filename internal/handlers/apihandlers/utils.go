package apihandlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/podhaven/podhaven/internal/middlewares/authentication"
	"github.com/podhaven/podhaven/internal/utils/apiError"
)

// requireUser rejects unauthenticated requests. When it returns false
// the response has already been written.
func requireUser(w http.ResponseWriter, r *http.Request) (authentication.CurrentUser, bool) {
	currentUser := authentication.GetCurrentUser(r.Context())
	if !currentUser.IsAuthenticated {
		apiError.HandleHttpError(w, apiError.ErrApiUnauthorized)
		return authentication.CurrentUser{}, false
	}

	return currentUser, true
}

func pathId(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	vars := mux.Vars(r)

	id, err := strconv.ParseInt(vars[name], 10, 64)
	if err != nil {
		apiError.HandleHttpError(w, fmt.Errorf("%s is not a valid id: %w", name, apiError.ErrApiBadRequest))
		return 0, false
	}

	return id, true
}
