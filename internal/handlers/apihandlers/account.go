package apihandlers

import (
	"net/http"

	"github.com/The127/ioc"
	"github.com/The127/mediatr"
	"github.com/podhaven/podhaven/internal/commands"
	"github.com/podhaven/podhaven/internal/middlewares"
	"github.com/podhaven/podhaven/internal/utils/apiError"
)

func DeleteAccount(w http.ResponseWriter, r *http.Request) {
	currentUser, ok := requireUser(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	scope := middlewares.GetScope(ctx)
	mediator := ioc.GetDependency[mediatr.Mediator](scope)

	_, err := mediatr.Send[*commands.DeleteAccountResponse](ctx, mediator, commands.DeleteAccount{
		UserId: currentUser.UserId,
	})
	if err != nil {
		apiError.HandleHttpError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
