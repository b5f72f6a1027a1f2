package adminhandlers

import (
	"encoding/json"
	"net/http"

	"github.com/The127/ioc"
	"github.com/The127/mediatr"
	"github.com/podhaven/podhaven/internal/middlewares"
	"github.com/podhaven/podhaven/internal/queries"
	"github.com/podhaven/podhaven/internal/utils/apiError"
)

type GetDashboardResponse struct {
	Podcasts        int `json:"podcasts"`
	Episodes        int `json:"episodes"`
	PendingEpisodes int `json:"pendingEpisodes"`
	Users           int `json:"users"`
	Subscriptions   int `json:"subscriptions"`
}

func GetDashboard(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	ctx := r.Context()
	scope := middlewares.GetScope(ctx)
	mediator := ioc.GetDependency[mediatr.Mediator](scope)

	dashboard, err := mediatr.Send[*queries.GetDashboardResponse](ctx, mediator, queries.GetDashboard{})
	if err != nil {
		apiError.HandleHttpError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	err = json.NewEncoder(w).Encode(GetDashboardResponse{
		Podcasts:        dashboard.Podcasts,
		Episodes:        dashboard.Episodes,
		PendingEpisodes: dashboard.PendingEpisodes,
		Users:           dashboard.Users,
		Subscriptions:   dashboard.Subscriptions,
	})
	if err != nil {
		apiError.HandleHttpError(w, err)
		return
	}
}
