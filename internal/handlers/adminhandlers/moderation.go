package adminhandlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/The127/ioc"
	"github.com/The127/mediatr"
	"github.com/gorilla/mux"
	"github.com/podhaven/podhaven/internal/commands"
	"github.com/podhaven/podhaven/internal/handlers"
	"github.com/podhaven/podhaven/internal/middlewares"
	"github.com/podhaven/podhaven/internal/middlewares/authentication"
	"github.com/podhaven/podhaven/internal/queries"
	"github.com/podhaven/podhaven/internal/repositories"
	"github.com/podhaven/podhaven/internal/utils/apiError"
	"github.com/podhaven/podhaven/internal/utils/decoding"
	"github.com/podhaven/podhaven/internal/utils/validate"
)

// requireAdmin rejects callers without the admin role. When it returns
// false the response has already been written.
func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	currentUser := authentication.GetCurrentUser(r.Context())
	if !currentUser.IsAuthenticated {
		apiError.HandleHttpError(w, apiError.ErrApiUnauthorized)
		return false
	}

	if !currentUser.HasRole(authentication.RoleAdmin) {
		apiError.HandleHttpError(w, apiError.ErrApiForbidden)
		return false
	}

	return true
}

type ListPendingEpisodesResponse handlers.PagedResponse[ListPendingEpisodesResponseItem]

type ListPendingEpisodesResponseItem struct {
	Id              int64     `json:"id"`
	PodcastId       int64     `json:"podcastId"`
	PodcastTitle    string    `json:"podcastTitle"`
	Title           string    `json:"title"`
	DurationMinutes int       `json:"durationMinutes"`
	ReleaseDate     time.Time `json:"releaseDate"`
}

func ListPendingEpisodes(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	ctx := r.Context()
	scope := middlewares.GetScope(ctx)
	mediator := ioc.GetDependency[mediatr.Mediator](scope)

	pending, err := mediatr.Send[*queries.ListPendingEpisodesResponse](ctx, mediator, queries.ListPendingEpisodes{})
	if err != nil {
		apiError.HandleHttpError(w, err)
		return
	}

	response := ListPendingEpisodesResponse{
		Items: make([]ListPendingEpisodesResponseItem, len(pending.Items)),
		Total: pending.Total,
	}

	for i, item := range pending.Items {
		response.Items[i] = ListPendingEpisodesResponseItem{
			Id:              item.Id,
			PodcastId:       item.PodcastId,
			PodcastTitle:    item.PodcastTitle,
			Title:           item.Title,
			DurationMinutes: item.DurationMinutes,
			ReleaseDate:     item.ReleaseDate,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	err = json.NewEncoder(w).Encode(response)
	if err != nil {
		apiError.HandleHttpError(w, err)
		return
	}
}

type ReviewEpisodeRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approved rejected"`
}

func ReviewEpisode(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	vars := mux.Vars(r)
	episodeId, err := strconv.ParseInt(vars["episodeId"], 10, 64)
	if err != nil {
		apiError.HandleHttpError(w, fmt.Errorf("episodeId is not a valid id: %w", apiError.ErrApiBadRequest))
		return
	}

	var dto ReviewEpisodeRequest
	err = decoding.HttpBodyAsJson(w, r, &dto)
	if err != nil {
		apiError.HandleHttpError(w, err)
		return
	}

	err = validate.Validate(dto)
	if err != nil {
		apiError.HandleHttpError(w, err)
		return
	}

	decision, err := repositories.EpisodeStatusFromString(dto.Decision)
	if err != nil {
		apiError.HandleHttpError(w, fmt.Errorf("invalid decision: %w", apiError.ErrApiBadRequest))
		return
	}

	ctx := r.Context()
	scope := middlewares.GetScope(ctx)
	mediator := ioc.GetDependency[mediatr.Mediator](scope)

	_, err = mediatr.Send[*commands.ReviewEpisodeResponse](ctx, mediator, commands.ReviewEpisode{
		EpisodeId: episodeId,
		Decision:  decision,
	})
	if err != nil {
		apiError.HandleHttpError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
