package apihandlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/The127/ioc"
	"github.com/The127/mediatr"
	"github.com/google/uuid"
	"github.com/podhaven/podhaven/internal/commands"
	"github.com/podhaven/podhaven/internal/handlers"
	"github.com/podhaven/podhaven/internal/middlewares"
	"github.com/podhaven/podhaven/internal/middlewares/authentication"
	"github.com/podhaven/podhaven/internal/queries"
	"github.com/podhaven/podhaven/internal/utils/apiError"
	"github.com/podhaven/podhaven/internal/utils/decoding"
	"github.com/podhaven/podhaven/internal/utils/validate"
)

type CreatePodcastRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

type CreatePodcastResponse struct {
	Id int64 `json:"id"`
}

func CreatePodcast(w http.ResponseWriter, r *http.Request) {
	currentUser, ok := requireUser(w, r)
	if !ok {
		return
	}

	var dto CreatePodcastRequest
	err := decoding.HttpBodyAsJson(w, r, &dto)
	if err != nil {
		apiError.HandleHttpError(w, err)
		return
	}

	err = validate.Validate(dto)
	if err != nil {
		apiError.HandleHttpError(w, err)
		return
	}

	ctx := r.Context()
	scope := middlewares.GetScope(ctx)
	mediator := ioc.GetDependency[mediatr.Mediator](scope)

	response, err := mediatr.Send[*commands.CreatePodcastResponse](ctx, mediator, commands.CreatePodcast{
		UserId:      currentUser.UserId,
		Title:       dto.Title,
		Description: dto.Description,
	})
	if err != nil {
		apiError.HandleHttpError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(CreatePodcastResponse{
		Id: response.Id,
	})
}

type PatchPodcastRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

func PatchPodcast(w http.ResponseWriter, r *http.Request) {
	currentUser, ok := requireUser(w, r)
	if !ok {
		return
	}

	podcastId, ok := pathId(w, r, "podcastId")
	if !ok {
		return
	}

	var dto PatchPodcastRequest
	err := decoding.HttpBodyAsJson(w, r, &dto)
	if err != nil {
		apiError.HandleHttpError(w, err)
		return
	}

	ctx := r.Context()
	scope := middlewares.GetScope(ctx)
	mediator := ioc.GetDependency[mediatr.Mediator](scope)

	_, err = mediatr.Send[*commands.PatchPodcastResponse](ctx, mediator, commands.PatchPodcast{
		UserId:      currentUser.UserId,
		PodcastId:   podcastId,
		Title:       dto.Title,
		Description: dto.Description,
	})
	if err != nil {
		apiError.HandleHttpError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func DeletePodcast(w http.ResponseWriter, r *http.Request) {
	currentUser, ok := requireUser(w, r)
	if !ok {
		return
	}

	podcastId, ok := pathId(w, r, "podcastId")
	if !ok {
		return
	}

	ctx := r.Context()
	scope := middlewares.GetScope(ctx)
	mediator := ioc.GetDependency[mediatr.Mediator](scope)

	_, err := mediatr.Send[*commands.DeletePodcastResponse](ctx, mediator, commands.DeletePodcast{
		UserId:    currentUser.UserId,
		PodcastId: podcastId,
	})
	if err != nil {
		apiError.HandleHttpError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type ListPodcastsResponse handlers.PagedResponse[ListPodcastsResponseItem]

type ListPodcastsResponseItem struct {
	Id          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func ListPodcasts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scope := middlewares.GetScope(ctx)
	mediator := ioc.GetDependency[mediatr.Mediator](scope)

	var ownerId *uuid.UUID
	if r.URL.Query().Get("mine") == "true" {
		currentUser, ok := requireUser(w, r)
		if !ok {
			return
		}
		ownerId = &currentUser.UserId
	}

	podcasts, err := mediatr.Send[*queries.ListPodcastsResponse](ctx, mediator, queries.ListPodcasts{
		OwnerId: ownerId,
	})
	if err != nil {
		apiError.HandleHttpError(w, err)
		return
	}

	response := ListPodcastsResponse{
		Items: make([]ListPodcastsResponseItem, len(podcasts.Items)),
		Total: podcasts.Total,
	}

	for i, item := range podcasts.Items {
		response.Items[i] = ListPodcastsResponseItem{
			Id:          item.Id,
			Title:       item.Title,
			Description: item.Description,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	err = json.NewEncoder(w).Encode(response)
	if err != nil {
		apiError.HandleHttpError(w, err)
		return
	}
}

type GetPodcastResponse struct {
	Id          int64                        `json:"id"`
	Title       string                       `json:"title"`
	Description string                       `json:"description"`
	OwnerId     *uuid.UUID                   `json:"ownerId"`
	CreatedAt   time.Time                    `json:"createdAt"`
	Episodes    []GetPodcastResponseEpisode  `json:"episodes"`
}

type GetPodcastResponseEpisode struct {
	Id              int64     `json:"id"`
	Title           string    `json:"title"`
	DurationMinutes int       `json:"durationMinutes"`
	Status          string    `json:"status"`
	ReleaseDate     time.Time `json:"releaseDate"`
	PlayCount       int64     `json:"playCount"`
}

func GetPodcast(w http.ResponseWriter, r *http.Request) {
	podcastId, ok := pathId(w, r, "podcastId")
	if !ok {
		return
	}

	ctx := r.Context()
	scope := middlewares.GetScope(ctx)
	mediator := ioc.GetDependency[mediatr.Mediator](scope)

	currentUser := authentication.GetCurrentUser(ctx)

	podcast, err := mediatr.Send[*queries.GetPodcastResponse](ctx, mediator, queries.GetPodcast{
		PodcastId: podcastId,
		CallerId:  currentUser.UserId,
	})
	if err != nil {
		apiError.HandleHttpError(w, err)
		return
	}

	response := GetPodcastResponse{
		Id:          podcast.Id,
		Title:       podcast.Title,
		Description: podcast.Description,
		OwnerId:     podcast.OwnerId,
		CreatedAt:   podcast.CreatedAt,
		Episodes:    make([]GetPodcastResponseEpisode, len(podcast.Episodes)),
	}

	for i, episode := range podcast.Episodes {
		response.Episodes[i] = GetPodcastResponseEpisode{
			Id:              episode.Id,
			Title:           episode.Title,
			DurationMinutes: episode.DurationMinutes,
			Status:          episode.Status,
			ReleaseDate:     episode.ReleaseDate,
			PlayCount:       episode.PlayCount,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	err = json.NewEncoder(w).Encode(response)
	if err != nil {
		apiError.HandleHttpError(w, err)
		return
	}
}
