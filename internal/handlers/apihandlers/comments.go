package apihandlers

import (
	"encoding/json"
	"net/http"

	"github.com/The127/ioc"
	"github.com/The127/mediatr"
	"github.com/gorilla/mux"
	"github.com/podhaven/podhaven/internal/commands"
	"github.com/podhaven/podhaven/internal/middlewares"
	"github.com/podhaven/podhaven/internal/utils/apiError"
	"github.com/podhaven/podhaven/internal/utils/decoding"
	"github.com/podhaven/podhaven/internal/utils/validate"
)

type AddCommentRequest struct {
	Text string `json:"text" validate:"required"`
}

type AddCommentResponse struct {
	CommentId string `json:"commentId"`
}

func AddComment(w http.ResponseWriter, r *http.Request) {
	currentUser, ok := requireUser(w, r)
	if !ok {
		return
	}

	episodeId, ok := pathId(w, r, "episodeId")
	if !ok {
		return
	}

	var dto AddCommentRequest
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

	response, err := mediatr.Send[*commands.AddCommentResponse](ctx, mediator, commands.AddComment{
		UserId:     currentUser.UserId,
		AuthorName: currentUser.Name,
		EpisodeId:  episodeId,
		Text:       dto.Text,
	})
	if err != nil {
		apiError.HandleHttpError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(AddCommentResponse{
		CommentId: response.CommentId,
	})
}

type EditCommentRequest struct {
	Text string `json:"text" validate:"required"`
}

func EditComment(w http.ResponseWriter, r *http.Request) {
	currentUser, ok := requireUser(w, r)
	if !ok {
		return
	}

	episodeId, ok := pathId(w, r, "episodeId")
	if !ok {
		return
	}

	vars := mux.Vars(r)
	commentId := vars["commentId"]

	var dto EditCommentRequest
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

	_, err = mediatr.Send[*commands.EditCommentResponse](ctx, mediator, commands.EditComment{
		UserId:    currentUser.UserId,
		EpisodeId: episodeId,
		CommentId: commentId,
		Text:      dto.Text,
	})
	if err != nil {
		apiError.HandleHttpError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
