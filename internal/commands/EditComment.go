package commands

import (
	"context"
	"fmt"

	"github.com/The127/ioc"
	"github.com/google/uuid"
	"github.com/podhaven/podhaven/internal/middlewares"
	"github.com/podhaven/podhaven/internal/services/clock"
	"github.com/podhaven/podhaven/internal/services/commentstore"
	"github.com/podhaven/podhaven/internal/utils/apiError"
)

type EditComment struct {
	UserId    uuid.UUID
	EpisodeId int64
	CommentId string
	Text      string
}

type EditCommentResponse struct{}

// HandleEditComment rewrites the text of an existing comment. Only the
// author may edit, and the timestamp is refreshed to the edit time.
func HandleEditComment(ctx context.Context, command EditComment) (*EditCommentResponse, error) {
	scope := middlewares.GetScope(ctx)
	commentStore := ioc.GetDependency[commentstore.Service](scope)
	clockService := ioc.GetDependency[clock.Service](scope)

	comment, err := commentStore.Get(ctx, command.EpisodeId, command.CommentId)
	if err != nil {
		return nil, fmt.Errorf("getting comment: %w", err)
	}
	if comment == nil {
		return nil, fmt.Errorf("comment %s: %w", command.CommentId, apiError.ErrApiCommentNotFound)
	}

	if comment.AuthorId != command.UserId.String() {
		return nil, fmt.Errorf("comment %s is not owned by %s: %w", command.CommentId, command.UserId, apiError.ErrApiForbidden)
	}

	comment.Text = command.Text
	comment.PostedAt = clockService.Now()

	err = commentStore.Put(ctx, *comment)
	if err != nil {
		return nil, fmt.Errorf("saving comment: %w", err)
	}

	return &EditCommentResponse{}, nil
}
