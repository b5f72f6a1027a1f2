package commands

import (
	"context"
	"fmt"

	"github.com/The127/ioc"
	"github.com/google/uuid"
	db "github.com/podhaven/podhaven/internal/database"
	"github.com/podhaven/podhaven/internal/middlewares"
	"github.com/podhaven/podhaven/internal/repositories"
	"github.com/podhaven/podhaven/internal/services/clock"
	"github.com/podhaven/podhaven/internal/services/commentstore"
	"github.com/podhaven/podhaven/internal/utils/apiError"
)

type AddComment struct {
	UserId     uuid.UUID
	AuthorName string
	EpisodeId  int64
	Text       string
}

type AddCommentResponse struct {
	CommentId string
}

// HandleAddComment writes a comment to the document store. The author
// display name is snapshotted into the comment so reads never have to
// join back to the metadata store.
func HandleAddComment(ctx context.Context, command AddComment) (*AddCommentResponse, error) {
	scope := middlewares.GetScope(ctx)
	dbContext := ioc.GetDependency[db.Context](scope)
	commentStore := ioc.GetDependency[commentstore.Service](scope)
	clockService := ioc.GetDependency[clock.Service](scope)

	episode, err := dbContext.Episodes().First(ctx, repositories.NewEpisodeFilter().ById(command.EpisodeId))
	if err != nil {
		return nil, fmt.Errorf("getting episode: %w", err)
	}
	if episode == nil {
		return nil, fmt.Errorf("episode %d: %w", command.EpisodeId, apiError.ErrApiEpisodeNotFound)
	}

	comment := commentstore.Comment{
		EpisodeId:  episode.GetId(),
		CommentId:  uuid.NewString(),
		PodcastId:  episode.GetPodcastId(),
		AuthorId:   command.UserId.String(),
		AuthorName: command.AuthorName,
		Text:       command.Text,
		PostedAt:   clockService.Now(),
	}

	err = commentStore.Put(ctx, comment)
	if err != nil {
		return nil, fmt.Errorf("saving comment: %w", err)
	}

	return &AddCommentResponse{
		CommentId: comment.CommentId,
	}, nil
}
