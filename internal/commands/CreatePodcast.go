package commands

import (
	"context"
	"fmt"

	"github.com/The127/ioc"
	"github.com/google/uuid"
	db "github.com/podhaven/podhaven/internal/database"
	"github.com/podhaven/podhaven/internal/middlewares"
	"github.com/podhaven/podhaven/internal/repositories"
)

type CreatePodcast struct {
	UserId      uuid.UUID
	Title       string
	Description string
}

type CreatePodcastResponse struct {
	Id int64
}

func HandleCreatePodcast(ctx context.Context, command CreatePodcast) (*CreatePodcastResponse, error) {
	scope := middlewares.GetScope(ctx)
	dbContext := ioc.GetDependency[db.Context](scope)

	podcast := repositories.NewPodcast(command.UserId, command.Title, command.Description)
	dbContext.Podcasts().Insert(podcast)

	err := dbContext.SaveChanges(ctx)
	if err != nil {
		return nil, fmt.Errorf("saving podcast: %w", err)
	}

	return &CreatePodcastResponse{
		Id: podcast.GetId(),
	}, nil
}
