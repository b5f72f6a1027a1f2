package commands

import (
	"context"
	"fmt"

	"github.com/The127/ioc"
	"github.com/google/uuid"
	db "github.com/podhaven/podhaven/internal/database"
	"github.com/podhaven/podhaven/internal/middlewares"
)

type PatchPodcast struct {
	UserId    uuid.UUID
	PodcastId int64

	Title       *string
	Description *string
}

type PatchPodcastResponse struct{}

func HandlePatchPodcast(ctx context.Context, command PatchPodcast) (*PatchPodcastResponse, error) {
	scope := middlewares.GetScope(ctx)
	dbContext := ioc.GetDependency[db.Context](scope)

	podcast, err := getOwnedPodcast(ctx, dbContext, command.PodcastId, command.UserId)
	if err != nil {
		return nil, err
	}

	if command.Title != nil {
		podcast.SetTitle(*command.Title)
	}

	if command.Description != nil {
		podcast.SetDescription(*command.Description)
	}

	dbContext.Podcasts().Update(podcast)

	err = dbContext.SaveChanges(ctx)
	if err != nil {
		return nil, fmt.Errorf("saving podcast: %w", err)
	}

	return &PatchPodcastResponse{}, nil
}
