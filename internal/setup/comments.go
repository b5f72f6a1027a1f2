package setup

import (
	"context"
	"fmt"

	"github.com/The127/ioc"
	"github.com/podhaven/podhaven/internal/config"
	"github.com/podhaven/podhaven/internal/services/commentstore"
)

func Comments(dc *ioc.DependencyCollection, c config.CommentStoreConfig) {
	service := newCommentService(c)

	ioc.RegisterSingleton(dc, func(_ *ioc.DependencyProvider) commentstore.Service {
		return service
	})
}

func newCommentService(c config.CommentStoreConfig) commentstore.Service {
	switch c.Mode {
	case config.CommentStoreModeInMemory:
		return commentstore.NewInMemoryService()

	case config.CommentStoreModeDynamoDb:
		service, err := commentstore.NewDynamoService(context.Background(), c.Dynamo)
		if err != nil {
			panic(fmt.Errorf("failed to create dynamodb comment store: %w", err))
		}
		return service

	default:
		panic(fmt.Errorf("unsupported comment store mode: %s", c.Mode))
	}
}
