package setup

import (
	"context"
	"fmt"

	"github.com/The127/ioc"
	"github.com/podhaven/podhaven/internal/config"
	"github.com/podhaven/podhaven/internal/services/audiostore"
)

// Audio registers the object store gateway. The client is constructed
// once here and shared by every request, there is no lazy init.
func Audio(dc *ioc.DependencyCollection, c config.AudioStoreConfig) {
	service := newAudioService(c)

	ioc.RegisterSingleton(dc, func(_ *ioc.DependencyProvider) audiostore.Service {
		return service
	})
}

func newAudioService(c config.AudioStoreConfig) audiostore.Service {
	switch c.Mode {
	case config.AudioStoreModeInMemory:
		return audiostore.NewInMemoryService()

	case config.AudioStoreModeDirectory:
		return audiostore.NewDirectoryService(c.Directory)

	case config.AudioStoreModeS3:
		service, err := audiostore.NewS3Service(context.Background(), c.S3)
		if err != nil {
			panic(fmt.Errorf("failed to create s3 audio store: %w", err))
		}
		return service

	default:
		panic(fmt.Errorf("unsupported audio store mode: %s", c.Mode))
	}
}
