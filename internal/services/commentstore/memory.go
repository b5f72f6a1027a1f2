package commentstore

import (
	"context"
	"sort"
	"sync"
)

type memoryService struct {
	comments map[int64]map[string]Comment
	mu       *sync.RWMutex
}

func NewInMemoryService() Service {
	return &memoryService{
		comments: make(map[int64]map[string]Comment),
		mu:       &sync.RWMutex{},
	}
}

func (m *memoryService) List(_ context.Context, episodeId int64) ([]Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []Comment
	for _, comment := range m.comments[episodeId] {
		result = append(result, comment)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].PostedAt.After(result[j].PostedAt)
	})

	return result, nil
}

func (m *memoryService) Get(_ context.Context, episodeId int64, commentId string) (*Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	comment, ok := m.comments[episodeId][commentId]
	if !ok {
		return nil, nil
	}

	return &comment, nil
}

func (m *memoryService) Put(_ context.Context, comment Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	episodeComments, ok := m.comments[comment.EpisodeId]
	if !ok {
		episodeComments = make(map[string]Comment)
		m.comments[comment.EpisodeId] = episodeComments
	}

	episodeComments[comment.CommentId] = comment
	return nil
}
