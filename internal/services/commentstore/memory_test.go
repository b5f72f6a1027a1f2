package commentstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type MemoryServiceTestSuite struct {
	suite.Suite
	service Service
}

func TestMemoryServiceTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(MemoryServiceTestSuite))
}

func (s *MemoryServiceTestSuite) SetupTest() {
	s.service = NewInMemoryService()
}

func (s *MemoryServiceTestSuite) TestListIsNewestFirst() {
	// arrange
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		err := s.service.Put(ctx, Comment{
			EpisodeId: 7,
			CommentId: id,
			Text:      id,
			PostedAt:  base.Add(time.Duration(i) * time.Minute),
		})
		s.Require().NoError(err)
	}

	// act
	comments, err := s.service.List(ctx, 7)

	// assert
	s.NoError(err)
	s.Require().Len(comments, 3)
	s.Equal("c", comments[0].CommentId)
	s.Equal("b", comments[1].CommentId)
	s.Equal("a", comments[2].CommentId)
}

func (s *MemoryServiceTestSuite) TestListIsScopedToEpisode() {
	// arrange
	ctx := context.Background()
	err := s.service.Put(ctx, Comment{EpisodeId: 7, CommentId: "a"})
	s.Require().NoError(err)
	err = s.service.Put(ctx, Comment{EpisodeId: 8, CommentId: "b"})
	s.Require().NoError(err)

	// act
	comments, err := s.service.List(ctx, 7)

	// assert
	s.NoError(err)
	s.Len(comments, 1)
}

func (s *MemoryServiceTestSuite) TestGetMissingReturnsNil() {
	// act
	comment, err := s.service.Get(context.Background(), 7, "missing")

	// assert
	s.NoError(err)
	s.Nil(comment)
}

func (s *MemoryServiceTestSuite) TestPutIsAnUpsert() {
	// arrange
	ctx := context.Background()
	err := s.service.Put(ctx, Comment{EpisodeId: 7, CommentId: "a", Text: "before"})
	s.Require().NoError(err)

	// act
	err = s.service.Put(ctx, Comment{EpisodeId: 7, CommentId: "a", Text: "after"})
	s.Require().NoError(err)

	// assert
	comment, err := s.service.Get(ctx, 7, "a")
	s.NoError(err)
	s.Require().NotNil(comment)
	s.Equal("after", comment.Text)
}
