package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
)

type MemoryStoreTestSuite struct {
	suite.Suite
	store Store
}

func TestMemoryStoreTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(MemoryStoreTestSuite))
}

func (s *MemoryStoreTestSuite) SetupTest() {
	s.store = NewMemoryStore()
}

func (s *MemoryStoreTestSuite) TestSetAndGet() {
	// arrange
	ctx := context.Background()

	// act
	err := s.store.Set(ctx, "key", "value")
	s.Require().NoError(err)

	value, ok, err := s.store.Get(ctx, "key")

	// assert
	s.NoError(err)
	s.True(ok)
	s.Equal("value", value)
}

func (s *MemoryStoreTestSuite) TestGetMissingKey() {
	// act
	value, ok, err := s.store.Get(context.Background(), "missing")

	// assert
	s.NoError(err)
	s.False(ok)
	s.Empty(value)
}

func (s *MemoryStoreTestSuite) TestDelete() {
	// arrange
	ctx := context.Background()
	err := s.store.Set(ctx, "key", "value")
	s.Require().NoError(err)

	// act
	err = s.store.Delete(ctx, "key")
	s.Require().NoError(err)

	// assert
	_, ok, err := s.store.Get(ctx, "key")
	s.NoError(err)
	s.False(ok)
}
