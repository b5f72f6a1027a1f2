package staging

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

type StagingTestSuite struct {
	suite.Suite
}

func TestStagingTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(StagingTestSuite))
}

func (s *StagingTestSuite) TestStageCopiesPayload() {
	// arrange
	payload := "some mp3 bytes"

	// act
	staged, err := Stage(strings.NewReader(payload))
	s.Require().NoError(err)
	defer staged.Release()

	// assert
	s.Equal(int64(len(payload)), staged.Size())

	reader, err := staged.Reader()
	s.Require().NoError(err)

	data, err := io.ReadAll(reader)
	s.NoError(err)
	s.Equal(payload, string(data))
}

func (s *StagingTestSuite) TestReaderRewindsForRepeatedReads() {
	// arrange
	staged, err := Stage(strings.NewReader("payload"))
	s.Require().NoError(err)
	defer staged.Release()

	first, err := staged.Reader()
	s.Require().NoError(err)
	_, err = io.ReadAll(first)
	s.Require().NoError(err)

	// act
	second, err := staged.Reader()
	s.Require().NoError(err)
	data, err := io.ReadAll(second)

	// assert
	s.NoError(err)
	s.Equal("payload", string(data))
}

func (s *StagingTestSuite) TestReleaseRemovesTheFile() {
	// arrange
	staged, err := Stage(strings.NewReader("payload"))
	s.Require().NoError(err)
	path := staged.file.Name()

	// act
	err = staged.Release()

	// assert
	s.NoError(err)
	_, statErr := os.Stat(path)
	s.True(os.IsNotExist(statErr))
}

func (s *StagingTestSuite) TestReleaseIsIdempotent() {
	// arrange
	staged, err := Stage(strings.NewReader("payload"))
	s.Require().NoError(err)

	// act
	first := staged.Release()
	second := staged.Release()

	// assert
	s.NoError(first)
	s.NoError(second)
}

func (s *StagingTestSuite) TestConcurrentStagingsGetDistinctPaths() {
	// arrange
	first, err := Stage(strings.NewReader("one"))
	s.Require().NoError(err)
	defer first.Release()

	// act
	second, err := Stage(strings.NewReader("two"))
	s.Require().NoError(err)
	defer second.Release()

	// assert
	s.NotEqual(first.file.Name(), second.file.Name())
}
