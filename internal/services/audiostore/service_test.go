package audiostore

import (
	"bytes"
	"context"
	"io"
	"regexp"
	"strings"
	"testing"

	"github.com/podhaven/podhaven/internal/utils/apiError"
	"github.com/stretchr/testify/suite"
)

type KeyTestSuite struct {
	suite.Suite
}

func TestKeyTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(KeyTestSuite))
}

var keyPattern = regexp.MustCompile(`^42/[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}_`)

func (s *KeyTestSuite) TestKeyFormat() {
	// act
	key := NewKey(42, "episode one.mp3")

	// assert
	s.Regexp(keyPattern, key)
	s.True(strings.HasSuffix(key, "_episode_one.mp3"))
}

func (s *KeyTestSuite) TestKeysNeverCollide() {
	// act
	first := NewKey(42, "episode.mp3")
	second := NewKey(42, "episode.mp3")

	// assert
	s.NotEqual(first, second)
}

func (s *KeyTestSuite) TestStripsDirectoryTraversal() {
	// act
	key := NewKey(42, "../../etc/passwd")

	// assert
	s.True(strings.HasSuffix(key, "_passwd"))
	s.NotContains(key, "..")
}

func (s *KeyTestSuite) TestStripsWindowsPaths() {
	// act
	key := NewKey(42, `c:\uploads\episode.mp3`)

	// assert
	s.True(strings.HasSuffix(key, "_episode.mp3"))
}

func (s *KeyTestSuite) TestFallsBackOnEmptyName() {
	// act
	key := NewKey(42, "")

	// assert
	s.True(strings.HasSuffix(key, "_audio"))
}

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

func (s *MemoryServiceTestSuite) TestUploadDownloadRoundtrip() {
	// arrange
	ctx := context.Background()
	payload := []byte("mp3 bytes")

	// act
	err := s.service.Upload(ctx, "1/key_a.mp3", bytes.NewReader(payload), int64(len(payload)))
	s.Require().NoError(err)

	content, err := s.service.Download(ctx, "1/key_a.mp3")
	s.Require().NoError(err)
	defer content.Close()

	// assert
	data, err := io.ReadAll(content)
	s.NoError(err)
	s.Equal(payload, data)
}

func (s *MemoryServiceTestSuite) TestDownloadMissingKey() {
	// act
	_, err := s.service.Download(context.Background(), "1/missing.mp3")

	// assert
	s.ErrorIs(err, apiError.ErrApiAudioNotFound)
}

func (s *MemoryServiceTestSuite) TestDeleteIsIdempotent() {
	// arrange
	ctx := context.Background()
	err := s.service.Upload(ctx, "1/key_a.mp3", strings.NewReader("data"), 4)
	s.Require().NoError(err)

	// act
	first := s.service.Delete(ctx, "1/key_a.mp3")
	second := s.service.Delete(ctx, "1/key_a.mp3")

	// assert
	s.NoError(first)
	s.NoError(second)
}

func (s *MemoryServiceTestSuite) TestBulkDeleteReportsPerKey() {
	// arrange
	ctx := context.Background()
	err := s.service.Upload(ctx, "1/key_a.mp3", strings.NewReader("data"), 4)
	s.Require().NoError(err)

	// act
	results := s.service.BulkDelete(ctx, []string{"1/key_a.mp3", "1/missing.mp3"})

	// assert
	s.Len(results, 2)
	for _, result := range results {
		s.NoError(result.Err)
	}

	_, err = s.service.Download(ctx, "1/key_a.mp3")
	s.ErrorIs(err, apiError.ErrApiAudioNotFound)
}

func (s *MemoryServiceTestSuite) TestPlayUrlPointsAtMediaApi() {
	// act
	playUrl, expiry, err := s.service.PlayUrl(context.Background(), "1/key_a.mp3")

	// assert
	s.NoError(err)
	s.Equal("/media/api/v1/1%2Fkey_a.mp3", playUrl)
	s.Equal(PresignExpiry, expiry)
}
