package mediapolicy

import (
	"errors"
	"testing"

	"github.com/podhaven/podhaven/internal/utils/apiError"
	"github.com/stretchr/testify/suite"
)

type MediaPolicyTestSuite struct {
	suite.Suite
}

func TestMediaPolicyTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(MediaPolicyTestSuite))
}

func (s *MediaPolicyTestSuite) TestAcceptsMpegContentType() {
	// act
	err := ValidateAudioUpload("episode.bin", "audio/mpeg", 1024)

	// assert
	s.NoError(err)
}

func (s *MediaPolicyTestSuite) TestAcceptsMp3ExtensionWithWrongContentType() {
	// act
	err := ValidateAudioUpload("episode.MP3", "application/octet-stream", 1024)

	// assert
	s.NoError(err)
}

func (s *MediaPolicyTestSuite) TestAcceptsContentTypeWithParameters() {
	// act
	err := ValidateAudioUpload("episode.bin", "audio/mpeg; charset=binary", 1024)

	// assert
	s.NoError(err)
}

func (s *MediaPolicyTestSuite) TestRejectsOtherFormats() {
	// act
	err := ValidateAudioUpload("episode.wav", "audio/wav", 1024)

	// assert
	s.ErrorIs(err, apiError.ErrValidation)
}

func (s *MediaPolicyTestSuite) TestRejectsEmptyFile() {
	// act
	err := ValidateAudioUpload("episode.mp3", "audio/mpeg", 0)

	// assert
	s.ErrorIs(err, apiError.ErrValidation)
}

func (s *MediaPolicyTestSuite) TestRejectsOversizedFile() {
	// act
	err := ValidateAudioUpload("episode.mp3", "audio/mpeg", MaxUploadBytes+1)

	// assert
	s.ErrorIs(err, apiError.ErrValidation)
}

func (s *MediaPolicyTestSuite) TestAcceptsExactLimit() {
	// act
	err := ValidateAudioUpload("episode.mp3", "audio/mpeg", MaxUploadBytes)

	// assert
	s.NoError(err)
}

func (s *MediaPolicyTestSuite) TestValidationErrorsAreBadRequests() {
	// act
	err := ValidateAudioUpload("episode.wav", "audio/wav", 1024)

	// assert
	s.True(errors.Is(err, apiError.ErrApiBadRequest))
}
