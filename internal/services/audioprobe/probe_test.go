package audioprobe

import (
	"bytes"
	"strings"
	"testing"

	"github.com/podhaven/podhaven/internal/logging"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type ProbeTestSuite struct {
	suite.Suite
}

func TestProbeTestSuite(t *testing.T) {
	logging.Logger = zap.NewNop().Sugar()
	suite.Run(t, new(ProbeTestSuite))
}

func (s *ProbeTestSuite) TestGarbageReportsZero() {
	// arrange
	garbage := strings.NewReader("this is definitely not an mpeg stream")

	// act
	duration := DurationMinutes(garbage)

	// assert
	s.Equal(0, duration)
}

func (s *ProbeTestSuite) TestEmptyStreamReportsZero() {
	// act
	duration := DurationMinutes(bytes.NewReader(nil))

	// assert
	s.Equal(0, duration)
}
