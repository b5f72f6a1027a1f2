package queries

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/The127/ioc"
	"github.com/google/uuid"
	"github.com/podhaven/podhaven/internal/database"
	"github.com/podhaven/podhaven/internal/database/inmemory"
	"github.com/podhaven/podhaven/internal/logging"
	"github.com/podhaven/podhaven/internal/middlewares"
	"github.com/podhaven/podhaven/internal/repositories"
	"github.com/podhaven/podhaven/internal/services/audiostore"
	"github.com/podhaven/podhaven/internal/services/commentstore"
	"github.com/podhaven/podhaven/internal/services/kv"
	"github.com/podhaven/podhaven/internal/utils"
	"github.com/podhaven/podhaven/internal/utils/apiError"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	logging.Logger = zap.NewNop().Sugar()
	m.Run()
}

type QueriesTestSuite struct {
	suite.Suite

	audioStore   audiostore.Service
	commentStore commentstore.Service
	kvStore      kv.Store

	provider *ioc.DependencyProvider
}

func TestQueriesTestSuite(t *testing.T) {
	suite.Run(t, new(QueriesTestSuite))
}

func (s *QueriesTestSuite) SetupTest() {
	db, err := inmemory.NewInMemoryDatabase()
	s.Require().NoError(err)
	s.Require().NoError(db.Migrate())

	s.audioStore = audiostore.NewInMemoryService()
	s.commentStore = commentstore.NewInMemoryService()
	s.kvStore = kv.NewMemoryStore()

	dc := ioc.NewDependencyCollection()
	ioc.RegisterScoped(dc, func(_ *ioc.DependencyProvider) database.Context {
		dbContext, err := db.NewContext(context.Background())
		if err != nil {
			panic(err)
		}
		return dbContext
	})
	ioc.RegisterSingleton(dc, func(_ *ioc.DependencyProvider) audiostore.Service {
		return s.audioStore
	})
	ioc.RegisterSingleton(dc, func(_ *ioc.DependencyProvider) commentstore.Service {
		return s.commentStore
	})
	ioc.RegisterSingleton(dc, func(_ *ioc.DependencyProvider) kv.Store {
		return s.kvStore
	})

	s.provider = dc.BuildProvider()
}

// newCtx opens a fresh scope per operation, like the server does per
// request, so each read observes what earlier operations committed.
func (s *QueriesTestSuite) newCtx() context.Context {
	scope := s.provider.NewScope()
	s.T().Cleanup(func() { utils.IgnoreError(scope.Close) })
	return middlewares.ContextWithScope(context.Background(), scope)
}

func dbContextOf(ctx context.Context) database.Context {
	return ioc.GetDependency[database.Context](middlewares.GetScope(ctx))
}

func (s *QueriesTestSuite) createUser() uuid.UUID {
	ctx := s.newCtx()
	dbContext := dbContextOf(ctx)

	userId := uuid.New()
	dbContext.Users().Insert(repositories.NewUser(userId, "Jamie Doe", fmt.Sprintf("%s@example.com", userId)))
	s.Require().NoError(dbContext.SaveChanges(ctx))
	return userId
}

func (s *QueriesTestSuite) createPodcast(ownerId uuid.UUID, title string) int64 {
	ctx := s.newCtx()
	dbContext := dbContextOf(ctx)

	podcast := repositories.NewPodcast(ownerId, title, "description")
	dbContext.Podcasts().Insert(podcast)
	s.Require().NoError(dbContext.SaveChanges(ctx))
	return podcast.GetId()
}

func (s *QueriesTestSuite) createEpisode(podcastId int64, title string, status repositories.EpisodeStatus, releaseDate time.Time) *repositories.Episode {
	ctx := s.newCtx()
	dbContext := dbContextOf(ctx)

	key := audiostore.NewKey(podcastId, title+".mp3")
	s.Require().NoError(s.audioStore.Upload(ctx, key, io.LimitReader(nopReader{}, 8), 8))

	episode := repositories.NewEpisode(podcastId, title, key, 30, releaseDate)
	episode.SetStatus(status)
	dbContext.Episodes().Insert(episode)
	s.Require().NoError(dbContext.SaveChanges(ctx))
	return episode
}

type nopReader struct{}

func (nopReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func (s *QueriesTestSuite) TestGetPodcastHidesUndecidedEpisodesFromNonOwners() {
	// arrange
	ownerId := s.createUser()
	podcastId := s.createPodcast(ownerId, "Test Podcast")
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	s.createEpisode(podcastId, "approved", repositories.EpisodeStatusApproved, base)
	s.createEpisode(podcastId, "pending", repositories.EpisodeStatusPending, base.Add(time.Hour))
	s.createEpisode(podcastId, "rejected", repositories.EpisodeStatusRejected, base.Add(2*time.Hour))

	// act
	anonymous, err := HandleGetPodcast(s.newCtx(), GetPodcast{PodcastId: podcastId, CallerId: uuid.Nil})
	s.Require().NoError(err)

	owner, err := HandleGetPodcast(s.newCtx(), GetPodcast{PodcastId: podcastId, CallerId: ownerId})
	s.Require().NoError(err)

	// assert
	s.Require().Len(anonymous.Episodes, 1)
	s.Equal("approved", anonymous.Episodes[0].Title)

	s.Len(owner.Episodes, 3)
}

func (s *QueriesTestSuite) TestGetPodcastOrdersEpisodesNewestFirst() {
	// arrange
	ownerId := s.createUser()
	podcastId := s.createPodcast(ownerId, "Test Podcast")
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	s.createEpisode(podcastId, "oldest", repositories.EpisodeStatusApproved, base)
	s.createEpisode(podcastId, "newest", repositories.EpisodeStatusApproved, base.Add(2*time.Hour))
	s.createEpisode(podcastId, "middle", repositories.EpisodeStatusApproved, base.Add(time.Hour))

	// act
	response, err := HandleGetPodcast(s.newCtx(), GetPodcast{PodcastId: podcastId, CallerId: ownerId})

	// assert
	s.Require().NoError(err)
	s.Require().Len(response.Episodes, 3)
	s.Equal("newest", response.Episodes[0].Title)
	s.Equal("middle", response.Episodes[1].Title)
	s.Equal("oldest", response.Episodes[2].Title)
}

func (s *QueriesTestSuite) TestGetMissingPodcast() {
	// act
	_, err := HandleGetPodcast(s.newCtx(), GetPodcast{PodcastId: 12345})

	// assert
	s.ErrorIs(err, apiError.ErrApiPodcastNotFound)
}

func (s *QueriesTestSuite) TestGetEpisodeListsCommentsNewestFirst() {
	// arrange
	ownerId := s.createUser()
	podcastId := s.createPodcast(ownerId, "Test Podcast")
	episode := s.createEpisode(podcastId, "episode", repositories.EpisodeStatusApproved, time.Now())

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, text := range []string{"first", "second", "third"} {
		err := s.commentStore.Put(context.Background(), commentstore.Comment{
			EpisodeId: episode.GetId(),
			CommentId: uuid.NewString(),
			Text:      text,
			PostedAt:  base.Add(time.Duration(i) * time.Minute),
		})
		s.Require().NoError(err)
	}

	// act
	response, err := HandleGetEpisode(s.newCtx(), GetEpisode{EpisodeId: episode.GetId()})

	// assert
	s.Require().NoError(err)
	s.Require().Len(response.Comments, 3)
	s.Equal("third", response.Comments[0].Text)
	s.Equal("second", response.Comments[1].Text)
	s.Equal("first", response.Comments[2].Text)
}

func (s *QueriesTestSuite) TestGetEpisodePlayUrlOnlyForApproved() {
	// arrange
	ownerId := s.createUser()
	podcastId := s.createPodcast(ownerId, "Test Podcast")
	approved := s.createEpisode(podcastId, "approved", repositories.EpisodeStatusApproved, time.Now())
	pending := s.createEpisode(podcastId, "pending", repositories.EpisodeStatusPending, time.Now())

	// act
	approvedResponse, err := HandleGetEpisode(s.newCtx(), GetEpisode{EpisodeId: approved.GetId()})
	s.Require().NoError(err)

	pendingResponse, err := HandleGetEpisode(s.newCtx(), GetEpisode{EpisodeId: pending.GetId()})
	s.Require().NoError(err)

	// assert
	s.NotEmpty(approvedResponse.PlayUrl)
	s.Empty(pendingResponse.PlayUrl)
}

func (s *QueriesTestSuite) TestGetEpisodeCachesPlayUrl() {
	// arrange
	ownerId := s.createUser()
	podcastId := s.createPodcast(ownerId, "Test Podcast")
	episode := s.createEpisode(podcastId, "episode", repositories.EpisodeStatusApproved, time.Now())

	// act
	first, err := HandleGetEpisode(s.newCtx(), GetEpisode{EpisodeId: episode.GetId()})
	s.Require().NoError(err)

	second, err := HandleGetEpisode(s.newCtx(), GetEpisode{EpisodeId: episode.GetId()})
	s.Require().NoError(err)

	// assert
	s.Equal(first.PlayUrl, second.PlayUrl)

	cached, ok, err := s.kvStore.Get(context.Background(), "play_url:"+episode.GetAudioKey())
	s.NoError(err)
	s.True(ok)
	s.Equal(first.PlayUrl, cached)
}

func (s *QueriesTestSuite) TestListPodcastsPublicCatalog() {
	// arrange
	ownerId := s.createUser()
	visibleId := s.createPodcast(ownerId, "Visible")
	s.createEpisode(visibleId, "episode", repositories.EpisodeStatusApproved, time.Now())

	// a podcast with only undecided episodes stays out of the catalog
	hiddenId := s.createPodcast(ownerId, "Hidden")
	s.createEpisode(hiddenId, "episode", repositories.EpisodeStatusPending, time.Now())

	s.createPodcast(ownerId, "Empty")

	// act
	response, err := HandleListPodcasts(s.newCtx(), ListPodcasts{})

	// assert
	s.Require().NoError(err)
	s.Require().Len(response.Items, 1)
	s.Equal("Visible", response.Items[0].Title)
}

func (s *QueriesTestSuite) TestListPodcastsByOwner() {
	// arrange
	ownerId := s.createUser()
	otherId := s.createUser()
	s.createPodcast(ownerId, "Mine")
	s.createPodcast(otherId, "Theirs")

	// act
	response, err := HandleListPodcasts(s.newCtx(), ListPodcasts{OwnerId: &ownerId})

	// assert
	s.Require().NoError(err)
	s.Require().Len(response.Items, 1)
	s.Equal("Mine", response.Items[0].Title)
}

func (s *QueriesTestSuite) TestListPendingEpisodes() {
	// arrange
	ownerId := s.createUser()
	podcastId := s.createPodcast(ownerId, "Test Podcast")
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	s.createEpisode(podcastId, "old pending", repositories.EpisodeStatusPending, base)
	s.createEpisode(podcastId, "new pending", repositories.EpisodeStatusPending, base.Add(time.Hour))
	s.createEpisode(podcastId, "approved", repositories.EpisodeStatusApproved, base.Add(2*time.Hour))

	// act
	response, err := HandleListPendingEpisodes(s.newCtx(), ListPendingEpisodes{})

	// assert
	s.Require().NoError(err)
	s.Require().Len(response.Items, 2)
	s.Equal("new pending", response.Items[0].Title)
	s.Equal("old pending", response.Items[1].Title)
	s.Equal("Test Podcast", response.Items[0].PodcastTitle)
}

func (s *QueriesTestSuite) TestGetEpisodeAudioIsOwnerOnly() {
	// arrange
	ownerId := s.createUser()
	strangerId := s.createUser()
	podcastId := s.createPodcast(ownerId, "Test Podcast")
	episode := s.createEpisode(podcastId, "episode", repositories.EpisodeStatusPending, time.Now())

	// act
	response, err := HandleGetEpisodeAudio(s.newCtx(), GetEpisodeAudio{UserId: ownerId, EpisodeId: episode.GetId()})
	s.Require().NoError(err)
	s.Require().NoError(response.Content.Close())

	_, strangerErr := HandleGetEpisodeAudio(s.newCtx(), GetEpisodeAudio{UserId: strangerId, EpisodeId: episode.GetId()})

	// assert
	s.Equal(episode.GetAudioKey(), response.Key)
	s.ErrorIs(strangerErr, apiError.ErrApiForbidden)
}

func (s *QueriesTestSuite) TestGetDashboardCounts() {
	// arrange
	ownerId := s.createUser()
	listenerId := s.createUser()
	podcastId := s.createPodcast(ownerId, "Test Podcast")
	s.createEpisode(podcastId, "pending", repositories.EpisodeStatusPending, time.Now())
	s.createEpisode(podcastId, "approved", repositories.EpisodeStatusApproved, time.Now())

	ctx := s.newCtx()
	dbContext := dbContextOf(ctx)
	dbContext.Subscriptions().Insert(repositories.NewSubscription(listenerId, podcastId))
	s.Require().NoError(dbContext.SaveChanges(ctx))

	// act
	response, err := HandleGetDashboard(s.newCtx(), GetDashboard{})

	// assert
	s.Require().NoError(err)
	s.Equal(1, response.Podcasts)
	s.Equal(2, response.Episodes)
	s.Equal(1, response.PendingEpisodes)
	s.Equal(2, response.Users)
	s.Equal(1, response.Subscriptions)
}
