package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
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
	"github.com/podhaven/podhaven/internal/services/clock"
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

// recordingAudioStore wraps the in-memory object store and records
// every upload and delete, optionally failing them.
type recordingAudioStore struct {
	audiostore.Service

	mu         sync.Mutex
	uploads    []string
	deletes    []string
	failUpload bool
	failDelete bool
}

func newRecordingAudioStore() *recordingAudioStore {
	return &recordingAudioStore{
		Service: audiostore.NewInMemoryService(),
	}
}

func (r *recordingAudioStore) Upload(ctx context.Context, key string, reader io.Reader, size int64) error {
	if r.failUpload {
		return errors.New("object store rejected the upload")
	}

	r.mu.Lock()
	r.uploads = append(r.uploads, key)
	r.mu.Unlock()

	return r.Service.Upload(ctx, key, reader, size)
}

func (r *recordingAudioStore) Delete(ctx context.Context, key string) error {
	if r.failDelete {
		return errors.New("object store rejected the delete")
	}

	r.mu.Lock()
	r.deletes = append(r.deletes, key)
	r.mu.Unlock()

	return r.Service.Delete(ctx, key)
}

func (r *recordingAudioStore) BulkDelete(ctx context.Context, keys []string) []audiostore.KeyResult {
	if r.failDelete {
		results := make([]audiostore.KeyResult, 0, len(keys))
		for _, key := range keys {
			results = append(results, audiostore.KeyResult{Key: key, Err: errors.New("object store rejected the delete")})
		}
		return results
	}

	r.mu.Lock()
	r.deletes = append(r.deletes, keys...)
	r.mu.Unlock()

	return r.Service.BulkDelete(ctx, keys)
}

func (r *recordingAudioStore) uploadedKeys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.uploads...)
}

func (r *recordingAudioStore) deletedKeys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.deletes...)
}

type failingContext struct {
	database.Context
}

func (f failingContext) SaveChanges(ctx context.Context) error {
	return errors.New("metadata store is down")
}

type CommandsTestSuite struct {
	suite.Suite

	db           database.Database
	audioStore   *recordingAudioStore
	commentStore commentstore.Service
	setNow       clock.TimeSetterFn

	provider *ioc.DependencyProvider
}

func TestCommandsTestSuite(t *testing.T) {
	suite.Run(t, new(CommandsTestSuite))
}

func (s *CommandsTestSuite) SetupTest() {
	db, err := inmemory.NewInMemoryDatabase()
	s.Require().NoError(err)
	s.Require().NoError(db.Migrate())

	s.db = db
	s.audioStore = newRecordingAudioStore()
	s.commentStore = commentstore.NewInMemoryService()

	clockService, setNow := clock.NewMockService(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	s.setNow = setNow

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
		return kv.NewMemoryStore()
	})
	ioc.RegisterSingleton(dc, func(_ *ioc.DependencyProvider) clock.Service {
		return clockService
	})

	s.provider = dc.BuildProvider()
}

// newCtx opens a fresh scope, one per operation like the server does
// per request, so every read observes what earlier operations
// committed.
func (s *CommandsTestSuite) newCtx() context.Context {
	scope := s.provider.NewScope()
	s.T().Cleanup(func() { utils.IgnoreError(scope.Close) })
	return middlewares.ContextWithScope(context.Background(), scope)
}

func dbContextOf(ctx context.Context) database.Context {
	return ioc.GetDependency[database.Context](middlewares.GetScope(ctx))
}

// failingMetadataContext returns a context whose unit of work commits
// always fail, over the same database.
func (s *CommandsTestSuite) failingMetadataContext() context.Context {
	dc := ioc.NewDependencyCollection()
	ioc.RegisterScoped(dc, func(_ *ioc.DependencyProvider) database.Context {
		dbContext, err := s.db.NewContext(context.Background())
		if err != nil {
			panic(err)
		}
		return failingContext{Context: dbContext}
	})
	ioc.RegisterSingleton(dc, func(_ *ioc.DependencyProvider) audiostore.Service {
		return s.audioStore
	})
	ioc.RegisterSingleton(dc, func(_ *ioc.DependencyProvider) commentstore.Service {
		return s.commentStore
	})
	clockService, _ := clock.NewMockService(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	ioc.RegisterSingleton(dc, func(_ *ioc.DependencyProvider) clock.Service {
		return clockService
	})

	scope := dc.BuildProvider().NewScope()
	s.T().Cleanup(func() { utils.IgnoreError(scope.Close) })

	return middlewares.ContextWithScope(context.Background(), scope)
}

func (s *CommandsTestSuite) createUser() uuid.UUID {
	ctx := s.newCtx()
	dbContext := dbContextOf(ctx)

	userId := uuid.New()
	dbContext.Users().Insert(repositories.NewUser(userId, "Jamie Doe", fmt.Sprintf("%s@example.com", userId)))
	s.Require().NoError(dbContext.SaveChanges(ctx))
	return userId
}

func (s *CommandsTestSuite) createPodcast(ownerId uuid.UUID) int64 {
	response, err := HandleCreatePodcast(s.newCtx(), CreatePodcast{
		UserId:      ownerId,
		Title:       "Test Podcast",
		Description: "about testing",
	})
	s.Require().NoError(err)
	return response.Id
}

func (s *CommandsTestSuite) addEpisode(ownerId uuid.UUID, podcastId int64) *AddEpisodeResponse {
	response, err := HandleAddEpisode(s.newCtx(), AddEpisode{
		UserId:      ownerId,
		PodcastId:   podcastId,
		Title:       "Episode One",
		FileName:    "episode.mp3",
		ContentType: "audio/mpeg",
		Size:        9,
		Content:     strings.NewReader("mp3 bytes"),
	})
	s.Require().NoError(err)
	return response
}

func (s *CommandsTestSuite) getEpisode(episodeId int64) *repositories.Episode {
	ctx := s.newCtx()
	episode, err := dbContextOf(ctx).Episodes().First(ctx, repositories.NewEpisodeFilter().ById(episodeId))
	s.Require().NoError(err)
	s.Require().NotNil(episode)
	return episode
}

func (s *CommandsTestSuite) TestCreateAndPatchPodcast() {
	// arrange
	ownerId := s.createUser()
	podcastId := s.createPodcast(ownerId)

	newTitle := "Renamed"

	// act
	_, err := HandlePatchPodcast(s.newCtx(), PatchPodcast{
		UserId:    ownerId,
		PodcastId: podcastId,
		Title:     &newTitle,
	})

	// assert
	s.NoError(err)

	ctx := s.newCtx()
	podcast, err := dbContextOf(ctx).Podcasts().First(ctx, repositories.NewPodcastFilter().ById(podcastId))
	s.NoError(err)
	s.Require().NotNil(podcast)
	s.Equal("Renamed", podcast.GetTitle())
	s.Equal("about testing", podcast.GetDescription())
}

func (s *CommandsTestSuite) TestPatchPodcastRequiresOwnership() {
	// arrange
	ownerId := s.createUser()
	strangerId := s.createUser()
	podcastId := s.createPodcast(ownerId)

	newTitle := "Hijacked"

	// act
	_, err := HandlePatchPodcast(s.newCtx(), PatchPodcast{
		UserId:    strangerId,
		PodcastId: podcastId,
		Title:     &newTitle,
	})

	// assert
	s.ErrorIs(err, apiError.ErrApiForbidden)
}

func (s *CommandsTestSuite) TestAddEpisode() {
	// arrange
	ownerId := s.createUser()
	podcastId := s.createPodcast(ownerId)

	// act
	response := s.addEpisode(ownerId, podcastId)

	// assert
	episode := s.getEpisode(response.Id)
	s.Equal(repositories.EpisodeStatusPending, episode.GetStatus())
	s.Contains(episode.GetAudioKey(), fmt.Sprintf("%d/", podcastId))

	// the payload is not a real mpeg stream, probing degrades to zero
	s.Equal(0, response.DurationMinutes)

	content, err := s.audioStore.Download(context.Background(), episode.GetAudioKey())
	s.NoError(err)
	s.NoError(content.Close())
}

func (s *CommandsTestSuite) TestAddEpisodeRejectsBadFormat() {
	// arrange
	ownerId := s.createUser()
	podcastId := s.createPodcast(ownerId)

	// act
	_, err := HandleAddEpisode(s.newCtx(), AddEpisode{
		UserId:      ownerId,
		PodcastId:   podcastId,
		Title:       "Episode One",
		FileName:    "episode.wav",
		ContentType: "audio/wav",
		Size:        9,
		Content:     strings.NewReader("wav bytes"),
	})

	// assert
	s.ErrorIs(err, apiError.ErrValidation)
	s.Empty(s.audioStore.uploadedKeys())

	ctx := s.newCtx()
	_, total, listErr := dbContextOf(ctx).Episodes().List(ctx, repositories.NewEpisodeFilter())
	s.NoError(listErr)
	s.Zero(total)
}

func (s *CommandsTestSuite) TestAddEpisodeUploadFailureLeavesMetadataUntouched() {
	// arrange
	ownerId := s.createUser()
	podcastId := s.createPodcast(ownerId)
	s.audioStore.failUpload = true

	// act
	_, err := HandleAddEpisode(s.newCtx(), AddEpisode{
		UserId:      ownerId,
		PodcastId:   podcastId,
		Title:       "Episode One",
		FileName:    "episode.mp3",
		ContentType: "audio/mpeg",
		Size:        9,
		Content:     strings.NewReader("mp3 bytes"),
	})

	// assert
	s.ErrorIs(err, apiError.ErrUpload)

	ctx := s.newCtx()
	_, total, listErr := dbContextOf(ctx).Episodes().List(ctx, repositories.NewEpisodeFilter())
	s.NoError(listErr)
	s.Zero(total)
}

func (s *CommandsTestSuite) TestAddEpisodeMetadataFailureCompensates() {
	// arrange
	ownerId := s.createUser()
	podcastId := s.createPodcast(ownerId)
	failingCtx := s.failingMetadataContext()

	// act
	_, err := HandleAddEpisode(failingCtx, AddEpisode{
		UserId:      ownerId,
		PodcastId:   podcastId,
		Title:       "Episode One",
		FileName:    "episode.mp3",
		ContentType: "audio/mpeg",
		Size:        9,
		Content:     strings.NewReader("mp3 bytes"),
	})

	// assert
	s.ErrorIs(err, apiError.ErrMetadata)

	uploaded := s.audioStore.uploadedKeys()
	s.Require().Len(uploaded, 1)
	s.Equal(uploaded, s.audioStore.deletedKeys())

	_, downloadErr := s.audioStore.Download(context.Background(), uploaded[0])
	s.ErrorIs(downloadErr, apiError.ErrApiAudioNotFound)
}

func (s *CommandsTestSuite) TestReplaceEpisodeAudio() {
	// arrange
	ownerId := s.createUser()
	podcastId := s.createPodcast(ownerId)
	added := s.addEpisode(ownerId, podcastId)

	_, err := HandleReviewEpisode(s.newCtx(), ReviewEpisode{
		EpisodeId: added.Id,
		Decision:  repositories.EpisodeStatusApproved,
	})
	s.Require().NoError(err)

	oldKey := s.getEpisode(added.Id).GetAudioKey()

	// act
	_, err = HandleReplaceEpisodeAudio(s.newCtx(), ReplaceEpisodeAudio{
		UserId:      ownerId,
		EpisodeId:   added.Id,
		FileName:    "better.mp3",
		ContentType: "audio/mpeg",
		Size:        12,
		Content:     strings.NewReader("better bytes"),
	})

	// assert
	s.NoError(err)

	episode := s.getEpisode(added.Id)
	s.NotEqual(oldKey, episode.GetAudioKey())
	s.Equal(repositories.EpisodeStatusPending, episode.GetStatus())

	_, downloadErr := s.audioStore.Download(context.Background(), oldKey)
	s.ErrorIs(downloadErr, apiError.ErrApiAudioNotFound)
}

func (s *CommandsTestSuite) TestReplaceUploadFailureKeepsOldAudio() {
	// arrange
	ownerId := s.createUser()
	podcastId := s.createPodcast(ownerId)
	added := s.addEpisode(ownerId, podcastId)
	oldKey := s.getEpisode(added.Id).GetAudioKey()

	s.audioStore.failUpload = true

	// act
	_, err := HandleReplaceEpisodeAudio(s.newCtx(), ReplaceEpisodeAudio{
		UserId:      ownerId,
		EpisodeId:   added.Id,
		FileName:    "better.mp3",
		ContentType: "audio/mpeg",
		Size:        12,
		Content:     strings.NewReader("better bytes"),
	})

	// assert
	s.ErrorIs(err, apiError.ErrUpload)

	episode := s.getEpisode(added.Id)
	s.Equal(oldKey, episode.GetAudioKey())

	content, downloadErr := s.audioStore.Download(context.Background(), oldKey)
	s.NoError(downloadErr)
	s.NoError(content.Close())
}

func (s *CommandsTestSuite) TestDeleteEpisode() {
	// arrange
	ownerId := s.createUser()
	podcastId := s.createPodcast(ownerId)
	added := s.addEpisode(ownerId, podcastId)
	key := s.getEpisode(added.Id).GetAudioKey()

	// act
	_, err := HandleDeleteEpisode(s.newCtx(), DeleteEpisode{
		UserId:    ownerId,
		EpisodeId: added.Id,
	})

	// assert
	s.NoError(err)

	ctx := s.newCtx()
	episode, err := dbContextOf(ctx).Episodes().First(ctx, repositories.NewEpisodeFilter().ById(added.Id))
	s.NoError(err)
	s.Nil(episode)

	_, downloadErr := s.audioStore.Download(context.Background(), key)
	s.ErrorIs(downloadErr, apiError.ErrApiAudioNotFound)
}

func (s *CommandsTestSuite) TestDeleteEpisodeIsIdempotent() {
	// arrange
	ownerId := s.createUser()

	// act
	_, err := HandleDeleteEpisode(s.newCtx(), DeleteEpisode{
		UserId:    ownerId,
		EpisodeId: 12345,
	})

	// assert
	s.NoError(err)
}

func (s *CommandsTestSuite) TestDeletePodcastCascadesDespiteBlobFailures() {
	// arrange
	ownerId := s.createUser()
	listenerId := s.createUser()
	podcastId := s.createPodcast(ownerId)
	first := s.addEpisode(ownerId, podcastId)
	second := s.addEpisode(ownerId, podcastId)

	_, err := HandleSubscribe(s.newCtx(), Subscribe{UserId: listenerId, PodcastId: podcastId})
	s.Require().NoError(err)

	s.audioStore.failDelete = true

	// act
	_, err = HandleDeletePodcast(s.newCtx(), DeletePodcast{
		UserId:    ownerId,
		PodcastId: podcastId,
	})

	// assert
	s.NoError(err)

	ctx := s.newCtx()
	dbContext := dbContextOf(ctx)

	podcast, err := dbContext.Podcasts().First(ctx, repositories.NewPodcastFilter().ById(podcastId))
	s.NoError(err)
	s.Nil(podcast)

	for _, episodeId := range []int64{first.Id, second.Id} {
		episode, err := dbContext.Episodes().First(ctx, repositories.NewEpisodeFilter().ById(episodeId))
		s.NoError(err)
		s.Nil(episode)
	}

	_, subscriptions, err := dbContext.Subscriptions().List(ctx, repositories.NewSubscriptionFilter().ByPodcastId(podcastId))
	s.NoError(err)
	s.Zero(subscriptions)
}

func (s *CommandsTestSuite) TestSubscribeTwiceReportsConflict() {
	// arrange
	ownerId := s.createUser()
	listenerId := s.createUser()
	podcastId := s.createPodcast(ownerId)

	_, err := HandleSubscribe(s.newCtx(), Subscribe{UserId: listenerId, PodcastId: podcastId})
	s.Require().NoError(err)

	// act
	_, err = HandleSubscribe(s.newCtx(), Subscribe{UserId: listenerId, PodcastId: podcastId})

	// assert
	s.ErrorIs(err, apiError.ErrApiConflict)

	ctx := s.newCtx()
	_, total, listErr := dbContextOf(ctx).Subscriptions().List(ctx, repositories.NewSubscriptionFilter().ByUserId(listenerId))
	s.NoError(listErr)
	s.Equal(1, total)
}

func (s *CommandsTestSuite) TestUnsubscribeIsIdempotent() {
	// arrange
	ownerId := s.createUser()
	listenerId := s.createUser()
	podcastId := s.createPodcast(ownerId)

	// act
	_, err := HandleUnsubscribe(s.newCtx(), Unsubscribe{UserId: listenerId, PodcastId: podcastId})

	// assert
	s.NoError(err)
}

func (s *CommandsTestSuite) TestRecordPlayIncrements() {
	// arrange
	ownerId := s.createUser()
	podcastId := s.createPodcast(ownerId)
	added := s.addEpisode(ownerId, podcastId)

	// act
	first, err := HandleRecordPlay(s.newCtx(), RecordPlay{EpisodeId: added.Id})
	s.Require().NoError(err)
	second, err := HandleRecordPlay(s.newCtx(), RecordPlay{EpisodeId: added.Id})
	s.Require().NoError(err)

	// assert
	s.Equal(int64(1), first.PlayCount)
	s.Equal(int64(2), second.PlayCount)
	s.Equal(int64(2), s.getEpisode(added.Id).GetPlayCount())
}

func (s *CommandsTestSuite) TestConcurrentPlaysAllCount() {
	// arrange
	ownerId := s.createUser()
	podcastId := s.createPodcast(ownerId)
	added := s.addEpisode(ownerId, podcastId)

	const plays = 20

	// act
	var wg sync.WaitGroup
	errs := make(chan error, 2*plays)

	for i := 0; i < plays; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			scope := s.provider.NewScope()
			defer func() { errs <- scope.Close() }()

			ctx := middlewares.ContextWithScope(context.Background(), scope)
			_, err := HandleRecordPlay(ctx, RecordPlay{EpisodeId: added.Id})
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	// assert
	for err := range errs {
		s.NoError(err)
	}

	s.Equal(int64(plays), s.getEpisode(added.Id).GetPlayCount())
}

func (s *CommandsTestSuite) stagedFileCount() int {
	matches, err := filepath.Glob(filepath.Join(os.TempDir(), "podhaven-upload-*"))
	s.Require().NoError(err)
	return len(matches)
}

func (s *CommandsTestSuite) TestIngestionLeavesNoStagedFiles() {
	// arrange
	ownerId := s.createUser()
	podcastId := s.createPodcast(ownerId)
	before := s.stagedFileCount()

	// act + assert, every ingestion outcome releases the staged copy

	s.addEpisode(ownerId, podcastId)
	s.Equal(before, s.stagedFileCount())

	_, err := HandleAddEpisode(s.newCtx(), AddEpisode{
		UserId:      ownerId,
		PodcastId:   podcastId,
		Title:       "Episode One",
		FileName:    "episode.wav",
		ContentType: "audio/wav",
		Size:        9,
		Content:     strings.NewReader("wav bytes"),
	})
	s.ErrorIs(err, apiError.ErrValidation)
	s.Equal(before, s.stagedFileCount())

	s.audioStore.failUpload = true
	_, err = HandleAddEpisode(s.newCtx(), AddEpisode{
		UserId:      ownerId,
		PodcastId:   podcastId,
		Title:       "Episode One",
		FileName:    "episode.mp3",
		ContentType: "audio/mpeg",
		Size:        9,
		Content:     strings.NewReader("mp3 bytes"),
	})
	s.ErrorIs(err, apiError.ErrUpload)
	s.audioStore.failUpload = false
	s.Equal(before, s.stagedFileCount())

	_, err = HandleAddEpisode(s.failingMetadataContext(), AddEpisode{
		UserId:      ownerId,
		PodcastId:   podcastId,
		Title:       "Episode One",
		FileName:    "episode.mp3",
		ContentType: "audio/mpeg",
		Size:        9,
		Content:     strings.NewReader("mp3 bytes"),
	})
	s.ErrorIs(err, apiError.ErrMetadata)
	s.Equal(before, s.stagedFileCount())
}

func (s *CommandsTestSuite) TestReviewEpisodeTransitions() {
	// arrange
	ownerId := s.createUser()
	podcastId := s.createPodcast(ownerId)
	added := s.addEpisode(ownerId, podcastId)

	// act
	_, err := HandleReviewEpisode(s.newCtx(), ReviewEpisode{
		EpisodeId: added.Id,
		Decision:  repositories.EpisodeStatusApproved,
	})
	s.Require().NoError(err)

	_, again := HandleReviewEpisode(s.newCtx(), ReviewEpisode{
		EpisodeId: added.Id,
		Decision:  repositories.EpisodeStatusRejected,
	})

	// assert
	s.Equal(repositories.EpisodeStatusApproved, s.getEpisode(added.Id).GetStatus())
	s.ErrorIs(again, apiError.ErrApiConflict)
}

func (s *CommandsTestSuite) TestReviewEpisodeRejectsPendingDecision() {
	// arrange
	ownerId := s.createUser()
	podcastId := s.createPodcast(ownerId)
	added := s.addEpisode(ownerId, podcastId)

	// act
	_, err := HandleReviewEpisode(s.newCtx(), ReviewEpisode{
		EpisodeId: added.Id,
		Decision:  repositories.EpisodeStatusPending,
	})

	// assert
	s.ErrorIs(err, apiError.ErrApiBadRequest)
}

func (s *CommandsTestSuite) TestAddAndEditComment() {
	// arrange
	ownerId := s.createUser()
	podcastId := s.createPodcast(ownerId)
	added := s.addEpisode(ownerId, podcastId)

	// act
	response, err := HandleAddComment(s.newCtx(), AddComment{
		UserId:     ownerId,
		AuthorName: "Jamie Doe",
		EpisodeId:  added.Id,
		Text:       "first",
	})
	s.Require().NoError(err)

	s.setNow(time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC))

	_, err = HandleEditComment(s.newCtx(), EditComment{
		UserId:    ownerId,
		EpisodeId: added.Id,
		CommentId: response.CommentId,
		Text:      "edited",
	})

	// assert
	s.NoError(err)

	comment, err := s.commentStore.Get(context.Background(), added.Id, response.CommentId)
	s.NoError(err)
	s.Require().NotNil(comment)
	s.Equal("edited", comment.Text)
	s.Equal("Jamie Doe", comment.AuthorName)
	s.Equal(time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC), comment.PostedAt)
}

func (s *CommandsTestSuite) TestEditCommentIsAuthorOnly() {
	// arrange
	ownerId := s.createUser()
	strangerId := s.createUser()
	podcastId := s.createPodcast(ownerId)
	added := s.addEpisode(ownerId, podcastId)

	response, err := HandleAddComment(s.newCtx(), AddComment{
		UserId:     ownerId,
		AuthorName: "Jamie Doe",
		EpisodeId:  added.Id,
		Text:       "first",
	})
	s.Require().NoError(err)

	// act
	_, err = HandleEditComment(s.newCtx(), EditComment{
		UserId:    strangerId,
		EpisodeId: added.Id,
		CommentId: response.CommentId,
		Text:      "hijacked",
	})

	// assert
	s.ErrorIs(err, apiError.ErrApiForbidden)
}

func (s *CommandsTestSuite) TestDeleteAccountRemovesOwnedContent() {
	// arrange
	ownerId := s.createUser()
	listenerId := s.createUser()
	podcastId := s.createPodcast(ownerId)
	first := s.addEpisode(ownerId, podcastId)
	second := s.addEpisode(ownerId, podcastId)

	_, err := HandleSubscribe(s.newCtx(), Subscribe{UserId: listenerId, PodcastId: podcastId})
	s.Require().NoError(err)

	keys := []string{
		s.getEpisode(first.Id).GetAudioKey(),
		s.getEpisode(second.Id).GetAudioKey(),
	}

	// act
	_, err = HandleDeleteAccount(s.newCtx(), DeleteAccount{UserId: ownerId})

	// assert
	s.NoError(err)

	ctx := s.newCtx()
	dbContext := dbContextOf(ctx)

	user, err := dbContext.Users().First(ctx, repositories.NewUserFilter().ById(ownerId))
	s.NoError(err)
	s.Nil(user)

	podcast, err := dbContext.Podcasts().First(ctx, repositories.NewPodcastFilter().ById(podcastId))
	s.NoError(err)
	s.Nil(podcast)

	for _, episodeId := range []int64{first.Id, second.Id} {
		episode, err := dbContext.Episodes().First(ctx, repositories.NewEpisodeFilter().ById(episodeId))
		s.NoError(err)
		s.Nil(episode)
	}

	_, subscriptions, err := dbContext.Subscriptions().List(ctx, repositories.NewSubscriptionFilter().ByPodcastId(podcastId))
	s.NoError(err)
	s.Zero(subscriptions)

	for _, key := range keys {
		_, downloadErr := s.audioStore.Download(context.Background(), key)
		s.ErrorIs(downloadErr, apiError.ErrApiAudioNotFound)
	}
}

func (s *CommandsTestSuite) TestDeleteAccountKeepsOtherCreatorsContent() {
	// arrange
	ownerId := s.createUser()
	otherId := s.createUser()
	otherPodcastId := s.createPodcast(otherId)

	_, err := HandleSubscribe(s.newCtx(), Subscribe{UserId: ownerId, PodcastId: otherPodcastId})
	s.Require().NoError(err)

	// act
	_, err = HandleDeleteAccount(s.newCtx(), DeleteAccount{UserId: ownerId})

	// assert
	s.NoError(err)

	ctx := s.newCtx()
	dbContext := dbContextOf(ctx)

	podcast, err := dbContext.Podcasts().First(ctx, repositories.NewPodcastFilter().ById(otherPodcastId))
	s.NoError(err)
	s.NotNil(podcast)

	_, subscriptions, err := dbContext.Subscriptions().List(ctx, repositories.NewSubscriptionFilter().ByUserId(ownerId))
	s.NoError(err)
	s.Zero(subscriptions)
}

func (s *CommandsTestSuite) TestDeleteAccountProceedsDespiteBlobFailures() {
	// arrange
	ownerId := s.createUser()
	podcastId := s.createPodcast(ownerId)
	added := s.addEpisode(ownerId, podcastId)

	s.audioStore.failDelete = true

	// act
	_, err := HandleDeleteAccount(s.newCtx(), DeleteAccount{UserId: ownerId})

	// assert
	s.NoError(err)

	ctx := s.newCtx()
	dbContext := dbContextOf(ctx)

	user, err := dbContext.Users().First(ctx, repositories.NewUserFilter().ById(ownerId))
	s.NoError(err)
	s.Nil(user)

	podcast, err := dbContext.Podcasts().First(ctx, repositories.NewPodcastFilter().ById(podcastId))
	s.NoError(err)
	s.Nil(podcast)

	episode, err := dbContext.Episodes().First(ctx, repositories.NewEpisodeFilter().ById(added.Id))
	s.NoError(err)
	s.Nil(episode)
}

func (s *CommandsTestSuite) TestDeleteAccountIsIdempotent() {
	// act
	_, err := HandleDeleteAccount(s.newCtx(), DeleteAccount{UserId: uuid.New()})

	// assert
	s.NoError(err)
}
