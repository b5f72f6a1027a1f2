package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/The127/ioc"
	db "github.com/podhaven/podhaven/internal/database"
	"github.com/podhaven/podhaven/internal/logging"
	"github.com/podhaven/podhaven/internal/middlewares"
	"github.com/podhaven/podhaven/internal/repositories"
	"github.com/podhaven/podhaven/internal/services/audiostore"
	"github.com/podhaven/podhaven/internal/services/commentstore"
	"github.com/podhaven/podhaven/internal/services/kv"
	"github.com/podhaven/podhaven/internal/utils/apiError"
)

// playUrlCacheMargin keeps cached urls from outliving their signature.
const playUrlCacheMargin = 30 * time.Second

type GetEpisode struct {
	EpisodeId int64
}

type GetEpisodeResponse struct {
	Id              int64
	PodcastId       int64
	Title           string
	DurationMinutes int
	Status          string
	ReleaseDate     time.Time
	PlayCount       int64
	PlayUrl         string
	Comments        []GetEpisodeResponseComment
}

type GetEpisodeResponseComment struct {
	CommentId  string
	AuthorId   string
	AuthorName string
	Text       string
	PostedAt   time.Time
}

// HandleGetEpisode reads one episode with its comments, newest first,
// and a playback url for approved episodes. Urls are cached just under
// their expiry so repeated reads do not re-sign on every request.
func HandleGetEpisode(ctx context.Context, query GetEpisode) (*GetEpisodeResponse, error) {
	scope := middlewares.GetScope(ctx)
	dbContext := ioc.GetDependency[db.Context](scope)
	commentStore := ioc.GetDependency[commentstore.Service](scope)

	episode, err := dbContext.Episodes().First(ctx, repositories.NewEpisodeFilter().ById(query.EpisodeId))
	if err != nil {
		return nil, fmt.Errorf("getting episode: %w", err)
	}
	if episode == nil {
		return nil, fmt.Errorf("episode %d: %w", query.EpisodeId, apiError.ErrApiEpisodeNotFound)
	}

	comments, err := commentStore.List(ctx, episode.GetId())
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}

	items := make([]GetEpisodeResponseComment, len(comments))
	for i, comment := range comments {
		items[i] = GetEpisodeResponseComment{
			CommentId:  comment.CommentId,
			AuthorId:   comment.AuthorId,
			AuthorName: comment.AuthorName,
			Text:       comment.Text,
			PostedAt:   comment.PostedAt,
		}
	}

	var playUrl string
	if episode.GetStatus() == repositories.EpisodeStatusApproved && episode.GetAudioKey() != "" {
		playUrl, err = getPlayUrl(ctx, scope, episode.GetAudioKey())
		if err != nil {
			return nil, err
		}
	}

	return &GetEpisodeResponse{
		Id:              episode.GetId(),
		PodcastId:       episode.GetPodcastId(),
		Title:           episode.GetTitle(),
		DurationMinutes: episode.GetDurationMinutes(),
		Status:          episode.GetStatus().String(),
		ReleaseDate:     episode.GetReleaseDate(),
		PlayCount:       episode.GetPlayCount(),
		PlayUrl:         playUrl,
		Comments:        items,
	}, nil
}

func getPlayUrl(ctx context.Context, scope *ioc.DependencyProvider, audioKey string) (string, error) {
	audioStore := ioc.GetDependency[audiostore.Service](scope)
	kvStore := ioc.GetDependency[kv.Store](scope)

	cacheKey := "play_url:" + audioKey

	cached, ok, err := kvStore.Get(ctx, cacheKey)
	if err != nil {
		logging.Logger.Warnf("failed to read play url cache for %q: %v", audioKey, err)
	}
	if ok {
		return cached, nil
	}

	playUrl, expiry, err := audioStore.PlayUrl(ctx, audioKey)
	if err != nil {
		return "", fmt.Errorf("getting play url for %q: %w", audioKey, err)
	}

	if expiry > playUrlCacheMargin {
		err = kvStore.Set(ctx, cacheKey, playUrl, kv.WithExpiration(expiry-playUrlCacheMargin))
		if err != nil {
			logging.Logger.Warnf("failed to cache play url for %q: %v", audioKey, err)
		}
	}

	return playUrl, nil
}
