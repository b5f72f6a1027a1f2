package inmemory

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/podhaven/podhaven/internal/repositories"
)

// Sequence hands out the ids that postgres would assign via bigserial.
// One instance is shared by all contexts of a database.
type Sequence struct {
	n int64
}

func NewSequence() *Sequence {
	return &Sequence{}
}

func (s *Sequence) Next() int64 {
	return atomic.AddInt64(&s.n, 1)
}

// Row structs keep their fields exported so that the go-memdb reflection
// indexers can reach them. They never leave this package.

type userRow struct {
	Id          string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     uint32
	DisplayName string
	Email       string
}

func mapUserRow(u *repositories.User) *userRow {
	var version uint32
	if v, ok := u.GetVersion().(uint32); ok {
		version = v
	}

	return &userRow{
		Id:          u.GetId().String(),
		CreatedAt:   u.GetCreatedAt(),
		UpdatedAt:   u.GetUpdatedAt(),
		Version:     version,
		DisplayName: u.GetDisplayName(),
		Email:       u.GetEmail(),
	}
}

func (r *userRow) Map() *repositories.User {
	return repositories.NewUserFromDB(
		uuid.MustParse(r.Id),
		r.DisplayName,
		r.Email,
		r.CreatedAt,
		r.UpdatedAt,
		r.Version,
	)
}

type podcastRow struct {
	Id          int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     uint32
	OwnerId     string
	Title       string
	Description string
}

func mapPodcastRow(p *repositories.Podcast) *podcastRow {
	var version uint32
	if v, ok := p.GetVersion().(uint32); ok {
		version = v
	}

	ownerId := ""
	if p.GetOwnerId() != nil {
		ownerId = p.GetOwnerId().String()
	}

	return &podcastRow{
		Id:          p.GetId(),
		CreatedAt:   p.GetCreatedAt(),
		UpdatedAt:   p.GetUpdatedAt(),
		Version:     version,
		OwnerId:     ownerId,
		Title:       p.GetTitle(),
		Description: p.GetDescription(),
	}
}

func (r *podcastRow) Map() *repositories.Podcast {
	var ownerId *uuid.UUID
	if r.OwnerId != "" {
		parsed := uuid.MustParse(r.OwnerId)
		ownerId = &parsed
	}

	return repositories.NewPodcastFromDB(
		ownerId,
		r.Title,
		r.Description,
		repositories.NewBaseModelFromDB(r.Id, r.CreatedAt, r.UpdatedAt, r.Version),
	)
}

type episodeRow struct {
	Id              int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Version         uint32
	PodcastId       int64
	Title           string
	AudioKey        string
	DurationMinutes int
	Status          repositories.EpisodeStatus
	ReleaseDate     time.Time
	PlayCount       int64
}

func mapEpisodeRow(e *repositories.Episode) *episodeRow {
	var version uint32
	if v, ok := e.GetVersion().(uint32); ok {
		version = v
	}

	return &episodeRow{
		Id:              e.GetId(),
		CreatedAt:       e.GetCreatedAt(),
		UpdatedAt:       e.GetUpdatedAt(),
		Version:         version,
		PodcastId:       e.GetPodcastId(),
		Title:           e.GetTitle(),
		AudioKey:        e.GetAudioKey(),
		DurationMinutes: e.GetDurationMinutes(),
		Status:          e.GetStatus(),
		ReleaseDate:     e.GetReleaseDate(),
		PlayCount:       e.GetPlayCount(),
	}
}

func (r *episodeRow) Map() *repositories.Episode {
	return repositories.NewEpisodeFromDB(
		r.PodcastId,
		r.Title,
		r.AudioKey,
		r.DurationMinutes,
		r.Status,
		r.ReleaseDate,
		r.PlayCount,
		repositories.NewBaseModelFromDB(r.Id, r.CreatedAt, r.UpdatedAt, r.Version),
	)
}

type subscriptionRow struct {
	Id        int64
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   uint32
	UserId    string
	PodcastId int64
}

func mapSubscriptionRow(s *repositories.Subscription) *subscriptionRow {
	var version uint32
	if v, ok := s.GetVersion().(uint32); ok {
		version = v
	}

	return &subscriptionRow{
		Id:        s.GetId(),
		CreatedAt: s.GetCreatedAt(),
		UpdatedAt: s.GetUpdatedAt(),
		Version:   version,
		UserId:    s.GetUserId().String(),
		PodcastId: s.GetPodcastId(),
	}
}

func (r *subscriptionRow) Map() *repositories.Subscription {
	return repositories.NewSubscriptionFromDB(
		uuid.MustParse(r.UserId),
		r.PodcastId,
		repositories.NewBaseModelFromDB(r.Id, r.CreatedAt, r.UpdatedAt, r.Version),
	)
}
