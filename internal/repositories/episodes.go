package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/podhaven/podhaven/internal/change"
	"github.com/podhaven/podhaven/internal/utils/pointer"
)

type EpisodeStatus int

const (
	EpisodeStatusPending EpisodeStatus = iota
	EpisodeStatusApproved
	EpisodeStatusRejected
)

func (s EpisodeStatus) String() string {
	switch s {
	case EpisodeStatusPending:
		return "pending"
	case EpisodeStatusApproved:
		return "approved"
	case EpisodeStatusRejected:
		return "rejected"
	default:
		panic(fmt.Errorf("unknown episode status: %d", int(s)))
	}
}

func EpisodeStatusFromString(s string) (EpisodeStatus, error) {
	switch s {
	case "pending":
		return EpisodeStatusPending, nil
	case "approved":
		return EpisodeStatusApproved, nil
	case "rejected":
		return EpisodeStatusRejected, nil
	default:
		return EpisodeStatusPending, fmt.Errorf("unknown episode status: %q", s)
	}
}

type EpisodeChange int

const (
	EpisodeChangeTitle EpisodeChange = iota
	EpisodeChangeAudioKey
	EpisodeChangeDuration
	EpisodeChangeStatus
	EpisodeChangeReleaseDate
	EpisodeChangePlayCount
)

type Episode struct {
	BaseModel
	change.List[EpisodeChange]

	podcastId       int64
	title           string
	audioKey        string
	durationMinutes int
	status          EpisodeStatus
	releaseDate     time.Time

	playCount int64
	// playCountDelta is the number of plays recorded on this instance since
	// the last save. It is applied as a relative increment so that
	// concurrent listeners never lose plays.
	playCountDelta int64
}

func NewEpisode(podcastId int64, title string, audioKey string, durationMinutes int, releaseDate time.Time) *Episode {
	return &Episode{
		BaseModel:       NewBaseModel(),
		List:            change.NewChanges[EpisodeChange](),
		podcastId:       podcastId,
		title:           title,
		audioKey:        audioKey,
		durationMinutes: durationMinutes,
		status:          EpisodeStatusPending,
		releaseDate:     releaseDate,
		playCount:       0,
		playCountDelta:  0,
	}
}

func NewEpisodeFromDB(podcastId int64, title string, audioKey string, durationMinutes int, status EpisodeStatus, releaseDate time.Time, playCount int64, base BaseModel) *Episode {
	return &Episode{
		BaseModel:       base,
		List:            change.NewChanges[EpisodeChange](),
		podcastId:       podcastId,
		title:           title,
		audioKey:        audioKey,
		durationMinutes: durationMinutes,
		status:          status,
		releaseDate:     releaseDate,
		playCount:       playCount,
		playCountDelta:  0,
	}
}

func (e *Episode) GetPodcastId() int64 {
	return e.podcastId
}

func (e *Episode) GetTitle() string {
	return e.title
}

func (e *Episode) SetTitle(title string) {
	if e.title == title {
		return
	}

	e.title = title
	e.TrackChange(EpisodeChangeTitle)
}

func (e *Episode) GetAudioKey() string {
	return e.audioKey
}

func (e *Episode) SetAudioKey(audioKey string) {
	if e.audioKey == audioKey {
		return
	}

	e.audioKey = audioKey
	e.TrackChange(EpisodeChangeAudioKey)
}

func (e *Episode) GetDurationMinutes() int {
	return e.durationMinutes
}

func (e *Episode) SetDurationMinutes(durationMinutes int) {
	if e.durationMinutes == durationMinutes {
		return
	}

	e.durationMinutes = durationMinutes
	e.TrackChange(EpisodeChangeDuration)
}

func (e *Episode) GetStatus() EpisodeStatus {
	return e.status
}

func (e *Episode) SetStatus(status EpisodeStatus) {
	if e.status == status {
		return
	}

	e.status = status
	e.TrackChange(EpisodeChangeStatus)
}

func (e *Episode) GetReleaseDate() time.Time {
	return e.releaseDate
}

func (e *Episode) SetReleaseDate(releaseDate time.Time) {
	if e.releaseDate.Equal(releaseDate) {
		return
	}

	e.releaseDate = releaseDate
	e.TrackChange(EpisodeChangeReleaseDate)
}

func (e *Episode) GetPlayCount() int64 {
	return e.playCount
}

func (e *Episode) IncrementPlayCount() {
	e.playCount++
	e.playCountDelta++
	e.TrackChange(EpisodeChangePlayCount)
}

func (e *Episode) GetPlayCountDelta() int64 {
	return e.playCountDelta
}

// ResetPlayCountDelta is only supposed to be called by the repository
// implementations after the increment has been applied.
func (e *Episode) ResetPlayCountDelta() {
	e.playCountDelta = 0
}

type EpisodeFilter struct {
	id        *int64
	podcastId *int64
	status    *EpisodeStatus
}

func NewEpisodeFilter() *EpisodeFilter {
	return &EpisodeFilter{}
}

func (f *EpisodeFilter) clone() *EpisodeFilter {
	cloned := *f
	return &cloned
}

func (f *EpisodeFilter) ById(id int64) *EpisodeFilter {
	cloned := f.clone()
	cloned.id = &id
	return cloned
}

func (f *EpisodeFilter) HasId() bool {
	return f.id != nil
}

func (f *EpisodeFilter) GetId() int64 {
	return pointer.DerefOrZero(f.id)
}

func (f *EpisodeFilter) ByPodcastId(podcastId int64) *EpisodeFilter {
	cloned := f.clone()
	cloned.podcastId = &podcastId
	return cloned
}

func (f *EpisodeFilter) HasPodcastId() bool {
	return f.podcastId != nil
}

func (f *EpisodeFilter) GetPodcastId() int64 {
	return pointer.DerefOrZero(f.podcastId)
}

func (f *EpisodeFilter) ByStatus(status EpisodeStatus) *EpisodeFilter {
	cloned := f.clone()
	cloned.status = &status
	return cloned
}

func (f *EpisodeFilter) HasStatus() bool {
	return f.status != nil
}

func (f *EpisodeFilter) GetStatus() EpisodeStatus {
	return pointer.DerefOrZero(f.status)
}

type EpisodeRepository interface {
	Single(ctx context.Context, filter *EpisodeFilter) (*Episode, error)
	First(ctx context.Context, filter *EpisodeFilter) (*Episode, error)
	List(ctx context.Context, filter *EpisodeFilter) ([]*Episode, int, error)
	Insert(episode *Episode)
	Update(episode *Episode)
	Delete(episode *Episode)
}
