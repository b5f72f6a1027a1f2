package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/podhaven/podhaven/internal/change"
	"github.com/podhaven/podhaven/internal/utils/pointer"
)

type PodcastChange int

const (
	PodcastChangeTitle PodcastChange = iota
	PodcastChangeDescription
	PodcastChangeOwner
)

// Podcast owner is nullable so that account removal can detach shows
// without touching their episode history.
type Podcast struct {
	BaseModel
	change.List[PodcastChange]

	ownerId     *uuid.UUID
	title       string
	description string
}

func NewPodcast(ownerId uuid.UUID, title string, description string) *Podcast {
	return &Podcast{
		BaseModel:   NewBaseModel(),
		List:        change.NewChanges[PodcastChange](),
		ownerId:     &ownerId,
		title:       title,
		description: description,
	}
}

func NewPodcastFromDB(ownerId *uuid.UUID, title string, description string, base BaseModel) *Podcast {
	return &Podcast{
		BaseModel:   base,
		List:        change.NewChanges[PodcastChange](),
		ownerId:     ownerId,
		title:       title,
		description: description,
	}
}

func (p *Podcast) GetOwnerId() *uuid.UUID {
	return p.ownerId
}

func (p *Podcast) IsOwnedBy(userId uuid.UUID) bool {
	return p.ownerId != nil && *p.ownerId == userId
}

func (p *Podcast) ClearOwner() {
	if p.ownerId == nil {
		return
	}

	p.ownerId = nil
	p.TrackChange(PodcastChangeOwner)
}

func (p *Podcast) GetTitle() string {
	return p.title
}

func (p *Podcast) SetTitle(title string) {
	if p.title == title {
		return
	}

	p.title = title
	p.TrackChange(PodcastChangeTitle)
}

func (p *Podcast) GetDescription() string {
	return p.description
}

func (p *Podcast) SetDescription(description string) {
	if p.description == description {
		return
	}

	p.description = description
	p.TrackChange(PodcastChangeDescription)
}

type PodcastFilter struct {
	id      *int64
	ownerId *uuid.UUID
}

func NewPodcastFilter() *PodcastFilter {
	return &PodcastFilter{}
}

func (f *PodcastFilter) clone() *PodcastFilter {
	cloned := *f
	return &cloned
}

func (f *PodcastFilter) ById(id int64) *PodcastFilter {
	cloned := f.clone()
	cloned.id = &id
	return cloned
}

func (f *PodcastFilter) HasId() bool {
	return f.id != nil
}

func (f *PodcastFilter) GetId() int64 {
	return pointer.DerefOrZero(f.id)
}

func (f *PodcastFilter) ByOwnerId(ownerId uuid.UUID) *PodcastFilter {
	cloned := f.clone()
	cloned.ownerId = &ownerId
	return cloned
}

func (f *PodcastFilter) HasOwnerId() bool {
	return f.ownerId != nil
}

func (f *PodcastFilter) GetOwnerId() uuid.UUID {
	return pointer.DerefOrZero(f.ownerId)
}

type PodcastRepository interface {
	Single(ctx context.Context, filter *PodcastFilter) (*Podcast, error)
	First(ctx context.Context, filter *PodcastFilter) (*Podcast, error)
	List(ctx context.Context, filter *PodcastFilter) ([]*Podcast, int, error)
	Insert(podcast *Podcast)
	Update(podcast *Podcast)
	Delete(podcast *Podcast)
}
