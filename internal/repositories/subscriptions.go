package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/podhaven/podhaven/internal/utils/pointer"
)

// Subscription links a listener to a podcast. The pair is unique, there
// is nothing to update on it.
type Subscription struct {
	BaseModel

	userId    uuid.UUID
	podcastId int64
}

func NewSubscription(userId uuid.UUID, podcastId int64) *Subscription {
	return &Subscription{
		BaseModel: NewBaseModel(),
		userId:    userId,
		podcastId: podcastId,
	}
}

func NewSubscriptionFromDB(userId uuid.UUID, podcastId int64, base BaseModel) *Subscription {
	return &Subscription{
		BaseModel: base,
		userId:    userId,
		podcastId: podcastId,
	}
}

func (s *Subscription) GetUserId() uuid.UUID {
	return s.userId
}

func (s *Subscription) GetPodcastId() int64 {
	return s.podcastId
}

type SubscriptionFilter struct {
	id        *int64
	userId    *uuid.UUID
	podcastId *int64
}

func NewSubscriptionFilter() *SubscriptionFilter {
	return &SubscriptionFilter{}
}

func (f *SubscriptionFilter) clone() *SubscriptionFilter {
	cloned := *f
	return &cloned
}

func (f *SubscriptionFilter) ById(id int64) *SubscriptionFilter {
	cloned := f.clone()
	cloned.id = &id
	return cloned
}

func (f *SubscriptionFilter) HasId() bool {
	return f.id != nil
}

func (f *SubscriptionFilter) GetId() int64 {
	return pointer.DerefOrZero(f.id)
}

func (f *SubscriptionFilter) ByUserId(userId uuid.UUID) *SubscriptionFilter {
	cloned := f.clone()
	cloned.userId = &userId
	return cloned
}

func (f *SubscriptionFilter) HasUserId() bool {
	return f.userId != nil
}

func (f *SubscriptionFilter) GetUserId() uuid.UUID {
	return pointer.DerefOrZero(f.userId)
}

func (f *SubscriptionFilter) ByPodcastId(podcastId int64) *SubscriptionFilter {
	cloned := f.clone()
	cloned.podcastId = &podcastId
	return cloned
}

func (f *SubscriptionFilter) HasPodcastId() bool {
	return f.podcastId != nil
}

func (f *SubscriptionFilter) GetPodcastId() int64 {
	return pointer.DerefOrZero(f.podcastId)
}

type SubscriptionRepository interface {
	Single(ctx context.Context, filter *SubscriptionFilter) (*Subscription, error)
	First(ctx context.Context, filter *SubscriptionFilter) (*Subscription, error)
	List(ctx context.Context, filter *SubscriptionFilter) ([]*Subscription, int, error)
	Insert(subscription *Subscription)
	Delete(subscription *Subscription)
}
