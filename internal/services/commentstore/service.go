package commentstore

import (
	"context"
	"time"
)

// Comment lives in the partitioned document store, keyed by episode.
// Podcast id and author name are denormalized so that a comment can be
// rendered without touching the metadata store.
type Comment struct {
	EpisodeId  int64
	CommentId  string
	PodcastId  int64
	AuthorId   string
	AuthorName string
	Text       string
	PostedAt   time.Time
}

type Service interface {
	// List returns the comments of an episode, newest first.
	List(ctx context.Context, episodeId int64) ([]Comment, error)
	// Get returns nil when the comment does not exist.
	Get(ctx context.Context, episodeId int64, commentId string) (*Comment, error)
	// Put inserts or overwrites the comment identified by its keys.
	Put(ctx context.Context, comment Comment) error
}
