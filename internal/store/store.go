package store

import (
	"context"

	"github.com/slateworks/lessonforge/internal/types"
)

// Store defines the contract for all record storage operations. Ids are
// assigned by the store, monotonically increasing per entity type, and are
// never client-supplied.
type Store interface {
	CreateContent(ctx context.Context, c types.NewContent) (*types.Content, error)
	GetContent(ctx context.Context, id int64) (*types.Content, error)
	ListContent(ctx context.Context) ([]types.Content, error)
	ListContentByOwner(ctx context.Context, ownerID int64) ([]types.Content, error)
	UpdateContent(ctx context.Context, id int64, patch types.ContentPatch) (*types.Content, error)
	DeleteContent(ctx context.Context, id int64) error

	CreateSuggestion(ctx context.Context, s types.NewTopicSuggestion) (*types.TopicSuggestion, error)
	GetSuggestion(ctx context.Context, id int64) (*types.TopicSuggestion, error)
	ListSuggestions(ctx context.Context, subject, grade string, limit int) ([]types.TopicSuggestion, error)
	DeleteSuggestion(ctx context.Context, id int64) error

	CreateUser(ctx context.Context, u types.NewUser) (*types.User, error)
	GetUserByUsername(ctx context.Context, username string) (*types.User, error)

	GetStats(ctx context.Context) (*types.StoreStats, error)
	Close() error
}
