package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/slateworks/lessonforge/internal/types"
)

// Compile-time interface check
var _ Store = (*MemoryStore)(nil)

// MemoryStore is the default storage driver: per-entity maps guarded by a
// single RWMutex. Records live only for the process lifetime. Go serves
// requests concurrently, so compound read-modify-write operations (update,
// delete) hold the write lock for their full duration.
type MemoryStore struct {
	mu sync.RWMutex

	content     map[int64]types.Content
	suggestions map[int64]types.TopicSuggestion
	users       map[int64]types.User

	nextContentID    int64
	nextSuggestionID int64
	nextUserID       int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		content:     make(map[int64]types.Content),
		suggestions: make(map[int64]types.TopicSuggestion),
		users:       make(map[int64]types.User),
	}
}

func (m *MemoryStore) CreateContent(ctx context.Context, c types.NewContent) (*types.Content, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextContentID++
	now := time.Now().UTC()
	rec := types.Content{
		ID:          m.nextContentID,
		Title:       c.Title,
		Type:        c.Type,
		Subject:     c.Subject,
		Grade:       c.Grade,
		Difficulty:  c.Difficulty,
		HTMLContent: c.HTMLContent,
		Tags:        cloneTags(c.Tags),
		IsPublic:    c.IsPublic,
		CreatedByID: c.CreatedByID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.content[rec.ID] = rec

	out := rec
	out.Tags = cloneTags(rec.Tags)
	return &out, nil
}

func (m *MemoryStore) GetContent(ctx context.Context, id int64) (*types.Content, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.content[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := rec
	out.Tags = cloneTags(rec.Tags)
	return &out, nil
}

func (m *MemoryStore) ListContent(ctx context.Context) ([]types.Content, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotContent(func(types.Content) bool { return true }), nil
}

func (m *MemoryStore) ListContentByOwner(ctx context.Context, ownerID int64) ([]types.Content, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotContent(func(c types.Content) bool { return c.CreatedByID == ownerID }), nil
}

// snapshotContent returns matching records in id order. Ids are monotonic,
// so id order is insertion order. Caller must hold at least a read lock.
func (m *MemoryStore) snapshotContent(match func(types.Content) bool) []types.Content {
	out := make([]types.Content, 0, len(m.content))
	for _, rec := range m.content {
		if match(rec) {
			rec.Tags = cloneTags(rec.Tags)
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *MemoryStore) UpdateContent(ctx context.Context, id int64, patch types.ContentPatch) (*types.Content, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.content[id]
	if !ok {
		return nil, ErrNotFound
	}

	applyPatch(&rec, patch)
	rec.UpdatedAt = time.Now().UTC()
	m.content[id] = rec

	out := rec
	out.Tags = cloneTags(rec.Tags)
	return &out, nil
}

func (m *MemoryStore) DeleteContent(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.content[id]; !ok {
		return ErrNotFound
	}
	delete(m.content, id)
	return nil
}

func (m *MemoryStore) CreateSuggestion(ctx context.Context, s types.NewTopicSuggestion) (*types.TopicSuggestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextSuggestionID++
	rec := types.TopicSuggestion{
		ID:               m.nextSuggestionID,
		Title:            s.Title,
		Description:      s.Description,
		Subject:          s.Subject,
		Grade:            s.Grade,
		Category:         s.Category,
		DifficultyLevels: cloneTags(s.DifficultyLevels),
		CreatedAt:        time.Now().UTC(),
	}
	m.suggestions[rec.ID] = rec

	out := rec
	out.DifficultyLevels = cloneTags(rec.DifficultyLevels)
	return &out, nil
}

func (m *MemoryStore) GetSuggestion(ctx context.Context, id int64) (*types.TopicSuggestion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.suggestions[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := rec
	out.DifficultyLevels = cloneTags(rec.DifficultyLevels)
	return &out, nil
}

func (m *MemoryStore) ListSuggestions(ctx context.Context, subject, grade string, limit int) ([]types.TopicSuggestion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.TopicSuggestion, 0, len(m.suggestions))
	for _, rec := range m.suggestions {
		if rec.Subject == subject && rec.Grade == grade {
			rec.DifficultyLevels = cloneTags(rec.DifficultyLevels)
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) DeleteSuggestion(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.suggestions[id]; !ok {
		return ErrNotFound
	}
	delete(m.suggestions, id)
	return nil
}

func (m *MemoryStore) CreateUser(ctx context.Context, u types.NewUser) (*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Username == u.Username {
			return nil, ErrDuplicateUsername
		}
	}

	m.nextUserID++
	rec := types.User{
		ID:           m.nextUserID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		CreatedAt:    time.Now().UTC(),
	}
	m.users[rec.ID] = rec

	out := rec
	return &out, nil
}

func (m *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*types.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, rec := range m.users {
		if rec.Username == username {
			out := rec
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetStats(ctx context.Context) (*types.StoreStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return &types.StoreStats{
		ContentCount:    int64(len(m.content)),
		SuggestionCount: int64(len(m.suggestions)),
		UserCount:       int64(len(m.users)),
	}, nil
}

// Close is a no-op for the in-memory driver.
func (m *MemoryStore) Close() error {
	return nil
}

// applyPatch performs the shallow merge: present fields overwrite, nil
// fields are untouched.
func applyPatch(rec *types.Content, patch types.ContentPatch) {
	if patch.Title != nil {
		rec.Title = *patch.Title
	}
	if patch.Type != nil {
		rec.Type = *patch.Type
	}
	if patch.Subject != nil {
		rec.Subject = *patch.Subject
	}
	if patch.Grade != nil {
		rec.Grade = *patch.Grade
	}
	if patch.Difficulty != nil {
		rec.Difficulty = *patch.Difficulty
	}
	if patch.HTMLContent != nil {
		rec.HTMLContent = *patch.HTMLContent
	}
	if patch.Tags != nil {
		rec.Tags = cloneTags(*patch.Tags)
	}
	if patch.IsPublic != nil {
		rec.IsPublic = *patch.IsPublic
	}
}

// cloneTags copies a string slice so callers never alias store-owned state.
func cloneTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}
