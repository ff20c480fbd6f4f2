package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/slateworks/lessonforge/internal/types"
)

func newTestSQLite(t *testing.T) Store {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSQLiteStore_Suite(t *testing.T) {
	runStoreSuite(t, newTestSQLite)
}

func TestSQLiteStore_New(t *testing.T) {
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
}

func TestSQLiteStore_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "lessonforge.db")

	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if _, err := s.CreateContent(context.Background(), sampleContent()); err != nil {
		t.Fatal(err)
	}
}

func TestSQLiteStore_NilTagsStayNil(t *testing.T) {
	s := newTestSQLite(t)
	defer s.Close()
	ctx := context.Background()

	c := sampleContent()
	c.Tags = nil
	created, err := s.CreateContent(ctx, c)
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.GetContent(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Tags != nil {
		t.Errorf("Tags = %v, want nil", got.Tags)
	}
}

func TestSQLiteStore_UpdatePersists(t *testing.T) {
	s := newTestSQLite(t)
	defer s.Close()
	ctx := context.Background()

	created, err := s.CreateContent(ctx, sampleContent())
	if err != nil {
		t.Fatal(err)
	}

	isPublic := false
	htmlContent := "<h2>Revised</h2><p>New material.</p>"
	if _, err := s.UpdateContent(ctx, created.ID, types.ContentPatch{
		IsPublic:    &isPublic,
		HTMLContent: &htmlContent,
	}); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetContent(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.IsPublic {
		t.Error("IsPublic = true, want false after explicit clear")
	}
	if got.HTMLContent != htmlContent {
		t.Errorf("HTMLContent = %q, want %q", got.HTMLContent, htmlContent)
	}
	if !got.UpdatedAt.After(got.CreatedAt) && !got.UpdatedAt.Equal(got.CreatedAt) {
		t.Errorf("UpdatedAt %v before CreatedAt %v", got.UpdatedAt, got.CreatedAt)
	}
}
