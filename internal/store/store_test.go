package store

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/slateworks/lessonforge/internal/types"
)

// The behavioral suite below runs against every driver; memory_test.go and
// sqlite_test.go register their constructors.

func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("CreateContent_AssignsMonotonicIDs", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		ctx := context.Background()

		var last int64
		for i := 0; i < 5; i++ {
			rec, err := s.CreateContent(ctx, sampleContent())
			if err != nil {
				t.Fatal(err)
			}
			if rec.ID <= last {
				t.Fatalf("id %d not greater than previous %d", rec.ID, last)
			}
			last = rec.ID
		}
	})

	t.Run("CreateContent_RoundTrip", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		ctx := context.Background()

		in := sampleContent()
		created, err := s.CreateContent(ctx, in)
		if err != nil {
			t.Fatal(err)
		}

		got, err := s.GetContent(ctx, created.ID)
		if err != nil {
			t.Fatal(err)
		}

		if got.Title != in.Title || got.Type != in.Type || got.Subject != in.Subject ||
			got.Grade != in.Grade || got.Difficulty != in.Difficulty ||
			got.HTMLContent != in.HTMLContent || got.IsPublic != in.IsPublic ||
			got.CreatedByID != in.CreatedByID {
			t.Errorf("round-trip mismatch: got %+v, want fields of %+v", got, in)
		}
		if !reflect.DeepEqual(got.Tags, in.Tags) {
			t.Errorf("tags = %v, want %v", got.Tags, in.Tags)
		}
	})

	t.Run("GetContent_NotFound", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()

		_, err := s.GetContent(context.Background(), 999)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("ListContent_InsertionOrder", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		ctx := context.Background()

		titles := []string{"First Lesson", "Second Lesson", "Third Lesson"}
		for _, title := range titles {
			c := sampleContent()
			c.Title = title
			if _, err := s.CreateContent(ctx, c); err != nil {
				t.Fatal(err)
			}
		}

		recs, err := s.ListContent(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(recs) != len(titles) {
			t.Fatalf("len = %d, want %d", len(recs), len(titles))
		}
		for i, rec := range recs {
			if rec.Title != titles[i] {
				t.Errorf("recs[%d].Title = %q, want %q", i, rec.Title, titles[i])
			}
		}
	})

	t.Run("ListContentByOwner", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		ctx := context.Background()

		for _, owner := range []int64{1, 2, 1} {
			c := sampleContent()
			c.CreatedByID = owner
			if _, err := s.CreateContent(ctx, c); err != nil {
				t.Fatal(err)
			}
		}

		recs, err := s.ListContentByOwner(ctx, 1)
		if err != nil {
			t.Fatal(err)
		}
		if len(recs) != 2 {
			t.Fatalf("len = %d, want 2", len(recs))
		}
		for _, rec := range recs {
			if rec.CreatedByID != 1 {
				t.Errorf("CreatedByID = %d, want 1", rec.CreatedByID)
			}
		}
	})

	t.Run("UpdateContent_ShallowMerge", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		ctx := context.Background()

		created, err := s.CreateContent(ctx, sampleContent())
		if err != nil {
			t.Fatal(err)
		}

		title := "Advanced Fractions"
		difficulty := types.DifficultyHard
		got, err := s.UpdateContent(ctx, created.ID, types.ContentPatch{
			Title:      &title,
			Difficulty: &difficulty,
		})
		if err != nil {
			t.Fatal(err)
		}

		if got.Title != title {
			t.Errorf("Title = %q, want %q", got.Title, title)
		}
		if got.Difficulty != difficulty {
			t.Errorf("Difficulty = %q, want %q", got.Difficulty, difficulty)
		}
		// Untouched fields survive the merge
		if got.Subject != created.Subject || got.HTMLContent != created.HTMLContent {
			t.Errorf("untouched fields changed: %+v", got)
		}
		if !reflect.DeepEqual(got.Tags, created.Tags) {
			t.Errorf("Tags = %v, want %v", got.Tags, created.Tags)
		}
	})

	t.Run("UpdateContent_ClearTagsWithEmptySlice", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		ctx := context.Background()

		created, err := s.CreateContent(ctx, sampleContent())
		if err != nil {
			t.Fatal(err)
		}

		empty := []string{}
		got, err := s.UpdateContent(ctx, created.ID, types.ContentPatch{Tags: &empty})
		if err != nil {
			t.Fatal(err)
		}
		if len(got.Tags) != 0 {
			t.Errorf("Tags = %v, want empty", got.Tags)
		}
	})

	t.Run("UpdateContent_NotFoundLeavesStoreUnchanged", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		ctx := context.Background()

		created, err := s.CreateContent(ctx, sampleContent())
		if err != nil {
			t.Fatal(err)
		}

		title := "Should Not Apply"
		if _, err := s.UpdateContent(ctx, created.ID+100, types.ContentPatch{Title: &title}); !errors.Is(err, ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}

		recs, err := s.ListContent(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(recs) != 1 || recs[0].Title != created.Title {
			t.Errorf("store changed after failed update: %+v", recs)
		}
	})

	t.Run("DeleteContent_SecondDeleteFails", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		ctx := context.Background()

		created, err := s.CreateContent(ctx, sampleContent())
		if err != nil {
			t.Fatal(err)
		}

		if err := s.DeleteContent(ctx, created.ID); err != nil {
			t.Fatalf("first delete: %v", err)
		}
		if err := s.DeleteContent(ctx, created.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("second delete err = %v, want ErrNotFound", err)
		}
	})

	t.Run("ListSuggestions_FilterAndLimit", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		ctx := context.Background()

		seed := []types.NewTopicSuggestion{
			{Title: "Algebra Warmups", Description: "d", Subject: "Mathematics", Grade: "9th Grade"},
			{Title: "Geometry Proofs", Description: "d", Subject: "Mathematics", Grade: "9th Grade"},
			{Title: "Trigonometry Intro", Description: "d", Subject: "Mathematics", Grade: "9th Grade"},
			{Title: "Cell Structure", Description: "d", Subject: "Biology", Grade: "9th Grade"},
			{Title: "Statistics Basics", Description: "d", Subject: "Mathematics", Grade: "12th Grade"},
		}
		for _, sg := range seed {
			if _, err := s.CreateSuggestion(ctx, sg); err != nil {
				t.Fatal(err)
			}
		}

		recs, err := s.ListSuggestions(ctx, "Mathematics", "9th Grade", 2)
		if err != nil {
			t.Fatal(err)
		}
		if len(recs) != 2 {
			t.Fatalf("len = %d, want 2", len(recs))
		}
		for _, rec := range recs {
			if rec.Subject != "Mathematics" || rec.Grade != "9th Grade" {
				t.Errorf("filter leaked: %+v", rec)
			}
		}
	})

	t.Run("DeleteSuggestion", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		ctx := context.Background()

		created, err := s.CreateSuggestion(ctx, types.NewTopicSuggestion{
			Title: "Fractions in Daily Life", Description: "d", Subject: "Math", Grade: "5th Grade",
		})
		if err != nil {
			t.Fatal(err)
		}

		if err := s.DeleteSuggestion(ctx, created.ID); err != nil {
			t.Fatal(err)
		}
		if err := s.DeleteSuggestion(ctx, created.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("second delete err = %v, want ErrNotFound", err)
		}
	})

	t.Run("Suggestion_PreservesDifficultyLevels", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		ctx := context.Background()

		levels := []string{"easy", "medium"}
		created, err := s.CreateSuggestion(ctx, types.NewTopicSuggestion{
			Title: "Decimals", Description: "d", Subject: "Math", Grade: "5th Grade",
			Category: "arithmetic", DifficultyLevels: levels,
		})
		if err != nil {
			t.Fatal(err)
		}

		got, err := s.GetSuggestion(ctx, created.ID)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got.DifficultyLevels, levels) {
			t.Errorf("DifficultyLevels = %v, want %v", got.DifficultyLevels, levels)
		}
		if got.Category != "arithmetic" {
			t.Errorf("Category = %q, want %q", got.Category, "arithmetic")
		}
	})

	t.Run("CreateUser_DuplicateUsername", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		ctx := context.Background()

		if _, err := s.CreateUser(ctx, types.NewUser{Username: "teacher", PasswordHash: "h"}); err != nil {
			t.Fatal(err)
		}
		if _, err := s.CreateUser(ctx, types.NewUser{Username: "teacher", PasswordHash: "h"}); !errors.Is(err, ErrDuplicateUsername) {
			t.Errorf("err = %v, want ErrDuplicateUsername", err)
		}
	})

	t.Run("GetUserByUsername", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		ctx := context.Background()

		created, err := s.CreateUser(ctx, types.NewUser{Username: "teacher", PasswordHash: "h"})
		if err != nil {
			t.Fatal(err)
		}

		got, err := s.GetUserByUsername(ctx, "teacher")
		if err != nil {
			t.Fatal(err)
		}
		if got.ID != created.ID || got.PasswordHash != "h" {
			t.Errorf("got %+v, want id %d", got, created.ID)
		}

		if _, err := s.GetUserByUsername(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("GetStats", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		ctx := context.Background()

		if _, err := s.CreateContent(ctx, sampleContent()); err != nil {
			t.Fatal(err)
		}
		if _, err := s.CreateSuggestion(ctx, types.NewTopicSuggestion{
			Title: "t", Description: "d", Subject: "s", Grade: "g",
		}); err != nil {
			t.Fatal(err)
		}

		stats, err := s.GetStats(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if stats.ContentCount != 1 || stats.SuggestionCount != 1 {
			t.Errorf("stats = %+v, want 1 content and 1 suggestion", stats)
		}
	})
}

func sampleContent() types.NewContent {
	return types.NewContent{
		Title:       "Introduction to Fractions",
		Type:        types.ContentNotes,
		Subject:     "Mathematics",
		Grade:       "5th Grade",
		Difficulty:  types.DifficultyEasy,
		HTMLContent: "<p>Fractions represent parts of a whole.</p>",
		Tags:        []string{"fractions", "numbers"},
		IsPublic:    true,
		CreatedByID: 1,
	}
}
