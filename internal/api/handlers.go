package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/slateworks/lessonforge/internal/generate"
	"github.com/slateworks/lessonforge/internal/metrics"
	"github.com/slateworks/lessonforge/internal/store"
	"github.com/slateworks/lessonforge/internal/types"
	"github.com/slateworks/lessonforge/internal/validation"
)

// DefaultSuggestionLimit bounds GET /api/suggestions when no limit is given.
const DefaultSuggestionLimit = 10

// ContentGenerator produces AI-authored suggestions and lesson content.
type ContentGenerator interface {
	Suggestions(ctx context.Context, subject, grade string, count int) ([]types.NewTopicSuggestion, error)
	LessonContent(ctx context.Context, prompt, subject, grade string) (string, error)
}

// Handler implements the API handlers.
type Handler struct {
	store     store.Store
	generator ContentGenerator
	metrics   *metrics.Collector
	version   string
}

// NewHandler creates a new Handler.
func NewHandler(s store.Store, g ContentGenerator, m *metrics.Collector, version string) *Handler {
	return &Handler{
		store:     s,
		generator: g,
		metrics:   m,
		version:   version,
	}
}

// Health returns the health status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetStats(r.Context())
	if err != nil {
		WriteProblem(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	respondJSON(w, http.StatusOK, types.HealthResponse{
		Status:          "healthy",
		Version:         h.version,
		StorageDriver:   storageDriverName(h.store),
		ContentCount:    stats.ContentCount,
		SuggestionCount: stats.SuggestionCount,
	})
}

// CreateContent handles POST /api/content.
func (h *Handler) CreateContent(w http.ResponseWriter, r *http.Request) {
	var req types.CreateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	if errs := validation.Validate(req); len(errs) > 0 {
		WriteValidationProblem(w, r, "Request contains invalid fields", errs)
		return
	}

	rec, err := h.store.CreateContent(r.Context(), types.NewContent{
		Title:       req.Title,
		Type:        types.ContentType(req.Type),
		Subject:     req.Subject,
		Grade:       req.Grade,
		Difficulty:  types.Difficulty(req.Difficulty),
		HTMLContent: req.HTMLContent,
		Tags:        req.Tags,
		IsPublic:    req.IsPublic,
		CreatedByID: req.CreatedByID,
	})
	if err != nil {
		slog.Error("content creation failed", "error", err)
		MapStoreError(w, r, err)
		return
	}

	h.metrics.ContentCreated.Inc()
	respondJSON(w, http.StatusCreated, rec)
}

// ListContent handles GET /api/content with an optional userId filter.
func (h *Handler) ListContent(w http.ResponseWriter, r *http.Request) {
	var (
		recs []types.Content
		err  error
	)

	if v := r.URL.Query().Get("userId"); v != "" {
		ownerID, parseErr := strconv.ParseInt(v, 10, 64)
		if parseErr != nil {
			WriteProblem(w, r, http.StatusBadRequest, "userId must be an integer")
			return
		}
		recs, err = h.store.ListContentByOwner(r.Context(), ownerID)
	} else {
		recs, err = h.store.ListContent(r.Context())
	}

	if err != nil {
		slog.Error("content listing failed", "error", err)
		MapStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, recs)
}

// GetContent handles GET /api/content/{id}.
func (h *Handler) GetContent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	rec, err := h.store.GetContent(r.Context(), id)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, rec)
}

// UpdateContent handles PATCH /api/content/{id}. Fields absent from the
// body are left untouched; present fields are re-validated, enum
// membership included.
func (h *Handler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req types.UpdateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	if errs := validation.Validate(req); len(errs) > 0 {
		WriteValidationProblem(w, r, "Request contains invalid fields", errs)
		return
	}

	rec, err := h.store.UpdateContent(r.Context(), id, req.Patch())
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Error("content update failed", "error", err, "id", id)
		}
		MapStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, rec)
}

// DeleteContent handles DELETE /api/content/{id}.
func (h *Handler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteContent(r.Context(), id); err != nil {
		MapStoreError(w, r, err)
		return
	}

	h.metrics.ContentDeleted.Inc()
	w.WriteHeader(http.StatusNoContent)
}

// CreateSuggestion handles POST /api/suggestions.
func (h *Handler) CreateSuggestion(w http.ResponseWriter, r *http.Request) {
	var req types.CreateSuggestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	if errs := validation.Validate(req); len(errs) > 0 {
		WriteValidationProblem(w, r, "Request contains invalid fields", errs)
		return
	}

	rec, err := h.store.CreateSuggestion(r.Context(), types.NewTopicSuggestion{
		Title:            req.Title,
		Description:      req.Description,
		Subject:          req.Subject,
		Grade:            req.Grade,
		Category:         req.Category,
		DifficultyLevels: req.DifficultyLevels,
	})
	if err != nil {
		slog.Error("suggestion creation failed", "error", err)
		MapStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, rec)
}

// ListSuggestions handles GET /api/suggestions. subject and grade are
// required query parameters; limit defaults to DefaultSuggestionLimit.
func (h *Handler) ListSuggestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	subject := q.Get("subject")
	grade := q.Get("grade")

	var errs []validation.ValidationError
	if subject == "" {
		errs = append(errs, validation.ValidationError{Field: "subject", Message: "is required"})
	}
	if grade == "" {
		errs = append(errs, validation.ValidationError{Field: "grade", Message: "is required"})
	}
	if len(errs) > 0 {
		WriteValidationProblem(w, r, "Request contains invalid fields", errs)
		return
	}

	limit := DefaultSuggestionLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			WriteProblem(w, r, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	recs, err := h.store.ListSuggestions(r.Context(), subject, grade, limit)
	if err != nil {
		slog.Error("suggestion listing failed", "error", err)
		MapStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, recs)
}

// DeleteSuggestion handles DELETE /api/suggestions/{id}.
func (h *Handler) DeleteSuggestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteSuggestion(r.Context(), id); err != nil {
		MapStoreError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GenerateSuggestions handles POST /api/ai/suggestions. Every generated
// suggestion is persisted before the response is written; generation
// without persistence is not a supported sub-case.
func (h *Handler) GenerateSuggestions(w http.ResponseWriter, r *http.Request) {
	var req types.GenerateSuggestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	if errs := validation.Validate(req); len(errs) > 0 {
		WriteValidationProblem(w, r, "Request contains invalid fields", errs)
		return
	}

	count := req.Count
	if count == 0 {
		count = 5
	}

	generated, err := h.generator.Suggestions(r.Context(), req.Subject, req.Grade, count)
	if err != nil {
		h.metrics.GenerationFailures.Inc()
		var parseErr *generate.ParseError
		if errors.As(err, &parseErr) {
			// Raw model text goes to the log, never to the client
			slog.Error("suggestion generation unparseable",
				"error", err,
				"raw", parseErr.Raw,
			)
		} else {
			slog.Error("suggestion generation failed", "error", err)
		}
		WriteProblem(w, r, http.StatusInternalServerError, "Suggestion generation failed")
		return
	}

	persisted := make([]types.TopicSuggestion, 0, len(generated))
	for _, s := range generated {
		rec, err := h.store.CreateSuggestion(r.Context(), s)
		if err != nil {
			slog.Error("generated suggestion persistence failed", "error", err)
			MapStoreError(w, r, err)
			return
		}
		persisted = append(persisted, *rec)
	}

	h.metrics.SuggestionsGenerated.Add(float64(len(persisted)))
	respondJSON(w, http.StatusOK, types.GenerateSuggestionsResponse{Suggestions: persisted})
}

// GenerateContent handles POST /api/ai/content.
func (h *Handler) GenerateContent(w http.ResponseWriter, r *http.Request) {
	var req types.GenerateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	if errs := validation.Validate(req); len(errs) > 0 {
		WriteValidationProblem(w, r, "Request contains invalid fields", errs)
		return
	}

	content, err := h.generator.LessonContent(r.Context(), req.Prompt, req.Subject, req.Grade)
	if err != nil {
		h.metrics.GenerationFailures.Inc()
		slog.Error("content generation failed", "error", err)
		WriteProblem(w, r, http.StatusInternalServerError, "Content generation failed")
		return
	}

	respondJSON(w, http.StatusOK, types.GenerateContentResponse{Content: content})
}

// pathID parses the {id} route parameter. A malformed id is a 400; the
// handler must return immediately when ok is false.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		WriteProblem(w, r, http.StatusBadRequest, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func storageDriverName(s store.Store) string {
	switch s.(type) {
	case *store.MemoryStore:
		return "memory"
	case *store.SQLiteStore:
		return "sqlite"
	default:
		return "unknown"
	}
}
