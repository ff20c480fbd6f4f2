package types

import "time"

// ContentType classifies an authored document.
type ContentType string

const (
	ContentNotes      ContentType = "notes"
	ContentQuiz       ContentType = "quiz"
	ContentAssignment ContentType = "assignment"
	ContentPaper      ContentType = "paper"
)

// Difficulty is the intended challenge level of a piece of content.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Content is a typed teaching document authored by a user.
type Content struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Type        ContentType `json:"type"`
	Subject     string      `json:"subject"`
	Grade       string      `json:"grade"`
	Difficulty  Difficulty  `json:"difficulty"`
	HTMLContent string      `json:"htmlContent"`
	Tags        []string    `json:"tags,omitempty"`
	IsPublic    bool        `json:"isPublic"`
	CreatedByID int64       `json:"createdById"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// NewContent carries the fields of a content record prior to id assignment.
type NewContent struct {
	Title       string
	Type        ContentType
	Subject     string
	Grade       string
	Difficulty  Difficulty
	HTMLContent string
	Tags        []string
	IsPublic    bool
	CreatedByID int64
}

// ContentPatch is a partial update. Nil fields are left untouched; clearing
// tags requires an explicit empty slice.
type ContentPatch struct {
	Title       *string
	Type        *ContentType
	Subject     *string
	Grade       *string
	Difficulty  *Difficulty
	HTMLContent *string
	Tags        *[]string
	IsPublic    *bool
}

// TopicSuggestion is a lesson-topic idea, either submitted directly or
// produced by the generator.
type TopicSuggestion struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Subject          string    `json:"subject"`
	Grade            string    `json:"grade"`
	Category         string    `json:"category,omitempty"`
	DifficultyLevels []string  `json:"difficultyLevels,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// NewTopicSuggestion carries the fields of a suggestion prior to id assignment.
type NewTopicSuggestion struct {
	Title            string
	Description      string
	Subject          string
	Grade            string
	Category         string
	DifficultyLevels []string
}

// User is an authoring account. One fixture user is seeded at startup;
// users are never mutated or deleted through the API.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewUser carries the fields of a user prior to id assignment.
type NewUser struct {
	Username     string
	PasswordHash string
}

// StoreStats holds aggregate record counts for health reporting.
type StoreStats struct {
	ContentCount    int64 `json:"contentCount"`
	SuggestionCount int64 `json:"suggestionCount"`
	UserCount       int64 `json:"userCount"`
}

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status          string `json:"status"`
	Version         string `json:"version"`
	StorageDriver   string `json:"storageDriver"`
	ContentCount    int64  `json:"contentCount"`
	SuggestionCount int64  `json:"suggestionCount"`
}
