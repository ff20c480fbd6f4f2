package types

// CreateContentRequest is the POST /api/content body.
type CreateContentRequest struct {
	Title       string   `json:"title" validate:"required,min=3"`
	Type        string   `json:"type" validate:"required,oneof=notes quiz assignment paper"`
	Subject     string   `json:"subject" validate:"required"`
	Grade       string   `json:"grade" validate:"required"`
	Difficulty  string   `json:"difficulty" validate:"required,oneof=easy medium hard"`
	HTMLContent string   `json:"htmlContent" validate:"required"`
	Tags        []string `json:"tags" validate:"omitempty,dive,required"`
	IsPublic    bool     `json:"isPublic"`
	CreatedByID int64    `json:"createdById"`
}

// UpdateContentRequest is the PATCH /api/content/{id} body. Every field is
// optional, but any field that is present is validated the same way it is
// on creation, enum membership included.
type UpdateContentRequest struct {
	Title       *string   `json:"title" validate:"omitnil,min=3"`
	Type        *string   `json:"type" validate:"omitnil,oneof=notes quiz assignment paper"`
	Subject     *string   `json:"subject" validate:"omitnil,required"`
	Grade       *string   `json:"grade" validate:"omitnil,required"`
	Difficulty  *string   `json:"difficulty" validate:"omitnil,oneof=easy medium hard"`
	HTMLContent *string   `json:"htmlContent" validate:"omitnil,required"`
	Tags        *[]string `json:"tags" validate:"omitnil,dive,required"`
	IsPublic    *bool     `json:"isPublic"`
}

// Patch converts the request into a store-level partial update.
func (r UpdateContentRequest) Patch() ContentPatch {
	p := ContentPatch{
		Title:       r.Title,
		Subject:     r.Subject,
		Grade:       r.Grade,
		HTMLContent: r.HTMLContent,
		Tags:        r.Tags,
		IsPublic:    r.IsPublic,
	}
	if r.Type != nil {
		t := ContentType(*r.Type)
		p.Type = &t
	}
	if r.Difficulty != nil {
		d := Difficulty(*r.Difficulty)
		p.Difficulty = &d
	}
	return p
}

// CreateSuggestionRequest is the POST /api/suggestions body.
type CreateSuggestionRequest struct {
	Title            string   `json:"title" validate:"required"`
	Description      string   `json:"description" validate:"required"`
	Subject          string   `json:"subject" validate:"required"`
	Grade            string   `json:"grade" validate:"required"`
	Category         string   `json:"category"`
	DifficultyLevels []string `json:"difficultyLevels" validate:"omitempty,dive,oneof=easy medium hard"`
}

// GenerateSuggestionsRequest is the POST /api/ai/suggestions body.
type GenerateSuggestionsRequest struct {
	Subject string `json:"subject" validate:"required"`
	Grade   string `json:"grade" validate:"required"`
	Count   int    `json:"count" validate:"omitempty,min=1,max=10"`
}

// GenerateContentRequest is the POST /api/ai/content body.
type GenerateContentRequest struct {
	Prompt  string `json:"prompt" validate:"required"`
	Subject string `json:"subject"`
	Grade   string `json:"grade"`
}

// GenerateSuggestionsResponse wraps the persisted records returned by the
// AI suggestion route.
type GenerateSuggestionsResponse struct {
	Suggestions []TopicSuggestion `json:"suggestions"`
}

// GenerateContentResponse wraps the generated HTML returned by the AI
// content route.
type GenerateContentResponse struct {
	Content string `json:"content"`
}
