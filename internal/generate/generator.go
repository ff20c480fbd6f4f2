package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/slateworks/lessonforge/internal/types"
)

// ChatService defines the interface for making chat-completion API calls.
// This abstraction enables testing without calling the real OpenAI API.
type ChatService interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// ParseError reports that the model's answer was not parseable JSON. It
// carries the raw response text for diagnostics; callers must log it but
// never surface it to clients.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("model response is not valid JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Generator produces topic suggestions and draft lesson content through
// OpenAI's chat-completion API. One synchronous call per invocation, no
// retry; the caller's context bounds the call.
type Generator struct {
	chat  ChatService
	model openai.ChatModel
}

// NewOpenAI creates a Generator backed by the real OpenAI client.
func NewOpenAI(apiKey, model string) *Generator {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Generator{
		chat:  client.Chat.Completions,
		model: openai.ChatModel(model),
	}
}

// New creates a Generator with an explicit chat service, used by tests.
func New(chat ChatService, model string) *Generator {
	return &Generator{chat: chat, model: openai.ChatModel(model)}
}

// ModelName returns the chat model name.
func (g *Generator) ModelName() string {
	return string(g.model)
}

const suggestionSystem = "You are an experienced curriculum designer helping teachers plan lessons. Respond with JSON only: no prose, no Markdown code fences."

// rawSuggestion is the per-item shape requested from the model.
type rawSuggestion struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Subject          string   `json:"subject"`
	Grade            string   `json:"grade"`
	Category         string   `json:"category"`
	DifficultyLevels []string `json:"difficultyLevels"`
}

// Suggestions asks the model for count topic ideas for the given subject
// and grade. The model's echo of subject and grade is never trusted: both
// are forced to the requested values, category defaults to the subject,
// difficultyLevels defaults to ["medium"], and the result is truncated to
// count.
func (g *Generator) Suggestions(ctx context.Context, subject, grade string, count int) ([]types.NewTopicSuggestion, error) {
	generationID := ulid.Make().String()
	slog.Debug("generating topic suggestions",
		"generation_id", generationID,
		"subject", subject,
		"grade", grade,
		"count", count,
	)

	prompt := fmt.Sprintf(`Generate %d educational topic suggestions for teaching %s to %s students.
Return ONLY a JSON array. Each element must have exactly these fields:
{"title": string, "description": string, "subject": string, "grade": string, "category": string, "difficultyLevels": [string]}
Difficulty levels are drawn from "easy", "medium", "hard". Descriptions should be one or two sentences a teacher can act on.`,
		count, subject, grade)

	text, err := g.complete(ctx, suggestionSystem, prompt)
	if err != nil {
		return nil, err
	}

	stripped := stripCodeFence(text)

	var raw []rawSuggestion
	if err := json.Unmarshal([]byte(stripped), &raw); err != nil {
		slog.Error("suggestion generation returned unparseable JSON",
			"generation_id", generationID,
			"error", err,
		)
		return nil, &ParseError{Raw: text, Err: err}
	}

	if len(raw) > count {
		raw = raw[:count]
	}

	out := make([]types.NewTopicSuggestion, 0, len(raw))
	for _, r := range raw {
		s := types.NewTopicSuggestion{
			Title:            r.Title,
			Description:      r.Description,
			Subject:          subject,
			Grade:            grade,
			Category:         r.Category,
			DifficultyLevels: r.DifficultyLevels,
		}
		if s.Category == "" {
			s.Category = subject
		}
		if len(s.DifficultyLevels) == 0 {
			s.DifficultyLevels = []string{string(types.DifficultyMedium)}
		}
		out = append(out, s)
	}

	slog.Debug("topic suggestions generated",
		"generation_id", generationID,
		"returned", len(out),
	)
	return out, nil
}

const contentSystem = "You are an experienced teacher writing classroom material. Respond with clean HTML only: headings, paragraphs, lists. No Markdown, no code fences."

// LessonContent asks the model for free-form HTML teaching material. The
// response is returned largely as-is; if it contains no block-level HTML
// tag it is wrapped in a heading and paragraphs as best-effort massaging.
func (g *Generator) LessonContent(ctx context.Context, prompt, subject, grade string) (string, error) {
	generationID := ulid.Make().String()
	slog.Debug("generating lesson content",
		"generation_id", generationID,
		"subject", subject,
		"grade", grade,
	)

	var b strings.Builder
	fmt.Fprintf(&b, "Write educational content for the following request: %s.", prompt)
	if subject != "" {
		fmt.Fprintf(&b, " The subject is %s.", subject)
	}
	if grade != "" {
		fmt.Fprintf(&b, " The audience is %s students.", grade)
	}
	b.WriteString(" Format the answer as HTML using headings, paragraphs and lists.")

	text, err := g.complete(ctx, contentSystem, b.String())
	if err != nil {
		return "", err
	}

	return ensureHTML(stripCodeFence(text), prompt), nil
}

// complete issues a single chat-completion call and returns the first
// choice's text.
func (g *Generator) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := g.chat.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.F(g.model),
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		}),
		Temperature: openai.F(0.7),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion failed: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// stripCodeFence removes a Markdown code-fence wrapper (``` or ```json)
// that models are prone to include around JSON answers.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop the language tag line ("json", "html", ...)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimSuffix(s, "```")
		return strings.TrimSpace(s)
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

var blockTags = []string{
	"<p", "<div", "<h1", "<h2", "<h3", "<h4", "<h5", "<h6",
	"<ul", "<ol", "<table", "<blockquote", "<section", "<article",
}

// ensureHTML wraps plain-text responses in a heading plus paragraphs.
// Responses already containing block-level markup pass through untouched.
func ensureHTML(text, heading string) string {
	lower := strings.ToLower(text)
	for _, tag := range blockTags {
		if strings.Contains(lower, tag) {
			return text
		}
	}

	var b strings.Builder
	if heading != "" {
		fmt.Fprintf(&b, "<h2>%s</h2>\n", html.EscapeString(heading))
	}
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(para))
	}
	return b.String()
}
