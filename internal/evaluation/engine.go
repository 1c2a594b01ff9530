package evaluation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"SalesTrainer/internal/llm"
	"SalesTrainer/internal/session"
)

// ErrMalformed is returned when the evaluator's response cannot be parsed
// or omits a required dimension. The call is not retried; nothing is
// persisted.
var ErrMalformed = errors.New("malformed evaluation response")

// MaxScore is the normalized score ceiling.
const MaxScore = 100

// dimensions are the six 0-10 scored axes that make up the final score,
// in prompt order. dale_carnegie_principles is scored separately (0-5)
// and does not contribute to the total.
var dimensions = [...]string{
	"rapport",
	"discovery",
	"solution_alignment",
	"objection_handling",
	"closing",
	"positivity",
}

const carnegieDimension = "dale_carnegie_principles"

// Result is a parsed and validated evaluator response.
type Result struct {
	Scores   map[string]float64
	Carnegie float64
	Feedback map[string]string
}

// Engine turns a finished transcript into a persisted score.
type Engine struct {
	client llm.Client
	store  ResultStore
	logger *slog.Logger
}

// ResultStore is the persistence the engine needs: the score row and its
// transcript row written as one atomic pair.
type ResultStore interface {
	RecordResult(name string, score int, transcript string) error
}

// NewEngine creates an evaluation engine.
func NewEngine(client llm.Client, store ResultStore, logger *slog.Logger) *Engine {
	return &Engine{client: client, store: store, logger: logger}
}

// Transcript renders the ordered turns as "Trainee: ..." / "Prospect: ..."
// lines joined by newlines.
func Transcript(turns []session.Turn) string {
	lines := make([]string, len(turns))
	for i, turn := range turns {
		speaker := "Trainee"
		if turn.Speaker == session.SpeakerProspect {
			speaker = "Prospect"
		}
		lines[i] = fmt.Sprintf("%s: %s", speaker, turn.Text)
	}
	return strings.Join(lines, "\n")
}

// StripFence normalizes an evaluator response that arrives wrapped in a
// markdown code block: it removes one leading and one trailing ``` fence
// and at most one language tag immediately after the opening fence.
// Anything not fence-wrapped is returned unchanged.
func StripFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	trimmed = strings.TrimSpace(trimmed)
	// Drop a language tag such as "json" straight after the opening fence.
	if idx := strings.IndexAny(trimmed, " \t\n{["); idx > 0 && isAlpha(trimmed[:idx]) {
		trimmed = strings.TrimSpace(trimmed[idx:])
	}
	return trimmed
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

// evaluatorPrompt instructs the model to return raw JSON only, with all
// seven dimensions and per-dimension commentary.
func evaluatorPrompt(transcript string) string {
	return fmt.Sprintf(`You are a sales coach. Return ONLY raw JSON.
Evaluate this chat:
{
  "rapport": 0-10,
  "discovery": 0-10,
  "solution_alignment": 0-10,
  "objection_handling": 0-10,
  "closing": 0-10,
  "positivity": 0-10,
  "dale_carnegie_principles": 0-5,
  "feedback": {
    "rapport": "...",
    "discovery": "...",
    "solution_alignment": "...",
    "objection_handling": "...",
    "closing": "...",
    "positivity": "..."
  }
}
Chat:
%s`, transcript)
}

// Parse validates the raw evaluator response against the strict schema:
// all seven numeric fields and all six feedback keys must be present.
func Parse(raw string) (*Result, error) {
	var payload struct {
		Rapport           *float64          `json:"rapport"`
		Discovery         *float64          `json:"discovery"`
		SolutionAlignment *float64          `json:"solution_alignment"`
		ObjectionHandling *float64          `json:"objection_handling"`
		Closing           *float64          `json:"closing"`
		Positivity        *float64          `json:"positivity"`
		Carnegie          *float64          `json:"dale_carnegie_principles"`
		Feedback          map[string]string `json:"feedback"`
	}
	if err := json.Unmarshal([]byte(StripFence(raw)), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	fields := map[string]*float64{
		"rapport":            payload.Rapport,
		"discovery":          payload.Discovery,
		"solution_alignment": payload.SolutionAlignment,
		"objection_handling": payload.ObjectionHandling,
		"closing":            payload.Closing,
		"positivity":         payload.Positivity,
	}

	result := &Result{
		Scores:   make(map[string]float64, len(dimensions)),
		Feedback: payload.Feedback,
	}
	for _, dim := range dimensions {
		value := fields[dim]
		if value == nil {
			return nil, fmt.Errorf("%w: missing dimension %q", ErrMalformed, dim)
		}
		result.Scores[dim] = *value
	}
	if payload.Carnegie == nil {
		return nil, fmt.Errorf("%w: missing dimension %q", ErrMalformed, carnegieDimension)
	}
	result.Carnegie = *payload.Carnegie

	for _, dim := range dimensions {
		if _, ok := payload.Feedback[dim]; !ok {
			return nil, fmt.Errorf("%w: missing feedback for %q", ErrMalformed, dim)
		}
	}
	return result, nil
}

// Total computes the normalized score: the six summed dimensions scaled to
// 100 and truncated to an integer. dale_carnegie_principles is excluded.
func (r *Result) Total() int {
	var sum float64
	for _, dim := range dimensions {
		sum += r.Scores[dim]
	}
	score := int(sum * 100 / 60)
	if score < 0 {
		score = 0
	}
	if score > MaxScore {
		score = MaxScore
	}
	return score
}

// Score evaluates a finished session: it renders the transcript, asks the
// evaluator for a structured review, computes the 0-100 score, and writes
// the score and transcript as one atomic pair. It returns the score and
// the per-dimension feedback for display.
func (e *Engine) Score(ctx context.Context, traineeName string, turns []session.Turn) (int, map[string]string, error) {
	ctx, span := otel.Tracer("salestrainer").Start(ctx, "score_session")
	defer span.End()

	if strings.TrimSpace(traineeName) == "" {
		return 0, nil, session.ErrNoTrainee
	}

	transcript := Transcript(turns)
	resp, err := e.client.Complete(ctx, []llm.Message{
		{Role: "system", Content: evaluatorPrompt(transcript)},
	})
	if err != nil {
		return 0, nil, err
	}

	result, err := Parse(resp.Content)
	if err != nil {
		e.logger.Error("evaluator returned unusable response", "trainee", traineeName, "error", err)
		return 0, nil, err
	}

	score := result.Total()
	if err := e.store.RecordResult(traineeName, score, transcript); err != nil {
		return 0, nil, err
	}

	if histogram, err := otel.Meter("salestrainer").Int64Histogram(
		"session.score",
		metric.WithDescription("Normalized session scores"),
	); err == nil {
		histogram.Record(ctx, int64(score))
	}

	e.logger.Info("session scored", "trainee", traineeName, "score", score, "carnegie", result.Carnegie)
	return score, result.Feedback, nil
}
