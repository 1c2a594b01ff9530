package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"go.opentelemetry.io/otel"

	"SalesTrainer/internal/llm"
	"SalesTrainer/internal/session"
	"SalesTrainer/internal/store"
)

// ErrNoHistory is returned when a trainee has no stored chats to
// summarize. The coaching request is not sent in that case.
var ErrNoHistory = errors.New("no chat history for trainee")

// recentChatLimit caps how many transcripts feed one coaching summary.
const recentChatLimit = 5

// Reporter derives longitudinal performance reports from stored sessions.
type Reporter struct {
	client llm.Client
	store  HistoryStore
	logger *slog.Logger
}

// HistoryStore is what the reporter reads from and writes back to.
type HistoryStore interface {
	ScoresFor(name string) ([]int, error)
	RecentChatsFor(name string, limit int) ([]store.ChatRecord, error)
	RecordReport(name string, avgScore float64, summary string) error
}

// NewReporter creates a reporter.
func NewReporter(client llm.Client, store HistoryStore, logger *slog.Logger) *Reporter {
	return &Reporter{client: client, store: store, logger: logger}
}

// Average is the arithmetic mean of the scores rounded to one decimal
// place, or 0 when there are none.
func Average(scores []int) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum int
	for _, s := range scores {
		sum += s
	}
	return math.Round(float64(sum)/float64(len(scores))*10) / 10
}

// coachPrompt asks the evaluator for a plain-language review of the
// trainee's recent transcripts.
func coachPrompt(transcripts string) string {
	return fmt.Sprintf(`You are a sales performance coach. Analyze this user's last %d sales chats and summarize:
- Their top 2 strengths
- Their top 2 mistakes
Return in plain language.

Chat transcripts:
%s`, recentChatLimit, transcripts)
}

// Summarize computes the trainee's historical average and asks the model
// for a strengths/mistakes summary of their recent chats, persisting both
// as a performance report. A trainee with no stored chats gets ErrNoHistory
// and no report is written.
func (r *Reporter) Summarize(ctx context.Context, traineeName string) (float64, string, error) {
	ctx, span := otel.Tracer("salestrainer").Start(ctx, "generate_summary")
	defer span.End()

	if strings.TrimSpace(traineeName) == "" {
		return 0, "", session.ErrNoTrainee
	}

	scores, err := r.store.ScoresFor(traineeName)
	if err != nil {
		return 0, "", err
	}
	avg := Average(scores)

	chats, err := r.store.RecentChatsFor(traineeName, recentChatLimit)
	if err != nil {
		return 0, "", err
	}
	if len(chats) == 0 {
		return 0, "", fmt.Errorf("%w: %s", ErrNoHistory, traineeName)
	}

	blocks := make([]string, len(chats))
	for i, chat := range chats {
		blocks[i] = chat.Chat
	}

	resp, err := r.client.Complete(ctx, []llm.Message{
		{Role: "system", Content: coachPrompt(strings.Join(blocks, "\n\n"))},
	})
	if err != nil {
		return 0, "", err
	}
	summary := strings.TrimSpace(resp.Content)

	if err := r.store.RecordReport(traineeName, avg, summary); err != nil {
		return 0, "", err
	}

	r.logger.Info("performance report generated",
		"trainee", traineeName,
		"avg_score", avg,
		"chats", len(chats),
	)
	return avg, summary, nil
}
