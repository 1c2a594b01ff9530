package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"SalesTrainer/internal/cache"
	"SalesTrainer/internal/llm"
	"SalesTrainer/internal/persona"
	"SalesTrainer/internal/session"
)

// Driver runs the live conversation between a trainee and the model-played
// prospect. It owns no session state; sessions are passed in by handle.
type Driver struct {
	client llm.Client
	logger *slog.Logger
	cache  sync.Map
}

// NewDriver creates a conversation driver.
func NewDriver(client llm.Client, logger *slog.Logger) *Driver {
	return &Driver{client: client, logger: logger}
}

// systemPrompt embeds the persona identity and the pain-point gating
// directive the prospect must follow.
func systemPrompt(p persona.Persona) string {
	return fmt.Sprintf(
		"You are '%s', a %s at %s (%s). "+
			"Your hidden pain points: %s. "+
			"Reveal them only if the trainee asks good discovery questions. "+
			"If they uncover your pain and propose your solution, respond that you're ready and excited.",
		p.Name, p.Role, p.Company, p.Industry, p.PainPoints,
	)
}

// Messages builds the role-tagged sequence sent to the model: the persona
// system instruction followed by the full turn history in order, with
// prospect turns as assistant and trainee turns as user.
func Messages(sess *session.Session) []llm.Message {
	messages := []llm.Message{{Role: "system", Content: systemPrompt(sess.Prospect)}}
	for _, turn := range sess.Turns() {
		role := "user"
		if turn.Speaker == session.SpeakerProspect {
			role = "assistant"
		}
		messages = append(messages, llm.Message{Role: role, Content: turn.Text})
	}
	return messages
}

// Respond sends the trainee's message to the prospect and returns the
// prospect's reply. The trainee turn and the reply are appended to the
// session together, only after a successful completion, so a failed model
// call leaves the session unchanged and the trainee may retry.
func (d *Driver) Respond(ctx context.Context, sess *session.Session, text string) (string, error) {
	messages := append(Messages(sess), llm.Message{Role: "user", Content: text})

	key := cache.Key(messages)
	if val, ok := d.cache.Load(key); ok {
		reply := val.(cache.CachedReply).Content
		d.logger.Info("cache hit", "key", key[:16])
		sess.Append(session.SpeakerTrainee, text)
		sess.Append(session.SpeakerProspect, reply)
		return reply, nil
	}

	resp, err := d.client.Complete(ctx, messages)
	if err != nil {
		return "", err
	}

	d.cache.Store(key, cache.CachedReply{Content: resp.Content, Timestamp: time.Now()})

	sess.Append(session.SpeakerTrainee, text)
	sess.Append(session.SpeakerProspect, resp.Content)
	d.logger.Info("prospect replied",
		"trainee", sess.TraineeName,
		"persona", sess.Prospect.Name,
		"turns", sess.Len(),
		"total_tokens", resp.TotalTokens,
	)
	return resp.Content, nil
}
