package session

import (
	"errors"

	"SalesTrainer/internal/persona"
)

// ErrNoTrainee is returned by operations that require a trainee name
// before anything is persisted.
var ErrNoTrainee = errors.New("trainee name is required")

// Speaker identifies who produced a turn.
type Speaker string

const (
	SpeakerTrainee  Speaker = "trainee"
	SpeakerProspect Speaker = "prospect"
)

// Turn is a single message in a training conversation.
type Turn struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// Session holds one trainee's active conversation with a prospect persona.
// Turns are append-only and ordered; the sequence is cleared when a new
// prospect is started, but the trainee name survives across resets.
type Session struct {
	TraineeName string
	Prospect    persona.Persona
	turns       []Turn
}

// New creates a session for the given trainee with no prospect selected.
func New(traineeName string) *Session {
	return &Session{TraineeName: traineeName}
}

// Start selects a prospect persona and clears any previous turns.
func (s *Session) Start(p persona.Persona) {
	s.Prospect = p
	s.turns = nil
}

// Reset clears the turn sequence, keeping the trainee name and persona.
func (s *Session) Reset() {
	s.turns = nil
}

// Append adds a turn to the end of the conversation.
func (s *Session) Append(speaker Speaker, text string) {
	s.turns = append(s.turns, Turn{Speaker: speaker, Text: text})
}

// Turns returns a copy of the ordered turn sequence.
func (s *Session) Turns() []Turn {
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Len reports the number of turns in the session.
func (s *Session) Len() int { return len(s.turns) }
