package session

import (
	"testing"

	"SalesTrainer/internal/persona"
)

func TestSessionAppendAndOrder(t *testing.T) {
	s := New("alice")
	s.Start(persona.Persona{Company: "Acme", Name: "Bob", Role: "CEO", Industry: "Retail"})

	s.Append(SpeakerTrainee, "hi")
	s.Append(SpeakerProspect, "hello")
	s.Append(SpeakerTrainee, "ok")

	turns := s.Turns()
	if len(turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(turns))
	}
	want := []Turn{
		{Speaker: SpeakerTrainee, Text: "hi"},
		{Speaker: SpeakerProspect, Text: "hello"},
		{Speaker: SpeakerTrainee, Text: "ok"},
	}
	for i, turn := range turns {
		if turn != want[i] {
			t.Fatalf("turn %d: got %+v, want %+v", i, turn, want[i])
		}
	}

	// Mutating the returned slice must not affect internal state.
	turns[0].Text = "mutated"
	if s.Turns()[0].Text != "hi" {
		t.Fatalf("internal state mutated via returned slice")
	}
}

func TestStartClearsTurnsKeepsTrainee(t *testing.T) {
	s := New("alice")
	s.Start(persona.Persona{Company: "Acme", Name: "Bob", Role: "CEO", Industry: "Retail"})
	s.Append(SpeakerTrainee, "hi")

	next := persona.Persona{Company: "Globex", Name: "Carol", Role: "CTO", Industry: "Tech"}
	s.Start(next)

	if s.Len() != 0 {
		t.Fatalf("expected turns cleared after Start, got %d", s.Len())
	}
	if s.TraineeName != "alice" {
		t.Fatalf("trainee name should survive Start, got %q", s.TraineeName)
	}
	if s.Prospect.Name != "Carol" {
		t.Fatalf("expected new prospect, got %q", s.Prospect.Name)
	}
}

func TestReset(t *testing.T) {
	s := New("alice")
	s.Append(SpeakerTrainee, "hi")
	s.Reset()
	if s.Len() != 0 {
		t.Fatalf("expected empty session after Reset, got %d turns", s.Len())
	}
}
