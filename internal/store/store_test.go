package store

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// insertScoreAt writes a leaderboard row with an explicit timestamp, so
// ordering laws can be tested deterministically.
func insertScoreAt(t *testing.T, s *Store, name string, score int, ts time.Time) {
	t.Helper()
	if _, err := s.db.Exec(
		"INSERT INTO leaderboard (name, score, timestamp) VALUES (?, ?, ?)",
		name, score, ts,
	); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
}

func insertChatAt(t *testing.T, s *Store, name, chat string, ts time.Time) {
	t.Helper()
	if _, err := s.db.Exec(
		"INSERT INTO chat_history (name, chat, timestamp) VALUES (?, ?, ?)",
		name, chat, ts,
	); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
}

func TestOpenIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	if err := s1.RecordScore("alice", 80); err != nil {
		t.Fatalf("RecordScore failed: %v", err)
	}
	s1.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	defer s2.Close()

	scores, err := s2.ScoresFor("alice")
	if err != nil {
		t.Fatalf("ScoresFor failed: %v", err)
	}
	if len(scores) != 1 || scores[0] != 80 {
		t.Fatalf("expected [80] to survive reopen, got %v", scores)
	}
}

func TestRecordResultWritesBoth(t *testing.T) {
	s := openTestStore(t)

	if err := s.RecordResult("alice", 72, "Trainee: hi\nProspect: hello"); err != nil {
		t.Fatalf("RecordResult failed: %v", err)
	}

	scores, err := s.ScoresFor("alice")
	if err != nil {
		t.Fatalf("ScoresFor failed: %v", err)
	}
	if len(scores) != 1 || scores[0] != 72 {
		t.Fatalf("expected one score 72, got %v", scores)
	}

	chats, err := s.AllChats()
	if err != nil {
		t.Fatalf("AllChats failed: %v", err)
	}
	if len(chats) != 1 || chats[0].Chat != "Trainee: hi\nProspect: hello" {
		t.Fatalf("expected paired chat row, got %+v", chats)
	}
}

func TestTopScoresOrderAndTieBreak(t *testing.T) {
	s := openTestStore(t)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	insertScoreAt(t, s, "carol", 90, base.Add(2*time.Hour))
	insertScoreAt(t, s, "alice", 95, base.Add(time.Hour))
	insertScoreAt(t, s, "bob", 95, base) // same score as alice, earlier

	records, err := s.TopScores(10)
	if err != nil {
		t.Fatalf("TopScores failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	// Equal scores order by ascending timestamp: bob reached 95 first.
	wantOrder := []string{"bob", "alice", "carol"}
	for i, name := range wantOrder {
		if records[i].Name != name {
			t.Fatalf("position %d: got %q, want %q (records: %+v)", i, records[i].Name, name, records)
		}
	}
}

func TestTopScoresLimit(t *testing.T) {
	s := openTestStore(t)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		insertScoreAt(t, s, "alice", 50+i, base.Add(time.Duration(i)*time.Minute))
	}

	records, err := s.TopScores(2)
	if err != nil {
		t.Fatalf("TopScores failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Score != 54 || records[1].Score != 53 {
		t.Fatalf("unexpected top scores: %+v", records)
	}
}

func TestAllChatsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	insertChatAt(t, s, "alice", "first", base)
	insertChatAt(t, s, "bob", "second", base.Add(time.Hour))

	chats, err := s.AllChats()
	if err != nil {
		t.Fatalf("AllChats failed: %v", err)
	}
	if len(chats) != 2 || chats[0].Chat != "second" || chats[1].Chat != "first" {
		t.Fatalf("expected newest first, got %+v", chats)
	}
}

func TestReportsRetainedAsHistory(t *testing.T) {
	s := openTestStore(t)

	if err := s.RecordReport("alice", 70.0, "first review"); err != nil {
		t.Fatalf("RecordReport failed: %v", err)
	}
	if err := s.RecordReport("alice", 82.5, "second review"); err != nil {
		t.Fatalf("RecordReport failed: %v", err)
	}

	reports, err := s.ReportsFor("alice")
	if err != nil {
		t.Fatalf("ReportsFor failed: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("old reports must be retained, got %d", len(reports))
	}
}

func TestRecentChatsForLimitAndScope(t *testing.T) {
	s := openTestStore(t)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 7; i++ {
		insertChatAt(t, s, "alice", "alice chat", base.Add(time.Duration(i)*time.Minute))
	}
	insertChatAt(t, s, "bob", "bob chat", base.Add(time.Hour))

	chats, err := s.RecentChatsFor("alice", 5)
	if err != nil {
		t.Fatalf("RecentChatsFor failed: %v", err)
	}
	if len(chats) != 5 {
		t.Fatalf("expected 5 chats, got %d", len(chats))
	}
	for _, chat := range chats {
		if chat.Name != "alice" {
			t.Fatalf("got another trainee's chat: %+v", chat)
		}
	}
	if !chats[0].Timestamp.After(chats[4].Timestamp) {
		t.Fatalf("expected most recent first: %+v", chats)
	}
}
