package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ScoreRecord is one immutable leaderboard row.
type ScoreRecord struct {
	Name      string
	Score     int
	Timestamp time.Time
}

// ChatRecord is one immutable stored transcript.
type ChatRecord struct {
	Name      string
	Chat      string
	Timestamp time.Time
}

// ReportRecord is one stored performance report.
type ReportRecord struct {
	Name      string
	AvgScore  float64
	Summary   string
	Timestamp time.Time
}

// Store is the durable SQLite-backed persistence layer for scores,
// transcripts and performance reports.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database file and ensures the schema exists.
// Opening the same file repeatedly is safe: schema creation is idempotent.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	tables := []string{
		`CREATE TABLE IF NOT EXISTS leaderboard (
			name TEXT,
			score INTEGER,
			timestamp DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS chat_history (
			name TEXT,
			chat TEXT,
			timestamp DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS performance_reports (
			name TEXT,
			avg_score REAL,
			summary TEXT,
			timestamp DATETIME
		);`,
	}
	for _, stmt := range tables {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// RecordScore appends one leaderboard row.
func (s *Store) RecordScore(name string, score int) error {
	_, err := s.db.Exec(
		"INSERT INTO leaderboard (name, score, timestamp) VALUES (?, ?, ?)",
		name, score, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record score: %w", err)
	}
	return nil
}

// RecordChat appends one transcript row.
func (s *Store) RecordChat(name, transcript string) error {
	_, err := s.db.Exec(
		"INSERT INTO chat_history (name, chat, timestamp) VALUES (?, ?, ?)",
		name, transcript, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record chat: %w", err)
	}
	return nil
}

// RecordResult writes the score row and its transcript row in a single
// transaction. Either both rows land or neither does; no reader observes
// one without the other.
func (s *Store) RecordResult(name string, score int, transcript string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	if _, err := tx.Exec(
		"INSERT INTO leaderboard (name, score, timestamp) VALUES (?, ?, ?)",
		name, score, now,
	); err != nil {
		return fmt.Errorf("failed to record score: %w", err)
	}
	if _, err := tx.Exec(
		"INSERT INTO chat_history (name, chat, timestamp) VALUES (?, ?, ?)",
		name, transcript, now,
	); err != nil {
		return fmt.Errorf("failed to record chat: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit result: %w", err)
	}
	return nil
}

// RecordReport appends one performance report row.
func (s *Store) RecordReport(name string, avgScore float64, summary string) error {
	_, err := s.db.Exec(
		"INSERT INTO performance_reports (name, avg_score, summary, timestamp) VALUES (?, ?, ?, ?)",
		name, avgScore, summary, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record report: %w", err)
	}
	return nil
}

// TopScores returns up to limit leaderboard rows ordered by score
// descending. Equal scores order by ascending timestamp, so the trainee
// who reached a score first ranks above a later equal score.
func (s *Store) TopScores(limit int) ([]ScoreRecord, error) {
	rows, err := s.db.Query(
		"SELECT name, score, timestamp FROM leaderboard ORDER BY score DESC, timestamp ASC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query top scores: %w", err)
	}
	defer rows.Close()

	var records []ScoreRecord
	for rows.Next() {
		var r ScoreRecord
		if err := rows.Scan(&r.Name, &r.Score, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// AllChats returns every stored transcript, most recent first.
func (s *Store) AllChats() ([]ChatRecord, error) {
	rows, err := s.db.Query(
		"SELECT name, chat, timestamp FROM chat_history ORDER BY timestamp DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chats: %w", err)
	}
	defer rows.Close()

	var records []ChatRecord
	for rows.Next() {
		var r ChatRecord
		if err := rows.Scan(&r.Name, &r.Chat, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// ScoresFor returns all scores recorded for a trainee.
func (s *Store) ScoresFor(name string) ([]int, error) {
	rows, err := s.db.Query("SELECT score FROM leaderboard WHERE name = ?", name)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %w", err)
	}
	defer rows.Close()

	var scores []int
	for rows.Next() {
		var score int
		if err := rows.Scan(&score); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		scores = append(scores, score)
	}
	return scores, rows.Err()
}

// ReportsFor returns a trainee's performance reports, most recent first.
// Old reports are never invalidated; they are the trainee's progress
// history.
func (s *Store) ReportsFor(name string) ([]ReportRecord, error) {
	rows, err := s.db.Query(
		"SELECT name, avg_score, summary, timestamp FROM performance_reports WHERE name = ? ORDER BY timestamp DESC",
		name,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var records []ReportRecord
	for rows.Next() {
		var r ReportRecord
		if err := rows.Scan(&r.Name, &r.AvgScore, &r.Summary, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// RecentChatsFor returns up to limit transcripts for a trainee, most
// recent first.
func (s *Store) RecentChatsFor(name string, limit int) ([]ChatRecord, error) {
	rows, err := s.db.Query(
		"SELECT name, chat, timestamp FROM chat_history WHERE name = ? ORDER BY timestamp DESC LIMIT ?",
		name, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent chats: %w", err)
	}
	defer rows.Close()

	var records []ChatRecord
	for rows.Next() {
		var r ChatRecord
		if err := rows.Scan(&r.Name, &r.Chat, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
