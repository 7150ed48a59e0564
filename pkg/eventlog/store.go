package eventlog

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store persists sessions and drowsiness events in sqlite.
type Store struct {
	db        *sql.DB
	sessionID string
}

// Event is one recorded drowsiness incident.
type Event struct {
	SessionID   string    `json:"session_id"`
	At          time.Time `json:"at"`
	SmoothedEAR float64   `json:"smoothed_ear"`
}

// OpenStore opens (creating if needed) the sqlite store at path and
// starts a new session row describing this run's configuration.
// Use ":memory:" for an ephemeral store.
func OpenStore(path string, threshold float64, requiredFrames int) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open event store: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			started_at TIMESTAMP NOT NULL,
			ear_threshold DOUBLE NOT NULL,
			required_frames INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS events (
			event_id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			at TIMESTAMP NOT NULL,
			smoothed_ear DOUBLE NOT NULL,
			FOREIGN KEY(session_id) REFERENCES sessions(session_id)
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init event store schema: %w", err)
	}

	s := &Store{db: db, sessionID: uuid.NewString()}
	_, err = db.Exec(
		"INSERT INTO sessions (session_id, started_at, ear_threshold, required_frames) VALUES (?, ?, ?, ?)",
		s.sessionID, time.Now().UTC(), threshold, requiredFrames)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("record session: %w", err)
	}
	return s, nil
}

// SessionID returns the id of the session this store is recording.
func (s *Store) SessionID() string {
	return s.sessionID
}

// RecordEvent stores one drowsiness incident for the current session.
func (s *Store) RecordEvent(at time.Time, smoothedEAR float64) error {
	_, err := s.db.Exec(
		"INSERT INTO events (session_id, at, smoothed_ear) VALUES (?, ?, ?)",
		s.sessionID, at.UTC(), smoothedEAR)
	if err != nil {
		return fmt.Errorf("record event: %w", err)
	}
	return nil
}

// RecentEvents returns up to limit events across all sessions, newest
// first. Feeds the dashboard's event history panel.
func (s *Store) RecentEvents(limit int) ([]Event, error) {
	rows, err := s.db.Query(
		"SELECT session_id, at, smoothed_ear FROM events ORDER BY at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.SessionID, &e.At, &e.SmoothedEAR); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
