// FILE: reporter.go
// Package main – Report sinks for trade events.
//
// Reporters are fire-and-forget: a failed report never interferes with
// trading. Two implementations:
//   • LogReporter     – writes report lines to the process log
//   • HistoryReporter – persists events to a local sqlite database so trade
//     history survives restarts (schema below)
//
// main.go picks the sink: HistoryReporter when HISTORY_DB is set, otherwise
// LogReporter.

package main

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// LogReporter writes report lines to the standard logger.
type LogReporter struct{}

func (LogReporter) Report(villageID, category, message string) {
	log.Printf("[report %s] %s: %s", villageID, category, message)
}

// HistoryReporter persists report events to sqlite.
type HistoryReporter struct {
	conn *sqlx.DB
}

// NewHistoryReporter opens (or creates) the history database.
func NewHistoryReporter(path string) (*HistoryReporter, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	r := &HistoryReporter{conn: conn}
	if err := r.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return r, nil
}

func (r *HistoryReporter) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		ts INTEGER NOT NULL,
		village_id TEXT NOT NULL,
		category TEXT NOT NULL,
		message TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_events_village_ts ON events(village_id, ts);
	`
	_, err := r.conn.Exec(schema)
	return err
}

// Report inserts one event row; failures are logged and dropped.
func (r *HistoryReporter) Report(villageID, category, message string) {
	_, err := r.conn.Exec(
		`INSERT INTO events (id, ts, village_id, category, message) VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), time.Now().Unix(), villageID, category, message,
	)
	if err != nil {
		log.Printf("[report %s] insert failed: %v", villageID, err)
	}
}

// Close releases the database handle.
func (r *HistoryReporter) Close() error {
	return r.conn.Close()
}
