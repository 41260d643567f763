// Package store keeps a flat run-history table in SQLite: one row per
// calendar generation or reschedule run, for the orchestration layer and
// the history command.
package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Run kinds.
const (
	KindCalendar   = "calendar"
	KindReschedule = "reschedule"
)

// Run is one recorded invocation.
type Run struct {
	ID           int64
	Kind         string
	Tasks        int
	Events       int
	CalendarPath string
	CreatedAt    time.Time
}

// Store wraps the run-history database.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the database at dbPath.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun inserts one run row and returns it with its assigned ID.
func (s *Store) RecordRun(kind string, tasks, events int, calendarPath string) (*Run, error) {
	run := &Run{
		Kind:         kind,
		Tasks:        tasks,
		Events:       events,
		CalendarPath: calendarPath,
		CreatedAt:    time.Now().UTC(),
	}
	res, err := s.db.Exec(
		`INSERT INTO runs (kind, tasks, events, calendar_path, created_at) VALUES (?, ?, ?, ?, ?)`,
		run.Kind, run.Tasks, run.Events, run.CalendarPath, run.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}
	run.ID, err = res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return run, nil
}

// RecentRuns returns the newest runs first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(
		`SELECT id, kind, tasks, events, calendar_path, created_at
		 FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Kind, &r.Tasks, &r.Events, &r.CalendarPath, &r.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
