package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/netviz/internal/db"
)

// Store provides persistence for history entries.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Log inserts a new entry. An empty ID gets a UUID and a zero timestamp
// becomes the current time.
func (s *Store) Log(ctx context.Context, entry Entry) (Entry, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	entry.Timestamp = entry.Timestamp.UTC().Truncate(time.Second)
	if entry.Outcome == "" {
		entry.Outcome = OutcomeOK
	}

	var errText sql.NullString
	if entry.Error != "" {
		errText = sql.NullString{String: entry.Error, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO history (id, timestamp, action, outcome, label, summary, detail, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Timestamp.Format(time.DateTime),
		string(entry.Action),
		string(entry.Outcome),
		entry.Label,
		entry.Summary,
		entry.Detail,
		errText,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("inserting history entry: %w", err)
	}
	return entry, nil
}

// GetByID retrieves a single entry.
func (s *Store) GetByID(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	return scanInto(row)
}

// QueryFilter controls which entries Query returns.
type QueryFilter struct {
	Action  Action
	Outcome Outcome
	Label   string
	Since   *time.Time
	Limit   int
	Offset  int
}

// Query returns entries matching the filter, newest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Entry, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.Action != "" {
		clauses = append(clauses, "action = ?")
		args = append(args, string(filter.Action))
	}
	if filter.Outcome != "" {
		clauses = append(clauses, "outcome = ?")
		args = append(args, string(filter.Outcome))
	}
	if filter.Label != "" {
		clauses = append(clauses, "label = ?")
		args = append(args, filter.Label)
	}
	if filter.Since != nil {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, filter.Since.UTC().Format(time.DateTime))
	}

	query := selectColumns
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY timestamp DESC, rowid DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	} else if filter.Offset > 0 {
		query += " LIMIT -1"
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanInto(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// Counts returns the number of entries per action.
func (s *Store) Counts(ctx context.Context) (map[Action]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT action, COUNT(*) FROM history GROUP BY action")
	if err != nil {
		return nil, fmt.Errorf("counting history: %w", err)
	}
	defer rows.Close()

	counts := make(map[Action]int)
	for rows.Next() {
		var action string
		var n int
		if err := rows.Scan(&action, &n); err != nil {
			return nil, err
		}
		counts[Action(action)] = n
	}
	return counts, rows.Err()
}

// DeleteBefore removes entries older than before and returns how many were
// deleted.
func (s *Store) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM history WHERE timestamp < ?",
		before.UTC().Format(time.DateTime),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting old history: %w", err)
	}
	return res.RowsAffected()
}

const selectColumns = "SELECT id, timestamp, action, outcome, label, summary, detail, error FROM history"

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanInto(sc scanner) (*Entry, error) {
	var (
		e               Entry
		ts              any
		action, outcome string
		errText         sql.NullString
	)
	if err := sc.Scan(&e.ID, &ts, &action, &outcome, &e.Label, &e.Summary, &e.Detail, &errText); err != nil {
		return nil, err
	}
	e.Action = Action(action)
	e.Outcome = Outcome(outcome)
	e.Timestamp = parseTimestamp(ts)
	if errText.Valid {
		e.Error = errText.String
	}
	return &e, nil
}

// parseTimestamp accepts the driver's native time or the text forms SQLite
// stores.
func parseTimestamp(v any) time.Time {
	switch ts := v.(type) {
	case time.Time:
		return ts.UTC()
	case string:
		for _, layout := range []string{time.DateTime, time.RFC3339Nano, "2006-01-02T15:04:05Z"} {
			if t, err := time.Parse(layout, ts); err == nil {
				return t.UTC()
			}
		}
	case []byte:
		return parseTimestamp(string(ts))
	}
	return time.Time{}
}
