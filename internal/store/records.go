package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fuoco/internal/logging"
)

// CreateExpenseRecord persists an expense record and returns its id.
// This is the local implementation of the record-creation collaborator.
func (s *Store) CreateExpenseRecord(ctx context.Context, title string, amount decimal.Decimal, direction string, userID string, date, timeOfDay string) (string, error) {
	id := uuid.NewString()
	dueAt := date
	if timeOfDay != "" {
		dueAt = date + " " + timeOfDay
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO records (id, kind, user_id, title, amount, direction, due_at, created_at)
		VALUES (?, 'expense', ?, ?, ?, ?, ?, ?)`,
		id, userID, title, amount.String(), direction, dueAt, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("create expense record: %w", err)
	}

	logging.Store("expense record %s: %s %s (%s)", id, title, amount, direction)
	return id, nil
}

// CreateTaskRecord persists a scheduled task record and returns its id.
func (s *Store) CreateTaskRecord(ctx context.Context, title, content, isoDatetime, userID string) (string, error) {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO records (id, kind, user_id, title, content, due_at, created_at)
		VALUES (?, 'task', ?, ?, ?, ?, ?)`,
		id, userID, title, content, isoDatetime, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("create task record: %w", err)
	}

	logging.Store("task record %s: %s at %s", id, title, isoDatetime)
	return id, nil
}

// Record is a persisted expense or task row, as listed by the CLI.
type Record struct {
	ID        string
	Kind      string
	UserID    string
	Title     string
	Content   string
	Amount    string
	Direction string
	DueAt     string
	CreatedAt time.Time
}

// ListRecords returns the records for a user, newest first.
func (s *Store) ListRecords(ctx context.Context, userID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, user_id, title, COALESCE(content, ''), COALESCE(amount, ''),
		       COALESCE(direction, ''), COALESCE(due_at, ''), created_at
		FROM records WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var createdAt string
		if err := rows.Scan(&r.ID, &r.Kind, &r.UserID, &r.Title, &r.Content,
			&r.Amount, &r.Direction, &r.DueAt, &createdAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, r)
	}
	return records, rows.Err()
}
