package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Queue is the SQLite-backed sink. Messages stay queued until drained with
// Dequeue.
type Queue struct {
	db *sql.DB
}

func New(db *sql.DB) *Queue {
	return &Queue{db: db}
}

func (q *Queue) Enqueue(ctx context.Context, req EnqueueRequest) (string, error) {
	if err := req.validate(); err != nil {
		return "", err
	}

	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := q.db.ExecContext(ctx, `
INSERT INTO notification_queue(
  id, destination, body, dedupe_key, fingerprint, status, created_at
)
VALUES(?, ?, ?, ?, ?, ?, ?);
`, id, req.Destination, string(req.Body), req.dedupeKey(), Fingerprint(req.Body), StatusQueued, now)
	if err != nil {
		return "", fmt.Errorf("enqueue message: %w", err)
	}
	return id, nil
}

// Dequeue claims the oldest queued message for destination and marks it
// delivered. Returns (nil, nil) if nothing is queued.
func (q *Queue) Dequeue(ctx context.Context, destination string) (*Message, error) {
	nowS := time.Now().UTC().Format(time.RFC3339Nano)

	row := q.db.QueryRowContext(ctx, `
WITH next AS (
  SELECT id
  FROM notification_queue
  WHERE destination = ? AND status = ?
  ORDER BY created_at ASC, rowid ASC
  LIMIT 1
)
UPDATE notification_queue
SET status = ?, delivered_at = ?
WHERE id IN (SELECT id FROM next)
RETURNING
  id, destination, body, dedupe_key, fingerprint, status, created_at, delivered_at;
`, destination, StatusQueued, StatusDelivered, nowS)

	m, err := scanMessage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("dequeue message: %w", err)
	}
	return m, nil
}

// List returns up to limit messages for destination in enqueue order. An
// empty status matches every status.
func (q *Queue) List(ctx context.Context, destination string, status Status, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := q.db.QueryContext(ctx, `
SELECT id, destination, body, dedupe_key, fingerprint, status, created_at, delivered_at
FROM notification_queue
WHERE destination = ? AND (? = '' OR status = ?)
ORDER BY created_at ASC, rowid ASC
LIMIT ?;
`, destination, status, status, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(s scanner) (*Message, error) {
	var (
		m            Message
		body         string
		dedupeKey    sql.NullString
		statusS      string
		createdAtS   string
		deliveredAtS sql.NullString
	)
	if err := s.Scan(&m.ID, &m.Destination, &body, &dedupeKey, &m.Fingerprint, &statusS, &createdAtS, &deliveredAtS); err != nil {
		return nil, err
	}

	m.Body = []byte(body)
	m.Status = Status(statusS)
	if dedupeKey.Valid {
		m.DedupeKey = &dedupeKey.String
	}
	if t, err := time.Parse(time.RFC3339Nano, createdAtS); err == nil {
		m.CreatedAt = t
	}
	if deliveredAtS.Valid {
		if t, err := time.Parse(time.RFC3339Nano, deliveredAtS.String); err == nil {
			m.DeliveredAt = &t
		}
	}
	return &m, nil
}
