package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is the subset of *pgxpool.Pool used by PostgresSink.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresSink appends notifications to the notification_queue table.
type PostgresSink struct {
	db  Execer
	now func() time.Time
}

func NewPostgresSink(db Execer) *PostgresSink {
	return &PostgresSink{db: db, now: time.Now}
}

func (p *PostgresSink) Enqueue(ctx context.Context, req EnqueueRequest) (string, error) {
	if err := req.validate(); err != nil {
		return "", err
	}

	id := uuid.NewString()
	_, err := p.db.Exec(ctx, `
INSERT INTO notification_queue(
  id, destination, body, dedupe_key, fingerprint, status, created_at
)
VALUES($1, $2, $3, $4, $5, $6, $7)`,
		id, req.Destination, string(req.Body), req.dedupeKey(), Fingerprint(req.Body), string(StatusQueued), p.now().UTC())
	if err != nil {
		return "", fmt.Errorf("enqueue message: %w", err)
	}
	return id, nil
}
