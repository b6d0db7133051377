package queue

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/mattjoyce/slackrelay/internal/storage"
)

func openTestQueue(t *testing.T) *Queue {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "queue.db")
	db, err := storage.OpenSQLite(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return New(db)
}

func TestQueueEnqueueDequeueFIFO(t *testing.T) {
	t.Parallel()

	q := openTestQueue(t)
	ctx := context.Background()

	id1, err := q.Enqueue(ctx, EnqueueRequest{
		Destination: "alerts",
		Body:        json.RawMessage(`{"alias":"slack-1"}`),
		DedupeKey:   "slack-1",
	})
	if err != nil {
		t.Fatalf("Enqueue 1: %v", err)
	}
	id2, err := q.Enqueue(ctx, EnqueueRequest{
		Destination: "alerts",
		Body:        json.RawMessage(`{"alias":"slack-2"}`),
	})
	if err != nil {
		t.Fatalf("Enqueue 2: %v", err)
	}

	m1, err := q.Dequeue(ctx, "alerts")
	if err != nil {
		t.Fatalf("Dequeue 1: %v", err)
	}
	if m1 == nil || m1.ID != id1 || m1.Status != StatusDelivered || m1.DeliveredAt == nil {
		t.Fatalf("unexpected message 1: %#v", m1)
	}
	if string(m1.Body) != `{"alias":"slack-1"}` {
		t.Fatalf("body = %s", m1.Body)
	}
	if m1.DedupeKey == nil || *m1.DedupeKey != "slack-1" {
		t.Fatalf("dedupe key = %v", m1.DedupeKey)
	}
	if m1.Fingerprint != Fingerprint([]byte(`{"alias":"slack-1"}`)) {
		t.Fatalf("fingerprint = %q", m1.Fingerprint)
	}

	m2, err := q.Dequeue(ctx, "alerts")
	if err != nil {
		t.Fatalf("Dequeue 2: %v", err)
	}
	if m2 == nil || m2.ID != id2 || m2.DedupeKey != nil {
		t.Fatalf("unexpected message 2: %#v", m2)
	}

	m3, err := q.Dequeue(ctx, "alerts")
	if err != nil {
		t.Fatalf("Dequeue 3: %v", err)
	}
	if m3 != nil {
		t.Fatalf("expected empty queue, got %#v", m3)
	}
}

func TestQueueDestinationsAreIsolated(t *testing.T) {
	t.Parallel()

	q := openTestQueue(t)
	ctx := context.Background()

	if _, err := q.Enqueue(ctx, EnqueueRequest{Destination: "a", Body: json.RawMessage(`{}`)}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	m, err := q.Dequeue(ctx, "b")
	if err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	if m != nil {
		t.Fatalf("expected nothing for destination b, got %#v", m)
	}
}

func TestQueueList(t *testing.T) {
	t.Parallel()

	q := openTestQueue(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := q.Enqueue(ctx, EnqueueRequest{Destination: "alerts", Body: json.RawMessage(`{}`)}); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}
	if _, err := q.Dequeue(ctx, "alerts"); err != nil {
		t.Fatalf("Dequeue: %v", err)
	}

	all, err := q.List(ctx, "alerts", "", 0)
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(all))
	}

	queued, err := q.List(ctx, "alerts", StatusQueued, 10)
	if err != nil {
		t.Fatalf("List queued: %v", err)
	}
	if len(queued) != 2 {
		t.Fatalf("expected 2 queued, got %d", len(queued))
	}

	limited, err := q.List(ctx, "alerts", "", 1)
	if err != nil {
		t.Fatalf("List limited: %v", err)
	}
	if len(limited) != 1 || limited[0].Status != StatusDelivered {
		t.Fatalf("unexpected limited list: %#v", limited)
	}
}

func TestQueueEnqueueRejectsInvalidRequest(t *testing.T) {
	t.Parallel()

	q := openTestQueue(t)

	if _, err := q.Enqueue(context.Background(), EnqueueRequest{Body: json.RawMessage(`{}`)}); err != ErrEmptyDestination {
		t.Fatalf("expected ErrEmptyDestination, got %v", err)
	}
	if _, err := q.Enqueue(context.Background(), EnqueueRequest{Destination: "alerts"}); err != ErrEmptyBody {
		t.Fatalf("expected ErrEmptyBody, got %v", err)
	}
}

func TestFingerprintIsStable(t *testing.T) {
	t.Parallel()

	a := Fingerprint([]byte(`{"a":1}`))
	if a != Fingerprint([]byte(`{"a":1}`)) {
		t.Fatal("fingerprint changed between calls")
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
	if a == Fingerprint([]byte(`{"a":2}`)) {
		t.Fatal("different bodies share a fingerprint")
	}
}
