package queue

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/zeebo/blake3"
)

type Status string

const (
	StatusQueued    Status = "queued"
	StatusDelivered Status = "delivered"
)

const ContentType = "application/json"

// Message is a stored notification.
type Message struct {
	ID          string          `json:"id"`
	Destination string          `json:"destination"`
	Body        json.RawMessage `json:"body"`
	DedupeKey   *string         `json:"dedupe_key,omitempty"`
	Fingerprint string          `json:"fingerprint"`
	Status      Status          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	DeliveredAt *time.Time      `json:"delivered_at,omitempty"`
}

type EnqueueRequest struct {
	Destination string
	Body        json.RawMessage
	DedupeKey   string
}

var (
	ErrEmptyDestination = errors.New("destination is empty")
	ErrEmptyBody        = errors.New("body is empty")
)

func (r EnqueueRequest) validate() error {
	if r.Destination == "" {
		return ErrEmptyDestination
	}
	if len(r.Body) == 0 {
		return ErrEmptyBody
	}
	return nil
}

func (r EnqueueRequest) dedupeKey() any {
	if r.DedupeKey == "" {
		return nil
	}
	return r.DedupeKey
}

// Fingerprint returns the hex BLAKE3 digest of body.
func Fingerprint(body []byte) string {
	sum := blake3.Sum256(body)
	return hex.EncodeToString(sum[:])
}
