// Package event decodes Slack Events API bodies into typed envelopes and
// decides which of them slackrelay forwards.
package event

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind tags the decoded envelope variant.
type Kind int

const (
	KindUnrecognized Kind = iota
	KindHandshake
	KindEventCallback
)

func (k Kind) String() string {
	switch k {
	case KindHandshake:
		return "handshake"
	case KindEventCallback:
		return "event_callback"
	default:
		return "unrecognized"
	}
}

// Top-level envelope types.
const (
	TypeURLVerification = "url_verification"
	TypeEventCallback   = "event_callback"

	// TypeMessage is the only inner event type forwarded.
	TypeMessage = "message"
)

// ChatEvent is the inner event of an event_callback envelope.
type ChatEvent struct {
	Type    string
	Subtype string
	User    string
	Channel string
	Text    string
	TS      string
	// FromBot is set when the event carries a bot_id key, whatever its value.
	FromBot bool
	// EventID is the envelope's event_id, empty when Slack did not send one.
	EventID string
}

// Envelope is one decoded request body. Exactly one of Challenge (handshake)
// or Event (event_callback) is meaningful, selected by Kind.
type Envelope struct {
	Kind Kind
	// Type is the raw top-level type, kept for logging unrecognized bodies.
	Type      string
	Challenge string
	Event     ChatEvent
}

type wireEnvelope struct {
	Type      string          `json:"type"`
	Challenge string          `json:"challenge"`
	EventID   string          `json:"event_id"`
	Event     json.RawMessage `json:"event"`
}

type wireEvent struct {
	Type    string          `json:"type"`
	Subtype string          `json:"subtype"`
	User    string          `json:"user"`
	Channel string          `json:"channel"`
	Text    string          `json:"text"`
	TS      string          `json:"ts"`
	BotID   json.RawMessage `json:"bot_id"`
}

// Decode parses a request body. An empty body is an unrecognized envelope;
// a body that is not a JSON object is an error.
func Decode(body []byte) (Envelope, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return Envelope{Kind: KindUnrecognized}, nil
	}

	var w wireEnvelope
	if err := json.Unmarshal(body, &w); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}

	switch w.Type {
	case TypeURLVerification:
		return Envelope{Kind: KindHandshake, Type: w.Type, Challenge: w.Challenge}, nil
	case TypeEventCallback:
		ev, err := decodeEvent(w.Event)
		if err != nil {
			return Envelope{}, err
		}
		ev.EventID = w.EventID
		return Envelope{Kind: KindEventCallback, Type: w.Type, Event: ev}, nil
	default:
		return Envelope{Kind: KindUnrecognized, Type: w.Type}, nil
	}
}

func decodeEvent(raw json.RawMessage) (ChatEvent, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ChatEvent{}, nil
	}

	var w wireEvent
	if err := json.Unmarshal(raw, &w); err != nil {
		return ChatEvent{}, fmt.Errorf("decode event: %w", err)
	}

	return ChatEvent{
		Type:    w.Type,
		Subtype: w.Subtype,
		User:    w.User,
		Channel: w.Channel,
		Text:    w.Text,
		TS:      w.TS,
		FromBot: w.BotID != nil,
	}, nil
}
