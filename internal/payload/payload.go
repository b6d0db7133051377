// Package payload builds the notification message handed to the queue.
package payload

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/mattjoyce/slackrelay/internal/event"
)

// MaxSubjectLen caps Subject, in characters.
const MaxSubjectLen = 100

// Placeholders used when the event omits a field.
const (
	unknownID = "unknown"
	noTS      = "no-ts"
)

// Notification is the queue message consumed by the incident-management side.
type Notification struct {
	DirectMessage bool   `json:"direct_message"`
	Subject       string `json:"subject"`
	Message       string `json:"message"`
	Alias         string `json:"alias"`
	ClientName    string `json:"client_name"`
	SLA           string `json:"sla"`

	// AccountID is the raw channel id so correlation survives renames.
	AccountID   string `json:"account_id"`
	AccountName string `json:"account_name"`
	Priority    string `json:"priority"`

	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
}

// Marshal returns the JSON body sent to the queue.
func (n Notification) Marshal() ([]byte, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("marshal notification: %w", err)
	}
	return data, nil
}

// Defaults are the metadata values applied to every notification.
type Defaults struct {
	ClientName string
	SLA        string
	Priority   string
}

// Builder assembles notifications.
type Builder struct {
	defaults Defaults
}

// NewBuilder creates a Builder.
func NewBuilder(d Defaults) *Builder {
	return &Builder{defaults: d}
}

// Build assembles the notification for ev given the resolved names.
func (b *Builder) Build(ev event.ChatEvent, channelName, userName string) Notification {
	// Empty and absent fields both take the placeholder.
	channelID := orDefault(ev.Channel, unknownID)
	userID := orDefault(ev.User, unknownID)
	ts := orDefault(ev.TS, noTS)

	display := ChannelDisplay(channelID, channelName)

	return Notification{
		DirectMessage: true,
		Subject:       truncate(fmt.Sprintf("Slack message in %s from %s", display, userName), MaxSubjectLen),
		Message:       fmt.Sprintf("Channel: %s\nUser: %s\n\n%s", display, userName, ev.Text),
		Alias:         Alias(ev.EventID, channelID, ts),
		ClientName:    b.defaults.ClientName,
		SLA:           b.defaults.SLA,
		AccountID:     channelID,
		AccountName:   display,
		Priority:      b.defaults.Priority,
		UserID:        userID,
		UserName:      userName,
	}
}

// ChannelDisplay is "#name" when the name was resolved, else the bare id.
func ChannelDisplay(channelID, channelName string) string {
	if channelName != "" && channelName != channelID {
		return "#" + channelName
	}
	return channelID
}

// Alias is the downstream deduplication key. It depends only on the event id,
// or on channel and message timestamp when Slack sent no event id.
func Alias(eventID, channelID, ts string) string {
	if eventID == "" {
		eventID = channelID + "-" + ts
	}
	return "slack-" + eventID
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
