package event

import "strings"

// Verdict is the filter's classification of an envelope.
type Verdict string

const (
	// VerdictHandshake: echo the challenge, nothing else.
	VerdictHandshake Verdict = "handshake"
	// VerdictUnsupported: top-level type is not event_callback; acknowledge only.
	VerdictUnsupported Verdict = "unsupported"
	// VerdictIgnored: a callback we deliberately do not process.
	VerdictIgnored Verdict = "ignored"
	// VerdictAccepted: process the event. Decision.Enqueue says whether to send it.
	VerdictAccepted Verdict = "accepted"
)

// Ignore reasons.
const (
	ReasonNotMessage        = "not_message"
	ReasonSubtype           = "subtype"
	ReasonBotMessage        = "bot_message"
	ReasonChannelNotAllowed = "channel_not_allowed"
	ReasonNoKeyword         = "keyword_absent"
)

// Decision is the outcome of Admit.
type Decision struct {
	Verdict Verdict
	Reason  string
	Enqueue bool
}

// Filter holds the business rules.
type Filter struct {
	// AllowedChannelID restricts processing to one channel when non-empty.
	AllowedChannelID string
	// Keyword must appear in the text for the event to be enqueued. Empty disables the gate.
	Keyword string
}

// Admit classifies an envelope. Rules short-circuit in order.
func (f Filter) Admit(env Envelope) Decision {
	switch env.Kind {
	case KindHandshake:
		return Decision{Verdict: VerdictHandshake}
	case KindEventCallback:
	default:
		return Decision{Verdict: VerdictUnsupported}
	}

	ev := env.Event
	switch {
	case ev.Type != TypeMessage:
		return ignored(ReasonNotMessage)
	case ev.Subtype != "":
		return ignored(ReasonSubtype)
	case ev.FromBot:
		return ignored(ReasonBotMessage)
	case f.AllowedChannelID != "" && ev.Channel != f.AllowedChannelID:
		return ignored(ReasonChannelNotAllowed)
	}

	if f.Keyword != "" && !strings.Contains(ev.Text, f.Keyword) {
		return Decision{Verdict: VerdictAccepted, Reason: ReasonNoKeyword}
	}
	return Decision{Verdict: VerdictAccepted, Enqueue: true}
}

func ignored(reason string) Decision {
	return Decision{Verdict: VerdictIgnored, Reason: reason}
}
