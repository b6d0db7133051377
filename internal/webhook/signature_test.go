package webhook

import (
	"strconv"
	"testing"
	"time"
)

func signedHeaders(secret string, ts int64, body []byte) Headers {
	tsStr := strconv.FormatInt(ts, 10)
	return Headers{
		TimestampHeader: tsStr,
		SignatureHeader: Sign(secret, tsStr, body),
	}
}

func TestSlackVerifier_Verify(t *testing.T) {
	secret := "8f742231b10e8888abcd99yyyzzz85a5"
	body := []byte(`{"type":"event_callback","event":{"type":"message"}}`)
	now := time.Unix(1700000000, 0)

	tests := []struct {
		name    string
		headers Headers
		body    []byte
		want    Reason
	}{
		{
			name:    "valid signature",
			headers: signedHeaders(secret, now.Unix(), body),
			body:    body,
			want:    ReasonOK,
		},
		{
			name: "valid signature - lowercase header names",
			headers: Headers{
				"x-slack-request-timestamp": "1700000000",
				"x-slack-signature":         Sign(secret, "1700000000", body),
			},
			body: body,
			want: ReasonOK,
		},
		{
			name: "valid signature - mixed case header names",
			headers: Headers{
				"X-SLACK-REQUEST-TIMESTAMP": "1700000000",
				"x-Slack-Signature":         Sign(secret, "1700000000", body),
			},
			body: body,
			want: ReasonOK,
		},
		{
			name:    "valid at the edge of the window",
			headers: signedHeaders(secret, now.Unix()-300, body),
			body:    body,
			want:    ReasonOK,
		},
		{
			name:    "missing timestamp",
			headers: Headers{SignatureHeader: "v0=abc"},
			body:    body,
			want:    ReasonMissingHeaders,
		},
		{
			name:    "missing signature",
			headers: Headers{TimestampHeader: "1700000000"},
			body:    body,
			want:    ReasonMissingHeaders,
		},
		{
			name:    "nil headers",
			headers: nil,
			body:    body,
			want:    ReasonMissingHeaders,
		},
		{
			name:    "non-numeric timestamp",
			headers: Headers{TimestampHeader: "yesterday", SignatureHeader: "v0=abc"},
			body:    body,
			want:    ReasonBadTimestamp,
		},
		{
			name:    "stale timestamp with correct signature",
			headers: signedHeaders(secret, now.Unix()-301, body),
			body:    body,
			want:    ReasonTimestampOutOfRange,
		},
		{
			name:    "future timestamp with correct signature",
			headers: signedHeaders(secret, now.Unix()+301, body),
			body:    body,
			want:    ReasonTimestampOutOfRange,
		},
		{
			name:    "tampered body",
			headers: signedHeaders(secret, now.Unix(), body),
			body:    []byte(`{"type":"event_callback","event":{"type":"massage"}}`),
			want:    ReasonSignatureMismatch,
		},
		{
			name:    "wrong secret",
			headers: signedHeaders("other-secret", now.Unix(), body),
			body:    body,
			want:    ReasonSignatureMismatch,
		},
		{
			name:    "signature without version prefix",
			headers: Headers{TimestampHeader: "1700000000", SignatureHeader: Sign(secret, "1700000000", body)[3:]},
			body:    body,
			want:    ReasonSignatureMismatch,
		},
	}

	v := NewSlackVerifier(secret, 5*time.Minute)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.Verify(tt.headers, tt.body, now)
			if got.Reason != tt.want {
				t.Errorf("Verify() reason = %q, want %q", got.Reason, tt.want)
			}
			if got.OK != (tt.want == ReasonOK) {
				t.Errorf("Verify() ok = %v for reason %q", got.OK, got.Reason)
			}
		})
	}
}

func TestSlackVerifier_RejectsEverySingleByteMutation(t *testing.T) {
	secret := "test-secret"
	body := []byte(`{"type":"event_callback"}`)
	now := time.Unix(1700000000, 0)
	headers := signedHeaders(secret, now.Unix(), body)
	v := NewSlackVerifier(secret, 0)

	for i := range body {
		mutated := append([]byte(nil), body...)
		mutated[i] ^= 0x01
		if got := v.Verify(headers, mutated, now); got.OK {
			t.Fatalf("body mutation at byte %d accepted", i)
		}
	}

	sig := headers[SignatureHeader]
	for i := range sig {
		mutated := []byte(sig)
		mutated[i] ^= 0x01
		h := Headers{TimestampHeader: headers[TimestampHeader], SignatureHeader: string(mutated)}
		if got := v.Verify(h, body, now); got.Reason != ReasonSignatureMismatch {
			t.Fatalf("signature mutation at byte %d: reason = %q", i, got.Reason)
		}
	}
}

func TestSign_KnownVector(t *testing.T) {
	// Example from Slack's request signing documentation.
	secret := "8f742231b10e8888abcd99yyyzzz85a5"
	ts := "1531420618"
	body := []byte("token=xyzz0WbapA4vBCDEFasx0q6G&team_id=T1DC2JH3J&team_domain=testteamnow&channel_id=G8PSS9T3V&channel_name=foobar&user_id=U2CERLKJA&user_name=roadrunner&command=%2Fwebhook-collect&text=&response_url=https%3A%2F%2Fhooks.slack.com%2Fcommands%2FT1DC2JH3J%2F397700885554%2F96rGlfmibIGlgcZRskXaIFfN&trigger_id=398738663015.47445629121.803a0bc887a14d10d2c447fce8b6703c")
	want := "v0=a2114d57b48eac39b9ad189dd8316235a7b4a8d21a10bd27519666489c69b503"

	if got := Sign(secret, ts, body); got != want {
		t.Errorf("Sign() = %s, want %s", got, want)
	}
}

func TestHeadersGet(t *testing.T) {
	h := Headers{"content-type": "application/json", "X-Custom": "1"}
	if got := h.Get("Content-Type"); got != "application/json" {
		t.Errorf("Get(Content-Type) = %q", got)
	}
	if got := h.Get("x-custom"); got != "1" {
		t.Errorf("Get(x-custom) = %q", got)
	}
	if got := h.Get("Missing"); got != "" {
		t.Errorf("Get(Missing) = %q", got)
	}
}
