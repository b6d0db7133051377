package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"time"
)

const (
	TimestampHeader = "X-Slack-Request-Timestamp"
	SignatureHeader = "X-Slack-Signature"

	// DefaultMaxSkew is the replay window applied in both directions.
	DefaultMaxSkew = 5 * time.Minute

	signatureVersion = "v0"
)

// Reason explains a verification outcome.
type Reason string

const (
	ReasonOK                  Reason = "ok"
	ReasonMissingHeaders      Reason = "missing_headers"
	ReasonBadTimestamp        Reason = "bad_timestamp"
	ReasonTimestampOutOfRange Reason = "timestamp_out_of_range"
	ReasonSignatureMismatch   Reason = "signature_mismatch"
)

// VerificationResult is produced once per request.
type VerificationResult struct {
	OK     bool
	Reason Reason
}

func reject(r Reason) VerificationResult {
	return VerificationResult{Reason: r}
}

// SlackVerifier checks Slack request signatures.
type SlackVerifier struct {
	secret  []byte
	maxSkew time.Duration
}

// NewSlackVerifier creates a verifier. A non-positive maxSkew means DefaultMaxSkew.
func NewSlackVerifier(signingSecret string, maxSkew time.Duration) *SlackVerifier {
	if maxSkew <= 0 {
		maxSkew = DefaultMaxSkew
	}
	return &SlackVerifier{
		secret:  []byte(signingSecret),
		maxSkew: maxSkew,
	}
}

// Verify authenticates a request body against its headers at time now.
//
// The timestamp window is checked before the HMAC so stale replays are
// rejected even when they carry a once-valid signature.
func (v *SlackVerifier) Verify(headers Headers, body []byte, now time.Time) VerificationResult {
	timestamp := headers.Get(TimestampHeader)
	signature := headers.Get(SignatureHeader)
	if timestamp == "" || signature == "" {
		return reject(ReasonMissingHeaders)
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return reject(ReasonBadTimestamp)
	}

	nowSec := now.Unix()
	window := int64(v.maxSkew / time.Second)
	if ts < nowSec-window || ts > nowSec+window {
		return reject(ReasonTimestampOutOfRange)
	}

	expected := computeSignature(v.secret, timestamp, body)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) != 1 {
		return reject(ReasonSignatureMismatch)
	}

	return VerificationResult{OK: true, Reason: ReasonOK}
}

// Sign returns the X-Slack-Signature value for a body signed at timestamp.
func Sign(signingSecret, timestamp string, body []byte) string {
	return computeSignature([]byte(signingSecret), timestamp, body)
}

func computeSignature(secret []byte, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(signatureVersion + ":" + timestamp + ":"))
	mac.Write(body)
	return signatureVersion + "=" + hex.EncodeToString(mac.Sum(nil))
}
