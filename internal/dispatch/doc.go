// Package dispatch turns one Slack delivery into at most one queued notification.
//
// The dispatcher is transport-agnostic: the HTTP server and the invoke command
// both hand it a webhook.Request and write back the webhook.Response it returns.
//
// Pipeline (each step may end the request):
//   - base64-encoded body → 400 "base64 not supported"
//   - signature or timestamp check fails → 401 with a reason
//   - body is not JSON → 400
//   - url_verification → 200 with the challenge echoed
//   - top-level type other than event_callback → 200 "ok"
//   - filtered out (non-message, subtype, bot, other channel) → 200 "ignored"
//   - channel and user names resolved concurrently, falling back to ids
//   - notification built; keyword absent → 200 "ok", nothing enqueued
//   - enqueue → 200 "ok"
//
// Error handling:
//   - Lookup failures never fail the request
//   - Enqueue failures are returned as errors; nothing is retried here
package dispatch
