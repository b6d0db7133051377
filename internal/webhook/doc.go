// Package webhook implements the inbound edge of slackrelay: the Slack request
// signature check and the HTTP listener that feeds requests to the dispatcher.
//
// # Security Model
//
// Every request must carry X-Slack-Request-Timestamp and X-Slack-Signature.
// The signature is "v0=" + hex(HMAC-SHA256(signing secret, "v0:" + timestamp + ":" + body))
// and is compared in constant time (crypto/subtle). Timestamps further than the
// replay window (5 minutes) from the local clock, in either direction, are
// rejected before any HMAC work.
//
// Header lookup is case-insensitive so requests relayed by API gateways that
// lowercase header names verify the same way as direct HTTP requests.
//
// # Request Flow
//
//  1. HTTP POST arrives at the configured path (default /slack/events)
//  2. Body size checked (413 if too large)
//  3. Request handed to the dispatcher, which verifies, filters, enriches and enqueues
//  4. Dispatcher response written back verbatim
//  5. Dispatcher error (queue failure) becomes 500 so Slack redelivers
//
// # Example Usage
//
//	server := webhook.New(webhook.Config{
//		Listen:      "127.0.0.1:8080",
//		Path:        "/slack/events",
//		MaxBodySize: webhook.DefaultMaxBodySize,
//	}, dispatcher, logger)
//	if err := server.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
package webhook
