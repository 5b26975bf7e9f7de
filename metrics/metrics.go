// Package metrics exposes the middleware's instrumentation hooks. The
// default recorder is a no-op; wire the prometheus recorder to export
// counters and latencies.
package metrics

import "time"

// Event names recorded by the payment middleware.
const (
	EventChallenge        = "challenge"
	EventVerified         = "verified"
	EventVerifyRejected   = "verify_rejected"
	EventSettled          = "settled"
	EventSettlementFailed = "settlement_failed"
	EventInitFailed       = "init_failed"
	EventUnavailable      = "unavailable"
)

// Recorder receives payment lifecycle events.
type Recorder interface {
	IncCounter(name string, labels map[string]string)
	ObserveLatency(name string, duration time.Duration, labels map[string]string)
}
