// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Authentication metrics
	IncUserRegistered()
	IncLoginSuccess()
	IncLoginFailure()

	// Item management metrics
	IncItemCreated()
	IncItemUpdated()
	IncItemDeleted()

	// Chat proxy metrics
	IncChatRequest(status string) // status: "success", "unconfigured", "upstream_error"
	ObserveChatUpstreamDuration(duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
