package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersRegistered             uint64
	LoginSuccesses              uint64
	LoginFailures               uint64
	ItemsCreated                uint64
	ItemsUpdated                uint64
	ItemsDeleted                uint64
	ChatRequestsByStatus        map[string]uint64
	ChatUpstreamDurationCount   uint64
	ChatUpstreamDurationTotalNs int64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	usersRegistered             uint64
	loginSuccesses              uint64
	loginFailures               uint64
	itemsCreated                uint64
	itemsUpdated                uint64
	itemsDeleted                uint64
	chatUpstreamDurationCount   uint64
	chatUpstreamDurationTotalNs int64

	mu                   sync.Mutex
	chatRequestsByStatus map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		chatRequestsByStatus: make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	byStatus := make(map[string]uint64, len(m.chatRequestsByStatus))
	for k, v := range m.chatRequestsByStatus {
		byStatus[k] = v
	}
	m.mu.Unlock()

	return Snapshot{
		UsersRegistered:             atomic.LoadUint64(&m.usersRegistered),
		LoginSuccesses:              atomic.LoadUint64(&m.loginSuccesses),
		LoginFailures:               atomic.LoadUint64(&m.loginFailures),
		ItemsCreated:                atomic.LoadUint64(&m.itemsCreated),
		ItemsUpdated:                atomic.LoadUint64(&m.itemsUpdated),
		ItemsDeleted:                atomic.LoadUint64(&m.itemsDeleted),
		ChatRequestsByStatus:        byStatus,
		ChatUpstreamDurationCount:   atomic.LoadUint64(&m.chatUpstreamDurationCount),
		ChatUpstreamDurationTotalNs: atomic.LoadInt64(&m.chatUpstreamDurationTotalNs),
	}
}

// IncUserRegistered increments the registration counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	atomic.AddUint64(&m.usersRegistered, 1)
}

// IncLoginSuccess increments the successful login counter.
func (m *InMemoryRecorder) IncLoginSuccess() {
	atomic.AddUint64(&m.loginSuccesses, 1)
}

// IncLoginFailure increments the failed login counter.
func (m *InMemoryRecorder) IncLoginFailure() {
	atomic.AddUint64(&m.loginFailures, 1)
}

// IncItemCreated increments the item created counter.
func (m *InMemoryRecorder) IncItemCreated() {
	atomic.AddUint64(&m.itemsCreated, 1)
}

// IncItemUpdated increments the item updated counter.
func (m *InMemoryRecorder) IncItemUpdated() {
	atomic.AddUint64(&m.itemsUpdated, 1)
}

// IncItemDeleted increments the item deleted counter.
func (m *InMemoryRecorder) IncItemDeleted() {
	atomic.AddUint64(&m.itemsDeleted, 1)
}

// IncChatRequest increments the chat request counter for the given status.
func (m *InMemoryRecorder) IncChatRequest(status string) {
	m.mu.Lock()
	m.chatRequestsByStatus[status]++
	m.mu.Unlock()
}

// ObserveChatUpstreamDuration records an upstream call duration.
func (m *InMemoryRecorder) ObserveChatUpstreamDuration(duration time.Duration) {
	atomic.AddUint64(&m.chatUpstreamDurationCount, 1)
	atomic.AddInt64(&m.chatUpstreamDurationTotalNs, duration.Nanoseconds())
}
