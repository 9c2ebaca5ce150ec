package telemetry

import (
	"context"
	"sync"
)

// MemoryRecorder keeps every sample in memory. It is the default backend
// and is safe for concurrent readers.
type MemoryRecorder struct {
	mu      sync.RWMutex
	samples []Sample
	closed  bool
}

// NewMemoryRecorder creates an empty recorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

// Record appends samples.
func (m *MemoryRecorder) Record(_ context.Context, samples []Sample) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.samples = append(m.samples, samples...)
	return nil
}

// Flush is a no-op.
func (m *MemoryRecorder) Flush(context.Context) error { return nil }

// Close rejects further samples. Recorded samples stay readable.
func (m *MemoryRecorder) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Samples returns a copy of everything recorded.
func (m *MemoryRecorder) Samples() []Sample {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Sample, len(m.samples))
	copy(out, m.samples)
	return out
}

// ForAgent returns the samples of one agent in tick order.
func (m *MemoryRecorder) ForAgent(agentID uint64) []Sample {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Sample
	for _, s := range m.samples {
		if s.AgentID == agentID {
			out = append(out, s)
		}
	}
	return out
}

// Len returns the number of recorded samples.
func (m *MemoryRecorder) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.samples)
}
