// Package memory provides in-memory implementations of the engine's ports,
// suitable for tests and single-process hosts.
package memory

import (
	"context"
	"sync"

	"github.com/perceptlab/staircase/pkg/ports"
)

// Sink implements ports.RecordingSink in memory.
// Safe for concurrent use.
type Sink struct {
	mu      sync.RWMutex
	records []ports.Record
}

// NewSink creates an empty in-memory data sink.
func NewSink() *Sink {
	return &Sink{}
}

// AddData appends one key/value pair. Repeated keys are kept: experiment data
// is a log, not a map.
func (s *Sink) AddData(_ context.Context, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, ports.Record{Key: key, Value: value})
	return nil
}

// Records returns a copy of every record in insertion order, so callers
// cannot mutate sink state through the returned slice.
func (s *Sink) Records(_ context.Context) ([]ports.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ports.Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

// Reset discards all records.
func (s *Sink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
}
