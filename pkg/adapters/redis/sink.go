// Package redis provides a Redis-backed data sink so experiment data can be
// collected outside the host process.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/perceptlab/staircase/pkg/ports"
)

// Sink implements ports.RecordingSink on a Redis list, one list per run.
// RPUSH preserves insertion order, matching the in-memory sink's contract.
type Sink struct {
	client *backend.Client
	prefix string
	runID  string
	ttl    time.Duration
}

// Option configures the Sink.
type Option func(*Sink)

// WithTTL sets the expiration for the run's data list.
func WithTTL(ttl time.Duration) Option {
	return func(s *Sink) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for run data.
func WithPrefix(prefix string) Option {
	return func(s *Sink) {
		s.prefix = prefix
	}
}

// New creates a Redis sink for the given run with its own client.
func New(address, password string, db int, runID string, opts ...Option) *Sink {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, runID, opts...)
}

// NewFromClient creates a Redis sink from an existing client.
func NewFromClient(client *backend.Client, runID string, opts ...Option) *Sink {
	s := &Sink{
		client: client,
		prefix: "staircase:data:",
		runID:  runID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sink) key() string {
	return s.prefix + s.runID
}

// AddData appends one record to the run's list.
func (s *Sink) AddData(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(ports.Record{Key: key, Value: value})
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.RPush(ctx, s.key(), data)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key(), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis error recording data: %w", err)
	}
	return nil
}

// Records returns every record for the run in insertion order.
func (s *Sink) Records(ctx context.Context) ([]ports.Record, error) {
	raw, err := s.client.LRange(ctx, s.key(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error reading records: %w", err)
	}
	records := make([]ports.Record, 0, len(raw))
	for _, item := range raw {
		var rec ports.Record
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Clear deletes the run's data list.
func (s *Sink) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key()).Err()
}
