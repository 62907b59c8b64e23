package events

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
)

// InMemorySink is a Sink that keeps events in memory. It backs unit
// tests and local development; production wiring uses the postgres sink.
type InMemorySink struct {
	mu     sync.RWMutex
	events []*Event
	logger *slog.Logger
}

// NewInMemorySink creates a new in-memory sink.
func NewInMemorySink(logger *slog.Logger) *InMemorySink {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemorySink{
		logger: logger.With(slog.String("component", "in_memory_event_sink")),
	}
}

var _ TxSink = (*InMemorySink)(nil)

// WithTx implements TxSink. The in-memory sink has no transactional
// backing; events persisted through the returned sink are visible
// immediately even if the surrounding transaction rolls back.
func (s *InMemorySink) WithTx(_ *sql.Tx) Sink {
	return s
}

// Persist records the event after validating it against its schema.
func (s *InMemorySink) Persist(_ context.Context, event *Event) error {
	if err := Validate(event); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)

	s.logger.Debug("persisted event",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Type))
	return nil
}

// Events returns a snapshot of everything persisted so far.
func (s *InMemorySink) Events() []*Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Event, len(s.events))
	copy(out, s.events)
	return out
}

// OfType returns persisted events matching the given type, in order.
func (s *InMemorySink) OfType(eventType string) []*Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Event
	for _, e := range s.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
