// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package eventstore

import (
	"context"
	"sync"

	"github.com/hearth-im/hearth/lib/event"
	"github.com/hearth-im/hearth/lib/ref"
)

// MemoryStore is an in-memory event store. It backs the CLI's
// scenario runs and the tests; the SQLite store is the durable one.
// Safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[ref.EventID]event.Event
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{events: make(map[ref.EventID]event.Event)}
}

// Add stores an event, replacing any previous event with the same ID.
func (s *MemoryStore) Add(ev event.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[ev.ID()] = ev
}

// Event returns the stored event, or a [NotFoundError].
func (s *MemoryStore) Event(ctx context.Context, id ref.EventID) (event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ev, ok := s.events[id]
	if !ok {
		return nil, &NotFoundError{Ref: id.String()}
	}
	return ev, nil
}

// Exists reports whether an event with the given ID is stored.
func (s *MemoryStore) Exists(ctx context.Context, id ref.EventID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.events[id]
	return ok, nil
}

// Len returns the number of stored events.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}
