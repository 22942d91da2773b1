package store

import (
	"encoding/json"
	"fmt"
	"sync"
)

// MemStore is an in-memory Store. It mirrors the FileStore's JSON typing so
// code under test sees the same value shapes (map[string]any, float64,
// string, bool) it would see after a file round trip.
type MemStore struct {
	mu       sync.Mutex
	doc      map[string]any
	defaults func() map[string]any
}

func NewMemStore(defaults func() map[string]any) *MemStore {
	if defaults == nil {
		defaults = func() map[string]any { return map[string]any{} }
	}
	return &MemStore{doc: roundTrip(defaults()), defaults: defaults}
}

func (s *MemStore) Get(key string) (any, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := getNested(s.doc, key)
	return v, ok, nil
}

func (s *MemStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	setNested(s.doc, key, roundTripValue(value))
	return nil
}

func (s *MemStore) List() (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return roundTrip(s.doc), nil
}

func (s *MemStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = roundTrip(s.defaults())
	return nil
}

func roundTrip(doc map[string]any) map[string]any {
	data, err := json.Marshal(doc)
	if err != nil {
		panic(fmt.Errorf("json.Marshal failed: %w", err))
	}
	out := map[string]any{}
	if err := json.Unmarshal(data, &out); err != nil {
		panic(fmt.Errorf("json.Unmarshal failed: %w", err))
	}
	return out
}

func roundTripValue(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("json.Marshal failed: %w", err))
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		panic(fmt.Errorf("json.Unmarshal failed: %w", err))
	}
	return out
}
