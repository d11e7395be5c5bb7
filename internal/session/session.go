// Package session keeps per-visitor state across requests. Values are JSON
// documents keyed by name; nothing is written back unless the caller marks
// the session modified.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Store persists session values by session id. Load returns a nil map and a
// nil error for unknown or expired ids.
type Store interface {
	Load(ctx context.Context, id string) (map[string]json.RawMessage, error)
	Save(ctx context.Context, id string, values map[string]json.RawMessage, ttl time.Duration) error
	Destroy(ctx context.Context, id string) error
}

type Session struct {
	id       string
	prev     string
	values   map[string]json.RawMessage
	modified bool
}

func New(id string, values map[string]json.RawMessage) *Session {
	if values == nil {
		values = map[string]json.RawMessage{}
	}
	return &Session{id: id, values: values}
}

func (s *Session) ID() string { return s.id }

// Rotate moves the session to a fresh id, keeping its values. The old id is
// destroyed when the session is saved. Call it whenever the login state
// changes so an id handed out before login never carries one.
func (s *Session) Rotate(newID string) {
	if s.prev == "" {
		s.prev = s.id
	}
	s.id = newID
	s.modified = true
}

// Rotated returns the id the session had before Rotate, if it was rotated.
func (s *Session) Rotated() (string, bool) { return s.prev, s.prev != "" }

// Get decodes the value stored under key into dst. It reports false and
// leaves dst untouched when the key is absent, so dst doubles as the default.
func (s *Session) Get(key string, dst any) (bool, error) {
	raw, ok := s.values[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, fmt.Errorf("session key %q: %w", key, err)
	}
	return true, nil
}

// Set replaces the value under key. It does not mark the session modified.
func (s *Session) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("session key %q: %w", key, err)
	}
	s.values[key] = raw
	return nil
}

// Delete removes key. It does not mark the session modified.
func (s *Session) Delete(key string) {
	delete(s.values, key)
}

func (s *Session) MarkModified() { s.modified = true }

func (s *Session) Modified() bool { return s.modified }

// Flush drops every value, e.g. on logout.
func (s *Session) Flush() {
	s.values = map[string]json.RawMessage{}
	s.modified = true
}

// Save writes the session through st when it was marked modified, then drops
// the pre-rotation id if there is one.
func (s *Session) Save(ctx context.Context, st Store, ttl time.Duration) error {
	if !s.modified {
		return nil
	}
	if err := st.Save(ctx, s.id, s.values, ttl); err != nil {
		return err
	}
	s.modified = false
	if s.prev != "" {
		if err := st.Destroy(ctx, s.prev); err != nil {
			return fmt.Errorf("destroy rotated session: %w", err)
		}
		s.prev = ""
	}
	return nil
}
