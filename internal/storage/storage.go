// Package storage persists generated sessions: JSON or msgpack documents on
// disk, or rows in a local SQLite archive.
package storage

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/tactyl/magsynth/internal/session"
)

// SessionStore is a write-only sink for completed sessions.
type SessionStore interface {
	Save(s *session.Session) error
	Close() error
}

// Encode serializes a session document in the requested format.
func Encode(s *session.Session, format string, pretty bool) ([]byte, error) {
	switch format {
	case "", "json":
		if pretty {
			return json.MarshalIndent(s, "", "  ")
		}
		return json.Marshal(s)
	case "msgpack":
		return msgpack.Marshal(s)
	}
	return nil, fmt.Errorf("unsupported session format %q", format)
}

// Decode is the inverse of Encode, used by tests and downstream tooling.
func Decode(data []byte, format string) (*session.Session, error) {
	var s session.Session
	switch format {
	case "", "json":
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
	case "msgpack":
		if err := msgpack.Unmarshal(data, &s); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported session format %q", format)
	}
	return &s, nil
}

// MultiStore fans a session out to several sinks; the first failure wins.
type MultiStore []SessionStore

// Save implements SessionStore.
func (m MultiStore) Save(s *session.Session) error {
	for _, store := range m {
		if err := store.Save(s); err != nil {
			return err
		}
	}
	return nil
}

// Close implements SessionStore, closing every sink.
func (m MultiStore) Close() error {
	var firstErr error
	for _, store := range m {
		if err := store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
