package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tactyl/magsynth/internal/session"
)

// FileStore writes one document per session into a directory. Format is
// "json" (optionally pretty-printed) or "msgpack".
type FileStore struct {
	dir    string
	format string
	pretty bool
}

// NewFileStore creates the output directory if needed.
func NewFileStore(dir, format string, pretty bool) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating session directory: %w", err)
	}
	if format == "" {
		format = "json"
	}
	return &FileStore{dir: dir, format: format, pretty: pretty}, nil
}

// Save implements SessionStore. The file name is the session id.
func (f *FileStore) Save(s *session.Session) error {
	data, err := Encode(s, f.format, f.pretty)
	if err != nil {
		return err
	}

	ext := "json"
	if f.format == "msgpack" {
		ext = "msgpack"
	}
	path := filepath.Join(f.dir, fmt.Sprintf("session_%s.%s", s.Timestamp, ext))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	return nil
}

// Close implements SessionStore.
func (f *FileStore) Close() error {
	return nil
}
