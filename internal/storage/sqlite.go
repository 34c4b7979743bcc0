package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/tactyl/magsynth/internal/session"
)

// SQLiteStore archives sessions in a local SQLite database, one row per
// session with the full JSON document plus a few queryable columns.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id           TEXT PRIMARY KEY,
	version      TEXT NOT NULL,
	seed         INTEGER NOT NULL,
	sample_count INTEGER NOT NULL,
	pose_plan    TEXT NOT NULL,
	document     BLOB NOT NULL
);
`

// NewSQLiteStore opens (or creates) the archive database and bootstraps the
// schema.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create sessions table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Save implements SessionStore.
func (s *SQLiteStore) Save(sess *session.Session) error {
	doc, err := Encode(sess, "json", false)
	if err != nil {
		return err
	}

	posePlan := ""
	for i, pose := range sess.Metadata.Poses {
		if i > 0 {
			posePlan += ","
		}
		posePlan += pose
	}

	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO sessions (id, version, seed, sample_count, pose_plan, document)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sess.Timestamp, sess.Version, int64(sess.Metadata.Seed), len(sess.Samples), posePlan, doc,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// Count returns the number of archived sessions.
func (s *SQLiteStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return n, nil
}

// Load reads one archived session document back by id.
func (s *SQLiteStore) Load(id string) (*session.Session, error) {
	var doc []byte
	err := s.db.QueryRow(`SELECT document FROM sessions WHERE id = ?`, id).Scan(&doc)
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	return Decode(doc, "json")
}

// Close implements SessionStore.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
