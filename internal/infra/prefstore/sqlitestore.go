package prefstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aalvaropc/roulette/internal/domain"
	"github.com/aalvaropc/roulette/internal/ports"
)

// SQLiteStore keeps the key/value pairs in a local_storage table.
type SQLiteStore struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewSQLiteStore opens (and creates if needed) the database at path.
// Use ":memory:" for an ephemeral store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, &domain.OpError{Op: "prefstore.sqlite.mkdir", Kind: domain.KindExecution, Path: path, Err: err}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &domain.OpError{Op: "prefstore.sqlite.open", Kind: domain.KindExecution, Path: path, Err: err}
	}
	// A single connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, path: path, now: time.Now}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

var _ ports.PreferencesStore = (*SQLiteStore)(nil)

func (s *SQLiteStore) initialize() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS local_storage (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return &domain.OpError{Op: "prefstore.sqlite.schema", Kind: domain.KindExecution, Path: s.path, Err: err}
	}
	return nil
}

func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Load() (domain.Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT key, value FROM local_storage`)
	if err != nil {
		return domain.DefaultPreferences(), &domain.OpError{Op: "prefstore.sqlite.query", Kind: domain.KindExecution, Path: s.path, Err: err}
	}
	defer rows.Close()

	kv := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return domain.DefaultPreferences(), &domain.OpError{Op: "prefstore.sqlite.scan", Kind: domain.KindExecution, Path: s.path, Err: err}
		}
		kv[k] = v
	}
	if err := rows.Err(); err != nil {
		return domain.DefaultPreferences(), &domain.OpError{Op: "prefstore.sqlite.rows", Kind: domain.KindExecution, Path: s.path, Err: err}
	}

	return decode("prefstore.sqlite.decode", s.path, kv)
}

func (s *SQLiteStore) Save(p domain.Preferences) error {
	kv, err := encode(p)
	if err != nil {
		return &domain.OpError{Op: "prefstore.sqlite.encode", Kind: domain.KindExecution, Path: s.path, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return &domain.OpError{Op: "prefstore.sqlite.begin", Kind: domain.KindExecution, Path: s.path, Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
		INSERT INTO local_storage (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)
	if err != nil {
		return &domain.OpError{Op: "prefstore.sqlite.prepare", Kind: domain.KindExecution, Path: s.path, Err: err}
	}
	defer stmt.Close()

	ts := s.now().UTC()
	for k, v := range kv {
		if _, err := stmt.Exec(k, v, ts); err != nil {
			return &domain.OpError{Op: "prefstore.sqlite.upsert", Kind: domain.KindExecution, Path: s.path, Err: fmt.Errorf("key %s: %w", k, err)}
		}
	}

	if err := tx.Commit(); err != nil {
		return &domain.OpError{Op: "prefstore.sqlite.commit", Kind: domain.KindExecution, Path: s.path, Err: err}
	}
	return nil
}
