package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

const entryTable = "scriptor_journal"

// SQLite persists journal entries in a SQLite database.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and ensures schema.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store, err := NewSQLite(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLite creates a SQLite-backed journal on an existing handle and
// ensures schema.
func NewSQLite(db *sql.DB) (*SQLite, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func ensureSchema(db *sql.DB) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			message TEXT NOT NULL,
			role_id TEXT NOT NULL,
			activated INTEGER NOT NULL,
			fingerprint_json BLOB NOT NULL,
			created_at INTEGER NOT NULL
		);`, entryTable),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_created ON %s(created_at);`, entryTable, entryTable),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_role ON %s(role_id);`, entryTable, entryTable),
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Append persists an entry. A missing id or timestamp is filled in.
func (s *SQLite) Append(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	payload, err := json.Marshal(entry.Fingerprint)
	if err != nil {
		return fmt.Errorf("marshal fingerprint: %w", err)
	}
	activated := 0
	if entry.Activated {
		activated = 1
	}
	_, err = s.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, message, role_id, activated, fingerprint_json, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`, entryTable),
		entry.ID, entry.Message, entry.RoleID, activated, payload, entry.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *SQLite) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, message, role_id, activated, fingerprint_json, created_at
			FROM %s ORDER BY created_at DESC, id LIMIT ?`, entryTable),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			entry     Entry
			activated int
			payload   []byte
			createdAt int64
		)
		if err := rows.Scan(&entry.ID, &entry.Message, &entry.RoleID, &activated, &payload, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(payload, &entry.Fingerprint); err != nil {
			return nil, fmt.Errorf("unmarshal fingerprint: %w", err)
		}
		entry.Activated = activated != 0
		entry.CreatedAt = time.Unix(0, createdAt)
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

// Close closes the underlying database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}
