// Package history keeps an optional sqlite journal of document revisions.
// It is write-mostly: every confirmed content change appends one row unless
// the content hash matches the latest revision of the session. Nothing in
// the journal ever feeds back into the live editor.
package history

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"editbridge/dbopen"
	"editbridge/idgen"
)

// Revision is one stored document state.
type Revision struct {
	ID        string
	SessionID string
	HTML      string
	Hash      string
	CreatedAt time.Time
}

// ErrNotFound is returned by Get for an unknown revision ID.
var ErrNotFound = errors.New("history: revision not found")

// Store is the revision journal.
type Store struct {
	db    *sql.DB
	newID idgen.Generator
}

// Open opens (or creates) the journal at path.
func Open(path string) (*Store, error) {
	db, err := dbopen.Open(path, dbopen.WithMkdirAll(), dbopen.WithSchema(Schema))
	if err != nil {
		return nil, fmt.Errorf("history: open: %w", err)
	}
	return &Store{db: db, newID: idgen.Default}, nil
}

// NewStore wraps an already-open database, e.g. an in-memory one in tests.
func NewStore(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(Schema); err != nil {
		return nil, fmt.Errorf("history: apply schema: %w", err)
	}
	return &Store{db: db, newID: idgen.Default}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// HashHTML computes the dedup hash of a document state.
func HashHTML(html string) string {
	sum := sha256.Sum256([]byte(html))
	return hex.EncodeToString(sum[:])
}

// Append stores a revision unless it repeats the session's latest one.
// It returns the revision ID, or "" when deduplicated.
func (s *Store) Append(ctx context.Context, sessionID, html string) (string, error) {
	hash := HashHTML(html)

	var latest string
	err := s.db.QueryRowContext(ctx,
		`SELECT hash FROM revisions WHERE session_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		sessionID).Scan(&latest)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("history: latest hash: %w", err)
	}
	if latest == hash {
		return "", nil
	}

	id := s.newID()
	_, err = dbopen.Exec(ctx, s.db,
		`INSERT INTO revisions (id, session_id, html, hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, sessionID, html, hash, time.Now().UnixMilli())
	if err != nil {
		return "", fmt.Errorf("history: append: %w", err)
	}
	return id, nil
}

// Get returns one revision by ID.
func (s *Store) Get(ctx context.Context, id string) (Revision, error) {
	var r Revision
	var createdAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, session_id, html, hash, created_at FROM revisions WHERE id = ?`, id).
		Scan(&r.ID, &r.SessionID, &r.HTML, &r.Hash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Revision{}, ErrNotFound
	}
	if err != nil {
		return Revision{}, fmt.Errorf("history: get: %w", err)
	}
	r.CreatedAt = time.UnixMilli(createdAt)
	return r, nil
}

// List returns a session's revisions, newest first, up to limit (0 = all).
func (s *Store) List(ctx context.Context, sessionID string, limit int) ([]Revision, error) {
	q := `SELECT id, session_id, html, hash, created_at FROM revisions
	      WHERE session_id = ? ORDER BY created_at DESC, id DESC`
	args := []any{sessionID}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	defer rows.Close()

	var out []Revision
	for rows.Next() {
		var r Revision
		var createdAt int64
		if err := rows.Scan(&r.ID, &r.SessionID, &r.HTML, &r.Hash, &createdAt); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		r.CreatedAt = time.UnixMilli(createdAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Prune deletes a session's revisions older than cutoff and returns the
// number removed.
func (s *Store) Prune(ctx context.Context, sessionID string, cutoff time.Time) (int64, error) {
	res, err := dbopen.Exec(ctx, s.db,
		`DELETE FROM revisions WHERE session_id = ? AND created_at < ?`,
		sessionID, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("history: prune: %w", err)
	}
	return res.RowsAffected()
}
