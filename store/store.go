// Package store persists people in a single SQLite file.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/use-agent/facecards/models"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a person does not exist.
var ErrNotFound = errors.New("not found")

// DB wraps the SQLite connection. It is safe for concurrent use.
type DB struct {
	conn *sql.DB
}

// Open opens (creating if needed) the database at path and initialises the
// schema.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite allows a single writer.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS people (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		face_filename TEXT NOT NULL DEFAULT '',
		context TEXT NOT NULL DEFAULT '',
		card_face_to_name INTEGER NOT NULL DEFAULT 1,
		card_name_to_face INTEGER NOT NULL DEFAULT 1,
		card_name_face_to_context INTEGER NOT NULL DEFAULT 1,
		card_context_to_person INTEGER NOT NULL DEFAULT 0,
		source TEXT NOT NULL DEFAULT 'manual',
		source_url TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_people_created_at ON people(created_at);
	CREATE INDEX IF NOT EXISTS idx_people_name_lower ON people(lower(name));
	`
	_, err := db.conn.Exec(schema)
	return err
}

const personColumns = `id, name, face_filename, context,
	card_face_to_name, card_name_to_face, card_name_face_to_context, card_context_to_person,
	source, source_url, created_at, updated_at`

// Create inserts p. An empty ID is filled with a new UUID and zero
// timestamps with the current time.
func (db *DB) Create(ctx context.Context, p *models.Person) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	if p.Source == "" {
		p.Source = models.SourceManual
	}

	_, err := db.conn.ExecContext(ctx, `INSERT INTO people (`+personColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.FaceFilename, p.Context,
		p.CardFaceToName, p.CardNameToFace, p.CardNameFaceToContext, p.CardContextToPerson,
		p.Source, p.SourceURL, p.CreatedAt.UnixNano(), p.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert person: %w", err)
	}
	return nil
}

// Get returns the person with id.
func (db *DB) Get(ctx context.Context, id string) (*models.Person, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+personColumns+` FROM people WHERE id = ?`, id)
	p, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get person: %w", err)
	}
	return p, nil
}

// Update overwrites every mutable field of p and bumps UpdatedAt.
func (db *DB) Update(ctx context.Context, p *models.Person) error {
	p.UpdatedAt = time.Now().UTC()
	res, err := db.conn.ExecContext(ctx, `UPDATE people SET
		name = ?, face_filename = ?, context = ?,
		card_face_to_name = ?, card_name_to_face = ?, card_name_face_to_context = ?, card_context_to_person = ?,
		source = ?, source_url = ?, updated_at = ?
		WHERE id = ?`,
		p.Name, p.FaceFilename, p.Context,
		p.CardFaceToName, p.CardNameToFace, p.CardNameFaceToContext, p.CardContextToPerson,
		p.Source, p.SourceURL, p.UpdatedAt.UnixNano(),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update person: %w", err)
	}
	return requireRow(res)
}

// Delete removes the person with id.
func (db *DB) Delete(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM people WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	return requireRow(res)
}

// List returns people newest first. A non-empty query keeps only names
// containing it, case-insensitively.
func (db *DB) List(ctx context.Context, query string) ([]*models.Person, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return db.queryPeople(ctx, `SELECT `+personColumns+` FROM people ORDER BY created_at DESC`)
	}
	return db.queryPeople(ctx,
		`SELECT `+personColumns+` FROM people WHERE lower(name) LIKE ? ESCAPE '\' ORDER BY created_at DESC`,
		"%"+escapeLike(strings.ToLower(query))+"%",
	)
}

// FindDuplicate returns a person whose name equals name case-insensitively,
// ignoring excludeID. It returns nil when there is none.
func (db *DB) FindDuplicate(ctx context.Context, name, excludeID string) (*models.Person, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+personColumns+` FROM people WHERE lower(name) = ? AND id != ? ORDER BY created_at LIMIT 1`,
		strings.ToLower(name), excludeID,
	)
	p, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find duplicate: %w", err)
	}
	return p, nil
}

// ListByIDs returns the people with the given ids, newest first. Unknown
// ids are ignored.
func (db *DB) ListByIDs(ctx context.Context, ids []string) ([]*models.Person, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return db.queryPeople(ctx,
		`SELECT `+personColumns+` FROM people WHERE id IN (`+placeholders+`) ORDER BY created_at DESC`,
		args...,
	)
}

func (db *DB) queryPeople(ctx context.Context, query string, args ...any) ([]*models.Person, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query people: %w", err)
	}
	defer rows.Close()

	var people []*models.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		people = append(people, p)
	}
	return people, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPerson(s scanner) (*models.Person, error) {
	var p models.Person
	var created, updated int64
	err := s.Scan(
		&p.ID, &p.Name, &p.FaceFilename, &p.Context,
		&p.CardFaceToName, &p.CardNameToFace, &p.CardNameFaceToContext, &p.CardContextToPerson,
		&p.Source, &p.SourceURL, &created, &updated,
	)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = time.Unix(0, created).UTC()
	p.UpdatedAt = time.Unix(0, updated).UTC()
	return &p, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
