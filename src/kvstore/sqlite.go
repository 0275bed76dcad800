// Package kvstore provides durable key-value slot backends for the chat
// store: a sqlite database for normal operation and an afero-backed file
// store for lightweight setups and tests.
package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS slots (
	name TEXT PRIMARY KEY,
	value BLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// DB is a sqlite-backed key-value store. Each named slot holds one blob.
type DB struct {
	path string
	db   *sql.DB
}

// Open opens (creating if necessary) the sqlite database at path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &DB{path: path, db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Get returns the blob stored under name, or (nil, nil) if absent.
func (d *DB) Get(ctx context.Context, name string) ([]byte, error) {
	var row struct {
		Value []byte `db:"value"`
	}
	query := `SELECT value FROM slots WHERE name = ?`
	err := sqlscan.Get(ctx, d.db, &row, query, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return row.Value, nil
}

// Put upserts the blob stored under name.
func (d *DB) Put(ctx context.Context, name string, value []byte) error {
	query := `INSERT INTO slots (name, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	_, err := d.db.ExecContext(ctx, query, name, value, time.Now())
	return err
}

// Delete removes the slot under name. Deleting an absent slot is not an error.
func (d *DB) Delete(ctx context.Context, name string) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM slots WHERE name = ?`, name)
	return err
}

// Slot binds a name to this database, satisfying chatstore.Slot.
func (d *DB) Slot(name string) *DBSlot {
	return &DBSlot{db: d, name: name}
}

// DBSlot is a single named slot in a sqlite key-value store.
type DBSlot struct {
	db   *DB
	name string
}

func (s *DBSlot) Load(ctx context.Context) ([]byte, error) {
	return s.db.Get(ctx, s.name)
}

func (s *DBSlot) Save(ctx context.Context, data []byte) error {
	return s.db.Put(ctx, s.name, data)
}

func (s *DBSlot) Clear(ctx context.Context) error {
	return s.db.Delete(ctx, s.name)
}
