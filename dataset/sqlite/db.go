// Package sqlite backs the pipeline server strategy with a SQLite database.
// Filtering, sorting and pagination run in SQL rather than in memory.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/zjrosen/roster/dataset"
	"github.com/zjrosen/roster/internal/log"
)

//go:embed migrations/*.sql
var migrations embed.FS

// InMemory is the path for a private in-memory database.
const InMemory = ":memory:"

// DB wraps the SQLite connection for the produce store.
type DB struct {
	conn *sql.DB
	path string
}

// NewDB opens (creating if needed) the database at path and runs migrations.
// Pass InMemory for an ephemeral database.
func NewDB(path string) (*DB, error) {
	if path != InMemory {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite allows a single writer, and an in-memory database exists
	// per connection. One pooled connection covers both.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn, path: path}
	if err := db.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	log.Debug(log.CatDB, "database ready", "path", path)
	return db, nil
}

func (d *DB) migrate() error {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	driver, err := migratesqlite.WithInstance(d.conn, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("prepare migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("prepare migrations: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Seed replaces the produce table contents with the given items.
func (d *DB) Seed(ctx context.Context, items []dataset.Item) error {
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM produce`); err != nil {
		return fmt.Errorf("clear produce: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO produce (id, name, color, family, weight, price, stock)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare seed insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, item := range items {
		if _, err := stmt.ExecContext(ctx,
			item.ID, item.Name, item.Color, item.Family, item.Weight, item.Price, item.Stock,
		); err != nil {
			return fmt.Errorf("insert produce %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}

	log.Debug(log.CatDB, "seeded produce", "count", len(items))
	return nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	return d.conn.Close()
}
