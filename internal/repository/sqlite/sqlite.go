// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which needs a C compiler and makes
// cross-compilation painful. modernc.org/sqlite is a pure Go translation of
// the SQLite sources — works everywhere Go works.
//
// The schema is three tables: users, recipes, auth_tokens. Recipes and
// tokens reference users with ON DELETE CASCADE; foreign keys are switched
// on per connection since SQLite defaults them off.
package sqlite

import (
	"database/sql"
	"fmt"

	// Blank import registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB owns the connection and hands out one store per entity. The stores
// share the connection but are distinct types — each implements exactly one
// repository interface (see the compile-time checks in user.go, recipe.go
// and token.go), so the services each receive only the slice of storage
// they depend on.
type DB struct {
	conn *sql.DB

	Users   *UserStore
	Recipes *RecipeStore
	Tokens  *TokenStore
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" for an in-memory database in tests.
//
// The Ping forces an immediate connection: a bad path or permission problem
// surfaces here, before the server starts accepting traffic, rather than on
// the first query. This is the readiness gate — nothing serves until the
// store answers.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// One connection, shared by the pool. SQLite serializes writes anyway,
	// and both PRAGMA settings and ":memory:" databases are per-connection
	// state — a second pooled connection would see neither.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL keeps commits append-only instead of rewriting pages through a
	// rollback journal — cheaper writes for a request-per-write workload.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{
		conn:    conn,
		Users:   &UserStore{conn: conn},
		Recipes: &RecipeStore{conn: conn},
		Tokens:  &TokenStore{conn: conn},
	}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Always defer this next to New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it idempotent,
// which is enough for this app's lifetime of schema changes.
func (db *DB) migrate() error {
	// users: email holds the normalized form (domain lowercased) and is
	// UNIQUE — one account per normalized email.
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			name          TEXT NOT NULL DEFAULT '',
			is_active     INTEGER NOT NULL DEFAULT 1,
			is_staff      INTEGER NOT NULL DEFAULT 0,
			is_superuser  INTEGER NOT NULL DEFAULT 0,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// recipes: price is stored as TEXT holding the exact decimal string
	// ("5.99") — never a float column, so no rounding drift.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS recipes (
			id           TEXT PRIMARY KEY,
			user_id      TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			title        TEXT NOT NULL,
			description  TEXT NOT NULL DEFAULT '',
			time_minutes INTEGER NOT NULL,
			price        TEXT NOT NULL,
			link         TEXT NOT NULL DEFAULT '',
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_recipes_user_id ON recipes(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating recipes table: %w", err)
	}

	// auth_tokens: key is the primary lookup (one per request); the UNIQUE
	// on user_id enforces the at-most-one-live-token-per-user invariant in
	// the store itself, not just in service code.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS auth_tokens (
			key        TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating auth_tokens table: %w", err)
	}

	return nil
}
