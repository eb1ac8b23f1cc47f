// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database — it lives inside your Go binary as a single file.
// No separate database server to install, configure, or manage. Perfect for:
// - Single-server deployments (which is most apps, honestly)
// - Development and testing (use ":memory:" for in-memory DB)
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo (calls C code from Go), which means you need a C compiler
// installed and cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code — no C compiler needed, works everywhere Go works.
//
// CASCADE DELETES:
// Referential integrity does the heavy lifting here. Deleting a user takes
// their pets and reminders with it; deleting a pet takes its activities,
// medications, and any reminders pointing at it. The single DELETE in
// DeletePet is all the application code there is — the ON DELETE CASCADE
// clauses below do the rest, atomically.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	// BLANK IMPORT:
	// `_ "modernc.org/sqlite"` is a "side-effect only" import. The package's
	// init() function registers itself with database/sql as a driver named
	// "sqlite". After this import, sql.Open("sqlite", ...) knows how to talk
	// to SQLite.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides the repository methods
// for all five entities.
type DB struct {
	conn *sql.DB
}

// New creates a new SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/petwell.db"  → file-based database (persistent)
//   - ":memory:"         → in-memory database (great for tests, lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Ping verifies the connection actually works. Without this, a bad path
	// or permissions issue would only surface on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL (Write-Ahead Logging) mode allows concurrent reads WHILE a write
	// is happening — important for a web server.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite (backwards compatibility).
	// Every cascade below depends on this pragma.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool. Always defer it next to New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping reports whether the database is reachable. Used by the health
// endpoint.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it safe to
// run on every start.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id                 TEXT PRIMARY KEY,
			username           TEXT NOT NULL UNIQUE,
			email              TEXT NOT NULL UNIQUE,
			first_name         TEXT NOT NULL DEFAULT '',
			last_name          TEXT NOT NULL DEFAULT '',
			password_hash      TEXT NOT NULL,
			is_verified        INTEGER NOT NULL DEFAULT 0,
			is_active          INTEGER NOT NULL DEFAULT 1,
			verification_token TEXT,
			token_expires_at   DATETIME,
			created_at         DATETIME NOT NULL,
			updated_at         DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_users_verification_token ON users(verification_token);

		CREATE TABLE IF NOT EXISTS pets (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id         TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name            TEXT NOT NULL,
			species         TEXT NOT NULL,
			breed           TEXT,
			secondary_breed TEXT,
			tertiary_breed  TEXT,
			breed_type      TEXT,
			sex             TEXT,
			birthday        DATETIME,
			age             INTEGER,
			weight          REAL,
			medical_notes   TEXT,
			ai_care_tips    TEXT,
			created_at      DATETIME NOT NULL,
			updated_at      DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_pets_user_id ON pets(user_id);

		CREATE TABLE IF NOT EXISTS activities (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			pet_id        INTEGER NOT NULL REFERENCES pets(id) ON DELETE CASCADE,
			activity_type TEXT NOT NULL,
			title         TEXT NOT NULL,
			description   TEXT,
			duration      INTEGER,
			distance      REAL,
			notes         TEXT,
			activity_date DATETIME NOT NULL,
			created_at    DATETIME NOT NULL,
			updated_at    DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_activities_pet_id ON activities(pet_id);
		CREATE INDEX IF NOT EXISTS idx_activities_activity_date ON activities(activity_date);

		CREATE TABLE IF NOT EXISTS medications (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			pet_id          INTEGER NOT NULL REFERENCES pets(id) ON DELETE CASCADE,
			name            TEXT NOT NULL,
			dosage          TEXT NOT NULL,
			frequency       TEXT NOT NULL,
			route           TEXT,
			reason          TEXT,
			prescribing_vet TEXT,
			start_date      DATETIME NOT NULL,
			end_date        DATETIME,
			is_active       INTEGER NOT NULL DEFAULT 1,
			notes           TEXT,
			created_at      DATETIME NOT NULL,
			updated_at      DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_medications_pet_id ON medications(pet_id);

		CREATE TABLE IF NOT EXISTS reminders (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id       TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			pet_id        INTEGER REFERENCES pets(id) ON DELETE CASCADE,
			title         TEXT NOT NULL,
			description   TEXT,
			reminder_type TEXT NOT NULL,
			reminder_date DATETIME NOT NULL,
			is_completed  INTEGER NOT NULL DEFAULT 0,
			created_at    DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_reminders_user_id ON reminders(user_id);
		CREATE INDEX IF NOT EXISTS idx_reminders_reminder_date ON reminders(reminder_date);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure on
// the given column ("users.username"). modernc.org/sqlite exposes no typed
// constraint error, so the message text is what we have to match on.
func isUniqueViolation(err error, column string) bool {
	return err != nil &&
		strings.Contains(err.Error(), "UNIQUE constraint failed: "+column)
}
