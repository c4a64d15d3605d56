package resultcache

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLite is a persistent cache in a single SQLite file.
type SQLite struct {
	db *sql.DB
}

var _ Cache = (*SQLite)(nil)

// OpenSQLite opens (creating if needed) the cache database at path and
// brings its schema up to date.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open result cache: %w", err)
	}
	// SQLite allows one writer; serialise through a single connection.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	c := &SQLite{db: db}
	if err := c.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// migrateUp runs all pending migrations up to the latest version.
func (c *SQLite) migrateUp() error {
	m, err := c.newMigrate()
	if err != nil {
		return err
	}
	// Note: We don't close m here because it would close the underlying DB connection.

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// SchemaVersion returns the applied migration version and dirty state.
func (c *SQLite) SchemaVersion() (version uint, dirty bool, err error) {
	m, err := c.newMigrate()
	if err != nil {
		return 0, false, err
	}
	version, dirty, err = m.Version()
	if err != nil && errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (c *SQLite) newMigrate() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(c.db, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = &migrateLogger{}
	return m, nil
}

// migrateLogger implements migrate.Logger interface
type migrateLogger struct{}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	log.Printf("[migrate] "+format, v...)
}

func (l *migrateLogger) Verbose() bool {
	return false
}

// Get returns the entry for key.
func (c *SQLite) Get(ctx context.Context, key string) (Entry, bool, error) {
	var payload string
	err := c.db.QueryRowContext(ctx, `SELECT payload FROM results WHERE cache_key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to read cached result: %w", err)
	}
	var e Entry
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		return Entry{}, false, fmt.Errorf("failed to decode cached result: %w", err)
	}
	return e, true, nil
}

// Put stores e under key, replacing any previous entry.
func (c *SQLite) Put(ctx context.Context, key string, e Entry) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO results (cache_key, angle, tx, ty, tz, wire_count, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			angle = excluded.angle,
			tx = excluded.tx,
			ty = excluded.ty,
			tz = excluded.tz,
			wire_count = excluded.wire_count,
			payload = excluded.payload,
			updated_at = CURRENT_TIMESTAMP`,
		key, e.Angle, e.Translation[0], e.Translation[1], e.Translation[2], e.WireCount, string(payload))
	if err != nil {
		return fmt.Errorf("failed to store result: %w", err)
	}
	return nil
}

// Len returns the number of stored entries.
func (c *SQLite) Len(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM results`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count results: %w", err)
	}
	return n, nil
}

// Close releases the database handle.
func (c *SQLite) Close() error {
	return c.db.Close()
}
