// Package sqlite owns the SQLite database: connection pools, schema synchronization and the art style seed.
package sqlite

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // Enable sqlite3 driver
	"github.com/myrjola/plottwist/internal/catalog"
	"github.com/myrjola/plottwist/internal/errors"
	"github.com/myrjola/plottwist/internal/random"
)

//go:embed schema.sql
var schemaDefinition string

const (
	maxReadConns      = 10
	optimizeInterval  = time.Hour
	inMemoryNameChars = 20
)

// Database holds one writer connection and a pool of read-only connections to the same database.
type Database struct {
	ReadWrite *sqlx.DB
	ReadOnly  *sqlx.DB
	logger    *slog.Logger
}

// NewDatabase connects to the database, synchronizes the schema, seeds the art style catalog and starts the
// optimizer which runs until ctx is done.
//
// url is a path to the database file or ":memory:" for a private in-memory database.
func NewDatabase(ctx context.Context, url string, logger *slog.Logger) (*Database, error) {
	db, err := connect(url, logger)
	if err != nil {
		return nil, err
	}
	if err = db.migrateTo(ctx, schemaDefinition); err != nil {
		return nil, errors.Wrap(err, "synchronize schema")
	}
	if err = db.seedArtStyles(ctx, catalog.ArtStyles()); err != nil {
		return nil, errors.Wrap(err, "seed art styles")
	}
	go db.startOptimizer(ctx, optimizeInterval)
	return db, nil
}

// connect opens the connection pools without touching the schema.
//
// A single writer connection serializes writes. See https://github.com/mattn/go-sqlite3/issues/1179.
func connect(url string, logger *slog.Logger) (*Database, error) {
	// In-memory databases need a shared cache so that both pools see the same data. Each gets a random name so that
	// parallel tests stay isolated. See https://www.sqlite.org/inmemorydb.html.
	inMemoryConfig := ""
	if strings.Contains(url, ":memory:") {
		name, err := random.Letters(inMemoryNameChars)
		if err != nil {
			return nil, errors.Wrap(err, "generate in-memory database name")
		}
		url = name
		inMemoryConfig = "&mode=memory&cache=shared"
	}

	// Options prefixed with an underscore are pragmas, see https://www.sqlite.org/pragma.html.
	pragmas := strings.Join([]string{
		"_journal_mode=wal",
		"_busy_timeout=5000",
		"_synchronous=normal",
		"_foreign_keys=on",
		"_temp_store=memory",
	}, "&")
	readWriteDSN := fmt.Sprintf("file:%s?mode=rwc&_txlock=immediate&%s%s", url, pragmas, inMemoryConfig)
	readOnlyDSN := fmt.Sprintf("file:%s?mode=ro&_txlock=deferred&_query_only=true&%s%s", url, pragmas, inMemoryConfig)
	if inMemoryConfig != "" {
		// mode=memory replaces the rwc and ro modes above.
		readWriteDSN = strings.Replace(readWriteDSN, "mode=rwc&", "", 1)
		readOnlyDSN = strings.Replace(readOnlyDSN, "mode=ro&", "", 1)
	}

	readWrite, err := sqlx.Open("sqlite3", readWriteDSN)
	if err != nil {
		return nil, errors.Wrap(err, "open read-write database")
	}
	readWrite.SetMaxOpenConns(1)
	readWrite.SetMaxIdleConns(1)
	readWrite.SetConnMaxLifetime(time.Hour)
	readWrite.SetConnMaxIdleTime(time.Hour)

	readOnly, err := sqlx.Open("sqlite3", readOnlyDSN)
	if err != nil {
		return nil, errors.Join(errors.Wrap(err, "open read-only database"), readWrite.Close())
	}
	readOnly.SetMaxOpenConns(maxReadConns)
	readOnly.SetMaxIdleConns(maxReadConns)
	readOnly.SetConnMaxLifetime(time.Hour)
	readOnly.SetConnMaxIdleTime(time.Hour)

	return &Database{
		ReadWrite: readWrite,
		ReadOnly:  readOnly,
		logger:    logger.With("source", "Database"),
	}, nil
}

// Close closes both pools.
func (db *Database) Close() error {
	return errors.Join(db.ReadOnly.Close(), db.ReadWrite.Close())
}

// seedArtStyles mirrors the art style catalog into the art_styles table. Existing rows keep their ids.
func (db *Database) seedArtStyles(ctx context.Context, styles []catalog.ArtStyle) error {
	tx, err := db.ReadWrite.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const stmt = `INSERT INTO art_styles (name, prompt_modifier)
VALUES (:name, :prompt_modifier)
ON CONFLICT (name) DO UPDATE SET prompt_modifier = excluded.prompt_modifier`
	for _, style := range styles {
		if _, err = tx.NamedExecContext(ctx, stmt, map[string]any{
			"name":            style.Name,
			"prompt_modifier": style.Description,
		}); err != nil {
			return errors.Wrap(err, "upsert art style", slog.String("name", style.Name))
		}
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit transaction")
	}
	db.logger.LogAttrs(ctx, slog.LevelDebug, "seeded art styles", slog.Int("count", len(styles)))
	return nil
}
