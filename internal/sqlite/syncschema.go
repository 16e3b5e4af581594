package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/myrjola/plottwist/internal/errors"
	"github.com/myrjola/plottwist/internal/random"
)

// ErrForeignKeyViolation is returned when a migrated schema leaves dangling references.
var ErrForeignKeyViolation = errors.NewSentinel("foreign key violation after migration")

// schemaObject is a row of sqlite_schema.
type schemaObject struct {
	Type string `db:"type"`
	Name string `db:"name"`
	SQL  string `db:"sql"`
}

// migrateTo makes the database schema match schemaDefinition declaratively.
//
// The target schema is built in a scratch in-memory database that is attached as schemaTarget. Then the current
// schema is compared with it:
//
//  1. tables missing from the target are dropped,
//  2. new tables are created,
//  3. changed tables are rebuilt with the 12-step procedure https://www.sqlite.org/lang_altertable.html#otheralter
//     keeping the data of the columns that survive,
//  4. indexes and triggers are dropped and recreated whenever their definition differs.
//
// Inspired by https://david.rothlis.net/declarative-schema-migration-for-sqlite/
func (db *Database) migrateTo(ctx context.Context, schemaDefinition string) (err error) {
	targetName, err := random.Letters(inMemoryNameChars)
	if err != nil {
		return errors.Wrap(err, "generate schema target name")
	}
	targetDSN := fmt.Sprintf("file:%s?mode=memory&cache=shared", targetName)
	target, err := sqlx.Open("sqlite3", targetDSN)
	if err != nil {
		return errors.Wrap(err, "open schema target database")
	}
	defer func() {
		err = errors.Join(err, errors.Wrap(target.Close(), "close schema target database"))
	}()
	// Keep one connection open so the scratch database survives until it is attached.
	target.SetMaxIdleConns(1)
	if _, err = target.ExecContext(ctx, schemaDefinition); err != nil {
		return errors.Wrap(err, "create schema target")
	}

	// ATTACH and the foreign_keys pragma are no-ops or errors inside a transaction, so they run on the connection.
	conn, err := db.ReadWrite.Connx(ctx)
	if err != nil {
		return errors.Wrap(err, "acquire connection")
	}
	defer func() {
		err = errors.Join(err, errors.Wrap(conn.Close(), "release connection"))
	}()

	if _, err = conn.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return errors.Wrap(err, "disable foreign keys")
	}
	defer func() {
		if _, fkErr := conn.ExecContext(context.WithoutCancel(ctx), "PRAGMA foreign_keys = ON"); fkErr != nil {
			err = errors.Join(err, errors.Wrap(fkErr, "enable foreign keys"))
		}
	}()
	if _, err = conn.ExecContext(ctx, "ATTACH DATABASE ? AS schemaTarget", targetDSN); err != nil {
		return errors.Wrap(err, "attach schema target")
	}
	defer func() {
		if _, detachErr := conn.ExecContext(context.WithoutCancel(ctx), "DETACH DATABASE schemaTarget"); detachErr != nil {
			err = errors.Join(err, errors.Wrap(detachErr, "detach schema target"))
		}
	}()

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err = db.dropStaleIndexesAndTriggers(ctx, tx); err != nil {
		return err
	}
	if err = db.migrateTables(ctx, tx); err != nil {
		return err
	}
	if err = db.createMissingIndexesAndTriggers(ctx, tx); err != nil {
		return err
	}

	var violations []string
	if err = tx.SelectContext(ctx, &violations, `SELECT "table" FROM pragma_foreign_key_check`); err != nil {
		return errors.Wrap(err, "check foreign keys")
	}
	if len(violations) > 0 {
		return errors.Wrap(ErrForeignKeyViolation, "check foreign keys", slog.Any("tables", violations))
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit transaction")
	}
	return nil
}

func (db *Database) migrateTables(ctx context.Context, tx *sqlx.Tx) error {
	var deleted []string
	if err := tx.SelectContext(ctx, &deleted, `SELECT current.name
FROM main.sqlite_schema AS current
         LEFT JOIN schemaTarget.sqlite_schema AS target ON target.name = current.name AND target.type = current.type
WHERE current.type = 'table' AND target.name IS NULL AND current.name NOT LIKE 'sqlite_%'`); err != nil {
		return errors.Wrap(err, "query deleted tables")
	}
	for _, name := range deleted {
		db.logger.LogAttrs(ctx, slog.LevelInfo, "dropping table", slog.String("table", name))
		if _, err := tx.ExecContext(ctx, "DROP TABLE "+quote(name)); err != nil {
			return errors.Wrap(err, "drop table", slog.String("table", name))
		}
	}

	var created []schemaObject
	if err := tx.SelectContext(ctx, &created, `SELECT target.type, target.name, target.sql
FROM schemaTarget.sqlite_schema AS target
         LEFT JOIN main.sqlite_schema AS current ON current.name = target.name AND current.type = target.type
WHERE target.type = 'table' AND current.name IS NULL AND target.name NOT LIKE 'sqlite_%'`); err != nil {
		return errors.Wrap(err, "query new tables")
	}
	for _, table := range created {
		db.logger.LogAttrs(ctx, slog.LevelInfo, "creating table", slog.String("table", table.Name))
		if _, err := tx.ExecContext(ctx, table.SQL); err != nil {
			return errors.Wrap(err, "create table", slog.String("table", table.Name))
		}
	}

	var changed []schemaObject
	if err := tx.SelectContext(ctx, &changed, `SELECT target.type, target.name, target.sql
FROM main.sqlite_schema AS current
         JOIN schemaTarget.sqlite_schema AS target ON target.name = current.name AND target.type = current.type
WHERE current.type = 'table' AND current.sql != target.sql AND current.name NOT LIKE 'sqlite_%'`); err != nil {
		return errors.Wrap(err, "query changed tables")
	}
	for _, table := range changed {
		if err := db.rebuildTable(ctx, tx, table); err != nil {
			return errors.Wrap(err, "rebuild table", slog.String("table", table.Name))
		}
	}
	return nil
}

// rebuildTable creates the new definition under a temporary name, copies the surviving columns and swaps the tables.
func (db *Database) rebuildTable(ctx context.Context, tx *sqlx.Tx, table schemaObject) error {
	db.logger.LogAttrs(ctx, slog.LevelInfo, "rebuilding table", slog.String("table", table.Name))

	tempName := table.Name + "_migration_temp"
	tempSQL := strings.Replace(table.SQL, table.Name, tempName, 1)
	if _, err := tx.ExecContext(ctx, tempSQL); err != nil {
		return errors.Wrap(err, "create temporary table", slog.String("query", tempSQL))
	}

	var columns []string
	if err := tx.SelectContext(ctx, &columns, `SELECT current.name
FROM pragma_table_info(?, 'main') AS current
         JOIN pragma_table_info(?, 'schemaTarget') AS target ON target.name = current.name
ORDER BY current.cid`, table.Name, table.Name); err != nil {
		return errors.Wrap(err, "query common columns")
	}
	if len(columns) > 0 {
		quoted := make([]string, len(columns))
		for i, c := range columns {
			quoted[i] = quote(c)
		}
		common := strings.Join(quoted, ", ")
		copySQL := fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s", //nolint:gosec // identifiers are quoted
			quote(tempName), common, common, quote(table.Name))
		if _, err := tx.ExecContext(ctx, copySQL); err != nil {
			return errors.Wrap(err, "copy data", slog.String("query", copySQL))
		}
	}

	if _, err := tx.ExecContext(ctx, "DROP TABLE "+quote(table.Name)); err != nil {
		return errors.Wrap(err, "drop old table")
	}
	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf("ALTER TABLE %s RENAME TO %s", quote(tempName), quote(table.Name))); err != nil {
		return errors.Wrap(err, "rename temporary table")
	}
	return nil
}

// dropStaleIndexesAndTriggers drops the indexes and triggers that are missing from the target or defined differently.
func (db *Database) dropStaleIndexesAndTriggers(ctx context.Context, tx *sqlx.Tx) error {
	var stale []schemaObject
	if err := tx.SelectContext(ctx, &stale, `SELECT current.type, current.name, current.sql
FROM main.sqlite_schema AS current
         LEFT JOIN schemaTarget.sqlite_schema AS target ON target.name = current.name AND target.type = current.type
WHERE current.type IN ('index', 'trigger') AND current.sql IS NOT NULL
  AND (target.name IS NULL OR target.sql IS NOT current.sql)`); err != nil {
		return errors.Wrap(err, "query stale indexes and triggers")
	}
	for _, obj := range stale {
		db.logger.LogAttrs(ctx, slog.LevelInfo, "dropping schema object",
			slog.String("type", obj.Type), slog.String("name", obj.Name))
		stmt := fmt.Sprintf("DROP %s IF EXISTS %s", strings.ToUpper(obj.Type), quote(obj.Name))
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "drop schema object", slog.String("name", obj.Name))
		}
	}
	return nil
}

// createMissingIndexesAndTriggers creates the target indexes and triggers that do not exist after the table migration.
func (db *Database) createMissingIndexesAndTriggers(ctx context.Context, tx *sqlx.Tx) error {
	var missing []schemaObject
	if err := tx.SelectContext(ctx, &missing, `SELECT target.type, target.name, target.sql
FROM schemaTarget.sqlite_schema AS target
         LEFT JOIN main.sqlite_schema AS current ON current.name = target.name AND current.type = target.type
WHERE target.type IN ('index', 'trigger') AND target.sql IS NOT NULL AND current.name IS NULL`); err != nil {
		return errors.Wrap(err, "query missing indexes and triggers")
	}
	for _, obj := range missing {
		db.logger.LogAttrs(ctx, slog.LevelInfo, "creating schema object",
			slog.String("type", obj.Type), slog.String("name", obj.Name))
		if _, err := tx.ExecContext(ctx, obj.SQL); err != nil {
			return errors.Wrap(err, "create schema object", slog.String("name", obj.Name))
		}
	}
	return nil
}

func quote(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}
