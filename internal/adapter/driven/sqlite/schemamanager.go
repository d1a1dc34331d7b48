package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/golang-migrate/migrate/v4/database"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"

	"github.com/ericfisherdev/credcache/internal/domain/model"
	"github.com/ericfisherdev/credcache/internal/domain/port/driven"
)

// versionTable holds the (version, dirty) row used for locking and for
// detecting interrupted schema changes. PRAGMA user_version stays the
// version of record, so files written by other SQLite hosts open cleanly.
const versionTable = "cache_schema_version"

// busyFiles tracks cache files with a schema operation in progress in this process.
var busyFiles sync.Map

// Compile-time interface satisfaction check.
var _ driven.SchemaStore = (*SchemaManager)(nil)

// SchemaManager is the SQLite implementation of the SchemaStore port. It
// reads the stored schema version from PRAGMA user_version and invokes the
// SchemaMigrator callback matching the difference between the stored and
// the requested version. The golang-migrate version table records whether a
// change was interrupted.
type SchemaManager struct {
	db       *DB
	migrator driven.SchemaMigrator
	versions database.Driver
	fileKey  string
	logger   *slog.Logger
}

// NewSchemaManager creates a SchemaManager for db, creating the version table
// when it does not exist. A nil logger falls back to slog.Default().
func NewSchemaManager(db *DB, migrator driven.SchemaMigrator, logger *slog.Logger) (*SchemaManager, error) {
	if logger == nil {
		logger = slog.Default()
	}

	versions, err := migratesqlite.WithInstance(db.Writer, &migratesqlite.Config{MigrationsTable: versionTable})
	if err != nil {
		return nil, fmt.Errorf("create version store: %w", err)
	}

	fileKey := db.path
	if abs, err := filepath.Abs(db.path); err == nil {
		fileKey = abs
	}

	return &SchemaManager{
		db:       db,
		migrator: migrator,
		versions: versions,
		fileKey:  fileKey,
		logger:   logger,
	}, nil
}

// Ensure brings the cache file to the given schema version.
//
// The version is recorded dirty before the callback runs and clean after its
// transaction commits. PRAGMA user_version is written in the same transaction
// as the callback's statements. A failed callback leaves the file dirty and
// the next Ensure resets it.
func (m *SchemaManager) Ensure(ctx context.Context, version int) (model.Transition, error) {
	if version < 1 {
		return model.TransitionNone, fmt.Errorf("ensure schema version %d: %w", version, driven.ErrInvalidVersion)
	}
	if err := ctx.Err(); err != nil {
		return model.TransitionNone, err
	}

	if _, busy := busyFiles.LoadOrStore(m.fileKey, struct{}{}); busy {
		return model.TransitionNone, driven.ErrSchemaBusy
	}
	defer busyFiles.Delete(m.fileKey)

	if err := m.versions.Lock(); err != nil {
		if errors.Is(err, database.ErrLocked) {
			return model.TransitionNone, driven.ErrSchemaBusy
		}
		return model.TransitionNone, fmt.Errorf("lock schema: %w", err)
	}
	defer func() {
		if err := m.versions.Unlock(); err != nil {
			m.logger.Error("unlock schema", "error", err)
		}
	}()

	stored, dirty, err := m.storedVersion(ctx)
	if err != nil {
		return model.TransitionNone, err
	}

	transition := classifyTransition(stored, dirty, version)
	if transition == model.TransitionNone {
		if err := m.seedVersion(stored); err != nil {
			return model.TransitionNone, err
		}
		return transition, nil
	}

	apply := m.callbackFor(transition, stored, version)

	if err := ctx.Err(); err != nil {
		return model.TransitionNone, err
	}
	if err := m.versions.SetVersion(version, true); err != nil {
		return model.TransitionNone, fmt.Errorf("mark schema version %d dirty: %w", version, err)
	}

	if err := m.runInTx(ctx, version, apply); err != nil {
		return model.TransitionNone, fmt.Errorf("%s schema %d -> %d: %w", transition, stored, version, err)
	}

	if err := m.versions.SetVersion(version, false); err != nil {
		return model.TransitionNone, fmt.Errorf("record schema version %d: %w", version, err)
	}

	m.logger.Debug("schema transition applied",
		"transition", string(transition),
		"from", stored,
		"to", version,
	)
	return transition, nil
}

// storedVersion returns the file's schema version. While a change is marked
// dirty the version table wins; otherwise a positive PRAGMA user_version is
// the version of record.
func (m *SchemaManager) storedVersion(ctx context.Context) (int, bool, error) {
	version, dirty, err := m.versions.Version()
	if err != nil {
		return 0, false, fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		return version, true, nil
	}

	var userVersion int
	if err := m.db.Writer.QueryRowContext(ctx, `PRAGMA user_version`).Scan(&userVersion); err != nil {
		return 0, false, fmt.Errorf("read user_version: %w", err)
	}
	if userVersion > 0 {
		return userVersion, false, nil
	}
	return version, false, nil
}

// seedVersion records version in the version table when it lags behind
// user_version, as it does for files created by another host.
func (m *SchemaManager) seedVersion(version int) error {
	recorded, _, err := m.versions.Version()
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if recorded == version {
		return nil
	}
	if err := m.versions.SetVersion(version, false); err != nil {
		return fmt.Errorf("seed schema version %d: %w", version, err)
	}
	return nil
}

// classifyTransition decides which callback a stored (version, dirty) pair
// requires to reach target.
func classifyTransition(stored int, dirty bool, target int) model.Transition {
	switch {
	case dirty:
		return model.TransitionRecover
	case stored == database.NilVersion:
		return model.TransitionCreate
	case stored < target:
		return model.TransitionUpgrade
	case stored > target:
		return model.TransitionDowngrade
	default:
		return model.TransitionNone
	}
}

func (m *SchemaManager) callbackFor(t model.Transition, stored, target int) func(context.Context, driven.Execer) error {
	switch t {
	case model.TransitionCreate:
		return m.migrator.OnCreate
	case model.TransitionDowngrade:
		return func(ctx context.Context, db driven.Execer) error {
			return m.migrator.OnDowngrade(ctx, db, stored, target)
		}
	default:
		// Upgrade, and recovery of an interrupted change.
		return func(ctx context.Context, db driven.Execer) error {
			return m.migrator.OnUpgrade(ctx, db, stored, target)
		}
	}
}

func (m *SchemaManager) runInTx(ctx context.Context, version int, fn func(context.Context, driven.Execer) error) error {
	tx, err := m.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op.

	if err := fn(ctx, tx); err != nil {
		return err
	}

	// PRAGMA arguments cannot be bound; version is an int.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return fmt.Errorf("set user_version %d: %w", version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Status reports the stored schema version and the current shape and size of table.
func (m *SchemaManager) Status(ctx context.Context, table model.TableSchema) (model.CacheStatus, error) {
	version, dirty, err := m.storedVersion(ctx)
	if err != nil {
		return model.CacheStatus{}, err
	}

	status := model.CacheStatus{
		Path:    m.db.path,
		Version: version,
		Dirty:   dirty,
		Table:   table.Name,
		Columns: []string{},
	}

	const existsQuery = `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`
	var n int
	if err := m.db.Reader.QueryRowContext(ctx, existsQuery, table.Name).Scan(&n); err != nil {
		return model.CacheStatus{}, fmt.Errorf("check table %q: %w", table.Name, err)
	}
	if n == 0 {
		return status, nil
	}
	status.Exists = true

	const columnsQuery = `SELECT name FROM pragma_table_info(?) ORDER BY cid`
	rows, err := m.db.Reader.QueryContext(ctx, columnsQuery, table.Name)
	if err != nil {
		return model.CacheStatus{}, fmt.Errorf("list columns of %q: %w", table.Name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return model.CacheStatus{}, fmt.Errorf("scan column of %q: %w", table.Name, err)
		}
		status.Columns = append(status.Columns, name)
	}
	if err := rows.Err(); err != nil {
		return model.CacheStatus{}, fmt.Errorf("iterate columns of %q: %w", table.Name, err)
	}

	countQuery := "SELECT COUNT(*) FROM " + model.QuoteIdent(table.Name)
	if err := m.db.Reader.QueryRowContext(ctx, countQuery).Scan(&status.Rows); err != nil {
		return model.CacheStatus{}, fmt.Errorf("count rows of %q: %w", table.Name, err)
	}

	return status, nil
}
