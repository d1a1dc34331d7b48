package driven

import (
	"context"
	"database/sql"
)

// Execer is a database handle capable of executing raw statements.
// Both *sql.DB and *sql.Tx satisfy it.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SchemaMigrator defines the lifecycle callbacks a cache schema implements.
// The host runtime invokes exactly one of them when a cache file is opened
// and its stored schema version is absent or differs from the expected one.
// Callbacks are invoked one at a time and must not retain the Execer.
type SchemaMigrator interface {
	// OnCreate creates the schema in a cache file that has none.
	OnCreate(ctx context.Context, db Execer) error

	// OnUpgrade migrates the schema from oldVersion to a higher newVersion.
	OnUpgrade(ctx context.Context, db Execer, oldVersion, newVersion int) error

	// OnDowngrade migrates the schema from oldVersion to a lower newVersion.
	OnDowngrade(ctx context.Context, db Execer, oldVersion, newVersion int) error
}
