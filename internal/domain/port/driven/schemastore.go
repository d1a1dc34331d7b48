package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/credcache/internal/domain/model"
)

// ErrInvalidVersion is returned when a schema version below 1 is requested.
var ErrInvalidVersion = errors.New("schema version must be >= 1")

// ErrSchemaBusy is returned when another schema operation is already running
// against the same cache file.
var ErrSchemaBusy = errors.New("schema operation already in progress")

// SchemaStore defines the driven port for the host runtime that tracks a
// cache file's schema version and drives its SchemaMigrator.
type SchemaStore interface {
	// Ensure brings the cache to the given schema version, invoking the
	// matching SchemaMigrator callback, and reports which transition ran.
	// Returns ErrInvalidVersion for version < 1 and ErrSchemaBusy when
	// another schema operation on the same cache file is running in this
	// process. A cancelled ctx returns before anything is written.
	Ensure(ctx context.Context, version int) (model.Transition, error)

	// Status returns a snapshot of the stored version and of the given table.
	Status(ctx context.Context, table model.TableSchema) (model.CacheStatus, error)
}
