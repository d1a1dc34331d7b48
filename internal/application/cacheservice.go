package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/credcache/internal/domain/model"
	"github.com/ericfisherdev/credcache/internal/domain/port/driven"
)

// CacheService opens a local cache at a fixed schema version and reports its
// state. It depends only on port interfaces.
type CacheService struct {
	store   driven.SchemaStore
	version int
	table   model.TableSchema
	logger  *slog.Logger
}

// NewCacheService creates a CacheService that keeps table at the given schema
// version. A nil logger falls back to slog.Default().
func NewCacheService(store driven.SchemaStore, version int, table model.TableSchema, logger *slog.Logger) *CacheService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CacheService{
		store:   store,
		version: version,
		table:   table,
		logger:  logger,
	}
}

// Open brings the cache to the configured schema version. Any version change
// discards the cached rows; callers must repopulate from the source of truth.
func (s *CacheService) Open(ctx context.Context) (model.Transition, error) {
	transition, err := s.store.Ensure(ctx, s.version)
	if err != nil {
		return model.TransitionNone, fmt.Errorf("open %s cache: %w", s.table.Name, err)
	}

	switch transition {
	case model.TransitionNone:
		s.logger.Debug("cache schema current", "table", s.table.Name, "version", s.version)
	case model.TransitionCreate:
		s.logger.Info("cache created", "table", s.table.Name, "version", s.version)
	default:
		s.logger.Warn("cache reset, cached rows discarded",
			"table", s.table.Name,
			"transition", string(transition),
			"version", s.version,
		)
	}
	return transition, nil
}

// Status returns a snapshot of the cache's schema version and table.
func (s *CacheService) Status(ctx context.Context) (model.CacheStatus, error) {
	status, err := s.store.Status(ctx, s.table)
	if err != nil {
		return model.CacheStatus{}, fmt.Errorf("status of %s cache: %w", s.table.Name, err)
	}
	return status, nil
}
