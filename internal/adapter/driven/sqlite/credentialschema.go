package sqlite

import (
	"context"

	"github.com/ericfisherdev/credcache/internal/domain/model"
	"github.com/ericfisherdev/credcache/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SchemaMigrator = CredentialSchema{}

// CredentialSchema manages the credential cache table. The table only caches
// data sourced elsewhere, so any version change, upgrade or downgrade, discards
// all rows and recreates the table in its current shape.
//
// Statement errors are returned unmodified; there is no retry or local recovery.
type CredentialSchema struct{}

// NewCredentialSchema creates a CredentialSchema.
func NewCredentialSchema() CredentialSchema {
	return CredentialSchema{}
}

// OnCreate creates the credential table. The host runtime only calls it when
// the table does not exist yet.
func (CredentialSchema) OnCreate(ctx context.Context, db driven.Execer) error {
	_, err := db.ExecContext(ctx, model.CredentialTable.CreateStatement())
	return err
}

// OnUpgrade drops the credential table, if present, and recreates it.
// The versions are not inspected: every mismatch takes the same path.
func (s CredentialSchema) OnUpgrade(ctx context.Context, db driven.Execer, _, _ int) error {
	if _, err := db.ExecContext(ctx, model.CredentialTable.DropStatement()); err != nil {
		return err
	}
	return s.OnCreate(ctx, db)
}

// OnDowngrade behaves exactly like OnUpgrade.
func (s CredentialSchema) OnDowngrade(ctx context.Context, db driven.Execer, oldVersion, newVersion int) error {
	return s.OnUpgrade(ctx, db, oldVersion, newVersion)
}
