package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	sqliteadapter "github.com/ericfisherdev/credcache/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/credcache/internal/application"
	"github.com/ericfisherdev/credcache/internal/config"
	"github.com/ericfisherdev/credcache/internal/domain/model"
)

// newRootCmd builds the credcache command tree. Command output goes to out,
// logs go to logOut.
func newRootCmd(out, logOut io.Writer) *cobra.Command {
	var dbPath string

	root := &cobra.Command{
		Use:           "credcache",
		Short:         "Manage the local credential cache",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dbPath, "db", "", "cache file path (overrides CREDCACHE_DB_PATH)")

	openCmd := &cobra.Command{
		Use:   "open",
		Short: "Create the cache, or reset it if its schema version changed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCache(cmd.Context(), dbPath, false, logOut, func(ctx context.Context, svc *application.CacheService, path string) error {
				transition, err := svc.Open(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: %s (schema version %d)\n", path, transition, config.DatabaseVersion)
				return nil
			})
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the cache's schema version, columns and row count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := withCache(cmd.Context(), dbPath, true, logOut, func(ctx context.Context, svc *application.CacheService, _ string) error {
				status, err := svc.Status(ctx)
				if err != nil {
					return err
				}
				printStatus(out, status)
				return nil
			})

			var missing *missingCacheError
			if errors.As(err, &missing) {
				printStatus(out, model.CacheStatus{
					Path:    missing.path,
					Version: -1,
					Table:   model.CredentialTable.Name,
				})
				return nil
			}
			return err
		},
	}

	root.AddCommand(openCmd, statusCmd)
	return root
}

// missingCacheError reports that an existing cache file was required but none was found.
type missingCacheError struct {
	path string
}

func (e *missingCacheError) Error() string {
	return fmt.Sprintf("no cache file at %s", e.path)
}

// withCache loads configuration, opens the cache file and runs fn with a
// CacheService bound to the credential table. With mustExist set, a missing
// file returns *missingCacheError instead of being created.
func withCache(
	ctx context.Context,
	dbPath string,
	mustExist bool,
	logOut io.Writer,
	fn func(ctx context.Context, svc *application.CacheService, path string) error,
) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}

	if mustExist {
		if _, err := os.Stat(cfg.DBPath); errors.Is(err, fs.ErrNotExist) {
			return &missingCacheError{path: cfg.DBPath}
		}
	}

	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()
	logger.Debug("database opened", "path", cfg.DBPath)

	store, err := sqliteadapter.NewSchemaManager(db, sqliteadapter.NewCredentialSchema(), logger)
	if err != nil {
		return err
	}

	svc := application.NewCacheService(store, config.DatabaseVersion, model.CredentialTable, logger)
	return fn(ctx, svc, cfg.DBPath)
}

func printStatus(out io.Writer, s model.CacheStatus) {
	version := "none"
	if s.Version >= 0 {
		version = strconv.Itoa(s.Version)
	}
	if s.Dirty {
		version += " (dirty)"
	}

	fmt.Fprintf(out, "path:    %s\n", s.Path)
	fmt.Fprintf(out, "version: %s\n", version)
	if !s.Exists {
		fmt.Fprintf(out, "table:   %s (absent)\n", s.Table)
		return
	}
	fmt.Fprintf(out, "table:   %s\n", s.Table)
	fmt.Fprintf(out, "columns: %s\n", strings.Join(s.Columns, ", "))
	fmt.Fprintf(out, "rows:    %d\n", s.Rows)
}
