package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/credcache/internal/domain/model"
)

// setupTestDB creates a named shared in-memory SQLite database for testing.
// Writer and reader connections share the same in-memory database via cache=shared.
// A unique name derived from t.Name() ensures isolation between parallel tests.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// Percent-encode the test name so it's a safe SQLite URI filename component
	// and cannot be misinterpreted as query parameters in the "file:%s?..." DSN.
	safeName := url.PathEscape(t.Name())
	// WAL mode is not applicable to in-memory databases; omit journal_mode pragma.
	dsn := fmt.Sprintf(
		"file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)",
		safeName,
	)

	writer, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("create test db writer: %v", err)
	}
	writer.SetMaxOpenConns(1)
	if err := writer.PingContext(context.Background()); err != nil {
		_ = writer.Close()
		t.Fatalf("ping test db writer: %v", err)
	}

	reader, err := sql.Open("sqlite", dsn)
	if err != nil {
		_ = writer.Close()
		t.Fatalf("create test db reader: %v", err)
	}
	reader.SetMaxOpenConns(4)
	if err := reader.PingContext(context.Background()); err != nil {
		_ = reader.Close()
		_ = writer.Close()
		t.Fatalf("ping test db reader: %v", err)
	}

	db := &DB{Writer: writer, Reader: reader, path: dsn}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// seedCredentials inserts n rows into the credential table.
func seedCredentials(t *testing.T, db *DB, n int) {
	t.Helper()

	const query = `INSERT INTO credential (id, title) VALUES (?, ?)`
	for i := 1; i <= n; i++ {
		title := fmt.Sprintf("credential-%d", i)
		cred := model.Credential{ID: int64(i), Title: &title}
		if i%2 == 0 {
			cred.Title = nil
		}
		_, err := db.Writer.ExecContext(context.Background(), query, cred.ID, cred.Title)
		require.NoError(t, err)
	}
}

// tableExists reports whether the named table is present.
func tableExists(t *testing.T, db *DB, name string) bool {
	t.Helper()

	var n int
	err := db.Writer.QueryRowContext(context.Background(),
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

// credentialColumns returns the credential table's column names in order.
func credentialColumns(t *testing.T, db *DB) []string {
	t.Helper()

	rows, err := db.Writer.QueryContext(context.Background(), `SELECT name FROM pragma_table_info('credential') ORDER BY cid`)
	require.NoError(t, err)
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		cols = append(cols, name)
	}
	require.NoError(t, rows.Err())
	return cols
}

// credentialRows returns the number of rows in the credential table.
func credentialRows(t *testing.T, db *DB) int {
	t.Helper()

	var n int
	err := db.Writer.QueryRowContext(context.Background(), `SELECT COUNT(*) FROM credential`).Scan(&n)
	require.NoError(t, err)
	return n
}

// userVersion returns the file's PRAGMA user_version.
func userVersion(t *testing.T, db *DB) int {
	t.Helper()

	var v int
	err := db.Writer.QueryRowContext(context.Background(), `PRAGMA user_version`).Scan(&v)
	require.NoError(t, err)
	return v
}

// tableNames returns the names of all tables in the file, sorted.
func tableNames(t *testing.T, db *DB) []string {
	t.Helper()

	rows, err := db.Writer.QueryContext(context.Background(),
		`SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`)
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	return names
}
