package migrations

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRow struct{ applied bool }

func (r fakeRow) Scan(dest ...any) error {
	*(dest[0].(*bool)) = r.applied
	return nil
}

// fakeMigratorDB records every statement in order, tagging the ones that run
// inside a transaction. Applied versions only become visible on commit.
type fakeMigratorDB struct {
	events  []string
	applied map[string]bool
}

func (f *fakeMigratorDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.events = append(f.events, "pool:"+statementHead(sql))
	return pgconn.CommandTag{}, nil
}

func (f *fakeMigratorDB) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	return fakeRow{applied: f.applied[args[0].(string)]}
}

func (f *fakeMigratorDB) Begin(_ context.Context) (pgx.Tx, error) {
	return &fakeMigrationTx{db: f}, nil
}

type fakeMigrationTx struct {
	pgx.Tx
	db      *fakeMigratorDB
	version string
}

func (t *fakeMigrationTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.db.events = append(t.db.events, "tx:"+statementHead(sql))
	if strings.HasPrefix(strings.TrimSpace(sql), "INSERT INTO schema_migrations") {
		t.version = args[0].(string)
	}
	return pgconn.CommandTag{}, nil
}

func (t *fakeMigrationTx) Commit(_ context.Context) error {
	t.db.events = append(t.db.events, "commit")
	if t.version != "" {
		t.db.applied[t.version] = true
	}
	return nil
}

func (t *fakeMigrationTx) Rollback(_ context.Context) error {
	t.db.events = append(t.db.events, "rollback")
	return nil
}

func statementHead(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) > 3 {
		fields = fields[:3]
	}
	return strings.Join(fields, " ")
}

func writeMigration(t *testing.T, dir, name, sql string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(sql), 0o644))
	return path
}

func TestMigrator_VersionRecordedBeforeCommit(t *testing.T) {
	path := writeMigration(t, t.TempDir(), "001_init.sql",
		"CREATE TABLE things (id BIGSERIAL PRIMARY KEY);")
	db := &fakeMigratorDB{applied: map[string]bool{}}

	require.NoError(t, NewMigrator(db).MigrateFromFile(context.Background(), path))

	// The migration and its tracking row commit atomically.
	assert.Equal(t, []string{
		"pool:CREATE TABLE IF",
		"tx:CREATE TABLE things",
		"tx:INSERT INTO schema_migrations",
		"commit",
	}, db.events)
	assert.True(t, db.applied["001"])
}

func TestMigrator_SkipsAppliedVersion(t *testing.T) {
	path := writeMigration(t, t.TempDir(), "001_init.sql",
		"CREATE TABLE things (id BIGSERIAL PRIMARY KEY);")
	db := &fakeMigratorDB{applied: map[string]bool{}}
	migrator := NewMigrator(db)

	require.NoError(t, migrator.MigrateFromFile(context.Background(), path))
	db.events = nil

	require.NoError(t, migrator.MigrateFromFile(context.Background(), path))
	for _, event := range db.events {
		assert.False(t, strings.HasPrefix(event, "tx:"), "unexpected transactional statement %q", event)
	}
}

func TestMigrator_MigrateDirLexicalOrder(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "002_later.sql", "ALTER TABLE things ADD COLUMN name TEXT;")
	writeMigration(t, dir, "001_init.sql", "CREATE TABLE things (id BIGSERIAL PRIMARY KEY);")
	db := &fakeMigratorDB{applied: map[string]bool{}}

	require.NoError(t, NewMigrator(db).MigrateDir(context.Background(), dir))

	var applied []string
	for _, event := range db.events {
		if strings.HasPrefix(event, "tx:CREATE") || strings.HasPrefix(event, "tx:ALTER") {
			applied = append(applied, event)
		}
	}
	assert.Equal(t, []string{"tx:CREATE TABLE things", "tx:ALTER TABLE things"}, applied)
}
