package iocache

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/sentinelhq/sentinel/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateAnalysis_NoneBackend(t *testing.T) {
	var out bytes.Buffer
	err := MigrateAnalysis(&out, schema.NoneBackend, "", -1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported for the none backend")
	assert.Empty(t, out.String())
}

func TestMigrateAnalysis_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	steps := []struct {
		target int
		want   string
	}{
		{target: -1, want: "Successfully migrated from version 0 to version 1"},
		{target: -1, want: "No migration needed. Database is already at the latest version."},
		{target: 1, want: "No migration needed. Database is already at version 1"},
		{target: 0, want: "Successfully rolled back from version 1 to version 0"},
		{target: 1, want: "Successfully migrated from version 0 to version 1"},
	}
	for _, step := range steps {
		var out bytes.Buffer
		require.NoError(t, MigrateAnalysis(&out, schema.SQLiteBackend, dbPath, step.target))
		assert.Contains(t, out.String(), step.want)
	}
	assert.FileExists(t, dbPath)
}

func TestMigrateAnalysis_AfterStoreCreatedTables(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	store, err := NewAnalysisStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	var out bytes.Buffer
	require.NoError(t, MigrateAnalysis(&out, schema.SQLiteBackend, dbPath, -1))
	assert.Contains(t, out.String(), "to version 1")
}

func TestMigrateAnalysis_SQLiteInMemory(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, MigrateAnalysis(&out, schema.SQLiteBackend, ":memory:", -1))
}

func TestInitialSchema(t *testing.T) {
	for _, backend := range []schema.DatabaseBackend{schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend} {
		ddl, err := initialSchema(backend)
		require.NoError(t, err, backend)
		assert.Contains(t, ddl, analysisRunsTable)
		assert.Contains(t, ddl, dealSnapshotsTable)
	}

	_, err := initialSchema(schema.NoneBackend)
	assert.Error(t, err)
}
