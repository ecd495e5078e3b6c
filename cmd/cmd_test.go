package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTree(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"summary", "deals", "breakdown", "distribution", "deal", "report", "check", "compare", "validate", "analysis", "mcp", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}

	sub := make(map[string]bool)
	for _, c := range analysisCmd.Commands() {
		sub[c.Name()] = true
	}
	assert.Equal(t, map[string]bool{"status": true, "export": true, "clear": true, "migrate": true}, sub)
}

func TestPersistentFlags(t *testing.T) {
	for _, name := range []string{"input", "demo", "limit", "output", "output-file", "precision", "workers", "width", "color", "sort", "search", "stage", "rep", "level", "analysis-backend", "analysis-db-connect", "log-level", "config"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "missing flag --%s", name)
	}
	assert.NotNil(t, checkCmd.Flags().Lookup("thresholds-override"))
	assert.NotNil(t, compareCmd.Flags().Lookup("base"))
	assert.NotNil(t, compareCmd.Flags().Lookup("target"))
}

func TestBreakdownArgs(t *testing.T) {
	assert.NoError(t, breakdownCmd.Args(breakdownCmd, nil))
	assert.NoError(t, breakdownCmd.Args(breakdownCmd, []string{"rep"}))
	assert.Error(t, breakdownCmd.Args(breakdownCmd, []string{"region"}))
	assert.Error(t, breakdownCmd.Args(breakdownCmd, []string{"stage", "rep"}))
	assert.Error(t, dealCmd.Args(dealCmd, nil))
}

func TestResolveAnalysisBackend(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		connStr string
		want    string
		wantErr bool
	}{
		{name: "empty means none", want: "none"},
		{name: "sqlite", backend: "SQLite", want: "sqlite"},
		{name: "postgres needs dsn", backend: "postgresql", wantErr: true},
		{name: "mysql", backend: "mysql", connStr: "u:p@tcp(localhost:3306)/sentinel", want: "mysql"},
		{name: "unknown", backend: "oracle", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv("HOME", t.TempDir())
			viper.Set("analysis-backend", tt.backend)
			viper.Set("analysis-db-connect", tt.connStr)
			t.Cleanup(func() {
				viper.Set("analysis-backend", "")
				viper.Set("analysis-db-connect", "")
			})

			backend, connStr, err := resolveAnalysisBackend()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(backend))
			assert.Equal(t, tt.connStr, connStr)
		})
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	assert.Contains(t, out.String(), "sentinel CLI")
	assert.Contains(t, out.String(), "Version: dev")
}
