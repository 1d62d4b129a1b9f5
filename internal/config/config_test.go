package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(nil)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8050", cfg.Addr())
	assert.False(t, cfg.Debug)
	assert.False(t, cfg.OtelEnabled)
	assert.Equal(t, DriverCSV, cfg.Dataset.Driver)
	assert.Equal(t, ",", cfg.Dataset.Delimiter)
}

func TestLoadFromFlagsOverrideEnv(t *testing.T) {
	t.Setenv("PAYDASH_PORT", "9000")
	t.Setenv("PAYDASH_DATASET_PATH", "/srv/payroll.csv")

	cfg, err := LoadFrom([]string{"--host", "0.0.0.0", "--port", "9100", "--debug"})
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9100", cfg.Addr())
	assert.True(t, cfg.Debug)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/srv/payroll.csv", cfg.Dataset.Path)
}

func TestLoadFromEnvOnly(t *testing.T) {
	t.Setenv("PAYDASH_PORT", "9000")

	cfg, err := LoadFrom(nil)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
}

func TestLoadFromRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{name: "bad_port", args: []string{"--port", "70000"}},
		{name: "unknown_driver", env: map[string]string{"PAYDASH_DATASET_DRIVER": "parquet"}},
		{name: "long_delimiter", env: map[string]string{"PAYDASH_DATASET_DELIMITER": ";;"}},
		{name: "unknown_flag", args: []string{"--metric", "Total Pay"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := LoadFrom(tc.args)
			assert.Error(t, err)
		})
	}
}

func TestDatasetDB(t *testing.T) {
	d := DatasetConfig{Driver: DriverSQLite, Path: "payroll.db", DBHost: "db"}
	got := d.DB()
	assert.Equal(t, "sqlite", got.Type)
	assert.Equal(t, "payroll.db", got.Path)
	assert.Equal(t, "db", got.Host)
}

func TestDashboardConfigDefaultsWithoutFile(t *testing.T) {
	holder, err := newDashboardConfigHolder(zap.NewNop(), t.TempDir())
	require.NoError(t, err)

	cfg := holder.Get()
	assert.Equal(t, DefaultDashboardConfig(), cfg)
}

func TestDashboardConfigPartialFile(t *testing.T) {
	dir := t.TempDir()
	content := "dashboard:\n  tableMaxRows: 5\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dashboard.yml"), []byte(content), 0o600))

	holder, err := newDashboardConfigHolder(zap.NewNop(), dir)
	require.NoError(t, err)

	cfg := holder.Get()
	assert.Equal(t, 5, cfg.TableMaxRows)
	assert.Equal(t, "Total Pay", cfg.DefaultMetric)
	assert.Equal(t, []string{"POLICE DEPARTMENT", "FIRE DEPARTMENT"}, cfg.DefaultEntities)
}

func TestDashboardConfigInvalidFile(t *testing.T) {
	dir := t.TempDir()
	content := "dashboard:\n  tableMaxRows: 0\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dashboard.yml"), []byte(content), 0o600))

	_, err := newDashboardConfigHolder(zap.NewNop(), dir)
	assert.Error(t, err)
}

func TestDashboardConfigGetReturnsCopy(t *testing.T) {
	holder := NewStaticDashboardConfigHolder(DefaultDashboardConfig())
	cfg := holder.Get()
	cfg.DefaultEntities[0] = "SANITATION"

	assert.Equal(t, "POLICE DEPARTMENT", holder.Get().DefaultEntities[0])
}
