package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fiber-ring-topology-ui/internal/dataset"
	"fiber-ring-topology-ui/internal/topology"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("APP_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.env"))

	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "file", cfg.DataSource)
	assert.Equal(t, "zigzag", cfg.LayoutMode)
	assert.Equal(t, 8, cfg.LayoutRowWidth)
	assert.Equal(t, 180.0, cfg.LayoutXSpacing)
	assert.Equal(t, 150.0, cfg.LayoutYSpacing)
	assert.Equal(t, "first-appearance", cfg.LookupMode)
	assert.Equal(t, int64(20<<20), cfg.UploadMaxBytes)
	assert.Equal(t, 5*time.Minute, cfg.DataReloadEach)
	require.NoError(t, cfg.Validate())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("APP_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("APP_DATA_SOURCE", "MySQL")
	t.Setenv("APP_DB_TABLE", "fiber_links")
	t.Setenv("APP_LAYOUT_ROW_WIDTH", "6")
	t.Setenv("APP_LAYOUT_X_SPACING", "200.5")
	t.Setenv("APP_DB_PORT", "not-a-number")

	cfg := FromEnv()

	assert.Equal(t, "mysql", cfg.DataSource)
	assert.Equal(t, "fiber_links", cfg.DBTable)
	assert.Equal(t, 6, cfg.LayoutRowWidth)
	assert.Equal(t, 200.5, cfg.LayoutXSpacing)
	assert.Equal(t, 3306, cfg.DBPort, "unparsable values fall back to the default")
	require.NoError(t, cfg.Validate())
}

func TestFromEnv_ModeAliases(t *testing.T) {
	t.Setenv("APP_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("APP_LAYOUT_MODE", "Zig-Zag")
	t.Setenv("APP_LOOKUP_MODE", "source_first")

	cfg := FromEnv()

	assert.Equal(t, "zigzag", cfg.LayoutMode)
	assert.Equal(t, "source-first", cfg.LookupMode)
	require.NoError(t, cfg.Validate())

	t.Setenv("APP_LAYOUT_MODE", "grid")
	t.Setenv("APP_LOOKUP_MODE", "spiral")

	cfg = FromEnv()

	assert.Equal(t, "plain", cfg.LayoutMode)
	assert.Equal(t, "spiral", cfg.LookupMode, "unknown values are kept for Validate")
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LookupMode")
}

func TestFromEnv_EnvFileDoesNotOverrideEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.env")
	require.NoError(t, os.WriteFile(path, []byte("APP_LISTEN_ADDR=:9999\nAPP_LOG_LEVEL=debug\n# comment\nexport APP_LAYOUT_MODE=plain\n"), 0o600))

	t.Setenv("APP_CONFIG_FILE", path)
	t.Setenv("APP_LISTEN_ADDR", ":7000")
	// Registered so the variables set from the file are restored afterwards.
	t.Setenv("APP_LOG_LEVEL", "")
	t.Setenv("APP_LAYOUT_MODE", "")

	cfg := FromEnv()

	assert.Equal(t, ":7000", cfg.ListenAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "plain", cfg.LayoutMode)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	t.Setenv("APP_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.env"))
	base := FromEnv()

	cases := map[string]func(*Config){
		"LayoutMode":     func(c *Config) { c.LayoutMode = "spiral" },
		"LookupMode":     func(c *Config) { c.LookupMode = "random" },
		"LayoutRowWidth": func(c *Config) { c.LayoutRowWidth = 0 },
		"DataSource":     func(c *Config) { c.DataSource = "s3" },
		"DBTable":        func(c *Config) { c.DataSource = "mysql"; c.DBTable = "links; DROP TABLE x" },
		"SnapshotSQLitePath": func(c *Config) {
			c.DataSource = "snapshot"
			c.SnapshotSQLitePath = ""
		},
	}
	for field, mutate := range cases {
		t.Run(field, func(t *testing.T) {
			cfg := base
			mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), field)
		})
	}
}

func TestMySQLDSN(t *testing.T) {
	cfg := Config{
		DBUser:         "u",
		DBPassword:     "p",
		DBHost:         "db",
		DBPort:         3307,
		DBName:         "fiber",
		DBConnTimeout:  2 * time.Second,
		DBQueryTimeout: 5 * time.Second,
	}

	dsn := cfg.MySQLDSN()

	assert.True(t, strings.HasPrefix(dsn, "u:p@tcp(db:3307)/fiber?"))
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "readTimeout=5s")
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	body := `
columns:
  destination_id: ["Far End"]
styles:
  DARK_FIBER:
    color: "#101010"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	o, err := LoadOverrides(path)
	require.NoError(t, err)

	schema := o.Schema()
	assert.Equal(t, "Far End", schema[dataset.FieldDestinationID][0])
	assert.Contains(t, schema[dataset.FieldDestinationID], "New Destenation")

	styles := o.StyleMap()
	assert.Equal(t, "#101010", styles[topology.KindDarkFiber].Color)
	assert.Equal(t, "square", styles[topology.KindDarkFiber].Shape)
}

func TestLoadOverrides_Empty(t *testing.T) {
	o, err := LoadOverrides("")
	require.NoError(t, err)
	assert.Equal(t, topology.DefaultStyles(), o.StyleMap())
}

func TestLoadOverrides_UnknownKeys(t *testing.T) {
	dir := t.TempDir()

	badField := filepath.Join(dir, "field.yaml")
	require.NoError(t, os.WriteFile(badField, []byte("columns:\n  colour: [x]\n"), 0o600))
	_, err := LoadOverrides(badField)
	assert.ErrorContains(t, err, "unknown column field")

	badKind := filepath.Join(dir, "kind.yaml")
	require.NoError(t, os.WriteFile(badKind, []byte("styles:\n  P9:\n    color: red\n"), 0o600))
	_, err = LoadOverrides(badKind)
	assert.ErrorContains(t, err, "unknown node kind")
}
