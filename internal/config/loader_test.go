package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("file values merge over defaults", func(t *testing.T) {
		path := writeConfigFile(t, `
mode = "server"
log_level = "debug"

[blizzard]
client_id = "abc"
client_secret = "def"

[database]
host = "db.internal"
database = "broker"

[server]
port = 9090
cors_origins = ["https://dash.example.com"]
`)

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "server", cfg.Mode)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "abc", cfg.Blizzard.ClientID)
		assert.Equal(t, "db.internal", cfg.Database.Host)
		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, []string{"https://dash.example.com"}, cfg.Server.CORSOrigins)

		// Untouched fields keep their defaults.
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
		assert.Equal(t, 60, cfg.Scan.IntervalMinutes)
	})

	t.Run("environment overrides win over the file", func(t *testing.T) {
		path := writeConfigFile(t, `
[blizzard]
client_id = "from-file"
client_secret = "from-file"
`)

		t.Setenv("REALMBROKER_BLIZZARD_CLIENT_SECRET", "from-env")
		t.Setenv("REALMBROKER_SERVER_PORT", "7070")
		t.Setenv("REALMBROKER_SERVER_CORS_ORIGINS", "https://a.example.com, https://b.example.com")

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "from-file", cfg.Blizzard.ClientID)
		assert.Equal(t, "from-env", cfg.Blizzard.ClientSecret)
		assert.Equal(t, 7070, cfg.Server.Port)
		assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.CORSOrigins)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg := Defaults()
		cfg.Blizzard.ClientID = "id"
		cfg.Blizzard.ClientSecret = "secret"
		return cfg
	}

	t.Run("defaults with credentials pass", func(t *testing.T) {
		cfg := valid()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("unknown mode is rejected", func(t *testing.T) {
		cfg := valid()
		cfg.Mode = "turbo"
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing credentials are rejected", func(t *testing.T) {
		cfg := valid()
		cfg.Blizzard.ClientSecret = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("dsn satisfies the database requirement", func(t *testing.T) {
		cfg := valid()
		cfg.Database.Host = ""
		cfg.Database.Database = ""
		cfg.Database.DSN = "postgres://u:p@h:5432/db"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("s3 needs bucket and region when enabled", func(t *testing.T) {
		cfg := valid()
		cfg.S3.Enabled = true
		assert.Error(t, cfg.Validate())

		cfg.S3.Bucket = "snapshots"
		cfg.S3.Region = "us-east-1"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("scan interval must be positive", func(t *testing.T) {
		cfg := valid()
		cfg.Scan.IntervalMinutes = 0
		assert.Error(t, cfg.Validate())
	})
}
