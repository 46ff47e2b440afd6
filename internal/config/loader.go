package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies REALMBROKER_* environment variable overrides,
// and returns the final Config. The returned Config has NOT been validated;
// the caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known REALMBROKER_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Blizzard ──
	setStr(&cfg.Blizzard.ClientID, "REALMBROKER_BLIZZARD_CLIENT_ID")
	setStr(&cfg.Blizzard.ClientSecret, "REALMBROKER_BLIZZARD_CLIENT_SECRET")

	// ── Database ──
	setStr(&cfg.Database.DSN, "REALMBROKER_DATABASE_DSN")
	setStr(&cfg.Database.Host, "REALMBROKER_DATABASE_HOST")
	setInt(&cfg.Database.Port, "REALMBROKER_DATABASE_PORT")
	setStr(&cfg.Database.Database, "REALMBROKER_DATABASE_NAME")
	setStr(&cfg.Database.User, "REALMBROKER_DATABASE_USER")
	setStr(&cfg.Database.Password, "REALMBROKER_DATABASE_PASSWORD")
	setStr(&cfg.Database.SSLMode, "REALMBROKER_DATABASE_SSLMODE")
	setInt(&cfg.Database.PoolMaxConns, "REALMBROKER_DATABASE_POOL_MAX_CONNS")
	setInt(&cfg.Database.PoolMinConns, "REALMBROKER_DATABASE_POOL_MIN_CONNS")
	setBool(&cfg.Database.RunMigrations, "REALMBROKER_DATABASE_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "REALMBROKER_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "REALMBROKER_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "REALMBROKER_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "REALMBROKER_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "REALMBROKER_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "REALMBROKER_REDIS_TLS_ENABLED")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "REALMBROKER_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "REALMBROKER_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "REALMBROKER_S3_REGION")
	setStr(&cfg.S3.Bucket, "REALMBROKER_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "REALMBROKER_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "REALMBROKER_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "REALMBROKER_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "REALMBROKER_S3_FORCE_PATH_STYLE")

	// ── Scan ──
	setInt(&cfg.Scan.IntervalMinutes, "REALMBROKER_SCAN_INTERVAL_MINUTES")
	setInt(&cfg.Scan.LockTTLMinutes, "REALMBROKER_SCAN_LOCK_TTL_MINUTES")

	// ── Server ──
	setInt(&cfg.Server.Port, "REALMBROKER_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "REALMBROKER_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "REALMBROKER_SERVER_API_KEY")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "REALMBROKER_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "REALMBROKER_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "REALMBROKER_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "REALMBROKER_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "REALMBROKER_MODE")
	setStr(&cfg.LogLevel, "REALMBROKER_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
