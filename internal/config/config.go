package config

import (
	"slices"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Telegram TelegramConfig `yaml:"telegram"`
	Database DatabaseConfig `yaml:"database"`
	Fallback FallbackConfig `yaml:"fallback"`
	Sync     SyncConfig     `yaml:"sync"`
	Wizard   WizardConfig   `yaml:"wizard"`
	Geo      GeoConfig      `yaml:"geo"`
	Media    MediaConfig    `yaml:"media"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds health HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8081"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// TelegramConfig holds chat transport settings. AdminIDs is the allowlist
// of chat ids that get the admin menu.
type TelegramConfig struct {
	Token       string  `yaml:"token"        env:"TELEGRAM_TOKEN"`
	AdminIDs    []int64 `yaml:"admin_ids"    env:"TELEGRAM_ADMIN_IDS"    env-separator:","`
	PollTimeout int     `yaml:"poll_timeout" env:"TELEGRAM_POLL_TIMEOUT" env-default:"60"`
	Debug       bool    `yaml:"debug"        env:"TELEGRAM_DEBUG"        env-default:"false"`
}

// DatabaseConfig holds PostgreSQL connection settings. An empty DSN runs
// the bot on the fallback store alone.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	OpTimeout       time.Duration `yaml:"op_timeout"         env:"DATABASE_OP_TIMEOUT"         env-default:"5s"`
}

// FallbackConfig holds the local file store location.
type FallbackConfig struct {
	Dir string `yaml:"dir" env:"FALLBACK_DIR" env-default:"data"`
}

// SyncConfig holds reconciliation settings.
type SyncConfig struct {
	Interval        time.Duration `yaml:"interval"         env:"SYNC_INTERVAL"         env-default:"5m"`
	Debounce        time.Duration `yaml:"debounce"         env:"SYNC_DEBOUNCE"         env-default:"1s"`
	StartupPass     bool          `yaml:"startup_pass"     env:"SYNC_STARTUP_PASS"     env-default:"true"`
	Watch           bool          `yaml:"watch"            env:"SYNC_WATCH"            env-default:"true"`
	BackfillTimeout time.Duration `yaml:"backfill_timeout" env:"SYNC_BACKFILL_TIMEOUT" env-default:"10s"`
}

// WizardConfig holds conversation settings.
type WizardConfig struct {
	StateTTL      time.Duration `yaml:"state_ttl"      env:"WIZARD_STATE_TTL"      env-default:"30m"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"WIZARD_SWEEP_INTERVAL" env-default:"1m"`
	WorkerIdle    time.Duration `yaml:"worker_idle"    env:"WIZARD_WORKER_IDLE"    env-default:"2m"`
	QueueSize     int           `yaml:"queue_size"     env:"WIZARD_QUEUE_SIZE"     env-default:"16"`
}

// GeoConfig holds map link resolution settings.
type GeoConfig struct {
	ResolveTimeout time.Duration `yaml:"resolve_timeout" env:"GEO_RESOLVE_TIMEOUT" env-default:"5s"`
	MaxRedirects   int           `yaml:"max_redirects"   env:"GEO_MAX_REDIRECTS"   env-default:"5"`
}

// MediaConfig holds photo storage settings. Photos are stored only when
// PublicURL is set; otherwise only the telegram file id is kept.
type MediaConfig struct {
	Dir          string        `yaml:"dir"           env:"MEDIA_DIR"           env-default:"data/media"`
	PublicURL    string        `yaml:"public_url"    env:"MEDIA_PUBLIC_URL"`
	MaxBytes     int64         `yaml:"max_bytes"     env:"MEDIA_MAX_BYTES"     env-default:"10485760"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" env:"MEDIA_FETCH_TIMEOUT" env-default:"20s"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// IsAdmin reports whether the chat id is on the admin allowlist.
func (c TelegramConfig) IsAdmin(chatID int64) bool {
	return slices.Contains(c.AdminIDs, chatID)
}

// PrimaryEnabled reports whether an authoritative store is configured.
func (c DatabaseConfig) PrimaryEnabled() bool {
	return c.DSN != ""
}

// Enabled reports whether photos are copied into media storage.
func (c MediaConfig) Enabled() bool {
	return c.PublicURL != ""
}
