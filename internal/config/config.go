// Package config loads the server's runtime configuration, grounded on
// the teacher's internal/config/config.go: a single struct loaded by
// rakunlabs/chu with an environment-prefixed overlay and redacted
// secrets in logs.
package config

import (
	"context"
	"fmt"

	"github.com/rakunlabs/chu"
	"github.com/rakunlabs/chu/loader/external/loaderconsul"
	"github.com/rakunlabs/chu/loader/external/loadervault"
	"github.com/rakunlabs/logi"
)

// envPrefix is the environment variable prefix chu overlays config
// fields with, e.g. ALGOFAB_SERVER_ADDR.
const envPrefix = "ALGOFAB_"

// Server holds HTTP listener settings.
type Server struct {
	Addr     string `cfg:"addr" default:":8080"`
	BasePath string `cfg:"base_path" default:""`
}

// Lane is one resource-partitioned queue lane's static configuration.
type Lane struct {
	Name      string             `cfg:"name"`
	Resources map[string]float64 `cfg:"resources"`
}

// Store selects the persistence backend shared by the result cache and
// the authenticator, mirroring the teacher's Store/StorePostgres/
// StoreSQLite split.
type Store struct {
	Postgres *StorePostgres `cfg:"postgres"`
	SQLite   *StoreSQLite   `cfg:"sqlite"`
}

// StorePostgres configures a Postgres-backed cache/auth store via pgx.
type StorePostgres struct {
	DSN    string `cfg:"dsn" log:"-"`
	Schema string `cfg:"schema" default:"public"`
}

// StoreSQLite configures a SQLite-backed cache/auth store via
// modernc.org/sqlite.
type StoreSQLite struct {
	Path string `cfg:"path" default:"algofab.db"`
}

// Auth configures the authenticator backend: the same Store as the cache
// when a Postgres or SQLite store is configured (File is then not used),
// otherwise a JSON credential file when File is set, otherwise an
// in-memory store with no persistence across restarts.
type Auth struct {
	File string `cfg:"file"`
}

// Cache configures the result cache's hash algorithm. DisabledFor is
// not read by the server; caching is skipped only for algorithms whose
// own CacheDisable flag is set.
type Cache struct {
	HashAlgorithm string   `cfg:"hash_algorithm" default:"md5"`
	DisabledFor   []string `cfg:"disabled_for"`
}

// Notify configures the optional SMTP completion notifier.
type Notify struct {
	SMTPHost string `cfg:"smtp_host"`
	SMTPPort int    `cfg:"smtp_port" default:"587"`
	From     string `cfg:"from"`
	Username string `cfg:"username"`
	Password string `cfg:"password" log:"-"`
}

// Automation holds the switch for the cron-triggered resubmission loop.
// cmd/algofab does not read Enabled and does not start an
// automation.Scheduler.
type Automation struct {
	Enabled bool `cfg:"enabled" default:"false"`
}

// Config is the full server configuration. AdminToken gates the
// /admin/* endpoints, mirroring the teacher's Authorization: Bearer
// check in adminAuthMiddleware.
type Config struct {
	LogLevel   string     `cfg:"log_level" default:"info"`
	Server     Server     `cfg:"server"`
	Lanes      []Lane     `cfg:"lanes"`
	Store      Store      `cfg:"store"`
	Auth       Auth       `cfg:"auth"`
	Cache      Cache      `cfg:"cache"`
	Notify     Notify     `cfg:"notify"`
	Automation Automation `cfg:"automation"`
	AdminToken string     `cfg:"admin_token" log:"-"`

	DescriptorDir string `cfg:"descriptor_dir"`
}

// Load reads config from path (or the ALGOFAB_CONFIG-resolved default
// when path is empty), overlaying ALGOFAB_-prefixed environment
// variables and optional consul/vault loaders, mirroring chu.Load's use
// in the teacher's Load function.
func Load(ctx context.Context, path string) (Config, error) {
	var cfg Config
	if err := chu.Load(ctx, path, &cfg,
		chu.WithLoaderOption(loaderconsul.New()),
		chu.WithLoaderOption(loadervault.New()),
		chu.WithEnvPrefix(envPrefix),
	); err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", path, err)
	}

	logi.SetLogLevel(cfg.LogLevel)

	if len(cfg.Lanes) == 0 {
		return Config{}, fmt.Errorf("config: at least one queue lane must be configured")
	}

	return cfg, nil
}
