package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"
)

type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	// PublicURL is used to build the pagination links; when empty
	// the links are built from the incoming request host
	PublicURL string `toml:"public_url"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresUser   string `toml:"postgres_user"`
	PostgresDBName string `toml:"postgres_db_name"`
	RunMigrations  bool   `toml:"run_migrations"`

	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// auth
	SessionTTL                  Duration `toml:"session_ttl"`
	SessionsCleanupInterval     Duration `toml:"sessions_cleanup_interval"`
	LoginRateLimitAllowedPerMin int      `toml:"login_rate_limit_allowed_per_min"`
	// only enable behind a reverse proxy which sets X-Real-Ip / X-Forwarded-For
	TrustProxyHeaders           bool     `toml:"trust_proxy_headers"`

	// verified blogs cache
	BlogCacheSizeMB int      `toml:"blog_cache_size_mb"`
	BlogCacheTTL    Duration `toml:"blog_cache_ttl"`
}

// Duration wraps time.Duration so it can be written as "24h" in the TOML file.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

type Toml struct {
	Development *Config `toml:"development"`
	DockerDev   *Config `toml:"dockerdev"`
	Production  *Config `toml:"production"`
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "ddev", "dockerdev":
		cfg = t.DockerDev
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("env [%s] not configured", env)
	}
	return cfg, nil
}

func Load(env, configPath string) (*Config, error) {
	var tomlConfig Toml
	if _, err := toml.DecodeFile(configPath, &tomlConfig); err != nil {
		return nil, fmt.Errorf("decode config file [%s]: %w", configPath, err)
	}

	cfg, err := tomlConfig.Get(env)
	if err != nil {
		return nil, err
	}

	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid [%s] config: %w", env, err)
	}

	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.PostgresUser == "" {
		c.PostgresUser = "postgres"
	}
	if c.SessionTTL.Duration == 0 {
		c.SessionTTL.Duration = 7 * 24 * time.Hour
	}
	if c.SessionsCleanupInterval.Duration == 0 {
		c.SessionsCleanupInterval.Duration = 8 * time.Hour
	}
	if c.LoginRateLimitAllowedPerMin == 0 {
		c.LoginRateLimitAllowedPerMin = 15
	}
	if c.BlogCacheSizeMB == 0 {
		c.BlogCacheSizeMB = 20
	}
	if c.BlogCacheTTL.Duration == 0 {
		c.BlogCacheTTL.Duration = time.Hour
	}
}

func (c *Config) Validate() error {
	var err error
	if c.Port <= 0 {
		err = multierr.Append(err, errors.New("port must be positive"))
	}
	if c.PostgresHost == "" || c.PostgresPort == "" || c.PostgresDBName == "" {
		err = multierr.Append(err, errors.New("postgres host, port and db name required"))
	}
	if c.RedisHost == "" || c.RedisPort == "" {
		err = multierr.Append(err, errors.New("redis host and port required"))
	}
	if c.PrometheusMetricsPort == "" {
		err = multierr.Append(err, errors.New("prometheus metrics port required"))
	}
	return err
}
