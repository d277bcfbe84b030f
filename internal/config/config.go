package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/hamed0406/statuspage/internal/logging"
	pginfra "github.com/hamed0406/statuspage/internal/repo/postgres"
)

type HTTPCfg struct {
	Addr           string        `mapstructure:"addr"`
	StaticDir      string        `mapstructure:"static_dir"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	RateLimitRPM   int           `mapstructure:"rate_limit_rpm"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

type ProbeCfg struct {
	Timeout        time.Duration `mapstructure:"timeout"`
	Concurrency    int           `mapstructure:"concurrency"`
	UserAgent      string        `mapstructure:"user_agent"`
	DNSDiagnostics bool          `mapstructure:"dns_diagnostics"`
}

type ScheduleCfg struct {
	Check  string `mapstructure:"check"`
	Reload string `mapstructure:"reload"`
}

type Config struct {
	HTTP         HTTPCfg        `mapstructure:"http"`
	Log          logging.Config `mapstructure:"log"`
	DB           pginfra.Config `mapstructure:"db"`
	Probe        ProbeCfg       `mapstructure:"probe"`
	Schedule     ScheduleCfg    `mapstructure:"schedule"`
	ServicesFile string         `mapstructure:"services_file"`
}

// Load reads the optional YAML file at path, then lets environment
// variables override any key (HTTP_ADDR, DB_DSN, SCHEDULE_CHECK, ...).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetDefault("http.addr", ":3000")
	v.SetDefault("http.static_dir", "public")
	v.SetDefault("http.read_timeout", "5s")
	v.SetDefault("http.write_timeout", "15s")
	v.SetDefault("http.rate_limit_rpm", 600)
	v.SetDefault("http.rate_limit_burst", 100)
	v.SetDefault("http.allowed_origins", []string{"*"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.dir", "logs")
	v.SetDefault("log.console", true)

	v.SetDefault("db.dsn", "")
	v.SetDefault("db.max_conns", 10)
	v.SetDefault("db.min_conns", 1)
	v.SetDefault("db.query_timeout", "5s")
	v.SetDefault("db.migrate", true)

	v.SetDefault("probe.timeout", "10s")
	v.SetDefault("probe.concurrency", 4)
	v.SetDefault("probe.user_agent", "statuspage/1.0")
	v.SetDefault("probe.dns_diagnostics", true)

	v.SetDefault("schedule.check", "@every 5m")
	v.SetDefault("schedule.reload", "@every 19m")

	v.SetDefault("services_file", "services.yaml")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var err error
	if c.Probe.Timeout <= 0 {
		err = multierr.Append(err, errors.New("probe.timeout must be positive"))
	}
	if c.Probe.Concurrency < 1 {
		err = multierr.Append(err, errors.New("probe.concurrency must be at least 1"))
	}
	if _, perr := cron.ParseStandard(c.Schedule.Check); perr != nil {
		err = multierr.Append(err, fmt.Errorf("schedule.check: %w", perr))
	}
	if _, perr := cron.ParseStandard(c.Schedule.Reload); perr != nil {
		err = multierr.Append(err, fmt.Errorf("schedule.reload: %w", perr))
	}
	if c.ServicesFile == "" {
		err = multierr.Append(err, errors.New("services_file is required"))
	}
	return err
}

// UsesPostgres is false when no DSN is configured; checks then live in memory.
func (c *Config) UsesPostgres() bool {
	return c.DB.DSN != ""
}
