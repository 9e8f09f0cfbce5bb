// Package config loads stepflow settings from a file and STEPFLOW_ environment
// variables.
package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	sferrors "github.com/vnykmshr/stepflow/pkg/common/errors"
	"github.com/vnykmshr/stepflow/pkg/common/validation"
	sflog "github.com/vnykmshr/stepflow/pkg/log"
	"github.com/vnykmshr/stepflow/pkg/metrics"
	"github.com/vnykmshr/stepflow/pkg/scheduling/pipeline"
	"github.com/vnykmshr/stepflow/pkg/scheduling/scheduler"
	"github.com/vnykmshr/stepflow/pkg/scheduling/workerpool"
)

// EnvPrefix prefixes every environment override, e.g. STEPFLOW_LOG_LEVEL.
const EnvPrefix = "STEPFLOW"

// Config is the root configuration.
type Config struct {
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Log      sflog.Config   `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Drawer   DrawerConfig   `mapstructure:"drawer"`
}

// PipelineConfig configures the engine and its optional worker pool.
type PipelineConfig struct {
	ID             string         `mapstructure:"id"`
	MaxRestarts    int            `mapstructure:"max_restarts"`
	MaxRetries     int            `mapstructure:"max_retries"`
	MaxConcurrency int            `mapstructure:"max_concurrency"`
	Workers        int            `mapstructure:"workers"`    // 0 runs steps without a pool
	QueueSize      int            `mapstructure:"queue_size"` // pool queue, used when Workers > 0
	Variables      map[string]any `mapstructure:"variables"` // keys are lower-cased on load
}

// MetricsConfig configures Prometheus export.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Addr      string `mapstructure:"addr"`
}

// RedisConfig configures the Redis event stream. An empty Addr disables it.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Stream   string `mapstructure:"stream"`
	MaxLen   int64  `mapstructure:"max_len"`
}

// ScheduleConfig configures repeated runs. At most one of Cron and Interval
// may be set; with neither the pipeline runs once.
type ScheduleConfig struct {
	Cron     string        `mapstructure:"cron"`
	Interval time.Duration `mapstructure:"interval"`
}

// DrawerConfig configures DOT output. An empty File disables it.
type DrawerConfig struct {
	File string `mapstructure:"file"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("pipeline.id", "")
	v.SetDefault("pipeline.max_restarts", pipeline.DefaultMaxRestarts)
	v.SetDefault("pipeline.max_retries", pipeline.DefaultMaxRetries)
	v.SetDefault("pipeline.max_concurrency", 0)
	v.SetDefault("pipeline.workers", 0)
	v.SetDefault("pipeline.queue_size", 64)
	v.SetDefault("pipeline.variables", map[string]any{})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.namespace", metrics.DefaultNamespace)
	v.SetDefault("metrics.addr", ":9090")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.stream", "stepflow:events")
	v.SetDefault("redis.max_len", 10000)

	v.SetDefault("schedule.cron", "")
	v.SetDefault("schedule.interval", "0s")

	v.SetDefault("drawer.file", "")
}

// Load reads the file at path, if any, applies STEPFLOW_ environment overrides
// and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	p := c.Pipeline
	for field, value := range map[string]int{
		"max_restarts":    p.MaxRestarts,
		"max_retries":     p.MaxRetries,
		"max_concurrency": p.MaxConcurrency,
		"workers":         p.Workers,
		"queue_size":      p.QueueSize,
	} {
		if err := validation.ValidateNonNegative("config", "pipeline."+field, value); err != nil {
			return err
		}
	}

	if err := c.Log.Validate(); err != nil {
		return err
	}

	if c.Metrics.Enabled {
		if err := validation.ValidateNotEmpty("config", "metrics.namespace", c.Metrics.Namespace); err != nil {
			return err
		}
	}

	if c.Redis.MaxLen < 0 {
		return sferrors.NewValidationError("config", "redis.max_len", c.Redis.MaxLen, "must be non-negative")
	}

	s := c.Schedule
	if s.Interval < 0 {
		return sferrors.NewValidationError("config", "schedule.interval", s.Interval, "must be non-negative")
	}
	if s.Cron != "" {
		if s.Interval > 0 {
			return sferrors.NewValidationError("config", "schedule", s.Cron, "cron and interval are mutually exclusive").
				WithHint("set only one of schedule.cron or schedule.interval")
		}
		if err := scheduler.ValidateCronExpression(s.Cron); err != nil {
			return sferrors.NewValidationError("config", "schedule.cron", s.Cron, err.Error())
		}
	}
	return nil
}

// EngineConfig maps the pipeline section onto pipeline.Config. Sink and
// WorkerPool are left for the caller to wire.
func (p PipelineConfig) EngineConfig() pipeline.Config {
	return pipeline.Config{
		ID:               p.ID,
		InitialVariables: p.Variables,
		MaxConcurrency:   p.MaxConcurrency,
		MaxRestarts:      p.MaxRestarts,
		MaxRetries:       p.MaxRetries,
	}
}

// PoolConfig maps the pipeline section onto workerpool.Config. ok is false
// when no pool is configured.
func (p PipelineConfig) PoolConfig() (cfg workerpool.Config, ok bool) {
	if p.Workers == 0 {
		return workerpool.Config{}, false
	}
	name := p.ID
	if name == "" {
		name = "pipeline"
	}
	return workerpool.Config{
		WorkerCount: p.Workers,
		QueueSize:   p.QueueSize,
		Name:        name,
	}, true
}

// RegistryConfig maps the metrics section onto metrics.Config.
func (m MetricsConfig) RegistryConfig() metrics.Config {
	cfg := metrics.DefaultConfig()
	cfg.Enabled = m.Enabled
	cfg.Namespace = m.Namespace
	return cfg
}

// Scheduled reports whether the schedule section asks for repeated runs.
func (s ScheduleConfig) Scheduled() bool {
	return s.Cron != "" || s.Interval > 0
}
