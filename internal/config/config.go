package config

import (
	"time"

	"github.com/alexanderramin/releaseplan/internal/db"
	"github.com/alexanderramin/releaseplan/internal/devops"
	"github.com/alexanderramin/releaseplan/internal/domain"
	"github.com/alexanderramin/releaseplan/internal/telemetry"
)

// Config is the full process configuration.
type Config struct {
	DevOps      DevOpsConfig            `mapstructure:"devops"`
	DB          DBConfig                `mapstructure:"db"`
	Server      ServerConfig            `mapstructure:"server"`
	Aggregation AggregationConfig       `mapstructure:"aggregation"`
	Log         telemetry.LogConfig     `mapstructure:"log"`
	Metrics     telemetry.MetricsConfig `mapstructure:"metrics"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

type DevOpsConfig struct {
	Instance   string        `mapstructure:"instance" validate:"required"`
	Scheme     string        `mapstructure:"scheme" validate:"oneof=http https"`
	Collection string        `mapstructure:"collection" validate:"required"`
	Token      string        `mapstructure:"token" validate:"required"`
	Project    string        `mapstructure:"project" validate:"required"`
	Timeout    time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MaxRetries int           `mapstructure:"max_retries" validate:"min=0,max=5"`

	// Timeouts overrides Timeout per operation, keyed by operation name.
	Timeouts map[string]time.Duration `mapstructure:"timeouts" validate:"dive,keys,oneof=list_projects query_work_items get_work_items list_iterations,endkeys,gt=0"`
}

type DBConfig struct {
	Path            string        `mapstructure:"path" validate:"required"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"min=0"`
}

type ServerConfig struct {
	Addr         string        `mapstructure:"addr" validate:"required"`
	APIToken     string        `mapstructure:"api_token"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
}

type AggregationConfig struct {
	Policy string `mapstructure:"policy" validate:"oneof=degrade strict"`
}

// DevOpsClient returns the remote client settings.
func (c *Config) DevOpsClient() devops.Config {
	cfg := devops.DefaultConfig()
	cfg.Instance = c.DevOps.Instance
	cfg.Scheme = c.DevOps.Scheme
	cfg.Collection = c.DevOps.Collection
	cfg.Token = c.DevOps.Token
	cfg.Timeout = c.DevOps.Timeout
	cfg.MaxRetries = c.DevOps.MaxRetries
	if len(c.DevOps.Timeouts) > 0 {
		cfg.OperationTimeouts = make(map[devops.Operation]time.Duration, len(c.DevOps.Timeouts))
		for op, d := range c.DevOps.Timeouts {
			cfg.OperationTimeouts[devops.Operation(op)] = d
		}
	}
	return cfg
}

// Pool returns the database pool settings.
func (c *Config) Pool() db.PoolConfig {
	pool := db.DefaultPoolConfig()
	pool.MaxOpenConns = c.DB.MaxOpenConns
	pool.MaxIdleConns = c.DB.MaxIdleConns
	pool.ConnMaxLifetime = c.DB.ConnMaxLifetime
	return pool
}

// FetchPolicy returns the configured aggregation failure policy.
func (c *Config) FetchPolicy() domain.FetchPolicy {
	return domain.FetchPolicy(c.Aggregation.Policy)
}
