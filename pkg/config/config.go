// Copyright (c) 2017 OysterPack, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oysterpack/relay.go/pkg/app"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the environment variable prefix
const EnvPrefix = "RELAY"

// store drivers
const (
	STORE_REDIS = "redis"
	STORE_BOLT  = "bolt"
)

// bus drivers
const (
	BUS_NATS  = "nats"
	BUS_REDIS = "redis"
)

// Config is the relay process configuration
type Config struct {
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Store   StoreConfig   `mapstructure:"store" yaml:"store"`
	Bus     BusConfig     `mapstructure:"bus" yaml:"bus"`
	Relay   RelayConfig   `mapstructure:"relay" yaml:"relay"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

type LogConfig struct {
	// Level is one of DEBUG, INFO, WARN, ERROR
	Level string `mapstructure:"level" yaml:"level"`
}

// StoreConfig selects and configures the mailbox store backend
type StoreConfig struct {
	// Driver is either redis or bolt
	Driver    string      `mapstructure:"driver" yaml:"driver"`
	KeyPrefix string      `mapstructure:"key_prefix" yaml:"key_prefix"`
	Redis     RedisConfig `mapstructure:"redis" yaml:"redis"`
	Bolt      BoltConfig  `mapstructure:"bolt" yaml:"bolt"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
}

// BoltConfig configures the embedded store. The bolt store can only be used by a single relay process.
type BoltConfig struct {
	Path     string `mapstructure:"path" yaml:"path"`
	Database string `mapstructure:"database" yaml:"database"`
}

// BusConfig selects and configures the notification bus backend
type BusConfig struct {
	// Driver is either nats or redis
	Driver  string         `mapstructure:"driver" yaml:"driver"`
	Subject string         `mapstructure:"subject" yaml:"subject"`
	NATS    NATSConfig     `mapstructure:"nats" yaml:"nats"`
	Redis   BusRedisConfig `mapstructure:"redis" yaml:"redis"`
}

type NATSConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

type BusRedisConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

type RelayConfig struct {
	// MaxBacklog is the max number of pending messages per channel. 0 means unbounded.
	MaxBacklog   int           `mapstructure:"max_backlog" yaml:"max_backlog"`
	Retry        RetryConfig   `mapstructure:"retry" yaml:"retry"`
	PingInterval time.Duration `mapstructure:"ping_interval" yaml:"ping_interval"`
	SendTimeout  time.Duration `mapstructure:"send_timeout" yaml:"send_timeout"`
}

type RetryConfig struct {
	MaxRetries      uint64        `mapstructure:"max_retries" yaml:"max_retries"`
	InitialInterval time.Duration `mapstructure:"initial_interval" yaml:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval" yaml:"max_interval"`
}

// ServerConfig configures the websocket server
type ServerConfig struct {
	Addr      string `mapstructure:"addr" yaml:"addr"`
	Path      string `mapstructure:"path" yaml:"path"`
	MaxConns  uint   `mapstructure:"max_conns" yaml:"max_conns"`
	ReadLimit int64  `mapstructure:"read_limit" yaml:"read_limit"`
}

type MetricsConfig struct {
	// Addr is the prometheus /metrics endpoint address. The endpoint is disabled when blank.
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "WARN"},
		Store: StoreConfig{
			Driver:    STORE_REDIS,
			KeyPrefix: "p1:",
			Redis:     RedisConfig{Addr: "localhost:6379"},
			Bolt:      BoltConfig{Path: "relay.db", Database: "relay"},
		},
		Bus: BusConfig{
			Driver:  BUS_NATS,
			Subject: "relay.notify",
			NATS:    NATSConfig{URL: "nats://localhost:4222"},
			Redis:   BusRedisConfig{Addr: "localhost:6379"},
		},
		Relay: RelayConfig{
			Retry: RetryConfig{
				MaxRetries:      3,
				InitialInterval: 50 * time.Millisecond,
				MaxInterval:     time.Second,
			},
			PingInterval: 5 * time.Second,
			SendTimeout:  10 * time.Second,
		},
		Server: ServerConfig{
			Addr:      ":8080",
			Path:      "/ws",
			MaxConns:  10000,
			ReadLimit: 64 * 1024,
		},
		Metrics: MetricsConfig{Addr: ":9090"},
	}
}

// SetDefaults registers the default values with viper.
// Every key must have a default, otherwise viper will not bind the key to its environment variable.
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("log.level", defaults.Log.Level)

	v.SetDefault("store.driver", defaults.Store.Driver)
	v.SetDefault("store.key_prefix", defaults.Store.KeyPrefix)
	v.SetDefault("store.redis.addr", defaults.Store.Redis.Addr)
	v.SetDefault("store.redis.password", defaults.Store.Redis.Password)
	v.SetDefault("store.redis.db", defaults.Store.Redis.DB)
	v.SetDefault("store.bolt.path", defaults.Store.Bolt.Path)
	v.SetDefault("store.bolt.database", defaults.Store.Bolt.Database)

	v.SetDefault("bus.driver", defaults.Bus.Driver)
	v.SetDefault("bus.subject", defaults.Bus.Subject)
	v.SetDefault("bus.nats.url", defaults.Bus.NATS.URL)
	v.SetDefault("bus.redis.addr", defaults.Bus.Redis.Addr)

	v.SetDefault("relay.max_backlog", defaults.Relay.MaxBacklog)
	v.SetDefault("relay.retry.max_retries", defaults.Relay.Retry.MaxRetries)
	v.SetDefault("relay.retry.initial_interval", defaults.Relay.Retry.InitialInterval)
	v.SetDefault("relay.retry.max_interval", defaults.Relay.Retry.MaxInterval)
	v.SetDefault("relay.ping_interval", defaults.Relay.PingInterval)
	v.SetDefault("relay.send_timeout", defaults.Relay.SendTimeout)

	v.SetDefault("server.addr", defaults.Server.Addr)
	v.SetDefault("server.path", defaults.Server.Path)
	v.SetDefault("server.max_conns", defaults.Server.MaxConns)
	v.SetDefault("server.read_limit", defaults.Server.ReadLimit)

	v.SetDefault("metrics.addr", defaults.Metrics.Addr)
}

// NewViper returns a viper instance with the defaults registered and environment variable overrides enabled
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile merges the YAML config file into the viper config
func ReadFile(v *viper.Viper, path string) error {
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return app.NewConfigError(fmt.Errorf("failed to read config file %q : %v", path, err))
	}
	return nil
}

// Load unmarshals and validates the config
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, app.NewConfigError(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the config is usable. All problems are reported as a single ConfigError.
func (a *Config) Validate() error {
	var errs []error
	check := func(ok bool, key string, value interface{}, msg string) {
		if !ok {
			errs = append(errs, fmt.Errorf("%s : %s : %v", key, msg, value))
		}
	}

	_, err := app.ParseLogLevel(a.Log.Level)
	check(err == nil, "log.level", a.Log.Level, "must be one of DEBUG, INFO, WARN, ERROR")

	switch a.Store.Driver {
	case STORE_REDIS:
		check(strings.TrimSpace(a.Store.Redis.Addr) != "", "store.redis.addr", a.Store.Redis.Addr, "must not be blank")
		check(a.Store.Redis.DB >= 0, "store.redis.db", a.Store.Redis.DB, "must not be negative")
	case STORE_BOLT:
		check(strings.TrimSpace(a.Store.Bolt.Path) != "", "store.bolt.path", a.Store.Bolt.Path, "must not be blank")
		check(strings.TrimSpace(a.Store.Bolt.Database) != "", "store.bolt.database", a.Store.Bolt.Database, "must not be blank")
	default:
		check(false, "store.driver", a.Store.Driver, "must be one of redis, bolt")
	}
	check(a.Store.KeyPrefix != "", "store.key_prefix", a.Store.KeyPrefix, "must not be blank")

	switch a.Bus.Driver {
	case BUS_NATS:
		check(strings.TrimSpace(a.Bus.NATS.URL) != "", "bus.nats.url", a.Bus.NATS.URL, "must not be blank")
	case BUS_REDIS:
		check(strings.TrimSpace(a.Bus.Redis.Addr) != "", "bus.redis.addr", a.Bus.Redis.Addr, "must not be blank")
	default:
		check(false, "bus.driver", a.Bus.Driver, "must be one of nats, redis")
	}
	check(strings.TrimSpace(a.Bus.Subject) != "", "bus.subject", a.Bus.Subject, "must not be blank")

	check(a.Relay.MaxBacklog >= 0, "relay.max_backlog", a.Relay.MaxBacklog, "must not be negative")
	check(a.Relay.Retry.InitialInterval > 0, "relay.retry.initial_interval", a.Relay.Retry.InitialInterval, "must be positive")
	check(a.Relay.Retry.MaxInterval >= a.Relay.Retry.InitialInterval, "relay.retry.max_interval", a.Relay.Retry.MaxInterval, "must not be less than relay.retry.initial_interval")
	check(a.Relay.PingInterval > 0, "relay.ping_interval", a.Relay.PingInterval, "must be positive")
	check(a.Relay.SendTimeout > 0, "relay.send_timeout", a.Relay.SendTimeout, "must be positive")

	check(strings.HasPrefix(a.Server.Path, "/"), "server.path", a.Server.Path, "must start with /")
	check(a.Server.MaxConns > 0, "server.max_conns", a.Server.MaxConns, "must be positive")
	check(a.Server.ReadLimit > 0, "server.read_limit", a.Server.ReadLimit, "must be positive")

	if len(errs) > 0 {
		return app.NewConfigError(errors.Join(errs...))
	}
	return nil
}

// YAML returns the config as YAML. Passwords are masked.
func (a *Config) YAML() ([]byte, error) {
	masked := *a
	if masked.Store.Redis.Password != "" {
		masked.Store.Redis.Password = "******"
	}
	return yaml.Marshal(&masked)
}
