package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

var GlobalConfig *Config

// Config global configuration
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	Queue        QueueConfig        `yaml:"queue"`
	Dispatcher   DispatcherConfig   `yaml:"dispatcher"`
	RateLimit    RateLimitConfig    `yaml:"rate_limit"`
	Logger       LoggerConfig       `yaml:"logger"`
	Notification NotificationConfig `yaml:"notification"`
	Providers    []ProviderConfig   `yaml:"providers"`
}

// ServerConfig server configuration
type ServerConfig struct {
	Port   int    `yaml:"port"`
	Mode   string `yaml:"mode"`    // debug, release
	APIKey string `yaml:"api_key"` // API key for /api routes (optional, if empty, auth is disabled)
}

// DatabaseConfig database configuration
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // mysql, sqlite
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	Path     string `yaml:"path"` // sqlite file path
}

// DSN builds the driver specific connection string
func (d DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.Path
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.User, d.Password, d.Host, d.Port, d.Database)
}

// RedisConfig Redis configuration
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// QueueConfig work unit queue configuration
type QueueConfig struct {
	MaxAttempts   int     `yaml:"max_attempts"`   // attempts before a unit is failed permanently
	StaleAfter    int     `yaml:"stale_after"`    // seconds without heartbeat before a locked/running unit is reclaimed
	SweepInterval int     `yaml:"sweep_interval"` // seconds between stale sweeps
	BackoffBase   int     `yaml:"backoff_base"`   // milliseconds, first retry delay
	BackoffMax    int     `yaml:"backoff_max"`    // milliseconds, retry delay cap
	BackoffJitter float64 `yaml:"backoff_jitter"` // fraction of the delay, 0 disables jitter
}

// StaleAfterDuration returns the staleness threshold
func (q QueueConfig) StaleAfterDuration() time.Duration {
	return time.Duration(q.StaleAfter) * time.Second
}

// DispatcherConfig dispatcher configuration
type DispatcherConfig struct {
	Enabled      bool   `yaml:"enabled"`
	PollInterval int    `yaml:"poll_interval"` // milliseconds between claims when the queue is empty
	CallTimeout  int    `yaml:"call_timeout"`  // seconds per provider call
	WorkerPrefix string `yaml:"worker_prefix"` // prefix for generated worker ids
}

// RateLimitConfig rate limiter configuration
type RateLimitConfig struct {
	Backend string `yaml:"backend"` // local, redis
}

// DefaultTemperature sampling temperature for providers that leave it unset
const DefaultTemperature float32 = 0.3

// ProviderConfig one LLM provider
type ProviderConfig struct {
	Name              string   `yaml:"name"`
	Kind              string   `yaml:"kind"` // openai, gemini
	Model             string   `yaml:"model"`
	BaseURL           string   `yaml:"base_url"`
	APIKeyEnv         string   `yaml:"api_key_env"`
	RequestsPerSecond float64  `yaml:"requests_per_second"`
	MaxConcurrent     int      `yaml:"max_concurrent"`
	MaxTokens         int      `yaml:"max_tokens"`
	Temperature       *float32 `yaml:"temperature"` // nil means DefaultTemperature, 0 is kept
}

// SamplingTemperature returns the configured temperature or the default
func (p ProviderConfig) SamplingTemperature() float32 {
	if p.Temperature == nil {
		return DefaultTemperature
	}
	return *p.Temperature
}

// APIKey resolves the provider key from the environment
func (p ProviderConfig) APIKey() string {
	if p.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(p.APIKeyEnv)
}

// LoggerConfig logger configuration
type LoggerConfig struct {
	Level  string           `yaml:"level"`  // debug, info, warn, error
	Output string           `yaml:"output"` // console, file, both
	File   LoggerFileConfig `yaml:"file"`
}

// NotificationConfig notification configuration
type NotificationConfig struct {
	FeishuWebhookURL string `yaml:"feishu_webhook_url"` // experiment finished cards; empty disables
}

// LoggerFileConfig logger file configuration
type LoggerFileConfig struct {
	Path string `yaml:"path"`
}

// Init initializes configuration
func Init() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := Load(configPath)
	if err != nil {
		return err
	}

	GlobalConfig = cfg
	return nil
}

// Load reads and validates a configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML configuration and fills defaults
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks invariants the rest of the system relies on
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Providers))
	for _, p := range c.Providers {
		if p.Name == "" {
			return fmt.Errorf("provider name is required")
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate provider: %s", p.Name)
		}
		seen[p.Name] = true

		switch p.Kind {
		case "openai", "gemini":
		default:
			return fmt.Errorf("provider %s: unsupported kind %q", p.Name, p.Kind)
		}
		if p.RequestsPerSecond <= 0 {
			return fmt.Errorf("provider %s: requests_per_second must be positive", p.Name)
		}
		// a unit heartbeats once per item, so one limiter wait plus one call
		// must finish before the sweep considers it stale
		if float64(c.Dispatcher.CallTimeout)+1/p.RequestsPerSecond >= float64(c.Queue.StaleAfter) {
			return fmt.Errorf("provider %s: dispatcher.call_timeout (%ds) plus one rate limit interval must stay below queue.stale_after (%ds)",
				p.Name, c.Dispatcher.CallTimeout, c.Queue.StaleAfter)
		}
	}
	if c.Dispatcher.CallTimeout >= c.Queue.StaleAfter {
		return fmt.Errorf("dispatcher.call_timeout (%ds) must be below queue.stale_after (%ds)",
			c.Dispatcher.CallTimeout, c.Queue.StaleAfter)
	}

	switch c.RateLimit.Backend {
	case "local", "redis":
	default:
		return fmt.Errorf("unsupported rate limit backend: %s", c.RateLimit.Backend)
	}
	if c.RateLimit.Backend == "redis" && !c.Redis.Enabled {
		return fmt.Errorf("rate_limit.backend=redis requires redis.enabled")
	}
	return nil
}

// Provider looks up a provider by name
func (c *Config) Provider(name string) (ProviderConfig, bool) {
	for _, p := range c.Providers {
		if p.Name == name {
			return p, true
		}
	}
	return ProviderConfig{}, false
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "release"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "mysql"
	}
	if cfg.Database.Driver == "sqlite" && cfg.Database.Path == "" {
		cfg.Database.Path = "data/surveyor.db"
	}
	if cfg.Queue.MaxAttempts <= 0 {
		cfg.Queue.MaxAttempts = 3
	}
	if cfg.Queue.StaleAfter <= 0 {
		cfg.Queue.StaleAfter = 300
	}
	if cfg.Queue.SweepInterval <= 0 {
		cfg.Queue.SweepInterval = 60
	}
	if cfg.Queue.BackoffBase <= 0 {
		cfg.Queue.BackoffBase = 5000
	}
	if cfg.Queue.BackoffMax <= 0 {
		cfg.Queue.BackoffMax = 300000
	}
	if cfg.Dispatcher.PollInterval <= 0 {
		cfg.Dispatcher.PollInterval = 1000
	}
	if cfg.Dispatcher.CallTimeout <= 0 {
		cfg.Dispatcher.CallTimeout = 60
	}
	if cfg.Dispatcher.WorkerPrefix == "" {
		cfg.Dispatcher.WorkerPrefix = "worker"
	}
	if cfg.RateLimit.Backend == "" {
		cfg.RateLimit.Backend = "local"
	}
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}
	if cfg.Notification.FeishuWebhookURL == "" {
		cfg.Notification.FeishuWebhookURL = os.Getenv("FEISHU_WEBHOOK_URL")
	}
	for i := range cfg.Providers {
		p := &cfg.Providers[i]
		if p.Kind == "" {
			p.Kind = "openai"
		}
		if p.MaxConcurrent <= 0 {
			p.MaxConcurrent = 1
		}
		if p.MaxTokens <= 0 {
			p.MaxTokens = 10
		}
	}
}
