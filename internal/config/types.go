package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config holds every server-level option the binary consumes.
type Config struct {
	Server ServerConfig `koanf:"server"`
}

// ServerConfig collects the bootstrap knobs owned by the lifecycle wiring in cmd.
type ServerConfig struct {
	Listen     ListenConfig     `koanf:"listen"`
	Logging    LoggingConfig    `koanf:"logging"`
	Gateway    GatewayConfig    `koanf:"gateway"`
	Cache      CacheConfig      `koanf:"cache"`
	Store      StoreConfig      `koanf:"store"`
	Templates  TemplatesConfig  `koanf:"templates"`
	Invoices   InvoicesConfig   `koanf:"invoices"`
	Quotations QuotationsConfig `koanf:"quotations"`
}

// ListenConfig instructs the HTTP listener about bind address and port.
type ListenConfig struct {
	Address string `koanf:"address"`
	Port    int    `koanf:"port"`
}

// LoggingConfig expresses log level, format, and correlation ID wiring.
type LoggingConfig struct {
	Level             string `koanf:"level"`
	Format            string `koanf:"format"`
	CorrelationHeader string `koanf:"correlationHeader"`
}

// GatewayConfig tunes the retry policy and read cache in front of the record store.
// Durations use Go syntax ("250ms", "5m").
type GatewayConfig struct {
	MaxRetries   int    `koanf:"maxRetries"`
	BaseDelay    string `koanf:"baseDelay"`
	TTL          string `koanf:"ttl"`
	SingleFlight bool   `koanf:"singleFlight"`
	// RetryWhen is a CEL expression over `failure.kind` and `failure.message`. Empty
	// means every failure is retried.
	RetryWhen string `koanf:"retryWhen"`
}

// BaseDelayDuration parses BaseDelay, returning zero when unset.
func (c GatewayConfig) BaseDelayDuration() (time.Duration, error) {
	return parseOptionalDuration("server.gateway.baseDelay", c.BaseDelay)
}

// TTLDuration parses TTL, returning zero when unset.
func (c GatewayConfig) TTLDuration() (time.Duration, error) {
	return parseOptionalDuration("server.gateway.ttl", c.TTL)
}

type CacheConfig struct {
	Backend   string           `koanf:"backend"`
	Namespace string           `koanf:"namespace"`
	Redis     RedisCacheConfig `koanf:"redis"`
}

type RedisCacheConfig struct {
	Address  string         `koanf:"address"`
	Username string         `koanf:"username"`
	Password string         `koanf:"password"`
	DB       int            `koanf:"db"`
	TLS      RedisTLSConfig `koanf:"tls"`
}

type RedisTLSConfig struct {
	Enabled bool   `koanf:"enabled"`
	CAFile  string `koanf:"caFile"`
}

// StoreConfig points at the SQLite database file backing the records.
type StoreConfig struct {
	Path string `koanf:"path"`
}

// TemplatesConfig captures the template sandbox root.
type TemplatesConfig struct {
	TemplatesFolder string `koanf:"templatesFolder"`
}

// InvoicesConfig controls invoice numbering and payment terms. Tax comes from the
// hotel settings record, not from configuration. NumberTemplateFile, when set,
// takes precedence over the inline NumberTemplate.
type InvoicesConfig struct {
	NumberTemplate     string `koanf:"numberTemplate"`
	NumberTemplateFile string `koanf:"numberTemplateFile"`
	DueDays            int    `koanf:"dueDays"`
}

// QuotationsConfig controls quotation numbering and how long a quotation stays
// valid when the caller does not say.
type QuotationsConfig struct {
	NumberTemplate     string `koanf:"numberTemplate"`
	NumberTemplateFile string `koanf:"numberTemplateFile"`
	ValidDays          int    `koanf:"validDays"`
}

// Validate enforces invariants that keep the runtime predictable before serving traffic.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config: nil")
	}
	if c.Server.Listen.Port <= 0 || c.Server.Listen.Port > 65535 {
		return fmt.Errorf("config: listen.port invalid: %d", c.Server.Listen.Port)
	}
	gw := c.Server.Gateway
	if gw.MaxRetries < 1 {
		return fmt.Errorf("config: server.gateway.maxRetries invalid: %d", gw.MaxRetries)
	}
	if d, err := gw.BaseDelayDuration(); err != nil {
		return err
	} else if d < 0 {
		return fmt.Errorf("config: server.gateway.baseDelay negative: %s", gw.BaseDelay)
	}
	if d, err := gw.TTLDuration(); err != nil {
		return err
	} else if d < 0 {
		return fmt.Errorf("config: server.gateway.ttl negative: %s", gw.TTL)
	}
	backend := strings.TrimSpace(strings.ToLower(c.Server.Cache.Backend))
	switch backend {
	case "", "memory":
	case "redis":
		if strings.TrimSpace(c.Server.Cache.Redis.Address) == "" {
			return errors.New("config: server.cache.redis.address required for redis backend")
		}
	default:
		return fmt.Errorf("config: server.cache.backend unsupported: %s", c.Server.Cache.Backend)
	}
	if strings.TrimSpace(c.Server.Store.Path) == "" {
		return errors.New("config: server.store.path required")
	}
	if c.Server.Invoices.DueDays < 0 {
		return fmt.Errorf("config: server.invoices.dueDays invalid: %d", c.Server.Invoices.DueDays)
	}
	if c.Server.Quotations.ValidDays < 0 {
		return fmt.Errorf("config: server.quotations.validDays invalid: %d", c.Server.Quotations.ValidDays)
	}
	return nil
}

// DefaultConfig returns the baseline values: three attempts, one second of
// linear backoff and a five minute read cache.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Listen: ListenConfig{
				Address: "0.0.0.0",
				Port:    8080,
			},
			Logging: LoggingConfig{
				Level:             "info",
				Format:            "json",
				CorrelationHeader: "X-Request-ID",
			},
			Gateway: GatewayConfig{
				MaxRetries: 3,
				BaseDelay:  "1s",
				TTL:        "5m",
			},
			Cache: CacheConfig{
				Backend:   "memory",
				Namespace: "innkeeper",
			},
			Store: StoreConfig{
				Path: "./innkeeper.db",
			},
			Invoices: InvoicesConfig{
				NumberTemplate: `INV-{{ .Issued | date "2006" }}-{{ printf "%05d" .Sequence }}`,
				DueDays:        14,
			},
			Quotations: QuotationsConfig{
				NumberTemplate: `Q-{{ .Issued | date "2006-01" }}-{{ printf "%04d" .Sequence }}`,
				ValidDays:      30,
			},
		},
	}
}

func parseOptionalDuration(field, value string) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, fmt.Errorf("config: %s invalid: %w", field, err)
	}
	return d, nil
}
