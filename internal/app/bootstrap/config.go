package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"
)

type Config struct {
	ServiceID            string
	HTTPPort             int
	GRPCPort             int
	StorageDriver        string
	DatabaseURL          string
	MaxDBConns           int
	RedisURL             string
	WebhookSecret        string
	PublicBaseURL        string
	WidgetPrimaryColor   string
	WidgetCacheTTL       time.Duration
	IdempotencyTTL       time.Duration
	OutboxPollInterval   time.Duration
	OutboxFlushBatchSize int
	ReferralCodeLength   int
}

type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
	} `yaml:"service"`
	Storage struct {
		Driver     string `yaml:"driver"`
		MaxDBConns int    `yaml:"max_db_conns"`
	} `yaml:"storage"`
	Referral struct {
		PublicBaseURL      string `yaml:"public_base_url"`
		WidgetPrimaryColor string `yaml:"widget_primary_color"`
		CodeLength         int    `yaml:"code_length"`
	} `yaml:"referral"`
	Runtime struct {
		WidgetCacheTTLSeconds int `yaml:"widget_cache_ttl_seconds"`
		IdempotencyTTLHours   int `yaml:"idempotency_ttl_hours"`
		OutboxPollSeconds     int `yaml:"outbox_poll_seconds"`
		OutboxFlushBatchSize  int `yaml:"outbox_flush_batch_size"`
	} `yaml:"runtime"`
}

// LoadConfig resolves configuration defaults, then the optional YAML file,
// then environment overrides. Secrets and connection strings are env-only so
// they never land in a checked-in file.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:            "referral-rewards-service",
		HTTPPort:             8080,
		GRPCPort:             9090,
		StorageDriver:        StorageDriverMemory,
		MaxDBConns:           10,
		PublicBaseURL:        "http://localhost:8080",
		WidgetPrimaryColor:   "#6366f1",
		WidgetCacheTTL:       5 * time.Minute,
		IdempotencyTTL:       24 * time.Hour,
		OutboxPollInterval:   5 * time.Second,
		OutboxFlushBatchSize: 100,
		ReferralCodeLength:   8,
	}
	if raw, err := os.ReadFile(path); err == nil {
		var f configFile
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Service.GRPCPort > 0 {
			cfg.GRPCPort = f.Service.GRPCPort
		}
		if f.Storage.Driver != "" {
			cfg.StorageDriver = f.Storage.Driver
		}
		if f.Storage.MaxDBConns > 0 {
			cfg.MaxDBConns = f.Storage.MaxDBConns
		}
		if f.Referral.PublicBaseURL != "" {
			cfg.PublicBaseURL = f.Referral.PublicBaseURL
		}
		if f.Referral.WidgetPrimaryColor != "" {
			cfg.WidgetPrimaryColor = f.Referral.WidgetPrimaryColor
		}
		if f.Referral.CodeLength > 0 {
			cfg.ReferralCodeLength = f.Referral.CodeLength
		}
		if f.Runtime.WidgetCacheTTLSeconds > 0 {
			cfg.WidgetCacheTTL = time.Duration(f.Runtime.WidgetCacheTTLSeconds) * time.Second
		}
		if f.Runtime.IdempotencyTTLHours > 0 {
			cfg.IdempotencyTTL = time.Duration(f.Runtime.IdempotencyTTLHours) * time.Hour
		}
		if f.Runtime.OutboxPollSeconds > 0 {
			cfg.OutboxPollInterval = time.Duration(f.Runtime.OutboxPollSeconds) * time.Second
		}
		if f.Runtime.OutboxFlushBatchSize > 0 {
			cfg.OutboxFlushBatchSize = f.Runtime.OutboxFlushBatchSize
		}
	}
	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.StorageDriver = envString("STORAGE_DRIVER", cfg.StorageDriver)
	cfg.DatabaseURL = envString("DB_URL", cfg.DatabaseURL)
	cfg.MaxDBConns = envInt("MAX_DB_CONNS", cfg.MaxDBConns)
	cfg.RedisURL = envString("REDIS_URL", cfg.RedisURL)
	cfg.WebhookSecret = envString("WEBHOOK_SECRET", cfg.WebhookSecret)
	cfg.PublicBaseURL = envString("PUBLIC_BASE_URL", cfg.PublicBaseURL)
	cfg.WidgetPrimaryColor = envString("WIDGET_PRIMARY_COLOR", cfg.WidgetPrimaryColor)
	cfg.WidgetCacheTTL = time.Duration(envInt("WIDGET_CACHE_TTL_SECONDS", int(cfg.WidgetCacheTTL.Seconds()))) * time.Second
	cfg.IdempotencyTTL = time.Duration(envInt("IDEMPOTENCY_TTL_HOURS", int(cfg.IdempotencyTTL.Hours()))) * time.Hour
	cfg.OutboxPollInterval = time.Duration(envInt("OUTBOX_POLL_SECONDS", int(cfg.OutboxPollInterval.Seconds()))) * time.Second
	cfg.OutboxFlushBatchSize = envInt("OUTBOX_FLUSH_BATCH_SIZE", cfg.OutboxFlushBatchSize)
	cfg.ReferralCodeLength = envInt("REFERRAL_CODE_LENGTH", cfg.ReferralCodeLength)

	switch cfg.StorageDriver {
	case StorageDriverMemory:
	case StorageDriverPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("storage driver %q requires DB_URL", cfg.StorageDriver)
		}
	default:
		return Config{}, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
	return cfg, nil
}

func envInt(name string, fallback int) int {
	if raw := os.Getenv(name); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}

func envString(name, fallback string) string {
	if raw := os.Getenv(name); raw != "" {
		return raw
	}
	return fallback
}
