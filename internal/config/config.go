package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress       string
	DatabaseURI      string
	NumberingAddress string
	WebhookSecrets   string
	OrderTTL         time.Duration
	SchedulerTick    time.Duration
	EventBuffer      int
	ShutdownTimeout  time.Duration
}

const (
	defaultRunAddress      = ":8080"
	defaultOrderTTL        = 15 * time.Minute
	defaultSchedulerTick   = time.Second
	defaultEventBuffer     = 16
	defaultShutdownTimeout = 10 * time.Second
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:       getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:      getString(lookup, "DATABASE_URI", ""),
		NumberingAddress: getString(lookup, "NUMBERING_ADDRESS", ""),
		WebhookSecrets:   getString(lookup, "WEBHOOK_SECRETS", ""),
		OrderTTL:         getDuration(lookup, "ORDER_TTL", defaultOrderTTL),
		SchedulerTick:    getDuration(lookup, "SCHEDULER_TICK", defaultSchedulerTick),
		EventBuffer:      getInt(lookup, "EVENT_BUFFER", defaultEventBuffer),
		ShutdownTimeout:  getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	fs := flag.NewFlagSet("smslease", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		ttlStr             = cfg.OrderTTL.String()
		tickStr            = cfg.SchedulerTick.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.NumberingAddress, "n", cfg.NumberingAddress, "Numbering provider base URL")
	fs.StringVar(&cfg.WebhookSecrets, "webhook-secrets", cfg.WebhookSecrets, "Webhook provider secrets (name:scheme:secret,...)")
	fs.StringVar(&ttlStr, "ttl", ttlStr, "Order time-to-live before automatic expiry")
	fs.StringVar(&tickStr, "tick", tickStr, "Expiration scheduler wake granularity")
	fs.IntVar(&cfg.EventBuffer, "event-buffer", cfg.EventBuffer, "Buffered events per live connection")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.OrderTTL, err = time.ParseDuration(ttlStr); err != nil {
		return nil, fmt.Errorf("invalid order ttl: %w", err)
	}

	if cfg.SchedulerTick, err = time.ParseDuration(tickStr); err != nil {
		return nil, fmt.Errorf("invalid scheduler tick: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if secretsFile, ok := lookup("WEBHOOK_SECRETS_FILE"); ok && secretsFile != "" {
		content, err := os.ReadFile(secretsFile)
		if err != nil {
			return nil, fmt.Errorf("read webhook secrets file: %w", err)
		}
		cfg.WebhookSecrets = string(content)
	}

	if cfg.OrderTTL <= 0 {
		cfg.OrderTTL = defaultOrderTTL
	}

	if cfg.SchedulerTick <= 0 {
		cfg.SchedulerTick = defaultSchedulerTick
	}

	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = defaultEventBuffer
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.NumberingAddress == "" {
		return nil, fmt.Errorf("numbering provider address must be provided")
	}

	if cfg.WebhookSecrets == "" {
		return nil, fmt.Errorf("webhook secrets must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
