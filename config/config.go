// Package config loads server settings from flags with environment
// fallbacks.
package config

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	envPort        = "VACATION_PORT"
	envDB          = "VACATION_DB"
	envDevMode     = "VACATION_DEV_MODE"
	envJWTSecret   = "JWT_SECRET_KEY"
	envCORSOrigins = "CORS_ORIGINS"
	envSender      = "SENDER_EMAIL"
)

type Config struct {
	Port              int
	DBPath            string
	Seed              bool
	DevMode           bool
	JWTSecret         string
	SenderEmail       string
	CORSOrigins       []string
	AllowAnyOrigin    bool
	ProvisionInterval time.Duration
}

func (c Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }

// Load parses args (without the program name). An explicitly passed flag
// wins over its environment variable, which wins over the default.
func Load(args []string, getenv func(string) string) (Config, error) {
	fs := flag.NewFlagSet("vacationflow", flag.ContinueOnError)
	port := fs.Int("port", 8080, "HTTP server port")
	dbPath := fs.String("db", "vacations.db", "SQLite database path (\":memory:\" for in-memory)")
	seed := fs.Bool("seed", false, "Load demo data on startup")
	origins := fs.String("cors-origins", "", "Comma-separated allowed CORS origins")
	interval := fs.Duration("provision-interval", time.Hour, "How often to ensure current-year balances (0 disables)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	devMode, err := parseOptionalBool(getenv, envDevMode)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:              *port,
		DBPath:            *dbPath,
		Seed:              *seed,
		DevMode:           devMode,
		JWTSecret:         strings.TrimSpace(getenv(envJWTSecret)),
		SenderEmail:       strings.TrimSpace(getenv(envSender)),
		ProvisionInterval: *interval,
	}

	if !set["port"] {
		if raw := strings.TrimSpace(getenv(envPort)); raw != "" {
			p, err := strconv.Atoi(raw)
			if err != nil || p <= 0 || p > 65535 {
				return Config{}, fmt.Errorf("%s must be a port number, got %q", envPort, raw)
			}
			cfg.Port = p
		}
	}
	if !set["db"] {
		if raw := strings.TrimSpace(getenv(envDB)); raw != "" {
			cfg.DBPath = raw
		}
	}
	if cfg.ProvisionInterval < 0 {
		return Config{}, fmt.Errorf("provision-interval must not be negative")
	}

	rawOrigins := *origins
	if !set["cors-origins"] {
		rawOrigins = getenv(envCORSOrigins)
	}
	cfg.CORSOrigins = parseCSV(rawOrigins)
	for _, o := range cfg.CORSOrigins {
		if o == "*" {
			cfg.AllowAnyOrigin = true
		}
	}

	if cfg.DevMode {
		if len(cfg.CORSOrigins) == 0 {
			cfg.AllowAnyOrigin = true
		}
		if cfg.AllowAnyOrigin {
			cfg.CORSOrigins = []string{"*"}
		}
		if cfg.JWTSecret == "" {
			cfg.JWTSecret = uuid.NewString()
		}
		return cfg, nil
	}

	if cfg.AllowAnyOrigin {
		return Config{}, fmt.Errorf("%s cannot include wildcard origin outside dev mode", envCORSOrigins)
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("%s is required outside dev mode (set %s=true for a generated secret)", envJWTSecret, envDevMode)
	}
	return cfg, nil
}

func parseOptionalBool(getenv func(string) string, key string) (bool, error) {
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean value: %w", key, err)
	}
	return v, nil
}

func parseCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	seen := map[string]struct{}{}
	for _, part := range parts {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		values = append(values, p)
	}
	return values
}
