// Package config loads server configuration from flags, environment variables and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// defaultAdminEmails are the back-office accounts allowed to sign in.
const defaultAdminEmails = "ringclubsma@gmail.com,arcana.circulomagico@gmail.com"

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Server    ServerConfig
	Store     StoreConfig
	Session   SessionConfig
	Search    SearchConfig
	Auth      AuthConfig
	Leads     LeadsConfig
	Checkout  CheckoutConfig
	Workspace WorkspaceConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level  string
	Format string // json or pretty; empty picks by environment
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string
}

// StoreConfig selects and configures the content store backend.
type StoreConfig struct {
	Driver        string
	DatabaseURL   string // postgres only
	SQLitePath    string // sqlite only
	MigrationsDir string // postgres; empty uses the embedded migrations
}

// SessionConfig configures admin session persistence.
type SessionConfig struct {
	RedisURL string // when empty, sessions live in a badger database under Dir
	Dir      string
}

// SearchConfig configures the content search index.
type SearchConfig struct {
	MeiliURL    string
	MeiliAPIKey string
	IndexPath   string // local bleve index, always maintained
}

// AuthConfig holds admin authentication configuration.
type AuthConfig struct {
	AdminEmails       []string
	AdminPasswordHash string // argon2id PHC string
	KeyHex            string // PASETO v4 local key; empty uses the key file in KeyDir
	KeyDir            string
	TokenTTL          time.Duration
	LoginRate         float64 // attempts per second per client
	LoginBurst        int
}

// LeadsConfig configures forwarding of public lead forms.
type LeadsConfig struct {
	ScriptURL           string
	AssumeOpaqueSuccess bool
	Timeout             time.Duration
	Rate                float64
	Burst               int
}

// CheckoutConfig configures the hosted checkout function.
type CheckoutConfig struct {
	SupabaseURL          string
	AnonKey              string
	SiteURL              string
	SuccessPath          string
	CancelPath           string
	ProductBasic         string
	ProductPremium       string
	ProductPremiumAnnual string
	Timeout              time.Duration
}

// WorkspaceConfig controls how long idle admin workspaces are kept.
type WorkspaceConfig struct {
	IdleTimeout   time.Duration
	PruneInterval time.Duration
}

// LoadConfig loads configuration from the process arguments and environment.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load loads configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("arcana", flag.ContinueOnError)
	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	port := fs.String("port", "", "Server port (default: 8080)")
	driver := fs.String("store", "", "Store driver (sqlite, postgres)")
	databaseURL := fs.String("database-url", "", "Postgres connection URL")
	sqlitePath := fs.String("sqlite-path", "", "SQLite database file")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// A missing .env file is fine.
	if err := loadEnvFile(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level:  getConfigValue(*logLevel, "LOG_LEVEL", "info"),
			Format: getConfigValue("", "LOG_FORMAT", ""),
		},
		Server: ServerConfig{
			Port:        getConfigValue(*port, "SERVER_PORT", "8080"),
			CORSOrigins: splitList(getConfigValue("", "CORS_ALLOWED_ORIGINS", "http://localhost:4200,https://arcanaoficial.com")),
		},
		Store: StoreConfig{
			Driver:        getConfigValue(*driver, "STORE_DRIVER", DriverSQLite),
			DatabaseURL:   getConfigValue(*databaseURL, "DATABASE_URL", ""),
			SQLitePath:    getConfigValue(*sqlitePath, "SQLITE_PATH", "./data/arcana.db"),
			MigrationsDir: getConfigValue("", "MIGRATIONS_DIR", ""),
		},
		Session: SessionConfig{
			RedisURL: getConfigValue("", "REDIS_URL", ""),
			Dir:      getConfigValue("", "SESSION_DIR", "./data/sessions"),
		},
		Search: SearchConfig{
			MeiliURL:    getConfigValue("", "MEILI_URL", ""),
			MeiliAPIKey: getConfigValue("", "MEILI_API_KEY", ""),
			IndexPath:   getConfigValue("", "SEARCH_INDEX_PATH", "./data/search"),
		},
		Auth: AuthConfig{
			AdminEmails:       splitList(strings.ToLower(getConfigValue("", "ADMIN_EMAILS", defaultAdminEmails))),
			AdminPasswordHash: getConfigValue("", "ADMIN_PASSWORD_HASH", ""),
			KeyHex:            getConfigValue("", "AUTH_KEY", ""),
			KeyDir:            getConfigValue("", "AUTH_KEY_DIR", "./data"),
			LoginRate:         getFloatConfigValue("AUTH_LOGIN_RATE", 0.2),
			LoginBurst:        getIntConfigValue("AUTH_LOGIN_BURST", 5),
		},
		Leads: LeadsConfig{
			ScriptURL:           getConfigValue("", "LEADS_SCRIPT_URL", ""),
			AssumeOpaqueSuccess: getBoolConfigValue("LEADS_ASSUME_OPAQUE_SUCCESS", false),
			Rate:                getFloatConfigValue("LEADS_RATE", 0.5),
			Burst:               getIntConfigValue("LEADS_BURST", 3),
		},
		Checkout: CheckoutConfig{
			SupabaseURL:          strings.TrimRight(getConfigValue("", "SUPABASE_URL", ""), "/"),
			AnonKey:              getConfigValue("", "SUPABASE_ANON_KEY", ""),
			SiteURL:              strings.TrimRight(getConfigValue("", "CHECKOUT_SITE_URL", "https://arcanaoficial.com"), "/"),
			SuccessPath:          getConfigValue("", "CHECKOUT_SUCCESS_PATH", "/payment/success"),
			CancelPath:           getConfigValue("", "CHECKOUT_CANCEL_PATH", "/payment/cancel"),
			ProductBasic:         getConfigValue("", "STRIPE_PRODUCT_BASIC", "prod_TCAsbdhM2M9BeK"),
			ProductPremium:       getConfigValue("", "STRIPE_PRODUCT_PREMIUM", "prod_TCAsCz9igJtuJF"),
			ProductPremiumAnnual: getConfigValue("", "STRIPE_PRODUCT_PREMIUM_ANNUAL", "prod_TCAsitjAyYQRLW"),
		},
	}

	durations := []struct {
		dst *time.Duration
		key string
		def string
	}{
		{&cfg.Server.ReadTimeout, "SERVER_READ_TIMEOUT", "15s"},
		{&cfg.Server.WriteTimeout, "SERVER_WRITE_TIMEOUT", "15s"},
		{&cfg.Server.IdleTimeout, "SERVER_IDLE_TIMEOUT", "60s"},
		{&cfg.Auth.TokenTTL, "AUTH_TOKEN_TTL", "8h"},
		{&cfg.Leads.Timeout, "LEADS_TIMEOUT", "10s"},
		{&cfg.Checkout.Timeout, "CHECKOUT_TIMEOUT", "15s"},
		{&cfg.Workspace.IdleTimeout, "WORKSPACE_IDLE_TIMEOUT", "2h"},
		{&cfg.Workspace.PruneInterval, "WORKSPACE_PRUNE_INTERVAL", "10m"},
	}
	for _, d := range durations {
		raw := getConfigValue("", d.key, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.key, raw, err)
		}
		*d.dst = parsed
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required for the sqlite store")
		}
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("invalid store driver: %q (must be sqlite or postgres)", c.Store.Driver)
	}

	if c.Search.IndexPath == "" {
		return errors.New("SEARCH_INDEX_PATH cannot be empty")
	}
	if c.Session.RedisURL == "" && c.Session.Dir == "" {
		return errors.New("either REDIS_URL or SESSION_DIR must be set")
	}

	if c.Auth.TokenTTL <= 0 {
		return errors.New("AUTH_TOKEN_TTL must be positive")
	}
	if c.App.Environment == "production" && c.Auth.KeyHex == "" {
		return errors.New("AUTH_KEY is required in production")
	}

	for _, raw := range []string{c.Leads.ScriptURL, c.Checkout.SupabaseURL, c.Search.MeiliURL} {
		if raw == "" {
			continue
		}
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid url: %q", raw)
		}
	}

	return nil
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue accepts "true", "1", "yes" (case-insensitive) as true.
func getBoolConfigValue(envKey string, defaultValue bool) bool {
	raw := strings.ToLower(os.Getenv(envKey))
	if raw == "" {
		return defaultValue
	}
	return raw == "true" || raw == "1" || raw == "yes"
}

func getIntConfigValue(envKey string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(envKey))
	if err != nil {
		return defaultValue
	}
	return n
}

func getFloatConfigValue(envKey string, defaultValue float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(envKey), 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads KEY=value lines from path. Variables already present in
// the environment win over the file.
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- operator supplied path
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}
		key = strings.TrimSpace(strings.TrimPrefix(key, "export "))
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if _, set := os.LookupEnv(key); !set {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}
