// Package config loads server and tool configuration from flags, environment
// variables and an optional .env file.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Catalog formats.
const (
	FormatCSV    = "csv"
	FormatSQLite = "sqlite"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Catalog   CatalogConfig
	Recommend RecommendConfig
	Server    ServerConfig
	RateLimit RateLimitConfig
	Sessions  SessionsConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// CatalogConfig describes where the catalog snapshot comes from.
type CatalogConfig struct {
	Path           string
	Format         string        // csv or sqlite; empty infers from the extension
	Clean          bool          // apply the cleaning filters when reading CSV
	ExcludedGenres []string      // genres dropped by cleaning
	Strict         bool          // fail the build on inconsistent records
	Watch          bool          // rebuild when the snapshot file changes
	SettleDelay    time.Duration // quiet period after the last write before rebuilding
}

// RecommendConfig holds ranking configuration.
type RecommendConfig struct {
	TopN int // alternatives cached per session (default: 6)
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string        // default: 8080
	ReadTimeout  time.Duration // default: 15s
	WriteTimeout time.Duration // default: 15s
	IdleTimeout  time.Duration // default: 60s
	CORSOrigins  []string
}

// RateLimitConfig holds per-client rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

// SessionsConfig holds session store configuration.
type SessionsConfig struct {
	TTL  time.Duration
	Path string // empty keeps sessions in memory
}

// LoadConfig loads configuration from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load loads configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("animerec", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")

	catalogPath := fs.String("catalog", "", "Path to the catalog snapshot (CSV or SQLite)")
	catalogFormat := fs.String("catalog-format", "", "Catalog format: csv or sqlite (default: from extension)")
	catalogClean := fs.String("clean", "", "Apply cleaning filters to CSV input (default: true)")
	excludedGenres := fs.String("exclude-genres", "", "Comma-separated genres dropped by cleaning (default: ecchi,hentai)")
	strict := fs.String("strict", "", "Fail the build on inconsistent records (default: false)")
	watch := fs.String("watch", "", "Rebuild when the catalog file changes (default: false)")
	settleDelay := fs.String("settle-delay", "", "Quiet period before rebuilding after a change (default: 2s)")

	topN := fs.String("top-n", "", "Alternatives per recommendation (default: 6)")

	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := fs.String("cors-origins", "", "Comma-separated allowed CORS origins (default: *)")

	rateLimitEnabled := fs.String("rate-limit", "", "Enable per-client rate limiting (default: true)")
	rateLimitRPS := fs.String("rate-limit-rps", "", "Requests per second per client (default: 20)")
	rateLimitBurst := fs.String("rate-limit-burst", "", "Burst size per client (default: 40)")

	sessionTTL := fs.String("session-ttl", "", "Idle session lifetime (default: 30m)")
	sessionPath := fs.String("session-path", "", "Badger directory for sessions (default: in memory)")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Catalog: CatalogConfig{
			Path:           getConfigValue(*catalogPath, "CATALOG_PATH", ""),
			Format:         getConfigValue(*catalogFormat, "CATALOG_FORMAT", ""),
			Clean:          getBoolConfigValue(*catalogClean, "CATALOG_CLEAN", true),
			ExcludedGenres: splitList(getConfigValue(*excludedGenres, "CATALOG_EXCLUDED_GENRES", "ecchi,hentai")),
			Strict:         getBoolConfigValue(*strict, "CATALOG_STRICT", false),
			Watch:          getBoolConfigValue(*watch, "CATALOG_WATCH", false),
		},
		Recommend: RecommendConfig{
			TopN: getIntConfigValue(*topN, "RECOMMEND_TOP_N", 6),
		},
		Server: ServerConfig{
			Port:        getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			CORSOrigins: splitList(getConfigValue(*corsOrigins, "SERVER_CORS_ORIGINS", "*")),
		},
		RateLimit: RateLimitConfig{
			Enabled: getBoolConfigValue(*rateLimitEnabled, "RATE_LIMIT_ENABLED", true),
			RPS:     getFloatConfigValue(*rateLimitRPS, "RATE_LIMIT_RPS", 20),
			Burst:   getIntConfigValue(*rateLimitBurst, "RATE_LIMIT_BURST", 40),
		},
		Sessions: SessionsConfig{
			Path: getConfigValue(*sessionPath, "SESSION_PATH", ""),
		},
	}

	durations := []struct {
		flagValue string
		envKey    string
		def       string
		dest      *time.Duration
	}{
		{*settleDelay, "CATALOG_SETTLE_DELAY", "2s", &cfg.Catalog.SettleDelay},
		{*readTimeout, "SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s", &cfg.Server.WriteTimeout},
		{*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
		{*sessionTTL, "SESSION_TTL", "30m", &cfg.Sessions.TTL},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flagValue, d.envKey, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", strings.ToLower(d.envKey), raw, err)
		}
		*d.dest = parsed
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if cfg.Catalog.Format == "" {
		cfg.Catalog.Format = InferFormat(cfg.Catalog.Path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Catalog.Path == "" {
		return errors.New("catalog path is required")
	}
	if c.Catalog.Format != FormatCSV && c.Catalog.Format != FormatSQLite {
		return fmt.Errorf("invalid catalog format: %s (must be csv or sqlite)", c.Catalog.Format)
	}
	if c.Catalog.Watch && c.Catalog.SettleDelay <= 0 {
		return errors.New("settle delay must be positive when watching the catalog")
	}

	if c.Recommend.TopN < 0 || c.Recommend.TopN > 100 {
		return fmt.Errorf("invalid top-n: %d (must be between 0 and 100)", c.Recommend.TopN)
	}

	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst < 1) {
		return errors.New("rate limit rps must be positive and burst at least 1")
	}

	if c.Sessions.TTL <= 0 {
		return errors.New("session ttl must be positive")
	}

	return nil
}

// InferFormat guesses the catalog format from a file extension.
func InferFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	default:
		return FormatCSV
	}
}

func (c *Config) expandPaths() error {
	var err error
	if c.Catalog.Path, err = expandPath(c.Catalog.Path); err != nil {
		return fmt.Errorf("invalid catalog path: %w", err)
	}
	if c.Sessions.Path, err = expandPath(c.Sessions.Path); err != nil {
		return fmt.Errorf("invalid session path: %w", err)
	}
	return nil
}

// expandPath expands ~ and makes the path absolute. Empty stays empty.
func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
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

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strings.TrimSpace(strValue))
	if err != nil {
		return defaultValue
	}
	return result
}

// getFloatConfigValue returns a float from flag, env var, or default.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.ParseFloat(strings.TrimSpace(strValue), 64)
	if err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
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
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Real env vars take precedence over the .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
