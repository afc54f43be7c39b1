package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:       AppConfig{Environment: "development"},
		Logger:    LoggerConfig{Level: "info"},
		Catalog:   CatalogConfig{Path: "/data/anime.csv", Format: FormatCSV, SettleDelay: time.Second},
		Recommend: RecommendConfig{TopN: 6},
		RateLimit: RateLimitConfig{Enabled: true, RPS: 10, Burst: 20},
		Sessions:  SessionsConfig{TTL: time.Minute},
	}
}

var configEnvKeys = []string{
	"ENV", "LOG_LEVEL", "CATALOG_PATH", "CATALOG_FORMAT", "CATALOG_CLEAN", "CATALOG_EXCLUDED_GENRES",
	"CATALOG_STRICT", "CATALOG_WATCH", "CATALOG_SETTLE_DELAY", "RECOMMEND_TOP_N", "SERVER_PORT",
	"SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT", "SERVER_IDLE_TIMEOUT", "SERVER_CORS_ORIGINS",
	"RATE_LIMIT_ENABLED", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "SESSION_TTL", "SESSION_PATH",
}

// noEnvFile clears the config environment and returns a flag pointing at a
// missing .env file.
func noEnvFile(t *testing.T) string {
	t.Helper()
	for _, k := range configEnvKeys {
		if _, set := os.LookupEnv(k); set {
			t.Setenv(k, "")
		}
	}
	return "-env-file=" + filepath.Join(t.TempDir(), "missing.env")
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"missing environment", func(c *Config) { c.App.Environment = "" }, "ENV is required"},
		{"unknown environment", func(c *Config) { c.App.Environment = "test" }, "invalid environment"},
		{"case sensitive environment", func(c *Config) { c.App.Environment = "DEVELOPMENT" }, "invalid environment"},
		{"bad log level", func(c *Config) { c.Logger.Level = "trace" }, "invalid log level"},
		{"missing catalog", func(c *Config) { c.Catalog.Path = "" }, "catalog path"},
		{"bad format", func(c *Config) { c.Catalog.Format = "json" }, "invalid catalog format"},
		{"watch without settle delay", func(c *Config) { c.Catalog.Watch = true; c.Catalog.SettleDelay = 0 }, "settle delay"},
		{"negative top-n", func(c *Config) { c.Recommend.TopN = -1 }, "invalid top-n"},
		{"huge top-n", func(c *Config) { c.Recommend.TopN = 101 }, "invalid top-n"},
		{"zero rps", func(c *Config) { c.RateLimit.RPS = 0 }, "rate limit"},
		{"zero ttl", func(c *Config) { c.Sessions.TTL = 0 }, "session ttl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidate_RateLimitDisabledSkipsChecks(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimit = RateLimitConfig{Enabled: false}
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Defaults(t *testing.T) {
	envFlag := noEnvFile(t)
	t.Setenv("CATALOG_PATH", "/data/anime.csv")

	cfg, err := Load([]string{envFlag})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "/data/anime.csv", cfg.Catalog.Path)
	assert.Equal(t, FormatCSV, cfg.Catalog.Format)
	assert.True(t, cfg.Catalog.Clean)
	assert.Equal(t, []string{"ecchi", "hentai"}, cfg.Catalog.ExcludedGenres)
	assert.False(t, cfg.Catalog.Strict)
	assert.Equal(t, 2*time.Second, cfg.Catalog.SettleDelay)
	assert.Equal(t, 6, cfg.Recommend.TopN)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.InDelta(t, 20.0, cfg.RateLimit.RPS, 0.001)
	assert.Equal(t, 40, cfg.RateLimit.Burst)
	assert.Equal(t, 30*time.Minute, cfg.Sessions.TTL)
	assert.Empty(t, cfg.Sessions.Path)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	envFlag := noEnvFile(t)
	t.Setenv("CATALOG_PATH", "/data/anime.csv")
	t.Setenv("RECOMMEND_TOP_N", "10")
	t.Setenv("SERVER_PORT", "9000")

	cfg, err := Load([]string{
		envFlag,
		"-catalog", "/data/catalog.db",
		"-top-n", "12",
		"-strict", "true",
		"-cors-origins", "http://a.test, http://b.test",
	})
	require.NoError(t, err)

	assert.Equal(t, "/data/catalog.db", cfg.Catalog.Path)
	assert.Equal(t, FormatSQLite, cfg.Catalog.Format, "inferred from extension")
	assert.Equal(t, 12, cfg.Recommend.TopN)
	assert.True(t, cfg.Catalog.Strict)
	assert.Equal(t, "9000", cfg.Server.Port, "env used when no flag")
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
}

func TestLoad_InvalidDuration(t *testing.T) {
	envFlag := noEnvFile(t)
	t.Setenv("CATALOG_PATH", "/data/anime.csv")

	_, err := Load([]string{envFlag, "-session-ttl", "soon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session_ttl")
}

func TestLoad_MissingCatalog(t *testing.T) {
	envFlag := noEnvFile(t)
	t.Setenv("CATALOG_PATH", "")

	_, err := Load([]string{envFlag})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog path")
}

func TestLoad_RelativePathExpanded(t *testing.T) {
	envFlag := noEnvFile(t)
	t.Setenv("CATALOG_PATH", "")

	cfg, err := Load([]string{envFlag, "-catalog", "data/anime.csv"})
	require.NoError(t, err)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, "data", "anime.csv"), cfg.Catalog.Path)
}

func TestInferFormat(t *testing.T) {
	assert.Equal(t, FormatSQLite, InferFormat("/x/catalog.DB"))
	assert.Equal(t, FormatSQLite, InferFormat("catalog.sqlite3"))
	assert.Equal(t, FormatCSV, InferFormat("anime.csv"))
	assert.Equal(t, FormatCSV, InferFormat(""))
}

func TestExpandPath(t *testing.T) {
	got, err := expandPath("")
	require.NoError(t, err)
	assert.Empty(t, got)

	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)
	got, err = expandPath("~/anime/catalog.db")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(homeDir, "anime", "catalog.db"), got)

	got, err = expandPath("/abs/../abs/file.csv")
	require.NoError(t, err)
	assert.Equal(t, "/abs/file.csv", got)
}

func TestGetConfigValue_Precedence(t *testing.T) {
	assert.Equal(t, "flag-value", getConfigValue("flag-value", "TEST_ENV_KEY", "default-value"))

	t.Setenv("TEST_ENV_KEY", "env-value")
	assert.Equal(t, "env-value", getConfigValue("", "TEST_ENV_KEY", "default-value"))

	assert.Equal(t, "default-value", getConfigValue("", "NONEXISTENT_KEY", "default-value"))
}

func TestTypedConfigValues(t *testing.T) {
	assert.True(t, getBoolConfigValue("YES", "UNSET_BOOL", false))
	assert.False(t, getBoolConfigValue("nope", "UNSET_BOOL", true))
	assert.True(t, getBoolConfigValue("", "UNSET_BOOL", true))

	assert.Equal(t, 7, getIntConfigValue("7", "UNSET_INT", 1))
	assert.Equal(t, 1, getIntConfigValue("seven", "UNSET_INT", 1))

	assert.InDelta(t, 2.5, getFloatConfigValue("2.5", "UNSET_FLOAT", 1), 0.001)
	assert.InDelta(t, 1.0, getFloatConfigValue("x", "UNSET_FLOAT", 1), 0.001)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b ,"))
	assert.Empty(t, splitList(""))
}

func TestLoadEnvFile_ValidFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	content := `# Test env file
ENV=staging
LOG_LEVEL=debug
# Comment line
QUOTED_VALUE="some value"
SINGLE_QUOTED='another value'
`
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o644))

	for _, k := range []string{"ENV", "LOG_LEVEL", "QUOTED_VALUE", "SINGLE_QUOTED"} {
		t.Setenv(k, "")
	}

	require.NoError(t, loadEnvFile(envFile))

	assert.Equal(t, "staging", os.Getenv("ENV"))
	assert.Equal(t, "debug", os.Getenv("LOG_LEVEL"))
	assert.Equal(t, "some value", os.Getenv("QUOTED_VALUE"))
	assert.Equal(t, "another value", os.Getenv("SINGLE_QUOTED"))
}

func TestLoadEnvFile_InvalidFormat(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	content := "VALID_KEY=valid_value\nINVALID LINE WITHOUT EQUALS\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o644))

	err := loadEnvFile(envFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestLoadEnvFile_ExistingEnvVarsNotOverwritten(t *testing.T) {
	t.Setenv("TEST_VAR", "original-value")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("TEST_VAR=new-value"), 0o644))

	require.NoError(t, loadEnvFile(envFile))
	assert.Equal(t, "original-value", os.Getenv("TEST_VAR"))
}

func TestLoadEnvFile_NonExistentFile(t *testing.T) {
	assert.Error(t, loadEnvFile("/nonexistent/file/.env"))
}
