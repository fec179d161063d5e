package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	require.Equal(t, "dev", cfg.Env)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "sqlite", cfg.DatabaseDriver)
	require.Equal(t, 60*time.Second, cfg.VerificationTTL)
	require.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
	require.Equal(t, "KurdForest", cfg.WebsiteName)
	require.False(t, cfg.SecureCookies)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "prod")
	t.Setenv("VERIFICATION_TTL", "90")
	t.Setenv("HOUSEKEEPING_INTERVAL", "15m")
	t.Setenv("TMDB_KEY", "k")
	t.Setenv("PENDING_CAPACITY", "not-a-number")

	cfg := LoadConfig()
	require.Equal(t, 9090, cfg.Port)
	require.True(t, cfg.SecureCookies, "prod defaults to secure cookies")
	require.Equal(t, 90*time.Second, cfg.VerificationTTL)
	require.Equal(t, 15*time.Minute, cfg.HousekeepingInterval)
	require.Equal(t, "k", cfg.TMDBKey)
	require.Equal(t, 10000, cfg.PendingCapacity)
}

func TestResolveLayers(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("WEBSITE_NAME", "FromEnv")

	path := filepath.Join(t.TempDir(), "kurdforest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"port: 7070\nverification-ttl: 2m\nemail-host: smtp.example.com\n",
	), 0o600))

	base := LoadConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs, base)
	require.NoError(t, fs.Parse([]string{"--email-host=smtp.flag.com"}))

	cfg, err := Resolve(base, path, fs)
	require.NoError(t, err)

	require.Equal(t, 7070, cfg.Port, "file beats env")
	require.Equal(t, 2*time.Minute, cfg.VerificationTTL)
	require.Equal(t, "smtp.flag.com", cfg.EmailHost, "flag beats file")
	require.Equal(t, "FromEnv", cfg.WebsiteName, "env survives unset flags")
}

func TestResolveWithoutFile(t *testing.T) {
	base := LoadConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs, base)
	require.NoError(t, fs.Parse([]string{"--port=1234", "--database-driver=postgres", "--database-url=postgres://x"}))

	cfg, err := Resolve(base, "", fs)
	require.NoError(t, err)
	require.Equal(t, 1234, cfg.Port)
	require.Equal(t, "postgres", cfg.DatabaseDriver)
	require.Equal(t, base.SessionTTL, cfg.SessionTTL)
}

func TestResolveMissingFile(t *testing.T) {
	_, err := Resolve(LoadConfig(), filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.DatabaseDriver = "mongo" }},
		{"postgres without url", func(c *Config) { c.DatabaseDriver = "postgres"; c.DatabaseURL = "" }},
		{"bad port", func(c *Config) { c.Port = 0 }},
		{"zero ttl", func(c *Config) { c.VerificationTTL = 0 }},
		{"negative capacity", func(c *Config) { c.PendingCapacity = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LoadConfig()
			tt.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("KF_DOTENV_PROBE=from-file\n"), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
		_ = os.Unsetenv("KF_DOTENV_PROBE")
	})

	require.Equal(t, ".env", LoadDotEnv())
	require.Equal(t, "from-file", os.Getenv("KF_DOTENV_PROBE"))
}
