package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nutralink/directory/internal/auth"
)

func TestLoadConfigFromFile(t *testing.T) {
	cfg, err := LoadConfig("testdata")
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, []string{"https://app.nutralink.in"}, cfg.Server.CORSOrigins)
	require.Equal(t, 30, cfg.Server.RateLimit.Requests)
	require.Equal(t, 30*time.Second, cfg.Server.RateLimit.Window)
	require.True(t, cfg.Server.RateLimit.Enabled)

	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "db.internal", cfg.Database.Host)
	require.Equal(t, map[string]string{"sslmode": "require"}, cfg.Database.Options)

	require.True(t, cfg.Cache.Redis.Enabled)
	require.Equal(t, "dir:", cfg.Cache.Redis.KeyPrefix)
	require.Equal(t, 5*time.Second, cfg.Cache.Redis.Timeout)

	require.Equal(t, 5*time.Minute, cfg.Search.CacheTTL)
	require.Equal(t, 25, cfg.Search.DefaultPageSize)
	require.Equal(t, 50, cfg.Search.MaxPageSize)
	require.True(t, cfg.Search.LogSearches)

	require.True(t, cfg.Events.Enabled)
	require.Equal(t, "nutralink.events", cfg.Events.Exchange)

	require.Equal(t, "jwt-secret", cfg.Auth.JWT.Secret)
	require.Equal(t, 30*time.Minute, cfg.Auth.JWT.TTL)

	require.Equal(t, 30, cfg.Maintenance.SearchLogRetentionDays)
	require.Equal(t, 365, cfg.Maintenance.AuditRetentionDays)

	require.True(t, cfg.Email.SMTP.Enabled)
	require.Equal(t, 2525, cfg.Email.SMTP.Port)
	require.True(t, cfg.Email.SMTP.UseTLS)
	require.Equal(t, 15*time.Second, cfg.Email.SMTP.Timeout)
	require.Equal(t, "NutraLink Directory", cfg.Email.SMTP.SenderName)
}

func TestLoadConfigDefaultsAndEnvOverrides(t *testing.T) {
	t.Setenv("DIRECTORY_SERVER_PORT", "7070")
	t.Setenv("DIRECTORY_DATABASE_DRIVER", "mysql")
	t.Setenv("DIRECTORY_SERVER_CORS_ORIGINS", "https://a.in,https://b.in")
	t.Setenv("DIRECTORY_SEARCH_CACHE_TTL", "45s")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 7070, cfg.Server.Port)
	require.Equal(t, "mysql", cfg.Database.Driver)
	require.Equal(t, []string{"https://a.in", "https://b.in"}, cfg.Server.CORSOrigins)
	require.Equal(t, 45*time.Second, cfg.Search.CacheTTL)
	require.Equal(t, 20, cfg.Search.DefaultPageSize)
	require.Equal(t, "/metrics", cfg.Monitoring.Prometheus.Endpoint)
	require.Equal(t, "@hourly", cfg.Maintenance.Schedule)
	require.False(t, cfg.Events.Enabled)
}

func TestConfigValidate(t *testing.T) {
	valid := Config{
		Server: ServerConfig{Port: 8080},
		Search: SearchConfig{DefaultPageSize: 20, MaxPageSize: 100},
	}
	require.NoError(t, valid.Validate())

	badPort := valid
	badPort.Server.Port = 0
	require.Error(t, badPort.Validate())

	badPages := valid
	badPages.Search.MaxPageSize = 10
	require.Error(t, badPages.Validate())

	missingURL := valid
	missingURL.Events.Enabled = true
	require.ErrorContains(t, missingURL.Validate(), "events.url")
}

func TestAuthConfigAdapter(t *testing.T) {
	cfg := AuthConfig{JWT: JWTSettings{Secret: "secret", Issuer: " nutralink ", TTL: 30 * time.Minute}}
	require.Equal(t, auth.JWTConfig{
		Secret:         "secret",
		Issuer:         "nutralink",
		AccessTokenTTL: 30 * time.Minute,
	}, cfg.JWTServiceConfig())

	var empty AuthConfig
	require.Equal(t, auth.DefaultAccessTokenTTL, empty.JWTServiceConfig().AccessTokenTTL)
}

func TestDatabaseConfigAdapter(t *testing.T) {
	cfg := DatabaseConfig{Driver: " Postgres ", Host: "db", Port: 5432, Options: map[string]string{"sslmode": "disable"}}
	conn := cfg.ConnectionConfig()
	require.Equal(t, "postgres", conn.Driver)
	require.Equal(t, 5432, conn.Port)

	conn.Options["sslmode"] = "require"
	require.Equal(t, "disable", cfg.Options["sslmode"])
}

func TestCacheConfigAdapter(t *testing.T) {
	cfg := CacheConfig{Redis: RedisCacheConfig{Address: " redis:6379 ", KeyPrefix: "dir:", DB: 2}}
	redisCfg := cfg.RedisClientConfig()
	require.Equal(t, "redis:6379", redisCfg.Address)
	require.Equal(t, "dir:", redisCfg.KeyPrefix)
	require.Equal(t, 2, redisCfg.DB)
}

func TestEmailConfigAdapter(t *testing.T) {
	cfg := EmailConfig{
		SMTP: SMTPConfig{
			Enabled:  true,
			Host:     "smtp.example.com",
			Port:     2525,
			Username: "user",
			Password: "pass",
			From:     "no-reply@example.com",
			UseTLS:   true,
			Timeout:  10 * time.Second,
		},
	}

	settings := cfg.SMTPSettings()
	require.True(t, settings.Enabled)
	require.Equal(t, "smtp.example.com", settings.Host)
	require.Equal(t, 2525, settings.Port)
	require.Equal(t, "no-reply@example.com", settings.From)
	require.Equal(t, 10*time.Second, settings.Timeout)

	cfg.SMTP.Port = 0
	cfg.SMTP.Host = "  smtp.example.com "
	cfg.SMTP.SenderName = " NutraLink Directory "
	settings = cfg.SMTPSettings()
	require.Equal(t, 587, settings.Port)
	require.Equal(t, "smtp.example.com", settings.Host)
	require.Equal(t, "NutraLink Directory", settings.SenderName)

	cfg.SMTP.UseTLS = false
	require.Equal(t, 25, cfg.SMTPSettings().Port)
}
