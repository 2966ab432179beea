package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)
	require.NotNil(t, cfg)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "GDN2025", cfg.Registration.IDPrefix)
	assert.Equal(t, 4, cfg.Registration.IDPad)
	assert.Equal(t, 72*time.Hour, cfg.Tickets.SignedURLTTL)
	assert.Equal(t, 3, cfg.Verifier.ReadAttempts)
	assert.Equal(t, 100*time.Millisecond, cfg.Verifier.ReadBackoff)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Empty(t, cfg.Bootstrap.AdminEmail)
	assert.Equal(t, "Festival Admin", cfg.Bootstrap.AdminName)
	assert.Equal(t, 30*time.Second, cfg.Dashboard.CacheTTL)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("REGISTRATION_ID_PREFIX", " GDN2026 ")
	v.Set("REGISTRATION_ID_PAD", 0)
	v.Set("ALLOWED_ORIGINS", "https://gardenia.example, ,https://admin.gardenia.example")
	v.Set("TICKETS_SIGNED_URL_TTL", "not-a-duration")
	v.Set("VERIFIER_READ_ATTEMPTS", -1)
	v.Set("BOOTSTRAP_ADMIN_EMAIL", " Admin@Gardenia.Example ")

	cfg := fromViper(v)
	assert.Equal(t, "GDN2026", cfg.Registration.IDPrefix)
	assert.Equal(t, 4, cfg.Registration.IDPad)
	assert.Equal(t, []string{"https://gardenia.example", "https://admin.gardenia.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 72*time.Hour, cfg.Tickets.SignedURLTTL)
	assert.Equal(t, 3, cfg.Verifier.ReadAttempts)
	assert.Equal(t, "admin@gardenia.example", cfg.Bootstrap.AdminEmail)
}
