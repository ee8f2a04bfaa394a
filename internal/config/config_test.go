package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORE_DRIVER", "JWT_SECRET", "AUTH_PROVIDER", "TX_MAX_ATTEMPTS", "TOKEN_EXPIRY", "CORS_ORIGINS", "RECONCILE_FIX"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreMongo, cfg.StoreDriver)
	assert.Equal(t, 8, cfg.TxMaxAttempts)
	assert.Equal(t, 72*time.Hour, cfg.TokenExpiry)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.False(t, cfg.ReconcileFix)
	assert.False(t, cfg.SMTPEnabled())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("TX_MAX_ATTEMPTS", "3")
	t.Setenv("TOKEN_EXPIRY", "15m")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("RECONCILE_FIX", "true")
	t.Setenv("SMTP_HOST", "smtp.example")
	t.Setenv("SMTP_SENDER", "noreply@example")

	cfg := LoadConfig()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, 3, cfg.TxMaxAttempts)
	assert.Equal(t, 15*time.Minute, cfg.TokenExpiry)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.ReconcileFix)
	assert.True(t, cfg.SMTPEnabled())
}

func TestLoadConfig_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("TX_MAX_ATTEMPTS", "zero")
	t.Setenv("TOKEN_EXPIRY", "-1h")

	cfg := LoadConfig()

	assert.Equal(t, 8, cfg.TxMaxAttempts)
	assert.Equal(t, 72*time.Hour, cfg.TokenExpiry)
}

func TestValidate_LocalAuthNeedsSecret(t *testing.T) {
	t.Setenv("AUTH_PROVIDER", "")
	t.Setenv("JWT_SECRET", "")

	cfg := LoadConfig()
	assert.Empty(t, cfg.JWTSecret)
	assert.ErrorIs(t, cfg.Validate(), ErrMissingJWTSecret)

	t.Setenv("JWT_SECRET", "s3cret")
	assert.NoError(t, LoadConfig().Validate())

	t.Setenv("JWT_SECRET", "")
	t.Setenv("AUTH_PROVIDER", "firebase")
	assert.NoError(t, LoadConfig().Validate())
}
