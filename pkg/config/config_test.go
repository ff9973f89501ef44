package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	cfg := fromViper(v)

	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, "RCPT", cfg.Ledger.ReceiptPrefix)
	assert.False(t, cfg.Ledger.AllowSplitPayments)
	assert.True(t, cfg.Inventory.EnforceStock)
	assert.Equal(t, 30, cfg.Alerts.DefaultDays)
	assert.Equal(t, 5, cfg.RateLimit.LoginMax)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.LoginWindow)
	assert.Equal(t, []string{"application/pdf", "image/jpeg", "image/png"}, cfg.Documents.AllowedMIMEs)
}

func TestOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("LEDGER_ALLOW_SPLIT_PAYMENTS", true)
	v.Set("INVENTORY_ENFORCE_STOCK", false)
	v.Set("ALERTS_DEFAULT_DAYS", 0)
	v.Set("JWT_EXPIRATION", "not-a-duration")
	cfg := fromViper(v)

	assert.True(t, cfg.Ledger.AllowSplitPayments)
	assert.False(t, cfg.Inventory.EnforceStock)
	assert.Equal(t, 30, cfg.Alerts.DefaultDays)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.Expiration)
}

func TestSplitAndTrim(t *testing.T) {
	assert.Nil(t, splitAndTrim(""))
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a, ,b "))
}

func TestValidateRejectsDevSecretsInProduction(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	cfg := fromViper(v)
	assert.NoError(t, cfg.Validate())

	cfg.Env = EnvProduction
	assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET")

	cfg.JWT.Secret = "a-real-secret"
	assert.ErrorContains(t, cfg.Validate(), "DOCUMENTS_SIGNED_URL_SECRET")

	cfg.Documents.SignedURLSecret = "another-real-secret"
	assert.NoError(t, cfg.Validate())
}
