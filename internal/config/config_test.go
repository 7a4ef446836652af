package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  path: /tmp/rentals.db
auth:
  jwt_secret: unit-test-secret
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, float64(20), cfg.API.RateLimit.RPS)
	assert.Equal(t, "yos_session", cfg.Auth.CookieName)
	assert.Equal(t, 24, cfg.Auth.TokenTTLHours)
	assert.Equal(t, 90, cfg.Booking.MaxBookingDays)
	assert.Equal(t, int64(10), cfg.Fees.TaxRatePercent)
	assert.Equal(t, int64(20), cfg.Fees.CancellationFeePercent)
	assert.Equal(t, 48, cfg.Fees.CancellationWindowHours)
	assert.Equal(t, int64(50), cfg.Fees.LateSurchargePercent)
	assert.Equal(t, "https://api.paystack.co", cfg.Gateway.BaseURL)
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("TEST_JWT_SECRET", "from-env")
	path := writeConfig(t, `
database:
  path: /tmp/rentals.db
auth:
  jwt_secret: ${TEST_JWT_SECRET}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
}

func TestLoad_RejectsMissingSecret(t *testing.T) {
	path := writeConfig(t, `
database:
  path: /tmp/rentals.db
auth:
  jwt_secret: CHANGE_ME
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_RejectsBadFeePercents(t *testing.T) {
	path := writeConfig(t, `
database:
  path: /tmp/rentals.db
auth:
  jwt_secret: unit-test-secret
fees:
  tax_rate_percent: 140
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
