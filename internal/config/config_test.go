package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("APP_ENV", "test")
	t.Setenv("NETOPIA_API_KEY", "key")
	t.Setenv("NETOPIA_POS_SIGNATURE", "pos")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3001, cfg.App.Port)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver())
	assert.Equal(t, "./data.sqlite", cfg.DB.Path)
	assert.Equal(t, "#thank-you", cfg.Netopia.RedirectPath)
	assert.Equal(t, 30*time.Second, cfg.Netopia.Timeout)
	assert.Equal(t, "FA", cfg.SmartBill.Series)
	assert.Equal(t, 19, cfg.SmartBill.TaxPercent)
	assert.Equal(t, 2*time.Minute, cfg.SmartBill.ClaimTTL)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("APP_ENV", "production")
	t.Setenv("NETOPIA_API_KEY", "key")
	t.Setenv("NETOPIA_POS_SIGNATURE", "pos")
	t.Setenv("PORT", "8080")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/orders")
	t.Setenv("CORS_ORIGIN", "https://fitactive.ro, https://www.fitactive.ro,")
	t.Setenv("INVOICE_CLAIM_TTL", "45s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "postgres", cfg.DatabaseDriver())
	assert.Equal(t, []string{"https://fitactive.ro", "https://www.fitactive.ro"}, cfg.CORSOrigins())
	assert.Equal(t, 45*time.Second, cfg.SmartBill.ClaimTTL)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_MissingGatewayCredentials(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("APP_ENV", "test")
	t.Setenv("NETOPIA_API_KEY", "")
	t.Setenv("NETOPIA_POS_SIGNATURE", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NETOPIA_API_KEY")
	assert.Contains(t, err.Error(), "NETOPIA_POS_SIGNATURE")
}

func TestEnvFile(t *testing.T) {
	assert.Equal(t, ".env", EnvFile("development"))
	assert.Equal(t, ".env.test", EnvFile("test"))
	assert.Equal(t, ".env.prod", EnvFile("production"))
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
