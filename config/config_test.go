package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "DB_DSN", "REDIS_ADDR", "JWT_SIGNING_KEY", "TAX_RATE", "CORS_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg, err := parse(nil)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "ledger.db", cfg.DBDSN)
	assert.Empty(t, cfg.RedisAddr)
	assert.True(t, cfg.TaxRate.IsZero())
	assert.Len(t, cfg.CORSOrigins, 2)
}

func TestParse_EnvThenFlags(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "postgres://ledger@localhost/ledger")
	t.Setenv("TAX_RATE", "0.08")
	t.Setenv("CORS_ORIGINS", "https://admin.school.edu, https://cashier.school.edu")

	cfg, err := parse([]string{"-port", "3000"})
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "0.08", cfg.TaxRate.String())
	assert.Equal(t, []string{"https://admin.school.edu", "https://cashier.school.edu"}, cfg.CORSOrigins)
}

func TestParse_RejectsBadTaxRate(t *testing.T) {
	for _, rate := range []string{"abc", "-0.1", "1.5"} {
		t.Setenv("TAX_RATE", rate)
		_, err := parse(nil)
		assert.Error(t, err, rate)
	}
}

func TestIntEnv_RejectsTrailingJunk(t *testing.T) {
	t.Setenv("PORT", "80abc")
	assert.Equal(t, 8080, intEnv("PORT", 8080))

	t.Setenv("PORT", " 9090 ")
	assert.Equal(t, 9090, intEnv("PORT", 8080))
}
