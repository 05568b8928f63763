package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"15m", 15 * time.Minute, false},
		{"1h30m", 90 * time.Minute, false},
		{"7d", 7 * 24 * time.Hour, false},
		{" 1d ", 24 * time.Hour, false},
		{"xd", 0, true},
		{"soon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d, err := ParseDuration(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("JWT_SECRET", "access")
	t.Setenv("JWT_REFRESH_SECRET", "refresh")
	t.Setenv("JWT_REFRESH_EXPIRE", "30d")
	t.Setenv("DB_DRIVER", "MySQL")
	t.Setenv("CURRENCY", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, 15*time.Minute, cfg.JWTExpire)
	assert.Equal(t, 30*24*time.Hour, cfg.JWTRefreshExpire)
	assert.Equal(t, "lkr", cfg.Currency)
}

func TestLoad_RequiresSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_REFRESH_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", "access")
	t.Setenv("JWT_REFRESH_SECRET", "refresh")
	t.Setenv("DB_DRIVER", "sqlite")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_AdminBootstrap(t *testing.T) {
	t.Setenv("JWT_SECRET", "access")
	t.Setenv("JWT_REFRESH_SECRET", "refresh")
	t.Setenv("DB_DRIVER", "")

	t.Run("both set", func(t *testing.T) {
		t.Setenv("ADMIN_EMAIL", "admin@greenmart.com")
		t.Setenv("ADMIN_PASSWORD", "admin123")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "admin@greenmart.com", cfg.AdminEmail)
		assert.Equal(t, "admin123", cfg.AdminPassword)
	})

	t.Run("email without password", func(t *testing.T) {
		t.Setenv("ADMIN_EMAIL", "admin@greenmart.com")
		t.Setenv("ADMIN_PASSWORD", "")

		_, err := Load()
		assert.Error(t, err)
	})
}
