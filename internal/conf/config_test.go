package conf_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iceymoss/go-2fa/internal/conf"
	"github.com/iceymoss/go-2fa/pkg/2fa/envelope"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv 屏蔽宿主机上可能存在的同名环境变量
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"APP_ENV", "TWOFA_ISSUER", "TWOFA_ENCRYPTION_KEY", "TWOFA_STRICT_KEY", "TWOFA_WINDOW", "JWT_SECRET"} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
env: production
twofa:
  issuer: Acme
  encryption_key: 000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f
  strict_key: true
  window: 2
jwt:
  secret: jwt-secret
`)

	cfg, err := conf.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "Acme", cfg.TwoFA.Issuer)
	assert.True(t, cfg.TwoFA.StrictKey)
	assert.Equal(t, 2, cfg.TwoFA.Window)
	assert.Equal(t, "jwt-secret", cfg.JWT.Secret)

	assert.Equal(t, envelope.KeyConfig{
		Material:       "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f",
		FallbackSecret: "jwt-secret",
		Production:     true,
		Strict:         true,
	}, cfg.KeyConfig())
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "twofa:\n  issuer: Acme\n")

	cfg, err := conf.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, 1, cfg.TwoFA.Window)
	assert.Empty(t, cfg.TwoFA.EncryptionKey)
}

func TestLoadConfigExpandEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("TEST_TWOFA_KEY", "expanded passphrase")
	path := writeConfig(t, "twofa:\n  encryption_key: ${TEST_TWOFA_KEY}\n")

	cfg, err := conf.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "expanded passphrase", cfg.TwoFA.EncryptionKey)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("TWOFA_ISSUER", "FromEnv")
	t.Setenv("APP_ENV", "prod")
	path := writeConfig(t, "env: development\ntwofa:\n  issuer: FromFile\n")

	cfg, err := conf.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "FromEnv", cfg.TwoFA.Issuer)
	assert.True(t, cfg.IsProduction())
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := conf.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("TWOFA_ISSUER", "Acme")
	t.Setenv("TWOFA_ENCRYPTION_KEY", "env passphrase")
	t.Setenv("TWOFA_STRICT_KEY", "false")
	t.Setenv("JWT_SECRET", "jwt-secret")

	cfg, err := conf.Load("")
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "Acme", cfg.TwoFA.Issuer)
	assert.Equal(t, "env passphrase", cfg.TwoFA.EncryptionKey)
	assert.Equal(t, 1, cfg.TwoFA.Window)
	assert.Equal(t, "jwt-secret", cfg.KeyConfig().FallbackSecret)
}

func TestLoadFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := conf.LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Env)
	assert.False(t, cfg.IsProduction())

	// 非生产环境没有任何密钥时仍可派生开发密钥
	_, strategy, err := envelope.DeriveKey(cfg.KeyConfig())
	require.NoError(t, err)
	assert.Equal(t, "dev-default", strategy)
}
