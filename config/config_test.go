package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YoungLee-coder/coshub/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "bbolt", cfg.KV.Backend)
	assert.Equal(t, "./data/settings.db", cfg.KV.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Empty(t, cfg.Auth.Secret)
}

func TestLoad_ConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  port: 9090
  trusted_proxies:
    - 10.0.0.0/8
auth:
  secret: super-secret-signing-key
  access_password: hunter2
kv:
  backend: memory
s3:
  endpoint: cos.ap-guangzhou.myqcloud.com
  region: ap-guangzhou
  access_key: AKID
  secret_key: SK
cdn:
  domain: cdn.example.com
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o644))

	cfg, err := config.Load(configPath, nil)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"10.0.0.0/8"}, cfg.Server.TrustedProxies)
	assert.Equal(t, "super-secret-signing-key", cfg.Auth.Secret)
	assert.Equal(t, "hunter2", cfg.Auth.AccessPassword)
	assert.Equal(t, "memory", cfg.KV.Backend)
	assert.Equal(t, "cos.ap-guangzhou.myqcloud.com", cfg.S3.Endpoint)
	assert.Equal(t, "cdn.example.com", cfg.CDN.Domain)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("COSHUB_AUTH_SECRET", "env-secret")
	t.Setenv("COSHUB_ACCESS_PASSWORD", "env-password")
	t.Setenv("COSHUB_CDN_DOMAIN", "env-cdn.example.com")
	t.Setenv("COSHUB_SERVER_PORT", "7070")

	cfg, err := config.Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.Auth.Secret)
	assert.Equal(t, "env-password", cfg.Auth.AccessPassword)
	assert.Equal(t, "env-cdn.example.com", cfg.CDN.Domain)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("COSHUB_KV_BACKEND", "memory")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("kv", "", "")
	flags.Int("port", 0, "")
	require.NoError(t, flags.Parse([]string{"--kv", "none", "--port", "6060"}))

	cfg, err := config.Load("", flags)
	require.NoError(t, err)

	assert.Equal(t, "none", cfg.KV.Backend)
	assert.Equal(t, 6060, cfg.Server.Port)
}

func TestEnvProvider_ServesConfigFileFallbacks(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
auth:
  access_password: file-password
cdn:
  domain: file-cdn.example.com
`), 0o644))

	cfg, err := config.Load(configPath, nil)
	require.NoError(t, err)

	// A resolver built on this provider sees config-file values at the
	// environment tier, not just literal process env.
	env := cfg.EnvProvider()
	assert.Equal(t, "file-password", env("COSHUB_ACCESS_PASSWORD"))
	assert.Equal(t, "file-cdn.example.com", env("COSHUB_CDN_DOMAIN"))

	t.Setenv("COSHUB_UNRELATED", "passthrough")
	assert.Equal(t, "passthrough", env("COSHUB_UNRELATED"))
}

func TestEnvProvider_ProcessEnvStillWins(t *testing.T) {
	t.Setenv("COSHUB_ACCESS_PASSWORD", "env-password")

	cfg, err := config.Load("", nil)
	require.NoError(t, err)

	// Env binds over (absent) file values during Load, so the provider
	// reflects the process environment too.
	env := cfg.EnvProvider()
	assert.Equal(t, "env-password", env("COSHUB_ACCESS_PASSWORD"))
}

func TestLoad_InvalidBackend(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("kv:\n  backend: redis\n"), 0o644))

	_, err := config.Load(configPath, nil)
	assert.Error(t, err)
}

func TestLoad_InvalidTrustedProxy(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath,
		[]byte("server:\n  trusted_proxies:\n    - not-a-cidr\n"), 0o644))

	_, err := config.Load(configPath, nil)
	assert.Error(t, err)
}
