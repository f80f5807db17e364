package funds

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	program, treasury := newKey(), newKey()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 9090
program_id: `+program.String()+`
platform_treasury: `+treasury.String()+`
auth:
  issuer: compazz
  secret: from-file
max_voting_duration: 72h
schedule:
  sweep_cron: "@every 30s"
`), 0o600))

	t.Setenv("FUNDS_AUTH_SECRET", "from-env")
	t.Setenv("FUNDS_ALLOW_AIRDROP", "true")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "compazz", cfg.Auth.Issuer)
	assert.Equal(t, "from-env", cfg.Auth.Secret, "env overrides the file")
	assert.Equal(t, "funds.db", cfg.DB.Path)
	assert.Equal(t, "@every 5m", cfg.Schedule.GCCron)
	assert.Equal(t, "@every 30s", cfg.Schedule.SweepCron)

	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, program, opts.ProgramID)
	assert.Equal(t, treasury, opts.PlatformTreasury)
	assert.Equal(t, 72*time.Hour, opts.MaxVotingDuration)
	assert.True(t, opts.AllowAirdrop)
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Error(t, cfg.Validate(), "program id is required")
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{Port: 8080, ProgramID: newKey().String(), PlatformTreasury: newKey().String()}
		cfg.Auth.Secret = "secret"
		return cfg
	}

	require.NoError(t, valid().Validate())

	for name, mutate := range map[string]func(*Config){
		"port":      func(c *Config) { c.Port = 0 },
		"program":   func(c *Config) { c.ProgramID = "not base58!" },
		"treasury":  func(c *Config) { c.PlatformTreasury = "" },
		"secret":    func(c *Config) { c.Auth.Secret = "" },
		"max votes": func(c *Config) { c.MaxVotingDuration = -time.Second },
	} {
		cfg := valid()
		mutate(cfg)
		assert.Error(t, cfg.Validate(), name)
	}
}
