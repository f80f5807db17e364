package funds

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/gagliardetto/solana-go"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port int `yaml:"port" env:"FUNDS_PORT"`

	DB struct {
		Path     string `yaml:"path" env:"FUNDS_DB_PATH"`
		InMemory bool   `yaml:"in_memory" env:"FUNDS_DB_IN_MEMORY"`
	} `yaml:"db"`

	ProgramID        string `yaml:"program_id" env:"FUNDS_PROGRAM_ID"`
	PlatformTreasury string `yaml:"platform_treasury" env:"FUNDS_PLATFORM_TREASURY"`

	Auth struct {
		Issuer string `yaml:"issuer" env:"FUNDS_AUTH_ISSUER"`
		Secret string `yaml:"secret" env:"FUNDS_AUTH_SECRET"`
	} `yaml:"auth"`

	Recorder struct {
		SQLitePath string `yaml:"sqlite_path" env:"FUNDS_SQLITE_PATH"`
	} `yaml:"recorder"`

	Schedule struct {
		GCCron    string `yaml:"gc_cron" env:"FUNDS_GC_CRON"`
		SweepCron string `yaml:"sweep_cron" env:"FUNDS_SWEEP_CRON"`
	} `yaml:"schedule"`

	AllowAirdrop      bool          `yaml:"allow_airdrop" env:"FUNDS_ALLOW_AIRDROP"`
	MaxVotingDuration time.Duration `yaml:"max_voting_duration" env:"FUNDS_MAX_VOTING_DURATION"`
}

// LoadConfig reads config from an optional YAML file, then applies environment
// variable overrides and defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}

		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.DB.Path == "" {
		cfg.DB.Path = "funds.db"
	}
	if cfg.Auth.Issuer == "" {
		cfg.Auth.Issuer = "funds"
	}
	if cfg.Schedule.GCCron == "" {
		cfg.Schedule.GCCron = "@every 5m"
	}
	if cfg.Schedule.SweepCron == "" {
		cfg.Schedule.SweepCron = "@every 1m"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.ProgramID == "" {
		return errors.New("program_id is required")
	}
	if _, err := solana.PublicKeyFromBase58(c.ProgramID); err != nil {
		return fmt.Errorf("program_id: %w", err)
	}
	if c.PlatformTreasury == "" {
		return errors.New("platform_treasury is required")
	}
	if _, err := solana.PublicKeyFromBase58(c.PlatformTreasury); err != nil {
		return fmt.Errorf("platform_treasury: %w", err)
	}
	if c.Auth.Secret == "" {
		return errors.New("auth.secret is required")
	}
	if c.MaxVotingDuration < 0 {
		return errors.New("max_voting_duration must not be negative")
	}
	return nil
}

// Options converts a validated config into engine options.
func (c *Config) Options() (Options, error) {
	programID, err := solana.PublicKeyFromBase58(c.ProgramID)
	if err != nil {
		return Options{}, fmt.Errorf("program_id: %w", err)
	}

	treasury, err := solana.PublicKeyFromBase58(c.PlatformTreasury)
	if err != nil {
		return Options{}, fmt.Errorf("platform_treasury: %w", err)
	}

	return Options{
		ProgramID:         programID,
		PlatformTreasury:  treasury,
		MaxVotingDuration: c.MaxVotingDuration,
		AllowAirdrop:      c.AllowAirdrop,
	}, nil
}
