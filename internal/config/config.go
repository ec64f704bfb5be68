// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-smc.
//
// go-smc is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package config loads the smc configuration file. Values come from, in
// increasing precedence: built-in defaults, the YAML file, and SMC_*
// environment variables (SMC_SCHEME_THRESHOLD, SMC_LOGGING_LEVEL, ...).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/jeremyhahn/go-smc/pkg/crypto/cipher"
	"github.com/jeremyhahn/go-smc/pkg/crypto/mac"
	"github.com/jeremyhahn/go-smc/pkg/decode"
	"github.com/jeremyhahn/go-smc/pkg/logging"
	"github.com/jeremyhahn/go-smc/pkg/rng"
	"github.com/jeremyhahn/go-smc/pkg/share"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SMC"

// Checking values for SchemeConfig.Checking.
const (
	CheckingNone       = "none"
	CheckingRabinBenOr = string(share.AlgorithmRabinBenOr)
	CheckingCevallos   = string(share.AlgorithmCevallos)
)

// Config is the complete smc configuration.
type Config struct {
	Scheme  SchemeConfig  `yaml:"scheme" mapstructure:"scheme"`
	Random  RandomConfig  `yaml:"random" mapstructure:"random"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// SchemeConfig selects the sharing scheme.
type SchemeConfig struct {
	Algorithm   string `yaml:"algorithm" mapstructure:"algorithm"` // shamir, rabin-ids, krawczyk
	Threshold   int    `yaml:"threshold" mapstructure:"threshold"`
	TotalShares int    `yaml:"total_shares" mapstructure:"total_shares"`
	Decoder     string `yaml:"decoder" mapstructure:"decoder"` // erasure, berlekamp-welch

	// Cipher is used by krawczyk only: auto, aes256-gcm, chacha20-poly1305.
	Cipher string `yaml:"cipher" mapstructure:"cipher"`

	// Checking wraps the scheme with information checking: none,
	// rabin-ben-or, cevallos.
	Checking     string `yaml:"checking" mapstructure:"checking"`
	MAC          string `yaml:"mac" mapstructure:"mac"`
	SecurityBits int    `yaml:"security_bits" mapstructure:"security_bits"`
}

// RandomConfig selects the random source.
type RandomConfig struct {
	Mode     string `yaml:"mode" mapstructure:"mode"` // auto, software, tpm2, pkcs11
	Fallback string `yaml:"fallback" mapstructure:"fallback"`

	// Seed makes every run deterministic. For tests and reproducible
	// examples only.
	Seed string `yaml:"seed,omitempty" mapstructure:"seed"`

	TPM2   TPM2Config   `yaml:"tpm2" mapstructure:"tpm2"`
	PKCS11 PKCS11Config `yaml:"pkcs11" mapstructure:"pkcs11"`
}

// TPM2Config configures TPM2 entropy.
type TPM2Config struct {
	Device        string `yaml:"device" mapstructure:"device"`
	UseSimulator  bool   `yaml:"use_simulator" mapstructure:"use_simulator"`
	SimulatorHost string `yaml:"simulator_host" mapstructure:"simulator_host"`
	SimulatorPort int    `yaml:"simulator_port" mapstructure:"simulator_port"`
}

// PKCS11Config configures PKCS#11 entropy.
type PKCS11Config struct {
	Module string `yaml:"module" mapstructure:"module"`
	SlotID uint   `yaml:"slot_id" mapstructure:"slot_id"`
	PIN    string `yaml:"pin,omitempty" mapstructure:"pin"`
}

// LoggingConfig controls logging behavior
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// MetricsConfig controls the Prometheus text dump written after each
// command.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Scheme: SchemeConfig{
			Algorithm:    string(share.AlgorithmShamir),
			Threshold:    3,
			TotalShares:  5,
			Decoder:      string(decode.KindErasure),
			Cipher:       cipher.Auto,
			Checking:     CheckingNone,
			MAC:          mac.HMACSHA256,
			SecurityBits: 128,
		},
		Random: RandomConfig{
			Mode:     string(rng.ModeAuto),
			Fallback: string(rng.ModeSoftware),
			TPM2: TPM2Config{
				Device:        "/dev/tpm0",
				SimulatorHost: "localhost",
				SimulatorPort: 2321,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: string(logging.FormatText),
		},
		Metrics: MetricsConfig{
			Path: "smc-metrics.prom",
		},
	}
}

// Load reads path, applies environment overrides and validates the result.
// An empty path loads the defaults with environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("scheme.algorithm", d.Scheme.Algorithm)
	v.SetDefault("scheme.threshold", d.Scheme.Threshold)
	v.SetDefault("scheme.total_shares", d.Scheme.TotalShares)
	v.SetDefault("scheme.decoder", d.Scheme.Decoder)
	v.SetDefault("scheme.cipher", d.Scheme.Cipher)
	v.SetDefault("scheme.checking", d.Scheme.Checking)
	v.SetDefault("scheme.mac", d.Scheme.MAC)
	v.SetDefault("scheme.security_bits", d.Scheme.SecurityBits)

	v.SetDefault("random.mode", d.Random.Mode)
	v.SetDefault("random.fallback", d.Random.Fallback)
	v.SetDefault("random.seed", d.Random.Seed)
	v.SetDefault("random.tpm2.device", d.Random.TPM2.Device)
	v.SetDefault("random.tpm2.use_simulator", d.Random.TPM2.UseSimulator)
	v.SetDefault("random.tpm2.simulator_host", d.Random.TPM2.SimulatorHost)
	v.SetDefault("random.tpm2.simulator_port", d.Random.TPM2.SimulatorPort)
	v.SetDefault("random.pkcs11.module", d.Random.PKCS11.Module)
	v.SetDefault("random.pkcs11.slot_id", d.Random.PKCS11.SlotID)
	v.SetDefault("random.pkcs11.pin", d.Random.PKCS11.PIN)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", d.Metrics.Path)
}

// Save writes cfg to path as YAML, creating parent directories.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	switch share.Algorithm(c.Scheme.Algorithm) {
	case share.AlgorithmShamir, share.AlgorithmRabinIDS, share.AlgorithmKrawczyk:
	default:
		errs = append(errs, fmt.Errorf("invalid scheme algorithm: %s (must be shamir, rabin-ids, or krawczyk)", c.Scheme.Algorithm))
	}
	if c.Scheme.Threshold < 2 {
		errs = append(errs, fmt.Errorf("scheme threshold must be at least 2, got %d", c.Scheme.Threshold))
	}
	if c.Scheme.TotalShares < c.Scheme.Threshold || c.Scheme.TotalShares > share.MaxShares {
		errs = append(errs, fmt.Errorf("scheme total_shares must be in [threshold, %d], got %d", share.MaxShares, c.Scheme.TotalShares))
	}
	if _, err := decode.FactoryFor(decode.Kind(c.Scheme.Decoder)); err != nil {
		errs = append(errs, fmt.Errorf("invalid scheme decoder: %w", err))
	}
	if _, err := cipher.ByName(c.Scheme.Cipher); err != nil {
		errs = append(errs, fmt.Errorf("invalid scheme cipher: %w", err))
	}
	switch c.Scheme.Checking {
	case "", CheckingNone, CheckingRabinBenOr, CheckingCevallos:
	default:
		errs = append(errs, fmt.Errorf("invalid scheme checking: %s (must be none, rabin-ben-or, or cevallos)", c.Scheme.Checking))
	}
	if _, err := mac.ByName(c.Scheme.MAC); err != nil {
		errs = append(errs, fmt.Errorf("invalid scheme mac: %w", err))
	}
	if c.Scheme.SecurityBits < 0 {
		errs = append(errs, fmt.Errorf("scheme security_bits must not be negative"))
	}

	for key, mode := range map[string]string{"mode": c.Random.Mode, "fallback": c.Random.Fallback} {
		switch rng.Mode(mode) {
		case "", rng.ModeAuto, rng.ModeSoftware, rng.ModeTPM2, rng.ModePKCS11:
		default:
			errs = append(errs, fmt.Errorf("invalid random %s: %s", key, mode))
		}
	}
	if c.Random.Mode == string(rng.ModePKCS11) && c.Random.PKCS11.Module == "" {
		errs = append(errs, fmt.Errorf("random pkcs11 module is required when mode is pkcs11"))
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level))
	}
	switch logging.Format(strings.ToLower(c.Logging.Format)) {
	case logging.FormatText, logging.FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("invalid log format: %s (must be text or json)", c.Logging.Format))
	}

	if c.Metrics.Enabled && c.Metrics.Path == "" {
		errs = append(errs, fmt.Errorf("metrics path is required when metrics are enabled"))
	}
	return errors.Join(errs...)
}
