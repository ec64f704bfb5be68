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

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-smc/pkg/infocheck"
	"github.com/jeremyhahn/go-smc/pkg/share"
	"github.com/jeremyhahn/go-smc/pkg/sss"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "smc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault_Valid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
scheme:
  algorithm: krawczyk
  threshold: 4
  total_shares: 7
  cipher: chacha20-poly1305
  checking: cevallos
logging:
  level: debug
  format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "krawczyk", cfg.Scheme.Algorithm)
	assert.Equal(t, 4, cfg.Scheme.Threshold)
	assert.Equal(t, 7, cfg.Scheme.TotalShares)
	assert.Equal(t, "cevallos", cfg.Scheme.Checking)
	assert.Equal(t, "json", cfg.Logging.Format)
	// Unset keys keep their defaults.
	assert.Equal(t, "erasure", cfg.Scheme.Decoder)
	assert.Equal(t, 128, cfg.Scheme.SecurityBits)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "scheme:\n  threshold: 2\n  total_shares: 3\n")
	t.Setenv("SMC_SCHEME_THRESHOLD", "3")
	t.Setenv("SMC_SCHEME_TOTAL_SHARES", "9")
	t.Setenv("SMC_LOGGING_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Scheme.Threshold)
	assert.Equal(t, 9, cfg.Scheme.TotalShares)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	_, err = Load(writeConfig(t, "scheme:\n  threshold: 1\n"))
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"algorithm", func(c *Config) { c.Scheme.Algorithm = "xor" }, "invalid scheme algorithm"},
		{"threshold", func(c *Config) { c.Scheme.Threshold = 1 }, "threshold must be at least 2"},
		{"total below threshold", func(c *Config) { c.Scheme.TotalShares = 2 }, "total_shares"},
		{"total above max", func(c *Config) { c.Scheme.TotalShares = 256 }, "total_shares"},
		{"decoder", func(c *Config) { c.Scheme.Decoder = "magic" }, "invalid scheme decoder"},
		{"cipher", func(c *Config) { c.Scheme.Cipher = "rot13" }, "invalid scheme cipher"},
		{"checking", func(c *Config) { c.Scheme.Checking = "trust-me" }, "invalid scheme checking"},
		{"mac", func(c *Config) { c.Scheme.MAC = "crc32" }, "invalid scheme mac"},
		{"random mode", func(c *Config) { c.Random.Mode = "dice" }, "invalid random mode"},
		{"pkcs11 module", func(c *Config) { c.Random.Mode = "pkcs11" }, "pkcs11 module is required"},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }, "invalid log level"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "invalid log format"},
		{"metrics path", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Path = "" }, "metrics path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Scheme.Algorithm = "rabin-ids"
	cfg.Metrics.Enabled = true

	path := filepath.Join(t.TempDir(), "nested", "smc.yaml")
	require.NoError(t, Save(cfg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "algorithm: rabin-ids")
	assert.NotContains(t, string(data), "seed")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestNewScheme(t *testing.T) {
	tests := []struct {
		algorithm string
		checking  string
	}{
		{"shamir", CheckingNone},
		{"rabin-ids", CheckingRabinBenOr},
		{"krawczyk", CheckingNone},
		{"krawczyk", CheckingRabinBenOr},
	}
	for _, tt := range tests {
		t.Run(tt.algorithm+"/"+tt.checking, func(t *testing.T) {
			cfg := Default()
			cfg.Scheme.Algorithm = tt.algorithm
			cfg.Scheme.Checking = tt.checking
			cfg.Random.Seed = "config test"

			random, closer, err := cfg.NewRandom()
			require.NoError(t, err)
			defer closer.Close()

			scheme, err := cfg.NewScheme(random, nil)
			require.NoError(t, err)
			assert.Equal(t, share.Algorithm(tt.algorithm), scheme.Algorithm())
			_, checked := scheme.(*infocheck.Scheme)
			assert.Equal(t, tt.checking != CheckingNone, checked)

			shares, err := scheme.Share([]byte("configured secret"))
			require.NoError(t, err)
			got, err := scheme.Reconstruct(shares[:3])
			require.NoError(t, err)
			assert.Equal(t, []byte("configured secret"), got.Data)
		})
	}
}

func TestNewScheme_CevallosConstraint(t *testing.T) {
	cfg := Default()
	cfg.Scheme.Checking = CheckingCevallos
	cfg.Scheme.Threshold = 2
	cfg.Scheme.TotalShares = 5
	_, err := cfg.NewScheme(nil, nil)
	assert.ErrorIs(t, err, sss.ErrConfiguration)

	cfg.Scheme.Threshold = 3
	_, err = cfg.NewScheme(nil, nil)
	assert.NoError(t, err)
}

func TestNewLogger(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "json"
	cfg.Logging.Level = "warn"

	var buf bytes.Buffer
	logger, err := cfg.NewLogger(&buf)
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.True(t, strings.Contains(buf.String(), `"msg":"shown"`))
}

func TestNewRandom_Software(t *testing.T) {
	cfg := Default()
	cfg.Random.Mode = "software"
	random, closer, err := cfg.NewRandom()
	require.NoError(t, err)
	defer closer.Close()

	b := make([]byte, 32)
	require.NoError(t, random.FillBytes(b))
	assert.NotContains(t, b, byte(0))
}
