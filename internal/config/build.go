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
	"fmt"
	"io"
	"strings"

	"github.com/jeremyhahn/go-smc/pkg/crypto/cipher"
	"github.com/jeremyhahn/go-smc/pkg/crypto/mac"
	"github.com/jeremyhahn/go-smc/pkg/decode"
	"github.com/jeremyhahn/go-smc/pkg/infocheck"
	"github.com/jeremyhahn/go-smc/pkg/krawczyk"
	"github.com/jeremyhahn/go-smc/pkg/logging"
	"github.com/jeremyhahn/go-smc/pkg/rng"
	"github.com/jeremyhahn/go-smc/pkg/share"
	"github.com/jeremyhahn/go-smc/pkg/sss"
)

// NewLogger builds the configured logger writing to w.
func (c *Config) NewLogger(w io.Writer) (logging.Logger, error) {
	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, err
	}
	return logging.NewSlogAdapter(&logging.SlogConfig{
		Level:  level,
		Format: logging.Format(strings.ToLower(c.Logging.Format)),
		Output: w,
	}), nil
}

// NewRandom opens the configured random source. The returned closer
// releases any hardware device and is never nil.
func (c *Config) NewRandom() (rng.Source, io.Closer, error) {
	if c.Random.Seed != "" {
		src, err := rng.NewStreamSource([]byte(c.Random.Seed))
		if err != nil {
			return nil, nil, err
		}
		return src, nopCloser{}, nil
	}
	src, err := rng.NewEntropySource(&rng.Config{
		Mode:         rng.Mode(c.Random.Mode),
		FallbackMode: rng.Mode(c.Random.Fallback),
		TPM2: &rng.TPM2Config{
			Device:        c.Random.TPM2.Device,
			UseSimulator:  c.Random.TPM2.UseSimulator,
			SimulatorHost: c.Random.TPM2.SimulatorHost,
			SimulatorPort: c.Random.TPM2.SimulatorPort,
		},
		PKCS11: &rng.PKCS11Config{
			Module: c.Random.PKCS11.Module,
			SlotID: c.Random.PKCS11.SlotID,
			PIN:    c.Random.PKCS11.PIN,
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open random source: %w", err)
	}
	return src, src, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewScheme builds the configured scheme over random.
func (c *Config) NewScheme(random rng.Source, logger logging.Logger) (sss.Scheme, error) {
	s := c.Scheme
	base := sss.Config{
		Threshold:   s.Threshold,
		TotalShares: s.TotalShares,
		Random:      random,
		Decoder:     decode.Kind(s.Decoder),
		Logger:      logger,
	}

	var scheme sss.Scheme
	var err error
	switch share.Algorithm(s.Algorithm) {
	case share.AlgorithmShamir:
		scheme, err = sss.NewShamir(base)
	case share.AlgorithmRabinIDS:
		scheme, err = sss.NewRabinIDS(base)
	case share.AlgorithmKrawczyk:
		var ciph cipher.RangeDecrypter
		if ciph, err = cipher.ByName(s.Cipher); err != nil {
			return nil, err
		}
		scheme, err = krawczyk.New(krawczyk.Config{
			Threshold:   s.Threshold,
			TotalShares: s.TotalShares,
			Random:      random,
			Cipher:      ciph,
			Decoder:     decode.Kind(s.Decoder),
			Logger:      logger,
		})
	default:
		return nil, sss.Configf("algorithm", "unknown algorithm %q", s.Algorithm)
	}
	if err != nil {
		return nil, err
	}
	return c.withChecking(scheme, random, logger)
}

func (c *Config) withChecking(scheme sss.Scheme, random rng.Source, logger logging.Logger) (sss.Scheme, error) {
	if c.Scheme.Checking == "" || c.Scheme.Checking == CheckingNone {
		return scheme, nil
	}
	fn, err := mac.ByName(c.Scheme.MAC)
	if err != nil {
		return nil, err
	}
	cfg := infocheck.Config{
		MAC:          fn,
		Random:       random,
		SecurityBits: c.Scheme.SecurityBits,
		Logger:       logger,
	}
	switch c.Scheme.Checking {
	case CheckingRabinBenOr:
		return infocheck.NewRabinBenOr(scheme, cfg)
	case CheckingCevallos:
		return infocheck.NewCevallos(scheme, cfg)
	default:
		return nil, sss.Configf("checking", "unknown information checking %q", c.Scheme.Checking)
	}
}
