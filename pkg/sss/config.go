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

package sss

import (
	"github.com/jeremyhahn/go-smc/pkg/decode"
	"github.com/jeremyhahn/go-smc/pkg/logging"
	"github.com/jeremyhahn/go-smc/pkg/rng"
	"github.com/jeremyhahn/go-smc/pkg/share"
)

// MinThreshold is the smallest supported k.
const MinThreshold = 2

// Config holds the parameters shared by every scheme.
type Config struct {
	// Threshold is k, the number of shares needed to reconstruct.
	Threshold int

	// TotalShares is n, the number of shares produced.
	TotalShares int

	// Random supplies polynomial coefficients. Defaults to
	// rng.NewCryptoSource().
	Random rng.Source

	// Decoder selects the reconstruction decoder. Defaults to
	// decode.KindErasure.
	Decoder decode.Kind

	// Logger defaults to a no-op logger.
	Logger logging.Logger
}

// Validate checks 2 <= k <= n <= 255 and the decoder kind.
func (c *Config) Validate() error {
	if c.Threshold < MinThreshold {
		return Configf("threshold", "%d is below the minimum of %d", c.Threshold, MinThreshold)
	}
	if c.TotalShares < c.Threshold {
		return Configf("total_shares", "%d is less than threshold %d", c.TotalShares, c.Threshold)
	}
	if c.TotalShares > share.MaxShares {
		return Configf("total_shares", "%d exceeds the maximum of %d", c.TotalShares, share.MaxShares)
	}
	if _, err := decode.FactoryFor(c.Decoder); err != nil {
		return Configf("decoder", "%v", err)
	}
	return nil
}

// withDefaults returns a copy of c with unset optional fields filled.
func (c Config) withDefaults() Config {
	if c.Random == nil {
		c.Random = rng.NewCryptoSource()
	}
	if c.Decoder == "" {
		c.Decoder = decode.KindErasure
	}
	c.Logger = logging.OrNoOp(c.Logger)
	return c
}
