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
	"fmt"

	"github.com/jeremyhahn/go-smc/pkg/decode"
	"github.com/jeremyhahn/go-smc/pkg/gf"
	"github.com/jeremyhahn/go-smc/pkg/logging"
	"github.com/jeremyhahn/go-smc/pkg/rng"
	"github.com/jeremyhahn/go-smc/pkg/share"
)

// Engine evaluates and interpolates polynomials for a Strategy. Share i is
// the evaluation at x = i.
//
// An Engine is immutable after construction. It is safe for concurrent
// use when its random source is.
type Engine struct {
	strategy Strategy
	n        int
	k        int
	field    gf.Field
	random   rng.Source
	factory  decode.Factory
	kind     decode.Kind
	logger   logging.Logger
	xs       []byte
}

var _ Scheme = (*Engine)(nil)

// NewEngine builds an Engine for strategy.
func NewEngine(cfg Config, strategy Strategy) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if strategy.ChunkSize < 1 || strategy.Encode == nil || strategy.Decode == nil ||
		strategy.NewShare == nil || strategy.Check == nil {
		return nil, Configf("strategy", "incomplete strategy for %q", strategy.Algorithm)
	}
	cfg = cfg.withDefaults()

	factory, err := decode.FactoryFor(cfg.Decoder)
	if err != nil {
		return nil, Configf("decoder", "%v", err)
	}

	xs := make([]byte, cfg.TotalShares)
	for i := range xs {
		xs[i] = byte(i + 1)
	}

	return &Engine{
		strategy: strategy,
		n:        cfg.TotalShares,
		k:        cfg.Threshold,
		field:    gf.Default,
		random:   cfg.Random,
		factory:  factory,
		kind:     cfg.Decoder,
		logger:   cfg.Logger.With(logging.String("algorithm", string(strategy.Algorithm))),
		xs:       xs,
	}, nil
}

// NewShamir returns Shamir's scheme.
func NewShamir(cfg Config) (*Engine, error) {
	return NewEngine(cfg, ShamirStrategy())
}

// NewRabinIDS returns Rabin's information dispersal.
func NewRabinIDS(cfg Config) (*Engine, error) {
	return NewEngine(cfg, RabinIDSStrategy(cfg.Threshold))
}

func (e *Engine) Threshold() int             { return e.k }
func (e *Engine) TotalShares() int           { return e.n }
func (e *Engine) Algorithm() share.Algorithm { return e.strategy.Algorithm }

// Decoder returns the configured decoder kind.
func (e *Engine) Decoder() decode.Kind { return e.kind }

// Share splits data into n shares.
func (e *Engine) Share(data []byte) ([]share.Share, error) {
	if len(data) == 0 {
		return nil, share.Invariantf("sss.Share", "no data to share")
	}

	chunk := e.strategy.ChunkSize
	rounds := (len(data) + chunk - 1) / chunk

	ys := make([][]byte, e.n)
	for i := range ys {
		ys[i] = make([]byte, rounds)
	}

	coeffs := make([]byte, e.k)
	for r := 0; r < rounds; r++ {
		end := min((r+1)*chunk, len(data))
		if err := e.strategy.Encode(data[r*chunk:end], coeffs, e.random); err != nil {
			return nil, fmt.Errorf("sss: encode round %d: %w", r, err)
		}
		if gf.IsZero(coeffs) {
			// ys are already zero.
			continue
		}
		for i, x := range e.xs {
			ys[i][r] = e.field.EvaluateAt(coeffs, x)
		}
	}
	clear(coeffs)

	shares := make([]share.Share, e.n)
	for i := range shares {
		s, err := e.strategy.NewShare(int(e.xs[i]), ys[i], len(data))
		if err != nil {
			return nil, err
		}
		shares[i] = s
	}

	e.logger.Debug("shared data",
		logging.Int("bytes", len(data)),
		logging.Int("n", e.n),
		logging.Int("k", e.k))
	return shares, nil
}

// Reconstruct recovers the data from at least k shares. With the erasure
// decoder only the first k shares are read.
func (e *Engine) Reconstruct(shares []share.Share) (*Reconstruction, error) {
	if err := share.Validate(shares, e.n); err != nil {
		return nil, err
	}
	for _, s := range shares {
		if err := e.strategy.Check(s); err != nil {
			return nil, err
		}
	}
	if len(shares) < e.k {
		return nil, InsufficientShares(e.strategy.Algorithm, len(shares), e.k)
	}

	rounds := len(shares[0].YValues())
	for _, s := range shares[1:] {
		if len(s.YValues()) != rounds {
			return nil, share.Invariantf("sss.Reconstruct", "share %d has %d y-values, share %d has %d",
				s.ID(), len(s.YValues()), shares[0].ID(), rounds)
		}
	}
	originalLength := shares[0].OriginalLength()
	if rounds*e.strategy.ChunkSize < originalLength {
		return nil, share.Invariantf("sss.Reconstruct", "%d y-values cannot hold %d bytes", rounds, originalLength)
	}

	dec, err := e.factory(share.XValues(shares), e.k)
	if err != nil {
		return nil, Reconstructf(e.strategy.Algorithm, err, "prepare decoder")
	}

	out := make([]byte, 0, rounds*e.strategy.ChunkSize)
	column := make([]byte, len(shares))
	for r := 0; r < rounds; r++ {
		for i, s := range shares {
			column[i] = s.YValues()[r]
		}
		coeffs, err := dec.Decode(column, 0)
		if err != nil {
			return nil, Reconstructf(e.strategy.Algorithm, err, "decode position %d", r)
		}
		out = e.strategy.Decode(out, coeffs)
	}

	e.logger.Debug("reconstructed data",
		logging.Int("bytes", originalLength),
		logging.Ints("shares", share.IDs(shares)))
	return &Reconstruction{Data: out[:originalLength]}, nil
}
