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
	"github.com/jeremyhahn/go-smc/pkg/rng"
	"github.com/jeremyhahn/go-smc/pkg/share"
)

// Strategy is what distinguishes one polynomial scheme from another: how a
// chunk of input becomes k coefficients and back, and which share variant
// carries the result.
type Strategy struct {
	Algorithm share.Algorithm

	// ChunkSize is the number of input bytes consumed per polynomial.
	ChunkSize int

	// Encode fills coeffs (length k) from chunk. The final chunk of an
	// input may be shorter than ChunkSize.
	Encode func(chunk, coeffs []byte, random rng.Source) error

	// Decode appends the bytes coeffs encode to out.
	Decode func(out, coeffs []byte) []byte

	// NewShare wraps the y-values of one share.
	NewShare func(id int, y []byte, originalLength int) (share.Share, error)

	// Check rejects shares of the wrong variant.
	Check func(s share.Share) error
}

// ShamirStrategy puts one secret byte in the constant term and fills the
// remaining k-1 coefficients from the random source.
func ShamirStrategy() Strategy {
	return Strategy{
		Algorithm: share.AlgorithmShamir,
		ChunkSize: 1,
		Encode: func(chunk, coeffs []byte, random rng.Source) error {
			coeffs[0] = chunk[0]
			return random.FillBytes(coeffs[1:])
		},
		Decode: func(out, coeffs []byte) []byte {
			return append(out, coeffs[0])
		},
		NewShare: func(id int, y []byte, originalLength int) (share.Share, error) {
			return share.NewShamir(id, y, originalLength)
		},
		Check: func(s share.Share) error {
			_, err := share.AsShamir(s)
			return err
		},
	}
}

// RabinIDSStrategy packs k input bytes directly into the k coefficients,
// zero-padding the final chunk.
func RabinIDSStrategy(k int) Strategy {
	return Strategy{
		Algorithm: share.AlgorithmRabinIDS,
		ChunkSize: k,
		Encode: func(chunk, coeffs []byte, _ rng.Source) error {
			n := copy(coeffs, chunk)
			clear(coeffs[n:])
			return nil
		},
		Decode: func(out, coeffs []byte) []byte {
			return append(out, coeffs...)
		},
		NewShare: func(id int, y []byte, originalLength int) (share.Share, error) {
			return share.NewRabinIDS(id, y, originalLength)
		},
		Check: func(s share.Share) error {
			_, err := share.AsRabinIDS(s)
			return err
		},
	}
}
