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

package decode

import (
	"fmt"

	"github.com/jeremyhahn/go-smc/pkg/gf"
	"github.com/jeremyhahn/go-smc/pkg/matrix"
)

// Erasure decodes by inverting the Vandermonde matrix of the first k
// x-values. It assumes every supplied point is correct.
type Erasure struct {
	points  int
	k       int
	inverse *matrix.Matrix
}

var _ Decoder = (*Erasure)(nil)

// NewErasure prepares an erasure decoder over gf.Default.
func NewErasure(xs []byte, k int) (Decoder, error) {
	return NewErasureWithField(gf.Default, xs, k)
}

// NewErasureWithField prepares an erasure decoder over field.
func NewErasureWithField(field gf.Field, xs []byte, k int) (*Erasure, error) {
	if err := checkPoints(xs, k); err != nil {
		return nil, err
	}

	v, err := matrix.Vandermonde(field, xs[:k])
	if err != nil {
		return nil, err
	}
	inv, err := v.Inverse()
	if err != nil {
		return nil, unsolvable("vandermonde matrix is singular", err)
	}

	return &Erasure{
		points:  len(xs),
		k:       k,
		inverse: inv,
	}, nil
}

// Decode returns M^-1 * y over the first k y-values.
func (d *Erasure) Decode(ys []byte, errorCount int) ([]byte, error) {
	if errorCount > 0 {
		return nil, unsolvable(fmt.Sprintf("erasure decoding cannot correct %d errors", errorCount), ErrTooManyErrors)
	}
	if len(ys) != d.points {
		return nil, fmt.Errorf("%w: got %d y-values, decoder prepared for %d", matrix.ErrDimension, len(ys), d.points)
	}
	return d.inverse.RightMultiply(ys[:d.k])
}

// Tolerance returns 0.
func (d *Erasure) Tolerance() int {
	return 0
}

// Points returns the number of x-values the decoder was prepared for.
func (d *Erasure) Points() int {
	return d.points
}
