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

// BerlekampWelch corrects up to floor((n-k)/2) corrupted points among the n
// points it was prepared for.
//
// For every point it solves y_i * E(x_i) = Q(x_i), where E is the monic
// error locator of degree f and Q has degree below n-f, then recovers the
// sharing polynomial as Q / E.
type BerlekampWelch struct {
	field gf.Field
	xs    []byte
	k     int
	f     int

	// powers[i][j] = xs[i]^j for j < n.
	powers [][]byte
}

var _ Decoder = (*BerlekampWelch)(nil)

// NewBerlekampWelch prepares a Berlekamp-Welch decoder over gf.Default.
func NewBerlekampWelch(xs []byte, k int) (Decoder, error) {
	return NewBerlekampWelchWithField(gf.Default, xs, k)
}

// NewBerlekampWelchWithField prepares a Berlekamp-Welch decoder over field.
func NewBerlekampWelchWithField(field gf.Field, xs []byte, k int) (*BerlekampWelch, error) {
	if err := checkPoints(xs, k); err != nil {
		return nil, err
	}

	n := len(xs)
	powers := make([][]byte, n)
	for i, x := range xs {
		powers[i] = matrix.PowerRow(field, x, n+1)
	}

	return &BerlekampWelch{
		field:  field,
		xs:     append([]byte(nil), xs...),
		k:      k,
		f:      (n - k) / 2,
		powers: powers,
	}, nil
}

// Tolerance returns floor((n-k)/2).
func (d *BerlekampWelch) Tolerance() int {
	return d.f
}

// Points returns n.
func (d *BerlekampWelch) Points() int {
	return len(d.xs)
}

// Decode recovers the k coefficients from n y-values. errorCount is only
// compared against Tolerance; the decoder always corrects up to Tolerance
// errors regardless of the value passed.
func (d *BerlekampWelch) Decode(ys []byte, errorCount int) ([]byte, error) {
	if errorCount > d.f {
		return nil, unsolvable(fmt.Sprintf("requested %d errors, tolerance is %d", errorCount, d.f), ErrTooManyErrors)
	}
	n := len(d.xs)
	if len(ys) != n {
		return nil, fmt.Errorf("%w: got %d y-values, decoder prepared for %d", matrix.ErrDimension, len(ys), n)
	}

	fd := d.field
	qLen := n - d.f

	rows := make([][]byte, n)
	rhs := make([]byte, n)
	for i := 0; i < n; i++ {
		row := make([]byte, n)
		copy(row, d.powers[i][:qLen])
		y := ys[i]
		for j := 0; j < d.f; j++ {
			row[qLen+j] = fd.Mult(y, d.powers[i][j])
		}
		rows[i] = row
		rhs[i] = fd.Mult(y, d.powers[i][d.f])
	}

	system, err := matrix.New(fd, rows)
	if err != nil {
		return nil, err
	}
	g, _, err := system.InverseElimDepRows()
	if err != nil {
		return nil, unsolvable("linear system could not be reduced", err)
	}
	sol, err := g.RightMultiply(rhs)
	if err != nil {
		return nil, err
	}

	q := sol[:qLen]
	e := make([]byte, d.f+1)
	copy(e, sol[qLen:])
	e[d.f] = 1

	quotient, remainder, err := gf.PolyDivMod(fd, q, e)
	if err != nil {
		return nil, unsolvable("error locator is zero", err)
	}
	if !gf.IsZero(remainder) {
		return nil, unsolvable("error locator does not divide Q", nil)
	}
	if gf.Degree(quotient) >= d.k {
		return nil, unsolvable(fmt.Sprintf("recovered polynomial has degree %d, threshold is %d",
			gf.Degree(quotient), d.k), nil)
	}

	coeffs := make([]byte, d.k)
	copy(coeffs, quotient)

	mismatches := 0
	for i, x := range d.xs {
		if fd.EvaluateAt(coeffs, x) != ys[i] {
			mismatches++
		}
	}
	if mismatches > d.f {
		return nil, unsolvable(fmt.Sprintf("%d points disagree with the recovered polynomial, tolerance is %d",
			mismatches, d.f), nil)
	}

	return coeffs, nil
}
