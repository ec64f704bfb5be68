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
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-smc/pkg/gf"
	"github.com/jeremyhahn/go-smc/pkg/matrix"
)

// sample returns k random coefficients and their evaluations at 1..n.
func sample(r *rand.Rand, n, k int) (coeffs, xs, ys []byte) {
	coeffs = make([]byte, k)
	for i := range coeffs {
		coeffs[i] = byte(r.IntN(256))
	}
	xs = make([]byte, n)
	ys = make([]byte, n)
	for i := 0; i < n; i++ {
		xs[i] = byte(i + 1)
		ys[i] = gf.Default.EvaluateAt(coeffs, xs[i])
	}
	return coeffs, xs, ys
}

// corrupt flips count distinct y-values to different values.
func corrupt(r *rand.Rand, ys []byte, count int) []byte {
	out := append([]byte(nil), ys...)
	for _, idx := range r.Perm(len(ys))[:count] {
		out[idx] ^= byte(1 + r.IntN(255))
	}
	return out
}

func TestFactoryFor(t *testing.T) {
	tests := []struct {
		kind    Kind
		wantErr bool
	}{
		{kind: KindErasure},
		{kind: ""},
		{kind: KindBerlekampWelch},
		{kind: "bw"},
		{kind: "reed-solomon", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			f, err := FactoryFor(tt.kind)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, f)
		})
	}
}

func TestCheckPoints(t *testing.T) {
	_, err := NewErasure([]byte{1, 2}, 3)
	assert.ErrorIs(t, err, ErrUnsolvable)

	_, err = NewErasure([]byte{1, 2, 2}, 2)
	assert.ErrorIs(t, err, ErrUnsolvable)

	_, err = NewBerlekampWelch([]byte{1, 2, 3}, 0)
	assert.ErrorIs(t, err, ErrUnsolvable)
}

func TestErasure_RecoversCoefficients(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))

	cases := [][2]int{{2, 2}, {3, 2}, {5, 3}, {8, 5}, {16, 16}, {40, 17}, {255, 2}, {255, 128}, {255, 255}}
	for _, c := range cases {
		n, k := c[0], c[1]
		coeffs, xs, ys := sample(r, n, k)

		d, err := NewErasure(xs, k)
		require.NoError(t, err)
		assert.Equal(t, 0, d.Tolerance())
		assert.Equal(t, n, d.Points())

		got, err := d.Decode(ys, 0)
		require.NoError(t, err, "n=%d k=%d", n, k)
		assert.Equal(t, coeffs, got, "n=%d k=%d", n, k)
	}
}

func TestErasure_UsesFirstKPoints(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	coeffs, xs, ys := sample(r, 6, 3)

	d, err := NewErasure(xs, 3)
	require.NoError(t, err)

	// Points beyond k are not consulted.
	ys[5] ^= 0xFF
	got, err := d.Decode(ys, 0)
	require.NoError(t, err)
	assert.Equal(t, coeffs, got)
}

func TestErasure_CorruptionIsUndetected(t *testing.T) {
	r := rand.New(rand.NewPCG(5, 6))
	coeffs, xs, ys := sample(r, 4, 4)

	d, err := NewErasure(xs, 4)
	require.NoError(t, err)

	ys[0] ^= 0x01
	got, err := d.Decode(ys, 0)
	require.NoError(t, err)
	assert.NotEqual(t, coeffs, got)
}

func TestErasure_Rejections(t *testing.T) {
	d, err := NewErasure([]byte{1, 2, 3}, 2)
	require.NoError(t, err)

	_, err = d.Decode([]byte{1, 2, 3}, 1)
	assert.ErrorIs(t, err, ErrUnsolvable)
	assert.ErrorIs(t, err, ErrTooManyErrors)

	_, err = d.Decode([]byte{1, 2}, 0)
	assert.ErrorIs(t, err, matrix.ErrDimension)
}

func TestBerlekampWelch_NoErrors(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 8))
	for _, c := range [][2]int{{2, 2}, {3, 2}, {5, 3}, {8, 5}, {10, 4}, {20, 7}} {
		n, k := c[0], c[1]
		coeffs, xs, ys := sample(r, n, k)

		d, err := NewBerlekampWelch(xs, k)
		require.NoError(t, err)
		assert.Equal(t, (n-k)/2, d.Tolerance())

		got, err := d.Decode(ys, 0)
		require.NoError(t, err, "n=%d k=%d", n, k)
		assert.Equal(t, coeffs, got)
	}
}

func TestBerlekampWelch_CorrectsUpToTolerance(t *testing.T) {
	r := rand.New(rand.NewPCG(9, 10))
	for _, c := range [][2]int{{5, 3}, {7, 3}, {8, 5}, {10, 4}, {15, 5}, {31, 10}} {
		n, k := c[0], c[1]
		f := (n - k) / 2
		for errs := 0; errs <= f; errs++ {
			for trial := 0; trial < 10; trial++ {
				coeffs, xs, ys := sample(r, n, k)
				d, err := NewBerlekampWelch(xs, k)
				require.NoError(t, err)

				got, err := d.Decode(corrupt(r, ys, errs), errs)
				require.NoError(t, err, "n=%d k=%d errors=%d", n, k, errs)
				assert.Equal(t, coeffs, got, "n=%d k=%d errors=%d", n, k, errs)
			}
		}
	}
}

func TestBerlekampWelch_FailsBeyondTolerance(t *testing.T) {
	r := rand.New(rand.NewPCG(11, 12))

	// n-k is odd in every case, so f+1 errors leave the received word more
	// than f away from every codeword and decoding must fail.
	for _, c := range [][2]int{{8, 5}, {6, 3}, {10, 3}, {15, 4}} {
		n, k := c[0], c[1]
		f := (n - k) / 2
		for trial := 0; trial < 20; trial++ {
			_, xs, ys := sample(r, n, k)
			d, err := NewBerlekampWelch(xs, k)
			require.NoError(t, err)

			_, err = d.Decode(corrupt(r, ys, f+1), 0)
			require.Error(t, err, "n=%d k=%d", n, k)
			assert.ErrorIs(t, err, ErrUnsolvable)
		}
	}
}

func TestBerlekampWelch_RejectsExcessiveErrorCount(t *testing.T) {
	_, xs, ys := sample(rand.New(rand.NewPCG(13, 14)), 8, 5)
	d, err := NewBerlekampWelch(xs, 5)
	require.NoError(t, err)

	_, err = d.Decode(ys, 2)
	assert.ErrorIs(t, err, ErrTooManyErrors)

	var ue *UnsolvableError
	require.True(t, errors.As(err, &ue))
	assert.Contains(t, ue.Error(), "tolerance is 1")
}

func TestBerlekampWelch_DimensionMismatch(t *testing.T) {
	d, err := NewBerlekampWelch([]byte{1, 2, 3, 4}, 2)
	require.NoError(t, err)

	_, err = d.Decode([]byte{1, 2, 3}, 0)
	assert.ErrorIs(t, err, matrix.ErrDimension)
}

func TestBerlekampWelch_ArbitraryPointSet(t *testing.T) {
	r := rand.New(rand.NewPCG(15, 16))
	coeffs := []byte{0x10, 0x20, 0x30}
	xs := []byte{200, 3, 77, 9, 150, 41, 6}
	ys := make([]byte, len(xs))
	for i, x := range xs {
		ys[i] = gf.Default.EvaluateAt(coeffs, x)
	}

	d, err := NewBerlekampWelch(xs, 3)
	require.NoError(t, err)
	got, err := d.Decode(corrupt(r, ys, 2), 2)
	require.NoError(t, err)
	assert.Equal(t, coeffs, got)
}
