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

package gf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGF256(t *testing.T) {
	tests := []struct {
		name      string
		poly      int
		generator int
		wantErr   bool
	}{
		{name: "default field", poly: 0x11D, generator: 2},
		{name: "AES polynomial with generator 3", poly: 0x11B, generator: 3},
		{name: "AES polynomial with generator 2 is not primitive", poly: 0x11B, generator: 2, wantErr: true},
		{name: "degree too small", poly: 0xFF, generator: 2, wantErr: true},
		{name: "degree too large", poly: 0x211, generator: 2, wantErr: true},
		{name: "reducible polynomial", poly: 0x100, generator: 2, wantErr: true},
		{name: "generator out of range", poly: 0x11D, generator: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewGF256(tt.poly, tt.generator)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPolynomial)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.poly, f.Polynomial())
			assert.Equal(t, 256, f.Order())
		})
	}
}

func TestMustGF256_Panics(t *testing.T) {
	assert.Panics(t, func() { MustGF256(0x11B, 2) })
}

func TestAddSub(t *testing.T) {
	f := Default
	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			sum := f.Add(byte(a), byte(b))
			assert.Equal(t, byte(a^b), sum)
			assert.Equal(t, byte(a), f.Sub(sum, byte(b)))
		}
	}
}

func TestMult_MatchesShiftAndAdd(t *testing.T) {
	f := Default
	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			want := byte(slowMul(a, b, DefaultPolynomial))
			if got := f.Mult(byte(a), byte(b)); got != want {
				t.Fatalf("Mult(%d, %d) = %d, want %d", a, b, got, want)
			}
		}
	}
}

func TestDiv_InvertsMult(t *testing.T) {
	f := Default
	for a := 0; a < 256; a++ {
		for b := 1; b < 256; b++ {
			p := f.Mult(byte(a), byte(b))
			q, err := f.Div(p, byte(b))
			require.NoError(t, err)
			if q != byte(a) {
				t.Fatalf("Div(Mult(%d,%d), %d) = %d", a, b, b, q)
			}
		}
	}
}

func TestDiv_ByZero(t *testing.T) {
	_, err := Default.Div(7, 0)
	assert.ErrorIs(t, err, ErrDivideByZero)

	_, err = Default.Inverse(0)
	assert.ErrorIs(t, err, ErrDivideByZero)
}

func TestInverse(t *testing.T) {
	f := Default
	for a := 1; a < 256; a++ {
		inv, err := f.Inverse(byte(a))
		require.NoError(t, err)
		assert.Equal(t, byte(1), f.Mult(byte(a), inv), "a=%d", a)
	}
}

func TestPow(t *testing.T) {
	f := Default
	for a := 0; a < 256; a++ {
		acc := byte(1)
		for p := 0; p < 300; p++ {
			if got := f.Pow(byte(a), p); got != acc {
				t.Fatalf("Pow(%d, %d) = %d, want %d", a, p, got, acc)
			}
			acc = f.Mult(acc, byte(a))
		}
	}
}

func TestPow_Negative(t *testing.T) {
	f := Default
	for a := 1; a < 256; a++ {
		inv, err := f.Inverse(byte(a))
		require.NoError(t, err)
		assert.Equal(t, inv, f.Pow(byte(a), -1))
	}
	assert.Equal(t, byte(0), f.Pow(0, -3))
}

func TestExpLog(t *testing.T) {
	f := Default
	for a := 1; a < 256; a++ {
		assert.Equal(t, byte(a), f.Exp(f.Log(byte(a))))
	}
	assert.Equal(t, -1, f.Log(0))
	assert.Equal(t, byte(1), f.Exp(255))
	assert.Equal(t, f.Exp(254), f.Exp(-1))
}

func TestEvaluateAt(t *testing.T) {
	f := Default

	// naive evaluation: sum of c_i * x^i
	naive := func(coeffs []byte, x byte) byte {
		var r byte
		for i, c := range coeffs {
			r ^= f.Mult(c, f.Pow(x, i))
		}
		return r
	}

	coeffs := []byte{0x12, 0x00, 0xA7, 0x3C, 0xFF}
	for x := 0; x < 256; x++ {
		assert.Equal(t, naive(coeffs, byte(x)), f.EvaluateAt(coeffs, byte(x)))
	}

	assert.Equal(t, byte(0), f.EvaluateAt(nil, 5))
	assert.Equal(t, byte(0x42), f.EvaluateAt([]byte{0x42}, 9))
	assert.Equal(t, byte(0x42), f.EvaluateAt([]byte{0x42, 0x11}, 0), "constant term at x=0")
}
