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

// Degree returns the degree of the polynomial, ignoring trailing zero
// coefficients. The zero polynomial has degree -1.
func Degree(coeffs []byte) int {
	for i := len(coeffs) - 1; i >= 0; i-- {
		if coeffs[i] != 0 {
			return i
		}
	}
	return -1
}

// IsZero reports whether every coefficient is 0.
func IsZero(coeffs []byte) bool {
	return Degree(coeffs) < 0
}

// PolyMul returns a * b.
func PolyMul(f Field, a, b []byte) []byte {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	out := make([]byte, len(a)+len(b)-1)
	for i, ai := range a {
		if ai == 0 {
			continue
		}
		for j, bj := range b {
			out[i+j] = f.Add(out[i+j], f.Mult(ai, bj))
		}
	}
	return out
}

// PolyDivMod divides num by den and returns quotient and remainder. The
// remainder always has len(den)-1 coefficients (or fewer when num is
// shorter). Division by the zero polynomial returns ErrDivideByZero.
func PolyDivMod(f Field, num, den []byte) (quotient, remainder []byte, err error) {
	dd := Degree(den)
	if dd < 0 {
		return nil, nil, ErrDivideByZero
	}
	lead, err := f.Inverse(den[dd])
	if err != nil {
		return nil, nil, err
	}

	rem := make([]byte, len(num))
	copy(rem, num)

	nd := Degree(rem)
	if nd < dd {
		return []byte{}, rem[:min(len(rem), dd)], nil
	}

	quotient = make([]byte, nd-dd+1)
	for i := nd; i >= dd; i-- {
		c := rem[i]
		if c == 0 {
			continue
		}
		factor := f.Mult(c, lead)
		quotient[i-dd] = factor
		for j := 0; j <= dd; j++ {
			rem[i-dd+j] = f.Sub(rem[i-dd+j], f.Mult(factor, den[j]))
		}
	}

	return quotient, rem[:dd], nil
}
