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

import "fmt"

const (
	// DefaultPolynomial is x^8 + x^4 + x^3 + x^2 + 1.
	DefaultPolynomial = 0x11D

	// DefaultGenerator is a primitive element for DefaultPolynomial.
	DefaultGenerator = 0x02
)

// Default is GF(2^8) reduced by DefaultPolynomial.
var Default = MustGF256(DefaultPolynomial, DefaultGenerator)

// GF256 is GF(2^8) defined by a reducing polynomial and a generator.
// A GF256 is immutable after construction and safe for concurrent use.
type GF256 struct {
	poly      int
	generator int

	// log[0] is unused.
	log [256]int

	// exp holds 510 entries so that exp[log[a]+log[b]] never needs a
	// reduction modulo 255.
	exp [510]byte
}

var _ Field = (*GF256)(nil)

// NewGF256 builds the log/antilog tables for the field defined by poly
// (a degree-8 polynomial, 0x100 <= poly < 0x200) and generator. The
// generator must have multiplicative order 255.
func NewGF256(poly, generator int) (*GF256, error) {
	if poly < 0x100 || poly >= 0x200 {
		return nil, fmt.Errorf("%w: polynomial 0x%x is not of degree 8", ErrInvalidPolynomial, poly)
	}
	if generator < 2 || generator > 0xFF {
		return nil, fmt.Errorf("%w: generator 0x%x out of range", ErrInvalidPolynomial, generator)
	}

	f := &GF256{poly: poly, generator: generator}

	var seen [256]bool
	x := 1
	for i := 0; i < 255; i++ {
		if x == 0 || seen[x] {
			return nil, fmt.Errorf("%w: generator 0x%x does not have order 255 under 0x%x",
				ErrInvalidPolynomial, generator, poly)
		}
		seen[x] = true
		f.exp[i] = byte(x)
		f.exp[i+255] = byte(x)
		f.log[x] = i
		x = slowMul(x, generator, poly)
	}
	if x != 1 {
		return nil, fmt.Errorf("%w: generator 0x%x does not cycle under 0x%x",
			ErrInvalidPolynomial, generator, poly)
	}

	return f, nil
}

// MustGF256 is like NewGF256 but panics on an invalid definition.
// It is intended for package-level variables.
func MustGF256(poly, generator int) *GF256 {
	f, err := NewGF256(poly, generator)
	if err != nil {
		panic(err)
	}
	return f
}

// slowMul multiplies x and y modulo poly with the shift-and-add method.
// Only used to build the tables.
func slowMul(x, y, poly int) int {
	z := 0
	for x > 0 {
		if x&1 != 0 {
			z ^= y
		}
		x >>= 1
		y <<= 1
		if y&0x100 != 0 {
			y ^= poly
		}
	}
	return z
}

// Polynomial returns the reducing polynomial.
func (f *GF256) Polynomial() int {
	return f.poly
}

// Generator returns the primitive element used for the tables.
func (f *GF256) Generator() int {
	return f.generator
}

// Order returns 256.
func (f *GF256) Order() int {
	return 256
}

// Add returns a XOR b.
func (f *GF256) Add(a, b byte) byte {
	return a ^ b
}

// Sub returns a XOR b.
func (f *GF256) Sub(a, b byte) byte {
	return a ^ b
}

// Mult returns a * b.
func (f *GF256) Mult(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	return f.exp[f.log[a]+f.log[b]]
}

// Div returns a / b.
func (f *GF256) Div(a, b byte) (byte, error) {
	if b == 0 {
		return 0, ErrDivideByZero
	}
	if a == 0 {
		return 0, nil
	}
	return f.exp[f.log[a]+255-f.log[b]], nil
}

// Inverse returns 1 / a.
func (f *GF256) Inverse(a byte) (byte, error) {
	if a == 0 {
		return 0, ErrDivideByZero
	}
	return f.exp[255-f.log[a]], nil
}

// Pow returns a^p. Negative exponents raise the inverse of a; 0 raised to
// a negative power is 0.
func (f *GF256) Pow(a byte, p int) byte {
	if p == 0 {
		return 1
	}
	if a == 0 {
		return 0
	}
	e := (f.log[a] * (p % 255)) % 255
	if e < 0 {
		e += 255
	}
	return f.exp[e]
}

// Exp returns generator^e.
func (f *GF256) Exp(e int) byte {
	e %= 255
	if e < 0 {
		e += 255
	}
	return f.exp[e]
}

// Log returns the discrete logarithm of a. Log(0) is -1.
func (f *GF256) Log(a byte) int {
	if a == 0 {
		return -1
	}
	return f.log[a]
}

// EvaluateAt evaluates the polynomial at x with Horner's method, starting
// from the highest-degree coefficient.
func (f *GF256) EvaluateAt(coeffs []byte, x byte) byte {
	if len(coeffs) == 0 {
		return 0
	}
	result := coeffs[len(coeffs)-1]
	for i := len(coeffs) - 2; i >= 0; i-- {
		result = f.Mult(result, x) ^ coeffs[i]
	}
	return result
}

// String returns a short description of the field.
func (f *GF256) String() string {
	return fmt.Sprintf("GF(2^8)/0x%X", f.poly)
}
