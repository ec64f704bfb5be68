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

// Package gf implements byte-oriented finite field arithmetic.
//
// All secret sharing schemes in go-smc operate over GF(2^8): every field
// element fits in one byte, addition and subtraction are XOR, and
// multiplication, division and exponentiation are table lookups through
// discrete logarithms.
//
// # Usage Example
//
//	f := gf.Default
//	p := f.Mult(0x53, 0xCA)
//	q, err := f.Div(p, 0xCA) // q == 0x53
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Evaluate 7 + 3x + x^2 at x = 2 (index 0 is the constant term)
//	y := f.EvaluateAt([]byte{7, 3, 1}, 2)
package gf

import "errors"

var (
	// ErrDivideByZero is returned by Div and Inverse when the divisor is 0.
	ErrDivideByZero = errors.New("gf: division by zero")

	// ErrInvalidPolynomial is returned when a reducing polynomial and
	// generator do not define a field of 256 elements.
	ErrInvalidPolynomial = errors.New("gf: invalid reducing polynomial or generator")
)

// Field is a finite field whose elements are encoded as single bytes.
type Field interface {
	// Add returns a + b.
	Add(a, b byte) byte

	// Sub returns a - b.
	Sub(a, b byte) byte

	// Mult returns a * b.
	Mult(a, b byte) byte

	// Div returns a / b, or ErrDivideByZero when b is 0.
	Div(a, b byte) (byte, error)

	// Pow returns a raised to the power p. Pow(a, 0) is 1 for every a.
	Pow(a byte, p int) byte

	// Inverse returns the multiplicative inverse of a, or ErrDivideByZero
	// when a is 0.
	Inverse(a byte) (byte, error)

	// EvaluateAt evaluates the polynomial with the given coefficients at x.
	// coeffs[0] is the constant term.
	EvaluateAt(coeffs []byte, x byte) byte

	// Order returns the number of elements in the field.
	Order() int
}
