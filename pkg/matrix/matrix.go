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

// Package matrix implements square matrices over a byte-oriented finite
// field: matrix-vector products and Gauss-Jordan inversion.
package matrix

import (
	"errors"
	"fmt"

	"github.com/jeremyhahn/go-smc/pkg/gf"
)

var (
	// ErrDimension indicates mismatched matrix or vector sizes.
	ErrDimension = errors.New("matrix: dimension mismatch")

	// ErrSingular indicates that a matrix has no inverse.
	ErrSingular = errors.New("matrix: singular matrix")
)

// Matrix is an immutable square matrix over a field.
type Matrix struct {
	field gf.Field
	rows  [][]byte
}

// New creates a matrix from the given rows. The rows are copied. Every row
// must have exactly len(rows) entries.
func New(field gf.Field, rows [][]byte) (*Matrix, error) {
	if field == nil {
		return nil, fmt.Errorf("field cannot be nil")
	}
	n := len(rows)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty matrix", ErrDimension)
	}
	cp := make([][]byte, n)
	for i, r := range rows {
		if len(r) != n {
			return nil, fmt.Errorf("%w: row %d has %d entries, want %d", ErrDimension, i, len(r), n)
		}
		cp[i] = append([]byte(nil), r...)
	}
	return &Matrix{field: field, rows: cp}, nil
}

// Identity returns the n x n identity matrix.
func Identity(field gf.Field, n int) *Matrix {
	rows := make([][]byte, n)
	for i := range rows {
		rows[i] = make([]byte, n)
		rows[i][i] = 1
	}
	return &Matrix{field: field, rows: rows}
}

// Vandermonde returns the len(xs) x len(xs) matrix M[i][j] = xs[i]^j.
func Vandermonde(field gf.Field, xs []byte) (*Matrix, error) {
	n := len(xs)
	if n == 0 {
		return nil, fmt.Errorf("%w: no evaluation points", ErrDimension)
	}
	rows := make([][]byte, n)
	for i, x := range xs {
		rows[i] = PowerRow(field, x, n)
	}
	return &Matrix{field: field, rows: rows}, nil
}

// PowerRow returns [1, x, x^2, ..., x^(cols-1)].
func PowerRow(field gf.Field, x byte, cols int) []byte {
	row := make([]byte, cols)
	if cols == 0 {
		return row
	}
	row[0] = 1
	for j := 1; j < cols; j++ {
		row[j] = field.Mult(row[j-1], x)
	}
	return row
}

// Size returns the matrix dimension.
func (m *Matrix) Size() int {
	return len(m.rows)
}

// At returns the entry at row i, column j.
func (m *Matrix) At(i, j int) byte {
	return m.rows[i][j]
}

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []byte {
	return append([]byte(nil), m.rows[i]...)
}

// RightMultiply returns M * v.
func (m *Matrix) RightMultiply(v []byte) ([]byte, error) {
	if len(v) != len(m.rows) {
		return nil, fmt.Errorf("%w: vector has %d entries, matrix is %dx%d",
			ErrDimension, len(v), len(m.rows), len(m.rows))
	}
	out := make([]byte, len(m.rows))
	for i, row := range m.rows {
		var acc byte
		for j, a := range row {
			if a == 0 || v[j] == 0 {
				continue
			}
			acc = m.field.Add(acc, m.field.Mult(a, v[j]))
		}
		out[i] = acc
	}
	return out, nil
}

// Multiply returns M * o.
func (m *Matrix) Multiply(o *Matrix) (*Matrix, error) {
	n := len(m.rows)
	if o.Size() != n {
		return nil, fmt.Errorf("%w: %dx%d * %dx%d", ErrDimension, n, n, o.Size(), o.Size())
	}
	rows := make([][]byte, n)
	for i := 0; i < n; i++ {
		rows[i] = make([]byte, n)
		for j := 0; j < n; j++ {
			var acc byte
			for k := 0; k < n; k++ {
				acc = m.field.Add(acc, m.field.Mult(m.rows[i][k], o.rows[k][j]))
			}
			rows[i][j] = acc
		}
	}
	return &Matrix{field: m.field, rows: rows}, nil
}

// Equal reports whether both matrices hold the same entries.
func (m *Matrix) Equal(o *Matrix) bool {
	if o == nil || o.Size() != m.Size() {
		return false
	}
	for i := range m.rows {
		for j := range m.rows[i] {
			if m.rows[i][j] != o.rows[i][j] {
				return false
			}
		}
	}
	return true
}

// Inverse computes M^-1 by Gauss-Jordan elimination with row pivoting.
// It returns ErrSingular when a pivot column has no nonzero entry.
func (m *Matrix) Inverse() (*Matrix, error) {
	inv, rank, err := m.eliminate(false)
	if err != nil {
		return nil, err
	}
	if rank != m.Size() {
		return nil, ErrSingular
	}
	return inv, nil
}

// InverseElimDepRows is Inverse for possibly rank-deficient matrices.
// Columns without a pivot are treated as free variables fixed to 0 and the
// effective rank shrinks instead of failing. For a consistent system
// M * x = b, G * b is a solution, where G is the returned matrix. The rank
// of M is returned alongside.
func (m *Matrix) InverseElimDepRows() (*Matrix, int, error) {
	return m.eliminate(true)
}

func (m *Matrix) eliminate(allowDependent bool) (*Matrix, int, error) {
	n := len(m.rows)
	f := m.field

	a := make([][]byte, n)
	e := make([][]byte, n)
	for i := range m.rows {
		a[i] = append([]byte(nil), m.rows[i]...)
		e[i] = make([]byte, n)
		e[i][i] = 1
	}

	// pivotRow[c] is the row holding the pivot for column c, or -1.
	pivotRow := make([]int, n)
	rank := 0
	for col := 0; col < n; col++ {
		pivotRow[col] = -1

		p := -1
		for r := rank; r < n; r++ {
			if a[r][col] != 0 {
				p = r
				break
			}
		}
		if p < 0 {
			if !allowDependent {
				return nil, 0, fmt.Errorf("%w: no pivot in column %d", ErrSingular, col)
			}
			continue
		}

		a[rank], a[p] = a[p], a[rank]
		e[rank], e[p] = e[p], e[rank]

		inv, err := f.Inverse(a[rank][col])
		if err != nil {
			return nil, 0, err
		}
		scaleRow(f, a[rank], inv)
		scaleRow(f, e[rank], inv)

		for r := 0; r < n; r++ {
			if r == rank || a[r][col] == 0 {
				continue
			}
			factor := a[r][col]
			addScaledRow(f, a[r], a[rank], factor)
			addScaledRow(f, e[r], e[rank], factor)
		}

		pivotRow[col] = rank
		rank++
	}

	out := make([][]byte, n)
	for col := 0; col < n; col++ {
		if pivotRow[col] < 0 {
			out[col] = make([]byte, n)
			continue
		}
		out[col] = e[pivotRow[col]]
	}

	return &Matrix{field: f, rows: out}, rank, nil
}

func scaleRow(f gf.Field, row []byte, s byte) {
	for i, v := range row {
		row[i] = f.Mult(v, s)
	}
}

// addScaledRow sets dst = dst - factor*src.
func addScaledRow(f gf.Field, dst, src []byte, factor byte) {
	for i, v := range src {
		if v == 0 {
			continue
		}
		dst[i] = f.Sub(dst[i], f.Mult(factor, v))
	}
}

// String renders the matrix as hex rows.
func (m *Matrix) String() string {
	s := ""
	for _, r := range m.rows {
		s += fmt.Sprintf("% x\n", r)
	}
	return s
}
