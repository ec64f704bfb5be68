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

// Package share defines the share variants produced by go-smc schemes.
//
// Share is a closed set: *Shamir, *RabinIDS, *Krawczyk and *MAC (which
// wraps any of the others with information-checking tags). Shares are
// immutable once constructed. Constructors take ownership of the slices
// passed to them and accessors return the stored slices, so callers must
// not modify either.
package share

import "fmt"

// MaxShares is the largest number of shares a set can hold: x-coordinates
// are nonzero field elements.
const MaxShares = 255

// Algorithm identifies the scheme a share was produced by.
type Algorithm string

const (
	AlgorithmShamir     Algorithm = "shamir"
	AlgorithmRabinIDS   Algorithm = "rabin-ids"
	AlgorithmKrawczyk   Algorithm = "krawczyk"
	AlgorithmRabinBenOr Algorithm = "rabin-ben-or"
	AlgorithmCevallos   Algorithm = "cevallos"
)

// String returns the algorithm name.
func (a Algorithm) String() string {
	return string(a)
}

// Share is one of the n pieces of a shared secret.
type Share interface {
	// ID is the x-coordinate of the share, in [1, n].
	ID() int

	// Algorithm is the scheme that produced the share.
	Algorithm() Algorithm

	// OriginalLength is the length of the shared data in bytes.
	OriginalLength() int

	// YValues are the field-encoded evaluations carried by the share.
	YValues() []byte

	// AuthenticatedBytes is the stable encoding used as MAC input.
	AuthenticatedBytes() []byte

	sealed()
}

// point holds the fields every polynomial-evaluation share carries.
type point struct {
	id             int
	y              []byte
	originalLength int
}

func newPoint(op string, id int, y []byte, originalLength int) (point, error) {
	if id < 1 || id > MaxShares {
		return point{}, Invariantf(op, "share id %d out of range [1,%d]", id, MaxShares)
	}
	if originalLength < 0 {
		return point{}, Invariantf(op, "negative original length %d", originalLength)
	}
	return point{id: id, y: y, originalLength: originalLength}, nil
}

func (p *point) ID() int             { return p.id }
func (p *point) OriginalLength() int { return p.originalLength }
func (p *point) YValues() []byte     { return p.y }

// Shamir is a share of Shamir's information-theoretic scheme: one y-value
// per secret byte.
type Shamir struct {
	point
}

// NewShamir creates a Shamir share.
func NewShamir(id int, y []byte, originalLength int) (*Shamir, error) {
	p, err := newPoint("share.NewShamir", id, y, originalLength)
	if err != nil {
		return nil, err
	}
	if len(y) != originalLength {
		return nil, Invariantf("share.NewShamir", "%d y-values for %d bytes", len(y), originalLength)
	}
	return &Shamir{point: p}, nil
}

func (s *Shamir) Algorithm() Algorithm { return AlgorithmShamir }
func (s *Shamir) sealed()              {}

func (s *Shamir) AuthenticatedBytes() []byte {
	return newFrame(AlgorithmShamir, &s.point).bytes()
}

func (s *Shamir) String() string {
	return fmt.Sprintf("Share{Algorithm: %s, ID: %d, Length: %d}", AlgorithmShamir, s.id, s.originalLength)
}

// RabinIDS is a share of Rabin's information dispersal: one y-value per k
// input bytes.
type RabinIDS struct {
	point
}

// NewRabinIDS creates a Rabin-IDS share.
func NewRabinIDS(id int, y []byte, originalLength int) (*RabinIDS, error) {
	p, err := newPoint("share.NewRabinIDS", id, y, originalLength)
	if err != nil {
		return nil, err
	}
	return &RabinIDS{point: p}, nil
}

func (s *RabinIDS) Algorithm() Algorithm { return AlgorithmRabinIDS }
func (s *RabinIDS) sealed()              {}

func (s *RabinIDS) AuthenticatedBytes() []byte {
	return newFrame(AlgorithmRabinIDS, &s.point).bytes()
}

func (s *RabinIDS) String() string {
	return fmt.Sprintf("Share{Algorithm: %s, ID: %d, Length: %d}", AlgorithmRabinIDS, s.id, s.originalLength)
}

// AsShamir returns s as a *Shamir or an invariant error.
func AsShamir(s Share) (*Shamir, error) {
	v, ok := s.(*Shamir)
	if !ok || v == nil {
		return nil, Invariantf("share.AsShamir", "expected %s share, got %s", AlgorithmShamir, describe(s))
	}
	return v, nil
}

// AsRabinIDS returns s as a *RabinIDS or an invariant error.
func AsRabinIDS(s Share) (*RabinIDS, error) {
	v, ok := s.(*RabinIDS)
	if !ok || v == nil {
		return nil, Invariantf("share.AsRabinIDS", "expected %s share, got %s", AlgorithmRabinIDS, describe(s))
	}
	return v, nil
}

// AsKrawczyk returns s as a *Krawczyk or an invariant error.
func AsKrawczyk(s Share) (*Krawczyk, error) {
	v, ok := s.(*Krawczyk)
	if !ok || v == nil {
		return nil, Invariantf("share.AsKrawczyk", "expected %s share, got %s", AlgorithmKrawczyk, describe(s))
	}
	return v, nil
}

// AsMAC returns s as a *MAC or an invariant error.
func AsMAC(s Share) (*MAC, error) {
	v, ok := s.(*MAC)
	if !ok || v == nil {
		return nil, Invariantf("share.AsMAC", "expected information-checked share, got %s", describe(s))
	}
	return v, nil
}

func describe(s Share) string {
	if s == nil {
		return "nil"
	}
	if m, ok := s.(*MAC); ok && m != nil {
		return fmt.Sprintf("%s/%s", m.Checking(), m.Algorithm())
	}
	return string(s.Algorithm())
}
