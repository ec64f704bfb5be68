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

package share

import "fmt"

// Krawczyk is a share of the composed computational scheme: Rabin-IDS
// y-values of the ciphertext plus Shamir y-values of the encryption key.
type Krawczyk struct {
	point

	// contentLength is the ciphertext length the content y-values encode.
	contentLength int

	// windowed is set for shares cut by Window; windowStart is the y-index
	// of their first content y-value.
	windowed    bool
	windowStart int

	key    []byte
	cipher string
}

// KrawczykParams carries the fields of a Krawczyk share.
type KrawczykParams struct {
	ID             int
	Content        []byte
	ContentLength  int
	Key            []byte
	OriginalLength int
	Cipher         string
}

// NewKrawczyk creates a Krawczyk share.
func NewKrawczyk(p KrawczykParams) (*Krawczyk, error) {
	const op = "share.NewKrawczyk"
	pt, err := newPoint(op, p.ID, p.Content, p.OriginalLength)
	if err != nil {
		return nil, err
	}
	if p.ContentLength < p.OriginalLength {
		return nil, Invariantf(op, "content length %d shorter than original length %d", p.ContentLength, p.OriginalLength)
	}
	if len(p.Key) == 0 {
		return nil, Invariantf(op, "missing key y-values")
	}
	if p.Cipher == "" {
		return nil, Invariantf(op, "missing cipher tag")
	}
	return &Krawczyk{
		point:         pt,
		contentLength: p.ContentLength,
		key:           p.Key,
		cipher:        p.Cipher,
	}, nil
}

func (s *Krawczyk) Algorithm() Algorithm { return AlgorithmKrawczyk }
func (s *Krawczyk) sealed()              {}

// KeyYValues returns the Shamir y-values of the encryption key.
func (s *Krawczyk) KeyYValues() []byte { return s.key }

// ContentLength returns the ciphertext length.
func (s *Krawczyk) ContentLength() int { return s.contentLength }

// Cipher returns the algorithm tag of the cipher that produced the
// ciphertext.
func (s *Krawczyk) Cipher() string { return s.cipher }

// WindowStart returns the y-index of the first content y-value held by the
// share. It is 0 for complete shares.
func (s *Krawczyk) WindowStart() int { return s.windowStart }

// IsWindow reports whether the share holds only part of the content.
func (s *Krawczyk) IsWindow() bool { return s.windowed }

// KeyShare returns the key y-values as a Shamir share with the same id.
func (s *Krawczyk) KeyShare() *Shamir {
	return &Shamir{point: point{id: s.id, y: s.key, originalLength: len(s.key)}}
}

// ContentShare returns the content y-values as a Rabin-IDS share with the
// same id. For windows the original length is the number of ciphertext
// bytes the window can hold, k bytes per y-value.
func (s *Krawczyk) ContentShare(k int) *RabinIDS {
	length := s.contentLength
	if s.IsWindow() || len(s.y)*k < length {
		length = len(s.y) * k
	}
	return &RabinIDS{point: point{id: s.id, y: s.y, originalLength: length}}
}

// Window returns a share holding content y-values [from, to) of s and the
// complete key y-values. to is clipped to the available y-values.
func (s *Krawczyk) Window(from, to int) (*Krawczyk, error) {
	const op = "share.Krawczyk.Window"
	if s.IsWindow() {
		return nil, Invariantf(op, "share %d is already a window", s.id)
	}
	if to > len(s.y) {
		to = len(s.y)
	}
	if from < 0 || from >= to {
		return nil, Invariantf(op, "invalid window [%d,%d) over %d y-values", from, to, len(s.y))
	}
	w := *s
	w.y = s.y[from:to]
	w.windowed = true
	w.windowStart = from
	return &w, nil
}

func (s *Krawczyk) AuthenticatedBytes() []byte {
	fr := newFrame(AlgorithmKrawczyk, &s.point)
	fr.putInt(s.contentLength)
	fr.putString(s.cipher)
	fr.putBytes(s.key)
	return fr.bytes()
}

func (s *Krawczyk) String() string {
	return fmt.Sprintf("Share{Algorithm: %s, ID: %d, Length: %d, Cipher: %s}",
		AlgorithmKrawczyk, s.id, s.originalLength, s.cipher)
}
