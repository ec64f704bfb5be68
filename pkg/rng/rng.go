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

// Package rng provides the random sources schemes draw coefficients and
// key material from.
//
// # Sources
//
//   - NewCryptoSource: crypto/rand, safe for concurrent use
//   - NewStreamSource: deterministic ChaCha20 keystream derived from a seed
//   - NewFakeSource: deterministic counter for tests and worked examples
//   - NewEntropySource: hardware-backed entropy (TPM2, PKCS#11) with
//     software fallback
//
// # Field elements
//
// FillBytes never writes the byte 0: every zero drawn from the underlying
// stream is replaced by a fresh draw. Schemes use FillBytes for polynomial
// coefficients. Read returns the raw stream, zeros included, and is what
// key generation uses.
//
// # Thread Safety
//
// Only the crypto source is safe for concurrent use. Wrap any other source
// with Synchronized before sharing it across goroutines.
package rng

import (
	"errors"
	"fmt"
	"io"
)

// ErrExhausted is returned when a source cannot produce a nonzero byte.
var ErrExhausted = errors.New("rng: source produced no nonzero bytes")

// maxZeroRun bounds resampling so a broken reader cannot spin forever.
const maxZeroRun = 1 << 16

// Source produces random bytes for a scheme.
type Source interface {
	// Read fills p with raw random bytes.
	io.Reader

	// FillBytes fills b with random nonzero bytes.
	FillBytes(b []byte) error
}

// fillNonZero fills b from r, resampling every zero byte.
func fillNonZero(r io.Reader, b []byte) error {
	if _, err := io.ReadFull(r, b); err != nil {
		return fmt.Errorf("rng: read: %w", err)
	}
	var one [1]byte
	for i := range b {
		run := 0
		for b[i] == 0 {
			if run == maxZeroRun {
				return ErrExhausted
			}
			if _, err := io.ReadFull(r, one[:]); err != nil {
				return fmt.Errorf("rng: resample: %w", err)
			}
			b[i] = one[0]
			run++
		}
	}
	return nil
}

// readerSource adapts an io.Reader into a Source.
type readerSource struct {
	r io.Reader
}

// FromReader returns a Source drawing from r. The result is as safe for
// concurrent use as r is.
func FromReader(r io.Reader) Source {
	return &readerSource{r: r}
}

func (s *readerSource) Read(p []byte) (int, error) {
	return io.ReadFull(s.r, p)
}

func (s *readerSource) FillBytes(b []byte) error {
	return fillNonZero(s.r, b)
}
