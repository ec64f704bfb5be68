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

// Package decode recovers polynomial coefficients from evaluation points.
//
// A Decoder is prepared once for a fixed set of x-coordinates and a
// threshold k, then reused for every output position of a reconstruction.
// Two decoders are provided:
//
//   - Erasure: solves the k x k Vandermonde system. Every supplied point is
//     assumed correct; a corrupted point yields a wrong result silently.
//   - Berlekamp-Welch: uses all supplied points and corrects up to
//     floor((n-k)/2) corrupted y-values, failing cleanly beyond that.
//
// Decode never shares scratch buffers between calls, so one Decoder can be
// used from several goroutines.
package decode

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsolvable indicates that no polynomial of the requested degree is
	// consistent with the supplied points within the decoder's tolerance.
	ErrUnsolvable = errors.New("decode: unsolvable")

	// ErrTooManyErrors indicates that the caller asked for more error
	// correction than the decoder can provide.
	ErrTooManyErrors = errors.New("decode: error count exceeds tolerance")
)

// Decoder recovers k coefficients from y-values sampled at the x-values the
// decoder was created for.
type Decoder interface {
	// Decode returns the k coefficients (index 0 is the constant term) of
	// the polynomial through ys. errorCount is the number of corrupted
	// points the caller expects; it is only checked against Tolerance.
	Decode(ys []byte, errorCount int) ([]byte, error)

	// Tolerance returns the maximum number of corrupted points this decoder
	// can correct.
	Tolerance() int

	// Points returns the number of y-values Decode expects.
	Points() int
}

// Factory prepares a Decoder for the given x-values and threshold.
type Factory func(xs []byte, k int) (Decoder, error)

// Kind names a decoder implementation in configuration.
type Kind string

const (
	// KindErasure selects NewErasure.
	KindErasure Kind = "erasure"

	// KindBerlekampWelch selects NewBerlekampWelch.
	KindBerlekampWelch Kind = "berlekamp-welch"
)

// FactoryFor returns the factory registered under kind.
func FactoryFor(kind Kind) (Factory, error) {
	switch kind {
	case KindErasure, "":
		return NewErasure, nil
	case KindBerlekampWelch, "bw":
		return NewBerlekampWelch, nil
	default:
		return nil, fmt.Errorf("unknown decoder: %q", kind)
	}
}

// UnsolvableError wraps ErrUnsolvable with the reason decoding failed.
type UnsolvableError struct {
	Reason string
	Err    error
}

func (e *UnsolvableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode: unsolvable: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("decode: unsolvable: %s", e.Reason)
}

func (e *UnsolvableError) Unwrap() error {
	return e.Err
}

// Is reports ErrUnsolvable as a match so callers can use errors.Is.
func (e *UnsolvableError) Is(target error) bool {
	return target == ErrUnsolvable
}

func unsolvable(reason string, err error) error {
	return &UnsolvableError{Reason: reason, Err: err}
}

// checkPoints validates x-values shared by every decoder.
func checkPoints(xs []byte, k int) error {
	if k < 1 {
		return unsolvable(fmt.Sprintf("threshold must be positive, got %d", k), nil)
	}
	if len(xs) < k {
		return unsolvable(fmt.Sprintf("need %d points, got %d", k, len(xs)), nil)
	}
	var seen [256]bool
	for _, x := range xs {
		if seen[x] {
			return unsolvable(fmt.Sprintf("duplicate x-value %d", x), nil)
		}
		seen[x] = true
	}
	return nil
}
