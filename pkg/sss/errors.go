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

package sss

import (
	"errors"
	"fmt"

	"github.com/jeremyhahn/go-smc/pkg/share"
)

var (
	// ErrConfiguration indicates scheme parameters that can never work.
	// It is returned by constructors and is not retryable.
	ErrConfiguration = errors.New("invalid scheme configuration")

	// ErrReconstruction indicates a share set that could not be turned back
	// into data. Callers may retry with a different or larger subset.
	ErrReconstruction = errors.New("reconstruction failed")
)

// ConfigurationError wraps ErrConfiguration with the offending parameter.
type ConfigurationError struct {
	Param  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrConfiguration, e.Param, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// Configf builds a *ConfigurationError.
func Configf(param, format string, args ...any) error {
	return &ConfigurationError{Param: param, Reason: fmt.Sprintf(format, args...)}
}

// ReconstructionError wraps ErrReconstruction with the cause, typically a
// decode.ErrUnsolvable or a cipher authentication failure.
type ReconstructionError struct {
	Algorithm share.Algorithm
	Reason    string
	Err       error
}

func (e *ReconstructionError) Error() string {
	msg := fmt.Sprintf("%s: %s: %s", e.Algorithm, ErrReconstruction, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ReconstructionError) Unwrap() error {
	return e.Err
}

func (e *ReconstructionError) Is(target error) bool {
	return target == ErrReconstruction
}

// Reconstructf builds a *ReconstructionError.
func Reconstructf(alg share.Algorithm, err error, format string, args ...any) error {
	return &ReconstructionError{Algorithm: alg, Reason: fmt.Sprintf(format, args...), Err: err}
}

// InsufficientShares reports fewer than k usable shares.
func InsufficientShares(alg share.Algorithm, have, k int) error {
	return Reconstructf(alg, nil, "have %d shares, need %d", have, k)
}

// IsRetryable reports whether err may succeed with a different share set.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrReconstruction) && !errors.Is(err, share.ErrInvariant)
}
