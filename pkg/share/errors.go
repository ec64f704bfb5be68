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

import (
	"errors"
	"fmt"
)

// ErrInvariant indicates malformed input that can only come from a
// programming error or a tampered share set: a share of the wrong variant,
// mismatched array lengths, an id out of range. It is never a
// reconstruction error and is not retried.
var ErrInvariant = errors.New("invariant violation")

// InvariantError wraps ErrInvariant with the failing operation.
type InvariantError struct {
	Op     string
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: invariant violation: %s", e.Op, e.Reason)
}

func (e *InvariantError) Unwrap() error {
	return ErrInvariant
}

// Invariantf builds an *InvariantError for op.
func Invariantf(op, format string, args ...any) error {
	return &InvariantError{Op: op, Reason: fmt.Sprintf(format, args...)}
}
