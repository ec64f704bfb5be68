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

// Validate checks that shares form a usable subset of an n-share set: every
// share is non-nil, ids are unique and within [1, n], and all shares agree on
// algorithm and original length. An empty set is valid.
func Validate(shares []Share, n int) error {
	const op = "share.Validate"
	if len(shares) == 0 {
		return nil
	}
	seen := make(map[int]struct{}, len(shares))
	first := shares[0]
	if first == nil {
		return Invariantf(op, "nil share at index 0")
	}
	for i, s := range shares {
		if s == nil {
			return Invariantf(op, "nil share at index %d", i)
		}
		id := s.ID()
		if id < 1 || id > n {
			return Invariantf(op, "share id %d out of range [1,%d]", id, n)
		}
		if _, dup := seen[id]; dup {
			return Invariantf(op, "duplicate share id %d", id)
		}
		seen[id] = struct{}{}
		if s.Algorithm() != first.Algorithm() {
			return Invariantf(op, "mixed algorithms %s and %s", first.Algorithm(), s.Algorithm())
		}
		if s.OriginalLength() != first.OriginalLength() {
			return Invariantf(op, "mixed original lengths %d and %d", first.OriginalLength(), s.OriginalLength())
		}
	}
	return nil
}

// IDs returns the ids of shares in order.
func IDs(shares []Share) []int {
	ids := make([]int, len(shares))
	for i, s := range shares {
		ids[i] = s.ID()
	}
	return ids
}

// XValues returns the ids of shares as field elements.
func XValues(shares []Share) []byte {
	xs := make([]byte, len(shares))
	for i, s := range shares {
		xs[i] = byte(s.ID())
	}
	return xs
}
