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

// MAC wraps an inner share with the information-checking material of one
// player: the tag it holds for each peer's inner share under the peer's
// key, and the key it uses to verify each peer's tag.
//
// Both arrays are indexed by peer id minus one and have one entry per
// player, including the holder itself.
type MAC struct {
	inner    Share
	checking Algorithm
	tags     [][]byte
	keys     [][]byte
}

// NewMAC wraps inner with n tags and n keys. inner must not itself be an
// information-checked share.
func NewMAC(inner Share, checking Algorithm, tags, keys [][]byte) (*MAC, error) {
	const op = "share.NewMAC"
	if inner == nil {
		return nil, Invariantf(op, "nil inner share")
	}
	if _, nested := inner.(*MAC); nested {
		return nil, Invariantf(op, "inner share is already information-checked")
	}
	if checking != AlgorithmRabinBenOr && checking != AlgorithmCevallos {
		return nil, Invariantf(op, "unknown information-checking algorithm %q", checking)
	}
	if len(tags) != len(keys) {
		return nil, Invariantf(op, "%d tags for %d keys", len(tags), len(keys))
	}
	if len(tags) < inner.ID() {
		return nil, Invariantf(op, "%d peers but share id is %d", len(tags), inner.ID())
	}
	return &MAC{inner: inner, checking: checking, tags: tags, keys: keys}, nil
}

// Inner returns the wrapped share.
func (m *MAC) Inner() Share { return m.inner }

// Checking returns the information-checking algorithm.
func (m *MAC) Checking() Algorithm { return m.checking }

// Peers returns the number of players the share was tagged for.
func (m *MAC) Peers() int { return len(m.tags) }

// Tag returns the tag this holder carries for peer's inner share.
func (m *MAC) Tag(peer int) ([]byte, error) {
	if peer < 1 || peer > len(m.tags) {
		return nil, Invariantf("share.MAC.Tag", "peer %d out of range [1,%d]", peer, len(m.tags))
	}
	return m.tags[peer-1], nil
}

// Key returns the key this holder verifies peer's tag with.
func (m *MAC) Key(peer int) ([]byte, error) {
	if peer < 1 || peer > len(m.keys) {
		return nil, Invariantf("share.MAC.Key", "peer %d out of range [1,%d]", peer, len(m.keys))
	}
	return m.keys[peer-1], nil
}

func (m *MAC) ID() int                    { return m.inner.ID() }
func (m *MAC) Algorithm() Algorithm       { return m.inner.Algorithm() }
func (m *MAC) OriginalLength() int        { return m.inner.OriginalLength() }
func (m *MAC) YValues() []byte            { return m.inner.YValues() }
func (m *MAC) AuthenticatedBytes() []byte { return m.inner.AuthenticatedBytes() }
func (m *MAC) sealed()                    {}

func (m *MAC) String() string {
	return fmt.Sprintf("Share{Algorithm: %s/%s, ID: %d, Length: %d, Peers: %d}",
		m.checking, m.inner.Algorithm(), m.inner.ID(), m.inner.OriginalLength(), len(m.tags))
}
