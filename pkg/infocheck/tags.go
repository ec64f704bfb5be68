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

// Package infocheck adds pairwise information checking to a secret sharing
// scheme. Every holder carries a MAC tag of its share for each peer and a
// key to verify each peer's tag, so up to n-k corrupted shares are found
// and discarded at reconstruction without trusting any single verifier.
package infocheck

import (
	"fmt"
	"io"
	"math"

	"github.com/jeremyhahn/go-smc/pkg/crypto/mac"
	"github.com/jeremyhahn/go-smc/pkg/share"
)

// Tagging selects the MAC function used for a share's tags.
type Tagging func(s share.Share) (mac.Function, error)

// Fixed tags every share with fn at its full tag size.
func Fixed(fn mac.Function) Tagging {
	return func(share.Share) (mac.Function, error) { return fn, nil }
}

// Compact shortens fn per share to TagLength(k, bits, securityBits), where
// bits is the size of the share's authenticated content.
func Compact(fn mac.Function, k, securityBits int) Tagging {
	return func(s share.Share) (mac.Function, error) {
		length := TagLength(k, 8*len(s.AuthenticatedBytes()), securityBits)
		length = max(1, min(length, fn.TagSize()))
		return mac.Shorten(fn, length)
	}
}

// TagLength returns the tag size in bytes giving securityBits of security
// for a message of messageBits under threshold k:
//
//	floor((log2(k) + log2(m) + 2E/k + log2(E)) / 8)
func TagLength(k, messageBits, securityBits int) int {
	if k < 1 || messageBits < 1 || securityBits < 1 {
		return 0
	}
	e := float64(securityBits)
	bits := math.Log2(float64(k)) + math.Log2(float64(messageBits)) + 2*e/float64(k) + math.Log2(e)
	return int(math.Floor(bits / 8))
}

// CreateTags wraps each share with its information-checking material. The
// share ids must be exactly 1..len(shares). For every ordered pair (i, j),
// including i == j, a fresh key is drawn from random; i stores the tag of
// its own content under j's id and j stores the key under i's id.
func CreateTags(shares []share.Share, checking share.Algorithm, tagging Tagging, random io.Reader) ([]*share.MAC, error) {
	const op = "infocheck.CreateTags"
	n := len(shares)
	if err := share.Validate(shares, n); err != nil {
		return nil, err
	}

	tags := make([][][]byte, n)
	keys := make([][][]byte, n)
	for i := range shares {
		tags[i] = make([][]byte, n)
		keys[i] = make([][]byte, n)
	}

	for _, holder := range shares {
		fn, err := tagging(holder)
		if err != nil {
			return nil, fmt.Errorf("%s: select MAC for share %d: %w", op, holder.ID(), err)
		}
		content := holder.AuthenticatedBytes()
		i := holder.ID() - 1
		for _, verifier := range shares {
			j := verifier.ID() - 1
			key := make([]byte, fn.KeySize())
			if _, err := io.ReadFull(random, key); err != nil {
				return nil, fmt.Errorf("%s: generate key: %w", op, err)
			}
			tag, err := fn.ComputeMAC(content, key)
			if err != nil {
				return nil, fmt.Errorf("%s: tag share %d for %d: %w", op, holder.ID(), verifier.ID(), err)
			}
			tags[i][j] = tag
			keys[j][i] = key
		}
	}

	out := make([]*share.MAC, n)
	for _, s := range shares {
		m, err := share.NewMAC(s, checking, tags[s.ID()-1], keys[s.ID()-1])
		if err != nil {
			return nil, err
		}
		out[s.ID()-1] = m
	}
	return out, nil
}

// AcceptMatrix verifies every tag among shares. accept[a][b] reports
// whether shares[b] accepts shares[a]: the key b holds for a's id verifies
// the tag a holds for b's id over a's current content. Missing material
// and MAC errors count as rejections.
func AcceptMatrix(shares []*share.MAC, tagging Tagging) [][]bool {
	accept := make([][]bool, len(shares))
	for a, holder := range shares {
		accept[a] = make([]bool, len(shares))
		fn, err := tagging(holder.Inner())
		if err != nil {
			continue
		}
		content := holder.AuthenticatedBytes()
		for b, verifier := range shares {
			tag, err := holder.Tag(verifier.ID())
			if err != nil {
				continue
			}
			key, err := verifier.Key(holder.ID())
			if err != nil {
				continue
			}
			ok, err := fn.VerifyMAC(content, tag, key)
			accept[a][b] = ok && err == nil
		}
	}
	return accept
}
