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

// Package mac provides the message authentication codes used for
// information checking.
//
// Every key is used for exactly one tag, which is what makes the one-time
// Poly1305 authenticator safe here.
package mac

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/poly1305"
)

// Algorithm names.
const (
	HMACSHA256 = "hmac-sha256"
	Poly1305   = "poly1305"
	BLAKE2b    = "blake2b-256"
)

var (
	// ErrKeySize is returned for keys of the wrong length.
	ErrKeySize = errors.New("mac: invalid key size")

	// ErrTagLength is returned by Shorten for lengths outside [1, TagSize].
	ErrTagLength = errors.New("mac: invalid tag length")

	// ErrUnknownAlgorithm is returned by ByName.
	ErrUnknownAlgorithm = errors.New("mac: unknown algorithm")
)

// Function computes and verifies tags.
type Function interface {
	Name() string
	KeySize() int
	TagSize() int

	ComputeMAC(data, key []byte) ([]byte, error)

	// VerifyMAC reports whether tag authenticates data under key. Tags of
	// the wrong length never verify. Errors are reserved for bad keys.
	VerifyMAC(data, tag, key []byte) (bool, error)
}

type hmacSHA256 struct{}

// NewHMACSHA256 returns HMAC-SHA-256 with 32-byte keys and tags.
func NewHMACSHA256() Function { return hmacSHA256{} }

func (hmacSHA256) Name() string { return HMACSHA256 }
func (hmacSHA256) KeySize() int { return sha256.Size }
func (hmacSHA256) TagSize() int { return sha256.Size }

func (m hmacSHA256) ComputeMAC(data, key []byte) ([]byte, error) {
	if err := checkKey(m, key); err != nil {
		return nil, err
	}
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil), nil
}

func (m hmacSHA256) VerifyMAC(data, tag, key []byte) (bool, error) {
	return verify(m, data, tag, key)
}

type poly1305MAC struct{}

// NewPoly1305 returns the Poly1305 one-time authenticator: 32-byte keys,
// 16-byte tags.
func NewPoly1305() Function { return poly1305MAC{} }

func (poly1305MAC) Name() string { return Poly1305 }
func (poly1305MAC) KeySize() int { return 32 }
func (poly1305MAC) TagSize() int { return poly1305.TagSize }

func (m poly1305MAC) ComputeMAC(data, key []byte) ([]byte, error) {
	if err := checkKey(m, key); err != nil {
		return nil, err
	}
	var k [32]byte
	copy(k[:], key)
	var out [poly1305.TagSize]byte
	poly1305.Sum(&out, data, &k)
	return out[:], nil
}

func (m poly1305MAC) VerifyMAC(data, tag, key []byte) (bool, error) {
	return verify(m, data, tag, key)
}

type blake2bMAC struct{}

// NewBLAKE2b returns keyed BLAKE2b-256 with 32-byte keys and tags.
func NewBLAKE2b() Function { return blake2bMAC{} }

func (blake2bMAC) Name() string { return BLAKE2b }
func (blake2bMAC) KeySize() int { return 32 }
func (blake2bMAC) TagSize() int { return blake2b.Size256 }

func (m blake2bMAC) ComputeMAC(data, key []byte) ([]byte, error) {
	if err := checkKey(m, key); err != nil {
		return nil, err
	}
	h, err := blake2b.New256(key)
	if err != nil {
		return nil, fmt.Errorf("mac: blake2b: %w", err)
	}
	h.Write(data)
	return h.Sum(nil), nil
}

func (m blake2bMAC) VerifyMAC(data, tag, key []byte) (bool, error) {
	return verify(m, data, tag, key)
}

// shortened truncates the tags of an inner function.
type shortened struct {
	inner  Function
	length int
}

// Shorten returns fn with tags truncated to length bytes.
func Shorten(fn Function, length int) (Function, error) {
	if s, ok := fn.(*shortened); ok {
		fn = s.inner
	}
	if length < 1 || length > fn.TagSize() {
		return nil, fmt.Errorf("%w: %d not in [1,%d] for %s", ErrTagLength, length, fn.TagSize(), fn.Name())
	}
	if length == fn.TagSize() {
		return fn, nil
	}
	return &shortened{inner: fn, length: length}, nil
}

func (s *shortened) Name() string { return fmt.Sprintf("%s/%d", s.inner.Name(), s.length) }
func (s *shortened) KeySize() int { return s.inner.KeySize() }
func (s *shortened) TagSize() int { return s.length }

func (s *shortened) ComputeMAC(data, key []byte) ([]byte, error) {
	tag, err := s.inner.ComputeMAC(data, key)
	if err != nil {
		return nil, err
	}
	return tag[:s.length], nil
}

func (s *shortened) VerifyMAC(data, tag, key []byte) (bool, error) {
	return verify(s, data, tag, key)
}

// ByName resolves an algorithm name, ignoring case.
func ByName(name string) (Function, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", HMACSHA256, "hmac", "sha256":
		return NewHMACSHA256(), nil
	case Poly1305:
		return NewPoly1305(), nil
	case BLAKE2b, "blake2b":
		return NewBLAKE2b(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
}

func checkKey(fn Function, key []byte) error {
	if len(key) != fn.KeySize() {
		return fmt.Errorf("%w: %d bytes for %s (must be %d)", ErrKeySize, len(key), fn.Name(), fn.KeySize())
	}
	return nil
}

func verify(fn Function, data, tag, key []byte) (bool, error) {
	want, err := fn.ComputeMAC(data, key)
	if err != nil {
		return false, err
	}
	if len(tag) != len(want) {
		return false, nil
	}
	return subtle.ConstantTimeCompare(want, tag) == 1, nil
}
