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

package rng

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/hkdf"
)

// streamInfo binds derived ChaCha20 keys to this package.
const streamInfo = "go-smc rng stream v1"

// ErrEmptySeed is returned by NewStreamSource for an empty seed.
var ErrEmptySeed = errors.New("rng: empty seed")

// NewCryptoSource returns a Source backed by crypto/rand.
func NewCryptoSource() Source {
	return FromReader(rand.Reader)
}

// StreamSource is a deterministic source: the ChaCha20 keystream under a
// key and nonce derived from the seed with HKDF-SHA256. Equal seeds yield
// equal streams. It is not safe for concurrent use.
type StreamSource struct {
	cipher *chacha20.Cipher
}

// NewStreamSource creates a StreamSource from seed.
func NewStreamSource(seed []byte) (*StreamSource, error) {
	if len(seed) == 0 {
		return nil, ErrEmptySeed
	}
	kdf := hkdf.New(sha256.New, seed, nil, []byte(streamInfo))
	material := make([]byte, chacha20.KeySize+chacha20.NonceSize)
	if _, err := io.ReadFull(kdf, material); err != nil {
		return nil, fmt.Errorf("rng: derive stream key: %w", err)
	}
	c, err := chacha20.NewUnauthenticatedCipher(material[:chacha20.KeySize], material[chacha20.KeySize:])
	if err != nil {
		return nil, fmt.Errorf("rng: stream cipher: %w", err)
	}
	return &StreamSource{cipher: c}, nil
}

func (s *StreamSource) Read(p []byte) (int, error) {
	clear(p)
	s.cipher.XORKeyStream(p, p)
	return len(p), nil
}

func (s *StreamSource) FillBytes(b []byte) error {
	return fillNonZero(s, b)
}

// FakeSource yields the bytes start, start+1, ... cycling through 1..255.
// It exists for tests and documentation examples only.
type FakeSource struct {
	next byte
}

// NewFakeSource creates a FakeSource. A start of 0 begins at 1.
func NewFakeSource(start byte) *FakeSource {
	if start == 0 {
		start = 1
	}
	return &FakeSource{next: start}
}

func (s *FakeSource) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = s.next
		if s.next == 255 {
			s.next = 1
		} else {
			s.next++
		}
	}
	return len(p), nil
}

func (s *FakeSource) FillBytes(b []byte) error {
	_, err := s.Read(b)
	return err
}

type synchronized struct {
	mu  sync.Mutex
	src Source
}

// Synchronized serializes access to src.
func Synchronized(src Source) Source {
	if _, ok := src.(*synchronized); ok {
		return src
	}
	return &synchronized{src: src}
}

func (s *synchronized) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Read(p)
}

func (s *synchronized) FillBytes(b []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.FillBytes(b)
}
