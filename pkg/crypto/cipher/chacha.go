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

package cipher

import (
	"fmt"

	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/chacha20poly1305"
)

// chachaBlockSize is the ChaCha20 keystream block length.
const chachaBlockSize = 64

type chaCha20Poly1305 struct{}

// NewChaCha20Poly1305 returns RFC 8439 ChaCha20-Poly1305 with a zero nonce.
func NewChaCha20Poly1305() RangeDecrypter {
	return chaCha20Poly1305{}
}

func (chaCha20Poly1305) Algorithm() string { return ChaCha20Poly1305 }
func (chaCha20Poly1305) KeyLength() int    { return KeySize }
func (chaCha20Poly1305) Overhead() int     { return TagSize }

func (chaCha20Poly1305) Encrypt(plaintext, key []byte) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	a, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("cipher: chacha20-poly1305: %w", err)
	}
	return a.Seal(nil, make([]byte, a.NonceSize()), plaintext, nil), nil
}

func (chaCha20Poly1305) Decrypt(ciphertext, key []byte) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	a, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("cipher: chacha20-poly1305: %w", err)
	}
	if len(ciphertext) < TagSize {
		return nil, fmt.Errorf("%w: ciphertext shorter than tag", ErrAuthentication)
	}
	out, err := a.Open(nil, make([]byte, a.NonceSize()), ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAuthentication, ChaCha20Poly1305)
	}
	return out, nil
}

// DecryptRange runs the ChaCha20 keystream from the block covering offset.
// Block 0 keys Poly1305; data starts at block 1.
func (chaCha20Poly1305) DecryptRange(window, key []byte, offset int) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	if err := checkOffset(offset); err != nil {
		return nil, err
	}
	c, err := chacha20.NewUnauthenticatedCipher(key, make([]byte, chacha20.NonceSize))
	if err != nil {
		return nil, fmt.Errorf("cipher: chacha20: %w", err)
	}
	c.SetCounter(uint32(1 + offset/chachaBlockSize))

	skip := offset % chachaBlockSize
	if skip > 0 {
		discard := make([]byte, skip)
		c.XORKeyStream(discard, discard)
	}
	out := make([]byte, len(window))
	c.XORKeyStream(out, window)
	return out, nil
}
