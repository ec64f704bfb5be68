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
	"crypto/aes"
	stdcipher "crypto/cipher"
	"encoding/binary"
	"fmt"
)

// gcmFirstCounter is the counter of the first keystream block GCM uses for
// data; counter 1 encrypts the tag mask.
const gcmFirstCounter = 2

type aesGCM struct{}

// NewAESGCM returns AES-256-GCM with a zero nonce.
func NewAESGCM() RangeDecrypter {
	return aesGCM{}
}

func (aesGCM) Algorithm() string { return AES256GCM }
func (aesGCM) KeyLength() int    { return KeySize }
func (aesGCM) Overhead() int     { return TagSize }

func (aesGCM) aead(key []byte) (stdcipher.AEAD, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cipher: aes: %w", err)
	}
	return stdcipher.NewGCM(block)
}

func (c aesGCM) Encrypt(plaintext, key []byte) ([]byte, error) {
	g, err := c.aead(key)
	if err != nil {
		return nil, err
	}
	return g.Seal(nil, make([]byte, g.NonceSize()), plaintext, nil), nil
}

func (c aesGCM) Decrypt(ciphertext, key []byte) ([]byte, error) {
	g, err := c.aead(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < TagSize {
		return nil, fmt.Errorf("%w: ciphertext shorter than tag", ErrAuthentication)
	}
	out, err := g.Open(nil, make([]byte, g.NonceSize()), ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAuthentication, AES256GCM)
	}
	return out, nil
}

// DecryptRange runs AES-CTR from the counter block covering offset. With a
// 96-bit nonce GCM's counter block is nonce || be32(counter).
func (aesGCM) DecryptRange(window, key []byte, offset int) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	if err := checkOffset(offset); err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cipher: aes: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	binary.BigEndian.PutUint32(iv[12:], uint32(gcmFirstCounter+offset/aes.BlockSize))
	stream := stdcipher.NewCTR(block, iv)

	skip := offset % aes.BlockSize
	if skip > 0 {
		discard := make([]byte, skip)
		stream.XORKeyStream(discard, discard)
	}
	out := make([]byte, len(window))
	stream.XORKeyStream(out, window)
	return out, nil
}
