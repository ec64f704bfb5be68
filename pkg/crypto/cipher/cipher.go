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

// Package cipher provides the authenticated ciphers the Krawczyk scheme
// encrypts with.
//
// Every cipher here is keyed freshly per message, so encryption uses a
// fixed all-zero nonce. Reusing a key with this package is unsafe.
//
// Ciphertexts are the stream-cipher output followed by a 16-byte tag, so
// plaintext byte p is ciphertext byte p. Ciphers implementing
// RangeDecrypter exploit that to decrypt a window of ciphertext without the
// rest of it, at the cost of authentication.
package cipher

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"
)

// Algorithm names.
const (
	AES256GCM        = "aes256-gcm"
	ChaCha20Poly1305 = "chacha20-poly1305"

	// Auto selects by CPU capability.
	Auto = "auto"
)

// KeySize is the key length of every cipher in this package.
const KeySize = 32

// TagSize is the authentication tag length appended to every ciphertext.
const TagSize = 16

var (
	// ErrAuthentication is returned when a ciphertext fails verification.
	ErrAuthentication = errors.New("cipher: message authentication failed")

	// ErrKeySize is returned for keys that are not KeySize bytes.
	ErrKeySize = errors.New("cipher: invalid key size")

	// ErrUnknownAlgorithm is returned by ByName.
	ErrUnknownAlgorithm = errors.New("cipher: unknown algorithm")
)

// Cipher encrypts whole messages under single-use keys.
type Cipher interface {
	// Algorithm is the name recorded in shares.
	Algorithm() string

	// KeyLength is the required key length in bytes.
	KeyLength() int

	// Overhead is the number of bytes Encrypt adds.
	Overhead() int

	Encrypt(plaintext, key []byte) ([]byte, error)
	Decrypt(ciphertext, key []byte) ([]byte, error)
}

// RangeDecrypter decrypts part of a ciphertext without authenticating it.
type RangeDecrypter interface {
	Cipher

	// DecryptRange decrypts window, the ciphertext bytes starting at
	// offset. Tag bytes in the window decrypt to garbage; callers clip to
	// the plaintext length.
	DecryptRange(window, key []byte, offset int) ([]byte, error)
}

// HasAESNI reports whether the CPU has AES instructions.
func HasAESNI() bool {
	switch runtime.GOARCH {
	case "amd64":
		return cpu.X86.HasAES && cpu.X86.HasPCLMULQDQ
	case "arm64":
		return cpu.ARM64.HasAES && cpu.ARM64.HasPMULL
	case "s390x":
		return cpu.S390X.HasAES && cpu.S390X.HasAESGCM
	default:
		return false
	}
}

// SelectOptimal returns AES-256-GCM on CPUs with AES instructions and
// ChaCha20-Poly1305 elsewhere.
func SelectOptimal() RangeDecrypter {
	if HasAESNI() {
		return NewAESGCM()
	}
	return NewChaCha20Poly1305()
}

// ByName resolves an algorithm name. Matching ignores case and accepts the
// JOSE-style aliases A256GCM and C20P.
func ByName(name string) (RangeDecrypter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", Auto:
		return SelectOptimal(), nil
	case AES256GCM, "aes-256-gcm", "a256gcm":
		return NewAESGCM(), nil
	case ChaCha20Poly1305, "chacha20poly1305", "c20p":
		return NewChaCha20Poly1305(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
}

func checkKey(key []byte) error {
	if len(key) != KeySize {
		return fmt.Errorf("%w: %d bytes (must be %d)", ErrKeySize, len(key), KeySize)
	}
	return nil
}

func checkOffset(offset int) error {
	if offset < 0 {
		return fmt.Errorf("cipher: negative offset %d", offset)
	}
	return nil
}
