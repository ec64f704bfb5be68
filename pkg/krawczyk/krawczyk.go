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

// Package krawczyk implements Krawczyk's computationally secure secret
// sharing: the data is encrypted under a fresh key, the ciphertext is
// dispersed with Rabin-IDS and the key is shared with Shamir. Each share
// is about 1/k the size of the data plus a key share.
package krawczyk

import (
	"errors"
	"fmt"
	"io"

	"github.com/jeremyhahn/go-smc/pkg/crypto/cipher"
	"github.com/jeremyhahn/go-smc/pkg/decode"
	"github.com/jeremyhahn/go-smc/pkg/logging"
	"github.com/jeremyhahn/go-smc/pkg/rng"
	"github.com/jeremyhahn/go-smc/pkg/share"
	"github.com/jeremyhahn/go-smc/pkg/sss"
)

// Config configures a Scheme.
type Config struct {
	Threshold   int
	TotalShares int

	// Random supplies keys and Shamir coefficients. Defaults to
	// rng.NewCryptoSource().
	Random rng.Source

	// Cipher defaults to cipher.SelectOptimal().
	Cipher cipher.Cipher

	Decoder decode.Kind
	Logger  logging.Logger
}

// Scheme is the Krawczyk composed scheme.
type Scheme struct {
	n, k   int
	random rng.Source
	cipher cipher.Cipher
	keys   *sss.Engine
	data   *sss.Engine
	logger logging.Logger
}

var _ sss.PartialReconstructor = (*Scheme)(nil)

// New creates a Scheme.
func New(cfg Config) (*Scheme, error) {
	if cfg.Random == nil {
		cfg.Random = rng.NewCryptoSource()
	}
	if cfg.Cipher == nil {
		cfg.Cipher = cipher.SelectOptimal()
	}
	logger := logging.OrNoOp(cfg.Logger)

	base := sss.Config{
		Threshold:   cfg.Threshold,
		TotalShares: cfg.TotalShares,
		Random:      cfg.Random,
		Decoder:     cfg.Decoder,
		Logger:      logger,
	}
	keys, err := sss.NewShamir(base)
	if err != nil {
		return nil, err
	}
	data, err := sss.NewRabinIDS(base)
	if err != nil {
		return nil, err
	}

	return &Scheme{
		n:      cfg.TotalShares,
		k:      cfg.Threshold,
		random: cfg.Random,
		cipher: cfg.Cipher,
		keys:   keys,
		data:   data,
		logger: logger.With(logging.String("algorithm", string(share.AlgorithmKrawczyk))),
	}, nil
}

func (s *Scheme) Threshold() int             { return s.k }
func (s *Scheme) TotalShares() int           { return s.n }
func (s *Scheme) Algorithm() share.Algorithm { return share.AlgorithmKrawczyk }

// Cipher returns the cipher new shares are encrypted with.
func (s *Scheme) Cipher() cipher.Cipher { return s.cipher }

// Share encrypts data under a fresh key and shares ciphertext and key.
func (s *Scheme) Share(data []byte) ([]share.Share, error) {
	key := make([]byte, s.cipher.KeyLength())
	if _, err := io.ReadFull(s.random, key); err != nil {
		return nil, fmt.Errorf("krawczyk: generate key: %w", err)
	}
	defer clear(key)

	ct, err := s.cipher.Encrypt(data, key)
	if err != nil {
		return nil, share.Invariantf("krawczyk.Share", "encrypt: %v", err)
	}
	contentShares, err := s.data.Share(ct)
	if err != nil {
		return nil, err
	}
	keyShares, err := s.keys.Share(key)
	if err != nil {
		return nil, err
	}

	out := make([]share.Share, s.n)
	for i := range out {
		ks, err := share.NewKrawczyk(share.KrawczykParams{
			ID:             contentShares[i].ID(),
			Content:        contentShares[i].YValues(),
			ContentLength:  len(ct),
			Key:            keyShares[i].YValues(),
			OriginalLength: len(data),
			Cipher:         s.cipher.Algorithm(),
		})
		if err != nil {
			return nil, err
		}
		out[i] = ks
	}

	s.logger.Debug("shared data",
		logging.Int("bytes", len(data)),
		logging.String("cipher", s.cipher.Algorithm()))
	return out, nil
}

// Reconstruct recovers the key, then the ciphertext, then decrypts.
func (s *Scheme) Reconstruct(shares []share.Share) (*sss.Reconstruction, error) {
	ks, err := s.unpack(shares, false)
	if err != nil {
		return nil, err
	}
	c, err := s.cipherFor(ks)
	if err != nil {
		return nil, err
	}
	key, err := s.reconstructKey(ks)
	if err != nil {
		return nil, err
	}
	defer clear(key)

	content := make([]share.Share, len(ks))
	for i, k := range ks {
		content[i] = k.ContentShare(s.k)
	}
	ct, err := s.data.Reconstruct(content)
	if err != nil {
		return nil, err
	}

	data, err := c.Decrypt(ct.Data, key)
	if err != nil {
		if errors.Is(err, cipher.ErrAuthentication) {
			return nil, sss.Reconstructf(share.AlgorithmKrawczyk, err, "ciphertext failed authentication")
		}
		return nil, share.Invariantf("krawczyk.Reconstruct", "decrypt: %v", err)
	}
	return &sss.Reconstruction{Data: data}, nil
}

// ReconstructPartial decodes the data from byte start onward. Each share
// must be a window from Window (or a complete share, which is windowed
// here) starting at content y-index start/k. Neither MAC tags nor the
// cipher's tag are checked; the result carries warnings saying so.
func (s *Scheme) ReconstructPartial(shares []share.Share, start int) (*sss.Reconstruction, error) {
	const op = "krawczyk.ReconstructPartial"
	ks, err := s.unpack(shares, true)
	if err != nil {
		return nil, err
	}
	rd, err := s.cipherFor(ks)
	if err != nil {
		return nil, err
	}
	partial, ok := rd.(cipher.RangeDecrypter)
	if !ok {
		return nil, sss.Configf("cipher", "%s does not support range decryption", rd.Algorithm())
	}

	originalLength := ks[0].OriginalLength()
	if start < 0 || start > originalLength {
		return nil, share.Invariantf(op, "start %d outside [0,%d]", start, originalLength)
	}
	result := &sss.Reconstruction{}
	result.Warn(sss.WarningInformationCheckingSkipped, "partial reconstruction does not verify share tags")
	result.Warn(sss.WarningUnauthenticated, fmt.Sprintf("%s tag not verified for a partial range", rd.Algorithm()))
	if start == originalLength {
		result.Data = []byte{}
		return result, nil
	}

	first := start / s.k
	for i, k := range ks {
		if !k.IsWindow() {
			w, err := k.Window(first, len(k.YValues()))
			if err != nil {
				return nil, err
			}
			ks[i] = w
			continue
		}
		if k.WindowStart() != first {
			return nil, share.Invariantf(op, "share %d window starts at y-index %d, start %d needs %d",
				k.ID(), k.WindowStart(), start, first)
		}
	}

	key, err := s.reconstructKey(ks)
	if err != nil {
		return nil, err
	}
	defer clear(key)

	content := make([]share.Share, len(ks))
	for i, k := range ks {
		content[i] = k.ContentShare(s.k)
	}
	window, err := s.data.Reconstruct(content)
	if err != nil {
		return nil, err
	}

	offset := first * s.k
	pt, err := partial.DecryptRange(window.Data, key, offset)
	if err != nil {
		return nil, share.Invariantf(op, "decrypt range: %v", err)
	}
	end := min(offset+len(pt), originalLength)
	result.Data = pt[start-offset : end-offset]

	s.logger.Debug("partial reconstruction",
		logging.Int("start", start),
		logging.Int("bytes", len(result.Data)))
	return result, nil
}

// unpack checks the variant of every share. MAC wrappers are only
// accepted (and stripped, unverified) for partial reconstruction.
func (s *Scheme) unpack(shares []share.Share, partial bool) ([]*share.Krawczyk, error) {
	if err := share.Validate(shares, s.n); err != nil {
		return nil, err
	}
	if len(shares) < s.k {
		return nil, sss.InsufficientShares(share.AlgorithmKrawczyk, len(shares), s.k)
	}
	out := make([]*share.Krawczyk, len(shares))
	for i, sh := range shares {
		if m, ok := sh.(*share.MAC); ok && partial {
			sh = m.Inner()
		}
		k, err := share.AsKrawczyk(sh)
		if err != nil {
			return nil, err
		}
		if k.IsWindow() && !partial {
			return nil, share.Invariantf("krawczyk.Reconstruct", "share %d is a partial window", k.ID())
		}
		if i > 0 && (k.Cipher() != out[0].Cipher() || k.ContentLength() != out[0].ContentLength()) {
			return nil, share.Invariantf("krawczyk.Reconstruct", "share %d disagrees with share %d on cipher or content length",
				k.ID(), out[0].ID())
		}
		out[i] = k
	}
	return out, nil
}

// cipherFor resolves the cipher the shares were encrypted with.
func (s *Scheme) cipherFor(ks []*share.Krawczyk) (cipher.Cipher, error) {
	name := ks[0].Cipher()
	if name == s.cipher.Algorithm() {
		return s.cipher, nil
	}
	c, err := cipher.ByName(name)
	if err != nil {
		return nil, share.Invariantf("krawczyk.Reconstruct", "shares use unknown cipher %q", name)
	}
	return c, nil
}

func (s *Scheme) reconstructKey(ks []*share.Krawczyk) ([]byte, error) {
	keyShares := make([]share.Share, len(ks))
	for i, k := range ks {
		keyShares[i] = k.KeyShare()
	}
	key, err := s.keys.Reconstruct(keyShares)
	if err != nil {
		return nil, err
	}
	return key.Data, nil
}

// Window cuts the part of s needed to reconstruct data bytes
// [start, start+length) with ReconstructPartial. MAC wrappers are dropped.
func Window(s share.Share, k, start, length int) (*share.Krawczyk, error) {
	if m, ok := s.(*share.MAC); ok {
		s = m.Inner()
	}
	ks, err := share.AsKrawczyk(s)
	if err != nil {
		return nil, err
	}
	if k < 1 || start < 0 || length < 1 {
		return nil, share.Invariantf("krawczyk.Window", "invalid range start=%d length=%d k=%d", start, length, k)
	}
	end := min(start+length, ks.OriginalLength())
	return ks.Window(start/k, (end+k-1)/k)
}
