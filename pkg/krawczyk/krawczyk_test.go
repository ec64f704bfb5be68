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

package krawczyk

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-smc/pkg/crypto/cipher"
	"github.com/jeremyhahn/go-smc/pkg/decode"
	"github.com/jeremyhahn/go-smc/pkg/rng"
	"github.com/jeremyhahn/go-smc/pkg/share"
	"github.com/jeremyhahn/go-smc/pkg/sss"
)

func newScheme(t *testing.T, n, k int, c cipher.Cipher, kind decode.Kind) *Scheme {
	t.Helper()
	src, err := rng.NewStreamSource([]byte("krawczyk test"))
	require.NoError(t, err)
	s, err := New(Config{Threshold: k, TotalShares: n, Random: src, Cipher: c, Decoder: kind})
	require.NoError(t, err)
	return s
}

func testData(size int) []byte {
	r := rand.New(rand.NewSource(int64(size)))
	b := make([]byte, size)
	r.Read(b)
	return b
}

func TestRoundTrip(t *testing.T) {
	ciphers := []cipher.Cipher{cipher.NewAESGCM(), cipher.NewChaCha20Poly1305()}
	for _, c := range ciphers {
		t.Run(c.Algorithm(), func(t *testing.T) {
			s := newScheme(t, 7, 4, c, decode.KindErasure)
			data := testData(1000)

			shares, err := s.Share(data)
			require.NoError(t, err)
			require.Len(t, shares, 7)
			for i, sh := range shares {
				ks, err := share.AsKrawczyk(sh)
				require.NoError(t, err)
				assert.Equal(t, i+1, ks.ID())
				assert.Equal(t, c.Algorithm(), ks.Cipher())
				assert.Equal(t, len(data)+cipher.TagSize, ks.ContentLength())
				assert.Len(t, ks.YValues(), (len(data)+cipher.TagSize+3)/4)
				assert.Len(t, ks.KeyYValues(), cipher.KeySize)
			}

			got, err := s.Reconstruct(shares[3:])
			require.NoError(t, err)
			assert.Equal(t, data, got.Data)
			assert.Empty(t, got.Warnings)
		})
	}
}

func TestShare_SmallData(t *testing.T) {
	s := newScheme(t, 3, 2, nil, decode.KindErasure)
	shares, err := s.Share([]byte{42})
	require.NoError(t, err)
	got, err := s.Reconstruct([]share.Share{shares[2], shares[0]})
	require.NoError(t, err)
	assert.Equal(t, []byte{42}, got.Data)
}

// A Krawczyk share decomposes into an ordinary Rabin-IDS share of the
// ciphertext and an ordinary Shamir share of the key.
func TestShares_Decompose(t *testing.T) {
	c := cipher.NewChaCha20Poly1305()
	s := newScheme(t, 5, 3, c, decode.KindErasure)
	data := testData(77)
	shares, err := s.Share(data)
	require.NoError(t, err)

	rabin, err := sss.NewRabinIDS(sss.Config{Threshold: 3, TotalShares: 5})
	require.NoError(t, err)
	shamir, err := sss.NewShamir(sss.Config{Threshold: 3, TotalShares: 5})
	require.NoError(t, err)

	content := make([]share.Share, 3)
	keys := make([]share.Share, 3)
	for i, sh := range shares[:3] {
		ks, err := share.AsKrawczyk(sh)
		require.NoError(t, err)
		content[i] = ks.ContentShare(3)
		keys[i] = ks.KeyShare()
	}
	ct, err := rabin.Reconstruct(content)
	require.NoError(t, err)
	key, err := shamir.Reconstruct(keys)
	require.NoError(t, err)

	pt, err := c.Decrypt(ct.Data, key.Data)
	require.NoError(t, err)
	assert.Equal(t, data, pt)
}

func TestReconstruct_Tampered(t *testing.T) {
	s := newScheme(t, 5, 3, nil, decode.KindErasure)
	shares, err := s.Share(testData(64))
	require.NoError(t, err)

	ks, err := share.AsKrawczyk(shares[0])
	require.NoError(t, err)
	y := bytes.Clone(ks.YValues())
	y[5] ^= 0x40
	bad, err := share.NewKrawczyk(share.KrawczykParams{
		ID:             ks.ID(),
		Content:        y,
		ContentLength:  ks.ContentLength(),
		Key:            ks.KeyYValues(),
		OriginalLength: ks.OriginalLength(),
		Cipher:         ks.Cipher(),
	})
	require.NoError(t, err)

	_, err = s.Reconstruct([]share.Share{bad, shares[1], shares[2]})
	require.Error(t, err)
	assert.ErrorIs(t, err, sss.ErrReconstruction)
	assert.ErrorIs(t, err, cipher.ErrAuthentication)
}

func TestReconstruct_BerlekampWelch(t *testing.T) {
	s := newScheme(t, 7, 3, nil, decode.KindBerlekampWelch)
	data := testData(200)
	shares, err := s.Share(data)
	require.NoError(t, err)

	// (7-3)/2 = 2 shares may be corrupt.
	for _, idx := range []int{1, 4} {
		ks, err := share.AsKrawczyk(shares[idx])
		require.NoError(t, err)
		y := bytes.Clone(ks.YValues())
		key := bytes.Clone(ks.KeyYValues())
		for i := range y {
			y[i] ^= byte(idx + 1)
		}
		key[0] ^= 0xff
		shares[idx], err = share.NewKrawczyk(share.KrawczykParams{
			ID: ks.ID(), Content: y, ContentLength: ks.ContentLength(), Key: key,
			OriginalLength: ks.OriginalLength(), Cipher: ks.Cipher(),
		})
		require.NoError(t, err)
	}

	got, err := s.Reconstruct(shares)
	require.NoError(t, err)
	assert.Equal(t, data, got.Data)
}

func TestReconstruct_Invariants(t *testing.T) {
	s := newScheme(t, 5, 3, nil, decode.KindErasure)
	shares, err := s.Share(testData(40))
	require.NoError(t, err)

	_, err = s.Reconstruct(shares[:2])
	assert.ErrorIs(t, err, sss.ErrReconstruction)

	shamir, err := share.NewShamir(1, []byte{1}, 1)
	require.NoError(t, err)
	_, err = s.Reconstruct([]share.Share{shamir, shamir, shamir})
	assert.ErrorIs(t, err, share.ErrInvariant)

	w, err := Window(shares[0], 3, 0, 10)
	require.NoError(t, err)
	_, err = s.Reconstruct([]share.Share{w, shares[1], shares[2]})
	assert.ErrorIs(t, err, share.ErrInvariant)
}

func TestReconstructPartial(t *testing.T) {
	ciphers := []cipher.Cipher{cipher.NewAESGCM(), cipher.NewChaCha20Poly1305()}
	for _, c := range ciphers {
		t.Run(c.Algorithm(), func(t *testing.T) {
			const n, k = 6, 4
			s := newScheme(t, n, k, c, decode.KindErasure)
			data := testData(500)
			shares, err := s.Share(data)
			require.NoError(t, err)

			ranges := [][2]int{{0, 10}, {1, 1}, {63, 9}, {64, 64}, {130, 200}, {490, 10}, {499, 1}}
			for _, r := range ranges {
				start, length := r[0], r[1]
				windows := make([]share.Share, k)
				for i := range windows {
					w, err := Window(shares[i+1], k, start, length)
					require.NoError(t, err)
					windows[i] = w
				}
				got, err := s.ReconstructPartial(windows, start)
				require.NoError(t, err, "range %v", r)
				require.GreaterOrEqual(t, len(got.Data), length, "range %v", r)
				assert.Equal(t, data[start:start+length], got.Data[:length], "range %v", r)
				assert.True(t, got.HasWarning(sss.WarningUnauthenticated))
				assert.True(t, got.HasWarning(sss.WarningInformationCheckingSkipped))
			}
		})
	}
}

func TestReconstructPartial_CompleteShares(t *testing.T) {
	s := newScheme(t, 5, 3, nil, decode.KindErasure)
	data := testData(100)
	shares, err := s.Share(data)
	require.NoError(t, err)

	got, err := s.ReconstructPartial(shares[:3], 37)
	require.NoError(t, err)
	assert.Equal(t, data[37:], got.Data)

	end, err := s.ReconstructPartial(shares[:3], len(data))
	require.NoError(t, err)
	assert.Empty(t, end.Data)
	assert.Len(t, end.Warnings, 2)

	_, err = s.ReconstructPartial(shares[:3], len(data)+1)
	assert.ErrorIs(t, err, share.ErrInvariant)
	_, err = s.ReconstructPartial(shares[:3], -1)
	assert.ErrorIs(t, err, share.ErrInvariant)
}

func TestReconstructPartial_MisalignedWindow(t *testing.T) {
	s := newScheme(t, 5, 3, nil, decode.KindErasure)
	shares, err := s.Share(testData(90))
	require.NoError(t, err)

	windows := make([]share.Share, 3)
	for i := range windows {
		windows[i], err = Window(shares[i], 3, 30, 6)
		require.NoError(t, err)
	}
	_, err = s.ReconstructPartial(windows, 0)
	assert.ErrorIs(t, err, share.ErrInvariant)
}

func TestWindow(t *testing.T) {
	s := newScheme(t, 5, 3, nil, decode.KindErasure)
	shares, err := s.Share(testData(90))
	require.NoError(t, err)

	w, err := Window(shares[0], 3, 10, 8)
	require.NoError(t, err)
	assert.True(t, w.IsWindow())
	assert.Equal(t, 3, w.WindowStart())
	// bytes [10,18) live in y-values [3,6).
	assert.Len(t, w.YValues(), 3)

	_, err = Window(shares[0], 3, 0, 0)
	assert.ErrorIs(t, err, share.ErrInvariant)
	_, err = Window(w, 3, 0, 1)
	assert.ErrorIs(t, err, share.ErrInvariant)
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(Config{Threshold: 4, TotalShares: 3})
	assert.ErrorIs(t, err, sss.ErrConfiguration)
}
