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

package sharefile

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-smc/pkg/infocheck"
	"github.com/jeremyhahn/go-smc/pkg/krawczyk"
	"github.com/jeremyhahn/go-smc/pkg/share"
	"github.com/jeremyhahn/go-smc/pkg/sss"
)

func schemes(t *testing.T) map[string]sss.Scheme {
	t.Helper()
	cfg := sss.Config{Threshold: 2, TotalShares: 3}
	shamir, err := sss.NewShamir(cfg)
	require.NoError(t, err)
	rabin, err := sss.NewRabinIDS(cfg)
	require.NoError(t, err)
	kraw, err := krawczyk.New(krawczyk.Config{Threshold: 2, TotalShares: 3})
	require.NoError(t, err)
	checked, err := infocheck.NewRabinBenOr(kraw, infocheck.Config{})
	require.NoError(t, err)
	return map[string]sss.Scheme{
		"shamir":                shamir,
		"rabin-ids":             rabin,
		"krawczyk":              kraw,
		"krawczyk+rabin-ben-or": checked,
	}
}

func TestRoundTrip(t *testing.T) {
	secret := []byte("stored on disk")
	for name, scheme := range schemes(t) {
		t.Run(name, func(t *testing.T) {
			shares, err := scheme.Share(secret)
			require.NoError(t, err)

			set := NewSet(2, 3)
			dir := t.TempDir()
			paths := make([]string, len(shares))
			for i, s := range shares {
				paths[i] = filepath.Join(dir, fmt.Sprintf("share-%d.json", i+1))
				require.NoError(t, Write(paths[i], set, s))
			}

			gotSet, decoded, err := ReadSet(paths[1:])
			require.NoError(t, err)
			assert.Equal(t, set.ID, gotSet.ID)
			assert.Equal(t, 2, gotSet.Threshold)
			for i, s := range decoded {
				assert.Equal(t, shares[i+1].AuthenticatedBytes(), s.AuthenticatedBytes())
			}

			r, err := scheme.Reconstruct(decoded)
			require.NoError(t, err)
			assert.Equal(t, secret, r.Data)
		})
	}
}

func TestEncode_MAC(t *testing.T) {
	checked := schemes(t)["krawczyk+rabin-ben-or"]
	shares, err := checked.Share([]byte("tags"))
	require.NoError(t, err)

	env, err := Encode(NewSet(2, 3), shares[0])
	require.NoError(t, err)
	assert.Equal(t, "krawczyk", env.Algorithm)
	assert.Equal(t, "rabin-ben-or", env.Checking)
	assert.Len(t, env.Share.Tags, 3)
	assert.Len(t, env.Share.Keys, 3)
	assert.NotEmpty(t, env.Share.Key)

	s, err := env.Decode()
	require.NoError(t, err)
	m, err := share.AsMAC(s)
	require.NoError(t, err)
	assert.Equal(t, share.AlgorithmRabinBenOr, m.Checking())
}

func TestEncode_RejectsWindow(t *testing.T) {
	shares, err := schemes(t)["krawczyk"].Share([]byte("window me please"))
	require.NoError(t, err)
	w, err := krawczyk.Window(shares[0], 2, 0, 4)
	require.NoError(t, err)
	_, err = Encode(NewSet(2, 3), w)
	assert.ErrorIs(t, err, share.ErrInvariant)
}

func TestReadSet_MixedSets(t *testing.T) {
	shares, err := schemes(t)["shamir"].Share([]byte("a"))
	require.NoError(t, err)
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.json")
	require.NoError(t, Write(a, NewSet(2, 3), shares[0]))
	require.NoError(t, Write(b, NewSet(2, 3), shares[1]))

	_, _, err = ReadSet([]string{a, b})
	assert.ErrorIs(t, err, ErrMixedSets)
}

func TestDecode_Errors(t *testing.T) {
	_, err := (&Envelope{Version: 2, Algorithm: "shamir"}).Decode()
	assert.ErrorIs(t, err, ErrVersion)

	_, err = (&Envelope{Version: 1, Algorithm: "xor"}).Decode()
	assert.ErrorIs(t, err, share.ErrInvariant)

	_, err = (&Envelope{Version: 1, Algorithm: "shamir", Share: Body{ID: 1, Y: []byte{1, 2}, OriginalLength: 3}}).Decode()
	assert.ErrorIs(t, err, share.ErrInvariant)
}

func TestRead_Errors(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, err = Read(path)
	assert.ErrorContains(t, err, "sharefile: decode")
}

func TestMarshal_Format(t *testing.T) {
	s, err := share.NewShamir(1, []byte{0xde, 0xad}, 2)
	require.NoError(t, err)
	env, err := Encode(NewSet(2, 3), s)
	require.NoError(t, err)
	data, err := Marshal(env)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"y": "3q0="`)
	assert.Contains(t, string(data), `"set_id": "`+env.SetID.String()+`"`)
	assert.NotContains(t, string(data), "content_length")
	assert.NotContains(t, string(data), "checking")
}
