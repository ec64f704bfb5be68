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

package legacy

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitCombine(t *testing.T) {
	secret := []byte("This is a secret message!")
	shares, err := Split(secret, 3, 5)
	require.NoError(t, err)
	require.Len(t, shares, 5)
	for i, s := range shares {
		assert.Equal(t, i+1, s.Index)
		assert.NoError(t, s.Validate())
	}

	got, err := Combine([]*Share{shares[4], shares[0], shares[2]})
	require.NoError(t, err)
	assert.Equal(t, secret, got)

	got, err = Combine(shares)
	require.NoError(t, err)
	assert.Equal(t, secret, got)
}

func TestSplit_InvalidParameters(t *testing.T) {
	tests := []struct {
		name             string
		secret           []byte
		threshold, total int
	}{
		{"threshold too low", []byte("x"), 1, 3},
		{"total below threshold", []byte("x"), 3, 2},
		{"total too high", []byte("x"), 2, 256},
		{"empty secret", nil, 2, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Split(tt.secret, tt.threshold, tt.total)
			assert.Error(t, err)
		})
	}
}

func TestCombine_Errors(t *testing.T) {
	_, err := Combine(nil)
	assert.ErrorIs(t, err, ErrNoShares)

	shares, err := Split([]byte("secret"), 3, 5)
	require.NoError(t, err)

	_, err = Combine(shares[:2])
	assert.ErrorContains(t, err, "need at least 3 shares")

	_, err = Combine([]*Share{shares[0], shares[0], shares[1]})
	assert.ErrorContains(t, err, "duplicate share index")

	other, err := Split([]byte("secret"), 2, 5)
	require.NoError(t, err)
	_, err = Combine([]*Share{shares[0], other[1], shares[2]})
	assert.ErrorContains(t, err, "2-of-5")

	bad := *shares[1]
	bad.Value = "!!!"
	_, err = Combine([]*Share{shares[0], &bad, shares[2]})
	assert.ErrorContains(t, err, "failed to decode share 1")
}

func TestShare_Validate(t *testing.T) {
	valid := Share{Index: 1, Threshold: 2, Total: 3, Value: "v"}
	assert.NoError(t, valid.Validate())

	for _, s := range []Share{
		{Index: 0, Threshold: 2, Total: 3, Value: "v"},
		{Index: 4, Threshold: 2, Total: 3, Value: "v"},
		{Index: 1, Threshold: 1, Total: 3, Value: "v"},
		{Index: 1, Threshold: 4, Total: 3, Value: "v"},
		{Index: 1, Threshold: 2, Total: 3},
	} {
		assert.Error(t, s.Validate(), "%s", s.String())
	}
}

func TestFiles(t *testing.T) {
	shares, err := Split([]byte("on disk"), 2, 3)
	require.NoError(t, err)
	shares[0].Metadata = map[string]string{"key_id": "k1"}

	path := filepath.Join(t.TempDir(), "share-1.json")
	require.NoError(t, WriteFile(path, shares[0]))
	loaded, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, shares[0], loaded)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
