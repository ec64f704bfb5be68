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

package share

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustShamir(t *testing.T, id int, y []byte) *Shamir {
	t.Helper()
	s, err := NewShamir(id, y, len(y))
	require.NoError(t, err)
	return s
}

func mustKrawczyk(t *testing.T, id int) *Krawczyk {
	t.Helper()
	s, err := NewKrawczyk(KrawczykParams{
		ID:             id,
		Content:        []byte{1, 2, 3, 4, 5, 6},
		ContentLength:  26,
		Key:            bytes.Repeat([]byte{byte(id)}, 32),
		OriginalLength: 10,
		Cipher:         "aes-256-gcm",
	})
	require.NoError(t, err)
	return s
}

func TestNewShamir(t *testing.T) {
	tests := []struct {
		name    string
		id      int
		y       []byte
		length  int
		wantErr bool
	}{
		{name: "valid", id: 1, y: []byte{1, 2}, length: 2},
		{name: "max id", id: MaxShares, y: []byte{1}, length: 1},
		{name: "empty secret", id: 3, y: []byte{}, length: 0},
		{name: "zero id", id: 0, y: []byte{1}, length: 1, wantErr: true},
		{name: "id too large", id: 256, y: []byte{1}, length: 1, wantErr: true},
		{name: "length mismatch", id: 1, y: []byte{1, 2}, length: 3, wantErr: true},
		{name: "negative length", id: 1, y: []byte{}, length: -1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewShamir(tt.id, tt.y, tt.length)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvariant)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.id, s.ID())
			assert.Equal(t, AlgorithmShamir, s.Algorithm())
			assert.Equal(t, tt.length, s.OriginalLength())
			assert.Equal(t, tt.y, s.YValues())
		})
	}
}

func TestNewRabinIDS(t *testing.T) {
	s, err := NewRabinIDS(4, []byte{9, 9}, 5)
	require.NoError(t, err)
	assert.Equal(t, AlgorithmRabinIDS, s.Algorithm())
	assert.Equal(t, 5, s.OriginalLength())
	assert.Contains(t, s.String(), "rabin-ids")

	_, err = NewRabinIDS(0, nil, 0)
	assert.ErrorIs(t, err, ErrInvariant)
}

func TestNewKrawczyk(t *testing.T) {
	s := mustKrawczyk(t, 2)
	assert.Equal(t, AlgorithmKrawczyk, s.Algorithm())
	assert.Equal(t, 26, s.ContentLength())
	assert.Equal(t, "aes-256-gcm", s.Cipher())
	assert.False(t, s.IsWindow())

	key := s.KeyShare()
	assert.Equal(t, 2, key.ID())
	assert.Equal(t, 32, key.OriginalLength())

	content := s.ContentShare(5)
	assert.Equal(t, 26, content.OriginalLength())

	base := KrawczykParams{ID: 1, Content: []byte{1}, ContentLength: 17, Key: []byte{1}, OriginalLength: 1, Cipher: "c"}
	for name, mutate := range map[string]func(p *KrawczykParams){
		"short content": func(p *KrawczykParams) { p.ContentLength = 0 },
		"missing key":   func(p *KrawczykParams) { p.Key = nil },
		"missing tag":   func(p *KrawczykParams) { p.Cipher = "" },
		"bad id":        func(p *KrawczykParams) { p.ID = 0 },
	} {
		t.Run(name, func(t *testing.T) {
			p := base
			mutate(&p)
			_, err := NewKrawczyk(p)
			assert.ErrorIs(t, err, ErrInvariant)
		})
	}
}

func TestKrawczyk_Window(t *testing.T) {
	s := mustKrawczyk(t, 1)

	w, err := s.Window(2, 4)
	require.NoError(t, err)
	assert.True(t, w.IsWindow())
	assert.Equal(t, 2, w.WindowStart())
	assert.Equal(t, []byte{3, 4}, w.YValues())
	assert.Equal(t, s.KeyYValues(), w.KeyYValues())
	assert.Equal(t, 10, w.ContentShare(5).OriginalLength())

	clipped, err := s.Window(4, 100)
	require.NoError(t, err)
	assert.Equal(t, []byte{5, 6}, clipped.YValues())

	_, err = w.Window(0, 1)
	assert.ErrorIs(t, err, ErrInvariant)

	_, err = s.Window(3, 3)
	assert.ErrorIs(t, err, ErrInvariant)
}

func TestNewMAC(t *testing.T) {
	inner := mustShamir(t, 2, []byte{7, 8})
	tags := [][]byte{{1}, {2}, {3}}
	keys := [][]byte{{4}, {5}, {6}}

	m, err := NewMAC(inner, AlgorithmCevallos, tags, keys)
	require.NoError(t, err)
	assert.Equal(t, 2, m.ID())
	assert.Equal(t, AlgorithmShamir, m.Algorithm())
	assert.Equal(t, AlgorithmCevallos, m.Checking())
	assert.Equal(t, 3, m.Peers())
	assert.Equal(t, inner.AuthenticatedBytes(), m.AuthenticatedBytes())
	assert.Same(t, inner, m.Inner())

	tag, err := m.Tag(3)
	require.NoError(t, err)
	assert.Equal(t, []byte{3}, tag)
	key, err := m.Key(1)
	require.NoError(t, err)
	assert.Equal(t, []byte{4}, key)

	_, err = m.Tag(0)
	assert.ErrorIs(t, err, ErrInvariant)
	_, err = m.Key(4)
	assert.ErrorIs(t, err, ErrInvariant)

	_, err = NewMAC(m, AlgorithmCevallos, tags, keys)
	assert.ErrorIs(t, err, ErrInvariant, "nested")
	_, err = NewMAC(inner, AlgorithmShamir, tags, keys)
	assert.ErrorIs(t, err, ErrInvariant, "not a checking algorithm")
	_, err = NewMAC(inner, AlgorithmRabinBenOr, tags, keys[:2])
	assert.ErrorIs(t, err, ErrInvariant, "length mismatch")
	_, err = NewMAC(inner, AlgorithmRabinBenOr, tags[:1], keys[:1])
	assert.ErrorIs(t, err, ErrInvariant, "id beyond peers")
}

func TestAccessors(t *testing.T) {
	sh := mustShamir(t, 1, []byte{1})
	kr := mustKrawczyk(t, 1)
	m, err := NewMAC(sh, AlgorithmRabinBenOr, [][]byte{{1}}, [][]byte{{1}})
	require.NoError(t, err)

	got, err := AsShamir(sh)
	require.NoError(t, err)
	assert.Same(t, sh, got)

	_, err = AsShamir(kr)
	assert.ErrorIs(t, err, ErrInvariant)
	assert.Contains(t, err.Error(), "got krawczyk")

	_, err = AsRabinIDS(sh)
	assert.ErrorIs(t, err, ErrInvariant)

	_, err = AsKrawczyk(nil)
	assert.ErrorIs(t, err, ErrInvariant)
	assert.Contains(t, err.Error(), "got nil")

	_, err = AsMAC(sh)
	assert.ErrorIs(t, err, ErrInvariant)

	_, err = AsShamir(m)
	assert.ErrorIs(t, err, ErrInvariant)
	assert.Contains(t, err.Error(), "rabin-ben-or/shamir")

	gotMAC, err := AsMAC(m)
	require.NoError(t, err)
	assert.Same(t, m, gotMAC)
}

func TestAuthenticatedBytes_Distinct(t *testing.T) {
	a := mustShamir(t, 1, []byte{1, 2})
	b := mustShamir(t, 2, []byte{1, 2})
	c := mustShamir(t, 1, []byte{1, 3})
	r, err := NewRabinIDS(1, []byte{1, 2}, 2)
	require.NoError(t, err)

	encodings := [][]byte{a.AuthenticatedBytes(), b.AuthenticatedBytes(), c.AuthenticatedBytes(), r.AuthenticatedBytes()}
	for i := range encodings {
		assert.True(t, bytes.HasPrefix(encodings[i], frameMagic))
		for j := i + 1; j < len(encodings); j++ {
			assert.NotEqual(t, encodings[i], encodings[j], "%d vs %d", i, j)
		}
	}
	assert.Equal(t, a.AuthenticatedBytes(), mustShamir(t, 1, []byte{1, 2}).AuthenticatedBytes())

	k1 := mustKrawczyk(t, 1)
	k2, err := NewKrawczyk(KrawczykParams{
		ID: 1, Content: k1.YValues(), ContentLength: 26, Key: k1.KeyYValues(),
		OriginalLength: 10, Cipher: "chacha20-poly1305",
	})
	require.NoError(t, err)
	assert.NotEqual(t, k1.AuthenticatedBytes(), k2.AuthenticatedBytes(), "cipher tag is authenticated")
}

func TestValidate(t *testing.T) {
	s1 := mustShamir(t, 1, []byte{1})
	s2 := mustShamir(t, 2, []byte{2})
	s3 := mustShamir(t, 3, []byte{3, 4})
	r, err := NewRabinIDS(3, []byte{1}, 1)
	require.NoError(t, err)

	assert.NoError(t, Validate(nil, 5))
	assert.NoError(t, Validate([]Share{s2, s1}, 2))

	tests := map[string][]Share{
		"duplicate":    {s1, s1},
		"out of range": {s1, s2},
		"mixed alg":    {s1, r},
		"mixed length": {s1, s3},
		"nil element":  {s1, nil},
		"nil at start": {nil, s1},
	}
	n := map[string]int{"out of range": 1}
	for name, shares := range tests {
		t.Run(name, func(t *testing.T) {
			total := 5
			if v, ok := n[name]; ok {
				total = v
			}
			assert.ErrorIs(t, Validate(shares, total), ErrInvariant)
		})
	}

	assert.Equal(t, []int{2, 1}, IDs([]Share{s2, s1}))
	assert.Equal(t, []byte{2, 1}, XValues([]Share{s2, s1}))
}
