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

// Package sharefile stores one share per file in a versioned JSON envelope.
// Every share of a split carries the same random set id so shares of
// different splits are never combined.
package sharefile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/jeremyhahn/go-smc/pkg/share"
)

// Version is the envelope format written by Encode.
const Version = 1

var (
	// ErrVersion is returned for envelopes written by a newer format.
	ErrVersion = errors.New("sharefile: unsupported version")

	// ErrMixedSets is returned when shares from different splits are
	// combined.
	ErrMixedSets = errors.New("sharefile: shares belong to different sets")
)

// Envelope is the on-disk form of one share.
type Envelope struct {
	Version   int       `json:"version"`
	SetID     uuid.UUID `json:"set_id"`
	Algorithm string    `json:"algorithm"`
	Checking  string    `json:"checking,omitempty"`
	MAC       string    `json:"mac,omitempty"`
	Security  int       `json:"security_bits,omitempty"`
	Threshold int       `json:"threshold"`
	Total     int       `json:"total"`
	Share     Body      `json:"share"`
}

// Body holds the share fields. Fields a variant does not use are omitted.
type Body struct {
	ID             int    `json:"id"`
	OriginalLength int    `json:"original_length"`
	Y              []byte `json:"y"`

	ContentLength int    `json:"content_length,omitempty"`
	Key           []byte `json:"key,omitempty"`
	Cipher        string `json:"cipher,omitempty"`

	Tags [][]byte `json:"tags,omitempty"`
	Keys [][]byte `json:"keys,omitempty"`
}

// Set describes the split a share file belongs to. Algorithm and Checking
// are filled by ReadSet; Encode takes them from the share.
type Set struct {
	ID        uuid.UUID
	Threshold int
	Total     int

	// MAC and SecurityBits record the information-checking parameters.
	MAC          string
	SecurityBits int

	Algorithm string
	Checking  string
}

// NewSet returns a Set with a fresh random id.
func NewSet(threshold, total int) Set {
	return Set{ID: uuid.New(), Threshold: threshold, Total: total}
}

// Encode wraps s in an envelope. Partial windows cannot be stored.
func Encode(set Set, s share.Share) (*Envelope, error) {
	env := &Envelope{
		Version:   Version,
		SetID:     set.ID,
		Algorithm: string(s.Algorithm()),
		Threshold: set.Threshold,
		Total:     set.Total,
	}
	inner := s
	if m, ok := s.(*share.MAC); ok {
		env.Checking = string(m.Checking())
		env.MAC = set.MAC
		env.Security = set.SecurityBits
		for p := 1; p <= m.Peers(); p++ {
			tag, err := m.Tag(p)
			if err != nil {
				return nil, err
			}
			key, err := m.Key(p)
			if err != nil {
				return nil, err
			}
			env.Share.Tags = append(env.Share.Tags, tag)
			env.Share.Keys = append(env.Share.Keys, key)
		}
		inner = m.Inner()
	}

	env.Share.ID = inner.ID()
	env.Share.OriginalLength = inner.OriginalLength()
	env.Share.Y = inner.YValues()
	if k, ok := inner.(*share.Krawczyk); ok {
		if k.IsWindow() {
			return nil, share.Invariantf("sharefile.Encode", "share %d is a partial window", k.ID())
		}
		env.Share.ContentLength = k.ContentLength()
		env.Share.Key = k.KeyYValues()
		env.Share.Cipher = k.Cipher()
	}
	return env, nil
}

// Decode rebuilds the share held by env.
func (env *Envelope) Decode() (share.Share, error) {
	if env.Version < 1 || env.Version > Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, env.Version)
	}
	b := env.Share

	var inner share.Share
	var err error
	switch share.Algorithm(env.Algorithm) {
	case share.AlgorithmShamir:
		inner, err = share.NewShamir(b.ID, b.Y, b.OriginalLength)
	case share.AlgorithmRabinIDS:
		inner, err = share.NewRabinIDS(b.ID, b.Y, b.OriginalLength)
	case share.AlgorithmKrawczyk:
		inner, err = share.NewKrawczyk(share.KrawczykParams{
			ID:             b.ID,
			Content:        b.Y,
			ContentLength:  b.ContentLength,
			Key:            b.Key,
			OriginalLength: b.OriginalLength,
			Cipher:         b.Cipher,
		})
	default:
		return nil, share.Invariantf("sharefile.Decode", "unknown algorithm %q", env.Algorithm)
	}
	if err != nil {
		return nil, err
	}
	if env.Checking == "" {
		return inner, nil
	}
	return share.NewMAC(inner, share.Algorithm(env.Checking), b.Tags, b.Keys)
}

// Set returns the split env belongs to.
func (env *Envelope) Set() Set {
	return Set{
		ID:           env.SetID,
		Threshold:    env.Threshold,
		Total:        env.Total,
		MAC:          env.MAC,
		SecurityBits: env.Security,
		Algorithm:    env.Algorithm,
		Checking:     env.Checking,
	}
}

// Marshal encodes env as indented JSON.
func Marshal(env *Envelope) ([]byte, error) {
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("sharefile: encode: %w", err)
	}
	return append(data, '\n'), nil
}

// Unmarshal parses an envelope.
func Unmarshal(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("sharefile: decode: %w", err)
	}
	return &env, nil
}

// Write stores s at path.
func Write(path string, set Set, s share.Share) error {
	env, err := Encode(set, s)
	if err != nil {
		return err
	}
	data, err := Marshal(env)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("sharefile: write %s: %w", path, err)
	}
	return nil
}

// Read loads the envelope at path.
func Read(path string) (*Envelope, error) {
	// #nosec G304 - share paths are supplied by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sharefile: read %s: %w", path, err)
	}
	env, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return env, nil
}

// ReadSet loads every path, checks they come from one split and decodes
// the shares.
func ReadSet(paths []string) (Set, []share.Share, error) {
	var set Set
	shares := make([]share.Share, 0, len(paths))
	for i, path := range paths {
		env, err := Read(path)
		if err != nil {
			return Set{}, nil, err
		}
		got := env.Set()
		if i == 0 {
			set = got
		} else if got != set {
			return Set{}, nil, fmt.Errorf("%w: %s is from set %s, expected %s", ErrMixedSets, path, env.SetID, set.ID)
		}
		s, err := env.Decode()
		if err != nil {
			return Set{}, nil, fmt.Errorf("%s: %w", path, err)
		}
		shares = append(shares, s)
	}
	return set, shares, nil
}
