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

// Package legacy reads and writes go-keychain threshold shares: base64
// wrapped SSSaaS/sssa-golang strings over a 256-bit prime field, stored as
// JSON. smc migrate uses it to move old secrets onto GF(2^8) schemes.
package legacy

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/SSSaaS/sssa-golang"
)

// ErrNoShares is returned by Combine for an empty share list.
var ErrNoShares = errors.New("legacy: no shares provided")

// Share is one go-keychain share file.
type Share struct {
	// Index is the share number (1 to N)
	Index int `json:"index"`

	Threshold int `json:"threshold"`
	Total     int `json:"total"`

	// Value is the base64 encoded sssa share string.
	Value string `json:"value"`

	Metadata map[string]string `json:"metadata,omitempty"`
}

// Validate checks if the share has valid parameters
func (s *Share) Validate() error {
	switch {
	case s.Index < 1 || s.Index > s.Total:
		return fmt.Errorf("invalid share index: %d (must be in [1,%d])", s.Index, s.Total)
	case s.Threshold < 2:
		return fmt.Errorf("invalid threshold: %d (must be >= 2)", s.Threshold)
	case s.Total < s.Threshold:
		return fmt.Errorf("invalid total: %d (must be >= threshold %d)", s.Total, s.Threshold)
	case s.Value == "":
		return fmt.Errorf("share value is empty")
	}
	return nil
}

func (s *Share) String() string {
	return fmt.Sprintf("Share{Index: %d, Threshold: %d/%d}", s.Index, s.Threshold, s.Total)
}

// Split divides secret into total legacy shares, any threshold of which
// recover it. Kept for tests and for producing fixtures.
func Split(secret []byte, threshold, total int) ([]*Share, error) {
	if threshold < 2 {
		return nil, fmt.Errorf("threshold must be at least 2, got %d", threshold)
	}
	if total < threshold || total > 255 {
		return nil, fmt.Errorf("total shares must be in [%d,255], got %d", threshold, total)
	}
	if len(secret) == 0 {
		return nil, fmt.Errorf("secret cannot be empty")
	}

	values, err := sssa.Create(threshold, total, hex.EncodeToString(secret))
	if err != nil {
		return nil, fmt.Errorf("failed to split secret: %w", err)
	}
	shares := make([]*Share, len(values))
	for i, v := range values {
		shares[i] = &Share{
			Index:     i + 1,
			Threshold: threshold,
			Total:     total,
			Value:     base64.StdEncoding.EncodeToString([]byte(v)),
		}
	}
	return shares, nil
}

// Combine recovers the secret from at least threshold shares of one split.
func Combine(shares []*Share) ([]byte, error) {
	if len(shares) == 0 {
		return nil, ErrNoShares
	}
	first := shares[0]
	seen := make(map[int]struct{}, len(shares))
	values := make([]string, len(shares))
	for i, s := range shares {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("invalid share %d: %w", i, err)
		}
		if s.Threshold != first.Threshold || s.Total != first.Total {
			return nil, fmt.Errorf("share %d is %d-of-%d, share 0 is %d-of-%d",
				i, s.Threshold, s.Total, first.Threshold, first.Total)
		}
		if _, dup := seen[s.Index]; dup {
			return nil, fmt.Errorf("duplicate share index: %d", s.Index)
		}
		seen[s.Index] = struct{}{}

		raw, err := base64.StdEncoding.DecodeString(s.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to decode share %d: %w", i, err)
		}
		values[i] = string(raw)
	}
	if len(shares) < first.Threshold {
		return nil, fmt.Errorf("need at least %d shares, got %d", first.Threshold, len(shares))
	}

	secretHex, err := sssa.Combine(values)
	if err != nil {
		return nil, fmt.Errorf("failed to combine shares: %w", err)
	}
	secret, err := hex.DecodeString(secretHex)
	if err != nil {
		return nil, fmt.Errorf("failed to parse hex secret: %w", err)
	}
	return secret, nil
}

// ReadFile loads a legacy share file.
func ReadFile(path string) (*Share, error) {
	// #nosec G304 - share paths are supplied by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("legacy: read %s: %w", path, err)
	}
	var s Share
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("legacy: decode %s: %w", path, err)
	}
	return &s, nil
}

// WriteFile stores s at path as JSON.
func WriteFile(path string, s *Share) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("legacy: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("legacy: write %s: %w", path, err)
	}
	return nil
}
