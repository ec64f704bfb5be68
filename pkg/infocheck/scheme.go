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

package infocheck

import (
	"slices"

	"github.com/jeremyhahn/go-smc/pkg/crypto/mac"
	"github.com/jeremyhahn/go-smc/pkg/logging"
	"github.com/jeremyhahn/go-smc/pkg/rng"
	"github.com/jeremyhahn/go-smc/pkg/share"
	"github.com/jeremyhahn/go-smc/pkg/sss"
)

// DefaultSecurityBits is the Cevallos security target when none is set.
const DefaultSecurityBits = 128

// Config configures an information-checking layer.
type Config struct {
	// MAC defaults to HMAC-SHA256.
	MAC mac.Function

	// Random supplies MAC keys. Defaults to rng.NewCryptoSource().
	Random rng.Source

	// SecurityBits sizes Cevallos tags. Ignored by Rabin-Ben-Or.
	SecurityBits int

	Logger logging.Logger
}

func (c Config) withDefaults() Config {
	if c.MAC == nil {
		c.MAC = mac.NewHMACSHA256()
	}
	if c.Random == nil {
		c.Random = rng.NewCryptoSource()
	}
	if c.SecurityBits <= 0 {
		c.SecurityBits = DefaultSecurityBits
	}
	c.Logger = logging.OrNoOp(c.Logger)
	return c
}

// validity picks the positions of the valid shares from an accept matrix.
type validity func(accept [][]bool, k int) []int

// Scheme wraps a base scheme with information checking.
type Scheme struct {
	base     sss.Scheme
	checking share.Algorithm
	tagging  Tagging
	valid    validity
	random   rng.Source
	logger   logging.Logger
}

var _ sss.PartialReconstructor = (*Scheme)(nil)

// NewRabinBenOr wraps base with full-size tags. A share is valid when at
// least k holders accept it.
func NewRabinBenOr(base sss.Scheme, cfg Config) (*Scheme, error) {
	if base == nil {
		return nil, sss.Configf("base", "no base scheme")
	}
	cfg = cfg.withDefaults()
	return newScheme(base, cfg, share.AlgorithmRabinBenOr, Fixed(cfg.MAC), rabinBenOr), nil
}

// NewCevallos wraps base with tags shortened to TagLength. Validity is a
// fixpoint over the accept matrix, which requires n/3 <= k-1 < n/2.
func NewCevallos(base sss.Scheme, cfg Config) (*Scheme, error) {
	if base == nil {
		return nil, sss.Configf("base", "no base scheme")
	}
	n, k := base.TotalShares(), base.Threshold()
	if 3*(k-1) < n || 2*(k-1) >= n {
		return nil, sss.Configf("threshold", "cevallos needs n/3 <= k-1 < n/2, have n=%d k=%d", n, k)
	}
	cfg = cfg.withDefaults()
	return newScheme(base, cfg, share.AlgorithmCevallos, Compact(cfg.MAC, k, cfg.SecurityBits), cevallos), nil
}

func newScheme(base sss.Scheme, cfg Config, alg share.Algorithm, tagging Tagging, valid validity) *Scheme {
	return &Scheme{
		base:     base,
		checking: alg,
		tagging:  tagging,
		valid:    valid,
		random:   cfg.Random,
		logger: cfg.Logger.With(
			logging.String("checking", string(alg)),
			logging.String("algorithm", string(base.Algorithm()))),
	}
}

func (s *Scheme) Threshold() int   { return s.base.Threshold() }
func (s *Scheme) TotalShares() int { return s.base.TotalShares() }

// Algorithm returns the base algorithm; Checking names the layer.
func (s *Scheme) Algorithm() share.Algorithm { return s.base.Algorithm() }
func (s *Scheme) Checking() share.Algorithm  { return s.checking }

// Base returns the wrapped scheme.
func (s *Scheme) Base() sss.Scheme { return s.base }

// Tagging returns the MAC selection used for tags.
func (s *Scheme) Tagging() Tagging { return s.tagging }

// Share shares data with the base scheme and tags the result.
func (s *Scheme) Share(data []byte) ([]share.Share, error) {
	shares, err := s.base.Share(data)
	if err != nil {
		return nil, err
	}
	tagged, err := CreateTags(shares, s.checking, s.tagging, s.random)
	if err != nil {
		return nil, err
	}
	out := make([]share.Share, len(tagged))
	for i, m := range tagged {
		out[i] = m
	}
	return out, nil
}

// Report is the outcome of information checking over a share set.
type Report struct {
	// IDs lists the share ids in input order.
	IDs []int

	// Accept is the matrix from AcceptMatrix, indexed like IDs.
	Accept [][]bool

	// Valid and Rejected partition IDs.
	Valid    []int
	Rejected []int
}

// Verify checks the tags of shares without reconstructing.
func (s *Scheme) Verify(shares []share.Share) (*Report, error) {
	report, _, err := s.verify(shares)
	return report, err
}

func (s *Scheme) verify(shares []share.Share) (*Report, []*share.MAC, error) {
	macs, err := s.unwrap(shares)
	if err != nil {
		return nil, nil, err
	}
	report := &Report{
		IDs:    make([]int, len(macs)),
		Accept: AcceptMatrix(macs, s.tagging),
	}
	valid := make([]bool, len(macs))
	for _, pos := range s.valid(report.Accept, s.Threshold()) {
		valid[pos] = true
	}
	for pos, m := range macs {
		report.IDs[pos] = m.ID()
		if valid[pos] {
			report.Valid = append(report.Valid, m.ID())
		} else {
			report.Rejected = append(report.Rejected, m.ID())
		}
	}
	return report, macs, nil
}

// Reconstruct discards shares that fail information checking and
// reconstructs the rest with the base scheme. Rejected lists the ids of
// the discarded shares.
func (s *Scheme) Reconstruct(shares []share.Share) (*sss.Reconstruction, error) {
	k := s.Threshold()
	if len(shares) < k {
		if _, err := s.unwrap(shares); err != nil {
			return nil, err
		}
		return nil, sss.InsufficientShares(s.checking, len(shares), k)
	}
	report, macs, err := s.verify(shares)
	if err != nil {
		return nil, err
	}
	if len(report.Rejected) > 0 {
		s.logger.Warn("rejected shares failing information checking", logging.Ints("shares", report.Rejected))
	}
	if len(report.Valid) < k {
		return nil, sss.Reconstructf(s.checking, nil, "%d of %d shares passed information checking, need %d",
			len(report.Valid), len(macs), k)
	}

	inner := make([]share.Share, 0, len(report.Valid))
	for pos, m := range macs {
		if slices.Contains(report.Valid, report.IDs[pos]) {
			inner = append(inner, m.Inner())
		}
	}
	result, err := s.base.Reconstruct(inner)
	if err != nil {
		return nil, err
	}
	result.Rejected = append(result.Rejected, report.Rejected...)
	slices.Sort(result.Rejected)
	result.Rejected = slices.Compact(result.Rejected)
	return result, nil
}

// ReconstructPartial strips the tags and forwards to the base scheme
// without checking them.
func (s *Scheme) ReconstructPartial(shares []share.Share, start int) (*sss.Reconstruction, error) {
	partial, ok := s.base.(sss.PartialReconstructor)
	if !ok {
		return nil, sss.Configf("base", "%s does not support partial reconstruction", s.base.Algorithm())
	}
	inner := make([]share.Share, len(shares))
	for i, sh := range shares {
		if m, ok := sh.(*share.MAC); ok {
			sh = m.Inner()
		}
		inner[i] = sh
	}
	result, err := partial.ReconstructPartial(inner, start)
	if err != nil {
		return nil, err
	}
	result.Warn(sss.WarningInformationCheckingSkipped, "partial reconstruction does not verify share tags")
	return result, nil
}

// unwrap checks variant, checking algorithm and ids. Content is left to
// information checking.
func (s *Scheme) unwrap(shares []share.Share) ([]*share.MAC, error) {
	const op = "infocheck.Reconstruct"
	n := s.TotalShares()
	seen := make(map[int]struct{}, len(shares))
	out := make([]*share.MAC, len(shares))
	for i, sh := range shares {
		if sh == nil {
			return nil, share.Invariantf(op, "nil share at index %d", i)
		}
		m, err := share.AsMAC(sh)
		if err != nil {
			return nil, err
		}
		if m.Checking() != s.checking {
			return nil, share.Invariantf(op, "share %d uses %s checking, scheme uses %s", m.ID(), m.Checking(), s.checking)
		}
		id := m.ID()
		if id < 1 || id > n {
			return nil, share.Invariantf(op, "share id %d out of range [1,%d]", id, n)
		}
		if _, dup := seen[id]; dup {
			return nil, share.Invariantf(op, "duplicate share id %d", id)
		}
		seen[id] = struct{}{}
		out[i] = m
	}
	return out, nil
}

// rabinBenOr keeps every share at least k holders accept.
func rabinBenOr(accept [][]bool, k int) []int {
	var valid []int
	for a, row := range accept {
		if countAccepts(row, nil) >= k {
			valid = append(valid, a)
		}
	}
	return valid
}

// cevallos removes shares with fewer than k accepts among the remaining
// shares until no more drop out.
func cevallos(accept [][]bool, k int) []int {
	remaining := make([]bool, len(accept))
	for i := range remaining {
		remaining[i] = true
	}
	left := len(accept)
	for changed := true; changed && left >= k; {
		changed = false
		for a, row := range accept {
			if remaining[a] && countAccepts(row, remaining) < k {
				remaining[a] = false
				left--
				changed = true
			}
		}
	}
	if left < k {
		return nil
	}
	var valid []int
	for a, ok := range remaining {
		if ok {
			valid = append(valid, a)
		}
	}
	return valid
}

// countAccepts counts the verifiers accepting a share, restricted to
// within when it is non-nil.
func countAccepts(row []bool, within []bool) int {
	count := 0
	for b, ok := range row {
		if ok && (within == nil || within[b]) {
			count++
		}
	}
	return count
}
