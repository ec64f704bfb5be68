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

package metrics

import (
	"time"

	"github.com/jeremyhahn/go-smc/pkg/share"
	"github.com/jeremyhahn/go-smc/pkg/sss"
)

// Scheme records metrics around every call to an underlying scheme.
type Scheme struct {
	sss.Scheme
	c     *Collector
	label string
}

// PartialScheme is a Scheme whose base supports partial reconstruction.
type PartialScheme struct {
	*Scheme
	partial sss.PartialReconstructor
}

var _ sss.PartialReconstructor = (*PartialScheme)(nil)

// Instrument wraps s so every operation is recorded in c. The result
// implements sss.PartialReconstructor when s does.
//
// Example:
//
//	scheme = metrics.Instrument(scheme, metrics.NewCollector(reg))
func Instrument(s sss.Scheme, c *Collector) sss.Scheme {
	in := &Scheme{Scheme: s, c: c, label: AlgorithmLabel(s)}
	if p, ok := s.(sss.PartialReconstructor); ok {
		return &PartialScheme{Scheme: in, partial: p}
	}
	return in
}

// AlgorithmLabel names s for the algorithm label, including the
// information-checking layer when there is one.
func AlgorithmLabel(s sss.Scheme) string {
	if checked, ok := s.(interface{ Checking() share.Algorithm }); ok {
		return string(s.Algorithm()) + "+" + string(checked.Checking())
	}
	return string(s.Algorithm())
}

func (s *Scheme) Share(data []byte) ([]share.Share, error) {
	start := time.Now()
	shares, err := s.Scheme.Share(data)
	s.c.RecordOperation(OpShare, s.label, len(data), time.Since(start), err)
	return shares, err
}

func (s *Scheme) Reconstruct(shares []share.Share) (*sss.Reconstruction, error) {
	start := time.Now()
	r, err := s.Scheme.Reconstruct(shares)
	s.record(OpReconstruct, r, time.Since(start), err)
	return r, err
}

func (s *PartialScheme) ReconstructPartial(shares []share.Share, from int) (*sss.Reconstruction, error) {
	start := time.Now()
	r, err := s.partial.ReconstructPartial(shares, from)
	s.record(OpReconstructPartial, r, time.Since(start), err)
	return r, err
}

func (s *Scheme) record(op string, r *sss.Reconstruction, elapsed time.Duration, err error) {
	n := 0
	if err == nil {
		n = len(r.Data)
		s.c.RecordReconstruction(s.label, r)
	}
	s.c.RecordOperation(op, s.label, n, elapsed, err)
}
