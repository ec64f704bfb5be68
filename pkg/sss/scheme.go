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

// Package sss implements threshold sharing over GF(2^8): the polynomial
// evaluation and interpolation engine, and the Shamir and Rabin-IDS
// schemes built on it.
//
// A scheme turns data into n shares such that any k of them reconstruct
// it. Shamir hides the data from anyone holding fewer than k shares; each
// share is as long as the data. Rabin-IDS packs k bytes into every
// polynomial, so shares are 1/k the size of the data but reveal it.
//
// Both schemes are one Engine parameterized by a Strategy. Higher layers
// (package krawczyk, package infocheck) compose Schemes.
package sss

import (
	"github.com/jeremyhahn/go-smc/pkg/share"
)

// Scheme splits data into shares and reconstructs it.
type Scheme interface {
	// Share splits data into TotalShares shares with ids 1..n.
	Share(data []byte) ([]share.Share, error)

	// Reconstruct recovers the data from at least Threshold shares.
	Reconstruct(shares []share.Share) (*Reconstruction, error)

	Threshold() int
	TotalShares() int
	Algorithm() share.Algorithm
}

// PartialReconstructor is implemented by schemes that can recover a byte
// range without the rest of the data.
type PartialReconstructor interface {
	Scheme

	// ReconstructPartial returns the data from byte start to the end of
	// what the supplied shares cover. It never checks share authenticity
	// and always reports that with warnings.
	ReconstructPartial(shares []share.Share, start int) (*Reconstruction, error)
}

// WarningCode identifies a trust reduction in a successful reconstruction.
type WarningCode string

const (
	// WarningInformationCheckingSkipped means MAC tags were not verified.
	WarningInformationCheckingSkipped WarningCode = "information-checking-skipped"

	// WarningUnauthenticated means the cipher's authentication tag was not
	// verified.
	WarningUnauthenticated WarningCode = "unauthenticated"
)

// Warning accompanies data the caller should trust less than usual.
type Warning struct {
	Code    WarningCode
	Message string
}

// Reconstruction is a successful reconstruction.
type Reconstruction struct {
	Data []byte

	// Warnings lists trust reductions. Empty for a full, checked
	// reconstruction.
	Warnings []Warning

	// Rejected lists the ids of shares discarded as corrupt.
	Rejected []int
}

// Warn records a warning unless one with the same code is present.
func (r *Reconstruction) Warn(code WarningCode, message string) {
	if r.HasWarning(code) {
		return
	}
	r.Warnings = append(r.Warnings, Warning{Code: code, Message: message})
}

// HasWarning reports whether a warning with code was recorded.
func (r *Reconstruction) HasWarning(code WarningCode) bool {
	for _, w := range r.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}
