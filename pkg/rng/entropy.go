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

package rng

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
)

// Mode selects the entropy device behind an EntropySource.
type Mode string

const (
	// ModeAuto prefers PKCS#11, then TPM2, then software.
	ModeAuto Mode = "auto"

	// ModeSoftware uses crypto/rand.
	ModeSoftware Mode = "software"

	// ModeTPM2 uses TPM2_GetRandom. Requires the tpm2 build tag.
	ModeTPM2 Mode = "tpm2"

	// ModePKCS11 uses C_GenerateRandom. Requires the pkcs11 build tag.
	ModePKCS11 Mode = "pkcs11"
)

// Config selects and configures an entropy device.
type Config struct {
	// Mode defaults to ModeAuto.
	Mode Mode

	// FallbackMode is tried when a read from Mode fails.
	FallbackMode Mode

	TPM2   *TPM2Config
	PKCS11 *PKCS11Config
}

// TPM2Config configures the TPM2 entropy device.
type TPM2Config struct {
	// Device defaults to /dev/tpm0. Ignored when UseSimulator is set.
	Device string

	// MaxRequestSize caps bytes per GetRandom call. Default 32.
	MaxRequestSize int

	UseSimulator  bool
	SimulatorHost string
	SimulatorPort int
}

// PKCS11Config configures the PKCS#11 entropy device.
type PKCS11Config struct {
	Module string
	SlotID uint
	PIN    string
}

// device is a hardware entropy reader.
type device interface {
	io.ReadCloser
	Name() string
}

type softwareDevice struct{}

func (softwareDevice) Read(p []byte) (int, error) { return rand.Read(p) }
func (softwareDevice) Close() error               { return nil }
func (softwareDevice) Name() string               { return string(ModeSoftware) }

// EntropySource is a Source backed by an entropy device, with an optional
// fallback device. It is safe for concurrent use and must be closed.
type EntropySource struct {
	mu       sync.Mutex
	primary  device
	fallback device
}

var _ Source = (*EntropySource)(nil)

// NewEntropySource opens the device cfg selects. A nil cfg means ModeAuto.
func NewEntropySource(cfg *Config) (*EntropySource, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	mode := cfg.Mode
	if mode == "" {
		mode = ModeAuto
	}

	primary, err := openDevice(mode, cfg)
	if err != nil {
		return nil, err
	}

	src := &EntropySource{primary: primary}
	if cfg.FallbackMode != "" && cfg.FallbackMode != mode {
		fb, err := openDevice(cfg.FallbackMode, cfg)
		if err != nil {
			_ = primary.Close()
			return nil, fmt.Errorf("rng: fallback %s: %w", cfg.FallbackMode, err)
		}
		src.fallback = fb
	}
	return src, nil
}

func openDevice(mode Mode, cfg *Config) (device, error) {
	switch mode {
	case ModeAuto:
		return openAuto(cfg), nil
	case ModeSoftware:
		return softwareDevice{}, nil
	case ModeTPM2:
		return openTPM2(cfg.TPM2)
	case ModePKCS11:
		return openPKCS11(cfg.PKCS11)
	default:
		return nil, fmt.Errorf("rng: unknown mode %q", mode)
	}
}

// openAuto picks the best device that opens.
func openAuto(cfg *Config) device {
	if pkcs11Available() && cfg.PKCS11 != nil {
		if d, err := openPKCS11(cfg.PKCS11); err == nil {
			return d
		}
	}
	if tpm2Available() {
		if d, err := openTPM2(cfg.TPM2); err == nil {
			return d
		}
	}
	return softwareDevice{}
}

// Device returns the name of the primary device.
func (s *EntropySource) Device() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.primary == nil {
		return ""
	}
	return s.primary.Name()
}

func (s *EntropySource) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked(p)
}

func (s *EntropySource) readLocked(p []byte) (int, error) {
	if s.primary == nil {
		return 0, fmt.Errorf("rng: entropy source closed")
	}
	n, err := io.ReadFull(s.primary, p)
	if err != nil && s.fallback != nil {
		return io.ReadFull(s.fallback, p)
	}
	return n, err
}

func (s *EntropySource) FillBytes(b []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fillNonZero(readerFunc(s.readLocked), b)
}

// Close releases both devices.
func (s *EntropySource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	if s.primary != nil {
		err = s.primary.Close()
		s.primary = nil
	}
	if s.fallback != nil {
		if ferr := s.fallback.Close(); err == nil {
			err = ferr
		}
		s.fallback = nil
	}
	return err
}

type readerFunc func(p []byte) (int, error)

func (f readerFunc) Read(p []byte) (int, error) { return f(p) }
