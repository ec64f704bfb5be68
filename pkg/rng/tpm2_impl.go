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

//go:build tpm2

package rng

import (
	"fmt"

	"github.com/google/go-tpm/tpm2"
	"github.com/google/go-tpm/tpm2/transport"
	"github.com/google/go-tpm/tpm2/transport/tcp"
	"github.com/google/go-tpm/tpmutil"
)

// tpm2Device draws entropy with TPM2_GetRandom.
type tpm2Device struct {
	tpm     transport.TPMCloser
	maxSize int
}

func openTPM2(cfg *TPM2Config) (device, error) {
	c := TPM2Config{Device: "/dev/tpm0", MaxRequestSize: 32}
	if cfg != nil {
		c = *cfg
	}
	if c.MaxRequestSize <= 0 {
		c.MaxRequestSize = 32
	}

	var tpm transport.TPMCloser
	if c.UseSimulator {
		if c.SimulatorHost == "" {
			c.SimulatorHost = "localhost"
		}
		if c.SimulatorPort <= 0 {
			c.SimulatorPort = 2321
		}
		cmd := fmt.Sprintf("%s:%d", c.SimulatorHost, c.SimulatorPort)
		plat := fmt.Sprintf("%s:%d", c.SimulatorHost, c.SimulatorPort+1)
		t, err := tcp.Open(tcp.Config{CommandAddress: cmd, PlatformAddress: plat})
		if err != nil {
			return nil, fmt.Errorf("rng: connect TPM simulator %s: %w", cmd, err)
		}
		tpm = t
	} else {
		if c.Device == "" {
			c.Device = "/dev/tpm0"
		}
		rwc, err := tpmutil.OpenTPM(c.Device)
		if err != nil {
			return nil, fmt.Errorf("rng: open TPM %s: %w", c.Device, err)
		}
		tpm = transport.FromReadWriteCloser(rwc)
	}
	return &tpm2Device{tpm: tpm, maxSize: c.MaxRequestSize}, nil
}

func tpm2Available() bool { return true }

func (d *tpm2Device) Read(p []byte) (int, error) {
	read := 0
	for read < len(p) {
		want := min(len(p)-read, d.maxSize)
		cmd := tpm2.GetRandom{BytesRequested: uint16(want)}
		rsp, err := cmd.Execute(d.tpm)
		if err != nil {
			return read, fmt.Errorf("rng: TPM2_GetRandom: %w", err)
		}
		if len(rsp.RandomBytes.Buffer) == 0 {
			return read, fmt.Errorf("rng: TPM2_GetRandom returned no bytes")
		}
		read += copy(p[read:], rsp.RandomBytes.Buffer)
	}
	return read, nil
}

func (d *tpm2Device) Close() error { return d.tpm.Close() }
func (d *tpm2Device) Name() string { return string(ModeTPM2) }
