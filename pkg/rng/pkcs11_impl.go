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

//go:build pkcs11

package rng

import (
	"fmt"

	"github.com/miekg/pkcs11"
)

// pkcs11Device draws entropy with C_GenerateRandom.
type pkcs11Device struct {
	ctx      *pkcs11.Ctx
	session  pkcs11.SessionHandle
	loggedIn bool
}

func openPKCS11(cfg *PKCS11Config) (device, error) {
	if cfg == nil || cfg.Module == "" {
		return nil, fmt.Errorf("rng: PKCS#11 module path is required")
	}
	ctx := pkcs11.New(cfg.Module)
	if ctx == nil {
		return nil, fmt.Errorf("rng: load PKCS#11 module %s", cfg.Module)
	}
	if err := ctx.Initialize(); err != nil {
		ctx.Destroy()
		return nil, fmt.Errorf("rng: initialize PKCS#11: %w", err)
	}
	fail := func(format string, err error) (device, error) {
		_ = ctx.Finalize()
		ctx.Destroy()
		return nil, fmt.Errorf(format, err)
	}

	// Some tokens only expose slots after C_GetSlotList.
	if _, err := ctx.GetSlotList(true); err != nil {
		return fail("rng: PKCS#11 slot list: %w", err)
	}
	session, err := ctx.OpenSession(cfg.SlotID, pkcs11.CKF_SERIAL_SESSION)
	if err != nil {
		return fail("rng: PKCS#11 session: %w", err)
	}
	d := &pkcs11Device{ctx: ctx, session: session}
	if cfg.PIN != "" {
		if err := ctx.Login(session, pkcs11.CKU_USER, cfg.PIN); err != nil {
			_ = ctx.CloseSession(session)
			return fail("rng: PKCS#11 login: %w", err)
		}
		d.loggedIn = true
	}
	return d, nil
}

func pkcs11Available() bool { return true }

func (d *pkcs11Device) Read(p []byte) (int, error) {
	out, err := d.ctx.GenerateRandom(d.session, len(p))
	if err != nil {
		return 0, fmt.Errorf("rng: C_GenerateRandom: %w", err)
	}
	return copy(p, out), nil
}

func (d *pkcs11Device) Close() error {
	if d.loggedIn {
		_ = d.ctx.Logout(d.session)
	}
	_ = d.ctx.CloseSession(d.session)
	err := d.ctx.Finalize()
	d.ctx.Destroy()
	return err
}

func (d *pkcs11Device) Name() string { return string(ModePKCS11) }
