// Copyright 2018 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hart

import "github.com/rvdbg/rvtarget/dram"

// Halt forces the hart into debug mode: stages {csrsi DCSR,HALT; csrr
// S0,MHARTID; sw S0,SETHALTNOT; jump} and runs it, then waits for the halt
// to take effect.
func (ctx *Context) Halt() error {
	ctx.Cache.Invalidate()
	ctx.Cache.Set32(0, dram.Csrsi(csrDCSR, HaltBit))
	ctx.Cache.Set32(1, dram.Csrr(dram.RegS0, csrMHartID))
	ctx.Cache.Set32(2, dram.Sw(dram.RegS0, dram.RegZero, dram.SetHaltNot))
	ctx.Cache.SetJump(3)
	if _, _, err := ctx.Cache.Write(dram.Translate(ctx.Cache.Slot0()), true); err != nil {
		return err
	}
	return ctx.waitForState(StateHalted)
}

// csrMHartID is the standard read-only hart-ID CSR address.
const csrMHartID = 0xf14

// AssertReset programs DCSR with EBREAK{M,H,S,U}|HALT plus NDRESET or
// FULLRESET (depending on haltAfter), latches it with INTERRUPT set, and
// transitions to RESET.
func (ctx *Context) AssertReset(haltAfter bool) error {
	dcsr := DCSR{
		EbreakM: true, EbreakH: true, EbreakS: true, EbreakU: true,
		Halt: true,
	}
	if haltAfter {
		dcsr.FullReset = true
	} else {
		dcsr.NDReset = true
	}

	ctx.Cache.Invalidate()
	slot0 := ctx.Cache.Slot0()
	ctx.Cache.SetLoad(0, dram.RegS0, slot0)
	ctx.Cache.Set32(1, dram.Csrw(csrDCSR, dram.RegS0))
	ctx.Cache.SetJump(2)
	ctx.Cache.Set(slot0, uint64(dcsr.Encode()))
	if _, _, err := ctx.Cache.Write(dram.Translate(slot0), true); err != nil {
		return err
	}
	ctx.DCSR = dcsr
	ctx.State = StateReset
	return nil
}

// DeassertReset waits (up to 2s) for the hart to reach HALTED (if
// haltAfter) or RUNNING.
func (ctx *Context) DeassertReset(haltAfter bool) error {
	if haltAfter {
		return ctx.waitForState(StateHalted)
	}
	return ctx.waitForState(StateRunning)
}
