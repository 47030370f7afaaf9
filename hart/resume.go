// Copyright 2018 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hart

import (
	"time"

	"github.com/rvdbg/rvtarget/dram"
)

// writeDPC stages an ordinary load+csrw program to push the shadow DPC
// back into the hart, without touching DCSR.HALT.
func (ctx *Context) writeDPC() error {
	slot0 := ctx.Cache.Slot0()
	ctx.Cache.SetLoad(0, dram.RegS0, slot0)
	ctx.Cache.Set32(1, dram.Csrw(csrDPC, dram.RegS0))
	ctx.Cache.SetJump(2)
	ctx.Cache.Set(slot0, ctx.DPC)
	_, _, err := ctx.Cache.Write(dram.Translate(slot0), true)
	return err
}

// executeResume writes DPC from shadow, then runs the canonical resume
// preamble: {lw S0,[slot0]; csrw DCSR,S0; fence.i; jump-to-resume}, with
// slot0 carrying the new DCSR value (HALT cleared, STEP set iff step).
// Reaching the resume-ROM jump with HALT clear is what actually returns
// the hart to normal execution; the same jump target is used by every
// other debug program to just loop back into the wait-for-interrupt state.
func (ctx *Context) executeResume(step bool) error {
	if err := ctx.writeDPC(); err != nil {
		return err
	}

	slot0 := ctx.Cache.Slot0()
	ctx.Cache.SetLoad(0, dram.RegS0, slot0)
	ctx.Cache.Set32(1, dram.Csrw(csrDCSR, dram.RegS0))
	ctx.Cache.Set32(2, dram.FenceI())
	ctx.Cache.SetJump(3)

	dcsr := ctx.DCSR
	dcsr.Halt = false
	dcsr.Step = step
	dcsr.EbreakM, dcsr.EbreakH, dcsr.EbreakS, dcsr.EbreakU = true, true, true, true
	ctx.Cache.Set(slot0, uint64(dcsr.Encode()))

	if _, _, err := ctx.Cache.Write(dram.Translate(slot0), true); err != nil {
		return err
	}

	ctx.Cache.Invalidate()
	if err := ctx.waitInterruptClear(); err != nil {
		return err
	}
	ctx.State = StateRunning
	ctx.invalidateGPRCache()
	return nil
}

// FullStep is execute_resume(step=true) followed by a poll loop until the
// hart leaves DEBUG_RUNNING (up to 2s).
func (ctx *Context) FullStep() error {
	if err := ctx.executeResume(true); err != nil {
		return err
	}
	deadline := time.Now().Add(watchdog)
	for {
		if err := ctx.Poll(); err != nil {
			return err
		}
		if ctx.State != StateDebugRunning {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrWatchdogTimeout
		}
	}
}

// StrictStep implements the "remove all triggers, step once, reinstall
// all triggers" dance needed to advance past a data-trigger hit, so the
// same trigger doesn't immediately re-fire.
func (ctx *Context) StrictStep() error {
	if !ctx.NeedStrictStep {
		return ctx.FullStep()
	}
	type saved struct {
		idx int
		t   trigger
	}
	var removed []saved
	for i := range ctx.triggerOwned {
		if !ctx.triggerOwned[i] {
			continue
		}
		removed = append(removed, saved{idx: i, t: ctx.triggers[i]})
		if err := ctx.writeTriggerSlot(i, 0, 0); err != nil {
			return err
		}
		ctx.triggerOwned[i] = false
	}

	if err := ctx.FullStep(); err != nil {
		return err
	}

	for _, s := range removed {
		if err := ctx.installTrigger(s.idx, s.t); err != nil {
			return err
		}
	}
	ctx.NeedStrictStep = false
	return nil
}

// Resume implements the exposed resume(current, address, handleBreakpoints,
// debugExecution) operation. The (current=false, handleBreakpoints=true,
// debugExecution=true) combination is an explicit unsupported mode per the
// driver's open questions; nothing is touched before returning that error.
func (ctx *Context) Resume(current bool, address uint64, handleBreakpoints, debugExecution bool) error {
	if !current && handleBreakpoints && debugExecution {
		return ErrUnsupportedResumeMode
	}
	if !current {
		ctx.DPC = address
	}
	return ctx.executeResume(false)
}

// Step implements the exposed step(current, address, handleBreakpoints)
// operation.
func (ctx *Context) Step(current bool, address uint64, handleBreakpoints bool) error {
	if !current {
		ctx.DPC = address
	}
	return ctx.StrictStep()
}
