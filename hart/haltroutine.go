// Copyright 2018 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hart

import (
	"github.com/rvdbg/rvtarget/dbus"
	"github.com/rvdbg/rvtarget/dram"
)

// gprOrder is the order handle_halt_routine reads general-purpose
// registers in: x1..x7, x10..x31 (x8/x9 are S0/S1, staged separately since
// the debug program itself uses them).
var gprOrder = func() []int {
	order := make([]int, 0, 29)
	for r := 1; r <= 31; r++ {
		if r == 8 || r == 9 {
			continue
		}
		order = append(order, r)
	}
	return order
}()

// handleHaltRoutine runs on every rising edge into HALTED: one large
// batched debug program that reads back every GPR plus DPC/DCSR, building
// the batch directly over a dbus.ScanBuffer (bypassing dram.Cache, whose
// one-value-per-index model can't represent the ~30 successive overwrites
// of word 0 this routine performs in a single flush).
func (ctx *Context) handleHaltRoutine() error {
	for {
		retry, err := ctx.runHaltRoutineOnce()
		if err != nil {
			return err
		}
		if !retry {
			break
		}
	}
	ctx.Cache.Invalidate()
	return nil
}

func (ctx *Context) runHaltRoutineOnce() (retry bool, err error) {
	slot0 := ctx.Cache.Slot0()
	slotLast := ctx.Cache.SlotLast()
	slot0Word := dram.SlotAddr(slot0)
	slotLastWord := dram.SlotAddr(slotLast)

	buf := ctx.Engine.NewScanBuffer(4 * (len(gprOrder) + 8))
	type readTag int
	const (
		tagGPR readTag = iota
		tagS1
		tagCSR
		tagFlush
	)
	var tags []readTag

	// Step 1: stage the epilogue jump at word 1.
	jumpAt1 := int32(dram.DebugROMResume) - int32(dram.DebugRAMStart+4*1)
	buf.AddWrite32(dram.Translate(1), dram.Jal(dram.RegZero, jumpAt1), true, false)

	// Step 2: for every GPR besides S0/S1, overwrite word 0 with a store
	// of that register into slot0 and read it back.
	for _, r := range gprOrder {
		word := dram.Sw(uint32(r), dram.RegZero, slot0Word)
		buf.AddWrite32(dram.Translate(0), word, true, true)
		buf.AddRead32(dram.Translate(slot0))
		tags = append(tags, tagGPR)
	}

	// Step 3: expose S1 via SLOT_LAST: store S0 (word 1), jump (word 2),
	// then load S0 <- SLOT_LAST at word 0 (S0 held S1's value at this
	// point courtesy of the debug program convention), read slot0.
	jumpAt2 := int32(dram.DebugROMResume) - int32(dram.DebugRAMStart+4*2)
	buf.AddWrite32(dram.Translate(1), dram.Sw(dram.RegS0, dram.RegZero, slot0Word), true, false)
	buf.AddWrite32(dram.Translate(2), dram.Jal(dram.RegZero, jumpAt2), true, false)
	buf.AddWrite32(dram.Translate(0), dram.Lw(dram.RegS0, dram.RegZero, slotLastWord), true, true)
	buf.AddRead32(dram.Translate(slot0))
	tags = append(tags, tagS1)

	// Step 4: read DSCRATCH (original S0), DPC, DCSR via csrr + slot0.
	for _, csr := range []uint32{csrDScratch, csrDPC, csrDCSR} {
		buf.AddWrite32(dram.Translate(0), dram.Csrr(dram.RegS0, csr), true, true)
		buf.AddRead32(dram.Translate(slot0))
		tags = append(tags, tagCSR)
	}

	// Step 5: one final read to flush the pipeline.
	buf.AddRead32(dram.Translate(slot0))
	tags = append(tags, tagFlush)

	results, err := buf.Execute()
	if err != nil {
		return false, err
	}

	busy := false
	for _, r := range results {
		if r.Status == dbus.StatusBusy {
			busy = true
			break
		}
	}
	if busy {
		ctx.Engine.BusyDelay++
		if err := ctx.waitInterruptClear(); err != nil {
			return false, err
		}
		return true, nil
	}

	// Walk results in order, pulling out just the reads in tags order.
	reads := make([]dramResult, 0, len(tags))
	for _, r := range results {
		if r.Addr == dram.Translate(slot0) {
			reads = append(reads, dramResult{data: r.Data, interrupt: r.Interrupt})
		}
	}
	if len(reads) != len(tags) {
		// Pipelining returned an unexpected number of slot0 reads; bump
		// the pacing counter and retry the whole routine rather than
		// risk misattributing register values.
		ctx.Engine.InterruptHighDelay++
		return true, nil
	}
	if reads[len(reads)-1].interrupt {
		ctx.Engine.InterruptHighDelay++
		if err := ctx.waitInterruptClear(); err != nil {
			return false, err
		}
		return true, nil
	}

	gprIdx, csrIdx := 0, 0
	var s1, s0, dpc, dcsr uint32
	for i, tag := range tags {
		switch tag {
		case tagGPR:
			ctx.GPRCache[gprOrder[gprIdx]] = uint64(reads[i].data)
			gprIdx++
		case tagS1:
			s1 = reads[i].data
		case tagCSR:
			// csr order is {DSCRATCH, DPC, DCSR}, per the loop that queued them.
			switch csrIdx {
			case 0:
				s0 = reads[i].data
			case 1:
				dpc = reads[i].data
			case 2:
				dcsr = reads[i].data
			}
			csrIdx++
		}
	}
	ctx.GPRCache[0] = 0
	ctx.GPRCache[9] = uint64(s1)
	ctx.GPRCache[8] = uint64(s0)
	ctx.gprValid = true
	ctx.DPC = uint64(dpc)
	ctx.DCSR = DecodeDCSR(dcsr)

	switch ctx.DCSR.Cause {
	case CauseSWBP:
		ctx.DebugReason = ReasonBreakpoint
	case CauseHWBP:
		ctx.DebugReason = ReasonWptAndBkpt
		ctx.NeedStrictStep = true
	case CauseDebugInt:
		ctx.DebugReason = ReasonDbgrq
	case CauseStep:
		ctx.DebugReason = ReasonSingleStep
	case CauseHalt:
		ctx.Logger.Printf("hart: DCSR.CAUSE==HALT at halt entry, debug_reason left unset")
	}

	return false, nil
}

type dramResult struct {
	data      uint32
	interrupt bool
}
