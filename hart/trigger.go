// Copyright 2018 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hart

import "github.com/rvdbg/rvtarget/dram"

func (ctx *Context) composeTData1(t trigger) TData1 {
	h, s, u := miscHSU(ctx.Misa)
	if ctx.PrivMask != nil {
		h, s, u = ctx.PrivMask(ctx.Misa)
	}
	return TData1{
		Type: triggerTypeAddrData, DMode: true,
		Action: actionDebugMode, Match: matchEqual,
		M: true, H: h, S: s, U: u,
		Execute: t.execute, Store: t.write, Load: t.read,
	}
}

func (ctx *Context) selectTrigger(i int) error {
	return ctx.writeCSR(csrTSelect, uint64(i))
}

func (ctx *Context) writeTriggerSlot(i int, tdata1, tdata2 uint64) error {
	if err := ctx.selectTrigger(i); err != nil {
		return err
	}
	if err := ctx.writeCSR(csrTData1, tdata1); err != nil {
		return err
	}
	return ctx.writeCSR(csrTData2, tdata2)
}

func (ctx *Context) installTrigger(i int, t trigger) error {
	td1 := ctx.composeTData1(t)
	if err := ctx.writeTriggerSlot(i, uint64(td1.Encode()), t.address); err != nil {
		return err
	}
	ctx.triggers[i] = t
	ctx.triggerOwned[i] = true
	return nil
}

// allocateTrigger implements the trigger allocator of spec.md §4.7: probe
// every slot in order, skip slots already claimed by non-debug code, and
// program the first free one.
func (ctx *Context) allocateTrigger(t trigger) (int, error) {
	for i := 0; i < MaxHWBPs; i++ {
		if err := ctx.writeCSR(csrTSelect, uint64(i)); err != nil {
			return -1, err
		}
		rb, err := ctx.readCSR(csrTSelect)
		if err != nil {
			return -1, err
		}
		if uint32(rb) != uint32(i) {
			break // hardware doesn't implement this many triggers
		}

		if ctx.triggerOwned[i] {
			continue
		}

		raw, err := ctx.readCSR(csrTData1)
		if err != nil {
			return -1, err
		}
		cur := DecodeTData1(uint32(raw))
		if cur.Type != triggerTypeAddrData {
			continue
		}
		if cur.Execute || cur.Store || cur.Load {
			continue // claimed by non-debug code
		}

		td1 := ctx.composeTData1(t)
		if err := ctx.writeCSR(csrTData1, uint64(td1.Encode())); err != nil {
			return -1, err
		}
		rbTd1, err := ctx.readCSR(csrTData1)
		if err != nil {
			return -1, err
		}
		if DecodeTData1(uint32(rbTd1)) != td1 {
			// Hardware dropped bits: this combination isn't supported here.
			if err := ctx.writeCSR(csrTData1, 0); err != nil {
				return -1, err
			}
			continue
		}

		if err := ctx.writeCSR(csrTData2, t.address); err != nil {
			return -1, err
		}
		ctx.triggers[i] = t
		ctx.triggerOwned[i] = true
		return i, nil
	}
	return -1, ErrNoFreeTrigger
}

func (ctx *Context) removeTriggerByID(uniqueID uint64) error {
	for i := 0; i < MaxHWBPs; i++ {
		if ctx.triggerOwned[i] && ctx.triggers[i].uniqueID == uniqueID {
			if err := ctx.writeTriggerSlot(i, 0, 0); err != nil {
				return err
			}
			ctx.triggerOwned[i] = false
			ctx.triggers[i] = trigger{}
			return nil
		}
	}
	return nil
}

// AddBreakpoint installs a software or hardware breakpoint. Software
// breakpoints patch the target's own memory (`ebreak`/`c.ebreak`);
// hardware breakpoints consume one trigger slot.
func (ctx *Context) AddBreakpoint(uniqueID, address uint64, length uint, hard bool) error {
	if !hard {
		return ctx.addSoftBreakpoint(uniqueID, address, length)
	}
	_, err := ctx.allocateTrigger(trigger{address: address, length: length, execute: true, uniqueID: uniqueID})
	return err
}

// RemoveBreakpoint removes a previously added breakpoint.
func (ctx *Context) RemoveBreakpoint(uniqueID uint64, hard bool) error {
	if !hard {
		return ctx.removeSoftBreakpoint(uniqueID)
	}
	return ctx.removeTriggerByID(uniqueID)
}

// AddWatchpoint installs a hardware watchpoint triggering on read and/or
// write access at exactly address (MATCH=equal on TDATA2). length is
// recorded with the trigger but does not widen the matched range.
func (ctx *Context) AddWatchpoint(uniqueID, address uint64, length uint, read, write bool) error {
	_, err := ctx.allocateTrigger(trigger{address: address, length: length, read: read, write: write, uniqueID: uniqueID})
	return err
}

// RemoveWatchpoint removes a previously added watchpoint.
func (ctx *Context) RemoveWatchpoint(uniqueID uint64) error {
	return ctx.removeTriggerByID(uniqueID)
}

func (ctx *Context) addSoftBreakpoint(uniqueID, address uint64, length uint) error {
	orig := make([]byte, length)
	if err := ctx.ReadMemory(address, 1, int(length), orig); err != nil {
		return err
	}
	var patch []byte
	if length == 2 {
		patch = []byte{byte(dram.CEbreak & 0xff), byte(dram.CEbreak >> 8)}
	} else {
		w := dram.Ebreak()
		patch = []byte{byte(w), byte(w >> 8), byte(w >> 16), byte(w >> 24)}
	}
	if err := ctx.WriteMemory(address, 1, patch); err != nil {
		return err
	}
	var entry softBreakpoint
	entry.address = address
	entry.length = int(length)
	copy(entry.orig[:], orig)
	ctx.softBreakpoints[uniqueID] = entry
	return nil
}

func (ctx *Context) removeSoftBreakpoint(uniqueID uint64) error {
	entry, ok := ctx.softBreakpoints[uniqueID]
	if !ok {
		return nil
	}
	if err := ctx.WriteMemory(entry.address, 1, entry.orig[:entry.length]); err != nil {
		return err
	}
	delete(ctx.softBreakpoints, uniqueID)
	return nil
}
