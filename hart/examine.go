// Copyright 2018 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hart

import (
	"fmt"

	"github.com/rvdbg/rvtarget/dbus"
	"github.com/rvdbg/rvtarget/dram"
)

// DMINFO bit layout. Like DCSR/TDATA1, the real hardware bit positions
// weren't in the filtered source this driver is grounded on; this is a
// self-consistent internal model, pinned down here and nowhere else.
const (
	dminfoVersionMask      = 0x3
	dminfoAuthtypeShift    = 2
	dminfoAuthtypeMask     = 0x3
	dminfoDramsizeShift    = 6
	dminfoDramsizeMask     = 0x3f
	dminfoAccessShift      = 12
)

var dminfoAccessBits = []struct {
	bit  uint
	size int
}{
	{0, 8}, {1, 16}, {2, 32}, {3, 64}, {4, 128},
}

// Examine probes a freshly attached DTM: reads DTMINFO to size the dbus
// address field, reads DMINFO to size Debug RAM and check authentication,
// probes XLEN by running a small shift-and-store program, and latches MISA.
// No other Context operation is valid before Examine succeeds.
func (ctx *Context) Examine() error {
	dtm, err := dbus.ReadDTMInfo(ctx.Engine.TAP)
	if err != nil {
		return err
	}
	if dtm.Version != 0 {
		return fmt.Errorf("hart: unsupported DTMINFO version %d", dtm.Version)
	}
	ctx.Engine.AddrBits = dtm.AddrBits
	ctx.AddrBits = dtm.AddrBits

	raw, _, _, err := ctx.Engine.Read(dbus.DMInfoAddr)
	if err != nil {
		return err
	}
	if version := raw & dminfoVersionMask; version != 1 {
		return fmt.Errorf("hart: unsupported DMINFO version %d", version)
	}
	if authtype := (raw >> dminfoAuthtypeShift) & dminfoAuthtypeMask; authtype != 0 {
		return fmt.Errorf("hart: unsupported DMINFO authtype %d", authtype)
	}

	dramsize := int((raw>>dminfoDramsizeShift)&dminfoDramsizeMask) + 1
	ctx.DramSize = dramsize
	ctx.Cache.DramSize = dramsize

	var widths []int
	for _, w := range dminfoAccessBits {
		if raw&(1<<(dminfoAccessShift+w.bit)) != 0 {
			widths = append(widths, w.size)
		}
	}
	ctx.AccessWidths = widths

	xlen, err := ctx.probeXLEN()
	if err != nil {
		return err
	}
	ctx.XLen = xlen
	ctx.Cache.XLen = xlen
	ctx.Engine.XLen = xlen

	misa, err := ctx.readCSR(csrMISA)
	if err != nil {
		return err
	}
	ctx.Misa = misa

	ctx.Cache.Invalidate()
	if ok, err := ctx.Cache.CacheCheck(); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("hart: debug RAM cache check failed during examine")
	}
	return nil
}

// probeXLEN runs the canonical "shift -1 right until it's gone" program:
// the first pass leaves (-1)>>31 in word0, the second continues the shift
// from the same S1 (register state persists across halted debug-program
// runs) into word1. (1,0) means XLEN=32, (0xffffffff,3) means XLEN=64;
// (0xffffffff,0xffffffff) would mean XLEN=128, which this driver rejects.
func (ctx *Context) probeXLEN() (int, error) {
	slot0 := ctx.Cache.Slot0()

	ctx.Cache.Set32(0, dram.Xori(dram.RegS1, dram.RegZero, -1))
	ctx.Cache.Set32(1, dram.Srli(dram.RegS1, dram.RegS1, 31))
	ctx.Cache.Set32(2, dram.Sw(dram.RegS1, dram.RegZero, dram.SlotAddr(slot0)))
	ctx.Cache.SetJump(3)
	word0, _, err := ctx.Cache.Write(dram.Translate(slot0), true)
	if err != nil {
		return 0, err
	}

	ctx.Cache.Set32(0, dram.Srli(dram.RegS1, dram.RegS1, 31))
	ctx.Cache.Set32(1, dram.Sw(dram.RegS1, dram.RegZero, dram.SlotAddr(slot0)))
	ctx.Cache.SetJump(2)
	word1, _, err := ctx.Cache.Write(dram.Translate(slot0), true)
	if err != nil {
		return 0, err
	}

	switch {
	case word0 == 1 && word1 == 0:
		return 32, nil
	case word0 == 0xffffffff && word1 == 3:
		return 64, nil
	case word0 == 0xffffffff && word1 == 0xffffffff:
		return 0, fmt.Errorf("hart: XLEN=128 harts are not supported")
	default:
		return 0, fmt.Errorf("hart: unrecognized XLEN probe result (%#x, %#x)", word0, word1)
	}
}
