// Copyright 2018 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hart

import (
	"fmt"

	"github.com/rvdbg/rvtarget/dram"
	"github.com/rvdbg/rvtarget/gdbreg"
)

// readCSR and writeCSR are the generic single-word CSR access helpers used
// by the trigger code (TSELECT, TDATA1, TDATA2), by Examine for MISA, and by
// ReadRegister/WriteRegister for every other CSR. They move one 32-bit
// word: on an XLEN=64 hart only the low 32 bits of the CSR are transferred.
func (ctx *Context) readCSR(csr uint32) (uint64, error) {
	slot0 := ctx.Cache.Slot0()
	ctx.Cache.Set32(0, dram.Csrr(dram.RegS0, csr))
	ctx.Cache.SetStore(1, dram.RegS0, slot0)
	ctx.Cache.SetJump(2)
	v, _, err := ctx.Cache.Write(dram.Translate(slot0), true)
	ctx.invalidateGPRCache()
	return uint64(v), err
}

func (ctx *Context) writeCSR(csr uint32, value uint64) error {
	slot0 := ctx.Cache.Slot0()
	ctx.Cache.SetLoad(0, dram.RegS0, slot0)
	ctx.Cache.Set32(1, dram.Csrw(csr, dram.RegS0))
	ctx.Cache.SetJump(2)
	ctx.Cache.Set32(slot0, uint32(value))
	_, _, err := ctx.Cache.Write(dram.Translate(slot0), true)
	ctx.invalidateGPRCache()
	return err
}

// fillGPRCache runs the halt-entry GPR read if the cache has gone stale
// (Resume/Step invalidate it, since the values are only valid while halted).
func (ctx *Context) fillGPRCache() error {
	if ctx.gprValid {
		return nil
	}
	return ctx.handleHaltRoutine()
}

// readGPR reads x[index] (0..31), x0 always reading as zero.
func (ctx *Context) readGPR(index int) (uint64, error) {
	if index == 0 {
		return 0, nil
	}
	if err := ctx.fillGPRCache(); err != nil {
		return 0, err
	}
	return ctx.GPRCache[index], nil
}

// writeGPR writes x[index]; writes to x0 are silently discarded, matching
// hardware semantics.
func (ctx *Context) writeGPR(index int, value uint64) error {
	if index == 0 {
		return nil
	}
	slot0 := ctx.Cache.Slot0()
	ctx.Cache.SetLoad(0, uint32(index), slot0)
	ctx.Cache.SetJump(1)
	ctx.Cache.Set(slot0, value)
	_, _, err := ctx.Cache.Write(dram.Translate(slot0), true)
	if err == nil {
		ctx.GPRCache[index] = value
	}
	return err
}

// readFPR/writeFPR access f[index] via fsw/flw through slot0. Only 32 bits
// are transferred; the upper half of a 64-bit FPU register is not accessed.
func (ctx *Context) readFPR(index int) (uint64, error) {
	slot0 := ctx.Cache.Slot0()
	ctx.Cache.Set32(0, dram.Fsw(uint32(index), dram.RegZero, dram.SlotAddr(slot0)))
	ctx.Cache.SetJump(1)
	v, _, err := ctx.Cache.Write(dram.Translate(slot0), true)
	return uint64(v), err
}

func (ctx *Context) writeFPR(index int, value uint64) error {
	slot0 := ctx.Cache.Slot0()
	ctx.Cache.Set32(slot0, uint32(value))
	ctx.Cache.Set32(0, dram.Flw(uint32(index), dram.RegZero, dram.SlotAddr(slot0)))
	ctx.Cache.SetJump(1)
	_, _, err := ctx.Cache.Write(dram.Translate(slot0), true)
	return err
}

// ReadRegister reads the register named by r, dispatching on its Kind.
// GPRs come from the GPR cache the halt-entry routine fills; PC, DPC, DCSR
// and the privilege level come from shadow fields; FPRs and all other CSRs
// go through a Debug RAM program.
func (ctx *Context) ReadRegister(r gdbreg.Reg) (uint64, error) {
	switch r.Kind {
	case gdbreg.KindGPR:
		return ctx.readGPR(r.Index)
	case gdbreg.KindPC:
		return ctx.DPC, nil
	case gdbreg.KindFPR:
		return ctx.readFPR(r.Index)
	case gdbreg.KindCSR:
		switch uint32(r.Index) {
		case csrDCSR:
			return uint64(ctx.DCSR.Encode()), nil
		case csrDPC:
			return ctx.DPC, nil
		default:
			return ctx.readCSR(uint32(r.Index))
		}
	case gdbreg.KindPriv:
		return uint64(ctx.DCSR.PRV), nil
	default:
		return 0, fmt.Errorf("hart: unsupported register kind %v", r.Kind)
	}
}

// WriteRegister writes the register named by r.
func (ctx *Context) WriteRegister(r gdbreg.Reg, value uint64) error {
	switch r.Kind {
	case gdbreg.KindGPR:
		return ctx.writeGPR(r.Index, value)
	case gdbreg.KindPC:
		ctx.DPC = value
		return nil
	case gdbreg.KindFPR:
		return ctx.writeFPR(r.Index, value)
	case gdbreg.KindCSR:
		switch uint32(r.Index) {
		case csrDCSR:
			ctx.DCSR = DecodeDCSR(uint32(value))
			return nil
		case csrDPC:
			ctx.DPC = value
			return nil
		default:
			return ctx.writeCSR(uint32(r.Index), value)
		}
	case gdbreg.KindPriv:
		ctx.DCSR.PRV = uint8(value)
		return nil
	default:
		return fmt.Errorf("hart: unsupported register kind %v", r.Kind)
	}
}

// GetGDBRegList returns the full GDB register set this hart advertises.
func (ctx *Context) GetGDBRegList() []gdbreg.Reg {
	return gdbreg.List(gdbreg.ClassAll)
}
