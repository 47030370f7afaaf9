// Copyright 2018 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hart

import (
	"fmt"

	"github.com/rvdbg/rvtarget/dram"
)

// stageMemoryWalk writes the fixed 4-word debug program a ReadMemory or
// WriteMemory run executes once per element: the program itself never
// changes between elements, only slot0's payload (for writes) or S0's
// cursor (which the program advances itself via its own addi).
//
// memoryStepSize must already be set by the caller (ReadMemory/WriteMemory),
// so the staged addi picks up the right access width; Context serves a
// single hart and never runs two memory walks concurrently.
func (ctx *Context) stageMemoryWalk(loadOrStore uint32, storeFirst bool) {
	slot0 := ctx.Cache.Slot0()
	if storeFirst {
		// write path: load the new value out of slot0, then store it.
		ctx.Cache.SetLoad(0, dram.RegT0, slot0)
		ctx.Cache.Set32(1, loadOrStore)
	} else {
		// read path: load from memory, then push the value into slot0.
		ctx.Cache.Set32(0, loadOrStore)
		ctx.Cache.SetStore(1, dram.RegT0, slot0)
	}
	ctx.Cache.Set32(2, dram.Addi(dram.RegS0, dram.RegS0, int32(ctx.memoryStepSize)))
	ctx.Cache.SetJump(3)
}

func validAccessSize(size int) error {
	if size != 1 && size != 2 && size != 4 {
		return fmt.Errorf("hart: unsupported memory access size %d", size)
	}
	return nil
}

// saveT0 stashes the hart's current T0 (x5) into Slot1, so the memory walk
// is free to clobber T0 as its load/store scratch register. restoreT0 undoes
// it once the walk is done. Per spec.md §4.6: T0 is scratch to this driver
// but must come back unchanged from the user's point of view.
func (ctx *Context) saveT0() error {
	slot1 := ctx.Cache.Slot1()
	ctx.Cache.SetStore(0, dram.RegT0, slot1)
	ctx.Cache.SetJump(1)
	_, _, err := ctx.Cache.Write(dram.Translate(slot1), true)
	return err
}

func (ctx *Context) restoreT0() error {
	slot1 := ctx.Cache.Slot1()
	ctx.Cache.SetLoad(0, dram.RegT0, slot1)
	ctx.Cache.SetJump(1)
	_, _, err := ctx.Cache.Write(dram.Translate(slot1), true)
	return err
}

// ReadMemory reads count elements of size bytes starting at address into
// buf (little-endian, byte 0 is the LSB of the first element), per the
// Debug RAM "cursor in S0, one word at a time" walk.
func (ctx *Context) ReadMemory(address uint64, size, count int, buf []byte) (err error) {
	if err := validAccessSize(size); err != nil {
		return err
	}
	if len(buf) < size*count {
		return fmt.Errorf("hart: ReadMemory buffer too small: need %d, have %d", size*count, len(buf))
	}
	if count == 0 {
		return nil
	}

	slot0 := ctx.Cache.Slot0()
	ctx.Cache.Set(slot0, address)
	ctx.Cache.SetLoad(0, dram.RegS0, slot0)
	ctx.Cache.SetJump(1)
	if _, _, err := ctx.Cache.Write(dram.Translate(slot0), true); err != nil {
		return err
	}

	if err := ctx.saveT0(); err != nil {
		return err
	}
	defer func() {
		if rerr := ctx.restoreT0(); err == nil {
			err = rerr
		}
	}()

	ctx.memoryStepSize = size
	var loadInstr uint32
	switch size {
	case 1:
		loadInstr = dram.Lb(dram.RegT0, dram.RegS0, 0)
	case 2:
		loadInstr = dram.Lh(dram.RegT0, dram.RegS0, 0)
	case 4:
		loadInstr = dram.Lw(dram.RegT0, dram.RegS0, 0)
	}
	ctx.stageMemoryWalk(loadInstr, false)

	for i := 0; i < count; i++ {
		v, _, err := ctx.Cache.Write(dram.Translate(slot0), true)
		if err != nil {
			return err
		}
		for b := 0; b < size; b++ {
			buf[i*size+b] = byte(v >> (8 * uint(b)))
		}
	}
	ctx.invalidateGPRCache()
	return nil
}

// WriteMemory writes buf (little-endian) to address, size bytes at a time.
func (ctx *Context) WriteMemory(address uint64, size int, buf []byte) (err error) {
	if err := validAccessSize(size); err != nil {
		return err
	}
	if len(buf)%size != 0 {
		return fmt.Errorf("hart: WriteMemory buffer length %d not a multiple of size %d", len(buf), size)
	}
	count := len(buf) / size
	if count == 0 {
		return nil
	}

	slot0 := ctx.Cache.Slot0()
	ctx.Cache.Set(slot0, address)
	ctx.Cache.SetLoad(0, dram.RegS0, slot0)
	ctx.Cache.SetJump(1)
	if _, _, err := ctx.Cache.Write(dram.Translate(slot0), true); err != nil {
		return err
	}

	if err := ctx.saveT0(); err != nil {
		return err
	}
	defer func() {
		if rerr := ctx.restoreT0(); err == nil {
			err = rerr
		}
	}()

	ctx.memoryStepSize = size
	var storeInstr uint32
	switch size {
	case 1:
		storeInstr = dram.Sb(dram.RegT0, dram.RegS0, 0)
	case 2:
		storeInstr = dram.Sh(dram.RegT0, dram.RegS0, 0)
	case 4:
		storeInstr = dram.Sw(dram.RegT0, dram.RegS0, 0)
	}
	ctx.stageMemoryWalk(storeInstr, true)

	for i := 0; i < count; i++ {
		var v uint32
		for b := 0; b < size; b++ {
			v |= uint32(buf[i*size+b]) << (8 * uint(b))
		}
		ctx.Cache.Set32(slot0, v)
		if _, _, err := ctx.Cache.Write(dram.Translate(slot0), true); err != nil {
			return err
		}
	}
	ctx.invalidateGPRCache()
	return nil
}
