// Copyright 2018 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dbus

import "github.com/rvdbg/rvtarget/conn/jtag"

// ScanBuffer batches a sequence of dbus requests into one jtag.TAP.Execute,
// instead of paying the round trip of one Execute per request. It is how
// dram.Cache's cache_write and hart's halt-entry routine keep the dbus
// pipeline full: since every scan's capture is the PREVIOUS request's
// response, batching N requests needs N+1 scans, and Execute accounts for
// that by discarding the leading capture and returning exactly N results.
//
// ScanBuffer does not retry on BUSY; a caller that sees a StatusBusy Result
// re-issues that one request (and every request after it, since the
// pipeline has moved on) itself. See dram.Cache.Write for the retry
// strategy this is meant to support.
type ScanBuffer struct {
	e   *Engine
	ops []bufOp
}

type bufOp struct {
	op   Op
	addr uint32
	data uint64
}

// Result is one scan's worth of dbus response.
type Result struct {
	Status    Status
	Addr      uint32
	Data      uint32
	HaltNot   bool
	Interrupt bool
}

// NewScanBuffer returns an empty ScanBuffer sized for n requests.
func (e *Engine) NewScanBuffer(n int) *ScanBuffer {
	return &ScanBuffer{e: e, ops: make([]bufOp, 0, n)}
}

// AddWrite32 queues a dbus WRITE of a 32-bit value to addr.
func (b *ScanBuffer) AddWrite32(addr uint32, value uint32, haltNot, interrupt bool) {
	data := uint64(value)
	if haltNot {
		data |= FlagHaltNot
	}
	if interrupt {
		data |= FlagInterrupt
	}
	b.ops = append(b.ops, bufOp{op: OpWrite, addr: addr, data: data})
}

// AddWriteJump queues a WRITE of a jal instruction word to addr, setting
// haltnot/interrupt to resume the hart into the program just written.
//
// The caller (dram.Cache) computes the jal encoding; ScanBuffer only shifts
// it onto the wire.
func (b *ScanBuffer) AddWriteJump(addr uint32, jalWord uint32, interrupt bool) {
	b.AddWrite32(addr, jalWord, true, interrupt)
}

// AddWriteLoad queues a WRITE of an lw/ld instruction word to addr.
func (b *ScanBuffer) AddWriteLoad(addr uint32, loadWord uint32) {
	b.AddWrite32(addr, loadWord, false, false)
}

// AddWriteStore queues a WRITE of an sw/sd instruction word to addr.
func (b *ScanBuffer) AddWriteStore(addr uint32, storeWord uint32) {
	b.AddWrite32(addr, storeWord, false, false)
}

// AddRead32 queues a dbus READ of addr.
func (b *ScanBuffer) AddRead32(addr uint32) {
	b.ops = append(b.ops, bufOp{op: OpRead, addr: addr})
}

// AddRead queues a dbus READ of a value XLEN bits wide starting at addr: one
// 32-bit read for XLEN=32, or the low word followed by the high word (with
// the interrupt bit set on the high word, per the DTM's pipelining contract)
// for XLEN=64.
func (b *ScanBuffer) AddRead(addr uint32) {
	b.ops = append(b.ops, bufOp{op: OpRead, addr: addr})
	if b.e.XLen == 64 {
		b.ops = append(b.ops, bufOp{op: OpRead, addr: addr + 1, data: FlagInterrupt})
	}
}

// Len reports the number of requests queued so far.
func (b *ScanBuffer) Len() int {
	return len(b.ops)
}

// Execute flushes every queued request through the Engine's TAP in one
// transaction and returns one Result per queued request, in order.
func (b *ScanBuffer) Execute() ([]Result, error) {
	n := len(b.ops)
	bits := b.e.bits()
	captures := make([][]byte, n+1)

	for i, op := range b.ops {
		b.e.TAP.QueueIR(IRDBus, IRWidth)
		out := make([]byte, jtag.Bytes(bits))
		jtag.SetBits(out, 0, 2, uint64(op.op))
		jtag.SetBits(out, 2, 34, op.data)
		jtag.SetBits(out, 36, int(b.e.AddrBits), uint64(op.addr))
		capture := make([]byte, len(out))
		captures[i] = capture
		b.e.TAP.QueueDR(out, bits, capture)
		b.e.TAP.QueueIdle(b.e.idleCount(op.data))
	}
	// Trailing NOP to retrieve the final queued request's response.
	b.e.TAP.QueueIR(IRDBus, IRWidth)
	out := make([]byte, jtag.Bytes(bits))
	capture := make([]byte, len(out))
	captures[n] = capture
	b.e.TAP.QueueDR(out, bits, capture)
	b.e.TAP.QueueIdle(b.e.idleCount(0))

	if err := b.e.TAP.Execute(); err != nil {
		return nil, err
	}

	results := make([]Result, n)
	for i := 0; i < n; i++ {
		capture := captures[i+1]
		dataIn := jtag.GetBits(capture, 2, 34)
		results[i] = Result{
			Status:    Status(jtag.GetBits(capture, 0, 2)),
			Addr:      uint32(jtag.GetBits(capture, 36, int(b.e.AddrBits))),
			Data:      uint32(dataIn),
			HaltNot:   dataIn&FlagHaltNot != 0,
			Interrupt: dataIn&FlagInterrupt != 0,
		}
	}
	b.ops = b.ops[:0]
	return results, nil
}
