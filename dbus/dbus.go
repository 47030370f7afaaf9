// Copyright 2018 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package dbus implements the dbus JTAG scan engine: the register-access
// protocol a RISC-V Debug Transport Module (DTM) exposes over a JTAG TAP.
//
// The wire format is a single shift register selected by IR=DBUS. Every scan
// shifts in a request and shifts out the PREVIOUS request's response: the
// register is a one-deep pipeline, not a request/response round trip. A scan
// packs, lsb-first:
//
//	bits [0:2)               op:      00=nop 01=read 10=write 11=reserved
//	bits [2:36)               data:    bits[0:32) payload, bit 32 haltnot,
//	                                    bit 33 interrupt
//	bits [36:36+addrbits)     address
//
// Because the response always lags the request by one scan, every accessor
// in this package loops: it keeps reissuing the same request until a
// response finally echoes back the address (and, for reads, a non-BUSY
// status) it is waiting for.
package dbus

import (
	"errors"

	"github.com/rvdbg/rvtarget/conn/jtag"
)

// JTAG IR addresses for the registers this DTM exposes. DTMINFO and DBUS are
// the only two a driver above this package ever selects directly; DEBUG
// selects the legacy single Debug RAM word shifter and is unused by this
// driver but kept for completeness.
const (
	IRWidth   = 5
	IRDTMInfo = 0x10
	IRDBus    = 0x11
	IRDebug   = 0x05
)

// dbus register addresses. These live in the dbus address space (the
// "address" field of a dbus scan) and are numerically coincidental with,
// but otherwise unrelated to, the IR addresses above.
const (
	DMControlAddr = 0x10
	DMInfoAddr    = 0x11
)

// Op is the 2-bit dbus operation code.
type Op uint8

// Operation codes.
const (
	OpNop   Op = 0
	OpRead  Op = 1
	OpWrite Op = 2
)

// Status is the 2-bit dbus response code.
type Status uint8

// Response codes. 1 is never produced by hardware; the gap is part of the
// wire format this package mirrors.
const (
	StatusSuccess Status = 0
	StatusFailed  Status = 2
	StatusBusy    Status = 3
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	case StatusBusy:
		return "busy"
	default:
		return "reserved"
	}
}

// Data field control bits, within the 34-bit data field.
const (
	FlagHaltNot   = uint64(1) << 32
	FlagInterrupt = uint64(1) << 33
)

// ErrFailed is returned when a dbus operation reports StatusFailed.
var ErrFailed = errors.New("dbus: operation failed")

// Engine drives the dbus scan chain of a single DTM over a jtag.TAP.
//
// BusyDelay and InterruptHighDelay are the adaptive pacing counters: every
// BUSY response bumps BusyDelay, and every scan that sets the interrupt bit
// pads the following idle count by InterruptHighDelay. Both only grow; a
// driver that wants to re-probe a faster pace creates a new Engine.
type Engine struct {
	TAP      jtag.TAP
	AddrBits uint
	XLen     int

	BusyDelay          int
	InterruptHighDelay int
}

// New returns an Engine driving tap with a dbus register addrBits wide,
// talking to a hart of the given XLEN (32 or 64).
func New(tap jtag.TAP, addrBits uint, xlen int) *Engine {
	return &Engine{TAP: tap, AddrBits: addrBits, XLen: xlen}
}

func (e *Engine) bits() int {
	return 36 + int(e.AddrBits)
}

func (e *Engine) idleCount(data uint64) int {
	idle := 1 + e.BusyDelay
	if data&FlagInterrupt != 0 {
		idle += e.InterruptHighDelay
	}
	return idle
}

// scan shifts one (op, address, data) request through the dbus register and
// returns the PREVIOUS request's response.
func (e *Engine) scan(op Op, address uint32, data uint64) (Status, uint32, uint64, error) {
	e.TAP.QueueIR(IRDBus, IRWidth)
	bits := e.bits()
	out := make([]byte, jtag.Bytes(bits))
	jtag.SetBits(out, 0, 2, uint64(op))
	jtag.SetBits(out, 2, 34, data)
	jtag.SetBits(out, 36, int(e.AddrBits), uint64(address))
	capture := make([]byte, len(out))
	e.TAP.QueueDR(out, bits, capture)
	e.TAP.QueueIdle(e.idleCount(data))
	if err := e.TAP.Execute(); err != nil {
		return 0, 0, 0, err
	}
	status := Status(jtag.GetBits(capture, 0, 2))
	dataIn := jtag.GetBits(capture, 2, 34)
	addrIn := uint32(jtag.GetBits(capture, 36, int(e.AddrBits)))
	return status, addrIn, dataIn, nil
}

// Read performs a dbus READ of addr, re-issuing the request until the
// response is not BUSY and echoes back addr (guarding against a stale
// response left over from a prior request).
func (e *Engine) Read(addr uint32) (value uint32, haltNot, interrupt bool, err error) {
	for {
		status, addrIn, dataIn, err := e.scan(OpRead, addr, 0)
		if err != nil {
			return 0, false, false, err
		}
		if status == StatusBusy {
			e.BusyDelay++
			continue
		}
		if addrIn != addr {
			continue
		}
		if status == StatusFailed {
			return 0, false, false, ErrFailed
		}
		return uint32(dataIn), dataIn&FlagHaltNot != 0, dataIn&FlagInterrupt != 0, nil
	}
}

// Write performs a dbus WRITE of value to addr, re-issuing the request while
// the response is BUSY.
func (e *Engine) Write(addr uint32, value uint32, haltNot, interrupt bool) error {
	data := uint64(value)
	if haltNot {
		data |= FlagHaltNot
	}
	if interrupt {
		data |= FlagInterrupt
	}
	for {
		status, _, _, err := e.scan(OpWrite, addr, data)
		if err != nil {
			return err
		}
		if status == StatusBusy {
			e.BusyDelay++
			continue
		}
		if status == StatusFailed {
			return ErrFailed
		}
		return nil
	}
}

// ReadBits reads the haltnot/interrupt control bits without addressing any
// particular register, by issuing NOPs until a response with address<=
// IRDTMInfo comes back non-BUSY. This is how a driver polls hart state
// without disturbing whatever the last real request was addressing.
func (e *Engine) ReadBits() (haltNot, interrupt bool, err error) {
	for {
		status, addrIn, dataIn, err := e.scan(OpNop, 0, 0)
		if err != nil {
			return false, false, err
		}
		if status == StatusBusy {
			e.BusyDelay++
			continue
		}
		if addrIn > IRDTMInfo {
			continue
		}
		return dataIn&FlagHaltNot != 0, dataIn&FlagInterrupt != 0, nil
	}
}

// DTMInfo is the decoded content of the DTMINFO register: the static
// description of the DTM a driver reads once during Examine.
type DTMInfo struct {
	Version  uint
	AddrBits uint
	DBusStat Status
}

// ReadDTMInfo selects and scans the DTMINFO register. AddrBits on the
// returned value tells the driver how wide to make the dbus register address
// field for every subsequent Engine.
func ReadDTMInfo(tap jtag.TAP) (DTMInfo, error) {
	tap.QueueIR(IRDTMInfo, IRWidth)
	out := make([]byte, jtag.Bytes(32))
	capture := make([]byte, len(out))
	tap.QueueDR(out, 32, capture)
	tap.QueueIdle(1)
	if err := tap.Execute(); err != nil {
		return DTMInfo{}, err
	}
	return DTMInfo{
		Version:  uint(jtag.GetBits(capture, 0, 4)),
		AddrBits: uint(jtag.GetBits(capture, 4, 6)),
		DBusStat: Status(jtag.GetBits(capture, 10, 2)),
	}, nil
}
