// Copyright 2018 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hart

// Debug CSR addresses. Not present in the filtered OpenOCD source this
// driver is grounded on (they come from riscv.h, which the retrieval pack
// doesn't carry) so these follow the RISC-V debug spec's well-known
// addresses directly.
const (
	csrTSelect  = 0x7a0
	csrTData1   = 0x7a1
	csrTData2   = 0x7a2
	csrDCSR     = 0x7b0
	csrDPC      = 0x7b1
	csrDScratch = 0x7b2
	csrMISA     = 0x301
)

// Cause is DCSR.CAUSE: why the hart last entered debug mode.
type Cause uint8

// Cause values.
const (
	CauseNone      Cause = 0
	CauseSWBP      Cause = 1
	CauseHWBP      Cause = 2
	CauseDebugInt  Cause = 3
	CauseStep      Cause = 4
	CauseHalt      Cause = 5
)

// DCSR is the shadow copy of the Debug Control and Status Register. It is
// modeled as a typed record rather than raw bits, per the repo's shadow-
// state convention (see Context); Encode/Decode give the one place the bit
// layout is pinned down.
//
// Halt must fit a 5-bit csrrsi immediate: `csrsi DCSR, HALT` sets it with a
// set-bits-immediate instruction, so it has to live in the low 5 bits.
type DCSR struct {
	PRV       uint8
	Step      bool
	Halt      bool
	Cause     Cause
	EbreakM   bool
	EbreakH   bool
	EbreakS   bool
	EbreakU   bool
	NDReset   bool
	FullReset bool
}

// HaltBit is the immediate `csrsi DCSR, HaltBit` uses to force entry to
// debug mode.
const HaltBit = 1 << 3

// Encode packs d into a 32-bit DCSR value.
func (d DCSR) Encode() uint32 {
	var v uint32
	v |= uint32(d.PRV) & 0x3
	if d.Step {
		v |= 1 << 2
	}
	if d.Halt {
		v |= 1 << 3
	}
	v |= (uint32(d.Cause) & 0x7) << 5
	if d.EbreakM {
		v |= 1 << 8
	}
	if d.EbreakH {
		v |= 1 << 9
	}
	if d.EbreakS {
		v |= 1 << 10
	}
	if d.EbreakU {
		v |= 1 << 11
	}
	if d.NDReset {
		v |= 1 << 12
	}
	if d.FullReset {
		v |= 1 << 13
	}
	return v
}

// DecodeDCSR unpacks a 32-bit DCSR value.
func DecodeDCSR(v uint32) DCSR {
	return DCSR{
		PRV:       uint8(v & 0x3),
		Step:      v&(1<<2) != 0,
		Halt:      v&(1<<3) != 0,
		Cause:     Cause((v >> 5) & 0x7),
		EbreakM:   v&(1<<8) != 0,
		EbreakH:   v&(1<<9) != 0,
		EbreakS:   v&(1<<10) != 0,
		EbreakU:   v&(1<<11) != 0,
		NDReset:   v&(1<<12) != 0,
		FullReset: v&(1<<13) != 0,
	}
}
