// Copyright 2018 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package jtagtest is a simulated DTM and Debug Module: a jtag.TAP that
// behaves enough like real RISC-V debug hardware (spec.md §8's reference
// simulator) to exercise dbus, dram, and hart against something other than
// a flat register map.
//
// It reproduces: the IR-selected DTMINFO/DBUS register split, the dbus
// one-scan pipeline, the DMCONTROL/DMINFO dbus registers, Debug RAM as a
// small word array, and interrupt-triggered execution of whatever program
// is staged there. It interprets the instruction subset dram/isa.go emits
// (load/store/jal/csr*/addi/xori/srli/fence.i/ebreak) against either Debug
// RAM (for small, x0-relative addresses) or a separate simulated target
// memory (everything else). What it does NOT do is fetch-execute arbitrary
// resumed target code: Resume just flips the running flag, and a caller
// that wants to simulate the hart hitting a breakpoint after resuming
// calls Break to force that transition directly. This is a test fixture,
// not a RISC-V core.
package jtagtest

import (
	"fmt"

	"github.com/rvdbg/rvtarget/conn/jtag"
)

const (
	irDTMInfo = 0x10
	irDBus    = 0x11

	dmControlAddr = 0x10
	dmInfoAddr    = 0x11

	debugRAMStart  = 0x400
	debugROMStart  = 0x800
	debugROMResume = debugROMStart + 4
)

// Flags within the 34-bit dbus data field, mirrored from package dbus so
// this package has no dependency on it (jtagtest sits below dbus in the
// import graph: dbus's own tests may use it).
const (
	flagHaltNot   = uint64(1) << 32
	flagInterrupt = uint64(1) << 33
)

// maxTriggers mirrors hart.MaxHWBPs: the number of hardware trigger slots
// TSELECT can address. TDATA1/TDATA2 are windowed through TSELECT on real
// hardware (one physical register pair per slot, aliased onto the same CSR
// address), which the flat csr map can't represent, so triggers get their
// own per-slot arrays.
const maxTriggers = 16

// triggerTypeAddrData is the TDATA1.TYPE value real debug hardware hardwires
// into every implemented trigger slot at reset (mcontrol-style address/data
// match). Mirrored from hart's own unexported constant of the same name,
// per this package's no-dependency-on-hart convention (see the package doc).
const triggerTypeAddrData = 2

// DM is a simulated Debug Transport Module plus Debug Module.
type DM struct {
	AddrBits uint
	XLen     int
	DramSize int // words of Debug RAM, including the exception slot

	ram  []uint32
	gpr  [32]uint64
	fpr  [32]uint64
	csr  map[uint32]uint64
	dpc  uint64
	dcsr uint32

	tselect uint32
	tdata1  [maxTriggers]uint32
	tdata2  [maxTriggers]uint32

	halted  bool
	running bool // true once execution has been handed back to resumed code

	mem map[uint64]byte // simulated target memory, byte-addressed

	// BusyFor makes the next N dbus responses report BUSY, for exercising
	// the retry paths.
	BusyFor int

	ir      uint32
	pending []byte
}

// New returns a DM simulating a hart with the given dbus address width,
// XLEN, and Debug RAM size. It starts halted, the state every real target
// is in immediately after the JTAG TAP resets and this package takes over.
// Every trigger slot starts free (TYPE=addr/data match, EXECUTE/STORE/LOAD
// all clear), matching the reset state the trigger allocator of spec.md
// §4.7 assumes it can probe.
func New(addrBits uint, xlen, dramSize int) *DM {
	d := &DM{
		AddrBits: addrBits,
		XLen:     xlen,
		DramSize: dramSize,
		ram:      make([]uint32, dramSize),
		csr:      map[uint32]uint64{},
		mem:      map[uint64]byte{},
		halted:   true,
	}
	for i := range d.tdata1 {
		d.tdata1[i] = triggerTypeAddrData << 28
	}
	return d
}

// WriteTargetMemory preloads addr..addr+len(data) of simulated target
// memory, for tests that want ReadMemory to see known content.
func (d *DM) WriteTargetMemory(addr uint64, data []byte) {
	for i, b := range data {
		d.mem[addr+uint64(i)] = b
	}
}

// ReadTargetMemory returns size bytes of simulated target memory starting
// at addr, for tests that want to assert what WriteMemory produced.
func (d *DM) ReadTargetMemory(addr uint64, size int) []byte {
	out := make([]byte, size)
	for i := range out {
		out[i] = d.mem[addr+uint64(i)]
	}
	return out
}

// Break forces the simulated hart to stop running code and enter debug
// mode with the given cause, as if it had just hit a breakpoint or
// watchpoint while resumed.
func (d *DM) Break(cause uint32) {
	d.running = false
	d.halted = true
	d.dcsr = (d.dcsr &^ (0x7 << 5)) | ((cause & 0x7) << 5)
	d.dcsr |= 1 << 3 // HALT
}

// --- jtag.TAP ---

func (d *DM) QueueIR(ir uint32, bits int) { d.ir = ir }

func (d *DM) QueueDR(out []byte, bits int, capture []byte) {
	switch d.ir {
	case irDTMInfo:
		d.scanDTMInfo(capture)
	case irDBus:
		d.scanDBus(out, capture)
	default:
		// Unknown/unused IR (IRDebug): just echo zero.
	}
}

func (d *DM) QueueIdle(cycles int) {}

func (d *DM) Execute() error { return nil }

func (d *DM) scanDTMInfo(capture []byte) {
	jtag.SetBits(capture, 0, 4, 0) // version 0
	jtag.SetBits(capture, 4, 6, uint64(d.AddrBits))
	jtag.SetBits(capture, 10, 2, 0) // dbusstat success
}

func (d *DM) scanDBus(out []byte, capture []byte) {
	bits := 36 + int(d.AddrBits)
	if d.pending != nil {
		op := jtag.GetBits(d.pending, 0, 2)
		data := jtag.GetBits(d.pending, 2, 34)
		addr := uint32(jtag.GetBits(d.pending, 36, int(d.AddrBits)))

		status := uint64(0) // success
		var respData uint64
		if d.BusyFor > 0 {
			d.BusyFor--
			status = 3 // busy
		} else {
			respData = d.apply(op, addr, data)
		}
		jtag.SetBits(capture, 0, 2, status)
		jtag.SetBits(capture, 2, 34, respData)
		jtag.SetBits(capture, 36, int(d.AddrBits), uint64(addr))
	}
	d.pending = append([]byte(nil), out...)
	_ = bits
}

// apply performs op against addr/data (already past the busy gate) and
// returns the 34-bit response data field (payload + haltnot + interrupt).
func (d *DM) apply(op uint64, addr uint32, data uint64) uint64 {
	switch op {
	case 1: // read
		return d.read(addr)
	case 2: // write
		d.write(addr, uint32(data))
		if data&flagInterrupt != 0 {
			d.runDebugProgram()
		}
		return d.read(addr)
	default:
		return d.status()
	}
}

func (d *DM) status() uint64 {
	var v uint64
	if d.halted {
		v |= flagHaltNot
	}
	return v
}

func (d *DM) read(addr uint32) uint64 {
	switch {
	case addr == dmControlAddr:
		return d.status()
	case addr == dmInfoAddr:
		// version=1, authtype=0, dramsize-1 in bits[6:12), no access widths.
		return uint64(1) | uint64(d.DramSize-1)<<6 | d.status()
	case int(addr) < len(d.ram):
		return uint64(d.ram[addr]) | d.status()
	default:
		return d.status()
	}
}

func (d *DM) write(addr uint32, value uint32) {
	if int(addr) < len(d.ram) {
		d.ram[addr] = value
	}
}

// runDebugProgram interprets Debug RAM as RV32I/RV64I instructions
// starting at word 0, until it reaches the jal back to
// DEBUG_ROM_RESUME, then applies the halt/resume transition implied by
// DCSR.HALT at that point.
func (d *DM) runDebugProgram() {
	if !d.halted {
		// A write with INTERRUPT set while running means "stop and run
		// this program", which is exactly a Break followed by the same
		// staged-program execution.
		d.halted = true
	}
	pc := uint32(debugRAMStart)
	for steps := 0; steps < 64; steps++ {
		word := int(pc-debugRAMStart) / 4
		if word < 0 || word >= len(d.ram) {
			break
		}
		instr := d.ram[word]
		if instr == uint32(0x6f) /* jal x0, 0 (never emitted) */ {
			break
		}
		next, jumped := d.exec(instr, pc)
		if jumped && next == debugROMResume {
			break
		}
		pc = next
	}
	if d.dcsr&(1<<3) == 0 {
		d.halted = false
		d.running = true
	}
}

// exec executes one instruction and returns the next PC plus whether it
// was a taken jump (so runDebugProgram can recognize the resume jal).
func (d *DM) exec(instr, pc uint32) (next uint32, jumped bool) {
	opcode := instr & 0x7f
	rd := (instr >> 7) & 0x1f
	funct3 := (instr >> 12) & 0x7
	rs1 := (instr >> 15) & 0x1f
	rs2 := (instr >> 20) & 0x1f

	readGPR := func(i uint32) uint64 {
		if i == 0 {
			return 0
		}
		return d.gpr[i]
	}
	setGPR := func(i uint32, v uint64) {
		if i != 0 {
			d.gpr[i] = v
		}
	}

	switch opcode {
	case 0x6f: // jal
		imm := decodeJImm(instr)
		target := pc + uint32(imm)
		return target, true
	case 0x03: // load
		imm := decodeIImm(instr)
		addr := readGPR(rs1) + uint64(int64(imm))
		setGPR(rd, d.loadMem(addr, funct3))
	case 0x23: // store
		imm := decodeSImm(instr)
		addr := readGPR(rs1) + uint64(int64(imm))
		d.storeMem(addr, funct3, uint32(readGPR(rs2)))
	case 0x13: // op-imm: addi/xori/srli
		imm := decodeIImm(instr)
		switch funct3 {
		case 0x0: // addi
			setGPR(rd, uint64(int64(readGPR(rs1))+int64(imm)))
		case 0x4: // xori
			setGPR(rd, readGPR(rs1)^uint64(uint32(imm)))
		case 0x5: // srli
			shamt := uint(imm & 0x3f)
			setGPR(rd, readGPR(rs1)>>shamt)
		}
	case 0x07: // flw
		imm := decodeIImm(instr)
		addr := readGPR(rs1) + uint64(int64(imm))
		d.fpr[rd] = d.loadMem(addr, 0x2)
	case 0x27: // fsw
		imm := decodeSImm(instr)
		addr := readGPR(rs1) + uint64(int64(imm))
		d.storeMem(addr, 0x2, uint32(d.fpr[rs2]))
	case 0x0f: // fence.i: no-op in the simulator
	case 0x73: // system: csrrs/csrrw/csrrsi/ebreak
		imm := decodeIImm(instr)
		csr := uint32(imm) & 0xfff
		switch funct3 {
		case 0x0: // ebreak (we only ever encode imm=1 -> csr=1)
			d.Break(1) // CauseSWBP
		case 0x2: // csrrs rd, csr, rs1 (rs1=x0 is csrr)
			old := d.readCSR(csr)
			setGPR(rd, old)
			if rs1 != 0 {
				d.writeCSR(csr, old|readGPR(rs1))
			}
		case 0x1: // csrrw rd, csr, rs1
			old := d.readCSR(csr)
			setGPR(rd, old)
			d.writeCSR(csr, readGPR(rs1))
		case 0x6: // csrrsi rd, csr, zimm
			old := d.readCSR(csr)
			setGPR(rd, old)
			d.writeCSR(csr, old|uint64(rs1))
		}
	default:
		panic(fmt.Sprintf("jtagtest: unimplemented opcode %#x at pc %#x", opcode, pc))
	}
	return pc + 4, false
}

func (d *DM) readCSR(csr uint32) uint64 {
	const csrDCSR = 0x7b0
	const csrDPC = 0x7b1
	const csrMHartID = 0xf14
	const csrTSelect = 0x7a0
	const csrTData1 = 0x7a1
	const csrTData2 = 0x7a2
	switch csr {
	case csrDCSR:
		return uint64(d.dcsr)
	case csrDPC:
		return d.dpc
	case csrMHartID:
		return 0
	case csrTSelect:
		return uint64(d.tselect)
	case csrTData1:
		if d.tselect >= maxTriggers {
			return 0
		}
		return uint64(d.tdata1[d.tselect])
	case csrTData2:
		if d.tselect >= maxTriggers {
			return 0
		}
		return uint64(d.tdata2[d.tselect])
	default:
		return d.csr[csr]
	}
}

func (d *DM) writeCSR(csr uint32, value uint64) {
	const csrDCSR = 0x7b0
	const csrDPC = 0x7b1
	const csrTSelect = 0x7a0
	const csrTData1 = 0x7a1
	const csrTData2 = 0x7a2
	switch csr {
	case csrDCSR:
		d.dcsr = uint32(value)
	case csrDPC:
		d.dpc = value
	case csrTSelect:
		d.tselect = uint32(value)
	case csrTData1:
		// TYPE (bits[31:28]) is hardwired on real mcontrol-style trigger
		// hardware: software can clear the match/action bits (the
		// allocator's "remove" path writes TDATA1=0 to free a slot) but
		// never changes what kind of trigger lives there.
		if d.tselect < maxTriggers {
			const typeMask = 0xf0000000
			d.tdata1[d.tselect] = (d.tdata1[d.tselect] & typeMask) | (uint32(value) &^ typeMask)
		}
	case csrTData2:
		if d.tselect < maxTriggers {
			d.tdata2[d.tselect] = uint32(value)
		}
	default:
		d.csr[csr] = value
	}
}

func (d *DM) loadMem(addr uint64, funct3 uint32) uint64 {
	if idx, ok := d.ramWord(addr); ok {
		v := d.ram[idx]
		switch funct3 {
		case 0x0: // lb
			return uint64(int64(int8(v)))
		case 0x1: // lh
			return uint64(int64(int16(v)))
		default: // lw/ld
			return uint64(v)
		}
	}
	switch funct3 {
	case 0x0:
		return uint64(int64(int8(d.mem[addr])))
	case 0x1:
		return uint64(int64(int16(uint16(d.mem[addr]) | uint16(d.mem[addr+1])<<8)))
	case 0x2:
		return uint64(d.memWord32(addr))
	case 0x3:
		lo := uint64(d.memWord32(addr))
		hi := uint64(d.memWord32(addr + 4))
		return lo | hi<<32
	}
	return 0
}

func (d *DM) storeMem(addr uint64, funct3 uint32, value uint32) {
	if idx, ok := d.ramWord(addr); ok {
		switch funct3 {
		case 0x0:
			d.ram[idx] = (d.ram[idx] &^ 0xff) | (value & 0xff)
		case 0x1:
			d.ram[idx] = (d.ram[idx] &^ 0xffff) | (value & 0xffff)
		default:
			d.ram[idx] = value
		}
		return
	}
	switch funct3 {
	case 0x0:
		d.mem[addr] = byte(value)
	case 0x1:
		d.mem[addr] = byte(value)
		d.mem[addr+1] = byte(value >> 8)
	default:
		for i := 0; i < 4; i++ {
			d.mem[addr+uint64(i)] = byte(value >> (8 * uint(i)))
		}
	}
}

func (d *DM) memWord32(addr uint64) uint32 {
	var v uint32
	for i := 0; i < 4; i++ {
		v |= uint32(d.mem[addr+uint64(i)]) << (8 * uint(i))
	}
	return v
}

func (d *DM) ramWord(addr uint64) (int, bool) {
	if addr < debugRAMStart || addr >= debugRAMStart+4*uint64(len(d.ram)) {
		return 0, false
	}
	return int(addr-debugRAMStart) / 4, true
}

func decodeIImm(instr uint32) int32 { return int32(instr) >> 20 }

func decodeSImm(instr uint32) int32 {
	v := (instr>>25)<<5 | (instr>>7)&0x1f
	return int32(v<<20) >> 20
}

func decodeJImm(instr uint32) int32 {
	v := ((instr >> 31) & 1 << 20) | ((instr >> 21 & 0x3ff) << 1) | ((instr >> 20 & 1) << 11) | ((instr >> 12 & 0xff) << 12)
	return int32(v<<11) >> 11
}
