// Copyright 2018 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dram

// Instruction encoders for the handful of RV32I/RV64I instructions a debug
// program ever stages into Debug RAM. These are plain base-ISA encodings,
// nothing target-specific; they live here (rather than in hart) because
// set_load/set_store/set_jump are Cache methods, and hart reuses them for
// its own register/memory-access programs.

// General-purpose register numbers the debug programs built here and in
// hart refer to by name: x0 as the zero base, and T0, S0, S1.
const (
	RegZero uint32 = 0
	RegT0   uint32 = 5
	RegS0   uint32 = 8
	RegS1   uint32 = 9
)

const (
	opLoad   = 0x03
	opLoadFP = 0x07
	opMisc   = 0x0f
	opOpImm  = 0x13
	opStore  = 0x23
	opStoreFP = 0x27
	opJal    = 0x6f
	opSystem = 0x73
)

func encodeI(opcode, funct3, rd, rs1 uint32, imm int32) uint32 {
	return uint32(imm&0xfff)<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encodeS(opcode, funct3, rs1, rs2 uint32, imm int32) uint32 {
	u := uint32(imm)
	return (u>>5&0x7f)<<25 | rs2<<20 | rs1<<15 | funct3<<12 | (u&0x1f)<<7 | opcode
}

func encodeJ(opcode, rd uint32, imm int32) uint32 {
	u := uint32(imm)
	return (u>>20&1)<<31 | (u>>1&0x3ff)<<21 | (u>>11&1)<<20 | (u>>12&0xff)<<12 | rd<<7 | opcode
}

// Jal encodes "jal rd, offset".
func Jal(rd uint32, offset int32) uint32 { return encodeJ(opJal, rd, offset) }

// Lw encodes "lw rd, offset(rs1)".
func Lw(rd, rs1 uint32, offset int32) uint32 { return encodeI(opLoad, 0x2, rd, rs1, offset) }

// Ld encodes "ld rd, offset(rs1)" (RV64 only).
func Ld(rd, rs1 uint32, offset int32) uint32 { return encodeI(opLoad, 0x3, rd, rs1, offset) }

// Lb encodes "lb rd, offset(rs1)".
func Lb(rd, rs1 uint32, offset int32) uint32 { return encodeI(opLoad, 0x0, rd, rs1, offset) }

// Lh encodes "lh rd, offset(rs1)".
func Lh(rd, rs1 uint32, offset int32) uint32 { return encodeI(opLoad, 0x1, rd, rs1, offset) }

// Sw encodes "sw rs2, offset(rs1)".
func Sw(rs2, rs1 uint32, offset int32) uint32 { return encodeS(opStore, 0x2, rs1, rs2, offset) }

// Sd encodes "sd rs2, offset(rs1)" (RV64 only).
func Sd(rs2, rs1 uint32, offset int32) uint32 { return encodeS(opStore, 0x3, rs1, rs2, offset) }

// Sb encodes "sb rs2, offset(rs1)".
func Sb(rs2, rs1 uint32, offset int32) uint32 { return encodeS(opStore, 0x0, rs1, rs2, offset) }

// Sh encodes "sh rs2, offset(rs1)".
func Sh(rs2, rs1 uint32, offset int32) uint32 { return encodeS(opStore, 0x1, rs1, rs2, offset) }

// Addi encodes "addi rd, rs1, imm".
func Addi(rd, rs1 uint32, imm int32) uint32 { return encodeI(opOpImm, 0x0, rd, rs1, imm) }

// Xori encodes "xori rd, rs1, imm".
func Xori(rd, rs1 uint32, imm int32) uint32 { return encodeI(opOpImm, 0x4, rd, rs1, imm) }

// Srli encodes "srli rd, rs1, shamt". shamt must be < 32: every debug
// program this driver builds shifts by at most 31 bits, so the RV64 form
// (which widens shamt to 6 bits via the top funct7 bit) never comes up.
func Srli(rd, rs1, shamt uint32) uint32 { return encodeI(opOpImm, 0x5, rd, rs1, int32(shamt&0x1f)) }

// Csrrs encodes "csrrs rd, csr, rs1". Csrr(rd, csr) is csrrs rd, csr, x0.
func Csrrs(rd, csr, rs1 uint32) uint32 { return encodeI(opSystem, 0x2, rd, rs1, int32(csr)) }

// Csrr encodes "csrr rd, csr".
func Csrr(rd, csr uint32) uint32 { return Csrrs(rd, csr, RegZero) }

// Csrrw encodes "csrrw rd, csr, rs1". Csrw(csr, rs1) is csrrw x0, csr, rs1.
func Csrrw(rd, csr, rs1 uint32) uint32 { return encodeI(opSystem, 0x1, rd, rs1, int32(csr)) }

// Csrw encodes "csrw csr, rs1".
func Csrw(csr, rs1 uint32) uint32 { return Csrrw(RegZero, csr, rs1) }

// Csrrsi encodes "csrrsi rd, csr, zimm".
func Csrrsi(rd, csr, zimm uint32) uint32 { return encodeI(opSystem, 0x6, rd, zimm, int32(csr)) }

// Csrsi encodes "csrsi csr, zimm" (csrrsi x0, csr, zimm).
func Csrsi(csr, zimm uint32) uint32 { return Csrrsi(RegZero, csr, zimm) }

// Ebreak encodes the 32-bit "ebreak" instruction.
func Ebreak() uint32 { return encodeI(opSystem, 0x0, RegZero, RegZero, 1) }

// CEbreak is the 16-bit compressed "c.ebreak" encoding.
const CEbreak uint16 = 0x9002

// FenceI encodes "fence.i".
func FenceI() uint32 { return encodeI(opMisc, 0x1, RegZero, RegZero, 0) }

// Flw encodes "flw rd, offset(rs1)" (loads a 32-bit float register).
func Flw(rd, rs1 uint32, offset int32) uint32 { return encodeI(opLoadFP, 0x2, rd, rs1, offset) }

// Fsw encodes "fsw rs2, offset(rs1)" (stores a 32-bit float register).
func Fsw(rs2, rs1 uint32, offset int32) uint32 { return encodeS(opStoreFP, 0x2, rs1, rs2, offset) }
