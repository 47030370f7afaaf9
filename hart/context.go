// Copyright 2018 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hart implements the RISC-V hart state machine: halt/resume/step,
// register and memory access via Debug RAM programs, the hardware trigger
// allocator, and target examination. It is the component everything in
// target/riscv delegates to; a Context is the typed record holding every
// piece of shadow state a real riscv011 Debug Module forces a driver to
// cache (DCSR, DPC, MISA, GPRs, TSELECT) because physically reading them is
// expensive and only valid while the hart is halted.
package hart

import (
	"errors"
	"log"

	"github.com/rvdbg/rvtarget/dbus"
	"github.com/rvdbg/rvtarget/dram"
)

// MaxHWBPs is the number of hardware trigger slots the trigger allocator
// searches (MAX_HWBPS).
const MaxHWBPs = 16

// State is the hart's externally observable run state.
type State int

// Hart states, derived from {haltnot, interrupt} by Poll.
const (
	StateRunning State = iota
	StateHalted
	StateDebugRunning
	StateReset
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateHalted:
		return "halted"
	case StateDebugRunning:
		return "debug-running"
	case StateReset:
		return "reset"
	default:
		return "unknown"
	}
}

// DebugReason is why the hart is halted, surfaced to the host debugger.
type DebugReason int

// Debug reasons, decoded from DCSR.CAUSE at halt entry.
const (
	ReasonNone DebugReason = iota
	ReasonBreakpoint
	ReasonWptAndBkpt
	ReasonDbgrq
	ReasonSingleStep
)

// Sentinel errors. Transport-busy and interrupt-still-high are handled
// internally (see dbus, dram) and never surface here.
var (
	ErrNoFreeTrigger        = errors.New("hart: no free hardware trigger")
	ErrUnsupportedXLEN      = errors.New("hart: unsupported XLEN")
	ErrUnsupportedResumeMode = errors.New("hart: unsupported resume mode (current=false, handleBreakpoints=true, debugExecution=true)")
	ErrTrapped              = errors.New("hart: trapped executing debug program")
)

// ErrWatchdogTimeout is dram's 2-second wait-for-hart timeout, re-exported
// here since every blocking hart operation can return it.
var ErrWatchdogTimeout = dram.ErrWatchdogTimeout

// trigger is the transient descriptor built from a caller-owned breakpoint
// or watchpoint, per spec.md's Trigger descriptor.
type trigger struct {
	address                        uint64
	length                         uint
	read, write, execute           bool
	uniqueID                       uint64
}

// Context is one attached hart's full state: the shadow registers, Debug
// RAM cache handle, dbus engine, and trigger table. Everything in
// target/riscv.Target operates through a Context; there are no
// package-level globals.
type Context struct {
	Engine *dbus.Engine
	Cache  *dram.Cache
	Logger *log.Logger

	AddrBits uint
	XLen     int
	DramSize int

	// AccessWidths records DMINFO's ACCESS capability bits (8/16/32/64/128),
	// for callers that want to report hart capabilities. Only sizes in
	// {1,2,4} bytes are ever used for ReadMemory/WriteMemory.
	AccessWidths []int

	// PrivMask overrides which of H/S/U every trigger the allocator
	// programs (breakpoint or watchpoint) sets, for targets whose actual
	// privilege configuration differs from what MISA advertises. Nil means "trust misa" (the default, matching
	// spec.md exactly).
	PrivMask func(misa uint64) (h, s, u bool)

	// Shadow registers, authoritative only while State == StateHalted.
	DCSR         DCSR
	DPC          uint64
	Misa         uint64
	TSelect      uint32
	TSelectDirty bool

	GPRCache [32]uint64
	gprValid bool

	triggers     [MaxHWBPs]trigger
	triggerOwned [MaxHWBPs]bool

	State          State
	DebugReason    DebugReason
	NeedStrictStep bool

	softBreakpoints map[uint64]softBreakpoint

	// memoryStepSize is the access width of the ReadMemory/WriteMemory walk
	// currently staged in Debug RAM, consulted by stageMemoryWalk's addi.
	memoryStepSize int
}

type softBreakpoint struct {
	address uint64
	orig    [4]byte
	length  int
}

// New returns a Context bound to engine and cache. Examine must be called
// before any other operation.
func New(engine *dbus.Engine, cache *dram.Cache, logger *log.Logger) *Context {
	if logger == nil {
		logger = log.New(discard{}, "", 0)
	}
	return &Context{
		Engine:          engine,
		Cache:           cache,
		Logger:          logger,
		softBreakpoints: map[uint64]softBreakpoint{},
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// Info is a diagnostics snapshot, mirroring the original driver's
// riscv_info_t dump.
type Info struct {
	AddrBits           uint
	XLen               int
	DramSize           int
	State              State
	BusyDelay          int
	InterruptHighDelay int
	TriggersInUse      int
}

// Info returns a snapshot of ctx's current configuration and counters.
func (ctx *Context) Info() Info {
	used := 0
	for _, owned := range ctx.triggerOwned {
		if owned {
			used++
		}
	}
	return Info{
		AddrBits:           ctx.AddrBits,
		XLen:               ctx.XLen,
		DramSize:           ctx.DramSize,
		State:              ctx.State,
		BusyDelay:          ctx.Engine.BusyDelay,
		InterruptHighDelay: ctx.Engine.InterruptHighDelay,
		TriggersInUse:      used,
	}
}

func (ctx *Context) invalidateGPRCache() {
	ctx.gprValid = false
}
