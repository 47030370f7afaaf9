// Copyright 2018 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hart

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rvdbg/rvtarget/conn/jtag/jtagtest"
	"github.com/rvdbg/rvtarget/dbus"
	"github.com/rvdbg/rvtarget/dram"
	"github.com/rvdbg/rvtarget/gdbreg"
)

// newTestContext wires a Context directly over a simulated DM, the same
// dbus.New/dram.New/hart.New chain target/riscv.New uses, bypassing that
// package so these tests exercise hart as a white box.
func newTestContext(addrBits uint, xlen, dramSize int) (*jtagtest.DM, *Context) {
	dm := jtagtest.New(addrBits, xlen, dramSize)
	engine := dbus.New(dm, 0, 32)
	cache := dram.New(engine, 32, 0)
	return dm, New(engine, cache, nil)
}

func TestExamineDiscoversXLenAndDramSize(t *testing.T) {
	_, ctx := newTestContext(5, 32, 16)
	require.NoError(t, ctx.Examine())
	require.Equal(t, 32, ctx.XLen)
	require.Equal(t, 16, ctx.DramSize)
	require.NoError(t, ctx.Halt())
	require.Equal(t, StateHalted, ctx.State)
}

// S2: halt and read x5 round trip.
func TestHaltAndReadX5RoundTrip(t *testing.T) {
	dm, ctx := newTestContext(5, 32, 16)
	require.NoError(t, ctx.Examine())
	require.NoError(t, ctx.Halt())

	require.NoError(t, ctx.WriteRegister(gdbreg.GPR(5), 0xdeadbeef))
	require.NoError(t, ctx.Resume(true, 0, false, false))
	require.Equal(t, StateRunning, ctx.State)

	dm.Break(uint32(CauseDebugInt))
	require.NoError(t, ctx.Poll())
	require.Equal(t, StateHalted, ctx.State)

	v, err := ctx.ReadRegister(gdbreg.GPR(5))
	require.NoError(t, err)
	require.Equal(t, uint64(0xdeadbeef), v)
}

// Property 6: after halt, poll reports HALTED and debug_reason reflects
// DCSR.CAUSE.
func TestPollAfterHaltReportsReasonFromCause(t *testing.T) {
	dm, ctx := newTestContext(5, 32, 16)
	require.NoError(t, ctx.Examine())
	require.NoError(t, ctx.Halt())
	require.NoError(t, ctx.Resume(true, 0, false, false))

	dm.Break(uint32(CauseSWBP))
	require.NoError(t, ctx.Poll())
	require.Equal(t, StateHalted, ctx.State)
	require.Equal(t, ReasonBreakpoint, ctx.DebugReason)
}

// Property 1: GPR writes followed by a halt/resume cycle round-trip
// verbatim, except x0 which always reads zero.
func TestGPRRoundTripAcrossHaltResume(t *testing.T) {
	dm, ctx := newTestContext(5, 32, 16)
	require.NoError(t, ctx.Examine())
	require.NoError(t, ctx.Halt())

	// Values stay within 32 bits: this Context is XLEN=32, so a GPR only
	// ever holds a 32-bit pattern, zero-extended into the uint64 shadow.
	values := map[int]uint64{
		1:  0x1,
		2:  0x2bad,
		7:  0x77777777,
		10: 0xa0a0a0a0,
		31: 0xffffffff,
	}
	for i, v := range values {
		require.NoError(t, ctx.WriteRegister(gdbreg.GPR(i), v))
	}

	require.NoError(t, ctx.Resume(true, 0, false, false))
	dm.Break(uint32(CauseDebugInt))
	require.NoError(t, ctx.Poll())

	x0, err := ctx.ReadRegister(gdbreg.GPR(0))
	require.NoError(t, err)
	require.Equal(t, uint64(0), x0)

	for i, want := range values {
		got, err := ctx.ReadRegister(gdbreg.GPR(i))
		require.NoError(t, err)
		require.Equalf(t, want, got, "x%d", i)
	}
}

// Property 5: a bounded run of BUSY responses doesn't corrupt a public
// operation, and the pacing counters only ever grow.
func TestBusyResponsesDontCorruptResultsAndPacingIsMonotonic(t *testing.T) {
	dm, ctx := newTestContext(5, 32, 16)
	require.NoError(t, ctx.Examine())
	require.NoError(t, ctx.Halt())

	before := ctx.Engine.BusyDelay
	dm.BusyFor = 3
	require.NoError(t, ctx.WriteRegister(gdbreg.GPR(5), 0x1234))
	ctx.invalidateGPRCache() // force a real readback through the halt routine
	v, err := ctx.ReadRegister(gdbreg.GPR(5))
	require.NoError(t, err)
	require.Equal(t, uint64(0x1234), v)
	require.GreaterOrEqual(t, ctx.Engine.BusyDelay, before)

	afterFirst := ctx.Engine.BusyDelay
	dm.BusyFor = 2
	require.NoError(t, ctx.WriteRegister(gdbreg.GPR(6), 0x5678))
	require.GreaterOrEqual(t, ctx.Engine.BusyDelay, afterFirst)
}
