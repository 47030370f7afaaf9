// Copyright 2018 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hart

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Property 3: setting and clearing a hardware breakpoint N times leaves
// triggerOwned back in its initial (all-free) state.
func TestHardwareBreakpointSetClearLeavesTriggerOwnerUnchanged(t *testing.T) {
	_, ctx := newTestContext(5, 32, 16)
	require.NoError(t, ctx.Examine())
	require.NoError(t, ctx.Halt())

	initial := ctx.triggerOwned

	for i := 0; i < 5; i++ {
		require.NoError(t, ctx.AddBreakpoint(1, 0x100, 4, true))
		require.True(t, ctx.triggerOwned[0])
		require.NoError(t, ctx.RemoveBreakpoint(1, true))
		require.Equal(t, initial, ctx.triggerOwned)
	}
}

// S4: a hardware breakpoint allocates trigger 0 with EXECUTE set, and the
// hart reports halted once the trigger fires.
func TestHardwareBreakpointHalts(t *testing.T) {
	dm, ctx := newTestContext(5, 32, 16)
	require.NoError(t, ctx.Examine())
	require.NoError(t, ctx.Halt())

	require.NoError(t, ctx.AddBreakpoint(1, 0x100, 4, true))
	require.True(t, ctx.triggerOwned[0])
	require.True(t, ctx.triggers[0].execute)
	require.Equal(t, uint64(0x100), ctx.triggers[0].address)

	require.NoError(t, ctx.Resume(true, 0, false, false))
	require.Equal(t, StateRunning, ctx.State)

	// Simulate PC reaching 0x100: the hart traps into debug mode via the
	// trigger's shared hardware-trigger cause.
	dm.Break(uint32(CauseHWBP))
	require.NoError(t, ctx.Poll())
	require.Equal(t, StateHalted, ctx.State)
	require.Equal(t, ReasonWptAndBkpt, ctx.DebugReason)
}

// S5: a watchpoint hit sets NeedStrictStep; the following step removes
// every trigger, single-steps, then reinstalls them.
func TestWatchpointTriggersStrictStep(t *testing.T) {
	dm, ctx := newTestContext(5, 32, 16)
	require.NoError(t, ctx.Examine())
	require.NoError(t, ctx.Halt())

	require.NoError(t, ctx.AddWatchpoint(2, 0x2000, 4, false, true))
	require.True(t, ctx.triggerOwned[0])

	require.NoError(t, ctx.Resume(true, 0, false, false))
	dm.Break(uint32(CauseHWBP))
	require.NoError(t, ctx.Poll())
	require.True(t, ctx.NeedStrictStep)

	require.NoError(t, ctx.Step(true, 0, false))
	require.False(t, ctx.NeedStrictStep)

	// The watchpoint must have been reinstalled after the strict step.
	require.True(t, ctx.triggerOwned[0])
	require.Equal(t, uint64(0x2000), ctx.triggers[0].address)
	require.True(t, ctx.triggers[0].write)
}

// S6: a software breakpoint patches two bytes with the compressed ebreak
// encoding, and removing it restores the original bytes exactly.
func TestSoftwareBreakpointPatchesAndRestores(t *testing.T) {
	dm, ctx := newTestContext(5, 32, 16)
	dm.WriteTargetMemory(0x80000200, []byte{0x11, 0x22})
	require.NoError(t, ctx.Examine())
	require.NoError(t, ctx.Halt())

	require.NoError(t, ctx.AddBreakpoint(3, 0x80000200, 2, false))
	patched := dm.ReadTargetMemory(0x80000200, 2)
	require.NotEqual(t, []byte{0x11, 0x22}, patched)

	require.NoError(t, ctx.RemoveBreakpoint(3, false))
	restored := dm.ReadTargetMemory(0x80000200, 2)
	require.Equal(t, []byte{0x11, 0x22}, restored)
}
