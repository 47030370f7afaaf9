// Copyright 2018 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hart

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rvdbg/rvtarget/gdbreg"
)

// S3: write then read memory returns identical bytes, and T0 is restored to
// its pre-op value (the bug the memory walk used to clobber, fixed by
// save/restoreT0).
func TestWriteReadMemoryRoundTripPreservesT0(t *testing.T) {
	_, ctx := newTestContext(5, 32, 16)
	require.NoError(t, ctx.Examine())
	require.NoError(t, ctx.Halt())

	require.NoError(t, ctx.WriteRegister(gdbreg.GPR(5), 0x5ca1ab1e))
	t0Before, err := ctx.ReadRegister(gdbreg.GPR(5))
	require.NoError(t, err)

	data := []byte{
		0, 1, 2, 3,
		4, 5, 6, 7,
		8, 9, 10, 11,
		12, 13, 14, 15,
	}
	require.NoError(t, ctx.WriteMemory(0x80000000, 4, data))

	t0AfterWrite, err := ctx.ReadRegister(gdbreg.GPR(5))
	require.NoError(t, err)
	require.Equal(t, t0Before, t0AfterWrite, "WriteMemory must restore T0")

	got := make([]byte, len(data))
	require.NoError(t, ctx.ReadMemory(0x80000000, 4, 4, got))
	require.Equal(t, data, got)

	t0AfterRead, err := ctx.ReadRegister(gdbreg.GPR(5))
	require.NoError(t, err)
	require.Equal(t, t0Before, t0AfterRead, "ReadMemory must restore T0")
}

func TestReadWriteMemoryByteAndHalfwordSizes(t *testing.T) {
	_, ctx := newTestContext(5, 32, 16)
	require.NoError(t, ctx.Examine())
	require.NoError(t, ctx.Halt())

	require.NoError(t, ctx.WriteMemory(0x80001000, 1, []byte{0xab, 0xcd, 0xef}))
	got1 := make([]byte, 3)
	require.NoError(t, ctx.ReadMemory(0x80001000, 1, 3, got1))
	require.Equal(t, []byte{0xab, 0xcd, 0xef}, got1)

	require.NoError(t, ctx.WriteMemory(0x80002000, 2, []byte{0x34, 0x12, 0x78, 0x56}))
	got2 := make([]byte, 4)
	require.NoError(t, ctx.ReadMemory(0x80002000, 2, 2, got2))
	require.Equal(t, []byte{0x34, 0x12, 0x78, 0x56}, got2)
}

func TestReadMemoryRejectsUnsupportedSize(t *testing.T) {
	_, ctx := newTestContext(5, 32, 16)
	require.NoError(t, ctx.Examine())
	require.NoError(t, ctx.Halt())

	buf := make([]byte, 8)
	require.Error(t, ctx.ReadMemory(0x80000000, 8, 1, buf))
}
