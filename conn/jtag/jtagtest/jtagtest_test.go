// Copyright 2018 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package jtagtest

import (
	"testing"

	"github.com/rvdbg/rvtarget/dbus"
	"github.com/rvdbg/rvtarget/dram"
)

func TestDTMInfoAndDMInfo(t *testing.T) {
	dm := New(5, 32, 16)
	dtm, err := dbus.ReadDTMInfo(dm)
	if err != nil {
		t.Fatal(err)
	}
	if dtm.Version != 0 || dtm.AddrBits != 5 {
		t.Fatalf("unexpected DTMINFO: %+v", dtm)
	}

	e := dbus.New(dm, 5, 32)
	v, _, _, err := e.Read(dmInfoAddr)
	if err != nil {
		t.Fatal(err)
	}
	if v&0x3 != 1 {
		t.Fatalf("DMINFO version mismatch: %#x", v)
	}
}

func TestRunDebugProgramLeavesHalted(t *testing.T) {
	dm := New(5, 32, 16)
	e := dbus.New(dm, 5, 32)
	// Stage "jal x0, DEBUG_ROM_RESUME" at word 0, run it, and confirm the
	// hart is still reported halted afterward (DCSR.HALT stays set).
	dm.dcsr = 1 << 3
	offset := int32(debugROMResume) - int32(debugRAMStart)
	instr := dram.Jal(dram.RegZero, offset)
	buf := e.NewScanBuffer(2)
	buf.AddWrite32(0, instr, true, true)
	if _, err := buf.Execute(); err != nil {
		t.Fatal(err)
	}
	if !dm.halted {
		t.Fatal("expected hart to remain halted")
	}
}
