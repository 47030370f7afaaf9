// Copyright 2018 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dram

import (
	"testing"

	"github.com/rvdbg/rvtarget/conn/jtag"
	"github.com/rvdbg/rvtarget/dbus"
)

// fakeTAP mirrors dbus's own test fake: one-scan pipeline latency over a
// flat register file, so Cache.Write's batching logic can be exercised.
type fakeTAP struct {
	addrBits int
	pending  []byte
	reg      map[uint32]uint32
}

func newFakeTAP(addrBits int) *fakeTAP {
	return &fakeTAP{addrBits: addrBits, reg: map[uint32]uint32{}}
}

func (f *fakeTAP) QueueIR(ir uint32, bits int) {}

func (f *fakeTAP) QueueDR(out []byte, bits int, capture []byte) {
	if f.pending != nil {
		op := dbus.Op(jtag.GetBits(f.pending, 0, 2))
		data := jtag.GetBits(f.pending, 2, 34)
		addr := uint32(jtag.GetBits(f.pending, 36, f.addrBits))
		if op == dbus.OpWrite {
			f.reg[addr] = uint32(data)
		}
		jtag.SetBits(capture, 0, 2, uint64(dbus.StatusSuccess))
		jtag.SetBits(capture, 2, 34, uint64(f.reg[addr]))
		jtag.SetBits(capture, 36, f.addrBits, uint64(addr))
	}
	f.pending = append([]byte(nil), out...)
}

func (f *fakeTAP) QueueIdle(cycles int) {}

func (f *fakeTAP) Execute() error { return nil }

func TestSetJumpOffsetDependsOnPosition(t *testing.T) {
	c := New(dbus.New(newFakeTAP(5), 5, 32), 32, 17)
	c.SetJump(1)
	w1, _ := c.Get32(1)
	c.SetJump(2)
	w2, _ := c.Get32(2)
	if w1 == w2 {
		t.Fatal("expected jump encodings at different positions to differ")
	}
}

func TestCleanPreservesPreamble(t *testing.T) {
	c := New(dbus.New(newFakeTAP(5), 5, 32), 32, 17)
	c.Set32(0, 0x1111)
	c.Set32(5, 0x2222)
	c.Clean()
	if !c.entries[0].valid {
		t.Fatal("expected preamble entry to survive Clean")
	}
	if c.entries[5].valid {
		t.Fatal("expected non-preamble entry to be invalidated by Clean")
	}
}

func TestWriteWithNoDirtyEntries(t *testing.T) {
	tap := newFakeTAP(5)
	e := dbus.New(tap, 5, 32)
	c := New(e, 32, 17)
	_, _, err := c.Write(Translate(c.Slot0()), false)
	if err != nil {
		t.Fatal(err)
	}
}

func TestWriteFlushesDirtyEntries(t *testing.T) {
	tap := newFakeTAP(5)
	e := dbus.New(tap, 5, 32)
	c := New(e, 32, 17)
	c.SetLoad(0, RegS0, c.Slot0())
	c.SetJump(1)
	if _, _, err := c.Write(Translate(c.Slot0()), true); err != nil {
		t.Fatal(err)
	}
	for i := 0; i <= 1; i++ {
		if c.entries[i].dirty {
			t.Fatalf("entry %d still dirty after Write", i)
		}
	}
}
