// Copyright 2018 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dbus

import (
	"testing"

	"github.com/rvdbg/rvtarget/conn/jtag"
)

// fakeTAP is a minimal one-scan-latency dbus model: QueueDR's capture is
// filled with whatever the PREVIOUS QueueDR shifted in, mirroring the real
// DTM's pipeline so the Engine retry loops can be exercised without a real
// device.
type fakeTAP struct {
	addrBits int
	pending  []byte // what the previous scan shifted in
	busyFor  int    // remaining scans to answer BUSY
	reg      map[uint32]uint32
}

func newFakeTAP(addrBits int) *fakeTAP {
	return &fakeTAP{addrBits: addrBits, reg: map[uint32]uint32{}}
}

func (f *fakeTAP) QueueIR(ir uint32, bits int) {}

func (f *fakeTAP) QueueDR(out []byte, bits int, capture []byte) {
	if f.pending != nil {
		op := Op(jtag.GetBits(f.pending, 0, 2))
		data := jtag.GetBits(f.pending, 2, 34)
		addr := uint32(jtag.GetBits(f.pending, 36, f.addrBits))
		status := StatusSuccess
		if f.busyFor > 0 {
			f.busyFor--
			status = StatusBusy
		} else {
			switch op {
			case OpWrite:
				f.reg[addr] = uint32(data)
			case OpRead:
			}
		}
		jtag.SetBits(capture, 0, 2, uint64(status))
		jtag.SetBits(capture, 2, 34, uint64(f.reg[addr]))
		jtag.SetBits(capture, 36, f.addrBits, uint64(addr))
	}
	f.pending = append([]byte(nil), out...)
}

func (f *fakeTAP) QueueIdle(cycles int) {}

func (f *fakeTAP) Execute() error { return nil }

func TestReadWriteRoundTrip(t *testing.T) {
	tap := newFakeTAP(5)
	e := New(tap, 5, 32)
	if err := e.Write(0x04, 0xdeadbeef, false, false); err != nil {
		t.Fatal(err)
	}
	v, _, _, err := e.Read(0x04)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0xdeadbeef {
		t.Fatalf("got %#x, want 0xdeadbeef", v)
	}
}

func TestReadRetriesOnBusy(t *testing.T) {
	tap := newFakeTAP(5)
	tap.reg[0x04] = 0x1234
	tap.busyFor = 3
	e := New(tap, 5, 32)
	v, _, _, err := e.Read(0x04)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0x1234 {
		t.Fatalf("got %#x, want 0x1234", v)
	}
	if e.BusyDelay == 0 {
		t.Fatal("expected BusyDelay to have grown")
	}
}

func TestScanBufferBatch(t *testing.T) {
	tap := newFakeTAP(5)
	e := New(tap, 5, 32)
	buf := e.NewScanBuffer(2)
	buf.AddWrite32(0x01, 0xaaaa, false, false)
	buf.AddWrite32(0x02, 0xbbbb, false, false)
	results, err := buf.Execute()
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for _, r := range results {
		if r.Status != StatusSuccess {
			t.Fatalf("got status %v, want success", r.Status)
		}
	}
	if tap.reg[0x01] != 0xaaaa || tap.reg[0x02] != 0xbbbb {
		t.Fatalf("unexpected register state: %#v", tap.reg)
	}
}
