// Copyright 2016 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ftdi

import (
	"testing"

	"github.com/rvdbg/rvtarget/conn/jtag"
)

// fakeLink is an io.ReadWriter stand-in for the serial adapter: every Read
// returns a fixed byte, so a TAP driven against it should capture that
// byte's TDO bit on every scanned bit.
type fakeLink struct {
	readByte byte
	writes   int
	reads    int
}

func (f *fakeLink) Write(b []byte) (int, error) {
	f.writes += len(b)
	return len(b), nil
}

func (f *fakeLink) Read(b []byte) (int, error) {
	f.reads += len(b)
	for i := range b {
		b[i] = f.readByte
	}
	return len(b), nil
}

func TestExecuteBeforeResetFails(t *testing.T) {
	link := &fakeLink{}
	tap := New(link)
	tap.QueueIdle(1)
	if err := tap.Execute(); err != jtag.ErrNotReady {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
}

func TestResetThenScanSucceeds(t *testing.T) {
	link := &fakeLink{readByte: bitTDO}
	tap := New(link)
	if err := tap.Reset(); err != nil {
		t.Fatal(err)
	}

	tap.QueueIR(0x1, 5)
	capture := make([]byte, 1)
	tap.QueueDR([]byte{0xff}, 8, capture)
	tap.QueueIdle(4)
	if err := tap.Execute(); err != nil {
		t.Fatal(err)
	}
	if capture[0] != 0xff {
		t.Fatalf("capture = %#x, want 0xff (link always samples TDO high)", capture[0])
	}
	if link.writes == 0 || link.reads == 0 {
		t.Fatal("expected TAP to drive the link")
	}
}
