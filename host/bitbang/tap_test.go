// Copyright 2016 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bitbang

import (
	"testing"
	"time"

	"github.com/rvdbg/rvtarget/conn/gpio"
	"github.com/rvdbg/rvtarget/conn/jtag"
)

// fakePin is a gpio.PinIO fake: Out records whatever was last written, Read
// returns a fixed, settable level.
type fakePin struct {
	level gpio.Level
	fixed gpio.Level
}

func (f *fakePin) String() string      { return "fake" }
func (f *fakePin) Halt() error         { return nil }
func (f *fakePin) Number() int         { return -1 }
func (f *fakePin) Function() string    { return "io" }
func (f *fakePin) PWM(duty int) error  { return nil }
func (f *fakePin) Pull() gpio.Pull     { return gpio.Float }
func (f *fakePin) In(gpio.Pull, gpio.Edge) error        { return nil }
func (f *fakePin) WaitForEdge(time.Duration) bool       { return false }
func (f *fakePin) Read() gpio.Level                     { return f.fixed }
func (f *fakePin) Out(l gpio.Level) error {
	f.level = l
	return nil
}

func TestExecuteBeforeResetFails(t *testing.T) {
	tck, tms, tdi, tdo := &fakePin{}, &fakePin{}, &fakePin{}, &fakePin{}
	tap := New(tck, tms, tdi, tdo)
	tap.QueueIdle(1)
	if err := tap.Execute(); err != jtag.ErrNotReady {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
}

func TestResetThenScanSucceeds(t *testing.T) {
	tck, tms, tdi, tdo := &fakePin{}, &fakePin{}, &fakePin{}, &fakePin{}
	tdo.fixed = gpio.High
	tap := New(tck, tms, tdi, tdo)
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
	// tdo is pinned high, so every captured bit must be 1.
	if capture[0] != 0xff {
		t.Fatalf("capture = %#x, want 0xff", capture[0])
	}
	// Execute must reset the queue: a second call with nothing queued is a
	// no-op, not a replay of the prior scan.
	if err := tap.Execute(); err != nil {
		t.Fatal(err)
	}
}
