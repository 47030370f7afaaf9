// Copyright 2018 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package jtagreg

import (
	"testing"

	"github.com/rvdbg/rvtarget/conn/jtag"
)

type fakeTAP struct{}

func (fakeTAP) QueueIR(ir uint32, bits int)                 {}
func (fakeTAP) QueueDR(out []byte, bits int, capture []byte) {}
func (fakeTAP) QueueIdle(cycles int)                         {}
func (fakeTAP) Execute() error                                { return nil }

func TestRegister(t *testing.T) {
	var tap jtag.TAP = fakeTAP{}
	if err := Register("test0", tap); err != nil {
		t.Fatal(err)
	}
	defer Unregister("test0")
	if err := Register("test0", tap); err == nil {
		t.Fatal("expected error registering the same name twice")
	}
	if ByName("test0") == nil {
		t.Fatal("expected to find test0")
	}
	if ByName("unknown") != nil {
		t.Fatal("expected nil for unknown name")
	}
	found := false
	for _, name := range All() {
		if name == "test0" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected test0 in All()")
	}
}

func TestRegisterErrors(t *testing.T) {
	if err := Register("", fakeTAP{}); err == nil {
		t.Fatal("expected error for empty name")
	}
	if err := Register("x", nil); err == nil {
		t.Fatal("expected error for nil TAP")
	}
	if err := Unregister("never-registered"); err == nil {
		t.Fatal("expected error unregistering unknown name")
	}
}
