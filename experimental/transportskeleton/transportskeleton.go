// Copyright 2016 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package transportskeleton

import (
	"errors"

	"github.com/rvdbg/rvtarget/conn/jtag"
)

// FIXME: Expose public symbols as relevant. Do not export more than needed!

// TAP is a handle to the adapter. FIXME.
type TAP struct {
	ready bool
}

// New opens a handle to the adapter. FIXME.
func New() (*TAP, error) {
	t := &TAP{}
	// FIXME: Open whatever file/socket/descriptor the adapter is reached
	// through, and stash it on t.
	return t, nil
}

// Reset puts the TAP state machine into Test-Logic-Reset then
// Run-Test/Idle. FIXME: wire this to whatever the adapter needs to force
// that transition (normally five TMS=1 clocks then one TMS=0 clock).
func (t *TAP) Reset() error {
	// FIXME: Add implementation.
	t.ready = true
	return nil
}

// QueueIR implements jtag.TAP. FIXME.
func (t *TAP) QueueIR(ir uint32, bits int) {
	// FIXME: Add implementation.
}

// QueueDR implements jtag.TAP. FIXME.
func (t *TAP) QueueDR(out []byte, bits int, capture []byte) {
	// FIXME: Add implementation.
}

// QueueIdle implements jtag.TAP. FIXME.
func (t *TAP) QueueIdle(cycles int) {
	// FIXME: Add implementation.
}

// Execute implements jtag.TAP. FIXME.
func (t *TAP) Execute() error {
	if !t.ready {
		return jtag.ErrNotReady
	}
	// FIXME: Add implementation.
	return errors.New("not implemented")
}

// FIXME: This verifies TAP implements conn/jtag.TAP.
var _ jtag.TAP = &TAP{}

// FIXME: Once TAP works, wire it in two places, the way host/bitbang,
// host/ftdi and host/remotebitbang already are:
//  1. add a case to cmd/rvprobe's openTAP switch on -transport;
//  2. after Reset succeeds, register it under its transport name with
//     conn/jtag/jtagreg.Register, so it can be looked up by name instead of
//     every transport package exposing its own ad-hoc lookup.
