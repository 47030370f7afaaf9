// Copyright 2016 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ftdi

import (
	"io"

	"github.com/rvdbg/rvtarget/conn/jtag"
)

const (
	bitTCK  = 1 << 0
	bitTMS  = 1 << 1
	bitTDI  = 1 << 2
	bitTRST = 1 << 3
	bitTDO  = 1 << 0
)

// op mirrors host/bitbang's queued-operation model: record what was asked
// for, replay it as TCK half-cycles against the link when Execute runs.
type op struct {
	isIR    bool
	isIdle  bool
	bits    int
	out     []byte
	capture []byte
}

// TAP drives a JTAG TAP controller over an io.ReadWriter link (normally a
// *Device) using the synchronous bit-bang wire protocol described in
// doc.go. It implements conn/jtag.TAP.
type TAP struct {
	link  io.ReadWriter
	ready bool
	trst  bool
	queue []op
}

// New returns a TAP driving link. trst is the level driven on TRST whenever
// it isn't explicitly asserted, normally true (not in reset).
func New(link io.ReadWriter) *TAP {
	return &TAP{link: link, trst: true}
}

// AssertTRST drives the adapter's TRST line, independent of the TAP state
// machine TMS otherwise walks.
func (t *TAP) AssertTRST(asserted bool) error {
	t.trst = !asserted
	return t.send(false, false)
}

// send packs the current TRST level with tms/tdi into one byte, writes it
// with TCK low then high then low (one full clock), and returns the
// sampled TDO bit from the high phase.
func (t *TAP) send(tms, tdi bool) (bool, error) {
	b := byte(0)
	if t.trst {
		b |= bitTRST
	}
	if tms {
		b |= bitTMS
	}
	if tdi {
		b |= bitTDI
	}
	out := [2]byte{b, b | bitTCK}
	if _, err := t.link.Write(out[:]); err != nil {
		return false, err
	}
	var in [2]byte
	if _, err := t.link.Read(in[:]); err != nil {
		return false, err
	}
	if _, err := t.link.Write([]byte{b}); err != nil {
		return false, err
	}
	var ack [1]byte
	if _, err := t.link.Read(ack[:]); err != nil {
		return false, err
	}
	return in[1]&bitTDO != 0, nil
}

// Reset pulses TMS high for five TCK cycles (forcing Test-Logic-Reset
// regardless of the prior state) then clocks once more with TMS low into
// Run-Test/Idle.
func (t *TAP) Reset() error {
	for i := 0; i < 5; i++ {
		if _, err := t.send(true, false); err != nil {
			return err
		}
	}
	if _, err := t.send(false, false); err != nil {
		return err
	}
	t.ready = true
	return nil
}

// QueueIR implements jtag.TAP.
func (t *TAP) QueueIR(ir uint32, bits int) {
	buf := make([]byte, (bits+7)/8)
	for i := 0; i < bits; i++ {
		if ir&(1<<uint(i)) != 0 {
			buf[i/8] |= 1 << uint(i%8)
		}
	}
	t.queue = append(t.queue, op{isIR: true, bits: bits, out: buf})
}

// QueueDR implements jtag.TAP.
func (t *TAP) QueueDR(out []byte, bits int, capture []byte) {
	t.queue = append(t.queue, op{bits: bits, out: out, capture: capture})
}

// QueueIdle implements jtag.TAP.
func (t *TAP) QueueIdle(cycles int) {
	t.queue = append(t.queue, op{isIdle: true, bits: cycles})
}

// Execute implements jtag.TAP.
func (t *TAP) Execute() error {
	defer func() { t.queue = nil }()
	if !t.ready {
		return jtag.ErrNotReady
	}
	for _, o := range t.queue {
		if o.isIdle {
			for i := 0; i < o.bits; i++ {
				if _, err := t.send(false, false); err != nil {
					return err
				}
			}
			continue
		}
		if err := t.shift(o); err != nil {
			return err
		}
	}
	return nil
}

// shift scans o.bits bits through the Instruction or Data register,
// starting and ending in Run-Test/Idle.
func (t *TAP) shift(o op) error {
	if _, err := t.send(true, false); err != nil { // -> Select-DR-Scan
		return err
	}
	if o.isIR {
		if _, err := t.send(true, false); err != nil { // -> Select-IR-Scan
			return err
		}
	}
	if _, err := t.send(false, false); err != nil { // -> Capture-*
		return err
	}
	if _, err := t.send(false, false); err != nil { // -> Shift-*
		return err
	}
	for i := 0; i < o.bits; i++ {
		bit := o.out[i/8]&(1<<uint(i%8)) != 0
		last := i == o.bits-1
		v, err := t.send(last, bit)
		if err != nil {
			return err
		}
		if o.capture != nil {
			if v {
				o.capture[i/8] |= 1 << uint(i%8)
			} else {
				o.capture[i/8] &^= 1 << uint(i%8)
			}
		}
	}
	if _, err := t.send(true, false); err != nil { // Exit1-* -> Update-*
		return err
	}
	_, err := t.send(false, false) // -> Run-Test/Idle
	return err
}
