// Copyright 2016 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bitbang

import (
	"time"

	"github.com/rvdbg/rvtarget/conn/gpio"
	"github.com/rvdbg/rvtarget/conn/jtag"
	"github.com/rvdbg/rvtarget/conn/physic"
)

// op is one queued TAP operation, recorded by QueueIR/QueueDR/QueueIdle and
// replayed bit-by-bit against the four GPIO lines when Execute runs.
type op struct {
	isIR    bool
	isIdle  bool
	bits    int
	out     []byte
	capture []byte
}

// TAP drives a JTAG TAP controller over four GPIO lines: TCK, TMS, TDI
// (outputs) and TDO (input). It implements conn/jtag.TAP.
//
// Every call clocks TCK itself: there is nothing asynchronous here, unlike
// a transport that pipelines scans over a wire (dbus/dram's scan buffers
// assume exactly that, and work unmodified on top of this TAP).
type TAP struct {
	tck, tms, tdi gpio.PinOut
	tdo           gpio.PinIn
	ready         bool
	queue         []op
	// halfPeriod is the minimum time between two edges driven on TCK. Zero
	// means drive as fast as the GPIO sysfs file writes allow.
	halfPeriod time.Duration
}

// New returns a TAP driving tck, tms and tdi as outputs and reading tdo as
// an input. The caller must have already set each pin's direction.
func New(tck, tms, tdi gpio.PinOut, tdo gpio.PinIn) *TAP {
	return &TAP{tck: tck, tms: tms, tdi: tdi, tdo: tdo}
}

// SetFreq paces every subsequent TCK edge so the clock never runs faster
// than freq. A non-positive freq removes the cap.
func (t *TAP) SetFreq(freq physic.Frequency) {
	if freq <= 0 {
		t.halfPeriod = 0
		return
	}
	t.halfPeriod = freq.Duration() / 2
}

func (t *TAP) pace() {
	if t.halfPeriod > 0 {
		time.Sleep(t.halfPeriod)
	}
}

// NewSysfsTAP exports and opens the four sysfs GPIO lines by number and
// returns a TAP driving them.
func NewSysfsTAP(tck, tms, tdi, tdo int) (*TAP, error) {
	tckPin, err := NewPin(tck, Out)
	if err != nil {
		return nil, err
	}
	tmsPin, err := NewPin(tms, Out)
	if err != nil {
		return nil, err
	}
	tdiPin, err := NewPin(tdi, Out)
	if err != nil {
		return nil, err
	}
	tdoPin, err := NewPin(tdo, In)
	if err != nil {
		return nil, err
	}
	return New(tckPin.asGPIOOut(), tmsPin.asGPIOOut(), tdiPin.asGPIOOut(), tdoPin.asGPIOIn()), nil
}

// Reset pulses TMS high for five TCK cycles, which forces the TAP state
// machine into Test-Logic-Reset regardless of its prior state, then clocks
// one more cycle with TMS low into Run-Test/Idle.
func (t *TAP) Reset() error {
	if err := t.tdi.Out(gpio.Low); err != nil {
		return err
	}
	for i := 0; i < 5; i++ {
		if err := t.clock(true, false); err != nil {
			return err
		}
	}
	if err := t.clock(false, false); err != nil {
		return err
	}
	t.ready = true
	return nil
}

// clock drives TMS and TDI and pulses TCK. It does not read TDO; sample
// does that.
func (t *TAP) clock(tms, tdi bool) error {
	if err := t.tms.Out(gpio.Level(tms)); err != nil {
		return err
	}
	if err := t.tdi.Out(gpio.Level(tdi)); err != nil {
		return err
	}
	if err := t.tck.Out(gpio.High); err != nil {
		return err
	}
	t.pace()
	if err := t.tck.Out(gpio.Low); err != nil {
		return err
	}
	t.pace()
	return nil
}

// sample is like clock but also reads TDO before the falling edge, matching
// the usual JTAG convention that TDO is valid while TCK is high.
func (t *TAP) sample(tms, tdi bool) (bool, error) {
	if err := t.tms.Out(gpio.Level(tms)); err != nil {
		return false, err
	}
	if err := t.tdi.Out(gpio.Level(tdi)); err != nil {
		return false, err
	}
	if err := t.tck.Out(gpio.High); err != nil {
		return false, err
	}
	t.pace()
	v := bool(t.tdo.Read())
	if err := t.tck.Out(gpio.Low); err != nil {
		return false, err
	}
	t.pace()
	return v, nil
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
		switch {
		case o.isIdle:
			for i := 0; i < o.bits; i++ {
				if err := t.clock(false, false); err != nil {
					return err
				}
			}
		default:
			if err := t.shift(o); err != nil {
				return err
			}
		}
	}
	return nil
}

// shift scans o.bits bits through the Instruction or Data register,
// starting and ending in Run-Test/Idle.
func (t *TAP) shift(o op) error {
	// Run-Test/Idle -> Select-DR-Scan.
	if err := t.clock(true, false); err != nil {
		return err
	}
	if o.isIR {
		// Select-DR-Scan -> Select-IR-Scan.
		if err := t.clock(true, false); err != nil {
			return err
		}
	}
	// -> Capture-{DR,IR}.
	if err := t.clock(false, false); err != nil {
		return err
	}
	// -> Shift-{DR,IR}.
	if err := t.clock(false, false); err != nil {
		return err
	}
	for i := 0; i < o.bits; i++ {
		bit := o.out[i/8]&(1<<uint(i%8)) != 0
		last := i == o.bits-1
		v, err := t.sample(last, bit)
		if err != nil {
			return err
		}
		if o.capture != nil && v {
			o.capture[i/8] |= 1 << uint(i%8)
		} else if o.capture != nil {
			o.capture[i/8] &^= 1 << uint(i%8)
		}
	}
	// Exit1-{DR,IR} -> Update-{DR,IR}.
	if err := t.clock(true, false); err != nil {
		return err
	}
	// -> Run-Test/Idle.
	return t.clock(false, false)
}
