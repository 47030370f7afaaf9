// Copyright 2016 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package remotebitbang

import (
	"bufio"
	"fmt"
	"net"
	"time"

	"github.com/rvdbg/rvtarget/conn/jtag"
)

// op mirrors host/bitbang's queued-operation model.
type op struct {
	isIR    bool
	isIdle  bool
	bits    int
	out     []byte
	capture []byte
}

// TAP drives a JTAG TAP controller over a remote_bitbang TCP connection.
// It implements conn/jtag.TAP.
type TAP struct {
	conn  net.Conn
	r     *bufio.Reader
	ready bool
	trst  bool
	srst  bool
	queue []op
}

// Dial connects to a remote_bitbang server listening at addr (host:port).
func Dial(addr string, timeout time.Duration) (*TAP, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("remotebitbang: dial %s: %w", addr, err)
	}
	return New(conn), nil
}

// New returns a TAP driving an already-connected remote_bitbang server.
func New(conn net.Conn) *TAP {
	return &TAP{conn: conn, r: bufio.NewReader(conn), trst: true, srst: true}
}

// Close sends the protocol's quit byte and closes the connection.
func (t *TAP) Close() error {
	_, _ = t.conn.Write([]byte{'Q'})
	return t.conn.Close()
}

// resetByte returns the 'r'/'s'/'t'/'u' byte for the current TRST/SRST
// levels: a 1 bit means asserted, with SRST as the high bit and TRST as the
// low bit, so 'r' leaves both deasserted.
func (t *TAP) resetByte() byte {
	srstBit := byte(0)
	if !t.srst {
		srstBit = 1
	}
	trstBit := byte(0)
	if !t.trst {
		trstBit = 1
	}
	return 'r' + 2*srstBit + trstBit
}

// AssertTRST drives TRST; AssertSRST drives the target's own reset line.
// Both are independent of the TAP state machine TMS otherwise walks.
func (t *TAP) AssertTRST(asserted bool) error {
	t.trst = !asserted
	_, err := t.conn.Write([]byte{t.resetByte()})
	return err
}

func (t *TAP) AssertSRST(asserted bool) error {
	t.srst = !asserted
	_, err := t.conn.Write([]byte{t.resetByte()})
	return err
}

// send writes one TCK half-cycle ('0'-'7' = tck<<2|tms<<1|tdi).
func (t *TAP) send(tck, tms, tdi bool) error {
	v := byte(0)
	if tck {
		v |= 4
	}
	if tms {
		v |= 2
	}
	if tdi {
		v |= 1
	}
	_, err := t.conn.Write([]byte{'0' + v})
	return err
}

// clock does a full TCK cycle (low then high then low, sampling is done
// separately with sample since the protocol's 'R' is a distinct request).
func (t *TAP) clock(tms, tdi bool) error {
	if err := t.send(false, tms, tdi); err != nil {
		return err
	}
	if err := t.send(true, tms, tdi); err != nil {
		return err
	}
	return t.send(false, tms, tdi)
}

// sample is like clock but also asks for and reads back TDO, sampled
// while TCK is high.
func (t *TAP) sample(tms, tdi bool) (bool, error) {
	if err := t.send(false, tms, tdi); err != nil {
		return false, err
	}
	if err := t.send(true, tms, tdi); err != nil {
		return false, err
	}
	if _, err := t.conn.Write([]byte{'R'}); err != nil {
		return false, err
	}
	b, err := t.r.ReadByte()
	if err != nil {
		return false, err
	}
	if err := t.send(false, tms, tdi); err != nil {
		return false, err
	}
	return b == '1', nil
}

// Reset pulses TMS high for five TCK cycles (forcing Test-Logic-Reset
// regardless of the prior state) then clocks once more with TMS low into
// Run-Test/Idle.
func (t *TAP) Reset() error {
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
				if err := t.clock(false, false); err != nil {
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
	if err := t.clock(true, false); err != nil { // -> Select-DR-Scan
		return err
	}
	if o.isIR {
		if err := t.clock(true, false); err != nil { // -> Select-IR-Scan
			return err
		}
	}
	if err := t.clock(false, false); err != nil { // -> Capture-*
		return err
	}
	if err := t.clock(false, false); err != nil { // -> Shift-*
		return err
	}
	for i := 0; i < o.bits; i++ {
		bit := o.out[i/8]&(1<<uint(i%8)) != 0
		last := i == o.bits-1
		v, err := t.sample(last, bit)
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
	if err := t.clock(true, false); err != nil { // Exit1-* -> Update-*
		return err
	}
	return t.clock(false, false) // -> Run-Test/Idle
}
