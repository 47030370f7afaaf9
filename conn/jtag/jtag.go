// Copyright 2018 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package jtag defines the API to communicate with devices over the JTAG
// protocol.
//
// It models the "JTAG primitive layer" the rest of this module is built on:
// enqueue IR/DR scans and a run-test/idle count, then execute the queue.
// Everything above this package (dbus, dram, hart, target/riscv) treats a
// TAP as an opaque scan scheduler and never drives TCK/TDI/TDO/TMS itself.
//
// See https://en.wikipedia.org/wiki/JTAG for background information.
package jtag

import "errors"

// ErrNotReady is returned by TAP implementations when Execute is called
// without a TAP reset having run first.
var ErrNotReady = errors.New("jtag: TAP not reset")

// TAP is the JTAG primitive layer: enqueue IR/DR scans and a run-test/idle
// count, then execute the queue.
//
// Every public entry point of dbus.Engine calls QueueIR to select a
// register before scanning data through it; a TAP implementation is free to
// elide a redundant IR scan when the register is already selected, as long
// as it preserves ordering.
//
// A TAP is a process-global shared resource, serialized by the caller: the
// interface assumes exclusive access for the duration of a call to
// Execute and everything queued since the prior Execute.
type TAP interface {
	// QueueIR enqueues a shift of bits through the Instruction Register,
	// lsb-first.
	QueueIR(ir uint32, bits int)
	// QueueDR enqueues a shift of bits through the Data Register, lsb-first.
	//
	// out supplies the bits to shift in. If capture is non-nil, the bits
	// shifted out by the scan are copied into it once Execute returns
	// without error; capture must be at least (bits+7)/8 bytes long.
	QueueDR(out []byte, bits int, capture []byte)
	// QueueIdle enqueues cycles of Run-Test/Idle.
	QueueIdle(cycles int)
	// Execute flushes every operation queued since the last Execute call
	// through the TAP in a single transaction, filling in every capture
	// buffer passed to QueueDR.
	Execute() error
}
