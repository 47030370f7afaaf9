// Copyright 2016 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package remotebitbang implements a conn/jtag.TAP over OpenOCD's
// remote_bitbang wire protocol: a TCP socket carrying one ASCII byte per
// TCK half-cycle.
//
// Write bytes '0'-'7' set {TCK,TMS,TDI} as a 3-bit value (TCK is bit 2,
// TMS bit 1, TDI bit 0); 'r'/'s'/'t'/'u' set {SRST,TRST}; 'R' requests a
// TDO sample, answered with a single '0' or '1' byte; 'Q' asks the remote
// end to quit. This is the same protocol OpenOCD's "remote_bitbang"
// transport and its reference server (`jtag_vpi`/`remote_bitbang.c`)
// speak, so this package can drive any of those servers, or a simulator
// implementing the same protocol, directly over net.Conn.
package remotebitbang
