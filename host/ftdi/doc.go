// Copyright 2016 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ftdi implements a conn/jtag.TAP over a USB-serial MPSSE-capable
// adapter (e.g. an FTDI FT232H/FT2232H breakout) opened as a Linux tty
// device and switched into raw, unbuffered mode via termios ioctls.
//
// The wire protocol is a simple synchronous bit-bang link: each TCK half
// cycle is one byte out (bit0 TCK, bit1 TMS, bit2 TDI, bit3 TRST) and one
// byte back (bit0 TDO, sampled by the adapter while TCK is high). This
// isn't the vendor's MPSSE opcode language, which needs the proprietary
// D2XX driver this pack has no library for; it's the same level a cheap
// bit-bang cable (or a microcontroller emulating one) exposes over a plain
// tty, configured the way the rest of this module talks to serial and
// memory-mapped hardware: raw ioctls, no vendor SDK.
package ftdi
