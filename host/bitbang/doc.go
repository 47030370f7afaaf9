// Copyright 2016 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package bitbang implements a conn/jtag.TAP over four GPIO pins (TCK, TMS,
// TDI, TDO) driven directly from user space through Linux GPIO sysfs.
//
// JTAG bit-banging is synchronous: every bit shifted requires the caller to
// drive TCK itself, so there is no interrupt or edge-wait machinery here,
// unlike a general-purpose GPIO package that has to support callers waiting
// on an external signal.
package bitbang
