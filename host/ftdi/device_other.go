// Copyright 2016 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// +build !linux

package ftdi

import "errors"

// Open is only implemented on linux: configuring a tty's line discipline
// goes through Linux-specific termios ioctls.
func Open(path string, baud uint32) (*Device, error) {
	return nil, errors.New("ftdi: not supported on this platform")
}
