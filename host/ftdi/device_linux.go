// Copyright 2016 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ftdi

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// bauds maps a requested bit rate to the termios B* constant Linux expects
// in Termios.Ispeed/Ospeed. Arbitrary rates aren't supported: the adapters
// this package targets only offer a handful of fixed USB-serial rates.
var bauds = map[uint32]uint32{
	9600:    unix.B9600,
	19200:   unix.B19200,
	38400:   unix.B38400,
	57600:   unix.B57600,
	115200:  unix.B115200,
	230400:  unix.B230400,
	460800:  unix.B460800,
	921600:  unix.B921600,
	1000000: unix.B1000000,
}

// Open opens path (e.g. "/dev/ttyUSB0"), puts it into raw non-canonical
// mode and configures it for baud.
func Open(path string, baud uint32) (*Device, error) {
	b, ok := bauds[baud]
	if !ok {
		return nil, fmt.Errorf("ftdi: unsupported baud rate %d", baud)
	}
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		return nil, fmt.Errorf("ftdi: open %s: %w", path, err)
	}
	if err := configureRaw(fd, b); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("ftdi: configure %s: %w", path, err)
	}
	return &Device{f: os.NewFile(uintptr(fd), path)}, nil
}

// configureRaw puts fd into the termios-level equivalent of cfmakeraw():
// no echo, no line editing, no signal generation, 8 data bits, no parity,
// byte-at-a-time reads (VMIN=1, VTIME=0).
func configureRaw(fd int, baudConst uint32) error {
	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return err
	}
	t.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP |
		unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	t.Oflag &^= unix.OPOST
	t.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	t.Cflag &^= unix.CSIZE | unix.PARENB
	t.Cflag |= unix.CS8 | unix.CLOCAL | unix.CREAD
	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 0
	t.Ispeed = baudConst
	t.Ospeed = baudConst
	return unix.IoctlSetTermios(fd, unix.TCSETS, t)
}
