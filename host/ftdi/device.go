// Copyright 2016 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ftdi

import "os"

// Device is an open, raw-mode tty backing an adapter. It satisfies
// io.ReadWriter so TAP can be driven against a fake in tests.
type Device struct {
	f *os.File
}

// Write writes b to the link.
func (d *Device) Write(b []byte) (int, error) {
	return d.f.Write(b)
}

// Read fills b in full, retrying on short reads: the link is a byte
// stream, so a single TCK cycle's response may arrive split across reads.
func (d *Device) Read(b []byte) (int, error) {
	n := 0
	for n < len(b) {
		m, err := d.f.Read(b[n:])
		if err != nil {
			return n, err
		}
		n += m
	}
	return n, nil
}

// Close releases the underlying file descriptor.
func (d *Device) Close() error {
	return d.f.Close()
}
