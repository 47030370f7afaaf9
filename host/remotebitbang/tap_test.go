// Copyright 2016 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package remotebitbang

import (
	"net"
	"testing"

	"github.com/rvdbg/rvtarget/conn/jtag"
)

// fakeServer answers every 'R' with '1' and otherwise discards bytes,
// standing in for a remote_bitbang server during tests.
func fakeServer(t *testing.T, conn net.Conn) {
	t.Helper()
	buf := make([]byte, 1)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		if n == 1 && buf[0] == 'R' {
			if _, err := conn.Write([]byte{'1'}); err != nil {
				return
			}
		}
		if n == 1 && buf[0] == 'Q' {
			return
		}
	}
}

func TestExecuteBeforeResetFails(t *testing.T) {
	client, server := net.Pipe()
	go fakeServer(t, server)
	defer client.Close()

	tap := New(client)
	tap.QueueIdle(1)
	if err := tap.Execute(); err != jtag.ErrNotReady {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
}

func TestResetThenScanSucceeds(t *testing.T) {
	client, server := net.Pipe()
	go fakeServer(t, server)
	defer client.Close()

	tap := New(client)
	if err := tap.Reset(); err != nil {
		t.Fatal(err)
	}

	tap.QueueIR(0x1, 5)
	capture := make([]byte, 1)
	tap.QueueDR([]byte{0xff}, 8, capture)
	tap.QueueIdle(4)
	if err := tap.Execute(); err != nil {
		t.Fatal(err)
	}
	if capture[0] != 0xff {
		t.Fatalf("capture = %#x, want 0xff (server always answers '1')", capture[0])
	}
}
