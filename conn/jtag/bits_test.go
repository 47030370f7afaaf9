// Copyright 2018 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package jtag

import "testing"

func TestSetGetBits(t *testing.T) {
	buf := make([]byte, Bytes(40))
	SetBits(buf, 0, 2, 1)
	SetBits(buf, 2, 34, 0x123456789)
	SetBits(buf, 36, 4, 0xa)
	if v := GetBits(buf, 0, 2); v != 1 {
		t.Fatalf("op: got %#x", v)
	}
	if v := GetBits(buf, 2, 34); v != 0x123456789 {
		t.Fatalf("data: got %#x", v)
	}
	if v := GetBits(buf, 36, 4); v != 0xa {
		t.Fatalf("addr: got %#x", v)
	}
}

func TestSetBitsTruncates(t *testing.T) {
	buf := make([]byte, Bytes(4))
	SetBits(buf, 0, 4, 0xff0)
	if v := GetBits(buf, 0, 4); v != 0 {
		t.Fatalf("expected low 4 bits of 0xff0 to be 0, got %#x", v)
	}
}
