// Copyright 2018 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gdbreg

import "testing"

func TestNumberRoundTrip(t *testing.T) {
	cases := []int{0, 5, 31, 32, 33, 64, 65, 4160, 4161}
	for _, n := range cases {
		r, ok := FromNumber(n)
		if !ok {
			t.Fatalf("FromNumber(%d): expected ok", n)
		}
		if got := r.Number(); got != n {
			t.Fatalf("FromNumber(%d).Number() = %d", n, got)
		}
	}
}

func TestFromNumberOutOfRange(t *testing.T) {
	for _, n := range []int{-1, 4162, 100000} {
		if _, ok := FromNumber(n); ok {
			t.Fatalf("FromNumber(%d): expected not ok", n)
		}
	}
}

func TestListGeneralVsAll(t *testing.T) {
	general := List(ClassGeneral)
	if len(general) != 33 {
		t.Fatalf("got %d general regs, want 33", len(general))
	}
	all := List(ClassAll)
	if len(all) != 4162 {
		t.Fatalf("got %d regs, want 4162", len(all))
	}
}
