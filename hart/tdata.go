// Copyright 2018 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hart

// TData1 Action/Match/Type values this driver ever uses.
const (
	triggerTypeAddrData = 2
	actionDebugMode     = 1
	matchEqual          = 0
)

// TData1 models the mcontrol-style trigger configuration register, as a
// typed record rather than raw bits (same convention as DCSR).
type TData1 struct {
	Type                 uint8
	DMode                bool
	Action               uint8
	Match                uint8
	M, H, S, U           bool
	Execute, Store, Load bool
}

// Encode packs t into a 32-bit TDATA1 value.
func (t TData1) Encode() uint32 {
	v := uint32(t.Type) << 28
	if t.DMode {
		v |= 1 << 27
	}
	v |= uint32(t.Action) << 12
	v |= uint32(t.Match) << 7
	if t.M {
		v |= 1 << 6
	}
	if t.H {
		v |= 1 << 5
	}
	if t.S {
		v |= 1 << 4
	}
	if t.U {
		v |= 1 << 3
	}
	if t.Execute {
		v |= 1 << 2
	}
	if t.Store {
		v |= 1 << 1
	}
	if t.Load {
		v |= 1 << 0
	}
	return v
}

// DecodeTData1 unpacks a 32-bit TDATA1 value.
func DecodeTData1(v uint32) TData1 {
	return TData1{
		Type:    uint8(v >> 28),
		DMode:   v&(1<<27) != 0,
		Action:  uint8((v >> 12) & 0xf),
		Match:   uint8((v >> 7) & 0xf),
		M:       v&(1<<6) != 0,
		H:       v&(1<<5) != 0,
		S:       v&(1<<4) != 0,
		U:       v&(1<<3) != 0,
		Execute: v&(1<<2) != 0,
		Store:   v&(1<<1) != 0,
		Load:    v&(1<<0) != 0,
	}
}

// miscHSU derives the H/S/U privilege bits a new trigger should set from
// misa's extension letters, the default "trust misa" behavior; Context's
// PrivMask hook overrides it when a target's actual privilege
// configuration differs.
func miscHSU(misa uint64) (h, s, u bool) {
	h = misa&(1<<('H'-'A')) != 0
	s = misa&(1<<('S'-'A')) != 0
	u = misa&(1<<('U'-'A')) != 0
	return
}
