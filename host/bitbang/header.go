// Copyright 2016 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bitbang

import (
	"strconv"

	"github.com/rvdbg/rvtarget/conn/pins"
)

// Header describes a 6-pin JTAG header's physical layout: the four signal
// lines this package drives plus its two non-signal pins. It's purely
// descriptive (for logging/diagnostics), not wired into TAP itself.
type Header struct {
	TCK, TMS, TDI, TDO pins.Pin
	Ground, VRef       pins.Pin
}

// NewHeader describes a header whose signal lines are the given sysfs GPIO
// line numbers, alongside the standard GROUND/V3_3 reference pins.
func NewHeader(tck, tms, tdi, tdo int) Header {
	return Header{
		TCK:    &pins.BasicPin{Name: numberedName("TCK", tck)},
		TMS:    &pins.BasicPin{Name: numberedName("TMS", tms)},
		TDI:    &pins.BasicPin{Name: numberedName("TDI", tdi)},
		TDO:    &pins.BasicPin{Name: numberedName("TDO", tdo)},
		Ground: pins.GROUND,
		VRef:   pins.V3_3,
	}
}

func numberedName(signal string, number int) string {
	return signal + "/GPIO" + strconv.Itoa(number)
}
