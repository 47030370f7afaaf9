// Copyright 2018 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hart

// Poll reads {haltnot, interrupt} and updates ctx.State, running the halt
// entry routine on a rising edge into HALTED.
//
//	haltnot interrupt  next state
//	1       1          DEBUG_RUNNING
//	1       0          HALTED (on rising edge, handle_halt_routine runs)
//	0       1          unchanged (halting in progress)
//	0       0          RUNNING
func (ctx *Context) Poll() error {
	haltNot, interrupt, err := ctx.Engine.ReadBits()
	if err != nil {
		return err
	}
	switch {
	case haltNot && interrupt:
		ctx.State = StateDebugRunning
	case haltNot && !interrupt:
		rising := ctx.State != StateHalted
		ctx.State = StateHalted
		if rising {
			if err := ctx.handleHaltRoutine(); err != nil {
				return err
			}
		}
	case !haltNot && interrupt:
		// Halting in progress; state is left unchanged.
	default:
		ctx.State = StateRunning
	}
	return nil
}
