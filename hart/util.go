// Copyright 2018 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hart

import "time"

const watchdog = 2 * time.Second

// waitInterruptClear blocks until the hart clears INTERRUPT, or the 2s
// watchdog expires.
func (ctx *Context) waitInterruptClear() error {
	deadline := time.Now().Add(watchdog)
	for {
		_, interrupt, err := ctx.Engine.ReadBits()
		if err != nil {
			return err
		}
		if !interrupt {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrWatchdogTimeout
		}
	}
}

// waitForState blocks until Poll reports want, or the 2s watchdog expires.
func (ctx *Context) waitForState(want State) error {
	deadline := time.Now().Add(watchdog)
	for {
		if err := ctx.Poll(); err != nil {
			return err
		}
		if ctx.State == want {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrWatchdogTimeout
		}
	}
}

// checkTrap reads the exception slot (the last Debug RAM word) after a
// program runs; a non-zero value means the hart trapped executing it.
func (ctx *Context) checkTrap() error {
	code, err := ctx.Cache.Get32(ctx.DramSize - 1)
	if err != nil {
		return err
	}
	if code != 0 {
		ctx.Logger.Printf("hart: debug program trapped, exception code %#x", code)
		return ErrTrapped
	}
	return nil
}
