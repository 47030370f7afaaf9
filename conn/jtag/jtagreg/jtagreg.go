// Copyright 2018 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package jtagreg defines a registry for the known JTAG TAPs.
//
// A TAP opened by one of the transports (host/bitbang, host/ftdi,
// host/remotebitbang) can be registered here under a name so that a process
// can pick one by name instead of every transport package exposing its own
// ad-hoc lookup. The transport packages do not register themselves;
// cmd/rvprobe registers the TAP it opens.
package jtagreg

import (
	"errors"
	"sort"
	"strconv"
	"sync"

	"github.com/rvdbg/rvtarget/conn/jtag"
)

// ByName returns a JTAG TAP from its name.
//
// Returns nil if no TAP was registered under this name.
func ByName(name string) jtag.TAP {
	mu.Lock()
	defer mu.Unlock()
	return byName[name]
}

// All returns the names of all registered TAPs, sorted.
func All() []string {
	mu.Lock()
	defer mu.Unlock()
	out := make([]string, 0, len(byName))
	for name := range byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Register registers a JTAG TAP under a name.
//
// Registering the same name twice is an error.
func Register(name string, t jtag.TAP) error {
	if len(name) == 0 {
		return errors.New("jtagreg: can't register a TAP with no name")
	}
	if t == nil {
		return errors.New("jtagreg: can't register a nil TAP")
	}
	mu.Lock()
	defer mu.Unlock()
	if _, ok := byName[name]; ok {
		return errors.New("jtagreg: can't register TAP " + strconv.Quote(name) + " twice")
	}
	byName[name] = t
	return nil
}

// Unregister removes a previously registered TAP.
//
// This can happen when the underlying transport (e.g. a USB-serial adapter)
// is unplugged.
func Unregister(name string) error {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := byName[name]; !ok {
		return errors.New("jtagreg: can't unregister unknown TAP " + strconv.Quote(name))
	}
	delete(byName, name)
	return nil
}

var (
	mu     sync.Mutex
	byName = map[string]jtag.TAP{}
)
