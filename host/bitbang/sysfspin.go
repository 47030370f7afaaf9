// Copyright 2016 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bitbang

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rvdbg/rvtarget/conn/gpio"
)

// Pin is a single GPIO line exported through /sys/class/gpio, opened once
// and kept open for the life of the process. Unlike a general purpose sysfs
// GPIO driver, Pin never enables edge detection: TAP drives every bit
// itself, so there is nothing to wait on.
type Pin struct {
	number int
	root   string
	value  *os.File
	buf    [4]byte
}

// export writes number to /sys/class/gpio/export. A write error is ignored
// if the per-pin directory already exists: that just means a previous run
// exported the line and never unexported it.
func export(number int) error {
	root := fmt.Sprintf("/sys/class/gpio/gpio%d", number)
	if _, err := os.Stat(root); err == nil {
		return nil
	}
	f, err := os.OpenFile("/sys/class/gpio/export", os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(strconv.Itoa(number))
	return err
}

// NewPin exports GPIO line number and opens its value file for read/write.
// dir selects the initial direction.
func NewPin(number int, dir Direction) (*Pin, error) {
	if err := export(number); err != nil {
		return nil, fmt.Errorf("bitbang: export gpio%d: %w", number, err)
	}
	root := fmt.Sprintf("/sys/class/gpio/gpio%d/", number)
	// The kernel can take a moment to populate the class directory after
	// export; a handful of retries is standard sysfs GPIO practice.
	var dirFile *os.File
	var err error
	for i := 0; i < 10; i++ {
		dirFile, err = os.OpenFile(root+"direction", os.O_RDWR, 0)
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		return nil, fmt.Errorf("bitbang: open gpio%d direction: %w", number, err)
	}
	dirWord := "in"
	if dir == Out {
		dirWord = "out"
	}
	if _, err := dirFile.WriteString(dirWord); err != nil {
		dirFile.Close()
		return nil, fmt.Errorf("bitbang: set gpio%d direction: %w", number, err)
	}
	dirFile.Close()
	value, err := os.OpenFile(root+"value", os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("bitbang: open gpio%d value: %w", number, err)
	}
	return &Pin{number: number, root: root, value: value}, nil
}

// Direction is the initial direction a Pin is exported with.
type Direction int

const (
	// In configures the line as an input.
	In Direction = iota
	// Out configures the line as an output.
	Out
)

// Set drives the line high or low. Only valid for a Pin opened with Out.
func (p *Pin) Set(high bool) error {
	b := byte('0')
	if high {
		b = '1'
	}
	if _, err := p.value.Seek(0, 0); err != nil {
		return err
	}
	_, err := p.value.Write([]byte{b})
	return err
}

// Get reads the line's current level. Only meaningful for a Pin opened with
// In, though an Out pin typically reads back what was last written.
func (p *Pin) Get() (bool, error) {
	if _, err := p.value.Seek(0, 0); err != nil {
		return false, err
	}
	if _, err := p.value.Read(p.buf[:]); err != nil {
		return false, err
	}
	return p.buf[0] == '1', nil
}

// Close releases the value file handle. It does not unexport the line: a
// concurrent process may still be using it.
func (p *Pin) Close() error {
	return p.value.Close()
}

// asGPIOOut adapts Pin to gpio.PinOut for callers that want to hand a TCK/
// TMS/TDI line to code written against the generic gpio package.
func (p *Pin) asGPIOOut() gpio.PinOut {
	return outAdapter{p}
}

// asGPIOIn adapts Pin to gpio.PinIn for a TDO line.
func (p *Pin) asGPIOIn() gpio.PinIn {
	return inAdapter{p}
}

type outAdapter struct{ p *Pin }

func (a outAdapter) String() string       { return fmt.Sprintf("gpio%d", a.p.number) }
func (a outAdapter) Halt() error          { return nil }
func (a outAdapter) Number() int          { return a.p.number }
func (a outAdapter) Function() string     { return "out" }
func (a outAdapter) Out(l gpio.Level) error {
	return a.p.Set(bool(l))
}
func (a outAdapter) PWM(duty int) error {
	return errors.New("bitbang: PWM not supported")
}

type inAdapter struct{ p *Pin }

func (a inAdapter) String() string   { return fmt.Sprintf("gpio%d", a.p.number) }
func (a inAdapter) Halt() error      { return nil }
func (a inAdapter) Number() int      { return a.p.number }
func (a inAdapter) Function() string { return "in" }
func (a inAdapter) Read() gpio.Level {
	v, err := a.p.Get()
	if err != nil {
		return gpio.Low
	}
	return gpio.Level(v)
}
func (a inAdapter) In(gpio.Pull, gpio.Edge) error { return nil }
func (a inAdapter) WaitForEdge(time.Duration) bool {
	return false
}
func (a inAdapter) Pull() gpio.Pull { return gpio.Float }
