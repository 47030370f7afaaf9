// Copyright 2016 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpiotest

import (
	"flag"
	"io/ioutil"
	"log"
	"os"
	"testing"
	"time"

	"github.com/rvdbg/rvtarget/conn/gpio"
)

func TestPin(t *testing.T) {
	p := &Pin{N: "TCK", Num: 10, Fn: "JTAG_TCK"}
	// fmt.Stringer
	if s := p.String(); s != "TCK(10)" {
		t.Fatal(s)
	}
	if err := p.Halt(); err != nil {
		t.Fatal(err)
	}
	// pin.Pin
	if n := p.Number(); n != 10 {
		t.Fatal(n)
	}
	if n := p.Name(); n != "TCK" {
		t.Fatal(n)
	}
	if f := p.Function(); f != "JTAG_TCK" {
		t.Fatal(f)
	}
	// gpio.PinIn
	if err := p.In(gpio.Down, gpio.NoEdge); err != nil {
		t.Fatal(err)
	}
	if l := p.Read(); l != gpio.Low {
		t.Fatal(l)
	}
	if err := p.In(gpio.Up, gpio.NoEdge); err != nil {
		t.Fatal(err)
	}
	if l := p.Read(); l != gpio.High {
		t.Fatal(l)
	}
	if pull := p.Pull(); pull != gpio.Up {
		t.Fatal(pull)
	}
	if pull := p.DefaultPull(); pull != gpio.Up {
		t.Fatal(pull)
	}
	// gpio.PinOut
	if err := p.Out(gpio.Low); err != nil {
		t.Fatal(err)
	}
	if err := p.PWM(gpio.Half); err != nil {
		t.Fatalf("unexpected failure: %v", err)
	}
}

func TestPin_edge(t *testing.T) {
	p := &Pin{N: "TDO", Num: 1, Fn: "JTAG_TDO", EdgesChan: make(chan gpio.Level, 1)}
	p.EdgesChan <- gpio.High
	if !p.WaitForEdge(-1) {
		t.Fatal("expected edge")
	}
	if l := p.Read(); l != gpio.High {
		t.Fatalf("unexpected %s", l)
	}
	if p.WaitForEdge(time.Millisecond) {
		t.Fatal("unexpected edge")
	}
	p.EdgesChan <- gpio.Low
	if !p.WaitForEdge(time.Minute) {
		t.Fatal("expected edge")
	}
	if l := p.Read(); l != gpio.Low {
		t.Fatalf("unexpected %s", l)
	}
}

func TestPin_fail(t *testing.T) {
	p := &Pin{N: "TDO", Num: 1, Fn: "JTAG_TDO"}
	if err := p.In(gpio.Float, gpio.BothEdges); err == nil {
		t.Fatal()
	}
}

func TestLogPinIO(t *testing.T) {
	p := &Pin{}
	l := &LogPinIO{p}
	if l.Real() != p {
		t.Fatal("unexpected real pin")
	}
	// gpio.PinIn
	if err := l.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
		t.Fatal(err)
	}
	if v := l.Read(); v != gpio.Low {
		t.Fatalf("unexpected level %v", v)
	}
	if l.Pull() != gpio.PullNoChange {
		t.Fatal("unexpected pull")
	}
	if l.WaitForEdge(0) {
		t.Fatal("unexpected edge")
	}
	// gpio.PinOut
	if err := l.Out(gpio.High); err != nil {
		t.Fatal(err)
	}
	if v := l.Read(); v != gpio.High {
		t.Fatalf("unexpected level %v", v)
	}
	if err := l.PWM(gpio.Half); err != nil {
		t.Fatalf("unexpected failure: %v", err)
	}
}

func TestMain(m *testing.M) {
	flag.Parse()
	if !testing.Verbose() {
		log.SetOutput(ioutil.Discard)
	}
	os.Exit(m.Run())
}
