// Copyright 2018 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package physic

import "testing"

func TestFrequencyString(t *testing.T) {
	if s := Hertz.String(); s != "1Hz" {
		t.Fatalf("%#v", s)
	}
	if s := (10 * KiloHertz).String(); s != "10kHz" {
		t.Fatalf("%#v", s)
	}
	if s := (500 * MicroHertz).String(); s != "500µHz" {
		t.Fatalf("%#v", s)
	}
}

func TestFrequencySet(t *testing.T) {
	var f Frequency
	if err := f.Set("10MHz"); err != nil {
		t.Fatal(err)
	}
	if f != 10*MegaHertz {
		t.Fatalf("%d", f)
	}
}

func TestFrequencySetNoUnit(t *testing.T) {
	var f Frequency
	if err := f.Set("10"); err == nil {
		t.Fatal("expected error")
	}
}

func TestFrequencySetBadUnit(t *testing.T) {
	var f Frequency
	if err := f.Set("10V"); err == nil {
		t.Fatal("expected error")
	}
}

func TestFrequencyDuration(t *testing.T) {
	if d := KiloHertz.Duration(); d.String() != "1ms" {
		t.Fatalf("%s", d)
	}
}

func TestPeriodToFrequency(t *testing.T) {
	if f := PeriodToFrequency(1000000); f != KiloHertz {
		t.Fatalf("%d", f)
	}
}
