// Copyright 2018 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpio_test

import (
	"fmt"
	"log"

	"github.com/rvdbg/rvtarget/conn/gpio"
)

func Example() {
	// A pin can be read, independent of its state; it doesn't matter if it is
	// set as input or output.
	p := gpio.ByNumber(6)
	if p == nil {
		log.Fatal("Failed to find pin 6")
	}
	fmt.Printf("%s is %s\n", p, p.Read())
}

func ExamplePinIn() {
	p := gpio.ByNumber(6)
	if p == nil {
		log.Fatal("Failed to find pin 6")
	}

	// Set it as input, with a pull down (defaults to Low when unconnected) and
	// enable rising edge triggering.
	if err := p.In(gpio.Down, gpio.RisingEdge); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%s is %s\n", p, p.Read())

	// Wait for rising edges (Low -> High) and print when one occurs.
	for p.WaitForEdge(-1) {
		fmt.Printf("%s went %s\n", p, gpio.High)
	}
}

func ExamplePinOut() {
	p := gpio.ByNumber(6)
	if p == nil {
		log.Fatal("Failed to find pin 6")
	}

	// Set the pin as output High.
	if err := p.Out(gpio.High); err != nil {
		log.Fatal(err)
	}
}

func ExamplePinOut_PWM() {
	p := gpio.ByNumber(6)
	if p == nil {
		log.Fatal("Failed to find pin 6")
	}

	// Generate a roughly 33% duty cycle signal.
	if err := p.PWM(gpio.Max / 3); err != nil {
		log.Fatal(err)
	}
}

func ExampleRealPin() {
	p := gpio.ByName("TCK_alias")
	if p == nil {
		log.Fatal("Failed to find TCK_alias")
	}
	fmt.Printf("TCK_alias: %s", p)

	// Resolve the real underlying pin.
	if r, ok := p.(gpio.RealPin); ok {
		fmt.Printf("%s is in fact %s", p, r.Real())
	} else {
		log.Printf("%s is not an alias", p)
	}
}
