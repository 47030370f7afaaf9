// Copyright 2018 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// rvprobe opens a JTAG transport to a single RISC-V hart, examines and
// halts it, runs the requested operation, then leaves the hart running
// again before exiting.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/rvdbg/rvtarget/conn/jtag"
	"github.com/rvdbg/rvtarget/conn/jtag/jtagreg"
	"github.com/rvdbg/rvtarget/conn/physic"
	"github.com/rvdbg/rvtarget/gdbreg"
	"github.com/rvdbg/rvtarget/host/bitbang"
	"github.com/rvdbg/rvtarget/host/ftdi"
	"github.com/rvdbg/rvtarget/host/remotebitbang"
	"github.com/rvdbg/rvtarget/target/riscv"
)

// resetter is the Reset method every host/* TAP exposes beyond jtag.TAP
// itself: dbus/dram/hart never call it (a TAP is an opaque scan scheduler
// to them), so it isn't part of jtag.TAP, but whoever opens the transport
// must run it once before the first Execute.
type resetter interface {
	Reset() error
}

func openTAP(transport string, tck, tms, tdi, tdo int, dev string, baud uint, addr string, dialTimeout time.Duration, freq physic.Frequency) (jtag.TAP, error) {
	var tap interface {
		jtag.TAP
		resetter
	}
	switch transport {
	case "bitbang":
		t, err := bitbang.NewSysfsTAP(tck, tms, tdi, tdo)
		if err != nil {
			return nil, fmt.Errorf("bitbang: %v", err)
		}
		t.SetFreq(freq)
		tap = t
	case "ftdi":
		d, err := ftdi.Open(dev, uint32(baud))
		if err != nil {
			return nil, fmt.Errorf("ftdi: %v", err)
		}
		tap = ftdi.New(d)
	case "remotebitbang":
		t, err := remotebitbang.Dial(addr, dialTimeout)
		if err != nil {
			return nil, fmt.Errorf("remotebitbang: %v", err)
		}
		tap = t
	default:
		return nil, fmt.Errorf("unknown -transport %q (want bitbang, ftdi or remotebitbang)", transport)
	}
	if err := tap.Reset(); err != nil {
		return nil, fmt.Errorf("reset: %v", err)
	}
	// Register under the transport name so a later call in the same process
	// (or a future -list-transports style command) can look it up by name
	// instead of every host/* package needing its own ad-hoc registry.
	if err := jtagreg.Register(transport, tap); err != nil {
		return nil, err
	}
	return jtagreg.ByName(transport), nil
}

func mainImpl() error {
	transport := flag.String("transport", "remotebitbang", "JTAG transport: bitbang, ftdi or remotebitbang")
	tck := flag.Int("tck", 0, "bitbang: TCK sysfs GPIO line number")
	tms := flag.Int("tms", 0, "bitbang: TMS sysfs GPIO line number")
	tdi := flag.Int("tdi", 0, "bitbang: TDI sysfs GPIO line number")
	tdo := flag.Int("tdo", 0, "bitbang: TDO sysfs GPIO line number")
	dev := flag.String("dev", "/dev/ttyUSB0", "ftdi: serial device path")
	baud := flag.Uint("baud", 115200, "ftdi: baud rate")
	addr := flag.String("addr", "localhost:9824", "remotebitbang: host:port of the remote_bitbang server")
	dialTimeout := flag.Duration("dial-timeout", 2*time.Second, "remotebitbang: TCP dial timeout")
	var freq physic.Frequency
	flag.Var(&freq, "freq", "bitbang: TCK clock cap, e.g. 1MHz (0 means unlimited)")

	op := flag.String("op", "info", "operation: info, halt, resume, step, regs, read, write")
	reg := flag.Uint("reg", 10, "regs: GDB register number to print (default x10/a0)")
	address := flag.Uint64("address", 0, "read/write: target byte address")
	size := flag.Uint("size", 4, "read/write: access size in bytes (1, 2 or 4)")
	count := flag.Uint("count", 1, "read: number of elements to read")
	data := flag.String("data", "", "write: hex-encoded bytes to write")

	flag.Parse()

	tap, err := openTAP(*transport, *tck, *tms, *tdi, *tdo, *dev, *baud, *addr, *dialTimeout, freq)
	if err != nil {
		return err
	}

	logger := log.New(os.Stderr, "rvprobe: ", log.LstdFlags)
	target := riscv.New(tap, logger)
	if err := target.Init(); err != nil {
		return fmt.Errorf("init: %v", err)
	}
	defer func() {
		if err := target.Deinit(); err != nil {
			fmt.Fprintf(os.Stderr, "rvprobe: resume on exit: %s.\n", err)
		}
	}()

	switch *op {
	case "info":
		info := target.Info()
		fmt.Printf("xlen=%d dramsize=%d state=%s reason=%d\n", target.XLen, target.DramSize, info.State, target.DebugReason)
	case "halt":
		fmt.Println("halted")
	case "resume":
		if err := target.Resume(true, 0, false, false); err != nil {
			return err
		}
		fmt.Println("resumed")
	case "step":
		if err := target.Step(true, 0, false); err != nil {
			return err
		}
		fmt.Println("stepped")
	case "regs":
		for _, r := range target.GetGDBRegList() {
			if r.Kind == gdbreg.KindGPR && r.Index == int(*reg) {
				v, err := target.ReadRegister(r)
				if err != nil {
					return err
				}
				fmt.Printf("x%d = 0x%x\n", r.Index, v)
				return nil
			}
		}
		return fmt.Errorf("no gpr x%d in the register list", *reg)
	case "read":
		buf := make([]byte, int(*size)*int(*count))
		if err := target.ReadMemory(*address, int(*size), int(*count), buf); err != nil {
			return err
		}
		fmt.Println(hex.EncodeToString(buf))
	case "write":
		buf, err := hex.DecodeString(*data)
		if err != nil {
			return fmt.Errorf("-data: %v", err)
		}
		if err := target.WriteMemory(*address, int(*size), buf); err != nil {
			return err
		}
		fmt.Println("wrote", len(buf), "bytes")
	default:
		return fmt.Errorf("unknown -op %q", *op)
	}
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "rvprobe: %s.\n", err)
		os.Exit(1)
	}
}
