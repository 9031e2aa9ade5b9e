// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ezrec/epu/cpu"
	"github.com/ezrec/epu/emulator"
	"github.com/ezrec/epu/internal"
	"github.com/ezrec/epu/mmu"
	"github.com/ezrec/epu/peripheral"
	"github.com/ezrec/epu/translate"
)

// FRAME is the host frame period. Each frame runs one scheduler burst.
const FRAME = time.Second / 60

func main() {
	var compile string
	var boot string
	var output string
	var listing bool
	var display string
	var steps int
	var seed uint64
	var verbose bool
	var lang string
	var defines bool

	flag.StringVar(&compile, "c", "", ".s file to assemble as the boot image")
	flag.StringVar(&boot, "b", "", "Boot image file to load")
	flag.StringVar(&output, "o", "", "Save the boot image to a file, do not execute")
	flag.BoolVar(&listing, "l", false, "Print the assembly listing")
	flag.StringVar(&display, "d", DISPLAY_DEFAULT, "Display: "+DISPLAYS)
	flag.IntVar(&steps, "n", 0, "Headless: instructions to run, 0 to run until halted")
	flag.Uint64Var(&seed, "seed", 0, "Headless: random seed")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.StringVar(&lang, "lang", "", "Message language, overriding the host locale")
	flag.BoolVar(&defines, "defines", false, "Print the assembler predefines, and exit")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if len(lang) != 0 {
		translate.SetLocales(lang)
	}

	emu := emulator.NewEmulator(nil)
	emu.Verbose = verbose

	if defines {
		for key, value := range internal.IterSeq2Sorted(emu.Defines()) {
			fmt.Printf(".equ %v %v\n", key, value)
		}
		return
	}

	var image []byte

	// Assemble a new boot image.
	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		asm := &cpu.Assembler{Origin: uint32(mmu.BOOT_ENTRY), Verbose: verbose}
		for key, value := range emu.Defines() {
			asm.Predefine(key, value)
		}
		emu.Program, err = asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		image = emu.Program.Binary()
	} else if len(boot) != 0 {
		inf, err := os.Open(boot)
		if err != nil {
			log.Fatalf("%v: %v", boot, err)
		}
		defer inf.Close()

		err = emu.Cpu.Memory.Boot.Load(inf)
		if err != nil {
			log.Fatalf("%v: %v", boot, err)
		}
	} else {
		log.Fatalf("%v: one of -c or -b is required", os.Args[0])
	}

	if listing {
		fmt.Print(emu.Program.String())
	}

	if len(output) != 0 {
		if image == nil {
			image = emu.Cpu.Memory.Boot.Data[:emu.Cpu.Memory.Boot.Size]
		}
		err := os.WriteFile(output, image, 0o644)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		return
	}

	err := emu.Reset(image)
	if err != nil {
		log.Fatal(err)
	}

	switch display {
	case "headless":
		err = runHeadless(emu, peripheral.NewHeadless(seed), steps)
	case "terminal":
		err = runTerminal(emu)
	default:
		err = runDisplay(emu, display)
	}

	if err != nil {
		if verbose {
			log.Print(emu.Kernel())
		}
		log.Fatal(err)
	}
}

// runHeadless runs without a display, until halted or out of steps.
func runHeadless(emu *emulator.Emulator, hd *peripheral.Headless, steps int) (err error) {
	emu.Peripheral.Device = hd

	for count := 0; steps == 0 || count < steps; count += emulator.BURST {
		burst := emulator.BURST
		if steps != 0 {
			burst = min(burst, steps-count)
		}

		var done bool
		done, err = emu.Run(burst)
		if done || err != nil {
			return
		}
	}

	return
}

// runTerminal runs on the controlling terminal until halted, or Ctrl-C.
func runTerminal(emu *emulator.Emulator) (err error) {
	tm, err := peripheral.NewTerminal(os.Stdin, os.Stdout)
	if err != nil {
		return
	}
	defer tm.Close()

	emu.Peripheral.Device = tm

	err = runFrames(emu, tm.Done())
	return
}

// runFrames runs one scheduler burst per frame, until halted or quit.
func runFrames(emu *emulator.Emulator, quit <-chan struct{}) (err error) {
	ticker := time.NewTicker(FRAME)
	defer ticker.Stop()

	for {
		select {
		case <-quit:
			return
		case <-ticker.C:
		}

		var done bool
		done, err = emu.Run(emulator.BURST)
		if done || err != nil {
			return
		}
	}
}
