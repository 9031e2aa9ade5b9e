// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/epu/cpu"
	"github.com/ezrec/epu/internal"
	"github.com/ezrec/epu/mmu"
	"github.com/ezrec/epu/peripheral"
)

const (
	SCHED_QUANTUM = 16   // Instructions a context runs before a switch.
	KERNEL        = 0    // The context whose death halts the machine.
	BURST         = 1024 // Scheduler steps per host frame.
)

var _emulator_defines = map[string]string{
	"SCHED_QUANTUM": fmt.Sprintf("%v", SCHED_QUANTUM),
	"CONTEXT_COUNT": fmt.Sprintf("%v", mmu.CONTEXT_COUNT),
}

// Emulator state. CPU + memory + peripheral, under the scheduler.
type Emulator struct {
	Verbose    bool                   // If set, enables verbose logging.
	*cpu.Cpu                          // Reference to the CPU simulation.
	Peripheral *peripheral.Dispatcher // Peripheral interrupt dispatcher.
	Program    *cpu.Program           // Listing of the boot image.

	Current uint8 // Context being scheduled.
	Halted  bool  // Set once the kernel context has died.
}

// NewEmulator creates a new emulator on a peripheral device.
func NewEmulator(dev peripheral.Device) (emu *Emulator) {
	emu = &Emulator{
		Cpu:        cpu.NewCpu(mmu.NewMemory()),
		Peripheral: peripheral.NewDispatcher(dev),
		Program:    &cpu.Program{Origin: uint32(mmu.BOOT_ENTRY)},
	}

	emu.Cpu.Interrupter = emu.Peripheral

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
		emu.Cpu.Memory.Defines(),
		emu.Peripheral.Defines(),
	)
}

// Reset the machine, and install a new boot image.
// A nil boot image keeps the current one.
func (emu *Emulator) Reset(boot []byte) (err error) {
	emu.verbose()

	mem := emu.Cpu.Memory
	mem.Reset()
	if boot != nil {
		err = mem.Boot.Set(boot)
		if err != nil {
			return
		}
	}

	emu.Cpu.Reset()
	emu.Peripheral.Graphics.Clear()

	emu.Current = KERNEL
	emu.Halted = false

	return
}

// Spawn marks a context alive before scheduling starts.
func (emu *Emulator) Spawn(id uint8, space uint32, pc mmu.Address) (err error) {
	if emu.Cpu.Context[id].Alive {
		err = &ErrContext{Context: id, Err: ErrContextAlive}
		return
	}

	emu.Cpu.Spawn(id, space, pc)
	return
}

// LoadProcess fills the code and read-only data pools of a context.
func (emu *Emulator) LoadProcess(id uint8, code []byte, ropd []byte) (err error) {
	mem := emu.Cpu.Memory

	err = mem.Load(id, mmu.POOL_CODE, 0, code)
	if err == nil {
		err = mem.Load(id, mmu.POOL_ROPD, 0, ropd)
	}
	if err != nil {
		err = &ErrContext{Context: id, Err: err}
	}

	return
}

// Kernel returns the kernel context.
func (emu *Emulator) Kernel() *cpu.Context {
	return &emu.Cpu.Context[KERNEL]
}

// LineNo returns the boot image line number for a kernel address, or 0.
func (emu *Emulator) LineNo(pc mmu.Address) int {
	op := emu.Program.Debug(uint32(pc))
	if op == nil {
		return 0
	}

	return op.LineNo
}

// verbose turns on the component logs when the emulator is verbose.
// Components made verbose directly stay verbose.
func (emu *Emulator) verbose() {
	if !emu.Verbose {
		return
	}

	emu.Cpu.Verbose = true
	emu.Cpu.Memory.Verbose = true
	emu.Peripheral.Verbose = true
}

// Tick executes one instruction of the current context, then applies the
// quantum and liveness rules. done is set once the kernel context is dead.
// If the kernel died of a fault, that fault is returned as an ErrRuntime.
func (emu *Emulator) Tick() (done bool, err error) {
	if emu.Halted {
		done = true
		return
	}

	emu.verbose()

	kernel := emu.Kernel()
	if !kernel.Alive {
		emu.halt(kernel, nil)
		done = true
		return
	}

	if !emu.Cpu.Context[emu.Current].Alive {
		emu.next()
	}

	id := emu.Current
	ctx := &emu.Cpu.Context[id]
	pc := ctx.Pc

	fault := emu.Cpu.Step(id)

	ctx.Count++
	if ctx.Count < SCHED_QUANTUM && !ctx.Flags.Stopped() {
		return
	}

	ctx.Count = 0
	if ctx.Flags.Stopped() {
		ctx.Alive = false
		if emu.Verbose {
			log.Printf("emulator: %02x: stopped %v", id, ctx.Flags)
		}
	}

	if !kernel.Alive {
		err = emu.halt(kernel, fault)
		if err != nil {
			err = &ErrRuntime{Context: id, Pc: pc, LineNo: emu.LineNo(pc), Err: err}
		}
		done = true
		return
	}

	emu.next()

	return
}

// halt the machine. Returns the kernel's fault, if it did not stop cleanly.
func (emu *Emulator) halt(kernel *cpu.Context, fault error) (err error) {
	emu.Halted = true

	if kernel.Flags&^(cpu.FLAG_HALT|cpu.FLAG_DONE) != 0 {
		err = fault
		if err == nil {
			err = ErrKernelFault
		}
	}

	if emu.Verbose {
		log.Printf("emulator: halted %v", kernel.Flags)
	}

	return
}

// next advances to the next alive context. The kernel is alive, so the
// search ends.
func (emu *Emulator) next() {
	from := emu.Current
	for {
		emu.Current++
		if emu.Cpu.Context[emu.Current].Alive {
			break
		}
	}

	if emu.Verbose && emu.Current != from {
		log.Printf("emulator: switch %02x -> %02x", from, emu.Current)
	}
}

// Run the scheduler for up to steps instructions, stopping early if the
// machine halts.
func (emu *Emulator) Run(steps int) (done bool, err error) {
	for range steps {
		done, err = emu.Tick()
		if done || err != nil {
			return
		}
	}

	return
}
