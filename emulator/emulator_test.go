package emulator

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/epu/cpu"
	"github.com/ezrec/epu/mmu"
	"github.com/ezrec/epu/peripheral"
)

func assemble(t *testing.T, emu *Emulator, origin mmu.Address, source string) (prog *cpu.Program) {
	asm := &cpu.Assembler{Origin: uint32(origin)}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}

	prog, err := asm.Parse(strings.NewReader(source))
	if err != nil {
		t.Fatalf("%v", err)
	}

	return
}

func newTestEmulator(t *testing.T, kernel string) (emu *Emulator, hd *peripheral.Headless) {
	hd = peripheral.NewHeadless(1)
	emu = NewEmulator(hd)

	emu.Program = assemble(t, emu, mmu.BOOT_ENTRY, kernel)
	err := emu.Reset(emu.Program.Binary())
	if err != nil {
		t.Fatalf("%v", err)
	}

	return
}

func spawnTest(t *testing.T, emu *Emulator, id uint8, source string) {
	prog := assemble(t, emu, mmu.BOUND_CODE_ENTRY, source)
	err := emu.LoadProcess(id, prog.Binary(), nil)
	if err == nil {
		err = emu.Spawn(id, 1, mmu.BOUND_CODE_ENTRY)
	}
	if err != nil {
		t.Fatalf("%v", err)
	}
}

const spinner = `
loop:
	add ra, 1
	jmp loop
`

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(peripheral.NewHeadless(0))

	assert.False(emu.Verbose)
	assert.Equal(emu.Peripheral, emu.Cpu.Interrupter)
	assert.True(emu.Kernel().Alive)
	assert.Equal(mmu.BOOT_ENTRY, emu.Kernel().Pc)
	assert.Equal(uint8(0), emu.Current)

	defines := map[string]string{}
	for key, value := range emu.Defines() {
		defines[key] = value
	}
	for _, key := range []string{"SCHED_QUANTUM", "FLAG_HALT", "PAGE_BOOT", "INT_FLUSH"} {
		assert.Contains(defines, key)
	}
	assert.Equal("16", defines["SCHED_QUANTUM"])
}

func TestEmulatorHalt(t *testing.T) {
	assert := assert.New(t)

	emu, _ := newTestEmulator(t, `
	mov ra, 1
	halt
`)

	done, err := emu.Tick()
	assert.NoError(err)
	assert.False(done)

	done, err = emu.Tick()
	assert.NoError(err)
	assert.True(done)
	assert.True(emu.Halted)
	assert.False(emu.Kernel().Alive)
	assert.Equal(cpu.FLAG_HALT, emu.Kernel().Flags)

	// Stays halted.
	done, err = emu.Tick()
	assert.NoError(err)
	assert.True(done)
}

func TestEmulatorKernelFault(t *testing.T) {
	assert := assert.New(t)

	emu, _ := newTestEmulator(t, `
	mov ra, 1
	.half 0x0009
`)

	done, err := emu.Run(10)
	assert.True(done)
	assert.ErrorIs(err, cpu.ErrOpcodeIllegal)

	var runtime *ErrRuntime
	if assert.True(errors.As(err, &runtime)) {
		assert.Equal(uint8(KERNEL), runtime.Context)
		assert.Equal(mmu.BOOT_ENTRY+8, runtime.Pc)
		assert.Equal(3, runtime.LineNo)
	}

	assert.Equal(cpu.FLAG_ILLEGAL, emu.Kernel().Flags)
}

func TestEmulatorQuantum(t *testing.T) {
	assert := assert.New(t)

	emu, _ := newTestEmulator(t, spinner)
	spawnTest(t, emu, 5, spinner)

	var order []uint8
	for range 4 * SCHED_QUANTUM {
		order = append(order, emu.Current)
		done, err := emu.Tick()
		assert.NoError(err)
		assert.False(done)
	}

	for n, id := range order {
		expected := uint8(0)
		if (n/SCHED_QUANTUM)%2 == 1 {
			expected = 5
		}
		assert.Equal(expected, id, "tick %d", n)
	}

	// Each ran two quanta, half of them adds.
	assert.Equal(uint32(SCHED_QUANTUM), emu.Cpu.Context[0].Register[cpu.REG_RA])
	assert.Equal(uint32(SCHED_QUANTUM), emu.Cpu.Context[5].Register[cpu.REG_RA])
}

func TestEmulatorLiveness(t *testing.T) {
	assert := assert.New(t)

	emu, _ := newTestEmulator(t, spinner)
	spawnTest(t, emu, 5, `
	mov ra, 1
	halt
`)
	spawnTest(t, emu, 7, `
	mov ra, *0xe0000000
	halt
`)

	done, err := emu.Run(SCHED_QUANTUM)
	assert.NoError(err)
	assert.False(done)
	assert.Equal(uint8(5), emu.Current)

	// Context 5 halts after two instructions.
	done, err = emu.Run(2)
	assert.NoError(err)
	assert.False(done)
	assert.False(emu.Cpu.Context[5].Alive)
	assert.Equal(cpu.FLAG_HALT, emu.Cpu.Context[5].Flags)
	assert.Equal(uint8(7), emu.Current)

	// Context 7 faults on its first instruction.
	done, err = emu.Tick()
	assert.NoError(err)
	assert.False(done)
	assert.False(emu.Cpu.Context[7].Alive)
	assert.Equal(cpu.FLAG_READ_ERROR, emu.Cpu.Context[7].Flags)
	assert.Equal(uint8(0), emu.Current)

	// Only the kernel remains.
	for range 3 * SCHED_QUANTUM {
		assert.Equal(uint8(0), emu.Current)
		done, err = emu.Tick()
		assert.NoError(err)
		assert.False(done)
	}
}

func TestEmulatorDeadCurrent(t *testing.T) {
	assert := assert.New(t)

	emu, _ := newTestEmulator(t, spinner)
	spawnTest(t, emu, 9, spinner)

	emu.Current = 3
	done, err := emu.Tick()
	assert.NoError(err)
	assert.False(done)
	assert.Equal(uint8(9), emu.Current)
	assert.Equal(uint32(1), emu.Cpu.Context[9].Count)
}

func TestEmulatorKernelKilled(t *testing.T) {
	assert := assert.New(t)

	emu, _ := newTestEmulator(t, spinner)
	spawnTest(t, emu, 5, spinner)

	done, err := emu.Run(SCHED_QUANTUM + 3)
	assert.NoError(err)
	assert.False(done)
	assert.Equal(uint8(5), emu.Current)

	other := &emu.Cpu.Context[5]
	pc := other.Pc
	ra := other.Register[cpu.REG_RA]

	emu.Kernel().Alive = false

	done, err = emu.Tick()
	assert.NoError(err)
	assert.True(done)
	assert.True(emu.Halted)
	assert.Equal(pc, other.Pc)
	assert.Equal(ra, other.Register[cpu.REG_RA])
	assert.True(other.Alive)

	done, err = emu.Tick()
	assert.NoError(err)
	assert.True(done)
	assert.Equal(pc, other.Pc)
}

func TestEmulatorVerbose(t *testing.T) {
	assert := assert.New(t)

	emu, _ := newTestEmulator(t, spinner)

	// Components made verbose directly stay verbose.
	emu.Cpu.Verbose = true
	_, err := emu.Tick()
	assert.NoError(err)
	assert.True(emu.Cpu.Verbose)
	assert.False(emu.Peripheral.Verbose)

	emu.Verbose = true
	_, err = emu.Tick()
	assert.NoError(err)
	assert.True(emu.Cpu.Verbose)
	assert.True(emu.Cpu.Memory.Verbose)
	assert.True(emu.Peripheral.Verbose)
}

func TestEmulatorSpawn(t *testing.T) {
	assert := assert.New(t)

	emu, _ := newTestEmulator(t, spinner)

	err := emu.Spawn(KERNEL, 0, mmu.BOOT_ENTRY)
	assert.ErrorIs(err, ErrContextAlive)

	err = emu.LoadProcess(3, make([]byte, mmu.POOL_SIZE+1), nil)
	assert.ErrorIs(err, mmu.ErrSize)

	err = emu.LoadProcess(3, []byte{1, 2}, []byte{3, 4})
	assert.NoError(err)
	assert.Equal(byte(2), emu.Cpu.Memory.Process[3].Code[1])
	assert.Equal(byte(4), emu.Cpu.Memory.Process[3].Ropd[1])

	// Reset clears the pools and keeps the boot image.
	boot := emu.Cpu.Memory.Boot.Data[0]
	assert.NoError(emu.Reset(nil))
	assert.Equal(byte(0), emu.Cpu.Memory.Process[3].Code[1])
	assert.Equal(boot, emu.Cpu.Memory.Boot.Data[0])
}

func TestEmulatorPeripheral(t *testing.T) {
	assert := assert.New(t)

	emu, hd := newTestEmulator(t, `
	mov ra, 10
	mov rb, 20
	mov rc, 0x0f
	int INT_DRAW_PIXEL
	int INT_FLUSH
	int INT_LAST_KEY
	mov rh, ra
	halt
`)
	hd.Press('q')

	done, err := emu.Run(100)
	assert.NoError(err)
	assert.True(done)

	assert.Equal(1, hd.Presents())
	assert.Equal(peripheral.PixelOf(0xFFFFFF), hd.Shown(10, 20))
	assert.Equal(uint32('q'), emu.Kernel().Register[cpu.REG_RH])

	// Reset clears the frame.
	assert.NoError(emu.Reset(nil))
	assert.Equal(peripheral.Pixel{}, emu.Peripheral.Graphics.Pixel(10, 20))
}
