package cpu

import (
	"fmt"
	"strings"

	"github.com/ezrec/epu/mmu"
)

const (
	REGISTER_COUNT = 16 // General (ra-rh) and user (ua-uh) registers.
	FPU_COUNT      = 4  // FPU registers (fa-fd).
)

// Flags are the status bits of a context.
type Flags uint32

const (
	FLAG_DONE        = Flags(1 << 0) // Graceful completion.
	FLAG_HALT        = Flags(1 << 1) // HALT executed.
	FLAG_READ_ERROR  = Flags(1 << 2) // Unroutable read.
	FLAG_WRITE_ERROR = Flags(1 << 3) // Unroutable or read-only write.
	FLAG_ILLEGAL     = Flags(1 << 4) // Illegal instruction.
	FLAG_STOP_MASK   = Flags(0x1f)   // Any of these retires the context.
)

var _flag_names = []string{"done", "halt", "read_error", "write_error", "illegal"}

// Stopped is true when any STOP mask bit is set.
func (fl Flags) Stopped() bool {
	return fl&FLAG_STOP_MASK != 0
}

// String returns the set flags, separated by '|'.
func (fl Flags) String() string {
	var names []string
	for n, name := range _flag_names {
		if fl&(1<<n) != 0 {
			names = append(names, name)
		}
	}
	if rest := fl &^ FLAG_STOP_MASK; rest != 0 {
		names = append(names, fmt.Sprintf("%#x", uint32(rest)))
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, "|")
}

// Cmp holds the sticky comparison bits.
type Cmp uint8

const (
	CMP_EQ = Cmp(1 << 0)
	CMP_GT = Cmp(1 << 1)
	CMP_LT = Cmp(1 << 2)
)

// Register identifies a CPU register.
type Register uint8

//go:generate go tool stringer -linecomment -type=Register,FpuRegister -output=register_string.go
const (
	REG_RA = Register(0)  // ra
	REG_RB = Register(1)  // rb
	REG_RC = Register(2)  // rc
	REG_RD = Register(3)  // rd
	REG_RE = Register(4)  // re
	REG_RF = Register(5)  // rf
	REG_RG = Register(6)  // rg
	REG_RH = Register(7)  // rh
	REG_UA = Register(8)  // ua
	REG_UB = Register(9)  // ub
	REG_UC = Register(10) // uc
	REG_UD = Register(11) // ud
	REG_UE = Register(12) // ue
	REG_UF = Register(13) // uf
	REG_UG = Register(14) // ug
	REG_UH = Register(15) // uh
	REG_PC = Register(16) // pc
	REG_SP = Register(17) // sp
	REG_CP = Register(18) // cp
)

// FpuRegister identifies an FPU register.
type FpuRegister uint8

const (
	FPU_FA = FpuRegister(0) // fa
	FPU_FB = FpuRegister(1) // fb
	FPU_FC = FpuRegister(2) // fc
	FPU_FD = FpuRegister(3) // fd
)

// Context is the architectural state of one execution context.
type Context struct {
	Id    uint8  // Context index.
	Alive bool   // Participates in scheduling.
	Count uint32 // Instructions executed since the last switch.
	Space uint32 // Context space, 0 is privileged.

	Register [REGISTER_COUNT]uint32
	Pc       mmu.Address // Program counter.
	Sp       mmu.Address // Data stack pointer.
	Cp       mmu.Address // Call stack pointer.
	Flags    Flags
	Cmp      Cmp
	Fpu      [FPU_COUNT]float32
}

var _ mmu.Accessor = (*Context)(nil)

// ContextId returns the owner of the bound pools.
func (ctx *Context) ContextId() uint8 {
	return ctx.Id
}

// Privileged is true for the kernel context space.
func (ctx *Context) Privileged() bool {
	return ctx.Space == 0
}

// Reset zeros the context.
func (ctx *Context) Reset(id uint8) {
	*ctx = Context{Id: id}
}

// Reg reads a register.
func (ctx *Context) Reg(reg Register) (value uint32, err error) {
	switch {
	case reg < REGISTER_COUNT:
		value = ctx.Register[reg]
	case reg == REG_PC:
		value = uint32(ctx.Pc)
	case reg == REG_SP:
		value = uint32(ctx.Sp)
	case reg == REG_CP:
		value = uint32(ctx.Cp)
	default:
		err = ErrRegister
	}
	return
}

// SetReg writes a register.
func (ctx *Context) SetReg(reg Register, value uint32) (err error) {
	switch {
	case reg < REGISTER_COUNT:
		ctx.Register[reg] = value
	case reg == REG_PC:
		ctx.Pc = mmu.Address(value)
	case reg == REG_SP:
		ctx.Sp = mmu.Address(value)
	case reg == REG_CP:
		ctx.Cp = mmu.Address(value)
	default:
		err = ErrRegister
	}
	return
}

// Float reads an FPU register.
func (ctx *Context) Float(reg FpuRegister) (value float32, err error) {
	if reg >= FPU_COUNT {
		err = ErrRegister
		return
	}
	value = ctx.Fpu[reg]
	return
}

// SetFloat writes an FPU register.
func (ctx *Context) SetFloat(reg FpuRegister, value float32) (err error) {
	if reg >= FPU_COUNT {
		err = ErrRegister
		return
	}
	ctx.Fpu[reg] = value
	return
}

// String returns the context state as a string.
func (ctx *Context) String() (text string) {
	text += fmt.Sprintf("  ctx: %02x space %d alive %v count %d\n", ctx.Id, ctx.Space, ctx.Alive, ctx.Count)
	for n := range REGISTER_COUNT {
		reg := Register(n)
		val := ctx.Register[n]
		text += fmt.Sprintf("% 5s: %04X_%04X", reg.String(), val>>16, val&0xffff)
		if n%4 == 3 {
			text += "\n"
		}
	}
	text += fmt.Sprintf("% 5s: %v % 5s: %v % 5s: %v\n", "pc", ctx.Pc, "sp", ctx.Sp, "cp", ctx.Cp)
	for n := range FPU_COUNT {
		text += fmt.Sprintf("% 5s: %g", FpuRegister(n).String(), ctx.Fpu[n])
	}
	text += "\n"

	var cmp []string
	for _, bit := range []struct {
		bit  Cmp
		name string
	}{{CMP_EQ, "eq"}, {CMP_GT, "gt"}, {CMP_LT, "lt"}} {
		if ctx.Cmp&bit.bit != 0 {
			cmp = append(cmp, bit.name)
		}
	}
	text += fmt.Sprintf("% 5s: %v % 5s: %v\n", "flags", ctx.Flags, "cmp", strings.Join(cmp, "|"))

	return
}
