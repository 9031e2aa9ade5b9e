package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/epu/mmu"
)

// Interrupter services peripheral interrupts, codes INT_PERIPHERAL to
// INT_PERIPHERAL_LAST, by their low byte.
type Interrupter interface {
	Interrupt(ctx *Context, code uint8)
}

var _cpu_defines = map[string]string{
	"FLAG_DONE":        fmt.Sprintf("0x%x", uint32(FLAG_DONE)),
	"FLAG_HALT":        fmt.Sprintf("0x%x", uint32(FLAG_HALT)),
	"FLAG_READ_ERROR":  fmt.Sprintf("0x%x", uint32(FLAG_READ_ERROR)),
	"FLAG_WRITE_ERROR": fmt.Sprintf("0x%x", uint32(FLAG_WRITE_ERROR)),
	"FLAG_ILLEGAL":     fmt.Sprintf("0x%x", uint32(FLAG_ILLEGAL)),
	"CMP_EQ":           fmt.Sprintf("0x%x", uint8(CMP_EQ)),
	"CMP_GT":           fmt.Sprintf("0x%x", uint8(CMP_GT)),
	"CMP_LT":           fmt.Sprintf("0x%x", uint8(CMP_LT)),
	"INT_PERIPHERAL":   fmt.Sprintf("0x%x", INT_PERIPHERAL),
}

// Cpu is the instruction executor over the array of execution contexts.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Memory      *mmu.Memory                // Address router and pools.
	Context     [mmu.CONTEXT_COUNT]Context // Execution contexts, by id.
	Interrupter Interrupter                // Peripheral interrupt handler.

	Ticks int // Instructions executed.
}

// NewCpu creates a new CPU on a memory arena.
func NewCpu(mem *mmu.Memory) (cpu *Cpu) {
	cpu = &Cpu{
		Memory: mem,
	}
	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Reset the CPU state.
// - Zeros every context.
// - Context 0 is alive in the privileged space, starting at the boot image.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	for n := range cpu.Context {
		cpu.Context[n].Reset(uint8(n))
	}

	boot := &cpu.Context[0]
	boot.Alive = true
	boot.Pc = mmu.BOOT_ENTRY
	boot.Fpu = [FPU_COUNT]float32{1.0, 2.0, 0.0, 0.0}

	cpu.Ticks = 0
}

// Spawn resets a context and marks it alive in a context space.
func (cpu *Cpu) Spawn(id uint8, space uint32, pc mmu.Address) (ctx *Context) {
	ctx = &cpu.Context[id]
	ctx.Reset(id)
	ctx.Alive = true
	ctx.Space = space
	ctx.Pc = pc

	if cpu.Verbose {
		log.Printf("cpu: spawn %02x space %d at %v", id, space, pc)
	}

	return
}

// fetch reads size bytes from the instruction stream.
func (cpu *Cpu) fetch(ctx *Context, size int) (value uint32, err error) {
	return cpu.Memory.Read(ctx, &ctx.Pc, size)
}

// Step executes a single instruction on a context.
// Faults are recorded in the context flags, and returned.
func (cpu *Cpu) Step(id uint8) (err error) {
	ctx := &cpu.Context[id]
	if !ctx.Alive {
		err = ErrContextDead
		return
	}

	pc := ctx.Pc
	var word Word

	defer func() {
		if err != nil {
			ctx.Flags |= Fault(err)
			err = errors.Join(ErrOpcode{Pc: pc, Word: word}, err)
			if cpu.Verbose {
				log.Printf("cpu: %02x: %v", id, err)
			}
		}
	}()

	cpu.Ticks++

	var value uint32
	value, err = cpu.fetch(ctx, 2)
	if err != nil {
		return
	}
	word = Word(value)

	if cpu.Verbose {
		log.Printf("cpu: %02x %v: %v", id, pc, word)
	}

	switch word.Op() {
	case OP_HALT:
		ctx.Flags |= FLAG_HALT
	case OP_ALU:
		err = cpu.doAlu(ctx, word)
		if err != nil {
			err = errors.Join(ErrOpcodeAlu, err)
		}
	case OP_MOV:
		err = cpu.doMov(ctx, word)
		if err != nil {
			err = errors.Join(ErrOpcodeMov, err)
		}
	case OP_FPU:
		err = cpu.doFpu(ctx, word)
		if err != nil {
			err = errors.Join(ErrOpcodeFpu, err)
		}
	case OP_JMP:
		err = cpu.doJmp(ctx, word, pc)
		if err != nil {
			err = errors.Join(ErrOpcodeJmp, err)
		}
	case OP_CMP:
		err = cpu.doCmp(ctx, word)
		if err != nil {
			err = errors.Join(ErrOpcodeCmp, err)
		}
	case OP_INT:
		err = cpu.doInt(ctx)
		if err != nil {
			err = errors.Join(ErrOpcodeInt, err)
		}
	case OP_CALL:
		err = cpu.doCall(ctx, word)
		if err != nil {
			err = errors.Join(ErrOpcodeCall, err)
		}
	case OP_RET:
		var addr uint32
		addr, err = cpu.Pop(ctx, &ctx.Cp, 4)
		if err != nil {
			err = errors.Join(ErrOpcodeRet, err)
			return
		}
		ctx.Pc = mmu.Address(addr)
	default:
		err = ErrOpcodeIllegal
	}

	return
}

// doAlu executes 'a = (a op b) & mask'.
func (cpu *Cpu) doAlu(ctx *Context, word Word) (err error) {
	size := word.Size()
	if !size.Valid() {
		err = ErrSizeClass
		return
	}
	mask := size.Mask()

	op, err := cpu.fetch(ctx, 1)
	if err != nil {
		return
	}
	io, err := cpu.fetch(ctx, 1)
	if err != nil {
		return
	}

	var b uint32
	if word.Flag()&OPFLAG_IMMEDIATE != 0 {
		b, err = cpu.fetch(ctx, size.Bytes())
		if err != nil {
			return
		}
	} else {
		b, err = ctx.Reg(Register(io >> 4))
		if err != nil {
			return
		}
		b &= mask
	}

	dst := Register(io & 0xf)
	a, err := ctx.Reg(dst)
	if err != nil {
		return
	}

	switch AluOp(op) {
	case ALU_OP_ADD:
		a += b
	case ALU_OP_SUB:
		a -= b
	case ALU_OP_MUL:
		a *= b
	case ALU_OP_DIV:
		if b == 0 {
			err = ErrDivideByZero
			return
		}
		a /= b
	case ALU_OP_AND:
		a &= b
	case ALU_OP_OR:
		a |= b
	case ALU_OP_XOR:
		a ^= b
	case ALU_OP_SHL:
		a <<= b & 31
	case ALU_OP_SHR:
		a >>= b & 31
	default:
		err = ErrOpcodeIllegal
		return
	}

	err = ctx.SetReg(dst, a&mask)
	return
}

// location is a decoded MOV or CMP operand.
type location struct {
	kind  Kind
	reg   Register
	addr  mmu.Address
	value uint32 // KIND_IMD
}

// pairKinds decodes and validates the kinds of a MOV or CMP operand pair.
func (cpu *Cpu) pairKinds(ctx *Context) (first, second Kind, err error) {
	io, err := cpu.fetch(ctx, 1)
	if err != nil {
		return
	}

	first = Kind(io >> 4)
	second = Kind(io & 0xf)
	if first > KIND_IMD || second > KIND_IMD {
		err = ErrKind
		return
	}

	if first.Memory() && second.Memory() {
		err = ErrKind
		return
	}

	return
}

// locate decodes the location of one operand of a pair.
// When shared is set, the register is the high nibble of the selector
// byte fetched for the first operand.
func (cpu *Cpu) locate(ctx *Context, kind Kind, size Size, sel *uint32, shared bool) (loc location, err error) {
	loc.kind = kind

	switch kind {
	case KIND_REG, KIND_REG_PTR:
		if shared {
			loc.reg = Register((*sel >> 4) & 0xf)
		} else {
			*sel, err = cpu.fetch(ctx, 1)
			if err != nil {
				return
			}
			loc.reg = Register(*sel & 0xf)
		}
		if kind == KIND_REG_PTR {
			var value uint32
			value, err = ctx.Reg(loc.reg)
			loc.addr = mmu.Address(value)
		}
	case KIND_IMD_PTR:
		var value uint32
		value, err = cpu.fetch(ctx, 4)
		loc.addr = mmu.Address(value)
	case KIND_IMD:
		loc.value, err = cpu.fetch(ctx, size.Bytes())
	default:
		err = ErrKind
	}

	return
}

// load reads the value at a location.
func (cpu *Cpu) load(ctx *Context, loc location, size Size) (value uint32, err error) {
	switch loc.kind {
	case KIND_REG:
		value, err = ctx.Reg(loc.reg)
		value &= size.Mask()
	case KIND_REG_PTR, KIND_IMD_PTR:
		value, err = cpu.Memory.Peek(ctx, loc.addr, size.Bytes())
	case KIND_IMD:
		value = loc.value & size.Mask()
	default:
		err = ErrKind
	}

	return
}

// store writes a value to a location.
func (cpu *Cpu) store(ctx *Context, loc location, size Size, value uint32) (err error) {
	switch loc.kind {
	case KIND_REG:
		err = ctx.SetReg(loc.reg, value)
	case KIND_REG_PTR, KIND_IMD_PTR:
		err = cpu.Memory.Write(ctx, loc.addr, size.Bytes(), value)
	default:
		err = ErrKind
	}

	return
}

// doMov executes 'dst = src'.
func (cpu *Cpu) doMov(ctx *Context, word Word) (err error) {
	size := word.Size()
	if !size.Valid() {
		err = ErrSizeClass
		return
	}

	srcKind, dstKind, err := cpu.pairKinds(ctx)
	if err != nil {
		return
	}
	if dstKind == KIND_IMD {
		err = ErrKind
		return
	}

	var sel uint32
	src, err := cpu.locate(ctx, srcKind, size, &sel, false)
	if err != nil {
		return
	}
	value, err := cpu.load(ctx, src, size)
	if err != nil {
		return
	}

	dst, err := cpu.locate(ctx, dstKind, size, &sel, srcKind.Selector() && dstKind.Selector())
	if err != nil {
		return
	}

	err = cpu.store(ctx, dst, size, value)
	return
}

// signExtend interprets a masked value as signed at its size class.
func signExtend(value uint32, size Size) int32 {
	shift := 32 - 8*size.Bytes()
	return int32(value<<shift) >> shift
}

// doCmp compares two operands into the cmp bits.
func (cpu *Cpu) doCmp(ctx *Context, word Word) (err error) {
	size := word.Size()
	if !size.Valid() {
		err = ErrSizeClass
		return
	}

	aKind, bKind, err := cpu.pairKinds(ctx)
	if err != nil {
		return
	}

	var sel uint32
	aLoc, err := cpu.locate(ctx, aKind, size, &sel, false)
	if err != nil {
		return
	}
	a, err := cpu.load(ctx, aLoc, size)
	if err != nil {
		return
	}

	bLoc, err := cpu.locate(ctx, bKind, size, &sel, aKind.Selector() && bKind.Selector())
	if err != nil {
		return
	}
	b, err := cpu.load(ctx, bLoc, size)
	if err != nil {
		return
	}

	flag := word.Flag()
	if flag&OPFLAG_KEEP == 0 {
		ctx.Cmp = 0
	}

	var eq, lt bool
	if flag&OPFLAG_SIGNED != 0 {
		sa, sb := signExtend(a, size), signExtend(b, size)
		eq, lt = sa == sb, sa < sb
	} else {
		eq, lt = a == b, a < b
	}

	switch {
	case eq:
		ctx.Cmp |= CMP_EQ
	case lt:
		ctx.Cmp |= CMP_LT
	default:
		ctx.Cmp |= CMP_GT
	}

	return
}

// doFpu executes the FPU conversions and operations.
func (cpu *Cpu) doFpu(ctx *Context, word Word) (err error) {
	io, err := cpu.fetch(ctx, 1)
	if err != nil {
		return
	}

	lo := io & 0xf
	hi := io >> 4

	flag := word.Flag()
	switch FpuMode(flag & OPFLAG_FPU_MODE) {
	case FPU_MODE_ITOF:
		var value uint32
		value, err = ctx.Reg(Register(hi))
		if err != nil {
			return
		}
		err = ctx.SetFloat(FpuRegister(lo), float32(int32(value)))
	case FPU_MODE_FTOI:
		var value float32
		value, err = ctx.Float(FpuRegister(hi))
		if err != nil {
			return
		}
		err = ctx.SetReg(Register(lo), uint32(int32(value)))
	case FPU_MODE_OP:
		var a, b float32
		a, err = ctx.Float(FpuRegister(lo))
		if err != nil {
			return
		}
		b, err = ctx.Float(FpuRegister(hi))
		if err != nil {
			return
		}
		switch FpuOp(flag >> 3) {
		case FPU_OP_ADD:
			a += b
		case FPU_OP_SUB:
			a -= b
		case FPU_OP_MUL:
			a *= b
		case FPU_OP_DIV:
			a /= b
		default:
			err = ErrOpcodeIllegal
			return
		}
		err = ctx.SetFloat(FpuRegister(lo), a)
	default:
		err = ErrOpcodeIllegal
	}

	return
}

// source resolves the single operand of JMP and CALL.
func (cpu *Cpu) source(ctx *Context, src uint32, size Size) (value uint32, err error) {
	reg := Register(src >> 4)

	switch Kind(src & 0xf) {
	case KIND_REG:
		value, err = ctx.Reg(reg)
		value &= size.Mask()
	case KIND_REG_PTR:
		value, err = ctx.Reg(reg)
		if err != nil {
			return
		}
		value, err = cpu.Memory.Peek(ctx, mmu.Address(value), size.Bytes())
	case KIND_IMD_PTR:
		value, err = cpu.fetch(ctx, 4)
		if err != nil {
			return
		}
		value, err = cpu.Memory.Peek(ctx, mmu.Address(value), size.Bytes())
	case KIND_IMD:
		value, err = cpu.fetch(ctx, size.Bytes())
	default:
		err = ErrKind
	}

	return
}

// doJmp branches on the cmp bits. base is the address of the instruction.
func (cpu *Cpu) doJmp(ctx *Context, word Word, base mmu.Address) (err error) {
	size := word.Size()
	if !size.Valid() {
		err = ErrSizeClass
		return
	}

	src, err := cpu.fetch(ctx, 1)
	if err != nil {
		return
	}
	cond, err := cpu.fetch(ctx, 1)
	if err != nil {
		return
	}

	offset, err := cpu.source(ctx, src, size)
	if err != nil {
		return
	}

	flag := word.Flag()
	target := uint32(base)
	if flag&OPFLAG_ABSOLUTE != 0 {
		target = 0
	}
	if flag&OPFLAG_NEGATE != 0 {
		target -= offset
	} else {
		target += offset
	}

	mask := Cmp(cond & 0xf)
	var taken bool
	switch uint8(cond & 0xf0) {
	case COND_ANY:
		taken = ctx.Cmp&mask != 0
	case COND_NONE:
		taken = ctx.Cmp&mask == 0
	default:
		err = ErrCondition
		return
	}

	if taken {
		ctx.Pc = mmu.Address(target)
	}

	return
}

// doInt raises an interrupt.
func (cpu *Cpu) doInt(ctx *Context) (err error) {
	code, err := cpu.fetch(ctx, 4)
	if err != nil {
		return
	}

	if code < INT_PERIPHERAL || code > INT_PERIPHERAL_LAST {
		if cpu.Verbose {
			log.Printf("cpu: %02x: interrupt %#x ignored", ctx.Id, code)
		}
		return
	}

	if cpu.Interrupter != nil {
		cpu.Interrupter.Interrupt(ctx, uint8(code))
	}

	return
}

// doCall pushes the return address on the call stack and jumps.
func (cpu *Cpu) doCall(ctx *Context, word Word) (err error) {
	size := word.Size()
	if !size.Valid() {
		err = ErrSizeClass
		return
	}

	src, err := cpu.fetch(ctx, 1)
	if err != nil {
		return
	}

	target, err := cpu.source(ctx, src, size)
	if err != nil {
		return
	}

	err = cpu.Push(ctx, &ctx.Cp, 4, uint32(ctx.Pc))
	if err != nil {
		return
	}

	ctx.Pc = mmu.Address(target)
	return
}
