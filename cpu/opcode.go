package cpu

import (
	"encoding/binary"
	"fmt"
)

// Op is the low byte of an instruction word.
type Op uint8

//go:generate go tool stringer -linecomment -type=Op,AluOp,FpuOp,FpuMode,Kind,Size -output=opcode_string.go
const (
	OP_HALT = Op(0) // halt
	OP_ALU  = Op(1) // alu
	OP_MOV  = Op(2) // mov
	OP_FPU  = Op(3) // fpu
	OP_JMP  = Op(4) // jmp
	OP_CMP  = Op(5) // cmp
	OP_INT  = Op(6) // int
	OP_CALL = Op(7) // call
	OP_RET  = Op(8) // ret
)

// AluOp is an ALU operation.
type AluOp uint8

const (
	ALU_OP_ADD = AluOp(0) // add
	ALU_OP_SUB = AluOp(1) // sub
	ALU_OP_MUL = AluOp(2) // mul
	ALU_OP_DIV = AluOp(3) // div
	ALU_OP_AND = AluOp(4) // and
	ALU_OP_OR  = AluOp(5) // or
	ALU_OP_XOR = AluOp(6) // xor
	ALU_OP_SHL = AluOp(7) // shl
	ALU_OP_SHR = AluOp(8) // shr
)

// FpuOp is a binary FPU operation.
type FpuOp uint8

const (
	FPU_OP_ADD = FpuOp(0) // fadd
	FPU_OP_SUB = FpuOp(1) // fsub
	FPU_OP_MUL = FpuOp(2) // fmul
	FPU_OP_DIV = FpuOp(3) // fdiv
)

// FpuMode is the FPU sub-operation, in the low 3 opflag bits.
type FpuMode uint8

const (
	FPU_MODE_ITOF = FpuMode(0) // itof
	FPU_MODE_FTOI = FpuMode(1) // ftoi
	FPU_MODE_OP   = FpuMode(2) // op
)

// Kind is an operand addressing kind.
type Kind uint8

const (
	KIND_REG     = Kind(0) // reg
	KIND_REG_PTR = Kind(1) // *reg
	KIND_IMD_PTR = Kind(2) // *imd
	KIND_IMD     = Kind(3) // imd
)

// Memory is true for the indirect kinds.
func (kind Kind) Memory() bool {
	return kind == KIND_REG_PTR || kind == KIND_IMD_PTR
}

// Selector is true for kinds encoded with a register selector nibble.
func (kind Kind) Selector() bool {
	return kind == KIND_REG || kind == KIND_REG_PTR
}

// Size is an operand size class.
type Size uint8

const (
	SIZE_8  = Size(0) // 8
	SIZE_16 = Size(1) // 16
	SIZE_32 = Size(2) // 32
)

// Valid is true for the defined size classes.
func (sz Size) Valid() bool {
	return sz <= SIZE_32
}

// Bytes is the operand width in bytes.
func (sz Size) Bytes() int {
	return 1 << sz
}

// Mask is the operand value mask.
func (sz Size) Mask() uint32 {
	return 0xffffffff >> (32 - 8*sz.Bytes())
}

// Opflag bits. Their meaning depends on the opcode.
const (
	OPFLAG_SIZE_MASK = uint8(0x0f)
	OPFLAG_IMMEDIATE = uint8(0x10) // alu: b operand is an immediate
	OPFLAG_ABSOLUTE  = uint8(0x10) // jmp: target is not pc relative
	OPFLAG_SIGNED    = uint8(0x10) // cmp: signed comparison
	OPFLAG_NEGATE    = uint8(0x20) // jmp: subtract the offset
	OPFLAG_KEEP      = uint8(0x20) // cmp: accumulate into cmp bits
	OPFLAG_FPU_MODE  = uint8(0x07)
)

// Jump condition byte, high nibble.
const (
	COND_ANY  = uint8(0x00) // Branch when any masked cmp bit is set.
	COND_NONE = uint8(0x10) // Branch when no masked cmp bit is set.
)

// Interrupt codes at or above INT_PERIPHERAL are peripheral calls.
const (
	INT_PERIPHERAL      = uint32(0xff00)
	INT_PERIPHERAL_LAST = uint32(0xffff)
)

// Word is a fetched instruction word.
type Word uint16

// Op returns the opcode byte.
func (word Word) Op() Op {
	return Op(word & 0xff)
}

// Flag returns the opflag byte.
func (word Word) Flag() uint8 {
	return uint8(word >> 8)
}

// Size returns the operand size class.
func (word Word) Size() Size {
	return Size(word.Flag() & OPFLAG_SIZE_MASK)
}

// String returns the word as op.flag.
func (word Word) String() string {
	return fmt.Sprintf("%v.%02x", word.Op(), word.Flag())
}

// Operand is an instruction operand, used by the encoders.
type Operand struct {
	Kind  Kind
	Reg   Register // KIND_REG, KIND_REG_PTR
	Value uint32   // KIND_IMD_PTR address, KIND_IMD value
}

// Reg is a register operand.
func Reg(reg Register) Operand {
	return Operand{Kind: KIND_REG, Reg: reg}
}

// RegPtr is a register indirect operand.
func RegPtr(reg Register) Operand {
	return Operand{Kind: KIND_REG_PTR, Reg: reg}
}

// ImdPtr is an absolute address operand.
func ImdPtr(addr uint32) Operand {
	return Operand{Kind: KIND_IMD_PTR, Value: addr}
}

// Imd is an immediate operand.
func Imd(value uint32) Operand {
	return Operand{Kind: KIND_IMD, Value: value}
}

// String returns the assembly form of the operand.
func (opnd Operand) String() (text string) {
	switch opnd.Kind {
	case KIND_REG:
		text = opnd.Reg.String()
	case KIND_REG_PTR:
		text = "*" + opnd.Reg.String()
	case KIND_IMD_PTR:
		text = fmt.Sprintf("*%#x", opnd.Value)
	case KIND_IMD:
		text = fmt.Sprintf("%#x", opnd.Value)
	}
	return
}

// Code is an encoded instruction.
type Code []byte

// Word returns the instruction word of the code.
func (code Code) Word() Word {
	if len(code) < 2 {
		return 0
	}
	return Word(binary.LittleEndian.Uint16(code))
}

func (code Code) imd(size Size, value uint32) Code {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], value)
	return append(code, buf[:size.Bytes()]...)
}

// makeCode starts an instruction.
func makeCode(op Op, flag uint8) Code {
	return Code{byte(op), flag}
}

// pair encodes the operands of MOV and CMP. A register based first operand
// lends the high nibble of its selector byte to a register based second
// operand.
func (code Code) pair(size Size, first, second Operand) Code {
	code = append(code, byte(first.Kind)<<4|byte(second.Kind))
	shared := first.Kind.Selector() && second.Kind.Selector()

	for n, opnd := range []Operand{first, second} {
		switch opnd.Kind {
		case KIND_REG, KIND_REG_PTR:
			if n == 0 {
				sel := byte(opnd.Reg & 0xf)
				if shared {
					sel |= byte(second.Reg&0xf) << 4
				}
				code = append(code, sel)
			} else if !shared {
				code = append(code, byte(opnd.Reg&0xf))
			}
		case KIND_IMD_PTR:
			code = code.imd(SIZE_32, opnd.Value)
		case KIND_IMD:
			code = code.imd(size, opnd.Value)
		}
	}

	return code
}

// single encodes the source operand of JMP and CALL, after the
// selector byte (and condition byte).
func (code Code) single(size Size, src Operand) Code {
	switch src.Kind {
	case KIND_IMD_PTR:
		code = code.imd(SIZE_32, src.Value)
	case KIND_IMD:
		code = code.imd(size, src.Value)
	}
	return code
}

// MakeCodeHalt creates a HALT instruction.
func MakeCodeHalt() Code {
	return makeCode(OP_HALT, 0)
}

// MakeCodeAlu creates an ALU instruction. b is a register or an immediate.
func MakeCodeAlu(size Size, op AluOp, a Register, b Operand) Code {
	flag := uint8(size)
	if b.Kind == KIND_IMD {
		flag |= OPFLAG_IMMEDIATE
		code := append(makeCode(OP_ALU, flag), byte(op), byte(a&0xf))
		return code.imd(size, b.Value)
	}
	return append(makeCode(OP_ALU, flag), byte(op), byte(a&0xf)|byte(b.Reg&0xf)<<4)
}

// MakeCodeMov creates a MOV instruction.
func MakeCodeMov(size Size, dst, src Operand) Code {
	return makeCode(OP_MOV, uint8(size)).pair(size, src, dst)
}

// MakeCodeCmp creates a CMP instruction. flag may carry OPFLAG_SIGNED and
// OPFLAG_KEEP.
func MakeCodeCmp(size Size, flag uint8, a, b Operand) Code {
	return makeCode(OP_CMP, uint8(size)|flag).pair(size, a, b)
}

// MakeCodeItof creates an FPU int-to-float conversion.
func MakeCodeItof(dst FpuRegister, src Register) Code {
	return append(makeCode(OP_FPU, uint8(FPU_MODE_ITOF)), byte(dst&0xf)|byte(src&0xf)<<4)
}

// MakeCodeFtoi creates an FPU float-to-int conversion.
func MakeCodeFtoi(dst Register, src FpuRegister) Code {
	return append(makeCode(OP_FPU, uint8(FPU_MODE_FTOI)), byte(dst&0xf)|byte(src&0xf)<<4)
}

// MakeCodeFpu creates a binary FPU operation, a = a op b.
func MakeCodeFpu(op FpuOp, a, b FpuRegister) Code {
	return append(makeCode(OP_FPU, uint8(FPU_MODE_OP)|uint8(op)<<3), byte(a&0xf)|byte(b&0xf)<<4)
}

// MakeCodeJmp creates a JMP instruction. flag may carry OPFLAG_ABSOLUTE and
// OPFLAG_NEGATE; cond is COND_ANY or COND_NONE or'd with a cmp mask.
func MakeCodeJmp(size Size, flag uint8, cond uint8, src Operand) Code {
	code := append(makeCode(OP_JMP, uint8(size)|flag), byte(src.Kind)|byte(src.Reg&0xf)<<4, cond)
	return code.single(size, src)
}

// MakeCodeInt creates an INT instruction.
func MakeCodeInt(interrupt uint32) Code {
	return makeCode(OP_INT, 0).imd(SIZE_32, interrupt)
}

// MakeCodeCall creates a CALL instruction.
func MakeCodeCall(size Size, src Operand) Code {
	code := append(makeCode(OP_CALL, uint8(size)), byte(src.Kind)|byte(src.Reg&0xf)<<4)
	return code.single(size, src)
}

// MakeCodeRet creates a RET instruction.
func MakeCodeRet() Code {
	return makeCode(OP_RET, 0)
}
