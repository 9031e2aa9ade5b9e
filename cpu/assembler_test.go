package cpu

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/epu/mmu"
)

func concat(codes ...Code) (bin []byte) {
	for _, code := range codes {
		bin = append(bin, code...)
	}
	return
}

func TestAssemblerEncoding(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		line string
		code Code
	}){
		{"halt", MakeCodeHalt()},
		{"ret", MakeCodeRet()},
		{"add ra, 5", MakeCodeAlu(SIZE_32, ALU_OP_ADD, REG_RA, Imd(5))},
		{"sub.8 rb rc", MakeCodeAlu(SIZE_8, ALU_OP_SUB, REG_RB, Reg(REG_RC))},
		{"shl.16 uh 3", MakeCodeAlu(SIZE_16, ALU_OP_SHL, REG_UH, Imd(3))},
		{"mov ra, rb", MakeCodeMov(SIZE_32, Reg(REG_RA), Reg(REG_RB))},
		{"mov.8 *ra, 'A'", MakeCodeMov(SIZE_8, RegPtr(REG_RA), Imd('A'))},
		{"mov.16 rc, *0x1100_0010", MakeCodeMov(SIZE_16, Reg(REG_RC), ImdPtr(0x11000010))},
		{"cmp.s rd -1", MakeCodeCmp(SIZE_32, OPFLAG_SIGNED, Reg(REG_RD), Imd(0xffffffff))},
		{"cmp.k.s.8 *rd ua", MakeCodeCmp(SIZE_8, OPFLAG_SIGNED|OPFLAG_KEEP, RegPtr(REG_RD), Reg(REG_UA))},
		{"itof fc ra", MakeCodeItof(FPU_FC, REG_RA)},
		{"ftoi rb fd", MakeCodeFtoi(REG_RB, FPU_FD)},
		{"fdiv fa fb", MakeCodeFpu(FPU_OP_DIV, FPU_FA, FPU_FB)},
		{"jmp ra", MakeCodeJmp(SIZE_32, OPFLAG_ABSOLUTE, COND_NONE, Reg(REG_RA))},
		{"jle.16 *0x40", MakeCodeJmp(SIZE_16, OPFLAG_ABSOLUTE, COND_ANY|uint8(CMP_LT|CMP_EQ), ImdPtr(0x40))},
		{"call *rc", MakeCodeCall(SIZE_32, RegPtr(REG_RC))},
		{"int 0xff0f", MakeCodeInt(0xff0f)},
		{"int $(0xff00 + 16)", MakeCodeInt(0xff10)},
		{".byte 1 2 0x33", Code{1, 2, 0x33}},
		{".half 0x1234", Code{0x34, 0x12}},
		{".word ~0", Code{0xff, 0xff, 0xff, 0xff}},
	}

	for _, entry := range table {
		asm := &Assembler{}
		prog, err := asm.Parse(strings.NewReader(entry.line))
		if !assert.NoError(err, entry.line) {
			continue
		}
		assert.Equal([]byte(entry.code), prog.Binary(), entry.line)
	}
}

func TestAssemblerLabels(t *testing.T) {
	assert := assert.New(t)

	source := `
; Jumps are relative, calls absolute.
start:
	jmp.8 forward      ; 0x00
	halt               ; 0x05
forward:
	call helper        ; 0x07
back:	jne.16 start   ; 0x0e
	mov ra, helper     ; 0x14
helper: ret            ; 0x1c
`

	asm := &Assembler{Origin: uint32(mmu.BOUND_CODE_ENTRY)}
	prog, err := asm.Parse(strings.NewReader(source))
	if !assert.NoError(err) {
		return
	}

	helper := uint32(mmu.BOUND_CODE_ENTRY) + 0x1c
	expect := concat(
		MakeCodeJmp(SIZE_8, 0, COND_NONE, Imd(7)),
		MakeCodeHalt(),
		MakeCodeCall(SIZE_32, Imd(helper)),
		MakeCodeJmp(SIZE_16, OPFLAG_NEGATE, COND_ANY|uint8(CMP_LT|CMP_GT), Imd(0x0e)),
		MakeCodeMov(SIZE_32, Reg(REG_RA), Imd(helper)),
		MakeCodeRet(),
	)
	assert.Equal(expect, prog.Binary())
	assert.Equal(map[string]int{"start": 0, "forward": 7, "back": 0x0e, "helper": 0x1c}, asm.Label)

	op := prog.Debug(uint32(mmu.BOUND_CODE_ENTRY) + 0x10)
	if assert.NotNil(op) {
		assert.Equal(0x0e, op.Offset)
		assert.Equal("start", op.LinkLabel)
	}
	assert.Nil(prog.Debug(0))
	assert.Contains(prog.String(), "000007:")
}

func TestAssemblerMacro(t *testing.T) {
	assert := assert.New(t)

	source := `
.equ COUNT 3
.macro inc REG
	add REG, 1
.endm
.macro spin REG
@loop:
	sub REG, 1
	cmp REG, 0
	jne @loop
.endm
	mov rb, COUNT
	inc rb
	spin rb
	halt
`

	asm := &Assembler{}
	asm.Predefine("BASE", "0x100")
	prog, err := asm.Parse(strings.NewReader(source))
	if !assert.NoError(err) {
		return
	}

	expect := concat(
		MakeCodeMov(SIZE_32, Reg(REG_RB), Imd(3)),
		MakeCodeAlu(SIZE_32, ALU_OP_ADD, REG_RB, Imd(1)),
		MakeCodeAlu(SIZE_32, ALU_OP_SUB, REG_RB, Imd(1)),
		MakeCodeCmp(SIZE_32, 0, Reg(REG_RB), Imd(0)),
		MakeCodeJmp(SIZE_32, OPFLAG_NEGATE, COND_ANY|uint8(CMP_LT|CMP_GT), Imd(16)),
		MakeCodeHalt(),
	)
	assert.Equal(expect, prog.Binary())

	_, err = asm.Parse(strings.NewReader("mov ra, $(BASE * 2)"))
	assert.NoError(err)
	assert.Equal(MakeCodeMov(SIZE_32, Reg(REG_RA), Imd(0x200)), asm.Opcode[0].Code)
}

func TestAssemblerErrors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		source string
		err    error
	}){
		{"frob ra", ErrInstructionInvalid},
		{"mov 5, ra", ErrOperandInvalid},
		{"mov *ra, *0x10", ErrOperandInvalid},
		{"add *ra, 1", ErrOperandInvalid},
		{"add ra, *rb", ErrOperandInvalid},
		{"add.q ra, 1", ErrSuffixInvalid},
		{"add.s ra, 1", ErrSuffixInvalid},
		{"halt ra", ErrOpcodeExtraArgs},
		{"mov ra", ErrOpcodeMissingArgs},
		{"itof ra ra", ErrOperandInvalid},
		{"jmp nowhere", ErrLabelMissing("nowhere")},
		{"a:\na:", ErrLabelDuplicate},
		{".equ A 1\n.equ A 2", ErrEquateDuplicate},
		{".equ A", ErrEquateSyntax},
		{".macro m\n", ErrMacroLonely},
		{".endm", ErrMacroLonelyEndm},
		{".macro m\n.macro n\n.endm", ErrMacroNesting},
		{".bogus 1", ErrDirectiveInvalid},
		{"mov.8 ra, far\n.byte 0\nfar:", nil},
		{"jmp.8 far\n.word 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0\nfar:", ErrOperandInvalid},
	}

	for _, entry := range table {
		asm := &Assembler{}
		_, err := asm.Parse(strings.NewReader(entry.source))
		if entry.err == nil {
			assert.NoError(err, entry.source)
			continue
		}
		assert.ErrorIs(err, entry.err, entry.source)
		var syntax *ErrSyntax
		assert.ErrorAs(err, &syntax, entry.source)
	}
}

func TestAssemblerRun(t *testing.T) {
	assert := assert.New(t)

	source := `
	.equ TOTAL ra
	mov TOTAL, 0
	mov rb, 10
loop:
	add TOTAL, rb
	sub rb, 1
	cmp rb, 0
	jne loop
	mov.16 *0x0000_0040, TOTAL
	call store
	halt
store:
	mov *rc, rb
	ret
`

	asm := &Assembler{Origin: uint32(mmu.BOUND_CODE_ENTRY)}
	prog, err := asm.Parse(strings.NewReader(source))
	if !assert.NoError(err) {
		return
	}

	cpu := NewCpu(mmu.NewMemory())
	assert.NoError(cpu.Memory.Load(testId, mmu.POOL_CODE, 0, prog.Binary()))
	ctx := cpu.Spawn(testId, testSpace, mmu.BOUND_CODE_ENTRY)
	ctx.Cp = 0x1000
	ctx.Register[REG_RC] = 0x80

	for range 1000 {
		if ctx.Flags.Stopped() {
			break
		}
		assert.NoError(cpu.Step(testId), prog.Debug(uint32(ctx.Pc)))
	}

	assert.Equal(FLAG_HALT, ctx.Flags)
	assert.Equal(uint32(55), ctx.Register[REG_RA])
	data := &cpu.Memory.Process[testId].Data
	assert.True(bytes.Equal([]byte{55, 0}, data[0x40:0x42]))
	assert.Equal(byte(0), data[0x80])
	assert.Equal(mmu.Address(0x1000), ctx.Cp)
}
