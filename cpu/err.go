package cpu

import (
	"errors"

	"github.com/ezrec/epu/mmu"
	"github.com/ezrec/epu/translate"
)

var f = translate.From

var (
	// Context errors
	ErrRegister     = errors.New(f("register invalid"))
	ErrContextDead  = errors.New(f("context not alive"))
	ErrDivideByZero = errors.New(f("divide by zero"))
	ErrSizeClass    = errors.New(f("size class invalid"))
	ErrKind         = errors.New(f("operand kind invalid"))
	ErrCondition    = errors.New(f("condition invalid"))

	// Instruction decode errors
	ErrOpcodeIllegal = errors.New(f("illegal"))
	ErrOpcodeAlu     = errors.New(f("alu"))
	ErrOpcodeMov     = errors.New(f("mov"))
	ErrOpcodeFpu     = errors.New(f("fpu"))
	ErrOpcodeJmp     = errors.New(f("jmp"))
	ErrOpcodeCmp     = errors.New(f("cmp"))
	ErrOpcodeInt     = errors.New(f("int"))
	ErrOpcodeCall    = errors.New(f("call"))
	ErrOpcodeRet     = errors.New(f("ret"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrMacroSyntax        = errors.New(f(".macro syntax"))
	ErrMacroNesting       = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate     = errors.New(f(".macro duplicated"))
	ErrMacroLonely        = errors.New(f(".macro without .endm"))
	ErrMacroLonelyEndm    = errors.New(f(".endm without .macro"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeMissingArgs  = errors.New(f("missing arguments"))
	ErrOpcodeInvalid      = errors.New(f("opcode invalid"))
	ErrOperandInvalid     = errors.New(f("operand invalid"))
	ErrSuffixInvalid      = errors.New(f("suffix invalid"))
	ErrDirectiveInvalid   = errors.New(f("directive invalid"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
)

// Fault maps an execution error to the context flag it raises.
func Fault(err error) (flag Flags) {
	switch {
	case err == nil:
		flag = 0
	case errors.Is(err, mmu.ErrWrite):
		flag = FLAG_WRITE_ERROR
	case errors.Is(err, mmu.ErrRead), errors.Is(err, ErrRegister):
		flag = FLAG_READ_ERROR
	default:
		flag = FLAG_ILLEGAL
	}
	return
}

// ErrOpcode is the instruction that faulted.
type ErrOpcode struct {
	Pc   mmu.Address
	Word Word
}

func (eo ErrOpcode) Error() string {
	return f("bad opcode %v at %v", eo.Word, eo.Pc)
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err.Error())
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}
