// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
}

// Assembler is a single pass macro assembler for the EPU.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Origin  uint32   // Address the program is loaded at.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of labels to byte offsets.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// regMap maps register names to registers.
var regMap = func() map[string]Register {
	regs := make(map[string]Register, REGISTER_COUNT)
	for n := range REGISTER_COUNT {
		regs[Register(n).String()] = Register(n)
	}
	return regs
}()

// fpuMap maps FPU register names to FPU registers.
var fpuMap = map[string]FpuRegister{
	"fa": FPU_FA,
	"fb": FPU_FB,
	"fc": FPU_FC,
	"fd": FPU_FD,
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value uint32, err error) {
	if len(word) == 0 {
		err = ErrParseNumber(word)
		return
	}
	invert := false
	if word[0] == '~' {
		invert = true
		word = word[1:]
	}
	v64, err := strconv.ParseInt(word, 0, 64)
	if err != nil || v64 > 0xffffffff || v64 < -int64(0x80000000) {
		err = ErrParseNumber(word)
		return
	}

	value = uint32(v64)
	if invert {
		value = ^value
	}

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint32, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value32 uint32
		value32, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt64(int64(value32))
	}
	err = nil
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = uint32(st_int64)
	return
}

var (
	reCharacter  = regexp.MustCompile(`'\\?[^']'`)
	reExpression = regexp.MustCompile(`\$\([^\$]*\)`)
)

// parseLine parses a single line as an opcode.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	line = reCharacter.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "t":
				str = "\t"
			case "e":
				str = "\033"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	line = reExpression.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#v", value)
	})
	if err != nil {
		return
	}

	words = strings.Fields(strings.ReplaceAll(line, ",", " "))

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Equates may also appear behind an indirection.
		prefix := ""
		if strings.HasPrefix(word, "*") {
			prefix, word = "*", word[1:]
		}
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = prefix + equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		asm.Label[label] = asm.currentOffset()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = args[n]
		}
		defer func() { asm.Equate = old_equate }()

		// '@' makes labels unique to each expansion.
		unique := fmt.Sprintf("%v_%v_", name, lineno)
		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", unique)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// currentOffset gets the byte offset of the next opcode.
func (asm *Assembler) currentOffset() int {
	if len(asm.Opcode) == 0 {
		return 0
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Offset + len(last.Code)
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Label = make(map[string]int, 16)
	asm.Opcode = asm.Opcode[:0]
	asm.Macro = make(map[string](*Macro))
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("asm: %v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := strings.Fields(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if op.link == nil {
			continue
		}
		label := op.LinkLabel
		offset, ok := asm.Label[label]
		if !ok {
			lineno = op.LineNo
			line = strings.Join(op.Words, " ")
			err = ErrLabelMissing(label)
			return
		}
		var code Code
		code, err = op.link(asm.Origin + uint32(offset))
		if err != nil {
			lineno = op.LineNo
			line = strings.Join(op.Words, " ")
			return
		}
		if len(code) != len(op.Code) {
			log.Fatalf("asm: label '%s' changed the size of line %d: %v", label, op.LineNo, op.Words)
		}
		op.Code = code
	}

	prog = &Program{
		Origin:  asm.Origin,
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// isLabel is true for words that can only be a label reference.
func isLabel(word string) bool {
	if len(word) == 0 {
		return false
	}
	c := word[0]
	return c == '_' || c == '.' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// operand parses an operand word. A label is returned when the operand's
// value is only known at link time.
func (asm *Assembler) operand(word string) (opnd Operand, label string, err error) {
	if reg, ok := regMap[word]; ok {
		opnd = Reg(reg)
		return
	}

	ptr := strings.HasPrefix(word, "*")
	if ptr {
		word = word[1:]
		if reg, ok := regMap[word]; ok {
			opnd = RegPtr(reg)
			return
		}
	}

	opnd.Kind = KIND_IMD
	if ptr {
		opnd.Kind = KIND_IMD_PTR
	}

	value, err := asm.valueOf(word)
	if err != nil {
		if !isLabel(word) {
			return
		}
		err = nil
		label = word
		return
	}
	opnd.Value = value

	return
}

// fpuRegister parses an FPU register name.
func fpuRegister(word string) (reg FpuRegister, err error) {
	reg, ok := fpuMap[word]
	if !ok {
		err = ErrOperandInvalid
	}
	return
}

// mnemonic splits an opcode word into its name, size and flag suffixes.
func mnemonic(word string) (name string, size Size, flag uint8, err error) {
	parts := strings.Split(word, ".")
	name = parts[0]
	size = SIZE_32
	for _, suffix := range parts[1:] {
		switch suffix {
		case "8":
			size = SIZE_8
		case "16":
			size = SIZE_16
		case "32":
			size = SIZE_32
		case "s":
			flag |= OPFLAG_SIGNED
		case "k":
			flag |= OPFLAG_KEEP
		default:
			err = ErrSuffixInvalid
			return
		}
	}
	return
}

// aluMap maps ALU opcode names.
var aluMap = map[string]AluOp{
	"add": ALU_OP_ADD,
	"sub": ALU_OP_SUB,
	"mul": ALU_OP_MUL,
	"div": ALU_OP_DIV,
	"and": ALU_OP_AND,
	"or":  ALU_OP_OR,
	"xor": ALU_OP_XOR,
	"shl": ALU_OP_SHL,
	"shr": ALU_OP_SHR,
}

// fpuOpMap maps FPU opcode names.
var fpuOpMap = map[string]FpuOp{
	"fadd": FPU_OP_ADD,
	"fsub": FPU_OP_SUB,
	"fmul": FPU_OP_MUL,
	"fdiv": FPU_OP_DIV,
}

// jmpMap maps jump names to their condition byte.
var jmpMap = map[string]uint8{
	"jmp": COND_NONE,
	"jeq": COND_ANY | uint8(CMP_EQ),
	"jne": COND_ANY | uint8(CMP_GT|CMP_LT),
	"jgt": COND_ANY | uint8(CMP_GT),
	"jge": COND_ANY | uint8(CMP_GT|CMP_EQ),
	"jlt": COND_ANY | uint8(CMP_LT),
	"jle": COND_ANY | uint8(CMP_LT|CMP_EQ),
}

// dataMap maps data directives to their element size.
var dataMap = map[string]Size{
	".byte": SIZE_8,
	".half": SIZE_16,
	".word": SIZE_32,
}

// fits checks that an immediate can be encoded at a size.
func fits(value uint32, size Size) (err error) {
	if value&^size.Mask() != 0 {
		err = ErrOperandInvalid
	}
	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var code Code
	var label string
	var link func(addr uint32) (Code, error)

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words
	offset := asm.currentOffset()

	defer func() {
		if err != nil || len(code) == 0 {
			return
		}
		opcode := Opcode{LineNo: lineno, Offset: offset, Words: initial_words, Code: code, LinkLabel: label, link: link}
		asm.Opcode = append(asm.Opcode, opcode)
	}()

	if size, ok := dataMap[words[0]]; ok {
		if len(words) < 2 {
			err = ErrOpcodeMissingArgs
			return
		}
		for _, word := range words[1:] {
			var value uint32
			value, err = asm.valueOf(word)
			if err != nil {
				return
			}
			code = code.imd(size, value)
		}
		return
	}

	if strings.HasPrefix(words[0], ".") {
		err = ErrDirectiveInvalid
		return
	}

	name, size, flag, err := mnemonic(words[0])
	if err != nil {
		return
	}
	if flag != 0 && name != "cmp" {
		err = ErrSuffixInvalid
		return
	}

	args := words[1:]
	nargs := func(n int) (err error) {
		switch {
		case len(args) < n:
			err = ErrOpcodeMissingArgs
		case len(args) > n:
			err = ErrOpcodeExtraArgs
		}
		return
	}

	// encode the operands, arranging for at most one label to be linked.
	encode := func(opnds []Operand, labels []string, build func(opnds []Operand) Code) (err error) {
		at := -1
		for n, lbl := range labels {
			if len(lbl) == 0 {
				continue
			}
			if at >= 0 {
				err = ErrOperandInvalid
				return
			}
			at, label = n, lbl
		}
		code = build(opnds)
		if at >= 0 {
			link = func(addr uint32) (linked Code, err error) {
				if opnds[at].Kind == KIND_IMD {
					err = fits(addr, size)
					if err != nil {
						return
					}
				}
				opnds[at].Value = addr
				linked = build(opnds)
				return
			}
		}
		return
	}

	parse := func(args []string) (opnds []Operand, labels []string, err error) {
		opnds = make([]Operand, len(args))
		labels = make([]string, len(args))
		for n, arg := range args {
			opnds[n], labels[n], err = asm.operand(arg)
			if err != nil {
				return
			}
		}
		return
	}

	aluOp, isAlu := aluMap[name]
	fpuOp, isFpu := fpuOpMap[name]
	cond, isJmp := jmpMap[name]

	var opnds []Operand
	var labels []string

	switch {
	case name == "halt":
		if err = nargs(0); err != nil {
			return
		}
		code = MakeCodeHalt()
	case name == "ret":
		if err = nargs(0); err != nil {
			return
		}
		code = MakeCodeRet()
	case name == "int":
		if err = nargs(1); err != nil {
			return
		}
		var value uint32
		value, err = asm.valueOf(args[0])
		if err != nil {
			return
		}
		code = MakeCodeInt(value)
	case isAlu:
		if err = nargs(2); err != nil {
			return
		}
		dst, ok := regMap[args[0]]
		if !ok {
			err = ErrOperandInvalid
			return
		}
		opnds, labels, err = parse(args[1:])
		if err != nil {
			return
		}
		if opnds[0].Kind.Memory() {
			err = ErrOperandInvalid
			return
		}
		err = encode(opnds, labels, func(opnds []Operand) Code {
			return MakeCodeAlu(size, aluOp, dst, opnds[0])
		})
	case name == "mov" || name == "cmp":
		if err = nargs(2); err != nil {
			return
		}
		opnds, labels, err = parse(args)
		if err != nil {
			return
		}
		// The executor faults on these.
		if opnds[0].Kind.Memory() && opnds[1].Kind.Memory() {
			err = ErrOperandInvalid
			return
		}
		if name == "mov" && opnds[0].Kind == KIND_IMD {
			err = ErrOperandInvalid
			return
		}
		err = encode(opnds, labels, func(opnds []Operand) Code {
			if name == "mov" {
				return MakeCodeMov(size, opnds[0], opnds[1])
			}
			return MakeCodeCmp(size, flag, opnds[0], opnds[1])
		})
	case name == "itof":
		if err = nargs(2); err != nil {
			return
		}
		var dst FpuRegister
		dst, err = fpuRegister(args[0])
		if err != nil {
			return
		}
		src, ok := regMap[args[1]]
		if !ok {
			err = ErrOperandInvalid
			return
		}
		code = MakeCodeItof(dst, src)
	case name == "ftoi":
		if err = nargs(2); err != nil {
			return
		}
		dst, ok := regMap[args[0]]
		if !ok {
			err = ErrOperandInvalid
			return
		}
		var src FpuRegister
		src, err = fpuRegister(args[1])
		if err != nil {
			return
		}
		code = MakeCodeFtoi(dst, src)
	case isFpu:
		if err = nargs(2); err != nil {
			return
		}
		var a, b FpuRegister
		a, err = fpuRegister(args[0])
		if err != nil {
			return
		}
		b, err = fpuRegister(args[1])
		if err != nil {
			return
		}
		code = MakeCodeFpu(fpuOp, a, b)
	case isJmp:
		if err = nargs(1); err != nil {
			return
		}
		opnds, labels, err = parse(args)
		if err != nil {
			return
		}
		if len(labels[0]) == 0 || opnds[0].Kind != KIND_IMD {
			err = encode(opnds, labels, func(opnds []Operand) Code {
				return MakeCodeJmp(size, OPFLAG_ABSOLUTE, cond, opnds[0])
			})
			return
		}
		// Label targets are relative to the start of the instruction.
		label = labels[0]
		base := asm.Origin + uint32(offset)
		relative := func(addr uint32) (code Code, err error) {
			var negate uint8
			delta := addr - base
			if addr < base {
				negate = OPFLAG_NEGATE
				delta = base - addr
			}
			err = fits(delta, size)
			code = MakeCodeJmp(size, negate, cond, Imd(delta))
			return
		}
		code, _ = relative(base)
		link = relative
	case name == "call":
		if err = nargs(1); err != nil {
			return
		}
		opnds, labels, err = parse(args)
		if err != nil {
			return
		}
		err = encode(opnds, labels, func(opnds []Operand) Code {
			return MakeCodeCall(size, opnds[0])
		})
	default:
		err = ErrInstructionInvalid
		return
	}

	return
}
