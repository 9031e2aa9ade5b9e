package cpu

import (
	"fmt"
	"strings"
)

// Opcode is one assembled line: an instruction or a data directive.
type Opcode struct {
	LineNo    int      // Source line number.
	Offset    int      // Byte offset from the program origin.
	Words     []string // Source words.
	Code      Code     // Encoded bytes.
	LinkLabel string   // Label resolved at link time, if any.

	link func(addr uint32) (Code, error)
}

// String returns a listing line for the opcode.
func (op *Opcode) String() string {
	return fmt.Sprintf("%06x: %-24s %v", op.Offset, fmt.Sprintf("% x", []byte(op.Code)), strings.Join(op.Words, " "))
}

// Program is an assembled program image.
type Program struct {
	Origin  uint32   // Address of the first byte.
	Opcodes []Opcode // Assembled lines, in address order.
}

// Debug finds the opcode at an address, or nil.
func (prog *Program) Debug(pc uint32) (op *Opcode) {
	if pc < prog.Origin {
		return
	}
	offset := int(pc - prog.Origin)

	for n := range prog.Opcodes {
		code := &prog.Opcodes[n]
		if offset >= code.Offset && offset < code.Offset+len(code.Code) {
			op = code
			break
		}
	}

	return
}

// Binary returns the program image, starting at the origin.
func (prog *Program) Binary() (bin []byte) {
	for _, op := range prog.Opcodes {
		bin = append(bin, op.Code...)
	}

	return
}

// String returns the program listing.
func (prog *Program) String() string {
	var text strings.Builder
	for n := range prog.Opcodes {
		text.WriteString(prog.Opcodes[n].String())
		text.WriteString("\n")
	}
	return text.String()
}
