// Package cpu implements the execution engine and assembler of the EPU.
//
// The machine multiplexes up to 256 execution contexts. Each context has
// sixteen 32-bit registers (ra-rh, ua-uh), four single precision FPU
// registers (fa-fd), a program counter, a data stack pointer, a call stack
// pointer, sticky comparison bits and status flags. Pointers are full
// logical addresses routed through the mmu package.
//
// Faults never abort the host: they are recorded as status flags on the
// faulting context, and the scheduler retires the context at the next
// instruction boundary.
//
// The assembler provides a line oriented assembly language for the EPU
// instruction set, supporting macros, labels, equates, and compile-time
// expression evaluation.
package cpu
