package cpu

import (
	"github.com/ezrec/epu/mmu"
)

// Push writes value at *ptr, then advances *ptr by size.
// Both the call stack (cp) and the data stack (sp) use it.
func (cpu *Cpu) Push(ctx *Context, ptr *mmu.Address, size int, value uint32) (err error) {
	err = cpu.Memory.Write(ctx, *ptr, size, value)
	if err != nil {
		return
	}

	*ptr += mmu.Address(size)
	return
}

// Pop reads the value below *ptr, then retreats *ptr by size.
func (cpu *Cpu) Pop(ctx *Context, ptr *mmu.Address, size int) (value uint32, err error) {
	top := *ptr - mmu.Address(size)
	value, err = cpu.Memory.Peek(ctx, top, size)
	if err != nil {
		return
	}

	*ptr = top
	return
}
