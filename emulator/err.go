package emulator

import (
	"errors"

	"github.com/ezrec/epu/mmu"
	"github.com/ezrec/epu/translate"
)

var f = translate.From

var (
	ErrContextAlive = errors.New(f("context already alive"))
	ErrKernelFault  = errors.New(f("kernel fault"))
)

// ErrRuntime indicates the location of the fault that stopped the kernel.
type ErrRuntime struct {
	Context uint8
	Pc      mmu.Address
	LineNo  int
	Err     error
}

func (err *ErrRuntime) Error() string {
	if err.LineNo == 0 {
		return f("context %d at %v: %v", err.Context, err.Pc, err.Err)
	}
	return f("context %d at %v, line %d: %v", err.Context, err.Pc, err.LineNo, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}

// ErrContext indicates the context a setup error applies to.
type ErrContext struct {
	Context uint8
	Err     error
}

func (err *ErrContext) Error() string {
	return f("context %d: %v", err.Context, err.Err)
}

func (err *ErrContext) Unwrap() error {
	return err.Err
}
