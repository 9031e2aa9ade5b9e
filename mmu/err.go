package mmu

import (
	"errors"

	"github.com/ezrec/epu/translate"
)

var f = translate.From

var (
	ErrRead          = errors.New(f("read fault"))
	ErrWrite         = errors.New(f("write fault"))
	ErrSize          = errors.New(f("access size invalid"))
	ErrBootImageSize = errors.New(f("boot image too large"))
	ErrPoolInvalid   = errors.New(f("pool invalid"))
)

// ErrFault records the address of a rejected access.
type ErrFault struct {
	Address Address
	Err     error
}

func (err *ErrFault) Error() string {
	return f("%v at %v", err.Err, err.Address)
}

func (err *ErrFault) Unwrap() error {
	return err.Err
}
