//go:build headless

package main

import (
	"fmt"

	"github.com/ezrec/epu/emulator"
)

const (
	DISPLAY_DEFAULT = "terminal"
	DISPLAYS        = "terminal, headless"
)

func runDisplay(emu *emulator.Emulator, display string) (err error) {
	err = fmt.Errorf("%v: %w", display, ErrDisplay)
	return
}
