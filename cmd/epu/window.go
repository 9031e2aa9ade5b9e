//go:build !headless

package main

import (
	"fmt"

	"github.com/ezrec/epu/emulator"
	"github.com/ezrec/epu/peripheral/window"
)

const (
	DISPLAY_DEFAULT = "window"
	DISPLAYS        = "window, terminal, headless"
)

// runDisplay runs the emulator in a window. The window owns the main
// goroutine, so the emulator runs beside it.
func runDisplay(emu *emulator.Emulator, display string) (err error) {
	if display != "window" {
		err = fmt.Errorf("%v: %w", display, ErrDisplay)
		return
	}

	win := window.NewWindow("EPU")
	emu.Peripheral.Device = win

	result := make(chan error, 1)
	go func() {
		err := runFrames(emu, win.Done())
		win.Close()
		result <- err
	}()

	err = win.Run()
	if err == nil {
		err = <-result
	}

	return
}
