package peripheral

import (
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/epu/cpu"
)

//go:generate go tool stringer -linecomment -type=Interrupt

// Interrupt is a peripheral interrupt, the low byte of the INT code.
type Interrupt uint8

const (
	INT_DRAW_GLYPH   = Interrupt(0)  // draw_glyph
	INT_DRAW_PIXEL   = Interrupt(1)  // draw_pixel
	INT_FLUSH        = Interrupt(15) // flush
	INT_LAST_KEY     = Interrupt(16) // last_key
	INT_PRESSED_KEYS = Interrupt(17) // pressed_keys
	INT_RANDOM       = Interrupt(18) // random
)

// Draw glyph addressing modes, in RD.
const (
	GLYPH_LINEAR = uint32(1 << 0) // RA is a linear grid cell index.
	GLYPH_GRID   = uint32(1 << 1) // RA/RB are grid cell coordinates.
)

var _peripheral_defines = map[string]string{
	"INT_DRAW_GLYPH":   fmt.Sprintf("0x%x", cpu.INT_PERIPHERAL|uint32(INT_DRAW_GLYPH)),
	"INT_DRAW_PIXEL":   fmt.Sprintf("0x%x", cpu.INT_PERIPHERAL|uint32(INT_DRAW_PIXEL)),
	"INT_FLUSH":        fmt.Sprintf("0x%x", cpu.INT_PERIPHERAL|uint32(INT_FLUSH)),
	"INT_LAST_KEY":     fmt.Sprintf("0x%x", cpu.INT_PERIPHERAL|uint32(INT_LAST_KEY)),
	"INT_PRESSED_KEYS": fmt.Sprintf("0x%x", cpu.INT_PERIPHERAL|uint32(INT_PRESSED_KEYS)),
	"INT_RANDOM":       fmt.Sprintf("0x%x", cpu.INT_PERIPHERAL|uint32(INT_RANDOM)),
	"GLYPH_LINEAR":     fmt.Sprintf("0x%x", GLYPH_LINEAR),
	"GLYPH_GRID":       fmt.Sprintf("0x%x", GLYPH_GRID),
	"SCREEN_WIDTH":     fmt.Sprintf("%d", WIDTH),
	"SCREEN_HEIGHT":    fmt.Sprintf("%d", HEIGHT),
}

// Dispatcher services peripheral interrupts against the graphics state
// and a host device.
type Dispatcher struct {
	Verbose bool // Set to enable verbose logging.

	Graphics *Graphics // Frame buffer, palette and glyphs.
	Device   Device    // Host device.
}

var _ cpu.Interrupter = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher with default graphics state.
func NewDispatcher(dev Device) (pd *Dispatcher) {
	pd = &Dispatcher{
		Graphics: NewGraphics(),
		Device:   dev,
	}

	return
}

// Defines for the peripheral.
func (pd *Dispatcher) Defines() iter.Seq2[string, string] {
	return maps.All(_peripheral_defines)
}

// Flush sends the frame buffer to the device, and presents it.
func (pd *Dispatcher) Flush() {
	pd.Device.SetFrameRegion(pd.Graphics.Frame[:], 0, 0, WIDTH, HEIGHT)
	pd.Device.Present()
}

// Interrupt services a peripheral interrupt for a context.
// Unknown codes are ignored.
func (pd *Dispatcher) Interrupt(ctx *cpu.Context, code uint8) {
	reg := &ctx.Register
	gr := pd.Graphics

	if pd.Verbose {
		log.Printf("peripheral: %d: %v", ctx.Id, Interrupt(code))
	}

	switch Interrupt(code) {
	case INT_DRAW_GLYPH:
		x, y := reg[cpu.REG_RA], reg[cpu.REG_RB]
		mode := reg[cpu.REG_RD]
		if mode&GLYPH_LINEAR != 0 {
			y = (x / GRID_WIDTH) * GLYPH_SIZE
			x = (x % GRID_WIDTH) * GLYPH_SIZE
		} else if mode&GLYPH_GRID != 0 {
			x *= GLYPH_SIZE
			y *= GLYPH_SIZE
		}
		gr.DrawGlyph(x, y, reg[cpu.REG_RC], reg[cpu.REG_RE], reg[cpu.REG_RF])
	case INT_DRAW_PIXEL:
		gr.SetPixel(reg[cpu.REG_RA], reg[cpu.REG_RB], gr.Color(reg[cpu.REG_RC]))
	case INT_FLUSH:
		pd.Flush()
	case INT_LAST_KEY:
		reg[cpu.REG_RA] = pd.Device.LastKey()
	case INT_PRESSED_KEYS:
		reg[cpu.REG_RA], reg[cpu.REG_RB] = pd.Device.PressedKeys()
	case INT_RANDOM:
		reg[cpu.REG_RA] = uint32(pd.Device.Random())
	}
}
