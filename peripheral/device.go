package peripheral

// Device is the host side of the peripheral.
type Device interface {
	// SetFrameRegion copies a w by h region of pixels, row major, to x, y.
	SetFrameRegion(pixels []Pixel, x, y, w, h int)
	// Present displays the frame.
	Present()
	// LastKey removes and returns the oldest pending key code, or KEY_NONE.
	LastKey() uint32
	// PressedKeys returns the pressed key bitmask, low and high halves.
	PressedKeys() (lo, hi uint32)
	// Random returns a random value.
	Random() int32
}

// Key codes for the non-printable keys. Printable keys use their ASCII code.
const (
	KEY_NONE      = uint32(0x00)
	KEY_BACKSPACE = uint32(0x08)
	KEY_TAB       = uint32(0x09)
	KEY_ENTER     = uint32(0x0d)
	KEY_UP        = uint32(0x11)
	KEY_DOWN      = uint32(0x12)
	KEY_LEFT      = uint32(0x13)
	KEY_RIGHT     = uint32(0x14)
	KEY_ESCAPE    = uint32(0x1b)
	KEY_DELETE    = uint32(0x7f)
)

// KEY_QUEUE_SIZE is the most pending keys a device keeps.
const KEY_QUEUE_SIZE = 64

var _key_bits = map[uint32]uint{
	' ':           42,
	KEY_ENTER:     43,
	KEY_ESCAPE:    44,
	KEY_BACKSPACE: 45,
	KEY_TAB:       46,
	KEY_UP:        47,
	KEY_DOWN:      48,
	KEY_LEFT:      49,
	KEY_RIGHT:     50,
	KEY_DELETE:    51,
}

// KeyBit returns the bit of a key code in the pressed key bitmask.
//   - Letters, of either case, are bits 0 to 25.
//   - Digits are bits 32 to 41.
//   - Space, enter, escape, backspace, tab, the arrows and delete follow.
func KeyBit(code uint32) (bit uint, ok bool) {
	switch {
	case code >= 'a' && code <= 'z':
		bit, ok = uint(code-'a'), true
	case code >= 'A' && code <= 'Z':
		bit, ok = uint(code-'A'), true
	case code >= '0' && code <= '9':
		bit, ok = 32+uint(code-'0'), true
	default:
		bit, ok = _key_bits[code]
	}
	return
}

// KeyMask is a pressed key bitmask.
type KeyMask uint64

// Set marks a key code as pressed.
func (km *KeyMask) Set(code uint32) {
	bit, ok := KeyBit(code)
	if ok {
		*km |= 1 << bit
	}
}

// Clear marks a key code as released.
func (km *KeyMask) Clear(code uint32) {
	bit, ok := KeyBit(code)
	if ok {
		*km &^= 1 << bit
	}
}

// Halves returns the low and high halves of the mask.
func (km KeyMask) Halves() (lo, hi uint32) {
	return uint32(km), uint32(km >> 32)
}

// KeyQueue holds pending key codes, oldest first.
type KeyQueue []uint32

// Push a key code. The oldest key is dropped when the queue is full.
func (kq *KeyQueue) Push(code uint32) {
	if len(*kq) >= KEY_QUEUE_SIZE {
		*kq = (*kq)[1:]
	}
	*kq = append(*kq, code)
}

// Pop the oldest key code, or KEY_NONE.
func (kq *KeyQueue) Pop() (code uint32) {
	if len(*kq) == 0 {
		return KEY_NONE
	}
	code = (*kq)[0]
	*kq = (*kq)[1:]
	return
}

// SetRegion copies a row major region into a frame, clipped to the frame.
func SetRegion(frame []Pixel, pixels []Pixel, x, y, w, h int) {
	for dy := range h {
		fy := y + dy
		if fy < 0 || fy >= HEIGHT {
			continue
		}
		for dx := range w {
			fx := x + dx
			if fx < 0 || fx >= WIDTH {
				continue
			}
			n := dy*w + dx
			if n >= len(pixels) {
				return
			}
			frame[fy*WIDTH+fx] = pixels[n]
		}
	}
}
