package peripheral

import (
	"bufio"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

// TERMINAL_HOLD is how long a key stays pressed after the terminal last
// reported it. Terminals do not report key releases.
const TERMINAL_HOLD = 150 * time.Millisecond

// Terminal is a Device on a raw mode ANSI terminal. Frames are drawn with
// half block characters in 24-bit color, two pixel rows per text row.
type Terminal struct {
	Scale int // Pixels per terminal column; 1 draws the full frame.

	fd    int
	state *term.State
	out   *bufio.Writer
	done  chan struct{}
	quit  sync.Once

	mutex   sync.Mutex
	frame   [WIDTH * HEIGHT]Pixel
	keys    KeyQueue
	pressed map[uint32]time.Time
	rand    *rand.Rand
}

var _ Device = (*Terminal)(nil)

// NewTerminal puts the input terminal in raw mode, and starts reading keys.
// Ctrl-C closes Done.
func NewTerminal(in *os.File, out io.Writer) (tm *Terminal, err error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		err = ErrNotTerminal
		return
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return
	}

	tm = &Terminal{
		Scale:   2,
		fd:      fd,
		state:   state,
		out:     bufio.NewWriter(out),
		done:    make(chan struct{}),
		pressed: map[uint32]time.Time{},
		rand:    rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
	}

	// Hide the cursor, and clear the screen.
	fmt.Fprint(tm.out, "\x1b[?25l\x1b[2J")
	tm.out.Flush()

	go tm.read(in)

	return
}

// Done is closed when the user asks to quit.
func (tm *Terminal) Done() <-chan struct{} {
	return tm.done
}

// Close restores the terminal.
func (tm *Terminal) Close() (err error) {
	tm.quit.Do(func() { close(tm.done) })

	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	fmt.Fprint(tm.out, "\x1b[0m\x1b[?25h\r\n")
	tm.out.Flush()

	err = term.Restore(tm.fd, tm.state)
	return
}

func (tm *Terminal) read(in io.Reader) {
	rd := bufio.NewReader(in)
	for {
		b, err := rd.ReadByte()
		if err != nil {
			return
		}

		code := uint32(b)
		switch b {
		case 0x03:
			tm.quit.Do(func() { close(tm.done) })
			continue
		case '\n':
			code = KEY_ENTER
		case 0x7f:
			code = KEY_BACKSPACE
		case 0x1b:
			code = escapeKey(rd)
		}

		tm.press(code)
	}
}

// escapeKey decodes the arrow and delete key sequences that follow an
// escape byte. A lone escape is KEY_ESCAPE.
func escapeKey(rd *bufio.Reader) (code uint32) {
	code = KEY_ESCAPE
	if rd.Buffered() < 2 {
		return
	}

	seq, err := rd.Peek(2)
	if err != nil || seq[0] != '[' {
		return
	}

	length := 2
	switch seq[1] {
	case 'A':
		code = KEY_UP
	case 'B':
		code = KEY_DOWN
	case 'C':
		code = KEY_RIGHT
	case 'D':
		code = KEY_LEFT
	case '3':
		if rd.Buffered() < 3 {
			return
		}
		seq, err = rd.Peek(3)
		if err != nil || seq[2] != '~' {
			return
		}
		code = KEY_DELETE
		length = 3
	default:
		return
	}

	rd.Discard(length)
	return
}

func (tm *Terminal) press(code uint32) {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	tm.keys.Push(code)
	tm.pressed[code] = time.Now()
}

// SetFrameRegion implements Device.
func (tm *Terminal) SetFrameRegion(pixels []Pixel, x, y, w, h int) {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	SetRegion(tm.frame[:], pixels, x, y, w, h)
}

// Present implements Device.
func (tm *Terminal) Present() {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	scale := max(tm.Scale, 1)

	fmt.Fprint(tm.out, "\x1b[H")
	for y := 0; y+scale < HEIGHT; y += 2 * scale {
		for x := 0; x < WIDTH; x += scale {
			top := tm.frame[y*WIDTH+x]
			bottom := tm.frame[(y+scale)*WIDTH+x]
			fmt.Fprintf(tm.out, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀",
				top.R, top.G, top.B, bottom.R, bottom.G, bottom.B)
		}
		fmt.Fprint(tm.out, "\x1b[0m\r\n")
	}
	tm.out.Flush()
}

// LastKey implements Device.
func (tm *Terminal) LastKey() uint32 {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	return tm.keys.Pop()
}

// PressedKeys implements Device.
func (tm *Terminal) PressedKeys() (lo, hi uint32) {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	var mask KeyMask
	now := time.Now()
	for code, when := range tm.pressed {
		if now.Sub(when) > TERMINAL_HOLD {
			delete(tm.pressed, code)
			continue
		}
		mask.Set(code)
	}

	return mask.Halves()
}

// Random implements Device.
func (tm *Terminal) Random() int32 {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	return tm.rand.Int32()
}
