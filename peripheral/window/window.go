//go:build !headless

// Package window is a peripheral Device in an ebiten window.
package window

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/ezrec/epu/peripheral"
)

// SCALE is the initial window scale.
const SCALE = 3

var _special_keys = map[ebiten.Key]uint32{
	ebiten.KeyEnter:       peripheral.KEY_ENTER,
	ebiten.KeyNumpadEnter: peripheral.KEY_ENTER,
	ebiten.KeyBackspace:   peripheral.KEY_BACKSPACE,
	ebiten.KeyTab:         peripheral.KEY_TAB,
	ebiten.KeyEscape:      peripheral.KEY_ESCAPE,
	ebiten.KeyArrowUp:     peripheral.KEY_UP,
	ebiten.KeyArrowDown:   peripheral.KEY_DOWN,
	ebiten.KeyArrowLeft:   peripheral.KEY_LEFT,
	ebiten.KeyArrowRight:  peripheral.KEY_RIGHT,
	ebiten.KeyDelete:      peripheral.KEY_DELETE,
	ebiten.KeySpace:       ' ',
}

// Window is a peripheral Device, and an ebiten Game.
type Window struct {
	Title string

	mutex   sync.Mutex
	frame   [peripheral.WIDTH * peripheral.HEIGHT]peripheral.Pixel
	shown   []byte
	keys    peripheral.KeyQueue
	pressed peripheral.KeyMask
	rand    *rand.Rand
	done    chan struct{}
	closed  bool

	image *ebiten.Image
}

var _ peripheral.Device = (*Window)(nil)
var _ ebiten.Game = (*Window)(nil)

// NewWindow creates a window device.
func NewWindow(title string) (win *Window) {
	win = &Window{
		Title: title,
		shown: make([]byte, peripheral.WIDTH*peripheral.HEIGHT*4),
		rand:  rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
		done:  make(chan struct{}),
	}

	return
}

// Run the window until it is closed, or Close is called.
// Must be called from the main goroutine.
func (win *Window) Run() (err error) {
	ebiten.SetWindowSize(peripheral.WIDTH*SCALE, peripheral.HEIGHT*SCALE)
	ebiten.SetWindowTitle(win.Title)
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)

	err = ebiten.RunGame(win)
	win.Close()

	return
}

// Done is closed when the window closes.
func (win *Window) Done() <-chan struct{} {
	return win.done
}

// Close the window.
func (win *Window) Close() {
	win.mutex.Lock()
	defer win.mutex.Unlock()

	if !win.closed {
		win.closed = true
		close(win.done)
	}
}

// SetFrameRegion implements peripheral.Device.
func (win *Window) SetFrameRegion(pixels []peripheral.Pixel, x, y, w, h int) {
	win.mutex.Lock()
	defer win.mutex.Unlock()

	peripheral.SetRegion(win.frame[:], pixels, x, y, w, h)
}

// Present implements peripheral.Device.
func (win *Window) Present() {
	win.mutex.Lock()
	defer win.mutex.Unlock()

	for n, pixel := range win.frame {
		win.shown[n*4+0] = pixel.R
		win.shown[n*4+1] = pixel.G
		win.shown[n*4+2] = pixel.B
		win.shown[n*4+3] = 0xff
	}
}

// LastKey implements peripheral.Device.
func (win *Window) LastKey() uint32 {
	win.mutex.Lock()
	defer win.mutex.Unlock()

	return win.keys.Pop()
}

// PressedKeys implements peripheral.Device.
func (win *Window) PressedKeys() (lo, hi uint32) {
	win.mutex.Lock()
	defer win.mutex.Unlock()

	return win.pressed.Halves()
}

// Random implements peripheral.Device.
func (win *Window) Random() int32 {
	win.mutex.Lock()
	defer win.mutex.Unlock()

	return win.rand.Int32()
}

// Update implements ebiten.Game.
func (win *Window) Update() error {
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}

	select {
	case <-win.done:
		return ebiten.Termination
	default:
	}

	win.mutex.Lock()
	defer win.mutex.Unlock()

	for _, r := range ebiten.AppendInputChars(nil) {
		if r > 0x20 && r < 0x7f {
			win.keys.Push(uint32(r))
		}
	}

	for key, code := range _special_keys {
		if inpututil.IsKeyJustPressed(key) {
			win.keys.Push(code)
		}
	}

	var mask peripheral.KeyMask
	for _, key := range inpututil.AppendPressedKeys(nil) {
		if code, ok := _special_keys[key]; ok {
			mask.Set(code)
			continue
		}
		switch {
		case key >= ebiten.KeyA && key <= ebiten.KeyZ:
			mask.Set('A' + uint32(key-ebiten.KeyA))
		case key >= ebiten.KeyDigit0 && key <= ebiten.KeyDigit9:
			mask.Set('0' + uint32(key-ebiten.KeyDigit0))
		}
	}
	win.pressed = mask

	return nil
}

// Draw implements ebiten.Game.
func (win *Window) Draw(screen *ebiten.Image) {
	if win.image == nil {
		win.image = ebiten.NewImage(peripheral.WIDTH, peripheral.HEIGHT)
	}

	win.mutex.Lock()
	win.image.WritePixels(win.shown)
	win.mutex.Unlock()

	screen.DrawImage(win.image, nil)
}

// Layout implements ebiten.Game.
func (win *Window) Layout(_, _ int) (int, int) {
	return peripheral.WIDTH, peripheral.HEIGHT
}
