package peripheral

import (
	"math/rand/v2"
	"sync"
)

// Headless is a Device with no display. It keeps the last presented frame,
// and takes key events from Press and Release.
type Headless struct {
	mutex    sync.Mutex
	frame    [WIDTH * HEIGHT]Pixel
	shown    [WIDTH * HEIGHT]Pixel
	presents int
	keys     KeyQueue
	pressed  KeyMask
	rand     *rand.Rand
}

var _ Device = (*Headless)(nil)

// NewHeadless creates a headless device, with a seeded random source.
func NewHeadless(seed uint64) (hd *Headless) {
	hd = &Headless{
		rand: rand.New(rand.NewPCG(seed, seed)),
	}
	return
}

// SetFrameRegion implements Device.
func (hd *Headless) SetFrameRegion(pixels []Pixel, x, y, w, h int) {
	hd.mutex.Lock()
	defer hd.mutex.Unlock()

	SetRegion(hd.frame[:], pixels, x, y, w, h)
}

// Present implements Device.
func (hd *Headless) Present() {
	hd.mutex.Lock()
	defer hd.mutex.Unlock()

	hd.shown = hd.frame
	hd.presents++
}

// LastKey implements Device.
func (hd *Headless) LastKey() uint32 {
	hd.mutex.Lock()
	defer hd.mutex.Unlock()

	return hd.keys.Pop()
}

// PressedKeys implements Device.
func (hd *Headless) PressedKeys() (lo, hi uint32) {
	hd.mutex.Lock()
	defer hd.mutex.Unlock()

	return hd.pressed.Halves()
}

// Random implements Device.
func (hd *Headless) Random() int32 {
	hd.mutex.Lock()
	defer hd.mutex.Unlock()

	return hd.rand.Int32()
}

// Press a key.
func (hd *Headless) Press(code uint32) {
	hd.mutex.Lock()
	defer hd.mutex.Unlock()

	hd.keys.Push(code)
	hd.pressed.Set(code)
}

// Release a key.
func (hd *Headless) Release(code uint32) {
	hd.mutex.Lock()
	defer hd.mutex.Unlock()

	hd.pressed.Clear(code)
}

// Presents returns the number of frames presented.
func (hd *Headless) Presents() int {
	hd.mutex.Lock()
	defer hd.mutex.Unlock()

	return hd.presents
}

// Shown returns the pixel at x, y of the last presented frame.
func (hd *Headless) Shown(x, y int) Pixel {
	hd.mutex.Lock()
	defer hd.mutex.Unlock()

	return hd.shown[y*WIDTH+x]
}
