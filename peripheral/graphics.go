package peripheral

import (
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	WIDTH        = 256  // Frame buffer width, in pixels.
	HEIGHT       = 168  // Frame buffer height, in pixels.
	GLYPH_SIZE   = 8    // Glyphs are 8x8 pixels.
	GLYPH_COUNT  = 1024 // Glyph table entries.
	PALETTE_SIZE = 256  // Palette entries.
	GRID_WIDTH   = WIDTH / GLYPH_SIZE
	GRID_HEIGHT  = HEIGHT / GLYPH_SIZE
)

// Pixel is an RGB frame buffer pixel.
type Pixel struct {
	R, G, B uint8
}

// PixelOf decodes a palette color. Red is the low byte.
func PixelOf(color uint32) Pixel {
	return Pixel{
		R: uint8(color),
		G: uint8(color >> 8),
		B: uint8(color >> 16),
	}
}

// Glyph is one glyph table entry. Row 0 is the top, and bit 7 of a row is
// its leftmost pixel.
type Glyph struct {
	Character uint32
	Rows      [GLYPH_SIZE]uint8
}

// Graphics is the frame buffer, palette and glyph table.
type Graphics struct {
	Frame   [WIDTH * HEIGHT]Pixel
	Palette [PALETTE_SIZE]uint32
	Glyphs  [GLYPH_COUNT]Glyph
}

var _standard_palette = [16]uint32{
	0x000000, 0x000080, 0x008000, 0x008080,
	0x800000, 0x800080, 0x808000, 0xC0C0C0,
	0x808080, 0x0000FF, 0x00FF00, 0x00FFFF,
	0xFF0000, 0xFF00FF, 0xFFFF00, 0xFFFFFF,
}

// DefaultPalette returns the standard 16 colors, followed by a 4x4x4 color
// cube with full alpha at 0x10 to 0x4F. The remaining entries are black.
// Colors are stored with red in the low byte.
func DefaultPalette() (palette [PALETTE_SIZE]uint32) {
	copy(palette[:], _standard_palette[:])
	for i := range uint32(64) {
		b := ((i >> 0) & 3) * 85
		g := ((i >> 2) & 3) * 85
		r := ((i >> 4) & 3) * 85
		palette[0x10+i] = 0xFF<<24 | b<<16 | g<<8 | r
	}
	return
}

// DefaultGlyphs renders the 7x13 basic font, scaled to 8x8, for the
// character codes 0 to 127.
func DefaultGlyphs() (glyphs []Glyph) {
	face := basicfont.Face7x13
	src := image.NewAlpha(image.Rect(0, 0, face.Advance, face.Height))
	dst := image.NewAlpha(image.Rect(0, 0, GLYPH_SIZE, GLYPH_SIZE))

	for c := range rune(128) {
		draw.Draw(src, src.Bounds(), image.Transparent, image.Point{}, draw.Src)
		dr, mask, maskp, _, ok := face.Glyph(fixed.P(0, face.Ascent), c)
		if ok {
			draw.DrawMask(src, dr, image.Opaque, image.Point{}, mask, maskp, draw.Over)
		}
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

		glyph := Glyph{Character: uint32(c)}
		for y := range GLYPH_SIZE {
			for x := range GLYPH_SIZE {
				if dst.AlphaAt(x, y).A >= 0x60 {
					glyph.Rows[y] |= 0x80 >> x
				}
			}
		}
		glyphs = append(glyphs, glyph)
	}

	return
}

// NewGraphics creates the graphics state with the default palette and glyphs.
func NewGraphics() (gr *Graphics) {
	gr = &Graphics{
		Palette: DefaultPalette(),
	}
	copy(gr.Glyphs[:], DefaultGlyphs())

	return
}

// Clear blanks the frame buffer.
func (gr *Graphics) Clear() {
	clear(gr.Frame[:])
}

// Color looks up a palette index. Indices wrap at the palette size.
func (gr *Graphics) Color(index uint32) uint32 {
	return gr.Palette[index%PALETTE_SIZE]
}

// SetPixel writes a color to a pixel. Pixels outside the frame are dropped.
func (gr *Graphics) SetPixel(x, y uint32, color uint32) {
	if x >= WIDTH || y >= HEIGHT {
		return
	}
	gr.Frame[y*WIDTH+x] = PixelOf(color)
}

// Pixel returns the pixel at x, y.
func (gr *Graphics) Pixel(x, y int) Pixel {
	return gr.Frame[y*WIDTH+x]
}

// Glyph finds the first glyph table entry for a character, or entry 0.
func (gr *Graphics) Glyph(character uint32) (glyph *Glyph) {
	glyph = &gr.Glyphs[0]
	for n := range gr.Glyphs {
		if gr.Glyphs[n].Character == character {
			glyph = &gr.Glyphs[n]
			break
		}
	}
	return
}

// SetGlyph replaces a glyph table entry.
func (gr *Graphics) SetGlyph(index int, glyph Glyph) (err error) {
	if index < 0 || index >= GLYPH_COUNT {
		err = ErrGlyphIndex
		return
	}
	gr.Glyphs[index] = glyph
	return
}

// LoadFont replaces glyph table entries from index on with a font of 8 byte
// glyphs, top row first, for consecutive characters starting at first.
func (gr *Graphics) LoadFont(font []byte, index int, first uint32) (err error) {
	if len(font)%GLYPH_SIZE != 0 {
		err = ErrFontSize
		return
	}

	if index < 0 || index >= GLYPH_COUNT {
		err = ErrGlyphIndex
		return
	}

	count := len(font) / GLYPH_SIZE
	if index+count > GLYPH_COUNT {
		err = ErrFontSize
		return
	}

	for n := range count {
		glyph := &gr.Glyphs[index+n]
		glyph.Character = first + uint32(n)
		copy(glyph.Rows[:], font[n*GLYPH_SIZE:])
	}

	return
}

// DrawGlyph blits the glyph of a character at x, y in the fg and bg
// palette colors.
func (gr *Graphics) DrawGlyph(x, y uint32, character uint32, fg, bg uint32) {
	if x >= WIDTH || y >= HEIGHT {
		return
	}

	glyph := gr.Glyph(character)
	fgColor := gr.Color(fg)
	bgColor := gr.Color(bg)

	for dy := range uint32(GLYPH_SIZE) {
		row := glyph.Rows[dy]
		for dx := range uint32(GLYPH_SIZE) {
			color := bgColor
			if row&(1<<(7-dx)) != 0 {
				color = fgColor
			}
			gr.SetPixel(x+dx, y+dy, color)
		}
	}
}
