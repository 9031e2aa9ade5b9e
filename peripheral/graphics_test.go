package peripheral

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPalette(t *testing.T) {
	assert := assert.New(t)

	palette := DefaultPalette()

	table := [](struct {
		index uint32
		color uint32
	}){
		{0x00, 0x000000},
		{0x07, 0xC0C0C0},
		{0x0F, 0xFFFFFF},
		{0x10, 0xFF000000},
		{0x11, 0xFF550000},
		{0x14, 0xFF005500},
		{0x20, 0xFF000055},
		{0x2A, 0xFFAAAA55},
		{0x4F, 0xFFFFFFFF},
		{0x50, 0x000000},
		{0xFF, 0x000000},
	}

	for _, entry := range table {
		assert.Equal(entry.color, palette[entry.index], "0x%02x", entry.index)
	}
}

func TestPixelOf(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(Pixel{R: 0x12, G: 0x34, B: 0x56}, PixelOf(0xFF563412))
	assert.Equal(Pixel{R: 0xFF}, PixelOf(0x0000FF))
}

func TestDefaultGlyphs(t *testing.T) {
	assert := assert.New(t)

	glyphs := DefaultGlyphs()
	assert.Len(glyphs, 128)

	for n, glyph := range glyphs {
		assert.Equal(uint32(n), glyph.Character)
	}

	assert.Equal([GLYPH_SIZE]uint8{}, glyphs[' '].Rows)

	ink := 0
	for _, row := range glyphs['A'].Rows {
		for bit := range 8 {
			if row&(1<<bit) != 0 {
				ink++
			}
		}
	}
	assert.Greater(ink, 4)
	assert.Less(ink, 48)
}

func TestGlyphLookup(t *testing.T) {
	assert := assert.New(t)

	gr := NewGraphics()

	assert.Equal(uint32('Z'), gr.Glyph('Z').Character)
	assert.Same(&gr.Glyphs[0], gr.Glyph(0x1234))

	err := gr.SetGlyph(200, Glyph{Character: 0x1234, Rows: [8]uint8{0xff}})
	assert.NoError(err)
	assert.Same(&gr.Glyphs[200], gr.Glyph(0x1234))

	// First match wins.
	err = gr.SetGlyph(300, Glyph{Character: 0x1234})
	assert.NoError(err)
	assert.Same(&gr.Glyphs[200], gr.Glyph(0x1234))

	assert.ErrorIs(gr.SetGlyph(GLYPH_COUNT, Glyph{}), ErrGlyphIndex)
	assert.ErrorIs(gr.SetGlyph(-1, Glyph{}), ErrGlyphIndex)
}

func TestLoadFont(t *testing.T) {
	assert := assert.New(t)

	gr := NewGraphics()
	letter := gr.Glyph('A').Rows

	font := []byte{
		0x80, 0, 0, 0, 0, 0, 0, 0x01,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	}
	err := gr.LoadFont(font, 128, 0x80)
	assert.NoError(err)
	assert.Same(&gr.Glyphs[128], gr.Glyph(0x80))
	assert.Same(&gr.Glyphs[129], gr.Glyph(0x81))
	assert.Equal(uint8(0x80), gr.Glyphs[128].Rows[0])
	assert.Equal(uint8(0x01), gr.Glyphs[128].Rows[7])
	assert.Equal(uint32(0), gr.Glyphs[130].Character)

	// The ASCII glyphs are untouched.
	assert.Equal(uint32(0), gr.Glyphs[0].Character)
	assert.Equal(letter, gr.Glyph('A').Rows)

	// A full extended set fits after the ASCII glyphs.
	err = gr.LoadFont(make([]byte, 128*GLYPH_SIZE), 128, 0x80)
	assert.NoError(err)
	assert.Equal(letter, gr.Glyph('A').Rows)
	assert.Equal(uint32(0xff), gr.Glyphs[255].Character)

	assert.ErrorIs(gr.LoadFont(font[:7], 0, 0), ErrFontSize)
	assert.ErrorIs(gr.LoadFont(font, GLYPH_COUNT-1, 0), ErrFontSize)
	assert.ErrorIs(gr.LoadFont(make([]byte, (GLYPH_COUNT+1)*GLYPH_SIZE), 0, 0), ErrFontSize)
	assert.ErrorIs(gr.LoadFont(font, -1, 0), ErrGlyphIndex)
	assert.ErrorIs(gr.LoadFont(font, GLYPH_COUNT, 0), ErrGlyphIndex)
}

func TestDrawGlyph(t *testing.T) {
	assert := assert.New(t)

	gr := NewGraphics()
	gr.SetGlyph(0, Glyph{Character: 0, Rows: [8]uint8{0x80, 0x01}})

	gr.DrawGlyph(8, 16, 0, 0x0C, 0x09)

	red := PixelOf(0xFF0000)
	blue := PixelOf(0x0000FF)
	assert.Equal(red, gr.Pixel(8, 16))
	assert.Equal(blue, gr.Pixel(9, 16))
	assert.Equal(red, gr.Pixel(15, 17))
	assert.Equal(blue, gr.Pixel(14, 17))
	assert.Equal(blue, gr.Pixel(15, 23))
	assert.Equal(Pixel{}, gr.Pixel(16, 16))

	// Clipped at the frame edge.
	gr.DrawGlyph(WIDTH-4, HEIGHT-4, 0, 0x0F, 0x0F)
	assert.Equal(PixelOf(0xFFFFFF), gr.Pixel(WIDTH-1, HEIGHT-1))

	gr.Clear()
	assert.Equal(Pixel{}, gr.Pixel(WIDTH-1, HEIGHT-1))

	// Coordinates past the frame do not wrap around to the edge.
	gr.DrawGlyph(0xFFFFFFFC, 0, 0, 0x0F, 0x0F)
	gr.DrawGlyph(0, 0xFFFFFFFC, 0, 0x0F, 0x0F)
	for x := range GLYPH_SIZE {
		for y := range GLYPH_SIZE {
			assert.Equal(Pixel{}, gr.Pixel(x, y))
		}
	}
}

func TestSetPixel(t *testing.T) {
	assert := assert.New(t)

	gr := NewGraphics()

	gr.SetPixel(3, 4, 0x563412)
	assert.Equal(Pixel{R: 0x12, G: 0x34, B: 0x56}, gr.Pixel(3, 4))

	gr.SetPixel(WIDTH, 0, 0xFFFFFF)
	gr.SetPixel(0, HEIGHT, 0xFFFFFF)
	assert.Equal(Pixel{}, gr.Pixel(0, 0))

	assert.Equal(gr.Palette[0x0F], gr.Color(0x10F))
}
