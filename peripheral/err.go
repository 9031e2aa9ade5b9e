package peripheral

import (
	"errors"

	"github.com/ezrec/epu/translate"
)

var f = translate.From

var (
	ErrGlyphIndex  = errors.New(f("glyph index invalid"))
	ErrFontSize    = errors.New(f("font size invalid"))
	ErrNotTerminal = errors.New(f("not a terminal"))
)
