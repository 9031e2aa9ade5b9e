package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"golang.org/x/text/message"
)

func TestFrom(t *testing.T) {
	assert := assert.New(t)

	SetLocales("en-US")
	assert.Equal(message.MatchLanguage("en-US"), Language())
	assert.Equal("context 5: halted", From("context %d: %v", 5, "halted"))
}

func TestSetLocalesDefault(t *testing.T) {
	assert := assert.New(t)

	SetLocales()
	assert.Equal(message.MatchLanguage(DEFAULT_LOCALE), Language())
	assert.Equal("plain", From("plain"))

	SetLocales("xx-YY", "en-US")
	assert.Equal("plain", From("plain"))
}
