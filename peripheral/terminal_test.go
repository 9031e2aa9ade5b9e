package peripheral

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeKey(t *testing.T) {
	table := [](struct {
		input string
		code  uint32
		rest  string
	}){
		{"\x1b[A", KEY_UP, ""},
		{"\x1b[B", KEY_DOWN, ""},
		{"\x1b[C", KEY_RIGHT, ""},
		{"\x1b[D", KEY_LEFT, ""},
		{"\x1b[3~", KEY_DELETE, ""},
		{"\x1b[3~x", KEY_DELETE, "x"},
		{"\x1b[3x", KEY_ESCAPE, "[3x"},
		{"\x1b[Z", KEY_ESCAPE, "[Z"},
		{"\x1bq", KEY_ESCAPE, "q"},
		{"\x1b", KEY_ESCAPE, ""},
	}

	for _, entry := range table {
		assert := assert.New(t)

		rd := bufio.NewReader(strings.NewReader(entry.input))
		b, err := rd.ReadByte()
		assert.NoError(err)
		assert.Equal(byte(0x1b), b)

		assert.Equal(entry.code, escapeKey(rd), "%q", entry.input)

		rest := make([]byte, rd.Buffered())
		rd.Read(rest)
		assert.Equal(entry.rest, string(rest), "%q", entry.input)
	}
}
