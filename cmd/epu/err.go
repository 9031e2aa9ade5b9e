package main

import (
	"errors"

	"github.com/ezrec/epu/translate"
)

var f = translate.From

var ErrDisplay = errors.New(f("display not available"))
