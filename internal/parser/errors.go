package parser

import "errors"

var ErrUnsupported = errors.New("unsupported audio format")
