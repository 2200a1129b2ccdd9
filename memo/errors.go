package memo

import "errors"

// ErrInvalidConfig is the class of all configuration rejections. Every error
// returned by New, NewFallible, NewOptional and the Once constructors wraps
// it, so callers can test with errors.Is while the message names the
// offending knob and what it requires.
var ErrInvalidConfig = errors.New("memo: invalid configuration")
