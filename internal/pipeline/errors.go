package pipeline

import "errors"

// ErrRetryExhausted is returned when every attempt of a Supervisor failed.
var ErrRetryExhausted = errors.New("retry budget exhausted")
