// Package press is a unified, algorithm-agnostic compression engine.
// It offers one-shot whole-buffer compress/decompress over caller-owned
// buffers, streaming sessions for data larger than memory, and a closed
// integer status vocabulary suitable for crossing a foreign-function
// boundary, dispatching to interchangeable codec backends.
package press

import (
	"errors"

	"github.com/presslib/press/codec"
)

// Status is the closed result vocabulary every public operation returns.
// Numeric values are stable; binding layers pass them across the boundary
// as plain integers and translate them to text locally.
type Status int

const (
	Ok                    Status = 0
	OkMoreOutputAvailable Status = 1

	ErrorInvalidInput         Status = -1
	ErrorBufferTooSmall       Status = -2
	ErrorUnsupportedAlgorithm Status = -3
	ErrorCorruptStream        Status = -4
	ErrorInternal             Status = -5
)

// IsError reports whether the status denotes failure. OkMoreOutputAvailable
// is not an error: it is backpressure.
func (s Status) IsError() bool { return s < 0 }

func (s Status) String() string {
	switch s {
	case Ok:
		return "ok"
	case OkMoreOutputAvailable:
		return "ok-more-output"
	case ErrorInvalidInput:
		return "invalid-input"
	case ErrorBufferTooSmall:
		return "buffer-too-small"
	case ErrorUnsupportedAlgorithm:
		return "unsupported-algorithm"
	case ErrorCorruptStream:
		return "corrupt-stream"
	case ErrorInternal:
		return "internal-error"
	default:
		return "unknown-status"
	}
}

// Sentinel errors surfaced by the error-returning API. The status surface
// is a 1:1 mapping over these.
var (
	ErrBufferTooSmall       = codec.ErrBufferTooSmall
	ErrUnsupportedAlgorithm = codec.ErrUnsupportedAlgorithm
	ErrCorrupted            = codec.ErrCorrupted
	ErrInvalidInput         = codec.ErrInvalidInput
)

// statusOf collapses engine errors onto the closed Status set. Backend
// errors we do not recognize become ErrorInternal, keeping the boundary
// contract stable across codec library versions.
func statusOf(err error) Status {
	switch {
	case err == nil:
		return Ok
	case errors.Is(err, ErrBufferTooSmall):
		return ErrorBufferTooSmall
	case errors.Is(err, ErrUnsupportedAlgorithm):
		return ErrorUnsupportedAlgorithm
	case errors.Is(err, ErrCorrupted):
		return ErrorCorruptStream
	case errors.Is(err, ErrInvalidInput):
		return ErrorInvalidInput
	default:
		return ErrorInternal
	}
}
