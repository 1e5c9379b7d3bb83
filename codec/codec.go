// Package codec provides the per-algorithm compression backends and the
// registry that maps algorithm identifiers to them. All backends share
// "into" semantics: the caller supplies the destination buffer and the
// codec never writes outside it.
package codec

import (
	"errors"
	"fmt"
	"io"
)

// Algorithm identifies a compression backend. Values are stable: binding
// layers pass them across the boundary as plain integers.
type Algorithm uint8

const (
	Zstd Algorithm = iota
	LZ4
	S2
	Snappy
	Gzip
	Zlib
	Brotli
	XZ

	algorithmCount
)

// Level is the normalized compression level shared by all codecs. Each
// backend maps it onto whatever its library calls levels.
type Level uint8

const (
	LevelDefault Level = iota
	LevelFastest
	LevelBest

	levelCount
)

// Valid reports whether the level is one of the defined constants.
func (l Level) Valid() bool { return l < levelCount }

var (
	// ErrBufferTooSmall is returned when the caller-provided destination
	// buffer cannot hold the output. Nothing is written past its length.
	ErrBufferTooSmall = errors.New("destination buffer too small")

	// ErrUnsupportedAlgorithm is returned for identifiers outside the
	// registered set.
	ErrUnsupportedAlgorithm = errors.New("unsupported compression algorithm")

	// ErrCorrupted is returned when compressed input fails to decode.
	ErrCorrupted = errors.New("corrupt compressed stream")

	// ErrInvalidInput is returned for out-of-range arguments (level, mode,
	// negative sizes).
	ErrInvalidInput = errors.New("invalid input")
)

// Codec is the uniform contract every backend implements. Implementations
// are stateless across calls and safe for concurrent use; all per-stream
// state lives in the writers/readers they create.
//
// One-shot and streaming output use the same wire format for any given
// algorithm, so bytes produced by a stream writer decode through Decompress
// and vice versa.
type Codec interface {
	Algorithm() Algorithm

	// Bound returns a worst-case output size for compressing srcLen bytes,
	// including all frame overhead. Pure and monotonic in srcLen.
	Bound(srcLen int) int

	// Compress compresses src into dst and returns the written prefix of
	// dst, or ErrBufferTooSmall if dst cannot hold the result.
	Compress(dst, src []byte, lvl Level) ([]byte, error)

	// Decompress decodes src into dst, returning the number of bytes
	// written. ErrBufferTooSmall if the decoded stream exceeds len(dst);
	// ErrCorrupted if src does not decode.
	Decompress(dst, src []byte) (int, error)

	// NewStreamWriter returns a writer that compresses everything written
	// to it onto w, finalizing the frame on Close.
	NewStreamWriter(w io.Writer, lvl Level) (io.WriteCloser, error)

	// NewStreamReader returns a reader yielding the decompressed contents
	// of r.
	NewStreamReader(r io.Reader) (io.Reader, error)
}

// Registration happens once at package init; the table is read-only
// afterwards, so lookups need no locking.
var registry [algorithmCount]Codec

func init() {
	register(newZstdCodec())
	register(lz4Codec{})
	register(s2Codec{})
	register(snappyCodec{})
	register(gzipCodec{})
	register(zlibCodec{})
	register(brotliCodec{})
	register(xzCodec{})
}

func register(c Codec) {
	a := c.Algorithm()
	if registry[a] != nil {
		panic(fmt.Sprintf("codec: duplicate registration for %s", a))
	}
	registry[a] = c
}

// Resolve returns the codec registered for the algorithm, or
// ErrUnsupportedAlgorithm.
func Resolve(a Algorithm) (Codec, error) {
	if int(a) >= len(registry) || registry[a] == nil {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedAlgorithm, a)
	}
	return registry[a], nil
}

// Algorithms returns all registered algorithm identifiers.
func Algorithms() []Algorithm {
	out := make([]Algorithm, 0, algorithmCount)
	for a, c := range registry {
		if c != nil {
			out = append(out, Algorithm(a))
		}
	}
	return out
}

func (a Algorithm) String() string {
	switch a {
	case Zstd:
		return "zstd"
	case LZ4:
		return "lz4"
	case S2:
		return "s2"
	case Snappy:
		return "snappy"
	case Gzip:
		return "gzip"
	case Zlib:
		return "zlib"
	case Brotli:
		return "brotli"
	case XZ:
		return "xz"
	default:
		return fmt.Sprintf("algorithm(%d)", uint8(a))
	}
}

// ParseAlgorithm maps a name (as printed by Algorithm.String) back to its
// identifier.
func ParseAlgorithm(name string) (Algorithm, error) {
	for _, a := range Algorithms() {
		if a.String() == name {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, name)
}
