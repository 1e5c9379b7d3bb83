package press

import (
	"errors"
	"fmt"

	"github.com/presslib/press/codec"
)

// Algorithm and Level are re-exported so most callers never import the
// codec package directly.
type (
	Algorithm = codec.Algorithm
	Level     = codec.Level
)

const (
	Zstd   = codec.Zstd
	LZ4    = codec.LZ4
	S2     = codec.S2
	Snappy = codec.Snappy
	Gzip   = codec.Gzip
	Zlib   = codec.Zlib
	Brotli = codec.Brotli
	XZ     = codec.XZ

	LevelDefault = codec.LevelDefault
	LevelFastest = codec.LevelFastest
	LevelBest    = codec.LevelBest
)

// Algorithms returns the registered algorithm identifiers.
func Algorithms() []Algorithm { return codec.Algorithms() }

// Bound returns a worst-case compressed size for srcLen input bytes under
// the given algorithm, frame overhead included. Pure, deterministic and
// monotonic in srcLen; callers use it to size output buffers.
func Bound(algo Algorithm, srcLen int) (int, error) {
	if srcLen < 0 {
		return 0, fmt.Errorf("%w: negative source length %d", ErrInvalidInput, srcLen)
	}
	c, err := codec.Resolve(algo)
	if err != nil {
		return 0, err
	}
	return c.Bound(srcLen), nil
}

// ValidateBuffer checks a caller-supplied buffer against a required
// minimum length before any codec touches memory. Binding layers call it
// up front; the engine itself enforces the same limit byte-by-byte on
// every path.
func ValidateBuffer(buf []byte, required int) Status {
	if required < 0 {
		return ErrorInvalidInput
	}
	if len(buf) < required {
		return ErrorBufferTooSmall
	}
	return Ok
}

// CompressInto compresses src into dst using "into" semantics: the result
// is a prefix of dst, or ErrBufferTooSmall if dst cannot hold it. The
// caller keeps ownership of both buffers throughout.
func CompressInto(algo Algorithm, lvl Level, dst, src []byte) ([]byte, error) {
	c, err := codec.Resolve(algo)
	if err != nil {
		return nil, err
	}
	if !lvl.Valid() {
		return nil, fmt.Errorf("%w: level %d", ErrInvalidInput, lvl)
	}
	return c.Compress(dst, src, lvl)
}

// DecompressInto decodes src into dst and returns the number of bytes
// written. The decode never writes past len(dst), regardless of what the
// compressed stream claims to contain.
func DecompressInto(algo Algorithm, dst, src []byte) (int, error) {
	c, err := codec.Resolve(algo)
	if err != nil {
		return 0, err
	}
	return c.Decompress(dst, src)
}

// Compress is the status-based surface over CompressInto for boundary
// callers: a Status code plus bytes written, no error values.
func Compress(algo Algorithm, lvl Level, dst, src []byte) (Status, int) {
	out, err := CompressInto(algo, lvl, dst, src)
	if err != nil {
		return statusOf(err), 0
	}
	return Ok, len(out)
}

// Decompress is the status-based surface over DecompressInto.
func Decompress(algo Algorithm, dst, src []byte) (Status, int) {
	n, err := DecompressInto(algo, dst, src)
	if err != nil {
		return statusOf(err), 0
	}
	return Ok, n
}

// CompressAlloc compresses src into a freshly allocated buffer sized via
// Bound.
func CompressAlloc(algo Algorithm, lvl Level, src []byte) ([]byte, error) {
	n, err := Bound(algo, len(src))
	if err != nil {
		return nil, err
	}
	return CompressInto(algo, lvl, make([]byte, n), src)
}

// maxDecompressAlloc caps the growth loop in DecompressAlloc so corrupt
// size claims cannot run the process out of memory.
const maxDecompressAlloc = 1 << 31

// DecompressAlloc decodes src into a freshly allocated buffer, growing it
// until the output fits.
func DecompressAlloc(algo Algorithm, src []byte) ([]byte, error) {
	c, err := codec.Resolve(algo)
	if err != nil {
		return nil, err
	}
	size := 4*len(src) + 1024
	for {
		dst := make([]byte, size)
		n, err := c.Decompress(dst, src)
		if errors.Is(err, ErrBufferTooSmall) {
			if size >= maxDecompressAlloc {
				return nil, fmt.Errorf("decompressed output exceeds %d bytes: %w",
					maxDecompressAlloc, ErrBufferTooSmall)
			}
			size *= 2
			continue
		}
		if err != nil {
			return nil, err
		}
		return dst[:n], nil
	}
}
