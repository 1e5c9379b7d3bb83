package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// capWriter writes into a fixed caller buffer. The first write that does
// not fit sets overflow; later writes keep failing. This is how codecs
// without a native one-shot "into" primitive honor the buffer contract.
type capWriter struct {
	dst      []byte
	n        int
	overflow bool
}

func (w *capWriter) Write(p []byte) (int, error) {
	n := copy(w.dst[w.n:], p)
	w.n += n
	if n < len(p) {
		w.overflow = true
		return n, ErrBufferTooSmall
	}
	return n, nil
}

// compressVia drives the codec's stream writer over dst. Stream writers
// buffer input into full blocks internally, so the produced bytes do not
// depend on how the source was chunked.
func compressVia(c Codec, dst, src []byte, lvl Level) ([]byte, error) {
	if !lvl.Valid() {
		return nil, fmt.Errorf("%w: level %d", ErrInvalidInput, lvl)
	}
	cw := &capWriter{dst: dst}
	w, err := c.NewStreamWriter(cw, lvl)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Algorithm(), err)
	}
	if len(src) > 0 {
		if _, err := w.Write(src); err != nil {
			return nil, sizeOrBackendErr(c, cw, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, sizeOrBackendErr(c, cw, err)
	}
	if cw.overflow {
		return nil, ErrBufferTooSmall
	}
	return dst[:cw.n], nil
}

func sizeOrBackendErr(c Codec, cw *capWriter, err error) error {
	if cw.overflow || errors.Is(err, ErrBufferTooSmall) {
		return ErrBufferTooSmall
	}
	return fmt.Errorf("%s: %w", c.Algorithm(), err)
}

// decompressVia decodes src into dst through the codec's stream reader.
// An empty src decodes to nothing; this keeps one-shot behavior aligned
// with the streaming session, where finishing an empty decompress stream
// is valid.
func decompressVia(c Codec, dst, src []byte) (int, error) {
	if len(src) == 0 {
		return 0, nil
	}
	r, err := c.NewStreamReader(bytes.NewReader(src))
	if err != nil {
		return 0, corrupt(c.Algorithm(), err)
	}
	defer closeReader(r)
	n, err := readInto(dst, r)
	if err != nil {
		if errors.Is(err, ErrBufferTooSmall) {
			return n, ErrBufferTooSmall
		}
		return n, corrupt(c.Algorithm(), err)
	}
	return n, nil
}

// readInto fills dst from r and verifies the stream is exhausted. A stream
// holding more data than len(dst) yields ErrBufferTooSmall without a single
// byte written out of bounds.
func readInto(dst []byte, r io.Reader) (int, error) {
	n := 0
	for n < len(dst) {
		m, err := r.Read(dst[n:])
		n += m
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, err
		}
	}
	var tail [1]byte
	for {
		m, err := r.Read(tail[:])
		if m > 0 {
			return n, ErrBufferTooSmall
		}
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, err
		}
	}
}

func closeReader(r io.Reader) {
	if c, ok := r.(io.Closer); ok {
		_ = c.Close()
	}
}

// corrupt tags a backend decode failure. Decode-path errors are data
// errors: the stream did not decode, whatever the library-specific reason.
func corrupt(a Algorithm, err error) error {
	return fmt.Errorf("%s: %w: %v", a, ErrCorrupted, err)
}
