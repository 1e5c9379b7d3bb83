package codec

import (
	"io"

	"github.com/golang/snappy"
)

// snappyCodec uses the snappy framing format. Snappy has no levels; the
// level argument is accepted and ignored.
type snappyCodec struct{}

func (snappyCodec) Algorithm() Algorithm { return Snappy }

func (snappyCodec) Bound(srcLen int) int {
	// 10-byte stream identifier; source is cut into 65536-byte chunks,
	// each carrying an 8-byte header and stored raw when incompressible.
	chunks := srcLen/65536 + 1
	return srcLen + 8*chunks + 10 + 64
}

func (c snappyCodec) Compress(dst, src []byte, lvl Level) ([]byte, error) {
	return compressVia(c, dst, src, lvl)
}

func (c snappyCodec) Decompress(dst, src []byte) (int, error) {
	return decompressVia(c, dst, src)
}

func (snappyCodec) NewStreamWriter(w io.Writer, _ Level) (io.WriteCloser, error) {
	return snappy.NewBufferedWriter(w), nil
}

func (snappyCodec) NewStreamReader(r io.Reader) (io.Reader, error) {
	return snappy.NewReader(r), nil
}
