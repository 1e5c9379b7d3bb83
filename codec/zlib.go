package codec

import (
	"io"

	"github.com/klauspost/compress/zlib"
)

type zlibCodec struct{}

func (zlibCodec) Algorithm() Algorithm { return Zlib }

func (zlibCodec) Bound(srcLen int) int {
	// Same deflate worst case as gzip with the smaller zlib envelope:
	// 2-byte header plus 4-byte Adler-32.
	return srcLen + 5*(srcLen>>15+1) + 6 + 64
}

func (c zlibCodec) Compress(dst, src []byte, lvl Level) ([]byte, error) {
	return compressVia(c, dst, src, lvl)
}

func (c zlibCodec) Decompress(dst, src []byte) (int, error) {
	return decompressVia(c, dst, src)
}

func (zlibCodec) NewStreamWriter(w io.Writer, lvl Level) (io.WriteCloser, error) {
	return zlib.NewWriterLevel(w, deflateLevel(lvl))
}

func (zlibCodec) NewStreamReader(r io.Reader) (io.Reader, error) {
	return zlib.NewReader(r)
}
