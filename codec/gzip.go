package codec

import (
	"io"

	"github.com/klauspost/compress/gzip"
)

func deflateLevel(l Level) int {
	switch l {
	case LevelFastest:
		return gzip.BestSpeed
	case LevelBest:
		return gzip.BestCompression
	default:
		return gzip.DefaultCompression
	}
}

type gzipCodec struct{}

func (gzipCodec) Algorithm() Algorithm { return Gzip }

func (gzipCodec) Bound(srcLen int) int {
	// Deflate worst case stores 32KiB blocks behind 5-byte headers;
	// gzip adds a 10-byte header and 8-byte trailer.
	return srcLen + 5*(srcLen>>15+1) + 18 + 64
}

func (c gzipCodec) Compress(dst, src []byte, lvl Level) ([]byte, error) {
	return compressVia(c, dst, src, lvl)
}

func (c gzipCodec) Decompress(dst, src []byte) (int, error) {
	return decompressVia(c, dst, src)
}

func (gzipCodec) NewStreamWriter(w io.Writer, lvl Level) (io.WriteCloser, error) {
	return gzip.NewWriterLevel(w, deflateLevel(lvl))
}

func (gzipCodec) NewStreamReader(r io.Reader) (io.Reader, error) {
	return gzip.NewReader(r)
}
