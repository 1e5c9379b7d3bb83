package codec

import (
	"io"

	"github.com/andybalholm/brotli"
)

func brotliLevel(l Level) int {
	switch l {
	case LevelFastest:
		return brotli.BestSpeed
	case LevelBest:
		return brotli.BestCompression
	default:
		return brotli.DefaultCompression
	}
}

type brotliCodec struct{}

func (brotliCodec) Algorithm() Algorithm { return Brotli }

func (brotliCodec) Bound(srcLen int) int {
	// Incompressible data ends up in uncompressed meta-blocks with small
	// headers; the margin here is well past the encoder's worst case.
	return srcLen + srcLen>>10 + 1024
}

func (c brotliCodec) Compress(dst, src []byte, lvl Level) ([]byte, error) {
	return compressVia(c, dst, src, lvl)
}

func (c brotliCodec) Decompress(dst, src []byte) (int, error) {
	return decompressVia(c, dst, src)
}

func (brotliCodec) NewStreamWriter(w io.Writer, lvl Level) (io.WriteCloser, error) {
	return brotli.NewWriterLevel(w, brotliLevel(lvl)), nil
}

func (brotliCodec) NewStreamReader(r io.Reader) (io.Reader, error) {
	return brotli.NewReader(r), nil
}
