package codec

import (
	"io"

	"github.com/ulikunitz/xz"
)

// xzCodec wraps the pure-Go xz/LZMA2 implementation. Levels translate to
// dictionary capacity, the main ratio/memory knob the encoder exposes.
type xzCodec struct{}

func xzConfig(l Level) xz.WriterConfig {
	switch l {
	case LevelFastest:
		return xz.WriterConfig{DictCap: 1 << 20}
	case LevelBest:
		return xz.WriterConfig{DictCap: 32 << 20}
	default:
		return xz.WriterConfig{DictCap: 8 << 20}
	}
}

func (xzCodec) Algorithm() Algorithm { return XZ }

func (xzCodec) Bound(srcLen int) int {
	// LZMA2 publishes no tight worst case; a 1/4 margin plus container
	// overhead is far beyond anything the encoder produces.
	return srcLen + srcLen/4 + 256
}

func (c xzCodec) Compress(dst, src []byte, lvl Level) ([]byte, error) {
	return compressVia(c, dst, src, lvl)
}

func (c xzCodec) Decompress(dst, src []byte) (int, error) {
	return decompressVia(c, dst, src)
}

func (xzCodec) NewStreamWriter(w io.Writer, lvl Level) (io.WriteCloser, error) {
	return xzConfig(lvl).NewWriter(w)
}

func (xzCodec) NewStreamReader(r io.Reader) (io.Reader, error) {
	return xz.NewReader(r)
}
