package codec

import (
	"io"

	"github.com/klauspost/compress/s2"
)

// s2Codec uses the S2 stream format (snappy framing with S2 extensions).
type s2Codec struct{}

const s2BlockSize = 1 << 20

func (s2Codec) Algorithm() Algorithm { return S2 }

func (s2Codec) Bound(srcLen int) int {
	// Stream identifier plus per-chunk header and CRC; chunks that do not
	// compress are emitted raw.
	chunks := srcLen/s2BlockSize + 1
	return srcLen + 8*chunks + 10 + 64
}

func (c s2Codec) Compress(dst, src []byte, lvl Level) ([]byte, error) {
	return compressVia(c, dst, src, lvl)
}

func (c s2Codec) Decompress(dst, src []byte) (int, error) {
	return decompressVia(c, dst, src)
}

func (s2Codec) NewStreamWriter(w io.Writer, lvl Level) (io.WriteCloser, error) {
	opts := []s2.WriterOption{
		s2.WriterConcurrency(1),
		s2.WriterBlockSize(s2BlockSize),
	}
	switch lvl {
	case LevelBest:
		opts = append(opts, s2.WriterBestCompression())
	case LevelDefault:
		opts = append(opts, s2.WriterBetterCompression())
	}
	return s2.NewWriter(w, opts...), nil
}

func (s2Codec) NewStreamReader(r io.Reader) (io.Reader, error) {
	return s2.NewReader(r), nil
}
