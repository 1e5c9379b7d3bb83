package codec

import (
	"io"

	"github.com/pierrec/lz4/v4"
)

// lz4Level maps normalized levels to LZ4 specific levels. Fast uses the
// plain algorithm, the rest use High Compression (HC).
func lz4Level(l Level) lz4.CompressionLevel {
	switch l {
	case LevelFastest:
		return lz4.Fast
	case LevelBest:
		return lz4.Level9
	default:
		return lz4.Level5
	}
}

// lz4Codec uses the LZ4 frame format for both one-shot and streaming, so
// the two surfaces stay wire compatible.
type lz4Codec struct{}

const lz4BlockSize = 4 << 20

func (lz4Codec) Algorithm() Algorithm { return LZ4 }

func (lz4Codec) Bound(srcLen int) int {
	// Incompressible blocks are stored raw behind a 4-byte size word.
	// Frame header, end mark and content checksum on top.
	blocks := srcLen/lz4BlockSize + 1
	return srcLen + 4*blocks + 19 + 8 + 64
}

func (c lz4Codec) Compress(dst, src []byte, lvl Level) ([]byte, error) {
	return compressVia(c, dst, src, lvl)
}

func (c lz4Codec) Decompress(dst, src []byte) (int, error) {
	return decompressVia(c, dst, src)
}

func (lz4Codec) NewStreamWriter(w io.Writer, lvl Level) (io.WriteCloser, error) {
	zw := lz4.NewWriter(w)
	err := zw.Apply(
		lz4.CompressionLevelOption(lz4Level(lvl)),
		lz4.BlockSizeOption(lz4.Block4Mb),
		lz4.ConcurrencyOption(1),
	)
	if err != nil {
		return nil, err
	}
	return zw, nil
}

func (lz4Codec) NewStreamReader(r io.Reader) (io.Reader, error) {
	return lz4.NewReader(r), nil
}
