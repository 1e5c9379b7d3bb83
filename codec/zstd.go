package codec

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

func zstdLevel(l Level) zstd.EncoderLevel {
	switch l {
	case LevelFastest:
		return zstd.SpeedFastest
	case LevelBest:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}

// zstdCodec wraps the pure-Go zstd implementation. One encoder per level is
// built at registration; EncodeAll/DecodeAll on shared instances are safe
// for concurrent use, so one-shot calls never allocate an encoder.
type zstdCodec struct {
	encoders [levelCount]*zstd.Encoder
	decoder  *zstd.Decoder
}

func newZstdCodec() *zstdCodec {
	c := &zstdCodec{}
	for lvl := Level(0); lvl < levelCount; lvl++ {
		enc, err := zstd.NewWriter(nil, zstdEncoderOpts(lvl)...)
		if err != nil {
			panic("codec: zstd encoder init: " + err.Error())
		}
		c.encoders[lvl] = enc
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		panic("codec: zstd decoder init: " + err.Error())
	}
	c.decoder = dec
	return c
}

func zstdEncoderOpts(lvl Level) []zstd.EOption {
	// WithZeroFrames makes empty input produce a valid, decodable frame
	// instead of zero bytes.
	return []zstd.EOption{
		zstd.WithEncoderLevel(zstdLevel(lvl)),
		zstd.WithEncoderConcurrency(1),
		zstd.WithZeroFrames(true),
	}
}

func (c *zstdCodec) Algorithm() Algorithm { return Zstd }

func (c *zstdCodec) Bound(srcLen int) int {
	return c.encoders[LevelDefault].MaxEncodedSize(srcLen)
}

func (c *zstdCodec) Compress(dst, src []byte, lvl Level) ([]byte, error) {
	if !lvl.Valid() {
		return nil, fmt.Errorf("%w: level %d", ErrInvalidInput, lvl)
	}
	// The capacity clamp keeps EncodeAll from appending into the caller's
	// array beyond the declared length.
	res := c.encoders[lvl].EncodeAll(src, dst[:0:len(dst)])
	if grown(res, dst) {
		return nil, ErrBufferTooSmall
	}
	return res, nil
}

func (c *zstdCodec) Decompress(dst, src []byte) (int, error) {
	if len(src) == 0 {
		return 0, nil
	}
	res, err := c.decoder.DecodeAll(src, dst[:0:len(dst)])
	if err != nil {
		return 0, corrupt(Zstd, err)
	}
	if grown(res, dst) {
		return 0, ErrBufferTooSmall
	}
	return len(res), nil
}

func (c *zstdCodec) NewStreamWriter(w io.Writer, lvl Level) (io.WriteCloser, error) {
	return zstd.NewWriter(w, zstdEncoderOpts(lvl)...)
}

func (c *zstdCodec) NewStreamReader(r io.Reader) (io.Reader, error) {
	dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	return dec.IOReadCloser(), nil
}

// grown detects append-style APIs outgrowing the caller's buffer: the
// result either exceeds the declared length or was reallocated elsewhere.
func grown(res, dst []byte) bool {
	if len(res) > len(dst) {
		return true
	}
	return len(res) > 0 && &res[0] != &dst[0]
}
