package codec

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// testPayloads covers the shapes that trip codecs up: empty, tiny, highly
// repetitive, and incompressible.
func testPayloads(t *testing.T) map[string][]byte {
	t.Helper()
	rng := rand.New(rand.NewSource(42))
	random := make([]byte, 128<<10)
	_, err := rng.Read(random)
	require.NoError(t, err)

	text := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog\n"), 2000)

	return map[string][]byte{
		"empty":      {},
		"one-byte":   {0x41},
		"repetitive": bytes.Repeat([]byte{0x41}, 10000),
		"text":       text,
		"random":     random,
	}
}

func TestResolve_AllRegistered(t *testing.T) {
	require.Len(t, Algorithms(), int(algorithmCount))
	for _, a := range Algorithms() {
		c, err := Resolve(a)
		require.NoError(t, err)
		require.Equal(t, a, c.Algorithm())
	}
}

func TestResolve_Unknown(t *testing.T) {
	_, err := Resolve(Algorithm(200))
	require.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

func TestCodec_CompressInvalidLevel(t *testing.T) {
	for _, a := range Algorithms() {
		c, err := Resolve(a)
		require.NoError(t, err)
		require.NotPanics(t, func() {
			_, err := c.Compress(make([]byte, 1024), []byte("hello"), Level(42))
			require.ErrorIs(t, err, ErrInvalidInput, a.String())
		}, a.String())
	}
}

func TestParseAlgorithm(t *testing.T) {
	for _, a := range Algorithms() {
		parsed, err := ParseAlgorithm(a.String())
		require.NoError(t, err)
		require.Equal(t, a, parsed)
	}

	_, err := ParseAlgorithm("no-such-codec")
	require.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

func TestCodec_RoundTrip(t *testing.T) {
	for _, a := range Algorithms() {
		c, err := Resolve(a)
		require.NoError(t, err)

		for name, payload := range testPayloads(t) {
			t.Run(a.String()+"/"+name, func(t *testing.T) {
				comp := make([]byte, c.Bound(len(payload)))
				out, err := c.Compress(comp, payload, LevelDefault)
				require.NoError(t, err)
				require.LessOrEqual(t, len(out), c.Bound(len(payload)))

				dst := make([]byte, len(payload))
				n, err := c.Decompress(dst, out)
				require.NoError(t, err)
				require.Equal(t, len(payload), n)
				require.Equal(t, payload, dst[:n])
			})
		}
	}
}

func TestCodec_RoundTripAllLevels(t *testing.T) {
	payload := bytes.Repeat([]byte("level sweep payload "), 500)
	for _, a := range Algorithms() {
		c, err := Resolve(a)
		require.NoError(t, err)

		for _, lvl := range []Level{LevelDefault, LevelFastest, LevelBest} {
			out, err := c.Compress(make([]byte, c.Bound(len(payload))), payload, lvl)
			require.NoError(t, err, "%s level %d", a, lvl)

			dst := make([]byte, len(payload))
			n, err := c.Decompress(dst, out)
			require.NoError(t, err, "%s level %d", a, lvl)
			require.Equal(t, payload, dst[:n])
		}
	}
}

func TestCodec_CompressBufferTooSmall(t *testing.T) {
	payload := make([]byte, 64<<10)
	rng := rand.New(rand.NewSource(7))
	_, err := rng.Read(payload)
	require.NoError(t, err)

	for _, a := range Algorithms() {
		c, err := Resolve(a)
		require.NoError(t, err)

		// Random data cannot shrink to half its size.
		_, err = c.Compress(make([]byte, len(payload)/2), payload, LevelDefault)
		require.ErrorIs(t, err, ErrBufferTooSmall, "%s", a)
	}
}

func TestCodec_DecompressBufferTooSmall(t *testing.T) {
	payload := bytes.Repeat([]byte{0xCC}, 4096)
	for _, a := range Algorithms() {
		c, err := Resolve(a)
		require.NoError(t, err)

		out, err := c.Compress(make([]byte, c.Bound(len(payload))), payload, LevelDefault)
		require.NoError(t, err)

		// The stream decodes to 4096 bytes; a short buffer must fail
		// without writing past its length.
		_, err = c.Decompress(make([]byte, len(payload)-1), out)
		require.ErrorIs(t, err, ErrBufferTooSmall, "%s", a)
	}
}

func TestCodec_StreamAndOneShotShareFormat(t *testing.T) {
	payload := bytes.Repeat([]byte("format compatibility "), 4000)
	for _, a := range Algorithms() {
		c, err := Resolve(a)
		require.NoError(t, err)

		// Stream-written bytes decode through the one-shot path.
		var buf bytes.Buffer
		w, err := c.NewStreamWriter(&buf, LevelDefault)
		require.NoError(t, err)
		_, err = w.Write(payload)
		require.NoError(t, err)
		require.NoError(t, w.Close())

		dst := make([]byte, len(payload))
		n, err := c.Decompress(dst, buf.Bytes())
		require.NoError(t, err, "%s", a)
		require.Equal(t, payload, dst[:n])

		// And one-shot bytes decode through the stream reader.
		out, err := c.Compress(make([]byte, c.Bound(len(payload))), payload, LevelDefault)
		require.NoError(t, err)
		r, err := c.NewStreamReader(bytes.NewReader(out))
		require.NoError(t, err)
		round := make([]byte, len(payload))
		n, err = readInto(round, r)
		closeReader(r)
		require.NoError(t, err, "%s", a)
		require.Equal(t, payload, round[:n])
	}
}

func TestBound_PureAndMonotonic(t *testing.T) {
	for _, a := range Algorithms() {
		c, err := Resolve(a)
		require.NoError(t, err)

		prev := -1
		for _, n := range []int{0, 1, 100, 1 << 10, 1 << 16, 1 << 20, 64 << 20} {
			b1 := c.Bound(n)
			b2 := c.Bound(n)
			require.Equal(t, b1, b2, "%s bound not pure at %d", a, n)
			require.GreaterOrEqual(t, b1, n, "%s bound below input size", a)
			require.Greater(t, b1, prev, "%s bound not monotonic at %d", a, n)
			prev = b1
		}
	}
}

func TestCapWriter_Overflow(t *testing.T) {
	cw := &capWriter{dst: make([]byte, 4)}

	n, err := cw.Write([]byte{1, 2})
	require.NoError(t, err)
	require.Equal(t, 2, n)

	n, err = cw.Write([]byte{3, 4, 5})
	require.ErrorIs(t, err, ErrBufferTooSmall)
	require.Equal(t, 2, n)
	require.True(t, cw.overflow)
	require.Equal(t, []byte{1, 2, 3, 4}, cw.dst)

	// Later writes keep failing without touching the buffer.
	n, err = cw.Write([]byte{6})
	require.ErrorIs(t, err, ErrBufferTooSmall)
	require.Equal(t, 0, n)
}
