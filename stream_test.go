package press

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// driveSession pushes input through a session in inChunk-sized pieces,
// collecting output through outBuf-sized buffers and honoring the
// OkMoreOutputAvailable backpressure signal the way a real caller would.
func driveSession(t *testing.T, s *Session, input []byte, inChunk, outBuf int) []byte {
	t.Helper()
	var result []byte
	out := make([]byte, outBuf)

	for off := 0; off < len(input); {
		end := off + inChunk
		if end > len(input) {
			end = len(input)
		}
		chunk := input[off:end]
		for len(chunk) > 0 {
			st, consumed, produced := s.Feed(chunk, out)
			require.False(t, st.IsError(), "feed: %s", st)
			result = append(result, out[:produced]...)
			chunk = chunk[consumed:]
			if st == Ok && consumed == 0 && len(chunk) > 0 {
				// Stream ended with input left over (decompress mode).
				return result
			}
		}
		off = end
	}

	for {
		st, produced := s.Finish(out)
		require.False(t, st.IsError(), "finish: %s", st)
		result = append(result, out[:produced]...)
		if st == Ok {
			return result
		}
	}
}

func TestSession_CompressMatchesOneShot(t *testing.T) {
	payload := bytes.Repeat([]byte("streaming equivalence payload "), 3000)

	for _, algo := range Algorithms() {
		oneShot, err := CompressAlloc(algo, LevelDefault, payload)
		require.NoError(t, err)

		for _, inChunk := range []int{1 << 10, 7919, 64 << 10} {
			s, err := StartSession(algo, ModeCompress)
			require.NoError(t, err)
			streamed := driveSession(t, s, payload, inChunk, 32<<10)

			// Chunking never changes the produced bytes: stream writers
			// block data internally. The zstd one-shot path encodes
			// through EncodeAll, so only functional equality holds there.
			if algo != Zstd {
				require.Equal(t, oneShot, streamed, "%s chunk=%d", algo, inChunk)
			}

			out, err := DecompressAlloc(algo, streamed)
			require.NoError(t, err, "%s chunk=%d", algo, inChunk)
			require.Equal(t, payload, out)
		}
	}
}

func TestSession_DecompressArbitraryChunking(t *testing.T) {
	payload := bytes.Repeat([]byte("decompress in pieces "), 5000)

	for _, algo := range Algorithms() {
		comp, err := CompressAlloc(algo, LevelDefault, payload)
		require.NoError(t, err)

		for _, inChunk := range []int{1, 13, 4 << 10} {
			if inChunk == 1 && len(comp) > 16<<10 {
				// Byte-at-a-time over a large stream is pointlessly slow.
				continue
			}
			s, err := StartSession(algo, ModeDecompress)
			require.NoError(t, err)
			out := driveSession(t, s, comp, inChunk, 8<<10)
			require.Equal(t, payload, out, "%s chunk=%d", algo, inChunk)
		}
	}
}

func TestSession_RoundTripRandomData(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	payload := make([]byte, 512<<10)
	_, err := rng.Read(payload)
	require.NoError(t, err)

	for _, algo := range Algorithms() {
		cs, err := StartSession(algo, ModeCompress, WithLevel(LevelFastest))
		require.NoError(t, err)
		comp := driveSession(t, cs, payload, 100<<10, 64<<10)

		ds, err := StartSession(algo, ModeDecompress)
		require.NoError(t, err)
		out := driveSession(t, ds, comp, 50<<10, 64<<10)
		require.Equal(t, payload, out, "%s", algo)
	}
}

// Tiny output buffers force the session to park produced output and signal
// backpressure instead of buffering unboundedly.
func TestSession_BackpressureSmallOutputBuffers(t *testing.T) {
	payload := bytes.Repeat([]byte{0x7F, 0x01, 0x02}, 40000)

	s, err := StartSession(Gzip, ModeCompress)
	require.NoError(t, err)
	comp := driveSession(t, s, payload, 16<<10, 64)

	out, err := DecompressAlloc(Gzip, comp)
	require.NoError(t, err)
	require.Equal(t, payload, out)
}

func TestSession_ZeroLengthOutputWithPendingData(t *testing.T) {
	// Incompressible data through snappy's 64KiB framing guarantees the
	// session accumulates parked output quickly.
	payload := make([]byte, 256<<10)
	rng := rand.New(rand.NewSource(3))
	_, err := rng.Read(payload)
	require.NoError(t, err)

	s, err := StartSession(Snappy, ModeCompress, WithChunkSize(4<<10))
	require.NoError(t, err)
	defer s.Abort()

	// Push input until the session parks output, then offer an empty
	// output buffer: this must be OkMoreOutputAvailable with 0 produced,
	// never an error.
	small := make([]byte, 8)
	sawPending := false
	chunk := payload
	for i := 0; i < 1000 && !sawPending; i++ {
		st, consumed, _ := s.Feed(chunk, small)
		require.False(t, st.IsError())
		chunk = chunk[consumed:]
		if st == OkMoreOutputAvailable {
			sawPending = true
		}
	}
	require.True(t, sawPending, "session never signaled pending output")

	st, consumed, produced := s.Feed(nil, nil)
	require.Equal(t, OkMoreOutputAvailable, st)
	require.Zero(t, consumed)
	require.Zero(t, produced)
}

func TestSession_ZeroLengthInputIsNoOp(t *testing.T) {
	s, err := StartSession(Zstd, ModeCompress)
	require.NoError(t, err)
	defer s.Abort()

	st, consumed, produced := s.Feed(nil, make([]byte, 64))
	require.Equal(t, Ok, st)
	require.Zero(t, consumed)
	require.Zero(t, produced)
}

// Finishing a decompress session before feeding anything is a valid empty
// stream: Ok with nothing produced.
func TestSession_FinishEmptyDecompressStream(t *testing.T) {
	for _, algo := range Algorithms() {
		s, err := StartSession(algo, ModeDecompress)
		require.NoError(t, err)

		st, produced := s.Finish(make([]byte, 64))
		require.Equal(t, Ok, st, "%s", algo)
		require.Zero(t, produced, "%s", algo)
	}
}

func TestSession_FeedAfterFinish(t *testing.T) {
	s, err := StartSession(Zstd, ModeCompress)
	require.NoError(t, err)

	out := make([]byte, 64<<10)
	st, _ := s.Finish(out)
	require.Equal(t, Ok, st)

	st, _, _ = s.Feed([]byte("late"), out)
	require.Equal(t, ErrorInternal, st)
}

func TestSession_DoubleFinish(t *testing.T) {
	s, err := StartSession(S2, ModeCompress)
	require.NoError(t, err)

	out := make([]byte, 64<<10)
	st, _ := s.Finish(out)
	require.Equal(t, Ok, st)

	st, _ = s.Finish(out)
	require.Equal(t, ErrorInternal, st)
}

func TestSession_AbortIsIdempotent(t *testing.T) {
	s, err := StartSession(LZ4, ModeCompress)
	require.NoError(t, err)

	_, _, _ = s.Feed(bytes.Repeat([]byte{1}, 1024), make([]byte, 4<<10))
	s.Abort()
	s.Abort() // second abort is a no-op

	st, _, _ := s.Feed([]byte("x"), make([]byte, 64))
	require.Equal(t, ErrorInternal, st)
	st, _ = s.Finish(make([]byte, 64))
	require.Equal(t, ErrorInternal, st)
}

func TestSession_AbortAfterFinishIsNoOp(t *testing.T) {
	s, err := StartSession(Snappy, ModeCompress)
	require.NoError(t, err)

	out := make([]byte, 64<<10)
	st, _ := s.Finish(out)
	require.Equal(t, Ok, st)

	s.Abort()
}

func TestSession_CorruptStream(t *testing.T) {
	payload := bytes.Repeat([]byte("stream corruption "), 2000)
	comp, err := CompressAlloc(Zstd, LevelDefault, payload)
	require.NoError(t, err)

	mutated := bytes.Clone(comp)
	mutated[len(mutated)/2] ^= 0xFF

	s, err := StartSession(Zstd, ModeDecompress)
	require.NoError(t, err)

	out := make([]byte, 64<<10)
	chunk := mutated
	var st Status
	for {
		var consumed int
		st, consumed, _ = s.Feed(chunk, out)
		chunk = chunk[consumed:]
		if st != Ok && st != OkMoreOutputAvailable {
			break
		}
		if len(chunk) == 0 {
			st, _ = s.Finish(out)
			break
		}
	}
	require.Equal(t, ErrorCorruptStream, st)

	// The session is dead after a terminal error.
	st, _, _ = s.Feed([]byte("more"), out)
	require.Equal(t, ErrorInternal, st)
}

func TestSession_InvalidArguments(t *testing.T) {
	_, err := StartSession(Algorithm(123), ModeCompress)
	require.ErrorIs(t, err, ErrUnsupportedAlgorithm)

	_, err = StartSession(Zstd, Mode(9))
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = StartSession(Zstd, ModeCompress, WithLevel(Level(42)))
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = StartSession(Zstd, ModeCompress, WithChunkSize(-5))
	require.ErrorIs(t, err, ErrInvalidInput)
}
