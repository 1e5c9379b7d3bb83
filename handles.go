package press

import (
	"sync/atomic"

	"github.com/zhangyunhao116/skipmap"
)

// Binding layers cannot hold Go pointers across a foreign boundary, so
// sessions are addressed by opaque integer handles. The table supports
// concurrent open/close from independent callers; calls into any single
// session remain single-owner as always.
var (
	sessions   = skipmap.NewUint64[*Session]()
	nextHandle atomic.Uint64
)

// OpenSession starts a streaming session and returns its handle. A zero
// handle means failure, with the Status saying why. algoID, modeID and
// levelID carry the same numeric values as Algorithm, Mode and Level.
func OpenSession(algoID, modeID, levelID int) (uint64, Status) {
	if algoID < 0 || algoID > 255 || modeID < 0 || modeID > 255 || levelID < 0 || levelID > 255 {
		return 0, ErrorInvalidInput
	}
	s, err := StartSession(Algorithm(algoID), Mode(modeID), WithLevel(Level(levelID)))
	if err != nil {
		return 0, statusOf(err)
	}
	h := nextHandle.Add(1)
	sessions.Store(h, s)
	return h, Ok
}

// CompressByID is the one-shot counterpart of OpenSession: ids arrive as
// plain ints and are range-checked before narrowing, so a binding passing
// an out-of-range value fails instead of aliasing onto a valid id.
func CompressByID(algoID, levelID int, dst, src []byte) (Status, int) {
	if algoID < 0 || algoID > 255 || levelID < 0 || levelID > 255 {
		return ErrorInvalidInput, 0
	}
	return Compress(Algorithm(algoID), Level(levelID), dst, src)
}

// DecompressByID is the one-shot decompress surface for binding layers.
func DecompressByID(algoID int, dst, src []byte) (Status, int) {
	if algoID < 0 || algoID > 255 {
		return ErrorInvalidInput, 0
	}
	return Decompress(Algorithm(algoID), dst, src)
}

// BoundByID sizes an output buffer for binding layers. A negative return
// means failure, mirroring how OpenSession signals with a zero handle.
func BoundByID(algoID, srcLen int) (int, Status) {
	if algoID < 0 || algoID > 255 {
		return -1, ErrorInvalidInput
	}
	n, err := Bound(Algorithm(algoID), srcLen)
	if err != nil {
		return -1, statusOf(err)
	}
	return n, Ok
}

// SessionFeed forwards Feed to the session behind the handle. An unknown
// or already-released handle yields ErrorInternal.
func SessionFeed(h uint64, input, output []byte) (Status, int, int) {
	s, ok := sessions.Load(h)
	if !ok {
		return ErrorInternal, 0, 0
	}
	st, consumed, produced := s.Feed(input, output)
	if s.state != stateActive {
		sessions.LoadAndDelete(h)
	}
	return st, consumed, produced
}

// SessionFinish forwards Finish; the handle is released once the session
// reaches a terminal state.
func SessionFinish(h uint64, output []byte) (Status, int) {
	s, ok := sessions.Load(h)
	if !ok {
		return ErrorInternal, 0
	}
	st, produced := s.Finish(output)
	if s.state != stateActive {
		sessions.LoadAndDelete(h)
	}
	return st, produced
}

// SessionAbort releases the session and its handle. Unknown handles are a
// no-op, so double-abort from a binding layer is harmless.
func SessionAbort(h uint64) {
	if s, ok := sessions.LoadAndDelete(h); ok {
		s.Abort()
	}
}
