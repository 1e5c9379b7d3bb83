package press

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	pool "github.com/libp2p/go-buffer-pool"

	"github.com/presslib/press/codec"
)

// Mode selects the direction of a streaming session.
type Mode uint8

const (
	ModeCompress Mode = iota
	ModeDecompress
)

func (m Mode) String() string {
	if m == ModeCompress {
		return "compress"
	}
	return "decompress"
}

type sessionState uint8

const (
	stateActive sessionState = iota
	stateFinished
	stateAborted
)

// errSessionAborted unblocks the pump when Abort is called mid-stream.
var errSessionAborted = errors.New("session aborted")

// bufPool recycles the transfer chunks flowing between callers and pumps.
var bufPool = new(pool.BufferPool)

// Session is a stateful incremental compressor or decompressor. Input is
// pushed with Feed, remaining output is flushed with Finish, and Abort
// releases everything early.
//
// A session has exactly one logical owner: calls into the same session
// must not overlap. Independent sessions are fully concurrent.
//
// Internally the codec runs on a pump goroutine speaking rendezvous
// channels, translating the pull-style stream codecs into this push-style
// surface. The pump holds no queue: output the caller has not accepted
// yet parks in a single pooled spill chunk, which is the backpressure
// signaled by OkMoreOutputAvailable.
type Session struct {
	algo      Algorithm
	mode      Mode
	state     sessionState
	finishing bool

	chunkSize int

	in      chan []byte   // feed hands owned input chunks to the pump
	out     chan []byte   // pump hands produced chunks back
	done    chan struct{} // closed by Abort to release a blocked pump
	pumpErr chan error    // pump's terminal error, buffered

	outClosed bool
	err       error // terminal pump error, set once outClosed

	pending    []byte // produced bytes not yet accepted by the caller
	pendingBuf []byte // pool-owned backing array of pending
}

// StartSession opens a streaming session for the given algorithm and mode.
// The session is immediately active.
func StartSession(algo Algorithm, mode Mode, opts ...SessionOption) (*Session, error) {
	c, err := codec.Resolve(algo)
	if err != nil {
		return nil, err
	}
	if mode != ModeCompress && mode != ModeDecompress {
		return nil, fmt.Errorf("%w: mode %d", ErrInvalidInput, mode)
	}
	cfg := defaultSessionConfig()
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	if !cfg.level.Valid() {
		return nil, fmt.Errorf("%w: level %d", ErrInvalidInput, cfg.level)
	}
	if cfg.chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d", ErrInvalidInput, cfg.chunkSize)
	}

	s := &Session{
		algo:      algo,
		mode:      mode,
		chunkSize: cfg.chunkSize,
		in:        make(chan []byte),
		out:       make(chan []byte),
		done:      make(chan struct{}),
		pumpErr:   make(chan error, 1),
	}
	go s.pump(c, cfg.level)
	log.Debugw("session started", "algorithm", algo.String(), "mode", mode.String())
	return s, nil
}

// Feed consumes as much of input as the session can take and produces as
// much output as fits the caller's buffer. OkMoreOutputAvailable means
// produced output is still parked inside the session: call Feed again with
// a fresh output buffer before supplying more input. Zero-length input is
// a valid no-op.
//
// On a terminal error the byte counts still report the progress made, so
// callers can resume deterministically.
func (s *Session) Feed(input, output []byte) (Status, int, int) {
	if s.state != stateActive || s.finishing {
		return ErrorInternal, 0, 0
	}

	produced := s.drainPending(output)
	if len(s.pending) > 0 {
		return OkMoreOutputAvailable, 0, produced
	}

	consumed := 0
	for consumed < len(input) && !s.outClosed {
		chunk := input[consumed:]
		if len(chunk) > s.chunkSize {
			chunk = chunk[:s.chunkSize]
		}
		// The pump may keep a chunk past this call, so hand it an owned
		// copy; the caller is free to reuse input immediately.
		owned := bufPool.Get(len(chunk))
		copy(owned, chunk)
	handoff:
		for {
			select {
			case s.in <- owned:
				consumed += len(chunk)
				break handoff
			case b, ok := <-s.out:
				// Stay receptive to produced output while offering
				// input, or compressor backpressure would deadlock us.
				if !ok {
					s.pumpTerminated()
					bufPool.Put(owned)
					break handoff
				}
				produced += s.stash(b, output[produced:])
				if len(s.pending) > 0 {
					bufPool.Put(owned)
					return OkMoreOutputAvailable, consumed, produced
				}
			}
		}
	}

	// Input handed off; collect whatever the pump has already produced
	// without blocking for more.
	for !s.outClosed {
		select {
		case b, ok := <-s.out:
			if !ok {
				s.pumpTerminated()
				continue
			}
			produced += s.stash(b, output[produced:])
			if len(s.pending) > 0 {
				return OkMoreOutputAvailable, consumed, produced
			}
		default:
			return Ok, consumed, produced
		}
	}

	// Pump terminated: in decompress mode the stream can end before the
	// caller runs out of input; anything else is a backend failure.
	if s.err != nil {
		st := statusOf(s.err)
		s.release(stateAborted)
		return st, consumed, produced
	}
	return Ok, consumed, produced
}

// Finish flushes remaining state (closing the compression frame, or
// draining a decode to end of stream) into output. OkMoreOutputAvailable
// means output filled up before the flush completed: call Finish again
// with a fresh buffer. Ok transitions the session to Finished; calling
// Finish again after that yields ErrorInternal.
func (s *Session) Finish(output []byte) (Status, int) {
	if s.state != stateActive {
		return ErrorInternal, 0
	}

	produced := s.drainPending(output)
	if len(s.pending) > 0 {
		return OkMoreOutputAvailable, produced
	}

	if !s.finishing {
		s.finishing = true
		close(s.in) // end of input: the pump sees EOF and flushes
	}

	for !s.outClosed {
		b, ok := <-s.out
		if !ok {
			s.pumpTerminated()
			break
		}
		produced += s.stash(b, output[produced:])
		if len(s.pending) > 0 {
			return OkMoreOutputAvailable, produced
		}
	}

	if s.err != nil {
		st := statusOf(s.err)
		s.release(stateAborted)
		return st, produced
	}
	s.release(stateFinished)
	return Ok, produced
}

// Abort releases the session immediately from any state. Safe to call at
// any time, more than once, and after Finish (a no-op then).
func (s *Session) Abort() {
	if s.state != stateActive {
		return
	}
	close(s.done)
	// Drain the pump to termination so its in-flight chunks return to the
	// pool and the goroutine exits.
	for !s.outClosed {
		b, ok := <-s.out
		if !ok {
			s.pumpTerminated()
			break
		}
		bufPool.Put(b)
	}
	s.release(stateAborted)
	log.Debugw("session aborted", "algorithm", s.algo.String(), "mode", s.mode.String())
}

// Algorithm returns the session's algorithm identifier.
func (s *Session) Algorithm() Algorithm { return s.algo }

// Mode returns the session's direction.
func (s *Session) Mode() Mode { return s.mode }

// pumpTerminated records the pump's terminal error. The pump sends its
// error before closing out, so this receive never blocks.
func (s *Session) pumpTerminated() {
	s.outClosed = true
	s.err = <-s.pumpErr
}

// stash copies a produced chunk into out; whatever does not fit parks as
// the pending spill. At most one chunk is ever pending because draining
// stops as soon as the caller's buffer fills.
func (s *Session) stash(b, out []byte) int {
	n := copy(out, b)
	if n < len(b) {
		s.pending = b[n:]
		s.pendingBuf = b
	} else {
		bufPool.Put(b)
	}
	return n
}

func (s *Session) drainPending(out []byte) int {
	if len(s.pending) == 0 {
		return 0
	}
	n := copy(out, s.pending)
	s.pending = s.pending[n:]
	if len(s.pending) == 0 {
		bufPool.Put(s.pendingBuf)
		s.pendingBuf = nil
	}
	return n
}

func (s *Session) release(st sessionState) {
	s.state = st
	if s.pendingBuf != nil {
		bufPool.Put(s.pendingBuf)
		s.pending, s.pendingBuf = nil, nil
	}
}

// pump runs the codec between the session's channels until EOF, error, or
// abort, then reports its terminal error and closes out.
func (s *Session) pump(c codec.Codec, lvl codec.Level) {
	src := &chanReader{in: s.in, done: s.done}
	dst := &chanWriter{out: s.out, done: s.done}

	var err error
	switch s.mode {
	case ModeCompress:
		err = pumpCompress(c, lvl, dst, src)
	case ModeDecompress:
		err = s.decorateDecodeErr(pumpDecompress(c, dst, src))
	}
	src.discard()

	s.pumpErr <- err
	close(s.out)
}

func pumpCompress(c codec.Codec, lvl codec.Level, dst io.Writer, src io.Reader) error {
	w, err := c.NewStreamWriter(dst, lvl)
	if err != nil {
		return err
	}
	buf := bufPool.Get(copyBufSize)
	defer bufPool.Put(buf)
	if _, err := io.CopyBuffer(w, src, buf); err != nil {
		return err
	}
	return w.Close()
}

func pumpDecompress(c codec.Codec, dst io.Writer, src io.Reader) error {
	// A completely empty stream decodes to nothing. Distinguish it up
	// front: most codecs reject zero bytes as a missing header.
	var first [1]byte
	if _, err := io.ReadFull(src, first[:]); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}
	r, err := c.NewStreamReader(io.MultiReader(bytes.NewReader(first[:]), src))
	if err != nil {
		return err
	}
	defer func() {
		if cl, ok := r.(io.Closer); ok {
			_ = cl.Close()
		}
	}()
	buf := bufPool.Get(copyBufSize)
	defer bufPool.Put(buf)
	_, err = io.CopyBuffer(dst, r, buf)
	return err
}

// decorateDecodeErr tags backend decode failures as corrupt-stream. The
// pull side of a decompress pump only ever fails on undecodable data.
func (s *Session) decorateDecodeErr(err error) error {
	if err == nil || errors.Is(err, errSessionAborted) || errors.Is(err, ErrCorrupted) {
		return err
	}
	return fmt.Errorf("%s: %w: %v", s.algo, ErrCorrupted, err)
}

const copyBufSize = 64 << 10

// chanReader turns chunks handed over by Feed into an io.Reader for the
// pump. A closed channel is end of input.
type chanReader struct {
	in   <-chan []byte
	done <-chan struct{}
	cur  []byte
	buf  []byte // pool backing of cur
}

func (r *chanReader) Read(p []byte) (int, error) {
	for len(r.cur) == 0 {
		r.discard()
		select {
		case b, ok := <-r.in:
			if !ok {
				return 0, io.EOF
			}
			r.cur, r.buf = b, b
		case <-r.done:
			return 0, errSessionAborted
		}
	}
	n := copy(p, r.cur)
	r.cur = r.cur[n:]
	return n, nil
}

func (r *chanReader) discard() {
	if r.buf != nil {
		bufPool.Put(r.buf)
		r.cur, r.buf = nil, nil
	}
}

// chanWriter hands produced bytes back to Feed/Finish as owned pooled
// chunks. The rendezvous send is the session's backpressure: the pump
// cannot run ahead of the caller by more than one chunk.
type chanWriter struct {
	out  chan<- []byte
	done <-chan struct{}
}

func (w *chanWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	b := bufPool.Get(len(p))
	copy(b, p)
	select {
	case w.out <- b:
		return len(p), nil
	case <-w.done:
		bufPool.Put(b)
		return 0, errSessionAborted
	}
}
