package press

import (
	"io"

	"github.com/cespare/xxhash/v2"
)

// ChecksumReader wraps a reader and computes an xxhash64 digest of
// everything read through it. Callers use it to verify round-trips
// without holding either side of the transform in memory.
type ChecksumReader struct {
	r    io.Reader
	hash *xxhash.Digest
}

// NewChecksumReader creates a reader that digests all bytes passing through.
func NewChecksumReader(r io.Reader) *ChecksumReader {
	return &ChecksumReader{r: r, hash: xxhash.New()}
}

// Read implements io.Reader, updating the digest incrementally.
func (c *ChecksumReader) Read(p []byte) (n int, err error) {
	n, err = c.r.Read(p)
	if n > 0 {
		// xxhash.Digest.Write never fails
		_, _ = c.hash.Write(p[:n])
	}
	return n, err
}

// Sum64 returns the digest of all bytes read so far.
func (c *ChecksumReader) Sum64() uint64 {
	return c.hash.Sum64()
}
