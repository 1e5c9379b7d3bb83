package press

import "github.com/presslib/press/codec"

// sessionConfig holds internal streaming session configuration.
type sessionConfig struct {
	level     Level
	chunkSize int
}

// SessionOption configures a Session.
type SessionOption interface {
	apply(*sessionConfig)
}

// funcOpt wraps a function as a SessionOption.
type funcOpt func(*sessionConfig)

func (f funcOpt) apply(c *sessionConfig) {
	f(c)
}

// WithLevel sets the compression level for a compress-mode session
// (default: LevelDefault). Ignored in decompress mode.
func WithLevel(lvl Level) SessionOption {
	return funcOpt(func(c *sessionConfig) {
		c.level = lvl
	})
}

// WithChunkSize sets the handoff granularity between Feed and the codec
// (default: 256KiB). Smaller chunks lower per-call latency, larger ones
// lower per-chunk overhead. This never changes the produced bytes since
// codecs block data internally.
func WithChunkSize(n int) SessionOption {
	return funcOpt(func(c *sessionConfig) {
		c.chunkSize = n
	})
}

// defaultSessionConfig returns sensible defaults.
func defaultSessionConfig() sessionConfig {
	return sessionConfig{
		level:     codec.LevelDefault,
		chunkSize: 256 << 10,
	}
}
