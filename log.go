package press

import "go.uber.org/zap"

// Global logger for all sessions; nop unless the embedding application
// installs one.
var log = zap.NewNop().Sugar()

// SetLogger configures the global logger.
func SetLogger(l *zap.Logger) {
	log = l.Sugar()
}
