// Package corelog is the structured logger the core uses for the
// soft-failure paths the error-handling design calls out: ResourceLimit
// truncation and InvariantViolation clamps. It wraps logrus (the
// structured-logging library carried by the rest of the retrieval pack's
// manifests) rather than the standard library's log package, so fields like
// tick number and particle id are queryable instead of string-formatted.
package corelog

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger is a thin wrapper around a *logrus.Logger scoped to one simulation
// instance, plus the per-tick "log once" latches the soft-failure paths need
// (§7: "log once per tick").
type Logger struct {
	base *logrus.Logger

	mu      sync.Mutex
	tick    uint64
	latched map[string]uint64
}

// New creates a Logger writing structured entries at Info level and above.
func New() *Logger {
	base := logrus.New()
	base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return &Logger{base: base, latched: make(map[string]uint64)}
}

// BeginTick records the current tick number, clearing the once-per-tick
// latches so each new tick can log its own first occurrence of a condition.
func (l *Logger) BeginTick(tick uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tick = tick
	l.latched = make(map[string]uint64)
}

// Once logs fields under msg at most one time per tick per distinct key,
// used by the ResourceLimit (neighbour-cap truncation) and InvariantViolation
// (clamp) soft-failure paths so a pathological tick does not flood the log.
func (l *Logger) Once(key, msg string, fields logrus.Fields) {
	l.mu.Lock()
	if last, ok := l.latched[key]; ok && last == l.tick {
		l.mu.Unlock()
		return
	}
	l.latched[key] = l.tick
	l.mu.Unlock()

	if fields == nil {
		fields = logrus.Fields{}
	}
	fields["tick"] = l.tick
	l.base.WithFields(fields).Warn(msg)
}

// Base returns the underlying logrus.Logger for callers that want to
// configure output level or destination directly.
func (l *Logger) Base() *logrus.Logger { return l.base }
