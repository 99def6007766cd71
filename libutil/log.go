package libutil

import (
	"fmt"
	"io"
	"log"
	"sync"
)

type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// DefaultLogger prints info and debug output to out, warnings and errors to err.
type DefaultLogger struct {
	mu    sync.Mutex
	debug bool
	quiet bool
	out   *log.Logger
	err   *log.Logger
}

func NewDefaultLogger(out, err io.Writer, quiet, debug bool) *DefaultLogger {
	flags := log.LstdFlags | log.Lmicroseconds
	return &DefaultLogger{
		debug: debug,
		quiet: quiet,
		out:   log.New(out, "", flags),
		err:   log.New(err, "", flags),
	}
}

func (l *DefaultLogger) DebugEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debug
}

func (l *DefaultLogger) SetDebug(enabled bool) {
	l.mu.Lock()
	l.debug = enabled
	l.mu.Unlock()
}

func (l *DefaultLogger) Debugf(format string, args ...any) {
	if !l.DebugEnabled() {
		return
	}
	l.out.Print("DEBUG: " + fmt.Sprintf(format, args...))
}

// Infof is silenced by quiet, warnings and errors are not.
func (l *DefaultLogger) Infof(format string, args ...any) {
	if l.quiet {
		return
	}
	l.out.Print("INFO: " + fmt.Sprintf(format, args...))
}

func (l *DefaultLogger) Warnf(format string, args ...any) {
	l.err.Print("WARN: " + fmt.Sprintf(format, args...))
}

func (l *DefaultLogger) Errorf(format string, args ...any) {
	l.err.Print("ERROR: " + fmt.Sprintf(format, args...))
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) DebugEnabled() bool { return false }
func (NopLogger) SetDebug(bool) {}
func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any) {}
func (NopLogger) Warnf(string, ...any) {}
func (NopLogger) Errorf(string, ...any) {}
