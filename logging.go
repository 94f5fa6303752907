package gpuparticles

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// Logger is the logging surface used by pools and systems. Hot paths check
// DebugEnabled before formatting.
type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	// Scoped returns a logger that tags every line with scope, such as
	// "pool <id>". It shares output and debug state with its parent.
	Scoped(scope string) Logger
}

// logSink is the state shared by a logger and all its scoped children.
type logSink struct {
	mu    sync.Mutex
	debug bool
	out   *log.Logger
	err   *log.Logger
}

type DefaultLogger struct {
	sink   *logSink
	prefix string
	scope  string
}

// NewDefaultLogger logs info and debug to stdout, warnings and errors to stderr.
func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	return NewWriterLogger(prefix, debug, os.Stdout, os.Stderr)
}

// NewWriterLogger is NewDefaultLogger with explicit destinations.
func NewWriterLogger(prefix string, debug bool, out, errOut io.Writer) *DefaultLogger {
	flags := log.LstdFlags | log.Lmicroseconds
	return &DefaultLogger{
		sink: &logSink{
			debug: debug,
			out:   log.New(out, "", flags),
			err:   log.New(errOut, "", flags),
		},
		prefix: prefix,
	}
}

func (l *DefaultLogger) Scoped(scope string) Logger {
	if l.scope != "" {
		scope = l.scope + "/" + scope
	}
	return &DefaultLogger{sink: l.sink, prefix: l.prefix, scope: scope}
}

func (l *DefaultLogger) DebugEnabled() bool {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return l.sink.debug
}

func (l *DefaultLogger) SetDebug(enabled bool) {
	l.sink.mu.Lock()
	l.sink.debug = enabled
	l.sink.mu.Unlock()
}

// line renders "[prefix] LEVEL scope: message", dropping empty parts.
func (l *DefaultLogger) line(level string, format string, args ...any) string {
	head := level
	if l.prefix != "" {
		head = "[" + l.prefix + "] " + head
	}
	if l.scope != "" {
		head += " " + l.scope
	}
	return head + ": " + fmt.Sprintf(format, args...)
}

func (l *DefaultLogger) Debugf(format string, args ...any) {
	if !l.DebugEnabled() {
		return
	}
	l.sink.out.Print(l.line("DEBUG", format, args...))
}

func (l *DefaultLogger) Infof(format string, args ...any) {
	l.sink.out.Print(l.line("INFO", format, args...))
}

func (l *DefaultLogger) Warnf(format string, args ...any) {
	l.sink.err.Print(l.line("WARN", format, args...))
}

func (l *DefaultLogger) Errorf(format string, args ...any) {
	l.sink.err.Print(l.line("ERROR", format, args...))
}

// Nop logger

type nopLogger struct{}

func NewNopLogger() Logger { return nopLogger{} }

func (nopLogger) DebugEnabled() bool     { return false }
func (nopLogger) SetDebug(bool)          {}
func (nopLogger) Debugf(string, ...any)  {}
func (nopLogger) Infof(string, ...any)   {}
func (nopLogger) Warnf(string, ...any)   {}
func (nopLogger) Errorf(string, ...any)  {}
func (n nopLogger) Scoped(string) Logger { return n }
