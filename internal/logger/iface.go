package logger

// Logger is the logging capability handed to components that must not
// depend on the package-level console logger directly.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
	// Trace prints a diagnostic block such as an error stack.
	Trace(title, body string)
}

type consoleLogger struct{}

// Default returns a Logger backed by the package-level functions.
func Default() Logger { return consoleLogger{} }

func (consoleLogger) Debug(format string, args ...any) { Debug(format, args...) }
func (consoleLogger) Info(format string, args ...any)  { Info(format, args...) }
func (consoleLogger) Warn(format string, args ...any)  { Warn(format, args...) }
func (consoleLogger) Error(format string, args ...any) { Error(format, args...) }
func (consoleLogger) Trace(title, body string)         { Trace(title, body) }

type nopLogger struct{}

// Nop discards everything.
func Nop() Logger { return nopLogger{} }

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
func (nopLogger) Trace(string, string) {}

var (
	_ Logger = consoleLogger{}
	_ Logger = nopLogger{}
)
