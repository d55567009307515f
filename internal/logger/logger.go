package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"accountpool/internal/config"
)

// LogLevel controls how much detail is printed besides the basic logs.
type LogLevel int

const (
	LogOff  LogLevel = 0 // basic logs only
	LogLow  LogLevel = 1 // + debug logs
	LogHigh LogLevel = 2 // + error stacks and request bodies
)

const (
	ColorReset  = "\x1b[0m"
	ColorGreen  = "\x1b[32m"
	ColorYellow = "\x1b[33m"
	ColorRed    = "\x1b[31m"
	ColorCyan   = "\x1b[36m"
	ColorGray   = "\x1b[90m"
	ColorBlue   = "\x1b[34m"
)

var (
	currentLogLevel atomic.Int32
	outMu           sync.Mutex
	out             io.Writer = os.Stdout
)

func Init() {
	cfg := config.Get()
	SetLevel(parseLogLevel(cfg.Debug))
}

func parseLogLevel(debug string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(debug)) {
	case "low":
		return LogLow
	case "high":
		return LogHigh
	default:
		return LogOff
	}
}

func SetLevel(l LogLevel) {
	currentLogLevel.Store(int32(l))
}

func GetLevel() LogLevel {
	return LogLevel(currentLogLevel.Load())
}

// SetOutput redirects all log lines, mainly for tests. nil restores stdout.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	outMu.Lock()
	out = w
	outMu.Unlock()
}

func emit(color, level, format string, args ...any) {
	timestamp := time.Now().Format("15:04:05")
	msg := fmt.Sprintf(format, args...)
	outMu.Lock()
	defer outMu.Unlock()
	fmt.Fprintf(out, "%s%s%s %s[%s]%s %s\n", ColorGray, timestamp, ColorReset, color, level, ColorReset, msg)
}

func Info(format string, args ...any) {
	emit(ColorGreen, "info", format, args...)
}

func Warn(format string, args ...any) {
	emit(ColorYellow, "warn", format, args...)
}

func Error(format string, args ...any) {
	emit(ColorRed, "error", format, args...)
}

func Debug(format string, args ...any) {
	if GetLevel() < LogLow {
		return
	}
	emit(ColorBlue, "debug", format, args...)
}

// Trace prints a multi-line diagnostic block, only at the high level.
func Trace(title, body string) {
	if GetLevel() < LogHigh {
		return
	}
	emit(ColorBlue, "trace", "%s\n%s", title, body)
}

func Request(method, path string, status int, duration time.Duration) {
	statusColor := ColorGreen
	if status >= 500 {
		statusColor = ColorRed
	} else if status >= 400 {
		statusColor = ColorYellow
	}

	outMu.Lock()
	defer outMu.Unlock()
	fmt.Fprintf(out, "%s[%s]%s %s %s%d%s %s%dms%s\n",
		ColorCyan, method, ColorReset,
		path,
		statusColor, status, ColorReset,
		ColorGray, duration.Milliseconds(), ColorReset)
}

func Banner(port int, service string) {
	fmt.Printf(`
%s╔════════════════════════════════════════════════════════════╗
║           %sAccountPool%s - credential pool manager              ║
╚════════════════════════════════════════════════════════════╝%s
`, ColorCyan, ColorGreen, ColorCyan, ColorReset)

	Info("Server starting on port %d", port)
	Info("Service: %s", service)
	Info("Debug level: %s", config.Get().Debug)

	if config.Get().APIKey == "" {
		Warn("API_KEY not set - API authentication disabled")
	}

	fmt.Println()
}
