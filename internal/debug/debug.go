// Package debug provides a verbose file logger for development diagnostics.
//
// When enabled via --debug or PROMPTARENA_DEBUG, every round transition,
// evaluator call and storage failure is written to one .log file under
// ~/.promptarena/debug/. Lines carry a timestamp, the elapsed time since
// start, the goroutine ID and the caller so a session can be reconstructed
// afterwards.
//
// When disabled (the default), all logging functions are no-ops.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/agusx1211/promptarena/internal/ids"
)

var (
	logger   *Logger
	loggerMu sync.RWMutex
)

const (
	// EnvEnabled toggles the logger without the --debug flag.
	EnvEnabled = "PROMPTARENA_DEBUG"
	// EnvLogPath forces logs into a specific file.
	EnvLogPath = "PROMPTARENA_DEBUG_LOG_PATH"
)

// Logger writes debug lines to a file.
type Logger struct {
	mu        sync.Mutex
	out       io.WriteCloser
	path      string
	startedAt time.Time
	pid       int
}

// Init opens the global debug log and returns its path. Calling Init twice
// returns the already open path.
func Init() (string, error) {
	loggerMu.RLock()
	if logger != nil {
		p := logger.path
		loggerMu.RUnlock()
		return p, nil
	}
	loggerMu.RUnlock()

	path, err := resolveLogPath()
	if err != nil {
		return "", err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "", fmt.Errorf("debug: open log %s: %w", path, err)
	}
	now := time.Now()
	fmt.Fprintf(f, "=== PROMPTARENA DEBUG LOG ===\nStarted: %s\nPID: %d\nFile: %s\n===\n\n",
		now.Format(time.RFC3339Nano), os.Getpid(), path)

	loggerMu.Lock()
	defer loggerMu.Unlock()
	if logger != nil {
		_ = f.Close()
		return logger.path, nil
	}
	logger = &Logger{out: f, path: path, startedAt: now, pid: os.Getpid()}
	return path, nil
}

// InitWriter routes debug output to w. Used by tests and the web server's
// request log.
func InitWriter(w io.WriteCloser) {
	loggerMu.Lock()
	logger = &Logger{out: w, path: "", startedAt: time.Now(), pid: os.Getpid()}
	loggerMu.Unlock()
}

// Close flushes and closes the debug log. Safe to call when not initialized.
func Close() {
	loggerMu.Lock()
	l := logger
	logger = nil
	loggerMu.Unlock()

	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "\n=== DEBUG LOG CLOSED === (pid=%d duration=%s)\n", l.pid, time.Since(l.startedAt))
	_ = l.out.Close()
}

// Enabled reports whether the debug logger is active.
func Enabled() bool {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger != nil
}

// Path returns the log file path, or "" if not enabled.
func Path() string {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	if logger == nil {
		return ""
	}
	return logger.path
}

// ShouldEnableFromEnv reports whether the environment asks for debug logging.
func ShouldEnableFromEnv() bool {
	path := strings.TrimSpace(os.Getenv(EnvLogPath))
	switch strings.ToLower(strings.TrimSpace(os.Getenv(EnvEnabled))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return path != ""
	}
}

// Logf writes a formatted debug line. No-op when debug is disabled.
func Logf(component, format string, args ...any) {
	l := current()
	if l == nil {
		return
	}
	l.write(component, fmt.Sprintf(format, args...), 2)
}

// LogKV writes a debug line with key-value context pairs.
// Usage: debug.LogKV("battle", "phase changed", "round", id, "phase", "crafting")
func LogKV(component, msg string, kvs ...any) {
	l := current()
	if l == nil {
		return
	}
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i+1 < len(kvs); i += 2 {
		fmt.Fprintf(&b, " %v=%v", kvs[i], kvs[i+1])
	}
	l.write(component, b.String(), 2)
}

func current() *Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// Format: TIMESTAMP +ELAPSED [GID] [COMPONENT] CALLER | MESSAGE
func (l *Logger) write(component, msg string, callerSkip int) {
	now := time.Now()
	caller := "??:0"
	if _, file, line, ok := runtime.Caller(callerSkip); ok {
		if idx := strings.LastIndex(file, "/internal/"); idx >= 0 {
			file = file[idx+1:]
		} else if idx := strings.LastIndex(file, "/cmd/"); idx >= 0 {
			file = file[idx+1:]
		}
		caller = fmt.Sprintf("%s:%d", file, line)
	}
	out := fmt.Sprintf("%s +%12s [G%-6d] [%-12s] %-36s | %s\n",
		now.Format("15:04:05.000000"),
		now.Sub(l.startedAt).Truncate(time.Microsecond),
		goroutineID(),
		component,
		caller,
		msg,
	)

	l.mu.Lock()
	_, _ = io.WriteString(l.out, out)
	l.mu.Unlock()
}

func resolveLogPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvLogPath)); p != "" {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return "", fmt.Errorf("debug: create dir for %s: %w", p, err)
		}
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("debug: user home dir: %w", err)
	}
	dir := filepath.Join(home, ".promptarena", "debug")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("debug: create dir %s: %w", dir, err)
	}
	name := fmt.Sprintf("%s_%s.log", time.Now().Format("20060102T150405"), ids.Hex())
	return filepath.Join(dir, name), nil
}

// goroutineID parses the id out of runtime.Stack. Debug mode only.
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	s := strings.TrimPrefix(string(buf[:n]), "goroutine ")
	var id int64
	for _, c := range s {
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + int64(c-'0')
	}
	return id
}
