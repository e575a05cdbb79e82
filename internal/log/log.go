package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
)

const (
	LevelTrace = slog.LevelDebug - 4
	LevelNone  = slog.LevelError + 4
)

// LevelFromString maps a configuration level name to a slog level.
// Unknown names log errors only.
func LevelFromString(level string) slog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "none":
		return LevelNone
	default:
		return slog.LevelError
	}
}

// Log is a JSON slog logger writing to stderr or to a file. A file is
// reopened on SIGHUP so it can be rotated:
//
//	mv lisp.log lisp.bak && kill -HUP <pid>
type Log struct {
	*slog.Logger
	out  *output
	sigs chan os.Signal
}

func New(level, file string) *Log {
	out := openOutput(file)
	l := &Log{
		Logger: slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
			AddSource: false,
			Level:     LevelFromString(level),
		})),
		out: out,
	}
	if out.file != nil {
		l.sigs = make(chan os.Signal, 1)
		signal.Notify(l.sigs, syscall.SIGHUP)
		go func() {
			for range l.sigs {
				if err := out.reopen(); err != nil {
					fmt.Fprintf(os.Stderr, "could not reopen log file '%s': %v\n", out.path, err)
				}
			}
		}()
	}
	return l
}

// Path is the log file in use, or "" for stderr.
func (l *Log) Path() string {
	if l.out.file == nil {
		return ""
	}
	return l.out.path
}

func (l *Log) Close() error {
	if l.sigs != nil {
		signal.Stop(l.sigs)
		close(l.sigs)
		l.sigs = nil
	}
	return l.out.Close()
}

// output serialises writes against reopening.
type output struct {
	mu   sync.Mutex
	path string
	file *os.File
	w    io.Writer
}

func openOutput(path string) *output {
	out := &output{path: path, w: os.Stderr}
	if path == "" {
		return out
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log directory for '%s': %v; falling back to stderr\n", path, err)
		return out
	}
	f, err := openFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file '%s': %v; falling back to stderr\n", path, err)
		return out
	}
	out.file, out.w = f, f
	return out
}

func openFile(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

func (o *output) Write(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.w.Write(p)
}

func (o *output) reopen() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.file == nil {
		return nil
	}
	f, err := openFile(o.path)
	if err != nil {
		return err
	}
	_ = o.file.Close()
	o.file, o.w = f, f
	return nil
}

func (o *output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.file == nil {
		return nil
	}
	err := o.file.Close()
	o.file, o.w = nil, os.Stderr
	return err
}
