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

// LevelTrace sits below slog.LevelDebug; LevelNone is above anything the
// interpreter emits and silences it.
const (
	LevelTrace = slog.Level(-8)
	LevelNone  = slog.Level(16)
)

// ParseLevel maps trace, debug, info, warn, error and none (any case) to a
// slog level. Anything else is treated as none.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
	default:
		return LevelNone
	}
}

// Setup builds a JSON slog logger. With an empty path it writes to stderr;
// otherwise it appends to path and reopens it on SIGHUP so the file can be
// rotated externally:
//
//	mv quill.log quill.bak && kill -HUP <pid>
func Setup(level, path string) (*slog.Logger, io.Closer, error) {
	opts := &slog.HandlerOptions{
		AddSource: false,
		Level:     ParseLevel(level),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}

	if path == "" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nopCloser{}, nil
	}

	fw, err := openFileWriter(path)
	if err != nil {
		return nil, nil, err
	}
	fw.watch()
	return slog.New(slog.NewJSONHandler(fw, opts)), fw, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// fileWriter is an io.Writer over a log file that can be swapped underneath
// concurrent writers.
type fileWriter struct {
	path string
	mu   sync.Mutex
	fh   *os.File
	sigs chan os.Signal
}

func openFileWriter(path string) (*fileWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory for '%s': %w", path, err)
	}
	fh, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file '%s': %w", path, err)
	}
	return &fileWriter{path: path, fh: fh}, nil
}

func (w *fileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fh == nil {
		return 0, os.ErrClosed
	}
	return w.fh.Write(p)
}

// reopen closes the current handle and opens path again.
func (w *fileWriter) reopen() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fh != nil {
		_ = w.fh.Close()
	}
	fh, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		w.fh = nil
		return fmt.Errorf("could not reopen log file: %w", err)
	}
	w.fh = fh
	return nil
}

func (w *fileWriter) watch() {
	w.sigs = make(chan os.Signal, 1)
	signal.Notify(w.sigs, syscall.SIGHUP)
	go func(sigs chan os.Signal) {
		for range sigs {
			if err := w.reopen(); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		}
	}(w.sigs)
}

func (w *fileWriter) Close() error {
	if w.sigs != nil {
		signal.Stop(w.sigs)
		close(w.sigs)
		w.sigs = nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fh == nil {
		return nil
	}
	err := w.fh.Close()
	w.fh = nil
	return err
}
