// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package debuglog writes optional leveled troubleshooting logs to a file.
//
// The log is strictly best-effort: every failure is swallowed so that
// logging can never affect a fetch or export outcome. A nil *Logger is
// valid and drops everything, which lets callers log unconditionally.
package debuglog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level is the severity of a log entry.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
	LevelDebug Level = "DEBUG"
)

// Logger appends timestamped entries to a single log file.
type Logger struct {
	mu   sync.Mutex
	path string
	init bool
}

// New creates a logger writing to path. Nothing is written until the
// first entry, at which point the file is truncated and a start line is
// emitted.
func New(path string) *Logger {
	return &Logger{path: path}
}

// DefaultPath returns the conventional log location, ~/.chanmark/export-debug.log.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "export-debug.log"
	}
	return filepath.Join(home, ".chanmark", "export-debug.log")
}

// Info logs at INFO level.
func (l *Logger) Info(msg string, data any) { l.log(LevelInfo, msg, data) }

// Warn logs at WARN level.
func (l *Logger) Warn(msg string, data any) { l.log(LevelWarn, msg, data) }

// Error logs at ERROR level.
func (l *Logger) Error(msg string, data any) { l.log(LevelError, msg, data) }

// Debug logs at DEBUG level.
func (l *Logger) Debug(msg string, data any) { l.log(LevelDebug, msg, data) }

// log formats and appends one entry. All errors are deliberately dropped.
func (l *Logger) log(level Level, msg string, data any) {
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.init {
		if err := l.start(); err != nil {
			return
		}
		l.init = true
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] [%s] %s", time.Now().UTC().Format(time.RFC3339), level, msg)
	if data != nil {
		if encoded, err := json.MarshalIndent(data, "  ", "  "); err == nil {
			sb.WriteString("\n  ")
			sb.Write(encoded)
		}
	}
	sb.WriteString("\n")

	l.append(sb.String())
}

// start truncates the file and writes the session header line.
func (l *Logger) start() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return err
	}
	header := fmt.Sprintf("[chanmark] Debug log started at %s\n", time.Now().UTC().Format(time.RFC3339))
	return os.WriteFile(l.path, []byte(header), 0644)
}

// append adds one formatted entry to the file.
func (l *Logger) append(line string) {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = f.WriteString(line)
}

// Path returns the log file location.
func (l *Logger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}
