package applog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

const LevelTrace = slog.Level(-8)

// DefaultLogger wraps slog.Logger and implements AppLogger.
type DefaultLogger struct {
	logger *slog.Logger
	exit   func(int)
}

// NewAppDefaultLogger creates a stdout logger configured from log.level and log.format.
func NewAppDefaultLogger() *DefaultLogger {
	return NewAppLogger(os.Stdout, viper.GetString("log.level"), viper.GetString("log.format"))
}

// NewAppLogger creates a logger writing to w. format is "json" or "text" (default).
func NewAppLogger(w io.Writer, level, format string) *DefaultLogger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(level), ReplaceAttr: renameTraceLevel}
	var h slog.Handler
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return &DefaultLogger{logger: slog.New(h), exit: os.Exit}
}

func (l *DefaultLogger) Info(msg string, args ...any) {
	l.log(slog.LevelInfo, msg, args)
}

func (l *DefaultLogger) Warn(msg string, args ...any) {
	l.log(slog.LevelWarn, msg, args)
}

func (l *DefaultLogger) Error(msg string, args ...any) {
	l.log(slog.LevelError, msg, args)
}

func (l *DefaultLogger) Debug(msg string, args ...any) {
	l.log(slog.LevelDebug, msg, args)
}

func (l *DefaultLogger) Trace(msg string, args ...any) {
	l.log(LevelTrace, msg, args)
}

func (l *DefaultLogger) Fatal(msg string, args ...any) {
	l.log(slog.LevelError, msg, args)
	l.exit(1)
}

func (l *DefaultLogger) log(level slog.Level, msg string, args []any) {
	if !l.logger.Enabled(context.Background(), level) {
		return
	}
	// skip log and the exported wrapper
	if src := callerSource(2); src != "" {
		args = append([]any{"source", src}, args...)
	}
	l.logger.Log(context.Background(), level, msg, args...)
}

func callerSource(skip int) string {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}

func renameTraceLevel(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
		a.Value = slog.StringValue("TRACE")
	}
	return a
}

func parseLogLevel(s string) slog.Level {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info", "":
		return slog.LevelInfo
	default:
		return slog.LevelInfo
	}
}
