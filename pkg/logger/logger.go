package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger используется во всех слоях приложения.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(err error, format string, args ...any)
}

// SlogLogger реализует Logger поверх log/slog.
type SlogLogger struct {
	log *slog.Logger
}

// NewSlogLogger создает логгер, настроенный через LOG_FORMAT и LOG_LEVEL.
func NewSlogLogger() *SlogLogger {
	return NewSlogLoggerWithWriter(os.Stdout, os.Getenv("LOG_FORMAT"), os.Getenv("LOG_LEVEL"))
}

// NewSlogLoggerWithWriter создает логгер с явным приемником вывода.
func NewSlogLoggerWithWriter(w io.Writer, format, level string) *SlogLogger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return &SlogLogger{log: slog.New(handler)}
}

func (l *SlogLogger) Debugf(format string, args ...any) {
	l.log.Log(context.Background(), slog.LevelDebug, fmt.Sprintf(format, args...))
}

func (l *SlogLogger) Infof(format string, args ...any) {
	l.log.Log(context.Background(), slog.LevelInfo, fmt.Sprintf(format, args...))
}

func (l *SlogLogger) Warnf(format string, args ...any) {
	l.log.Log(context.Background(), slog.LevelWarn, fmt.Sprintf(format, args...))
}

// Errorf пишет сообщение уровня ERROR, добавляя ошибку отдельным атрибутом.
func (l *SlogLogger) Errorf(err error, format string, args ...any) {
	attrs := make([]any, 0, 1)
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	l.log.Log(context.Background(), slog.LevelError, fmt.Sprintf(format, args...), attrs...)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
