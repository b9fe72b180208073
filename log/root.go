// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
)

var (
	root atomic.Value

	// package loggers created by WithContext before SetDefault follow the new root.
	lazyMu      sync.Mutex
	lazyLoggers []*lazyLogger
)

func init() {
	root.Store(NewLogger(NewTerminalHandler(os.Stderr, false)))
}

// SetDefault sets the default global logger.
func SetDefault(l Logger) {
	root.Store(l)
	if lg, ok := l.(*logger); ok {
		slog.SetDefault(lg.inner)
	}
	lazyMu.Lock()
	for _, ll := range lazyLoggers {
		ll.reset()
	}
	lazyMu.Unlock()
}

// Root returns the root logger
func Root() Logger {
	return root.Load().(Logger)
}

// WithContext returns a logger bound to ctx which tracks the current root logger.
// It's meant for package level loggers:
//
//	var logger = log.WithContext("pkg", "governor")
func WithContext(ctx ...any) Logger {
	ll := &lazyLogger{ctx: ctx}
	lazyMu.Lock()
	lazyLoggers = append(lazyLoggers, ll)
	lazyMu.Unlock()
	return ll
}

func Trace(msg string, ctx ...any) { Root().Trace(msg, ctx...) }
func Debug(msg string, ctx ...any) { Root().Debug(msg, ctx...) }
func Info(msg string, ctx ...any)  { Root().Info(msg, ctx...) }
func Warn(msg string, ctx ...any)  { Root().Warn(msg, ctx...) }
func Error(msg string, ctx ...any) { Root().Error(msg, ctx...) }
func Crit(msg string, ctx ...any)  { Root().Crit(msg, ctx...) }

// New returns a new logger with the given context.
func New(ctx ...any) Logger {
	return Root().With(ctx...)
}

type lazyLogger struct {
	ctx   []any
	mu    sync.Mutex
	inner Logger
}

func (l *lazyLogger) reset() {
	l.mu.Lock()
	l.inner = nil
	l.mu.Unlock()
}

func (l *lazyLogger) get() Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inner == nil {
		l.inner = Root().With(l.ctx...)
	}
	return l.inner
}

func (l *lazyLogger) With(ctx ...any) Logger { return l.get().With(ctx...) }
func (l *lazyLogger) New(ctx ...any) Logger  { return l.get().With(ctx...) }
func (l *lazyLogger) Handler() slog.Handler  { return l.get().Handler() }

func (l *lazyLogger) Log(lvl slog.Level, msg string, ctx ...any) { l.get().Log(lvl, msg, ctx...) }

func (l *lazyLogger) Trace(msg string, ctx ...any) { l.get().Trace(msg, ctx...) }
func (l *lazyLogger) Debug(msg string, ctx ...any) { l.get().Debug(msg, ctx...) }
func (l *lazyLogger) Info(msg string, ctx ...any)  { l.get().Info(msg, ctx...) }
func (l *lazyLogger) Warn(msg string, ctx ...any)  { l.get().Warn(msg, ctx...) }
func (l *lazyLogger) Error(msg string, ctx ...any) { l.get().Error(msg, ctx...) }
func (l *lazyLogger) Crit(msg string, ctx ...any)  { l.get().Crit(msg, ctx...) }

func (l *lazyLogger) Enabled(ctx context.Context, level slog.Level) bool {
	return l.get().Enabled(ctx, level)
}
