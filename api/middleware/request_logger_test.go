// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/govstake/govstake/log"
)

type recordingLogger struct {
	entries [][]any
}

func (m *recordingLogger) With(_ ...any) log.Logger                     { return m }
func (m *recordingLogger) New(_ ...any) log.Logger                      { return m }
func (m *recordingLogger) Log(_ slog.Level, _ string, _ ...any)         {}
func (m *recordingLogger) Trace(_ string, _ ...any)                     {}
func (m *recordingLogger) Debug(_ string, _ ...any)                     {}
func (m *recordingLogger) Error(_ string, _ ...any)                     {}
func (m *recordingLogger) Crit(_ string, _ ...any)                      {}
func (m *recordingLogger) Handler() slog.Handler                        { return nil }
func (m *recordingLogger) Enabled(_ context.Context, _ slog.Level) bool { return true }
func (m *recordingLogger) Info(_ string, ctx ...any)                    { m.entries = append(m.entries, ctx) }
func (m *recordingLogger) Warn(_ string, ctx ...any)                    { m.entries = append(m.entries, ctx) }

func respond(status int, delay time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(delay)
		w.WriteHeader(status)
	}
}

func TestRequestLoggerMiddleware(t *testing.T) {
	tests := []struct {
		name      string
		handler   http.HandlerFunc
		enabled   bool
		slow      time.Duration
		log5xx    bool
		shouldLog bool
	}{
		{"enabled", respond(http.StatusOK, 0), true, 0, false, true},
		{"disabled", respond(http.StatusOK, 0), false, 0, false, false},
		{"slow request", respond(http.StatusOK, 15*time.Millisecond), false, 5 * time.Millisecond, false, true},
		{"fast request", respond(http.StatusOK, 0), false, time.Second, false, false},
		{"server error", respond(http.StatusInternalServerError, 0), false, 0, true, true},
		{"server error ignored", respond(http.StatusInternalServerError, 0), false, 0, false, false},
		{"client error", respond(http.StatusBadRequest, 0), false, 0, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &recordingLogger{}
			var enabled atomic.Bool
			enabled.Store(tt.enabled)

			h := RequestLoggerMiddleware(logger, &enabled, tt.slow, tt.log5xx)(tt.handler)
			body := `{"level":"info"}`
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "http://example.com/calls", strings.NewReader(body)))

			if !tt.shouldLog {
				assert.Empty(t, logger.entries)
				return
			}
			if assert.Len(t, logger.entries, 1) {
				entry := logger.entries[0]
				assert.Contains(t, entry, "http://example.com/calls")
				assert.Contains(t, entry, http.MethodPost)
				assert.Contains(t, entry, body)
				assert.Contains(t, entry, rr.Code)
			}
		})
	}
}
