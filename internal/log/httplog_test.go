package log

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestHTTPMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	var seen string
	handler := HTTPMiddleware(zap.New(core).Sugar())(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		seen = RequestID(req.Context())
		if req.URL.Path == "/fail" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))

	tests := []struct {
		name      string
		path      string
		header    string
		wantLevel zapcore.Level
		wantCode  int64
	}{
		{"generated id", "/groups", "", zapcore.InfoLevel, http.StatusOK},
		{"propagated id", "/groups", "abc-123", zapcore.InfoLevel, http.StatusOK},
		{"server error", "/fail", "", zapcore.ErrorLevel, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs.TakeAll()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(RequestIDHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			id := rec.Header().Get(RequestIDHeader)
			if id == "" || id != seen {
				t.Errorf("request id %q not propagated to handler (saw %q)", id, seen)
			}
			if tt.header != "" && id != tt.header {
				t.Errorf("expected incoming id %q to be kept, got %q", tt.header, id)
			}

			entries := logs.TakeAll()
			if len(entries) != 1 {
				t.Fatalf("expected one access log entry, got %d", len(entries))
			}
			e := entries[0]
			if e.Level != tt.wantLevel {
				t.Errorf("expected level %v, got %v", tt.wantLevel, e.Level)
			}
			if got := e.ContextMap()["status"]; got != tt.wantCode {
				t.Errorf("expected status %d, got %v", tt.wantCode, got)
			}
		})
	}
}
