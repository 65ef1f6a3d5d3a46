package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nidrosoft/rizzer-sub001/internal/request"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		method        string
		path          string
		handlerStatus int
	}{
		{name: "POST generate", method: "POST", path: "/generate-gift-suggestions", handlerStatus: http.StatusOK},
		{name: "server error", method: "POST", path: "/", handlerStatus: http.StatusInternalServerError},
		{name: "not found", method: "GET", path: "/notfound", handlerStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			core, logs := observer.New(zap.InfoLevel)
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.handlerStatus)
			})

			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("X-Forwarded-For", "203.0.113.7")
			w := httptest.NewRecorder()

			RequestID(Logging(zap.New(core))(handler)).ServeHTTP(w, req)

			if w.Code != tt.handlerStatus {
				t.Errorf("Expected status %d, got %d", tt.handlerStatus, w.Code)
			}

			entries := logs.FilterMessage("http_request").All()
			if len(entries) != 1 {
				t.Fatalf("Expected 1 http_request entry, got %d", len(entries))
			}
			fields := entries[0].ContextMap()
			if got := fields["status_code"]; got != int64(tt.handlerStatus) {
				t.Errorf("status_code = %v, want %d", got, tt.handlerStatus)
			}
			if got := fields["path"]; got != tt.path {
				t.Errorf("path = %v, want %s", got, tt.path)
			}
			if got := fields["client_ip"]; got != "203.0.113.7" {
				t.Errorf("client_ip = %v", got)
			}
			if got, _ := fields["request_id"].(string); got == "" || got != w.Header().Get(RequestIDHeader) {
				t.Errorf("request_id = %v, response header = %q", fields["request_id"], w.Header().Get(RequestIDHeader))
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		inbound string
		check   func(*testing.T, string)
	}{
		{
			name:    "reuses inbound id",
			inbound: "client-req-1",
			check: func(t *testing.T, id string) {
				if id != "client-req-1" {
					t.Errorf("id = %q, want client-req-1", id)
				}
			},
		},
		{
			name: "generates when absent",
			check: func(t *testing.T, id string) {
				if len(id) != 36 {
					t.Errorf("id = %q, want a UUID", id)
				}
			},
		},
		{
			name:    "truncates oversized id",
			inbound: strings.Repeat("a", 200),
			check: func(t *testing.T, id string) {
				if len(id) > maxRequestIDLength+3 {
					t.Errorf("id length = %d, want <= %d", len(id), maxRequestIDLength+3)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var seen string
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = request.RequestIDFromContext(r.Context())
			})

			req := httptest.NewRequest("POST", "/", nil)
			if tt.inbound != "" {
				req.Header.Set(RequestIDHeader, tt.inbound)
			}
			w := httptest.NewRecorder()
			RequestID(handler).ServeHTTP(w, req)

			if seen != w.Header().Get(RequestIDHeader) {
				t.Errorf("context id %q != header id %q", seen, w.Header().Get(RequestIDHeader))
			}
			tt.check(t, seen)
		})
	}
}
