package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nidrosoft/rizzer-sub001/internal/request"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestErrorHandler_NoPanic(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	req := httptest.NewRequest("POST", "/generate-gift-suggestions", nil)
	w := httptest.NewRecorder()

	ErrorHandler(zap.NewNop())(handler).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestErrorHandler_PanicRecovery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "string panic",
			handler: func(w http.ResponseWriter, r *http.Request) {
				panic("test panic")
			},
		},
		{
			name: "nil map write",
			handler: func(w http.ResponseWriter, r *http.Request) {
				var nilMap map[string]string
				nilMap["key"] = "value"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest("POST", "/generate-gift-suggestions", nil)
			req = req.WithContext(request.WithRequestID(req.Context(), "req-42"))
			w := httptest.NewRecorder()
			core, logs := observer.New(zapcore.ErrorLevel)

			ErrorHandler(zap.New(core))(tt.handler).ServeHTTP(w, req)

			resp := w.Result()
			defer func() { _ = resp.Body.Close() }()

			if resp.StatusCode != http.StatusInternalServerError {
				t.Errorf("Expected status 500, got %d", resp.StatusCode)
			}
			if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("Expected Content-Type 'application/json', got '%s'", ct)
			}

			var body ErrorResponse
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if body.Success {
				t.Error("Expected success to be false")
			}
			if body.Error != "An unexpected error occurred" {
				t.Errorf("Expected generic error, got '%s'", body.Error)
			}
			if body.Path != "/generate-gift-suggestions" {
				t.Errorf("Expected path '/generate-gift-suggestions', got '%s'", body.Path)
			}
			if body.Timestamp == "" {
				t.Error("Expected timestamp to be set")
			}
			if body.RequestID != "req-42" {
				t.Errorf("Expected requestId 'req-42', got '%s'", body.RequestID)
			}
			entries := logs.FilterMessage("panic_recovered").All()
			if len(entries) != 1 {
				t.Fatalf("Expected one panic_recovered log, got %d", len(entries))
			}
			if got := entries[0].ContextMap()["request_id"]; got != "req-42" {
				t.Errorf("Expected logged request_id 'req-42', got %v", got)
			}
		})
	}
}

func TestErrorHandler_RethrowsAbort(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	})

	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Errorf("Expected ErrAbortHandler to propagate, got %v", rec)
		}
	}()

	req := httptest.NewRequest("POST", "/", nil)
	ErrorHandler(nil)(handler).ServeHTTP(httptest.NewRecorder(), req)
	t.Error("Expected panic to propagate")
}
