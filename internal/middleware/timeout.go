package middleware

import (
	"net/http"
	"time"
)

const (
	// DefaultRequestTimeout covers a full batch run behind one request
	DefaultRequestTimeout = 5 * time.Minute
)

const timeoutBody = `{"success":false,"error":"Request timeout"}`

// Timeout enforces a deadline on request handlers. The handler's context is
// cancelled at the deadline so in-flight queries and model calls stop, and
// the client gets a 503 with the JSON error envelope.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		th := http.TimeoutHandler(next, timeout, timeoutBody)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// TimeoutHandler writes its body straight to w
			w.Header().Set("Content-Type", "application/json")
			th.ServeHTTP(w, r)
		})
	}
}
