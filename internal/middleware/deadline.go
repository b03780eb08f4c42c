package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dskow/smartbee-api/internal/apierror"
)

// Deadline returns middleware that applies a global request deadline to the
// entire middleware chain. If the deadline fires before the handler completes,
// a 504 is returned. Handler panics are re-raised on the calling goroutine. Pass 0 to disable (handler called
// directly).
func Deadline(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			done := make(chan struct{})
			tw := &deadlineWriter{ResponseWriter: w}
			var panicked any

			go func() {
				defer close(done)
				// A panic on this goroutine is out of reach of Recovery, so
				// it is carried back and re-raised on the serving goroutine.
				defer func() { panicked = recover() }()
				next.ServeHTTP(tw, r.WithContext(ctx))
			}()

			select {
			case <-done:
			case <-ctx.Done():
				// Only write 504 if the handler hasn't started a response.
				if tw.tryClaimWrite() {
					apierror.WriteJSON(w, r, http.StatusGatewayTimeout, apierror.DeadlineExceeded, "global request deadline exceeded")
				}
				<-done
			}

			if panicked != nil {
				panic(panicked)
			}
		})
	}
}

// deadlineWriter wraps ResponseWriter and tracks whether the handler has
// started writing. Once the deadline claims the response, later handler
// writes are dropped.
type deadlineWriter struct {
	http.ResponseWriter
	mu       sync.Mutex
	claimed  bool
	timedOut bool
}

func (dw *deadlineWriter) tryClaimWrite() bool {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	if dw.claimed {
		return false
	}
	dw.claimed = true
	dw.timedOut = true
	return true
}

func (dw *deadlineWriter) WriteHeader(code int) {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	if dw.timedOut {
		return
	}
	dw.claimed = true
	dw.ResponseWriter.WriteHeader(code)
}

func (dw *deadlineWriter) Write(b []byte) (int, error) {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	if dw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	dw.claimed = true
	return dw.ResponseWriter.Write(b)
}
