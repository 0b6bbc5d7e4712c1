// File: middleware/logging_middleware.go

package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// LoggingMiddleware logs each HTTP request once it has been served
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []interface{}{
				"request_id", chimw.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote_addr", r.RemoteAddr,
			}
			if status >= http.StatusInternalServerError {
				logger.Errorw("request completed", fields...)
				return
			}
			logger.Infow("request completed", fields...)
		})
	}
}

// Chain wraps h with the standard middleware stack, outermost first:
// request id, real ip, access log, panic recovery.
func Chain(h http.Handler, logger *zap.SugaredLogger) http.Handler {
	h = chimw.Recoverer(h)
	h = LoggingMiddleware(logger)(h)
	h = chimw.RealIP(h)
	h = chimw.RequestID(h)
	return h
}
