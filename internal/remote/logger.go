package remote

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// RequestLogger returns a chi-compatible middleware that logs each request
// with method, path, status, duration_ms and response size.
func RequestLogger(log logrus.FieldLogger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrap := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(wrap, r)
			log.WithFields(logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      wrap.status,
				"duration_ms": time.Since(start).Milliseconds(),
				"size":        wrap.size,
			}).Info("request")
		})
	}
}
