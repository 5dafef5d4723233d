package middleware

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"project-tracker/app/logger"
)

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Logging logs every request once it completes. It must run inside RequestID.
func Logging(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			entry := logger.WithRequestID(log, GetRequestID(r.Context()))
			entry.Debugf("request started: %s %s", r.Method, r.URL.Path)

			next.ServeHTTP(wrapped, r)

			fields := logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      wrapped.statusCode,
				"duration_ms": time.Since(start).Milliseconds(),
				"remote_ip":   r.RemoteAddr,
				"user_agent":  r.UserAgent(),
			}
			if wrapped.statusCode >= http.StatusInternalServerError {
				entry.WithFields(fields).Warn("request completed")
				return
			}
			entry.WithFields(fields).Info("request completed")
		})
	}
}
