package middleware

import (
	"net/http"
	"time"

	"taskboard/logging"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// RequestLogger logs method, path, status and duration of every request.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		switch {
		case rec.status >= 500:
			logging.Logger.Errorf("Event ID: HTTP_REQUEST, Description: %s %s -> %d in %s", r.Method, r.URL.Path, rec.status, duration)
		case rec.status >= 400:
			logging.Logger.Warnf("Event ID: HTTP_REQUEST, Description: %s %s -> %d in %s", r.Method, r.URL.Path, rec.status, duration)
		default:
			logging.Logger.Infof("Event ID: HTTP_REQUEST, Description: %s %s -> %d in %s", r.Method, r.URL.Path, rec.status, duration)
		}
	})
}
