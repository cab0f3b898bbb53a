package dashboard

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// Logger adapts the teacher's RequestLogger formatter to this package's
// logrus logger: each request is logged at debug level with its method and
// path when it starts, and with status, bytes and elapsed time when it
// completes.
func Logger(logger *logrus.Logger) func(next http.Handler) http.Handler {
	return middleware.RequestLogger(&logFormatter{logger: logger})
}

type logFormatter struct {
	logger *logrus.Logger
}

func (l *logFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	entry := &logEntry{
		logger: l.logger.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}),
	}
	entry.logger.Debug("dashboard request started")
	return entry
}

type logEntry struct {
	logger *logrus.Entry
}

func (l *logEntry) Write(status, bytes int, header http.Header, elapsed time.Duration, extra interface{}) {
	l.logger.WithFields(logrus.Fields{
		"status":  status,
		"bytes":   bytes,
		"elapsed": elapsed,
	}).Debug("dashboard request completed")
}

func (l *logEntry) Panic(v interface{}, stack []byte) {
	l.logger.WithFields(logrus.Fields{"panic": v, "stack": string(stack)}).Error("dashboard request panicked")
}

// Recovery recovers from panics in dashboard handlers.
func Recovery() func(next http.Handler) http.Handler {
	return middleware.Recoverer
}

// CORS allows the dashboard to be polled from a browser served elsewhere;
// this is a read-only, unauthenticated status endpoint, so an open origin
// matches the original's "it's just a scoreboard" exposure.
func CORS() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
