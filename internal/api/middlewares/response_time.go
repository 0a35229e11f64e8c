package middlewares

import (
	"net/http"
	"time"
)

const responseTimeHeader = "X-Response-Time"

type rtWriter struct {
	http.ResponseWriter
	start   time.Time
	stamped bool
}

func (w *rtWriter) stamp() {
	if w.stamped {
		return
	}
	w.stamped = true
	w.Header().Set(responseTimeHeader, time.Since(w.start).Round(time.Microsecond).String())
}

func (w *rtWriter) WriteHeader(code int) {
	w.stamp()
	w.ResponseWriter.WriteHeader(code)
}

func (w *rtWriter) Write(b []byte) (int, error) {
	w.stamp()
	return w.ResponseWriter.Write(b)
}

func (w *rtWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// ResponseTime reports server-side latency in X-Response-Time, rounded to the
// microsecond. The header covers both store writes of a coordinator call and
// is still set when a handler writes nothing at all.
func ResponseTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := &rtWriter{ResponseWriter: w, start: time.Now()}
		next.ServeHTTP(rw, r)
		rw.stamp()
	})
}
