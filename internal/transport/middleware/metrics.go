package middleware

import (
	"net/http"
	"strconv"
	"time"
)

type requestObserver interface {
	ObserveRequest(method, route, status string, elapsed time.Duration)
}

// Metrics reports every request to the observer, labelled by route pattern.
func Metrics(observer requestObserver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			observer.ObserveRequest(r.Method, routePattern(r), strconv.Itoa(sw.status), time.Since(start))
		})
	}
}
