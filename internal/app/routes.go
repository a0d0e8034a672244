package app

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/migodlcrz/mrt-system-sub000/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// Routes registers the HTTP endpoints and wraps them in the middleware chain:
// request logging, panic recovery, Sentry, security headers, gzip and the
// per-client rate limit. /metrics is served from a cache refreshed every
// 10 seconds.
func (app *Application) Routes(ctx context.Context) http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.errorResponse(w, http.StatusNotFound, "the requested resource could not be found")
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthcheckHandler)
	router.HandlerFunc(http.MethodGet, "/v1/networks/:network/stations", app.stationsHandler)
	router.HandlerFunc(http.MethodGet, "/v1/networks/:network/route", app.routeHandler)
	router.HandlerFunc(http.MethodGet, "/v1/networks/:network/scan/:station", app.scanHandler)
	router.HandlerFunc(http.MethodGet, "/v1/networks/:network/nearest", app.nearestHandler)
	router.Handler(http.MethodGet, "/metrics", middleware.NewCachedPromHandler(ctx, prometheus.DefaultGatherer, 10*time.Second))

	var handler http.Handler = router
	handler = app.RateLimiter.Handler(handler)
	handler = middleware.Compression(handler)
	handler = middleware.SecurityHeaders(handler)
	handler = middleware.SentryMiddleware(handler)
	handler = middleware.Recoverer(handler)
	return middleware.RequestLogging(app.Logger)(handler)
}
