package http

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mauv0809/tt-ratings/internal/notifier"
)

// Middleware defines the standard signature for an HTTP middleware.
type Middleware func(http.Handler) http.Handler

// Chain combines multiple middlewares into a single handler.
// The middlewares are applied in the order they are passed.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// paramsMiddleware handles common query parameters like 'verbose' and 'dry_run'.
func paramsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Info("incoming request", "method", r.Method, "url", r.URL.String())
		// 'verbose' raises the global level until the handler returns.
		if r.URL.Query().Get("verbose") == "true" {
			originalLevel := log.GetLevel()
			log.SetLevel(log.DebugLevel)
			defer log.SetLevel(originalLevel)
		}

		// 'dry_run' keeps sync reports out of Slack.
		ctx := notifier.WithDryRun(r.Context(), r.URL.Query().Get("dry_run") == "true")

		next.ServeHTTP(w, r.WithContext(ctx))
		log.Debug("request finished", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
