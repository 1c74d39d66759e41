package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/grouptalk-dev/grouptalk/internal/handler"
	internal_mw "github.com/grouptalk-dev/grouptalk/internal/middleware"
	"github.com/grouptalk-dev/grouptalk/internal/setup"
	mw "github.com/grouptalk-dev/grouptalk/shared/middleware"
	"github.com/grouptalk-dev/grouptalk/shared/middleware/metrics"
)

// New creates and configures the chi router with all the routes.
func New(deps *setup.Dependencies) chi.Router {
	r := chi.NewRouter()

	r.Use(metrics.NewRecorder(prometheus.DefaultRegisterer).Middleware)
	r.Use(mw.RequestId)

	// Frontend CSP: self-hosted pages and styles only, no inline scripts.
	frontendCSP := "default-src 'self'; img-src 'self' https:; script-src 'self'; frame-ancestors 'none'"
	r.Use(mw.SecurityHeaders(deps.Public.SecureCookies, frontendCSP))
	r.Use(deps.Auth.OptionalAuth())
	r.Use(internal_mw.GenerateCSRFToken(internal_mw.CSRFConfig{SecureCookies: deps.Public.SecureCookies}))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/favicon.ico", handler.FaviconHandler)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	h := deps.Handler
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/group/"+deps.Public.DefaultGroup, http.StatusFound)
	})

	// Read-only pages
	r.Get("/group/{group}", h.GroupGetHandler)
	r.Get("/group/topic/{topic}", h.TopicGetHandler)

	// Writes need an authenticated user and a valid CSRF token
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.NeedAuth())
		r.Use(internal_mw.ValidateCSRFToken())
		r.Get("/group/{group}/new", h.TopicNewGetHandler)
		r.Post("/group/{group}/topics", h.TopicCreatePostHandler)
		r.Get("/group/topic/{topic}/edit", h.TopicEditGetHandler)
		r.Post("/group/topic/{topic}/edit", h.TopicEditPostHandler)
	})

	return r
}
