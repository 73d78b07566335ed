package api

import (
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RouterOptions controls who may reach the gateway.
type RouterOptions struct {
	// TrustedProxies are the peers allowed to set X-Forwarded-For.
	TrustedProxies []*net.IPNet
	// AllowedOrigins are the browser origins allowed to call the gateway.
	AllowedOrigins []string
}

// NewRouter creates a new HTTP router with all gateway endpoints.
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(Recovery)
	r.Use(Logger)
	r.Use(PrivateSubnetOnly(opts.TrustedProxies))
	r.Use(CORS(opts.AllowedOrigins))
	r.Use(JSONContentType)

	r.Get("/health", h.CheckHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/session", h.GetSession)
		r.Post("/session", h.OpenSession)

		r.Get("/system", h.GetSystem)

		r.Get("/downloads", h.GetDownloads)
		r.Post("/downloads", h.AddDownload)
		r.Get("/downloads/{id}", h.GetDownload)
	})

	return r
}
