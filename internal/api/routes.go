package api

import (
	"io/fs"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// SubmitLimiter rate limits the contact endpoints. Nil disables limiting.
	SubmitLimiter *RateLimiter
	// PublicDir is served at the site root for images and other assets
	// referenced by content. Empty or missing disables it.
	PublicDir string
}

// NewRouter creates a new router with all routes configured
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	r.Use(RecoveryMiddleware(h.ServerError))

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	limit := func(next http.Handler) http.Handler { return next }
	if opts.SubmitLimiter != nil {
		limit = opts.SubmitLimiter.Middleware(h.TooManyRequests)
	}

	r.Get("/", h.Home)
	r.Get("/about", h.About)
	r.Get("/approach", h.Approach)
	r.Get("/projects", h.Projects)
	r.Get("/projects/{slug}", h.Project)
	r.Get("/contact", h.ContactForm)
	r.With(limit).Post("/contact", h.SubmitContact)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(StaticFS()))))
	if dir := publicFS(opts.PublicDir); dir != nil {
		files := http.FileServer(http.FS(dir))
		r.Handle("/images/*", files)
		r.Handle("/favicon.ico", files)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/projects", h.ListProjects)
		r.Get("/projects/{slug}", h.GetProject)
		r.Get("/pricing-tiers", h.ListPricingTiers)
		r.Get("/settings", h.GetSettings)
		r.With(limit).Post("/contact", h.CreateContact)
	})

	return r
}

func publicFS(dir string) fs.FS {
	if dir == "" {
		return nil
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil
	}
	return os.DirFS(dir)
}
