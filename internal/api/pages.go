package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Lydell2627/portfolio-sub000/internal/content"
)

// Home handles GET /
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	d, err := h.resolver.HomePage(r.Context())
	if err != nil {
		h.pageFailed(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "home.html", &PageData{
		Settings: d.Settings,
		Home:     d,
	})
}

// About handles GET /about
func (h *Handler) About(w http.ResponseWriter, r *http.Request) {
	d, err := h.resolver.AboutPage(r.Context())
	if err != nil {
		h.pageFailed(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "about.html", &PageData{
		Title:    "About",
		Settings: d.Settings,
		About:    d,
	})
}

// Approach handles GET /approach
func (h *Handler) Approach(w http.ResponseWriter, r *http.Request) {
	d, err := h.resolver.ApproachPage(r.Context())
	if err != nil {
		h.pageFailed(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "approach.html", &PageData{
		Title:    "Approach",
		Settings: d.Settings,
		Tiers:    d,
	})
}

// Projects handles GET /projects?category=
func (h *Handler) Projects(w http.ResponseWriter, r *http.Request) {
	d, err := h.resolver.ProjectsPage(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		h.pageFailed(w, r, err)
		return
	}
	title := "Work"
	if d.Result.Category != content.CategoryAll {
		title = d.Result.Category + " work"
	}
	h.render(w, r, http.StatusOK, "projects.html", &PageData{
		Title:    title,
		Settings: d.Settings,
		Projects: d,
	})
}

// Project handles GET /projects/{slug}
func (h *Handler) Project(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	d, err := h.resolver.ProjectPage(r.Context(), slug)
	if errors.Is(err, content.ErrNotFound) {
		h.render(w, r, http.StatusNotFound, "not_found.html", &PageData{
			Title:    "Project not found",
			Message:  "That project doesn't exist or has been moved.",
			Settings: h.resolver.SiteSettings(r.Context()),
		})
		return
	}
	if err != nil {
		h.pageFailed(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "project.html", &PageData{
		Title:       d.Project.Title,
		Description: d.Project.Description,
		Settings:    d.Settings,
		Project:     d,
	})
}

func (h *Handler) pageFailed(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("resolve page failed", "path", r.URL.Path, "error", err)
	h.ServerError(w, r)
}
