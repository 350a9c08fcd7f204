package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Lydell2627/portfolio-sub000/internal/content"
	"github.com/Lydell2627/portfolio-sub000/internal/types"
)

// ProjectListResponse is the body of GET /api/v1/projects.
type ProjectListResponse struct {
	Category string                `json:"category"`
	Projects []types.Project       `json:"projects"`
	Counts   []content.CategoryTab `json:"counts"`
}

// ProjectResponse is the body of GET /api/v1/projects/{slug}.
type ProjectResponse struct {
	Project  *types.Project `json:"project"`
	Previous *ProjectLink   `json:"previous"`
	Next     *ProjectLink   `json:"next"`
}

// ProjectLink identifies a neighbouring project.
type ProjectLink struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

func linkTo(p *types.Project) *ProjectLink {
	if p == nil {
		return nil
	}
	return &ProjectLink{Slug: p.Slug, Title: p.Title}
}

// ListProjects handles GET /api/v1/projects?featured=&category=
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var opts content.ListOptions
	if v := q.Get("featured"); v != "" {
		featured, err := strconv.ParseBool(v)
		if err != nil {
			WriteProblem(w, r, http.StatusBadRequest, "featured must be true or false")
			return
		}
		opts.FeaturedOnly = featured
	}

	category := content.CategoryAll
	if v := q.Get("category"); v != "" {
		if !content.IsCategory(v) {
			WriteProblem(w, r, http.StatusBadRequest, "Unknown category: "+v)
			return
		}
		category = v
	}

	list, err := h.resolver.ProjectList(r.Context(), opts)
	if err != nil {
		h.logger.Error("list projects failed", "error", err)
		MapContentError(w, r, err)
		return
	}

	result := content.Filter(list, category)
	writeJSON(w, http.StatusOK, ProjectListResponse{
		Category: category,
		Projects: result.Projects,
		Counts:   content.CategoryCounts(list, category),
	})
}

// GetProject handles GET /api/v1/projects/{slug}
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	d, err := h.resolver.ProjectPage(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if !errors.Is(err, content.ErrNotFound) {
			h.logger.Error("get project failed", "error", err)
		}
		MapContentError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ProjectResponse{
		Project:  d.Project,
		Previous: linkTo(d.Neighbors.Previous),
		Next:     linkTo(d.Neighbors.Next),
	})
}

// ListPricingTiers handles GET /api/v1/pricing-tiers
func (h *Handler) ListPricingTiers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Tiers []types.PricingTier `json:"tiers"`
	}{Tiers: h.resolver.PricingTiers(r.Context())})
}

// GetSettings handles GET /api/v1/settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.resolver.SiteSettings(r.Context()))
}
