package content

import (
	"context"
	"fmt"
	"sort"

	"github.com/Lydell2627/portfolio-sub000/internal/types"
)

// ProjectList returns the project list. Source records are ordered by
// ascending order (records without one last) then descending year. When the
// source yields nothing, fails, or any of its records cannot be normalized,
// the static projects are returned in declaration order instead; the two
// are never mixed.
func (r *Resolver) ProjectList(ctx context.Context, opts ListOptions) ([]types.Project, error) {
	entity := "projects"
	if opts.FeaturedOnly {
		entity = "featured_projects"
	}

	records, err := r.source.Projects(ctx, opts.FeaturedOnly)
	if err == nil && len(records) > 0 {
		projects, nerr := r.normalizeAll(ctx, records)
		if nerr == nil {
			sortProjects(projects)
			return projects, nil
		}
		err = nerr
	}
	r.fallingBack(entity, err)

	return r.staticProjects(opts)
}

func (r *Resolver) normalizeAll(ctx context.Context, records []types.CMSProject) ([]types.Project, error) {
	projects := make([]types.Project, 0, len(records))
	for _, rec := range records {
		p, err := r.Normalize(ctx, types.FromCMS(rec))
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, nil
}

func (r *Resolver) staticProjects(opts ListOptions) ([]types.Project, error) {
	projects := make([]types.Project, 0, len(r.static.Projects))
	for _, sp := range r.static.Projects {
		if opts.FeaturedOnly && !sp.Featured {
			continue
		}
		p, err := r.normalizeStatic(&sp)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, nil
}

// sortProjects orders by ascending order, nil last, then descending year.
func sortProjects(projects []types.Project) {
	sort.SliceStable(projects, func(i, j int) bool {
		a, b := projects[i].Order, projects[j].Order
		switch {
		case a != nil && b != nil && *a != *b:
			return *a < *b
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return projects[i].Year > projects[j].Year
	})
}

// ProjectBySlug returns one project, trying the source before the fallback
// dataset. It returns ErrNotFound when neither has the slug.
func (r *Resolver) ProjectBySlug(ctx context.Context, slug string) (*types.Project, error) {
	rec, err := r.source.ProjectBySlug(ctx, slug)
	if err == nil && rec != nil {
		p, nerr := r.Normalize(ctx, types.FromCMS(*rec))
		if nerr == nil {
			return &p, nil
		}
		err = nerr
	}
	if err != nil {
		r.logger.Warn("content source failed, using fallback",
			"entity", "project",
			"slug", slug,
			"error", err,
		)
	}

	sp, ok := r.static.ProjectBySlug(slug)
	if !ok {
		return nil, fmt.Errorf("project %q: %w", slug, ErrNotFound)
	}
	p, err := r.normalizeStatic(&sp)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SiteSettings returns the settings with every empty field, including each
// social link and stat, taken from the fallback dataset.
func (r *Resolver) SiteSettings(ctx context.Context) types.SiteSettings {
	defaults := r.static.Settings

	got, err := r.source.SiteSettings(ctx)
	if err != nil || got == nil {
		r.fallingBack("site_settings", err)
		return defaults
	}
	return mergeSettings(*got, defaults)
}

func mergeSettings(s, d types.SiteSettings) types.SiteSettings {
	return types.SiteSettings{
		Name:        or(s.Name, d.Name),
		Tagline:     or(s.Tagline, d.Tagline),
		Description: or(s.Description, d.Description),
		Email:       or(s.Email, d.Email),
		Phone:       or(s.Phone, d.Phone),
		Social: types.SocialLinks{
			Instagram: or(s.Social.Instagram, d.Social.Instagram),
			LinkedIn:  or(s.Social.LinkedIn, d.Social.LinkedIn),
			Twitter:   or(s.Social.Twitter, d.Social.Twitter),
			Dribbble:  or(s.Social.Dribbble, d.Social.Dribbble),
			Behance:   or(s.Social.Behance, d.Social.Behance),
			GitHub:    or(s.Social.GitHub, d.Social.GitHub),
		},
		Stats: types.Stats{
			ProjectsCompleted: or(s.Stats.ProjectsCompleted, d.Stats.ProjectsCompleted),
			HappyClients:      or(s.Stats.HappyClients, d.Stats.HappyClients),
			YearsExperience:   or(s.Stats.YearsExperience, d.Stats.YearsExperience),
			TeamMembers:       or(s.Stats.TeamMembers, d.Stats.TeamMembers),
		},
	}
}

func or(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

// Testimonials returns the testimonials. Records with an order come first in
// ascending order; the rest keep their source order.
func (r *Resolver) Testimonials(ctx context.Context) []types.Testimonial {
	records, err := r.source.Testimonials(ctx)
	if err == nil && len(records) > 0 {
		out := make([]types.Testimonial, 0, len(records))
		for _, rec := range records {
			t, nerr := r.normalizeTestimonial(ctx, rec)
			if nerr != nil {
				err = nerr
				break
			}
			out = append(out, t)
		}
		if err == nil {
			sortTestimonials(out)
			return out
		}
	}
	r.fallingBack("testimonials", err)

	out := make([]types.Testimonial, 0, len(r.static.Testimonials))
	for _, st := range r.static.Testimonials {
		out = append(out, staticTestimonial(st))
	}
	sortTestimonials(out)
	return out
}

func sortTestimonials(ts []types.Testimonial) {
	sort.SliceStable(ts, func(i, j int) bool {
		a, b := ts[i].Order, ts[j].Order
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return *a < *b
	})
}

// PricingTiers returns the pricing tiers sorted by order. Source tiers
// without an id or features are rejected as a whole in favour of the four
// fallback tiers.
func (r *Resolver) PricingTiers(ctx context.Context) []types.PricingTier {
	tiers, err := r.source.PricingTiers(ctx)
	if err == nil && len(tiers) > 0 {
		if verr := validTiers(tiers); verr != nil {
			err = verr
		} else {
			out := append([]types.PricingTier(nil), tiers...)
			sortTiers(out)
			return out
		}
	}
	r.fallingBack("pricing_tiers", err)

	out := append([]types.PricingTier(nil), r.static.PricingTiers...)
	sortTiers(out)
	return out
}

func validTiers(tiers []types.PricingTier) error {
	seen := make(map[string]bool, len(tiers))
	for _, t := range tiers {
		if t.ID == "" || len(t.Features) == 0 {
			return fmt.Errorf("%w: pricing tier %q incomplete", ErrInvalidRecord, t.ID)
		}
		if seen[t.ID] {
			return fmt.Errorf("%w: duplicate pricing tier %q", ErrInvalidRecord, t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}

func sortTiers(tiers []types.PricingTier) {
	sort.SliceStable(tiers, func(i, j int) bool {
		return tiers[i].Order < tiers[j].Order
	})
}
