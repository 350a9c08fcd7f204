package content

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Lydell2627/portfolio-sub000/internal/types"
)

// Page bundles. Each bundle's fetches run concurrently and the bundle is
// returned only once all of them have completed. Every fetch falls back on
// its own, so a failing source never leaves a bundle partially filled. The
// fetches share the caller's context: a fetch that returns an error, such as
// an unknown project slug, does not cancel its siblings.

// HomeData is the data for the home page.
type HomeData struct {
	Settings     types.SiteSettings
	Featured     []types.Project
	Testimonials []types.Testimonial
}

// HomePage resolves the home page bundle.
func (r *Resolver) HomePage(ctx context.Context) (*HomeData, error) {
	var d HomeData
	var g errgroup.Group

	g.Go(func() error {
		d.Settings = r.SiteSettings(ctx)
		return nil
	})
	g.Go(func() error {
		featured, err := r.ProjectList(ctx, ListOptions{FeaturedOnly: true})
		d.Featured = featured
		return err
	})
	g.Go(func() error {
		d.Testimonials = r.Testimonials(ctx)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}

// ProjectsData is the data for the project index page.
type ProjectsData struct {
	Settings types.SiteSettings
	All      []types.Project
	Tabs     []CategoryTab
	Result   FilterResult
}

// ProjectsPage resolves the project index filtered by category. An unknown
// category is treated as CategoryAll.
func (r *Resolver) ProjectsPage(ctx context.Context, category string) (*ProjectsData, error) {
	if !IsCategory(category) {
		category = CategoryAll
	}

	var d ProjectsData
	var g errgroup.Group

	g.Go(func() error {
		d.Settings = r.SiteSettings(ctx)
		return nil
	})
	g.Go(func() error {
		all, err := r.ProjectList(ctx, ListOptions{})
		d.All = all
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	d.Tabs = CategoryCounts(d.All, category)
	d.Result = Filter(d.All, category)
	return &d, nil
}

// ProjectData is the data for a project detail page.
type ProjectData struct {
	Settings  types.SiteSettings
	Project   *types.Project
	Neighbors Neighbors
}

// ProjectPage resolves a project and its neighbours in the full project
// list. It returns ErrNotFound for an unknown slug.
func (r *Resolver) ProjectPage(ctx context.Context, slug string) (*ProjectData, error) {
	var (
		d    ProjectData
		list []types.Project
	)
	var g errgroup.Group

	g.Go(func() error {
		d.Settings = r.SiteSettings(ctx)
		return nil
	})
	g.Go(func() error {
		p, err := r.ProjectBySlug(ctx, slug)
		d.Project = p
		return err
	})
	g.Go(func() error {
		all, err := r.ProjectList(ctx, ListOptions{})
		list = all
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	d.Neighbors = Adjacent(list, slug)
	return &d, nil
}

// AboutData is the data for the about page.
type AboutData struct {
	Settings     types.SiteSettings
	Testimonials []types.Testimonial
}

// AboutPage resolves the about page bundle.
func (r *Resolver) AboutPage(ctx context.Context) (*AboutData, error) {
	var d AboutData
	var g errgroup.Group

	g.Go(func() error {
		d.Settings = r.SiteSettings(ctx)
		return nil
	})
	g.Go(func() error {
		d.Testimonials = r.Testimonials(ctx)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}

// TierData is the data for pages that list the pricing tiers: the approach
// page and the contact page.
type TierData struct {
	Settings types.SiteSettings
	Tiers    []types.PricingTier
}

// ContactPage resolves the settings and pricing tiers shown with the contact form.
func (r *Resolver) ContactPage(ctx context.Context) (*TierData, error) {
	var d TierData
	var g errgroup.Group

	g.Go(func() error {
		d.Settings = r.SiteSettings(ctx)
		return nil
	})
	g.Go(func() error {
		d.Tiers = r.PricingTiers(ctx)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}

// ApproachPage resolves the approach page bundle, which shares the contact
// page's data.
func (r *Resolver) ApproachPage(ctx context.Context) (*TierData, error) {
	return r.ContactPage(ctx)
}
