// Package content resolves the site's read-only content. Every entity is
// requested from the configured content source first and falls back to the
// bundled static dataset when the source is empty, absent, or failing. Both
// record shapes are normalized here into the view models in package types.
package content

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Lydell2627/portfolio-sub000/internal/fallback"
	"github.com/Lydell2627/portfolio-sub000/internal/imageurl"
	"github.com/Lydell2627/portfolio-sub000/internal/richtext"
	"github.com/Lydell2627/portfolio-sub000/internal/types"
)

var (
	// ErrNotFound is returned when a project is in neither the source nor the fallback.
	ErrNotFound = errors.New("not found")

	// ErrInvalidRecord is returned by Normalize for records whose payload
	// does not match their source tag.
	ErrInvalidRecord = errors.New("invalid project record")
)

// DefaultCategory is assigned to projects authored without a category.
const DefaultCategory = "Web Development"

// Source is the query contract of a content backend.
// Lookups of a single document return nil, nil when it does not exist.
type Source interface {
	Projects(ctx context.Context, featuredOnly bool) ([]types.CMSProject, error)
	ProjectBySlug(ctx context.Context, slug string) (*types.CMSProject, error)
	SiteSettings(ctx context.Context) (*types.CMSSiteSettings, error)
	Testimonials(ctx context.Context) ([]types.CMSTestimonial, error)
	PricingTiers(ctx context.Context) ([]types.PricingTier, error)
}

// EmptySource is a Source with no content. It is used when no CMS is
// configured, so every read is served from the fallback dataset.
type EmptySource struct{}

func (EmptySource) Projects(context.Context, bool) ([]types.CMSProject, error) { return nil, nil }

func (EmptySource) ProjectBySlug(context.Context, string) (*types.CMSProject, error) {
	return nil, nil
}

func (EmptySource) SiteSettings(context.Context) (*types.CMSSiteSettings, error) { return nil, nil }

func (EmptySource) Testimonials(context.Context) ([]types.CMSTestimonial, error) { return nil, nil }

func (EmptySource) PricingTiers(context.Context) ([]types.PricingTier, error) { return nil, nil }

// ListOptions narrows a project list query.
type ListOptions struct {
	FeaturedOnly bool
}

// Resolver resolves content with static fallback. It holds no mutable state
// and is safe for concurrent use.
type Resolver struct {
	source   Source
	static   *fallback.Dataset
	images   imageurl.Builder
	renderer *richtext.Renderer
	logger   *slog.Logger
}

// NewResolver creates a Resolver. A nil source behaves like EmptySource, a
// nil image builder like imageurl.NoopBuilder.
func NewResolver(source Source, static *fallback.Dataset, images imageurl.Builder, renderer *richtext.Renderer, logger *slog.Logger) *Resolver {
	if source == nil {
		source = EmptySource{}
	}
	if images == nil {
		images = imageurl.NoopBuilder{}
	}
	if renderer == nil {
		renderer = richtext.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		source:   source,
		static:   static,
		images:   images,
		renderer: renderer,
		logger:   logger,
	}
}

// Static returns the fallback dataset.
func (r *Resolver) Static() *fallback.Dataset {
	return r.static
}

// fallingBack logs why a read is served from the fallback dataset.
func (r *Resolver) fallingBack(entity string, err error) {
	if err != nil {
		r.logger.Warn("content source failed, using fallback",
			"entity", entity,
			"error", err,
		)
		return
	}
	r.logger.Debug("content source empty, using fallback", "entity", entity)
}
