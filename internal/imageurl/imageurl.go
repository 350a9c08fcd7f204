// Package imageurl turns opaque CMS asset references into displayable URLs.
// Which builder is used depends on where the site's image assets live: the
// Sanity image CDN, a Cloudinary account, or an S3-compatible bucket.
package imageurl

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Lydell2627/portfolio-sub000/internal/config"
)

var (
	// ErrNotConfigured is returned by the no-op builder.
	ErrNotConfigured = errors.New("image url builder not configured")

	// ErrInvalidRef is returned when a reference cannot be parsed.
	ErrInvalidRef = errors.New("invalid asset reference")
)

// Options are optional transformations. Zero values mean "leave as is".
type Options struct {
	Width   int
	Height  int
	Format  string
	Quality int
}

// Common sizes used by the page layer.
var (
	Thumbnail = Options{Width: 800, Height: 600, Format: "webp", Quality: 80}
	Hero      = Options{Width: 1920, Format: "webp", Quality: 85}
	Inline    = Options{Width: 1400, Quality: 85}
	Avatar    = Options{Width: 160, Height: 160, Quality: 80}
)

// Builder builds a URL for an asset reference.
type Builder interface {
	// URL returns a displayable URL for ref.
	URL(ctx context.Context, ref string, opts Options) (string, error)

	// Name reports the provider name for diagnostics.
	Name() string
}

// NoopBuilder is used when no image provider is configured. Every CMS asset
// reference fails to resolve, which sends the affected records to fallback.
type NoopBuilder struct{}

// URL always returns ErrNotConfigured, except for references that are already URLs.
func (NoopBuilder) URL(_ context.Context, ref string, _ Options) (string, error) {
	if isAbsoluteURL(ref) {
		return ref, nil
	}
	return "", ErrNotConfigured
}

// Name returns "none".
func (NoopBuilder) Name() string { return config.ImageProviderNone }

// NewBuilder creates the Builder selected by the images config. The CMS
// config supplies the project and dataset used by Sanity CDN URLs.
func NewBuilder(images config.ImagesConfig, cms config.CMSConfig) (Builder, error) {
	switch images.Provider {
	case config.ImageProviderSanity:
		return NewSanityBuilder(cms.ProjectID, cms.Dataset)
	case config.ImageProviderCloudinary:
		return NewCloudinaryBuilder(images.CloudinaryURL)
	case config.ImageProviderS3:
		return NewS3Builder(images.S3)
	case config.ImageProviderNone, config.ImageProviderAuto, "":
		return NoopBuilder{}, nil
	default:
		return nil, fmt.Errorf("unknown image provider %q", images.Provider)
	}
}

// Resolver adapts a Builder to the single-argument form used by renderers.
func Resolver(b Builder, opts Options) func(ctx context.Context, ref string) (string, error) {
	return func(ctx context.Context, ref string) (string, error) {
		return b.URL(ctx, ref, opts)
	}
}

func isAbsoluteURL(ref string) bool {
	return strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "http://")
}
