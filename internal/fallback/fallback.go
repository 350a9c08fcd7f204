// Package fallback provides the bundled static dataset served when the CMS
// has no data. The dataset is embedded at compile time and read-only.
package fallback

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Lydell2627/portfolio-sub000/internal/types"
)

//go:embed data/*.yaml
var dataFS embed.FS

// Version identifies the bundled dataset revision.
const Version = "2024.2"

// ErrInvalidDataset is returned when a dataset fails its consistency checks.
var ErrInvalidDataset = errors.New("invalid fallback dataset")

// Dataset is the static fallback content.
type Dataset struct {
	Projects     []types.StaticProject     `yaml:"projects"`
	Testimonials []types.StaticTestimonial `yaml:"testimonials"`
	PricingTiers []types.PricingTier       `yaml:"pricingTiers"`
	Settings     types.SiteSettings        `yaml:"settings"`
}

var (
	defaultOnce sync.Once
	defaultSet  *Dataset
	defaultErr  error
)

// Default returns the embedded dataset, parsed once.
func Default() (*Dataset, error) {
	defaultOnce.Do(func() {
		defaultSet, defaultErr = LoadFS(dataFS, "data")
	})
	return defaultSet, defaultErr
}

// MustDefault is Default for callers that cannot proceed without the
// embedded dataset.
func MustDefault() *Dataset {
	d, err := Default()
	if err != nil {
		panic(err)
	}
	return d
}

// LoadFS reads every *.yaml file in dir and merges them into one Dataset.
func LoadFS(fsys fs.FS, dir string) (*Dataset, error) {
	files, err := fs.Glob(fsys, dir+"/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("list dataset files: %w", err)
	}

	d := &Dataset{}
	for _, name := range files {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		var part Dataset
		if err := yaml.Unmarshal(data, &part); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		d.merge(part)
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dataset) merge(p Dataset) {
	d.Projects = append(d.Projects, p.Projects...)
	d.Testimonials = append(d.Testimonials, p.Testimonials...)
	d.PricingTiers = append(d.PricingTiers, p.PricingTiers...)
	if p.Settings != (types.SiteSettings{}) {
		d.Settings = p.Settings
	}
}

// Validate checks slug and tier id uniqueness and block tags.
func (d *Dataset) Validate() error {
	slugs := make(map[string]bool, len(d.Projects))
	for _, p := range d.Projects {
		if p.Slug == "" {
			return fmt.Errorf("%w: project %q has no slug", ErrInvalidDataset, p.Title)
		}
		if slugs[p.Slug] {
			return fmt.Errorf("%w: duplicate slug %q", ErrInvalidDataset, p.Slug)
		}
		slugs[p.Slug] = true
		for i, b := range p.Content {
			switch b.Type {
			case types.BlockText, types.BlockImage, types.BlockGallery:
			default:
				return fmt.Errorf("%w: project %q block %d has unknown type %q", ErrInvalidDataset, p.Slug, i, b.Type)
			}
		}
	}

	ids := make(map[string]bool, len(d.PricingTiers))
	for _, t := range d.PricingTiers {
		if t.ID == "" {
			return fmt.Errorf("%w: pricing tier %q has no id", ErrInvalidDataset, t.Name)
		}
		if ids[t.ID] {
			return fmt.Errorf("%w: duplicate pricing tier %q", ErrInvalidDataset, t.ID)
		}
		if len(t.Features) == 0 {
			return fmt.Errorf("%w: pricing tier %q has no features", ErrInvalidDataset, t.ID)
		}
		ids[t.ID] = true
	}
	return nil
}

// ProjectBySlug returns the static project with the given slug.
func (d *Dataset) ProjectBySlug(slug string) (types.StaticProject, bool) {
	for _, p := range d.Projects {
		if p.Slug == slug {
			return p, true
		}
	}
	return types.StaticProject{}, false
}

// FeaturedProjects returns featured projects in declaration order.
func (d *Dataset) FeaturedProjects() []types.StaticProject {
	var out []types.StaticProject
	for _, p := range d.Projects {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out
}

// Tier returns the pricing tier with the given id.
func (d *Dataset) Tier(id string) (types.PricingTier, bool) {
	for _, t := range d.PricingTiers {
		if t.ID == id {
			return t, true
		}
	}
	return types.PricingTier{}, false
}
