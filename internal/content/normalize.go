package content

import (
	"context"
	"fmt"

	"github.com/Lydell2627/portfolio-sub000/internal/imageurl"
	"github.com/Lydell2627/portfolio-sub000/internal/types"
)

// Normalize converts a record of either variant into the project view model.
// Asset references are resolved through the image builder only for CMS
// records; static paths are used as given.
func (r *Resolver) Normalize(ctx context.Context, rec types.ProjectRecord) (types.Project, error) {
	if rec.CMS != nil && rec.Static != nil {
		return types.Project{}, fmt.Errorf("%w: record carries both encodings", ErrInvalidRecord)
	}

	switch rec.Source {
	case types.SourceCMS:
		if rec.CMS == nil {
			return types.Project{}, fmt.Errorf("%w: cms record without cms payload", ErrInvalidRecord)
		}
		return r.normalizeCMS(ctx, rec.CMS)
	case types.SourceStatic:
		if rec.Static == nil {
			return types.Project{}, fmt.Errorf("%w: static record without static payload", ErrInvalidRecord)
		}
		return r.normalizeStatic(rec.Static)
	default:
		return types.Project{}, fmt.Errorf("%w: unknown source %q", ErrInvalidRecord, rec.Source)
	}
}

func (r *Resolver) normalizeCMS(ctx context.Context, p *types.CMSProject) (types.Project, error) {
	if p.Slug == "" {
		return types.Project{}, fmt.Errorf("%w: project %q has no slug", ErrInvalidRecord, p.ID)
	}

	thumb, err := r.imageURL(ctx, p.Thumbnail, imageurl.Thumbnail)
	if err != nil {
		return types.Project{}, fmt.Errorf("project %s thumbnail: %w", p.Slug, err)
	}
	hero, err := r.imageURL(ctx, p.HeroImage, imageurl.Hero)
	if err != nil {
		return types.Project{}, fmt.Errorf("project %s hero image: %w", p.Slug, err)
	}

	blocks, err := r.renderer.PortableText(ctx, p.Content, imageurl.Resolver(r.images, imageurl.Inline))
	if err != nil {
		return types.Project{}, fmt.Errorf("project %s content: %w", p.Slug, err)
	}

	return types.Project{
		Source:       types.SourceCMS,
		ID:           p.ID,
		Slug:         p.Slug,
		Title:        p.Title,
		Description:  p.Description,
		Tagline:      p.Tagline,
		Category:     categoryOrDefault(p.Category),
		Tools:        toolsOrEmpty(p.Tools),
		Client:       p.Client,
		Role:         p.Role,
		Duration:     p.Duration,
		Year:         p.Year,
		ClientReview: p.ClientReview,
		ThumbnailURL: thumb,
		HeroImageURL: hero,
		Blocks:       blocks,
		Featured:     p.Featured,
		Order:        p.Order,
	}, nil
}

func (r *Resolver) normalizeStatic(p *types.StaticProject) (types.Project, error) {
	blocks := make([]types.Block, 0, len(p.Content))
	for i, b := range p.Content {
		switch b.Type {
		case types.BlockText:
			body, err := r.renderer.Markdown(b.Body)
			if err != nil {
				return types.Project{}, fmt.Errorf("project %s block %d: %w", p.Slug, i, err)
			}
			blocks = append(blocks, types.Block{Kind: types.KindText, Heading: b.Heading, HTML: body})
		case types.BlockImage:
			if b.Src == "" {
				continue
			}
			blocks = append(blocks, types.Block{
				Kind:    types.KindImage,
				Image:   &types.Image{URL: b.Src, Alt: b.Alt},
				Caption: b.Caption,
			})
		case types.BlockGallery:
			images := make([]types.Image, 0, len(b.Images))
			for _, gi := range b.Images {
				if gi.Src != "" {
					images = append(images, types.Image{URL: gi.Src, Alt: gi.Alt})
				}
			}
			if len(images) == 0 {
				continue
			}
			blocks = append(blocks, types.Block{Kind: types.KindGallery, Images: images, Caption: b.Caption})
		}
	}

	return types.Project{
		Source:       types.SourceStatic,
		Slug:         p.Slug,
		Title:        p.Title,
		Description:  p.Description,
		Tagline:      p.Tagline,
		Category:     categoryOrDefault(p.Category),
		Tools:        toolsOrEmpty(p.Tools),
		Client:       p.Client,
		Role:         p.Role,
		Duration:     p.Duration,
		Year:         p.Year,
		ClientReview: p.ClientReview,
		ThumbnailURL: p.Thumbnail,
		HeroImageURL: p.HeroImage,
		Blocks:       blocks,
		Featured:     p.Featured,
		Order:        p.Order,
	}, nil
}

func (r *Resolver) normalizeTestimonial(ctx context.Context, t types.CMSTestimonial) (types.Testimonial, error) {
	img, err := r.imageURL(ctx, t.Image, imageurl.Avatar)
	if err != nil {
		return types.Testimonial{}, fmt.Errorf("testimonial %s image: %w", t.ID, err)
	}
	return types.Testimonial{
		Quote:    t.Quote,
		Author:   t.Author,
		Role:     t.Role,
		Company:  t.Company,
		ImageURL: img,
		Order:    t.Order,
	}, nil
}

func staticTestimonial(t types.StaticTestimonial) types.Testimonial {
	return types.Testimonial{
		Quote:    t.Quote,
		Author:   t.Author,
		Role:     t.Role,
		Company:  t.Company,
		ImageURL: t.Image,
		Order:    t.Order,
	}
}

// imageURL resolves a CMS image. An image without an asset resolves to "".
func (r *Resolver) imageURL(ctx context.Context, img *types.CMSImage, opts imageurl.Options) (string, error) {
	ref := img.AssetID()
	if ref == "" {
		return "", nil
	}
	return r.images.URL(ctx, ref, opts)
}

func categoryOrDefault(c string) string {
	if c == "" {
		return DefaultCategory
	}
	return c
}

func toolsOrEmpty(tools []string) []string {
	if tools == nil {
		return []string{}
	}
	return tools
}
