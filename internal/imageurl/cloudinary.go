package imageurl

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"

	"github.com/Lydell2627/portfolio-sub000/internal/config"
)

// CloudinaryBuilder builds Cloudinary delivery URLs. References are public IDs.
type CloudinaryBuilder struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryBuilder creates a builder from a cloudinary:// URL.
func NewCloudinaryBuilder(cloudinaryURL string) (*CloudinaryBuilder, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("create cloudinary client: %w", err)
	}
	cld.Config.URL.Secure = true
	return &CloudinaryBuilder{cld: cld}, nil
}

// Name returns "cloudinary".
func (b *CloudinaryBuilder) Name() string { return config.ImageProviderCloudinary }

// URL returns the delivery URL for the public ID ref.
func (b *CloudinaryBuilder) URL(_ context.Context, ref string, opts Options) (string, error) {
	if isAbsoluteURL(ref) {
		return ref, nil
	}
	if ref == "" {
		return "", fmt.Errorf("%w: empty public id", ErrInvalidRef)
	}

	img, err := b.cld.Image(ref)
	if err != nil {
		return "", fmt.Errorf("cloudinary image %q: %w", ref, err)
	}
	img.Transformation = cloudinaryTransformation(opts)

	u, err := img.String()
	if err != nil {
		return "", fmt.Errorf("cloudinary url %q: %w", ref, err)
	}
	return u, nil
}

// cloudinaryTransformation renders opts as a transformation string, e.g.
// c_fill,w_800,h_600,f_webp,q_80.
func cloudinaryTransformation(opts Options) string {
	var parts []string
	if opts.Width > 0 && opts.Height > 0 {
		parts = append(parts, "c_fill")
	}
	if opts.Width > 0 {
		parts = append(parts, "w_"+strconv.Itoa(opts.Width))
	}
	if opts.Height > 0 {
		parts = append(parts, "h_"+strconv.Itoa(opts.Height))
	}
	if opts.Format != "" {
		parts = append(parts, "f_"+opts.Format)
	} else {
		parts = append(parts, "f_auto")
	}
	if opts.Quality > 0 {
		parts = append(parts, "q_"+strconv.Itoa(opts.Quality))
	} else {
		parts = append(parts, "q_auto")
	}
	return strings.Join(parts, ",")
}
