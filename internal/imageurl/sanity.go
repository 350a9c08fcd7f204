package imageurl

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Lydell2627/portfolio-sub000/internal/config"
)

const sanityCDNHost = "cdn.sanity.io"

// SanityBuilder builds Sanity image CDN URLs from image asset references of
// the form image-<id>-<width>x<height>-<format>.
type SanityBuilder struct {
	projectID string
	dataset   string
}

// NewSanityBuilder creates a builder for the given project and dataset.
func NewSanityBuilder(projectID, dataset string) (*SanityBuilder, error) {
	if projectID == "" || dataset == "" {
		return nil, errors.New("sanity image builder requires project id and dataset")
	}
	return &SanityBuilder{projectID: projectID, dataset: dataset}, nil
}

// Name returns "sanity".
func (b *SanityBuilder) Name() string { return config.ImageProviderSanity }

// URL returns the CDN URL for ref with opts applied as query parameters.
func (b *SanityBuilder) URL(_ context.Context, ref string, opts Options) (string, error) {
	if isAbsoluteURL(ref) {
		return ref, nil
	}
	file, err := sanityFilename(ref)
	if err != nil {
		return "", err
	}

	u := url.URL{
		Scheme: "https",
		Host:   sanityCDNHost,
		Path:   "/images/" + b.projectID + "/" + b.dataset + "/" + file,
	}

	q := url.Values{}
	if opts.Width > 0 {
		q.Set("w", strconv.Itoa(opts.Width))
	}
	if opts.Height > 0 {
		q.Set("h", strconv.Itoa(opts.Height))
		if opts.Width > 0 {
			q.Set("fit", "crop")
		}
	}
	if opts.Format != "" {
		q.Set("fm", opts.Format)
	} else {
		q.Set("auto", "format")
	}
	if opts.Quality > 0 {
		q.Set("q", strconv.Itoa(opts.Quality))
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// sanityFilename converts image-abc123-800x600-png into abc123-800x600.png.
func sanityFilename(ref string) (string, error) {
	rest, ok := strings.CutPrefix(ref, "image-")
	if !ok {
		return "", fmt.Errorf("%w: %q is not an image reference", ErrInvalidRef, ref)
	}
	i := strings.LastIndex(rest, "-")
	if i <= 0 || i == len(rest)-1 {
		return "", fmt.Errorf("%w: %q has no format suffix", ErrInvalidRef, ref)
	}
	idDims, format := rest[:i], rest[i+1:]

	j := strings.LastIndex(idDims, "-")
	if j <= 0 {
		return "", fmt.Errorf("%w: %q has no dimensions", ErrInvalidRef, ref)
	}
	w, h, ok := strings.Cut(idDims[j+1:], "x")
	if !ok || !isDigits(w) || !isDigits(h) {
		return "", fmt.Errorf("%w: %q has malformed dimensions", ErrInvalidRef, ref)
	}

	return idDims + "." + format, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
