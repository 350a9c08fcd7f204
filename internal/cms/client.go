// Package cms is a client for the headless CMS query API. Queries are GROQ
// over HTTP; every response is wrapped in a {"result": ...} envelope.
package cms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/Lydell2627/portfolio-sub000/internal/config"
	"github.com/Lydell2627/portfolio-sub000/internal/types"
)

// maxResponseBytes bounds how much of a query response is read.
const maxResponseBytes = 8 << 20

// ErrUnexpectedResponse is returned when a response is not a query envelope.
var ErrUnexpectedResponse = errors.New("unexpected cms response")

// Client queries one dataset of a CMS project. Safe for concurrent use.
type Client struct {
	baseURL    string
	apiVersion string
	dataset    string
	token      string
	http       *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API host, e.g. for a proxy or a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets the HTTP client used for queries.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient creates a Client from the CMS config.
func NewClient(cfg config.CMSConfig, opts ...Option) (*Client, error) {
	if cfg.ProjectID == "" || cfg.Dataset == "" {
		return nil, errors.New("cms client requires project id and dataset")
	}

	host := "api.sanity.io"
	if cfg.UseCDN {
		host = "apicdn.sanity.io"
	}
	timeout := time.Duration(cfg.Timeout)
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	c := &Client{
		baseURL:    "https://" + cfg.ProjectID + "." + host,
		apiVersion: "v" + strings.TrimPrefix(cfg.APIVersion, "v"),
		dataset:    cfg.Dataset,
		token:      cfg.Token,
		http:       &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Query runs a GROQ query and returns the envelope's result. Parameters are
// JSON-encoded and passed as $name query arguments.
func (c *Client) Query(ctx context.Context, groq string, params map[string]any) (gjson.Result, error) {
	q := url.Values{}
	q.Set("query", groq)
	for name, v := range params {
		encoded, err := json.Marshal(v)
		if err != nil {
			return gjson.Result{}, fmt.Errorf("encode param %s: %w", name, err)
		}
		q.Set("$"+name, string(encoded))
	}

	endpoint := c.baseURL + "/" + c.apiVersion + "/data/query/" + url.PathEscape(c.dataset) + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("cms query: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("read cms response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return gjson.Result{}, fmt.Errorf("cms query failed with status %d: %s", resp.StatusCode, errorDescription(body))
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("%w: body is not JSON", ErrUnexpectedResponse)
	}

	result := gjson.GetBytes(body, "result")
	if !result.Exists() {
		return gjson.Result{}, fmt.Errorf("%w: missing result", ErrUnexpectedResponse)
	}
	return result, nil
}

// errorDescription extracts the error message from an error response.
func errorDescription(body []byte) string {
	if gjson.ValidBytes(body) {
		for _, path := range []string{"error.description", "message", "error"} {
			if v := gjson.GetBytes(body, path); v.Type == gjson.String && v.Str != "" {
				return v.Str
			}
		}
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	if s == "" {
		return "no error description"
	}
	return s
}

// decodeList decodes an array result. A null result is an empty list.
func decodeList[T any](result gjson.Result) ([]T, error) {
	if result.Type == gjson.Null {
		return nil, nil
	}
	if !result.IsArray() {
		return nil, fmt.Errorf("%w: result is not a list", ErrUnexpectedResponse)
	}
	var out []T
	if err := json.Unmarshal([]byte(result.Raw), &out); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return out, nil
}

// decodeOne decodes an object result. A null result is nil.
func decodeOne[T any](result gjson.Result) (*T, error) {
	if result.Type == gjson.Null {
		return nil, nil
	}
	if !result.IsObject() {
		return nil, fmt.Errorf("%w: result is not an object", ErrUnexpectedResponse)
	}
	var out T
	if err := json.Unmarshal([]byte(result.Raw), &out); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return &out, nil
}

// Projects returns all projects, or only featured ones.
func (c *Client) Projects(ctx context.Context, featuredOnly bool) ([]types.CMSProject, error) {
	q := projectsQuery
	if featuredOnly {
		q = featuredProjectsQuery
	}
	res, err := c.Query(ctx, q, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[types.CMSProject](res)
}

// ProjectBySlug returns the project with slug, or nil when there is none.
func (c *Client) ProjectBySlug(ctx context.Context, slug string) (*types.CMSProject, error) {
	res, err := c.Query(ctx, projectBySlugQuery, map[string]any{"slug": slug})
	if err != nil {
		return nil, err
	}
	return decodeOne[types.CMSProject](res)
}

// SiteSettings returns the settings document, or nil when there is none.
func (c *Client) SiteSettings(ctx context.Context) (*types.CMSSiteSettings, error) {
	res, err := c.Query(ctx, siteSettingsQuery, nil)
	if err != nil {
		return nil, err
	}
	return decodeOne[types.CMSSiteSettings](res)
}

// Testimonials returns all testimonials.
func (c *Client) Testimonials(ctx context.Context) ([]types.CMSTestimonial, error) {
	res, err := c.Query(ctx, testimonialsQuery, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[types.CMSTestimonial](res)
}

// PricingTiers returns all pricing tiers.
func (c *Client) PricingTiers(ctx context.Context) ([]types.PricingTier, error) {
	res, err := c.Query(ctx, pricingTiersQuery, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[types.PricingTier](res)
}
