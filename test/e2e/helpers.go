package e2e

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Lydell2627/portfolio-sub000/internal/api"
	"github.com/Lydell2627/portfolio-sub000/internal/cms"
	"github.com/Lydell2627/portfolio-sub000/internal/config"
	"github.com/Lydell2627/portfolio-sub000/internal/contact"
	"github.com/Lydell2627/portfolio-sub000/internal/content"
	"github.com/Lydell2627/portfolio-sub000/internal/fallback"
	"github.com/Lydell2627/portfolio-sub000/internal/imageurl"
	"github.com/Lydell2627/portfolio-sub000/internal/richtext"
	"github.com/Lydell2627/portfolio-sub000/internal/types"
)

const (
	testProjectID = "e2eproj"
	testDataset   = "production"
)

// --- Fixtures ---

const cmsProjects = `[
	{
		"_id": "p-orbit",
		"title": "Orbit Coffee",
		"slug": "orbit-coffee",
		"description": "A subscription storefront for a specialty roaster.",
		"category": "E-commerce",
		"tools": ["Shopify", "Figma"],
		"year": 2024,
		"featured": true,
		"order": 1,
		"thumbnail": {"asset": {"_ref": "image-orbit123-1200x800-jpg"}, "alt": "Orbit"},
		"content": [
			{"_type": "block", "style": "normal", "children": [{"_type": "span", "text": "Rebuilt the storefront around subscriptions."}]}
		]
	},
	{
		"_id": "p-tide",
		"title": "Tide Brand System",
		"slug": "tide-brand",
		"category": "Branding",
		"tools": ["Illustrator"],
		"year": 2023,
		"featured": false,
		"order": 2
	}
]`

const cmsSettings = `{"name": "CMS Studio", "email": "studio@example.com"}`

const cmsTiers = `[
	{"id": "starter", "name": "Starter", "priceRange": "$1k - $3k", "features": ["Landing page"], "order": 1},
	{"id": "growth", "name": "Growth", "priceRange": "$3k - $8k", "popular": true, "features": ["Multi-page site"], "order": 2}
]`

// --- Fake CMS ---

// fakeCMS answers the CMS query API from fixed documents. When failing is
// set every query gets a 500.
type fakeCMS struct {
	srv     *httptest.Server
	failing atomic.Bool
	queries atomic.Int64
}

func newFakeCMS(t *testing.T) *fakeCMS {
	t.Helper()
	f := &fakeCMS{}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeCMS) serve(w http.ResponseWriter, r *http.Request) {
	f.queries.Add(1)
	if f.failing.Load() {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":{"description":"dataset unavailable"}}`)
		return
	}

	q := r.URL.Query()
	groq := q.Get("query")
	var result string
	switch {
	case strings.Contains(groq, "slug.current == $slug"):
		var slug string
		_ = json.Unmarshal([]byte(q.Get("$slug")), &slug)
		result = projectBySlug(slug)
	case strings.Contains(groq, `featured == true`):
		result = `[` + firstObject(cmsProjects) + `]`
	case strings.Contains(groq, `_type == "project"`):
		result = cmsProjects
	case strings.Contains(groq, `_type == "siteSettings"`):
		result = cmsSettings
	case strings.Contains(groq, `_type == "pricingTier"`):
		result = cmsTiers
	default:
		result = `[]`
	}

	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, `{"ms":1,"query":`+quote(groq)+`,"result":`+result+`}`)
}

func projectBySlug(slug string) string {
	var projects []json.RawMessage
	_ = json.Unmarshal([]byte(cmsProjects), &projects)
	for _, p := range projects {
		var head struct {
			Slug string `json:"slug"`
		}
		if json.Unmarshal(p, &head) == nil && head.Slug == slug {
			return string(p)
		}
	}
	return "null"
}

func firstObject(list string) string {
	var projects []json.RawMessage
	_ = json.Unmarshal([]byte(list), &projects)
	return string(projects[0])
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// --- Fake Webhook ---

type webhookPayload struct {
	Text       string                  `json:"text"`
	Submission types.ContactSubmission `json:"submission"`
}

// webhookRecorder records notifications. status is the reply code.
type webhookRecorder struct {
	srv      *httptest.Server
	status   atomic.Int32
	mu       sync.Mutex
	payloads []webhookPayload
}

func newWebhookRecorder(t *testing.T) *webhookRecorder {
	t.Helper()
	wr := &webhookRecorder{}
	wr.status.Store(http.StatusOK)
	wr.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p webhookPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err == nil {
			wr.mu.Lock()
			wr.payloads = append(wr.payloads, p)
			wr.mu.Unlock()
		}
		w.WriteHeader(int(wr.status.Load()))
	}))
	t.Cleanup(wr.srv.Close)
	return wr
}

func (wr *webhookRecorder) received() []webhookPayload {
	wr.mu.Lock()
	defer wr.mu.Unlock()
	return append([]webhookPayload(nil), wr.payloads...)
}

// --- Site ---

type siteOptions struct {
	source      content.Source
	webhookURL  string
	endpoint    string
	submitBurst int
}

// newSite assembles the full server stack the way the binary does and
// serves it from an httptest server.
func newSite(t *testing.T, opts siteOptions) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	images, err := imageurl.NewSanityBuilder(testProjectID, testDataset)
	if err != nil {
		t.Fatalf("image builder: %v", err)
	}
	static, err := fallback.Default()
	if err != nil {
		t.Fatalf("fallback dataset: %v", err)
	}
	resolver := content.NewResolver(opts.source, static, images, richtext.New(), logger)

	var notifier contact.Notifier = contact.NewLogNotifier(logger)
	if opts.webhookURL != "" {
		notifier = contact.NewWebhookNotifier(opts.webhookURL, 0)
	}
	var dispatcher contact.Dispatcher = contact.NewNotifierDispatcher(notifier)
	if opts.endpoint != "" {
		dispatcher = contact.NewHTTPDispatcher(opts.endpoint, 0)
	}

	handler, err := api.NewHandler(api.Deps{
		Resolver:      resolver,
		Dispatcher:    dispatcher,
		Notifier:      notifier,
		Version:       "e2e",
		ContentSource: config.CMSProviderSanity,
		ImageProvider: images.Name(),
		BaseURL:       "https://lydell.studio",
		Logger:        logger,
	})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}

	burst := opts.submitBurst
	if burst == 0 {
		burst = 100
	}
	router := api.NewRouter(handler, api.RouterOptions{
		SubmitLimiter: api.NewRateLimiter(burst, time.Minute),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

// newCMSSource returns a CMS client pointed at the fake.
func newCMSSource(t *testing.T, f *fakeCMS) *cms.Client {
	t.Helper()
	c, err := cms.NewClient(config.CMSConfig{
		Provider:   config.CMSProviderSanity,
		ProjectID:  testProjectID,
		Dataset:    testDataset,
		APIVersion: "2024-01-01",
	}, cms.WithBaseURL(f.srv.URL))
	if err != nil {
		t.Fatalf("cms client: %v", err)
	}
	return c
}

// --- Requests ---

func getPage(t *testing.T, srv *httptest.Server, path string) (int, string) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func getJSON(t *testing.T, srv *httptest.Server, path string, v any) int {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return resp.StatusCode
}

func postForm(t *testing.T, srv *httptest.Server, path string, form url.Values) (int, string) {
	t.Helper()
	resp, err := http.PostForm(srv.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func postJSON(t *testing.T, srv *httptest.Server, path, body string, v any) int {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return resp.StatusCode
}

func assertContains(t *testing.T, body string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func enquiry() url.Values {
	return url.Values{
		"name":    {"Asha Rao"},
		"email":   {"asha@example.com"},
		"company": {"Rao Foods"},
		"tier":    {"growth"},
		"message": {"We need a new storefront for our spice shop."},
	}
}
