package api

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/schema"

	"github.com/Lydell2627/portfolio-sub000/internal/contact"
	"github.com/Lydell2627/portfolio-sub000/internal/content"
	"github.com/Lydell2627/portfolio-sub000/internal/types"
)

// Deps are the collaborators of a Handler.
type Deps struct {
	Resolver *content.Resolver
	// Dispatcher delivers submissions made through the HTML contact form.
	Dispatcher contact.Dispatcher
	// Notifier receives submissions posted to the JSON contact endpoint.
	Notifier      contact.Notifier
	Version       string
	ContentSource string
	ImageProvider string
	BaseURL       string
	Logger        *slog.Logger
}

// Handler implements the page and API handlers
type Handler struct {
	resolver      *content.Resolver
	dispatcher    contact.Dispatcher
	notifier      contact.Notifier
	pages         *TemplateEngine
	decoder       *schema.Decoder
	version       string
	contentSource string
	imageProvider string
	baseURL       string
	logger        *slog.Logger
	now           func() time.Time
}

// NewHandler creates a Handler and parses the page templates.
func NewHandler(d Deps) (*Handler, error) {
	pages, err := NewTemplateEngine()
	if err != nil {
		return nil, err
	}

	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	notifier := d.Notifier
	if notifier == nil {
		notifier = contact.NewLogNotifier(logger)
	}
	dispatcher := d.Dispatcher
	if dispatcher == nil {
		dispatcher = contact.NewNotifierDispatcher(notifier)
	}

	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	return &Handler{
		resolver:      d.Resolver,
		dispatcher:    dispatcher,
		notifier:      notifier,
		pages:         pages,
		decoder:       decoder,
		version:       d.Version,
		contentSource: d.ContentSource,
		imageProvider: d.ImageProvider,
		baseURL:       strings.TrimRight(d.BaseURL, "/"),
		logger:        logger,
		now:           time.Now,
	}, nil
}

// Health returns the health status
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.HealthResponse{
		Status:        "healthy",
		Version:       h.version,
		ContentSource: h.contentSource,
		ImageProvider: h.imageProvider,
	})
}

// render executes a page into a buffer first so that a template failure
// can still become an error page.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data *PageData) {
	data.Path = r.URL.Path
	data.Year = h.now().Year()
	if data.Status == 0 {
		data.Status = status
	}

	var buf bytes.Buffer
	if err := h.pages.RenderTo(&buf, name, data); err != nil {
		h.logger.Error("render page failed", "template", name, "path", r.URL.Path, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// isAPI reports whether r targets the JSON API.
func isAPI(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// NotFound renders the 404 page, or a 404 problem for API paths.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	if isAPI(r) {
		WriteProblem(w, r, http.StatusNotFound, "Resource not found")
		return
	}
	h.render(w, r, http.StatusNotFound, "not_found.html", &PageData{
		Title:    "Not found",
		Settings: h.resolver.SiteSettings(r.Context()),
	})
}

// MethodNotAllowed answers requests with an unsupported method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	if isAPI(r) {
		WriteProblem(w, r, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}

// ServerError renders the error page, or a 500 problem for API paths.
func (h *Handler) ServerError(w http.ResponseWriter, r *http.Request) {
	if isAPI(r) {
		WriteProblem(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	h.render(w, r, http.StatusInternalServerError, "error.html", &PageData{
		Title:    "Error",
		Settings: h.resolver.Static().Settings,
	})
}

// TooManyRequests answers rate limited requests.
func (h *Handler) TooManyRequests(w http.ResponseWriter, r *http.Request) {
	if isAPI(r) {
		WriteProblem(w, r, http.StatusTooManyRequests, "Too many submissions, please wait a moment")
		return
	}
	h.render(w, r, http.StatusTooManyRequests, "error.html", &PageData{
		Title:    "Slow down",
		Message:  "Too many messages sent. Please wait a moment and try again.",
		Settings: h.resolver.Static().Settings,
	})
}
