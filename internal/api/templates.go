package api

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/url"
	"strings"

	"github.com/Lydell2627/portfolio-sub000/internal/contact"
	"github.com/Lydell2627/portfolio-sub000/internal/content"
	"github.com/Lydell2627/portfolio-sub000/internal/types"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// StaticFS returns the embedded stylesheet and script assets.
func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// PageData holds all data passed to templates for rendering. Exactly one of
// the page-specific fields is set.
type PageData struct {
	Title       string
	Description string
	Path        string
	Year        int
	Settings    types.SiteSettings

	Home     *content.HomeData
	Projects *content.ProjectsData
	Project  *content.ProjectData
	About    *content.AboutData
	Tiers    *content.TierData
	Contact  *ContactView
	Status   int
	Message  string
}

// ContactView is the rendered state of the contact form.
type ContactView struct {
	State        contact.State
	Input        contact.Input
	Errors       map[string]string
	ErrorMessage string
	Ack          *types.ContactAck
	Tiers        []types.PricingTier
	CanSubmit    bool
}

// pages lists the templates parsed together with the layout.
var pages = []string{
	"home.html",
	"about.html",
	"approach.html",
	"projects.html",
	"project.html",
	"contact.html",
	"not_found.html",
	"error.html",
}

// TemplateEngine loads and renders embedded HTML templates.
type TemplateEngine struct {
	templates map[string]*template.Template
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"lower": strings.ToLower,
		"join":  strings.Join,
		"categoryURL": func(label string) string {
			if label == content.CategoryAll {
				return "/projects"
			}
			return "/projects?category=" + url.QueryEscape(label)
		},
		"tierURL": func(id string) string {
			return "/contact?tier=" + url.QueryEscape(id)
		},
	}
}

// NewTemplateEngine parses all embedded templates. Each page template is
// parsed together with the layout so that the layout wraps every page.
func NewTemplateEngine() (*TemplateEngine, error) {
	funcs := templateFuncs()
	engine := &TemplateEngine{templates: make(map[string]*template.Template, len(pages))}

	for _, page := range pages {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(
			templateFS,
			"templates/layout.html",
			"templates/"+page,
		)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}
		engine.templates[page] = t
	}
	return engine, nil
}

// RenderTo executes the named page inside the layout and writes it to w.
func (e *TemplateEngine) RenderTo(w io.Writer, name string, data any) error {
	t, ok := e.templates[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return t.ExecuteTemplate(w, "layout.html", data)
}
