package e2e

import (
	"net/http"
	"strings"
	"testing"

	"github.com/Lydell2627/portfolio-sub000/internal/api"
	"github.com/Lydell2627/portfolio-sub000/internal/types"
)

// --- CMS Content ---

func TestSite_ServesCMSContent(t *testing.T) {
	cmsSrv := newFakeCMS(t)
	site := newSite(t, siteOptions{source: newCMSSource(t, cmsSrv)})

	status, body := getPage(t, site, "/")
	if status != http.StatusOK {
		t.Fatalf("home status = %d", status)
	}
	assertContains(t, body, "CMS Studio", "Orbit Coffee", "cdn.sanity.io/images/"+testProjectID+"/"+testDataset+"/")

	status, body = getPage(t, site, "/projects/orbit-coffee")
	if status != http.StatusOK {
		t.Fatalf("project status = %d", status)
	}
	assertContains(t, body,
		"Rebuilt the storefront around subscriptions.",
		`href="/projects/tide-brand"`,
	)

	if cmsSrv.queries.Load() == 0 {
		t.Error("site never queried the CMS")
	}
}

func TestSite_ProjectsAPI_FromCMS(t *testing.T) {
	site := newSite(t, siteOptions{source: newCMSSource(t, newFakeCMS(t))})

	var list api.ProjectListResponse
	if status := getJSON(t, site, "/api/v1/projects", &list); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if len(list.Projects) != 2 {
		t.Fatalf("projects = %d, want 2", len(list.Projects))
	}
	if list.Projects[0].Slug != "orbit-coffee" || list.Projects[0].Source != types.SourceCMS {
		t.Errorf("first project = %+v", list.Projects[0])
	}

	var branding api.ProjectListResponse
	getJSON(t, site, "/api/v1/projects?category=Branding", &branding)
	if len(branding.Projects) != 1 || branding.Projects[0].Slug != "tide-brand" {
		t.Errorf("branding = %+v", branding.Projects)
	}

	var one api.ProjectResponse
	if status := getJSON(t, site, "/api/v1/projects/tide-brand", &one); status != http.StatusOK {
		t.Fatalf("project status = %d", status)
	}
	if one.Previous == nil || one.Previous.Slug != "orbit-coffee" || one.Next != nil {
		t.Errorf("neighbors = %+v / %+v", one.Previous, one.Next)
	}
}

// --- Fallback ---

func TestSite_FallsBackWhenCMSFails(t *testing.T) {
	cmsSrv := newFakeCMS(t)
	cmsSrv.failing.Store(true)
	site := newSite(t, siteOptions{source: newCMSSource(t, cmsSrv)})

	for _, path := range []string{"/", "/about", "/approach", "/projects", "/contact"} {
		status, body := getPage(t, site, path)
		if status != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, status)
			continue
		}
		if !strings.Contains(body, "Lydell Studio") {
			t.Errorf("GET %s does not carry the fallback settings", path)
		}
	}

	status, body := getPage(t, site, "/projects/aurora-commerce")
	if status != http.StatusOK {
		t.Fatalf("static project status = %d", status)
	}
	assertContains(t, body, "Aurora Commerce")

	var list api.ProjectListResponse
	getJSON(t, site, "/api/v1/projects", &list)
	if len(list.Projects) == 0 || list.Projects[0].Source != types.SourceStatic {
		t.Errorf("projects = %+v, want static fallback", list.Projects)
	}

	var tiers struct {
		Tiers []types.PricingTier `json:"tiers"`
	}
	getJSON(t, site, "/api/v1/pricing-tiers", &tiers)
	if len(tiers.Tiers) != 4 || tiers.Tiers[0].ID != "starter" {
		t.Errorf("tiers = %+v, want the four fallback tiers", tiers.Tiers)
	}
}

func TestSite_RecoversWhenCMSReturns(t *testing.T) {
	cmsSrv := newFakeCMS(t)
	site := newSite(t, siteOptions{source: newCMSSource(t, cmsSrv)})

	cmsSrv.failing.Store(true)
	_, body := getPage(t, site, "/")
	if strings.Contains(body, "CMS Studio") {
		t.Fatal("CMS content served while the CMS was failing")
	}

	cmsSrv.failing.Store(false)
	_, body = getPage(t, site, "/")
	assertContains(t, body, "CMS Studio")
}

func TestSite_NoSource(t *testing.T) {
	site := newSite(t, siteOptions{})

	var health types.HealthResponse
	if status := getJSON(t, site, "/api/v1/health", &health); status != http.StatusOK {
		t.Fatalf("health status = %d", status)
	}
	if health.Status != "healthy" || health.Version != "e2e" {
		t.Errorf("health = %+v", health)
	}

	status, body := getPage(t, site, "/projects?category=Branding")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	assertContains(t, body, "Lumen Identity")
}

// --- Not Found ---

func TestSite_NotFound(t *testing.T) {
	site := newSite(t, siteOptions{source: newCMSSource(t, newFakeCMS(t))})

	status, body := getPage(t, site, "/projects/no-such-project")
	if status != http.StatusNotFound {
		t.Errorf("unknown project status = %d, want 404", status)
	}
	assertContains(t, body, "That project doesn&#39;t exist or has been moved.")

	if status, _ := getPage(t, site, "/pricing"); status != http.StatusNotFound {
		t.Errorf("unknown page status = %d, want 404", status)
	}

	var p api.Problem
	if status := getJSON(t, site, "/api/v1/projects/no-such-project", &p); status != http.StatusNotFound {
		t.Errorf("api status = %d, want 404", status)
	}
	if p.Status != http.StatusNotFound {
		t.Errorf("problem = %+v", p)
	}
}
