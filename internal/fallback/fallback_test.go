package fallback

import (
	"errors"
	"testing"
	"testing/fstest"
)

func TestDefault_ProjectsAndFeatured(t *testing.T) {
	d, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	if len(d.Projects) != 6 {
		t.Fatalf("len(Projects) = %d, want 6", len(d.Projects))
	}

	featured := d.FeaturedProjects()
	want := []string{"aurora-commerce", "lumen-identity", "kora-wellness", "pulse-fitness-app"}
	if len(featured) != len(want) {
		t.Fatalf("len(FeaturedProjects()) = %d, want %d", len(featured), len(want))
	}
	for i, p := range featured {
		if p.Slug != want[i] {
			t.Errorf("featured[%d] = %q, want %q", i, p.Slug, want[i])
		}
	}
}

func TestDefault_PricingTiers(t *testing.T) {
	d := MustDefault()

	wantIDs := []string{"starter", "growth", "scale", "enterprise"}
	if len(d.PricingTiers) != len(wantIDs) {
		t.Fatalf("len(PricingTiers) = %d, want 4", len(d.PricingTiers))
	}
	for i, id := range wantIDs {
		if d.PricingTiers[i].ID != id {
			t.Errorf("PricingTiers[%d].ID = %q, want %q", i, d.PricingTiers[i].ID, id)
		}
	}

	growth, ok := d.Tier("growth")
	if !ok {
		t.Fatal("Tier(growth) not found")
	}
	if growth.Name != "Growth" {
		t.Errorf("growth.Name = %q, want Growth", growth.Name)
	}
	if growth.PriceRange != "₹50,000–₹1,25,000" {
		t.Errorf("growth.PriceRange = %q", growth.PriceRange)
	}
	if !growth.Popular {
		t.Error("growth should be the popular tier")
	}

	if _, ok := d.Tier("platinum"); ok {
		t.Error("Tier(platinum) should not exist")
	}
}

func TestDefault_SettingsComplete(t *testing.T) {
	s := MustDefault().Settings
	fields := map[string]string{
		"name":              s.Name,
		"tagline":           s.Tagline,
		"description":       s.Description,
		"email":             s.Email,
		"phone":             s.Phone,
		"social.instagram":  s.Social.Instagram,
		"social.linkedin":   s.Social.LinkedIn,
		"social.twitter":    s.Social.Twitter,
		"social.dribbble":   s.Social.Dribbble,
		"social.behance":    s.Social.Behance,
		"social.github":     s.Social.GitHub,
		"stats.projects":    s.Stats.ProjectsCompleted,
		"stats.clients":     s.Stats.HappyClients,
		"stats.years":       s.Stats.YearsExperience,
		"stats.teamMembers": s.Stats.TeamMembers,
	}
	for name, v := range fields {
		if v == "" {
			t.Errorf("default settings field %s is empty", name)
		}
	}
}

func TestProjectBySlug(t *testing.T) {
	d := MustDefault()
	for _, p := range d.Projects {
		got, ok := d.ProjectBySlug(p.Slug)
		if !ok || got.Title != p.Title {
			t.Errorf("ProjectBySlug(%q) = %v, %v", p.Slug, got.Title, ok)
		}
	}
	if _, ok := d.ProjectBySlug("missing"); ok {
		t.Error("ProjectBySlug(missing) should miss")
	}
}

func TestLoadFS_RejectsDuplicateSlugs(t *testing.T) {
	fsys := fstest.MapFS{
		"data/a.yaml": {Data: []byte("projects:\n  - slug: x\n    title: X\n  - slug: x\n    title: Y\n")},
	}
	_, err := LoadFS(fsys, "data")
	if !errors.Is(err, ErrInvalidDataset) {
		t.Errorf("LoadFS() error = %v, want ErrInvalidDataset", err)
	}
}

func TestLoadFS_RejectsUnknownBlockType(t *testing.T) {
	fsys := fstest.MapFS{
		"data/a.yaml": {Data: []byte("projects:\n  - slug: x\n    content:\n      - type: video\n")},
	}
	_, err := LoadFS(fsys, "data")
	if !errors.Is(err, ErrInvalidDataset) {
		t.Errorf("LoadFS() error = %v, want ErrInvalidDataset", err)
	}
}

func TestLoadFS_RejectsTierWithoutFeatures(t *testing.T) {
	fsys := fstest.MapFS{
		"data/a.yaml": {Data: []byte("pricingTiers:\n  - id: solo\n    name: Solo\n")},
	}
	_, err := LoadFS(fsys, "data")
	if !errors.Is(err, ErrInvalidDataset) {
		t.Errorf("LoadFS() error = %v, want ErrInvalidDataset", err)
	}
}
