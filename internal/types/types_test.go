package types

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestContactSubmission_JSONFieldNames(t *testing.T) {
	s := ContactSubmission{
		Name:                "Alice",
		Email:               "alice@example.com",
		SelectedBudgetTier:  "Growth",
		SelectedBudgetRange: "₹50,000–₹1,25,000",
		ProjectDetails:      "A new storefront",
		Timestamp:           time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		PageURL:             "https://example.com/contact",
		UserAgent:           "test-agent",
	}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	for _, key := range []string{"name", "email", "selectedBudgetTier", "selectedBudgetRange", "projectDetails", "timestamp", "pageUrl", "userAgent"} {
		if _, ok := m[key]; !ok {
			t.Errorf("missing JSON key %q in %s", key, data)
		}
	}
	if _, ok := m["company"]; ok {
		t.Errorf("empty company should be omitted, got %s", data)
	}
	if m["timestamp"] != "2026-01-02T03:04:05Z" {
		t.Errorf("timestamp = %v, want RFC 3339", m["timestamp"])
	}
}

func TestContactAck_OmitsEmptyOptionalFields(t *testing.T) {
	data, err := json.Marshal(ContactAck{Success: true})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `{"success":true}` {
		t.Errorf("ContactAck JSON = %s, want {\"success\":true}", data)
	}
}

func TestCMSProject_DecodesImageRefsAndNullOrder(t *testing.T) {
	raw := `{
		"_id": "p1",
		"slug": "aurora",
		"title": "Aurora",
		"thumbnail": {"asset": {"_ref": "image-abc-800x600-jpg"}, "alt": "cover"},
		"content": [{"_type": "block"}],
		"featured": true,
		"order": null
	}`

	var p CMSProject
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if p.Thumbnail.AssetID() != "image-abc-800x600-jpg" {
		t.Errorf("Thumbnail.AssetID() = %q", p.Thumbnail.AssetID())
	}
	if p.HeroImage.AssetID() != "" {
		t.Errorf("HeroImage.AssetID() = %q, want empty for nil image", p.HeroImage.AssetID())
	}
	if p.Order != nil {
		t.Errorf("Order = %v, want nil", *p.Order)
	}
	if !strings.Contains(string(p.Content), "block") {
		t.Errorf("Content not preserved as raw JSON: %s", p.Content)
	}
}

func TestProjectRecord_Constructors(t *testing.T) {
	c := FromCMS(CMSProject{Slug: "a"})
	if c.Source != SourceCMS || c.CMS == nil || c.Static != nil {
		t.Errorf("FromCMS() = %+v", c)
	}
	s := FromStatic(StaticProject{Slug: "b"})
	if s.Source != SourceStatic || s.Static == nil || s.CMS != nil {
		t.Errorf("FromStatic() = %+v", s)
	}
}
