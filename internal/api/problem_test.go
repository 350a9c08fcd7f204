package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Lydell2627/portfolio-sub000/internal/content"
)

func TestWriteProblem(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/projects/nope", nil)

	WriteProblem(w, r, http.StatusNotFound, "Resource not found")

	if w.Code != http.StatusNotFound {
		t.Errorf("status code = %d, want %d", w.Code, http.StatusNotFound)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type = %v, want application/problem+json", ct)
	}

	var got Problem
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	want := Problem{
		Type:     "https://lydell.studio/errors/not-found",
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   "Resource not found",
		Instance: "/api/v1/projects/nope",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("problem mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteProblem_AllMappedStatuses(t *testing.T) {
	for status, pt := range problemTypes {
		t.Run(http.StatusText(status), func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil)

			WriteProblem(w, r, status, "detail")

			var p Problem
			if err := json.NewDecoder(w.Body).Decode(&p); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if p.Type != pt.typeURI || p.Title != pt.title || p.Status != status {
				t.Errorf("problem = %+v", p)
			}
		})
	}
}

func TestWriteProblem_UnknownStatus(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil)

	WriteProblem(w, r, http.StatusTeapot, "short and stout")

	var p Problem
	if err := json.NewDecoder(w.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Type != "https://lydell.studio/errors/unknown" || p.Title != "I'm a teapot" {
		t.Errorf("problem = %+v", p)
	}
}

func TestMapContentError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{"not found", content.ErrNotFound, http.StatusNotFound, "Resource not found"},
		{"wrapped not found", fmt.Errorf("project %q: %w", "x", content.ErrNotFound), http.StatusNotFound, "Resource not found"},
		{"other", errors.New("static dataset broken: /etc/secret"), http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/v1/projects/x", nil)

			MapContentError(w, r, tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var p Problem
			if err := json.NewDecoder(w.Body).Decode(&p); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if p.Detail != tt.wantDetail {
				t.Errorf("detail = %q, want %q", p.Detail, tt.wantDetail)
			}
		})
	}
}
