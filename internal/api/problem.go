package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Lydell2627/portfolio-sub000/internal/content"
)

// Problem represents an RFC 7807 Problem Details response.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance,omitempty"`
}

const problemBaseURI = "https://lydell.studio/errors/"

// problemTypes maps HTTP status codes to RFC 7807 type URIs and titles.
var problemTypes = map[int]struct {
	typeURI string
	title   string
}{
	http.StatusBadRequest: {
		typeURI: problemBaseURI + "bad-request",
		title:   "Bad Request",
	},
	http.StatusNotFound: {
		typeURI: problemBaseURI + "not-found",
		title:   "Not Found",
	},
	http.StatusMethodNotAllowed: {
		typeURI: problemBaseURI + "method-not-allowed",
		title:   "Method Not Allowed",
	},
	http.StatusUnprocessableEntity: {
		typeURI: problemBaseURI + "validation-error",
		title:   "Validation Error",
	},
	http.StatusTooManyRequests: {
		typeURI: problemBaseURI + "rate-limit",
		title:   "Too Many Requests",
	},
	http.StatusInternalServerError: {
		typeURI: problemBaseURI + "internal-error",
		title:   "Internal Server Error",
	},
	http.StatusBadGateway: {
		typeURI: problemBaseURI + "delivery-failed",
		title:   "Bad Gateway",
	},
}

// WriteProblem writes an RFC 7807 Problem Details response.
func WriteProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	pt, ok := problemTypes[status]
	if !ok {
		pt.typeURI = problemBaseURI + "unknown"
		pt.title = http.StatusText(status)
	}

	p := Problem{
		Type:     pt.typeURI,
		Title:    pt.title,
		Status:   status,
		Detail:   detail,
		Instance: r.URL.Path,
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		slog.Error("failed to encode problem response", "error", err)
	}
}

// MapContentError converts content errors to Problem Details responses.
func MapContentError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, content.ErrNotFound):
		WriteProblem(w, r, http.StatusNotFound, "Resource not found")
	default:
		// Never expose internal error details to client
		WriteProblem(w, r, http.StatusInternalServerError, "Internal Server Error")
	}
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
