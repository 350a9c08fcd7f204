package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Lydell2627/portfolio-sub000/internal/contact"
	"github.com/Lydell2627/portfolio-sub000/internal/content"
	"github.com/Lydell2627/portfolio-sub000/internal/types"
)

// maxSubmissionBytes bounds contact request bodies.
const maxSubmissionBytes = 64 << 10

// invalidSubmissionMessage is the acknowledgement error for field errors.
const invalidSubmissionMessage = "Please check the highlighted fields and try again."

// ContactForm handles GET /contact. A ?tier= parameter pre-selects a
// package as if it had been chosen on the form.
func (h *Handler) ContactForm(w http.ResponseWriter, r *http.Request) {
	d, err := h.resolver.ContactPage(r.Context())
	if err != nil {
		h.pageFailed(w, r, err)
		return
	}

	form := h.newForm(d.Tiers)
	if id := r.URL.Query().Get("tier"); id != "" {
		if err := form.SelectTier(id); err != nil {
			h.logger.Debug("ignoring tier link", "tier", id, "error", err)
		}
	}
	h.renderContact(w, r, http.StatusOK, d, form)
}

// SubmitContact handles POST /contact from the HTML form.
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSubmissionBytes)

	var in contact.Input
	if err := r.ParseForm(); err != nil {
		h.badForm(w, r, err)
		return
	}
	if err := h.decoder.Decode(&in, r.PostForm); err != nil {
		h.badForm(w, r, err)
		return
	}

	d, err := h.resolver.ContactPage(r.Context())
	if err != nil {
		h.pageFailed(w, r, err)
		return
	}

	form := h.newForm(d.Tiers)
	if err := form.SetInput(in); err != nil {
		h.pageFailed(w, r, err)
		return
	}

	status := http.StatusOK
	err = form.Submit(r.Context(), contact.Meta{
		PageURL:   h.baseURL + "/contact",
		UserAgent: r.UserAgent(),
	})
	if errors.Is(err, contact.ErrValidation) {
		status = http.StatusUnprocessableEntity
	}
	h.renderContact(w, r, status, d, form)
}

func (h *Handler) newForm(tiers []types.PricingTier) *contact.Form {
	return contact.NewForm(tiers, h.dispatcher, contact.WithLogger(h.logger), contact.WithClock(h.now))
}

func (h *Handler) renderContact(w http.ResponseWriter, r *http.Request, status int, d *content.TierData, form *contact.Form) {
	h.render(w, r, status, "contact.html", &PageData{
		Title:    "Contact",
		Settings: d.Settings,
		Contact: &ContactView{
			State:        form.State(),
			Input:        form.Input(),
			Errors:       form.FieldErrors(),
			ErrorMessage: form.ErrorMessage(),
			Ack:          form.Ack(),
			Tiers:        d.Tiers,
			CanSubmit:    form.CanSubmit(),
		},
	})
}

func (h *Handler) badForm(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Warn("unreadable contact form", "error", err)
	h.render(w, r, http.StatusBadRequest, "error.html", &PageData{
		Title:    "Bad request",
		Message:  "We couldn't read your message",
		Settings: h.resolver.Static().Settings,
	})
}

// contactResponse is the acknowledgement of the JSON contact endpoint.
type contactResponse struct {
	types.ContactAck
	Errors map[string]string `json:"errors,omitempty"`
}

// CreateContact handles POST /api/v1/contact. It validates the submission
// and forwards it to the notifier.
func (h *Handler) CreateContact(w http.ResponseWriter, r *http.Request) {
	var sub types.ContactSubmission
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSubmissionBytes))
	if err := dec.Decode(&sub); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	tiers := h.resolver.PricingTiers(r.Context())
	if errs := contact.ValidateSubmission(sub, tiers); len(errs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, contactResponse{
			ContactAck: types.ContactAck{Success: false, Error: invalidSubmissionMessage},
			Errors:     errs,
		})
		return
	}

	sub = h.completeSubmission(r, sub, tiers)
	id := uuid.NewString()
	if err := h.notifier.Notify(r.Context(), sub); err != nil {
		h.logger.Warn("contact notification failed",
			"submission_id", id,
			"tier", sub.SelectedBudgetTier,
			"error", err,
		)
		writeJSON(w, http.StatusBadGateway, types.ContactAck{Success: false, Error: contact.DefaultErrorMessage})
		return
	}

	h.logger.Info("contact notification sent", "submission_id", id, "tier", sub.SelectedBudgetTier)
	writeJSON(w, http.StatusOK, types.ContactAck{Success: true, Message: contact.SuccessMessage})
}

// completeSubmission trims the fields of a valid submission and fills in
// what the server knows better than the client.
func (h *Handler) completeSubmission(r *http.Request, sub types.ContactSubmission, tiers []types.PricingTier) types.ContactSubmission {
	sub.Name = strings.TrimSpace(sub.Name)
	sub.Email = strings.TrimSpace(sub.Email)
	sub.Company = strings.TrimSpace(sub.Company)
	sub.ProjectDetails = strings.TrimSpace(sub.ProjectDetails)
	for _, t := range tiers {
		if t.Name == sub.SelectedBudgetTier {
			sub.SelectedBudgetRange = t.PriceRange
			break
		}
	}
	if sub.Timestamp.IsZero() {
		sub.Timestamp = h.now().UTC()
	}
	if sub.UserAgent == "" {
		sub.UserAgent = r.UserAgent()
	}
	return sub
}
