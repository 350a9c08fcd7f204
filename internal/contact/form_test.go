package contact

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Lydell2627/portfolio-sub000/internal/fallback"
	"github.com/Lydell2627/portfolio-sub000/internal/types"
)

// recordingDispatcher records submissions and replies with a fixed result.
type recordingDispatcher struct {
	calls atomic.Int32
	last  types.ContactSubmission
	ack   *types.ContactAck
	err   error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, sub types.ContactSubmission) (*types.ContactAck, error) {
	d.calls.Add(1)
	d.last = sub
	return d.ack, d.err
}

var fixedNow = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func tiers() []types.PricingTier {
	return fallback.MustDefault().PricingTiers
}

func newTestForm(d Dispatcher) *Form {
	return NewForm(tiers(), d,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(func() time.Time { return fixedNow }),
	)
}

func validInput() Input {
	return Input{
		Name:    "Asha Rao",
		Email:   "asha@example.com",
		Company: "Rao & Co",
		Tier:    "growth",
		Message: "We need a new storefront before Diwali.",
	}
}

func okDispatcher() *recordingDispatcher {
	return &recordingDispatcher{ack: &types.ContactAck{Success: true, Message: "Thanks"}}
}

// --- Validation Tests ---

func TestSubmit_NameMinimumLength(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		wantErr   error
		wantCalls int32
		wantState State
	}{
		{"two chars pass", "Al", nil, 1, StateSuccess},
		{"one char fails", "A", ErrValidation, 0, StateIdle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := okDispatcher()
			f := newTestForm(d)
			in := validInput()
			in.Name = tt.value
			if err := f.SetInput(in); err != nil {
				t.Fatalf("SetInput() error = %v", err)
			}

			err := f.Submit(context.Background(), Meta{})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Submit() error = %v, want %v", err, tt.wantErr)
			}
			if got := d.calls.Load(); got != tt.wantCalls {
				t.Errorf("dispatch calls = %d, want %d", got, tt.wantCalls)
			}
			if f.State() != tt.wantState {
				t.Errorf("State() = %q, want %q", f.State(), tt.wantState)
			}
			if tt.wantErr != nil {
				if _, ok := f.FieldErrors()[FieldName]; !ok {
					t.Errorf("FieldErrors() = %v, want a name error", f.FieldErrors())
				}
			}
		})
	}
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Input)
		wantField string
	}{
		{"bad email", func(in *Input) { in.Email = "asha@" }, FieldEmail},
		{"missing email", func(in *Input) { in.Email = " " }, FieldEmail},
		{"missing tier", func(in *Input) { in.Tier = "" }, FieldTier},
		{"unknown tier", func(in *Input) { in.Tier = "platinum" }, FieldTier},
		{"short message", func(in *Input) { in.Message = "Hi there" }, FieldMessage},
		{"long company", func(in *Input) { in.Company = strings.Repeat("x", MaxCompanyLength+1) }, FieldCompany},
		{"null byte", func(in *Input) { in.Name = "As\x00ha" }, FieldName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			errs := Validate(in, tiers())
			if len(errs) != 1 {
				t.Fatalf("Validate() = %v, want exactly one error", errs)
			}
			if _, ok := errs[tt.wantField]; !ok {
				t.Errorf("Validate() = %v, want error for %s", errs, tt.wantField)
			}
		})
	}

	if errs := Validate(validInput(), tiers()); len(errs) != 0 {
		t.Errorf("Validate(valid) = %v, want none", errs)
	}
}

func TestValidate_MessageLengthBoundary(t *testing.T) {
	in := validInput()
	in.Message = "0123456789"
	if errs := Validate(in, tiers()); len(errs) != 0 {
		t.Errorf("10-char message: %v", errs)
	}
	in.Message = "012345678"
	if _, ok := Validate(in, tiers())[FieldMessage]; !ok {
		t.Error("9-char message should fail")
	}
}

// --- Submission Tests ---

func TestSubmit_GrowthRoundTrip(t *testing.T) {
	d := okDispatcher()
	f := newTestForm(d)
	in := validInput()
	in.Tier = ""
	_ = f.SetInput(in)
	if err := f.SelectTier("growth"); err != nil {
		t.Fatalf("SelectTier() error = %v", err)
	}

	meta := Meta{PageURL: "https://lydell.studio/contact", UserAgent: "test-agent"}
	if err := f.Submit(context.Background(), meta); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	want := types.ContactSubmission{
		Name:                "Asha Rao",
		Email:               "asha@example.com",
		Company:             "Rao & Co",
		SelectedBudgetTier:  "Growth",
		SelectedBudgetRange: "₹50,000–₹1,25,000",
		ProjectDetails:      "We need a new storefront before Diwali.\n\nSelected package: Growth (₹50,000–₹1,25,000)",
		Timestamp:           fixedNow,
		PageURL:             "https://lydell.studio/contact",
		UserAgent:           "test-agent",
	}
	if diff := cmp.Diff(want, d.last); diff != "" {
		t.Errorf("submission mismatch (-want +got):\n%s", diff)
	}

	raw, _ := json.Marshal(d.last)
	var wire map[string]any
	_ = json.Unmarshal(raw, &wire)
	if wire["selectedBudgetTier"] != "Growth" || wire["selectedBudgetRange"] != "₹50,000–₹1,25,000" {
		t.Errorf("wire payload = %s", raw)
	}
}

func TestSubmit_SuccessClearsInput(t *testing.T) {
	f := newTestForm(okDispatcher())
	_ = f.SetInput(validInput())

	if err := f.Submit(context.Background(), Meta{}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if f.State() != StateSuccess {
		t.Errorf("State() = %q, want success", f.State())
	}
	if f.Input() != (Input{}) {
		t.Errorf("Input() = %+v, want cleared", f.Input())
	}
	if f.Ack() == nil || f.Ack().Message != "Thanks" {
		t.Errorf("Ack() = %+v", f.Ack())
	}

	if err := f.SendAnother(); err != nil {
		t.Fatalf("SendAnother() error = %v", err)
	}
	if f.State() != StateIdle {
		t.Errorf("State() after SendAnother = %q, want idle", f.State())
	}
}

func TestSubmit_Non2xxPreservesInput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success": false, "error": "Mail service unavailable"}`))
	}))
	defer srv.Close()

	f := newTestForm(NewHTTPDispatcher(srv.URL, time.Second))
	in := validInput()
	_ = f.SetInput(in)

	err := f.Submit(context.Background(), Meta{})
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("Submit() error = %v, want ErrRejected", err)
	}
	if f.State() != StateError {
		t.Errorf("State() = %q, want error", f.State())
	}
	if f.Input().Message != in.Message {
		t.Errorf("Message = %q, want original text preserved", f.Input().Message)
	}
	if f.ErrorMessage() != "Mail service unavailable" {
		t.Errorf("ErrorMessage() = %q", f.ErrorMessage())
	}
	if !f.CanSubmit() {
		t.Error("CanSubmit() = false in error state")
	}

	if err := f.Retry(); err != nil {
		t.Fatalf("Retry() error = %v", err)
	}
	if f.State() != StateIdle || f.Input() != in || f.ErrorMessage() != "" {
		t.Errorf("after Retry: state %q, input %+v, message %q", f.State(), f.Input(), f.ErrorMessage())
	}
}

func TestSubmit_FailureModes(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{"non-json 2xx", http.StatusOK, `OK`, ErrMalformedAck, DefaultErrorMessage},
		{"missing success", http.StatusOK, `{"message": "sent"}`, ErrMalformedAck, DefaultErrorMessage},
		{"success false", http.StatusOK, `{"success": false, "error": "Spam detected"}`, ErrRejected, "Spam detected"},
		{"bad gateway html", http.StatusBadGateway, `<html>bad gateway</html>`, ErrRejected, DefaultErrorMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			f := newTestForm(NewHTTPDispatcher(srv.URL, time.Second))
			_ = f.SetInput(validInput())

			err := f.Submit(context.Background(), Meta{})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Submit() error = %v, want %v", err, tt.wantErr)
			}
			if f.State() != StateError {
				t.Errorf("State() = %q, want error", f.State())
			}
			if f.ErrorMessage() != tt.wantMsg {
				t.Errorf("ErrorMessage() = %q, want %q", f.ErrorMessage(), tt.wantMsg)
			}
		})
	}
}

func TestSubmit_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	f := newTestForm(NewHTTPDispatcher(url, time.Second))
	_ = f.SetInput(validInput())

	if err := f.Submit(context.Background(), Meta{}); err == nil {
		t.Fatal("Submit() error = nil, want transport error")
	}
	if f.State() != StateError || f.ErrorMessage() != DefaultErrorMessage {
		t.Errorf("State() = %q, ErrorMessage() = %q", f.State(), f.ErrorMessage())
	}
}

// blockingDispatcher holds Dispatch until release is closed.
type blockingDispatcher struct {
	entered chan struct{}
	release chan struct{}
}

func (d *blockingDispatcher) Dispatch(ctx context.Context, _ types.ContactSubmission) (*types.ContactAck, error) {
	close(d.entered)
	<-d.release
	return &types.ContactAck{Success: true}, nil
}

func TestSubmit_OneInFlight(t *testing.T) {
	d := &blockingDispatcher{entered: make(chan struct{}), release: make(chan struct{})}
	f := newTestForm(d)
	_ = f.SetInput(validInput())

	done := make(chan error, 1)
	go func() { done <- f.Submit(context.Background(), Meta{}) }()
	<-d.entered

	if f.CanSubmit() {
		t.Error("CanSubmit() = true while submitting")
	}
	if err := f.Submit(context.Background(), Meta{}); !errors.Is(err, ErrSubmitInProgress) {
		t.Errorf("second Submit() error = %v, want ErrSubmitInProgress", err)
	}
	if err := f.SetInput(Input{}); !errors.Is(err, ErrSubmitInProgress) {
		t.Errorf("SetInput() while submitting error = %v, want ErrSubmitInProgress", err)
	}
	if err := f.SelectTier("starter"); !errors.Is(err, ErrSubmitInProgress) {
		t.Errorf("SelectTier() while submitting error = %v, want ErrSubmitInProgress", err)
	}

	close(d.release)
	if err := <-done; err != nil {
		t.Fatalf("first Submit() error = %v", err)
	}
	if f.State() != StateSuccess {
		t.Errorf("State() = %q, want success", f.State())
	}
}

func TestTransitions_Invalid(t *testing.T) {
	f := newTestForm(okDispatcher())

	if err := f.Retry(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Retry() from idle error = %v", err)
	}
	if err := f.SendAnother(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("SendAnother() from idle error = %v", err)
	}

	_ = f.SetInput(validInput())
	_ = f.Submit(context.Background(), Meta{})
	if err := f.Submit(context.Background(), Meta{}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Submit() from success error = %v", err)
	}
	if err := f.SetInput(validInput()); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("SetInput() from success error = %v", err)
	}
}

// --- Tier Selection Tests ---

func TestSelectTier_Idempotent(t *testing.T) {
	f := newTestForm(okDispatcher())
	_ = f.SetInput(Input{Message: "Hello team"})

	_ = f.SelectTier("growth")
	_ = f.SelectTier("growth")

	msg := f.Input().Message
	if n := strings.Count(msg, SelectedPackagePrefix); n != 1 {
		t.Errorf("message has %d selected package lines, want 1:\n%s", n, msg)
	}
	if f.Input().Tier != "growth" {
		t.Errorf("Tier = %q, want growth", f.Input().Tier)
	}
}

func TestSelectTier_ReplacesPreviousLine(t *testing.T) {
	f := newTestForm(okDispatcher())
	_ = f.SetInput(Input{Message: "Hello team"})

	_ = f.SelectTier("starter")
	_ = f.SelectTier("scale")

	want := "Hello team\n\nSelected package: Scale (₹1,25,000–₹3,00,000)"
	if got := f.Input().Message; got != want {
		t.Errorf("Message = %q, want %q", got, want)
	}
}

func TestSelectTier_Unknown(t *testing.T) {
	f := newTestForm(okDispatcher())
	if err := f.SelectTier("platinum"); !errors.Is(err, ErrUnknownTier) {
		t.Errorf("SelectTier() error = %v, want ErrUnknownTier", err)
	}
}

func TestWithSelectedPackage(t *testing.T) {
	growth, _ := fallback.MustDefault().Tier("growth")
	line := SelectedPackageLine(growth)

	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"empty", "", line},
		{"appends after text", "Hi\n", "Hi\n\n" + line},
		{"replaces in middle", "Hi\nSelected package: Starter (x)\nThanks", "Hi\n" + line + "\nThanks"},
		{"collapses duplicates", "Selected package: A (1)\nSelected package: B (2)", line},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WithSelectedPackage(tt.message, growth); got != tt.want {
				t.Errorf("WithSelectedPackage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateSubmission(t *testing.T) {
	sub := types.ContactSubmission{
		Name:                "Al",
		Email:               "al@example.com",
		SelectedBudgetTier:  "Growth",
		SelectedBudgetRange: "₹50,000–₹1,25,000",
		ProjectDetails:      "A new brand identity.",
	}
	if errs := ValidateSubmission(sub, tiers()); len(errs) != 0 {
		t.Errorf("ValidateSubmission(valid) = %v", errs)
	}

	sub.SelectedBudgetTier = "Gold"
	errs := ValidateSubmission(sub, tiers())
	if errs[FieldTier] != "must be one of the offered packages" {
		t.Errorf("ValidateSubmission(unknown tier) = %v", errs)
	}
}
