// Package contact implements the contact form: input validation, the pricing
// tier selection side effect, the submission state machine, and dispatch of
// submissions to a notification endpoint.
//
// Delivery is best effort. A failed submission is reported to the user and
// never queued or retried automatically.
package contact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Lydell2627/portfolio-sub000/internal/types"
)

// State is the state of a Form.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateError      State = "error"
)

var (
	// ErrSubmitInProgress is returned for any change attempted while a
	// submission is in flight.
	ErrSubmitInProgress = errors.New("submission in progress")

	// ErrInvalidTransition is returned when an operation is not allowed in
	// the current state.
	ErrInvalidTransition = errors.New("invalid form state transition")

	// ErrValidation is returned by Submit when the input has field errors.
	ErrValidation = errors.New("contact form has invalid fields")

	// ErrUnknownTier is returned by SelectTier for an id that is not offered.
	ErrUnknownTier = errors.New("unknown pricing tier")
)

// DefaultErrorMessage is shown when a submission fails without a message
// from the endpoint.
const DefaultErrorMessage = "Something went wrong sending your message. Please try again, or email us directly."

// Input is the user-editable form content. Tier holds a pricing tier id.
type Input struct {
	Name    string `schema:"name" json:"name"`
	Email   string `schema:"email" json:"email"`
	Company string `schema:"company" json:"company,omitempty"`
	Tier    string `schema:"tier" json:"tier"`
	Message string `schema:"message" json:"message"`
}

// Meta is request context recorded with a submission.
type Meta struct {
	PageURL   string
	UserAgent string
}

// Form is one contact form instance. Methods are safe for concurrent use;
// at most one submission is in flight at a time.
type Form struct {
	tiers      []types.PricingTier
	dispatcher Dispatcher
	logger     *slog.Logger
	now        func() time.Time

	mu          sync.Mutex
	state       State
	input       Input
	fieldErrors map[string]string
	errMessage  string
	ack         *types.ContactAck
}

// FormOption configures a Form.
type FormOption func(*Form)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) FormOption {
	return func(f *Form) { f.logger = l }
}

// WithClock sets the time source used for submission timestamps.
func WithClock(now func() time.Time) FormOption {
	return func(f *Form) { f.now = now }
}

// NewForm creates an idle form offering tiers.
func NewForm(tiers []types.PricingTier, d Dispatcher, opts ...FormOption) *Form {
	f := &Form{
		tiers:      tiers,
		dispatcher: d,
		logger:     slog.Default(),
		now:        time.Now,
		state:      StateIdle,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// State returns the current state.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// CanSubmit reports whether the submit control should be enabled.
func (f *Form) CanSubmit() bool {
	return f.State() != StateSubmitting
}

// Input returns the current input.
func (f *Form) Input() Input {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.input
}

// FieldErrors returns the field errors of the last rejected submit.
func (f *Form) FieldErrors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.fieldErrors))
	for k, v := range f.fieldErrors {
		out[k] = v
	}
	return out
}

// ErrorMessage returns the failure message while in the error state.
func (f *Form) ErrorMessage() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errMessage
}

// Ack returns the acknowledgement of the last successful submission.
func (f *Form) Ack() *types.ContactAck {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ack
}

// SetInput replaces the input. It is allowed while idle or after a failed
// submission.
func (f *Form) SetInput(in Input) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case StateSubmitting:
		return ErrSubmitInProgress
	case StateSuccess:
		return fmt.Errorf("%w: set input in %s", ErrInvalidTransition, f.state)
	}
	f.input = in
	return nil
}

// SelectTier selects a pricing tier and writes the matching
// "Selected package:" line into the message, replacing any earlier one.
func (f *Form) SelectTier(id string) error {
	tier, ok := findTier(f.tiers, id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTier, id)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case StateSubmitting:
		return ErrSubmitInProgress
	case StateSuccess:
		return fmt.Errorf("%w: select tier in %s", ErrInvalidTransition, f.state)
	}
	f.input.Tier = tier.ID
	f.input.Message = WithSelectedPackage(f.input.Message, tier)
	return nil
}

// Submit validates the input and, when valid, dispatches the submission.
// Invalid input leaves the form idle with field errors and returns
// ErrValidation without dispatching. A dispatch failure moves the form to
// the error state with the input preserved; success clears the input.
func (f *Form) Submit(ctx context.Context, meta Meta) error {
	f.mu.Lock()
	switch f.state {
	case StateSubmitting:
		f.mu.Unlock()
		return ErrSubmitInProgress
	case StateIdle:
	default:
		s := f.state
		f.mu.Unlock()
		return fmt.Errorf("%w: submit in %s", ErrInvalidTransition, s)
	}

	if errs := Validate(f.input, f.tiers); len(errs) > 0 {
		f.fieldErrors = errs
		f.mu.Unlock()
		return ErrValidation
	}

	tier, _ := findTier(f.tiers, f.input.Tier)
	sub := types.ContactSubmission{
		Name:                strings.TrimSpace(f.input.Name),
		Email:               strings.TrimSpace(f.input.Email),
		Company:             strings.TrimSpace(f.input.Company),
		SelectedBudgetTier:  tier.Name,
		SelectedBudgetRange: tier.PriceRange,
		ProjectDetails:      strings.TrimSpace(f.input.Message),
		Timestamp:           f.now().UTC(),
		PageURL:             meta.PageURL,
		UserAgent:           meta.UserAgent,
	}
	f.state = StateSubmitting
	f.fieldErrors = nil
	f.errMessage = ""
	f.mu.Unlock()

	id := uuid.NewString()
	start := time.Now()
	ack, err := f.dispatcher.Dispatch(ctx, sub)
	if err == nil && (ack == nil || !ack.Success) {
		err = ackError(ack)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		f.state = StateError
		f.errMessage = userMessage(err)
		f.logger.Warn("contact submission failed",
			"submission_id", id,
			"tier", sub.SelectedBudgetTier,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return err
	}

	f.state = StateSuccess
	f.input = Input{}
	f.ack = ack
	f.logger.Info("contact submission delivered",
		"submission_id", id,
		"tier", sub.SelectedBudgetTier,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Retry returns a failed form to idle with its input intact.
func (f *Form) Retry() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateError {
		return fmt.Errorf("%w: retry in %s", ErrInvalidTransition, f.state)
	}
	f.state = StateIdle
	f.errMessage = ""
	return nil
}

// SendAnother returns a successful form to idle.
func (f *Form) SendAnother() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateSuccess {
		return fmt.Errorf("%w: send another in %s", ErrInvalidTransition, f.state)
	}
	f.state = StateIdle
	f.ack = nil
	return nil
}

func findTier(tiers []types.PricingTier, id string) (types.PricingTier, bool) {
	for _, t := range tiers {
		if t.ID == id {
			return t, true
		}
	}
	return types.PricingTier{}, false
}
