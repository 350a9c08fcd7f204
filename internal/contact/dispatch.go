package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Lydell2627/portfolio-sub000/internal/types"
)

// maxAckBytes bounds how much of an acknowledgement body is read.
const maxAckBytes = 64 << 10

var (
	// ErrMalformedAck is returned when an acknowledgement is not the
	// expected {success, error?, message?} shape.
	ErrMalformedAck = errors.New("malformed acknowledgement")

	// ErrRejected is returned when the endpoint answers with success false
	// or a non-2xx status.
	ErrRejected = errors.New("submission rejected")
)

// DeliveryError carries the endpoint's own explanation of a failure.
type DeliveryError struct {
	Status int
	Reason string
	Err    error
}

func (e *DeliveryError) Error() string {
	msg := e.Err.Error()
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// Dispatcher delivers a submission and returns the acknowledgement.
type Dispatcher interface {
	Dispatch(ctx context.Context, sub types.ContactSubmission) (*types.ContactAck, error)
}

// HTTPDispatcher posts submissions as JSON to an external endpoint.
type HTTPDispatcher struct {
	endpoint string
	client   *http.Client
}

// NewHTTPDispatcher creates a dispatcher for endpoint. The timeout bounds
// each request; zero means 10 seconds.
func NewHTTPDispatcher(endpoint string, timeout time.Duration) *HTTPDispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPDispatcher{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Dispatch posts sub and decodes the acknowledgement.
func (d *HTTPDispatcher) Dispatch(ctx context.Context, sub types.ContactSubmission) (*types.ContactAck, error) {
	body, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("encode submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post submission: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxAckBytes))
	if err != nil {
		return nil, fmt.Errorf("read acknowledgement: %w", err)
	}

	ack, decodeErr := decodeAck(raw)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reason := ""
		if decodeErr == nil {
			reason = ack.Error
		}
		return nil, &DeliveryError{Status: resp.StatusCode, Reason: reason, Err: ErrRejected}
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	return ack, nil
}

// decodeAck requires a JSON object with a boolean success field.
func decodeAck(raw []byte) (*types.ContactAck, error) {
	var body struct {
		Success *bool  `json:"success"`
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAck, err)
	}
	if body.Success == nil {
		return nil, fmt.Errorf("%w: missing success", ErrMalformedAck)
	}
	return &types.ContactAck{Success: *body.Success, Error: body.Error, Message: body.Message}, nil
}

// ackError converts a negative or missing acknowledgement into an error.
func ackError(ack *types.ContactAck) error {
	if ack == nil {
		return fmt.Errorf("%w: empty acknowledgement", ErrMalformedAck)
	}
	return &DeliveryError{Reason: ack.Error, Err: ErrRejected}
}

// userMessage is the text shown in the form's error banner.
func userMessage(err error) string {
	var de *DeliveryError
	if errors.As(err, &de) && de.Reason != "" {
		return de.Reason
	}
	return DefaultErrorMessage
}

// NotifierDispatcher delivers submissions in-process through a Notifier.
type NotifierDispatcher struct {
	notifier Notifier
}

// NewNotifierDispatcher creates a dispatcher that calls n.
func NewNotifierDispatcher(n Notifier) *NotifierDispatcher {
	return &NotifierDispatcher{notifier: n}
}

// SuccessMessage is the acknowledgement message of a delivered submission.
const SuccessMessage = "Thanks for reaching out! We'll get back to you within 24 hours."

// Dispatch notifies and acknowledges.
func (d *NotifierDispatcher) Dispatch(ctx context.Context, sub types.ContactSubmission) (*types.ContactAck, error) {
	if err := d.notifier.Notify(ctx, sub); err != nil {
		return nil, fmt.Errorf("notify: %w", err)
	}
	return &types.ContactAck{Success: true, Message: SuccessMessage}, nil
}
