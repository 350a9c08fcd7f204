package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Lydell2627/portfolio-sub000/internal/types"
)

// Notifier tells a human about a submission.
type Notifier interface {
	Notify(ctx context.Context, sub types.ContactSubmission) error
}

// WebhookNotifier posts submissions to a chat or automation webhook. The
// payload carries a plain-text summary under "text", which chat webhooks
// display, and the full submission under "submission".
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier creates a notifier for url. Zero timeout means 10 seconds.
func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookNotifier{url: url, client: &http.Client{Timeout: timeout}}
}

type webhookPayload struct {
	Text       string                  `json:"text"`
	Submission types.ContactSubmission `json:"submission"`
}

// Notify posts sub. Any non-2xx response is an error.
func (n *WebhookNotifier) Notify(ctx context.Context, sub types.ContactSubmission) error {
	body, err := json.Marshal(webhookPayload{Text: Summary(sub), Submission: sub})
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxAckBytes))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// Summary renders a submission as a short plain-text message.
func Summary(sub types.ContactSubmission) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New enquiry from %s <%s>", sub.Name, sub.Email)
	if sub.Company != "" {
		fmt.Fprintf(&b, " at %s", sub.Company)
	}
	fmt.Fprintf(&b, "\nPackage: %s (%s)", sub.SelectedBudgetTier, sub.SelectedBudgetRange)
	fmt.Fprintf(&b, "\n\n%s", sub.ProjectDetails)
	if sub.PageURL != "" {
		fmt.Fprintf(&b, "\n\nSent from %s", sub.PageURL)
	}
	return b.String()
}

// LogNotifier writes submissions to the log. It is the notifier of last
// resort when no webhook is configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a notifier logging to l.
func NewLogNotifier(l *slog.Logger) *LogNotifier {
	if l == nil {
		l = slog.Default()
	}
	return &LogNotifier{logger: l}
}

// Notify logs sub at info level.
func (n *LogNotifier) Notify(_ context.Context, sub types.ContactSubmission) error {
	n.logger.Info("contact submission received",
		"name", sub.Name,
		"email", sub.Email,
		"company", sub.Company,
		"tier", sub.SelectedBudgetTier,
		"range", sub.SelectedBudgetRange,
		"details", sub.ProjectDetails,
		"page_url", sub.PageURL,
		"timestamp", sub.Timestamp.Format(time.RFC3339),
	)
	return nil
}
