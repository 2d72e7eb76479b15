package doc2pdf

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/smtp"
	"net/textproto"
	"os"
	"path/filepath"
	"time"
)

// Notifier hands a successful conversion's artifact to an external
// collaborator. Notification is best-effort: a failure here is logged as a
// warning by the reporter and never changes the outcome's status.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, outcome *Outcome) error
}

// EmailOptions configures SMTP distribution of converted documents.
type EmailOptions struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// sendMailFunc abstracts smtp.SendMail for testing.
type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailNotifier sends the output artifact as an email attachment.
type EmailNotifier struct {
	opts EmailOptions
	send sendMailFunc
}

// NewEmailNotifier creates an EmailNotifier using net/smtp.
func NewEmailNotifier(opts EmailOptions) *EmailNotifier {
	return &EmailNotifier{opts: opts, send: smtp.SendMail}
}

// NewEmailNotifierWith creates an EmailNotifier with a custom sender (for tests).
func NewEmailNotifierWith(opts EmailOptions, send sendMailFunc) *EmailNotifier {
	return &EmailNotifier{opts: opts, send: send}
}

func (n *EmailNotifier) Name() string { return "email" }

// Notify attaches the PDF and sends it to the configured recipient.
func (n *EmailNotifier) Notify(ctx context.Context, outcome *Outcome) error {
	if n.opts.Host == "" || n.opts.To == "" {
		return fmt.Errorf("email notifier: host or recipient not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	from := n.opts.From
	if from == "" {
		from = n.opts.Username
	}

	subject := fmt.Sprintf("PDF Document: %s", outcome.Document.Name())
	msg, err := buildEmailMessage(from, n.opts.To, subject, outcome)
	if err != nil {
		return fmt.Errorf("email notifier: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", n.opts.Host, n.opts.Port)
	auth := smtp.PlainAuth("", n.opts.Username, n.opts.Password, n.opts.Host)
	if err := n.send(addr, auth, from, []string{n.opts.To}, msg); err != nil {
		return fmt.Errorf("email notifier: %w", err)
	}
	return nil
}

// buildEmailMessage assembles a multipart MIME message with the PDF attached.
func buildEmailMessage(from, to, subject string, outcome *Outcome) ([]byte, error) {
	pdf, err := os.ReadFile(outcome.OutputPath) // #nosec G304 -- path produced by this run
	if err != nil {
		return nil, fmt.Errorf("reading artifact: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", writer.Boundary())

	// Plain-text body part.
	body, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=utf-8"},
	})
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(body, "Please find the attached PDF document generated from %s\r\n",
		outcome.Document.Name())

	// Base64 PDF attachment part.
	filename := filepath.Base(outcome.OutputPath)
	attachment, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"application/pdf"},
		"Content-Transfer-Encoding": {"base64"},
		"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", filename)},
	})
	if err != nil {
		return nil, err
	}
	encoder := base64.NewEncoder(base64.StdEncoding, attachment)
	if _, err := encoder.Write(pdf); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WebhookOptions configures the downstream automation trigger.
type WebhookOptions struct {
	URL    string
	APIKey string
}

// WebhookNotifier fires a POST to a downstream automation endpoint with the
// artifact reference and document identity.
type WebhookNotifier struct {
	opts   WebhookOptions
	client *http.Client
}

// NewWebhookNotifier creates a WebhookNotifier with a default HTTP client.
func NewWebhookNotifier(opts WebhookOptions) *WebhookNotifier {
	return NewWebhookNotifierWith(opts, &http.Client{Timeout: 30 * time.Second})
}

// NewWebhookNotifierWith creates a WebhookNotifier with a custom client (for tests).
func NewWebhookNotifierWith(opts WebhookOptions, client *http.Client) *WebhookNotifier {
	return &WebhookNotifier{opts: opts, client: client}
}

func (n *WebhookNotifier) Name() string { return "webhook" }

// webhookPayload is the JSON body posted to the automation endpoint.
type webhookPayload struct {
	Document  string `json:"document"`
	PDFFile   string `json:"pdf_file"`
	Format    string `json:"format"`
	Engine    string `json:"engine"`
	Timestamp string `json:"timestamp"`
}

// Notify posts the conversion metadata to the configured webhook.
func (n *WebhookNotifier) Notify(ctx context.Context, outcome *Outcome) error {
	if n.opts.URL == "" {
		return fmt.Errorf("webhook notifier: url not configured")
	}

	payload := webhookPayload{
		Document:  outcome.Document.Path,
		PDFFile:   outcome.OutputPath,
		Format:    string(outcome.Document.Format),
		Engine:    outcome.LastAttempt().Engine,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("webhook notifier: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.opts.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook notifier: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.opts.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+n.opts.APIKey)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook notifier: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook notifier: HTTP %d", resp.StatusCode)
	}
	return nil
}
