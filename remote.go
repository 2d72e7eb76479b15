package doc2pdf

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// RemoteOptions configures the remote-service engine.
type RemoteOptions struct {
	Endpoint  string // compile API base URL
	APIKey    string
	ProjectID string
	Timeout   time.Duration
	Formats   []Format

	// PollInterval between status checks while a compile is pending.
	PollInterval time.Duration
}

const defaultPollInterval = 2 * time.Second

// maxResponseSize caps remote response bodies (32MB covers large PDFs).
const maxResponseSize = 32 << 20

// RemoteEngine submits the document body to a remote conversion endpoint,
// awaits completion, and downloads the resulting artifact. Authentication
// failure, quota rejection, and timeout are distinct failure reasons because
// the reporter logs them differently.
type RemoteEngine struct {
	opts   RemoteOptions
	client *http.Client
}

// NewRemoteEngine creates a RemoteEngine with a default HTTP client.
func NewRemoteEngine(opts RemoteOptions) *RemoteEngine {
	return NewRemoteEngineWith(opts, &http.Client{})
}

// NewRemoteEngineWith creates a RemoteEngine with a custom client (for tests).
func NewRemoteEngineWith(opts RemoteOptions, client *http.Client) *RemoteEngine {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultEngineTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if len(opts.Formats) == 0 {
		opts.Formats = []Format{FormatLaTeX}
	}
	return &RemoteEngine{opts: opts, client: client}
}

// EngineRemote is the registered name of the remote-service engine.
const EngineRemote = "remote-service"

func (e *RemoteEngine) Name() string { return EngineRemote }

func (e *RemoteEngine) Accepts(format Format) bool {
	return acceptsFormat(e.opts.Formats, format)
}

// compileRequest is the JSON body submitted to the compile endpoint.
type compileRequest struct {
	Content string `json:"content"`
	Format  string `json:"format"`
	Name    string `json:"name"`
}

// compileResponse is the JSON body returned by the compile endpoint.
type compileResponse struct {
	Status  string `json:"status"`   // "success" or "pending"
	PDFURL  string `json:"pdf_url"`  // set when status == success
	PollURL string `json:"poll_url"` // set when status == pending
	Message string `json:"message"`
}

// Convert submits the document, polls until the compile finishes, and
// downloads the PDF to outputPath.
func (e *RemoteEngine) Convert(ctx context.Context, doc *Document, outputPath string) (ConversionAttempt, error) {
	if e.opts.Endpoint == "" {
		return ConversionAttempt{}, fatalConfig(EngineRemote, "endpoint is empty")
	}
	if e.opts.APIKey == "" {
		return ConversionAttempt{}, fatalConfig(EngineRemote, "api key is empty")
	}

	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()

	content, err := os.ReadFile(doc.Path) // #nosec G304 -- validated document path
	if err != nil {
		return failedAttempt(EngineRemote, start, ReasonProcessFailure,
			fmt.Sprintf("reading document: %v", err)), nil
	}

	resp, attempt, done := e.submit(ctx, doc, content, start)
	if done {
		return attempt, nil
	}

	pdfURL, attempt, done := e.awaitCompletion(ctx, resp, start)
	if done {
		return attempt, nil
	}

	if attempt, done := e.download(ctx, pdfURL, outputPath, start); done {
		return attempt, nil
	}

	if !artifactExists(outputPath) {
		return failedAttempt(EngineRemote, start, ReasonArtifactMissing,
			fmt.Sprintf("compile succeeded but %s is missing or empty", outputPath)), nil
	}

	return successAttempt(EngineRemote, start, outputPath), nil
}

// submit POSTs the document to the compile endpoint.
// Returns (response, _, false) on success or (_, failed attempt, true).
func (e *RemoteEngine) submit(ctx context.Context, doc *Document, content []byte, start time.Time) (*compileResponse, ConversionAttempt, bool) {
	body, err := json.Marshal(compileRequest{
		Content: string(content),
		Format:  string(doc.Format),
		Name:    doc.Name(),
	})
	if err != nil {
		return nil, failedAttempt(EngineRemote, start, ReasonProcessFailure,
			fmt.Sprintf("encoding request: %v", err)), true
	}

	url := strings.TrimSuffix(e.opts.Endpoint, "/") + "/projects/" + e.opts.ProjectID + "/compile"
	resp, attempt, done := e.doJSON(ctx, http.MethodPost, url, body, start)
	if done {
		return nil, attempt, true
	}
	return resp, ConversionAttempt{}, false
}

// awaitCompletion polls the compile status until it succeeds or the context
// deadline expires. A pending response may omit poll_url; the last known poll
// URL stays in effect. Returns (pdfURL, _, false) or (_, failed attempt, true).
func (e *RemoteEngine) awaitCompletion(ctx context.Context, resp *compileResponse, start time.Time) (string, ConversionAttempt, bool) {
	var pollURL string

	for {
		switch resp.Status {
		case "success":
			if resp.PDFURL == "" {
				return "", failedAttempt(EngineRemote, start, ReasonArtifactMissing,
					"compile succeeded but no pdf_url returned"), true
			}
			return resp.PDFURL, ConversionAttempt{}, false
		case "pending":
			if resp.PollURL != "" {
				pollURL = resp.PollURL
			}
			if pollURL == "" {
				return "", failedAttempt(EngineRemote, start, ReasonProcessFailure,
					"compile pending but no poll_url returned"), true
			}
		default:
			return "", failedAttempt(EngineRemote, start, ReasonProcessFailure,
				fmt.Sprintf("compile failed: %s", resp.Message)), true
		}

		select {
		case <-ctx.Done():
			return "", e.timeoutAttempt(ctx, start), true
		case <-time.After(e.opts.PollInterval):
		}

		var attempt ConversionAttempt
		var done bool
		resp, attempt, done = e.doJSON(ctx, http.MethodGet, pollURL, nil, start)
		if done {
			return "", attempt, true
		}
	}
}

// doJSON performs one JSON round-trip to the compile API, translating HTTP
// status codes to failure reasons.
func (e *RemoteEngine) doJSON(ctx context.Context, method, url string, body []byte, start time.Time) (*compileResponse, ConversionAttempt, bool) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, failedAttempt(EngineRemote, start, ReasonProcessFailure,
			fmt.Sprintf("building request: %v", err)), true
	}
	req.Header.Set("Authorization", "Bearer "+e.opts.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpResp, err := e.client.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, e.timeoutAttempt(ctx, start), true
		}
		return nil, failedAttempt(EngineRemote, start, ReasonProcessFailure,
			fmt.Sprintf("calling %s: %v", url, err)), true
	}
	defer func() { _ = httpResp.Body.Close() }()

	if attempt, done := e.checkStatus(httpResp, start); done {
		return nil, attempt, true
	}

	var resp compileResponse
	if err := json.NewDecoder(io.LimitReader(httpResp.Body, maxResponseSize)).Decode(&resp); err != nil {
		return nil, failedAttempt(EngineRemote, start, ReasonProcessFailure,
			fmt.Sprintf("decoding response: %v", err)), true
	}
	return &resp, ConversionAttempt{}, false
}

// checkStatus maps non-2xx responses to distinct failure reasons.
func (e *RemoteEngine) checkStatus(resp *http.Response, start time.Time) (ConversionAttempt, bool) {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return ConversionAttempt{}, false
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return failedAttempt(EngineRemote, start, ReasonAuthFailure,
			fmt.Sprintf("authentication rejected (HTTP %d)", resp.StatusCode)), true
	case resp.StatusCode == http.StatusTooManyRequests:
		return failedAttempt(EngineRemote, start, ReasonRateLimited,
			"quota or rate limit exceeded (HTTP 429)"), true
	default:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return failedAttempt(EngineRemote, start, ReasonProcessFailure,
			fmt.Sprintf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))), true
	}
}

// download fetches the compiled PDF and writes it to outputPath.
// Returns (failed attempt, true) on failure.
func (e *RemoteEngine) download(ctx context.Context, pdfURL, outputPath string, start time.Time) (ConversionAttempt, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfURL, nil)
	if err != nil {
		return failedAttempt(EngineRemote, start, ReasonProcessFailure,
			fmt.Sprintf("building download request: %v", err)), true
	}
	req.Header.Set("Authorization", "Bearer "+e.opts.APIKey)

	resp, err := e.client.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return e.timeoutAttempt(ctx, start), true
		}
		return failedAttempt(EngineRemote, start, ReasonProcessFailure,
			fmt.Sprintf("downloading artifact: %v", err)), true
	}
	defer func() { _ = resp.Body.Close() }()

	if attempt, done := e.checkStatus(resp, start); done {
		return attempt, true
	}

	pdf, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return failedAttempt(EngineRemote, start, ReasonProcessFailure,
			fmt.Sprintf("reading artifact stream: %v", err)), true
	}

	// #nosec G306 -- PDFs are meant to be readable
	if err := os.WriteFile(outputPath, pdf, 0o644); err != nil {
		return failedAttempt(EngineRemote, start, ReasonProcessFailure,
			fmt.Sprintf("writing artifact: %v", err)), true
	}
	return ConversionAttempt{}, false
}

// timeoutAttempt builds the failure attempt for an expired deadline.
func (e *RemoteEngine) timeoutAttempt(ctx context.Context, start time.Time) ConversionAttempt {
	detail := fmt.Sprintf("remote conversion exceeded %s", e.opts.Timeout)
	if ctx.Err() != nil && !errors.Is(ctx.Err(), context.DeadlineExceeded) {
		detail = ctx.Err().Error()
	}
	return failedAttempt(EngineRemote, start, ReasonTimeout, detail)
}

// isTimeout reports whether err stems from the per-call deadline.
func isTimeout(ctx context.Context, err error) bool {
	return errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		errors.Is(err, context.DeadlineExceeded)
}
