package doc2pdf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Refiner rewrites a document's prose before conversion. Refinement happens
// ahead of the orchestrator: the returned Document replaces the original as
// the conversion input, and a refinement failure keeps the document from
// reaching any engine.
type Refiner interface {
	Name() string
	Refine(ctx context.Context, doc *Document) (*Document, error)
}

// RefineOptions configures the chat-completion writing refiner.
type RefineOptions struct {
	Endpoint    string // chat API base URL (default https://api.openai.com/v1)
	APIKey      string
	Model       string // default gpt-4o-mini
	Style       string // journal style, default "formal"
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Journal style names accepted by the refiner. An unknown style falls back
// to formal.
const (
	StyleFormal   = "formal"
	StyleIEEE     = "ieee"
	StyleACM      = "acm"
	StyleSpringer = "springer"
	StyleElsevier = "elsevier"
	StyleNature   = "nature"
)

// stylePrompts maps journal styles to refinement instructions.
var stylePrompts = map[string]string{
	StyleFormal: "Refine this text into formal, academic-journal style language: " +
		"precise scholarly vocabulary, objective third-person perspective, " +
		"improved sentence flow without changing meaning.",
	StyleIEEE: "Refine this text for IEEE journal/conference style: technical " +
		"precision, passive voice where conventional, formal engineering prose.",
	StyleACM: "Refine this text for ACM journal/conference style: clear problem " +
		"statements, rigorous terminology, formal computer science prose.",
	StyleSpringer: "Refine this text for Springer journal style: structured " +
		"scientific argumentation and formal scientific prose.",
	StyleElsevier: "Refine this text for Elsevier journal style: concise " +
		"objective statements and formal scientific prose.",
	StyleNature: "Refine this text for Nature journal style: accessible yet " +
		"rigorous language suited to a broad scientific audience.",
}

// WritingRefiner refines a document's prose through a chat-completion API
// before conversion. The refined content is written next to the input as
// refined_<name>_<style><ext> so the original file is never modified.
type WritingRefiner struct {
	opts   RefineOptions
	client *http.Client
}

// NewWritingRefiner creates a WritingRefiner with a default HTTP client.
func NewWritingRefiner(opts RefineOptions) *WritingRefiner {
	return NewWritingRefinerWith(opts, &http.Client{})
}

// NewWritingRefinerWith creates a WritingRefiner with a custom client (for tests).
func NewWritingRefinerWith(opts RefineOptions, client *http.Client) *WritingRefiner {
	if opts.Endpoint == "" {
		opts.Endpoint = "https://api.openai.com/v1"
	}
	if opts.Model == "" {
		opts.Model = "gpt-4o-mini"
	}
	if _, known := stylePrompts[opts.Style]; !known {
		opts.Style = StyleFormal
	}
	if opts.Temperature <= 0 {
		opts.Temperature = 0.3
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 4000
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultEngineTimeout
	}
	return &WritingRefiner{opts: opts, client: client}
}

func (r *WritingRefiner) Name() string { return "writing-refiner" }

// chatMessage is one turn of the chat-completion request.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the JSON body posted to the chat-completion endpoint.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

// chatResponse is the JSON body returned by the chat-completion endpoint.
type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Refine rewrites the document's content in the configured journal style and
// returns a validated Document pointing at the refined copy. All failures
// wrap ErrRefineFailed.
func (r *WritingRefiner) Refine(ctx context.Context, doc *Document) (*Document, error) {
	if r.opts.APIKey == "" {
		return nil, fmt.Errorf("%w: api key is empty", ErrRefineFailed)
	}

	content, err := os.ReadFile(doc.Path) // #nosec G304 -- validated document path
	if err != nil {
		return nil, fmt.Errorf("%w: reading document: %v", ErrRefineFailed, err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	refined, err := r.complete(ctx, doc.Format, string(content))
	if err != nil {
		return nil, err
	}

	refinedPath := r.refinedPath(doc)
	if err := os.WriteFile(refinedPath, []byte(refined), 0o600); err != nil {
		return nil, fmt.Errorf("%w: writing refined copy: %v", ErrRefineFailed, err)
	}

	refinedDoc, err := Validate(refinedPath)
	if err != nil {
		return nil, fmt.Errorf("%w: refined copy: %v", ErrRefineFailed, err)
	}
	return refinedDoc, nil
}

// complete performs one chat-completion round-trip.
func (r *WritingRefiner) complete(ctx context.Context, format Format, content string) (string, error) {
	prompt := fmt.Sprintf(
		"%s\n\nPlease refine the following %s content while maintaining the original structure and formatting:\n\n%s\n\nReturn the refined content in the same format (%s).",
		stylePrompts[r.opts.Style], format, content, format)

	body, err := json.Marshal(chatRequest{
		Model: r.opts.Model,
		Messages: []chatMessage{
			{
				Role: "system",
				Content: fmt.Sprintf(
					"You are an expert academic writing assistant specializing in %s journal formatting and formal academic writing standards.",
					r.opts.Style),
			},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   r.opts.MaxTokens,
		Temperature: r.opts.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: encoding request: %v", ErrRefineFailed, err)
	}

	url := strings.TrimSuffix(r.opts.Endpoint, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: building request: %v", ErrRefineFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+r.opts.APIKey)
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: calling %s: %v", ErrRefineFailed, url, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(httpResp.Body, 1024))
		return "", fmt.Errorf("%w: HTTP %d: %s",
			ErrRefineFailed, httpResp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var resp chatResponse
	if err := json.NewDecoder(io.LimitReader(httpResp.Body, maxResponseSize)).Decode(&resp); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", ErrRefineFailed, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: response carried no refined content", ErrRefineFailed)
	}
	return resp.Choices[0].Message.Content, nil
}

// refinedPath names the refined copy next to the original input.
func (r *WritingRefiner) refinedPath(doc *Document) string {
	ext := filepath.Ext(doc.Path)
	name := fmt.Sprintf("refined_%s_%s%s", doc.Name(), r.opts.Style, ext)
	return filepath.Join(filepath.Dir(doc.Path), name)
}
