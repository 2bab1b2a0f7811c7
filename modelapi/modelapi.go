// Package modelapi implements the remote model-invocation transport:
// it sends an ordered list of role-tagged conversation turns to a
// cloud-hosted model service and returns the model's reply turn.
//
// The wire format is the Anthropic-style messages API. Provider-reported
// faults are returned as *APIError so callers can classify them; anything
// else (DNS failure, refused connection, bad base URL) surfaces as the
// underlying transport error.
package modelapi

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is the service endpoint used when the profile does not
// override it.
const DefaultBaseURL = "https://api.anthropic.com"

const apiVersion = "2023-06-01"

// Role tags a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single role-tagged conversation turn.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"content"`
}

// Params are the per-request inference parameters.
type Params struct {
	// MaxTokens caps the reply size. Required by the service.
	MaxTokens int
	// Temperature controls randomness.
	Temperature float64
	// TopP is the nucleus-sampling threshold (0 = service default).
	TopP float64
}

// APIError is a fault reported by the model service itself, as opposed
// to a local transport failure.
type APIError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int
	// Code is the provider's error type (e.g. "rate_limit_error").
	Code string
	// Message is the provider's human-readable description.
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("service error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("service error %d: %s", e.StatusCode, e.Message)
}

// Options configures a Client.
type Options struct {
	// APIKey authenticates requests.
	APIKey string
	// BaseURL overrides DefaultBaseURL (empty = default).
	BaseURL string
	// Proxy is an optional HTTP/HTTPS proxy URL. When empty, the
	// standard proxy environment variables apply.
	Proxy string
	// Timeout is the per-request timeout (0 = 120s).
	Timeout time.Duration
	// Verbose enables debug logging of requests.
	Verbose bool
}

// Client invokes models over HTTP. It is ready to use after New and
// safe for sequential reuse across many requests; Close releases its
// idle connections.
type Client struct {
	http    *resty.Client
	verbose bool
}

// New creates a transport client for the given options.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}

	c := resty.New().
		SetBaseURL(base).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("anthropic-version", apiVersion)
	if opts.APIKey != "" {
		c.SetHeader("x-api-key", opts.APIKey)
	}
	if opts.Proxy != "" {
		c.SetProxy(opts.Proxy)
	}

	return &Client{http: c, verbose: opts.Verbose}
}

// invokeRequest is the messages-API request body.
type invokeRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	TopP        float64   `json:"top_p,omitempty"`
	Messages    []Message `json:"messages"`
}

// invokeResponse is the messages-API success body.
type invokeResponse struct {
	Role    string `json:"role"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// errorEnvelope is the messages-API error body.
type errorEnvelope struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Invoke sends the ordered turns to the named model and returns the
// reply turn. The reply text is the first text content block of the
// response; an empty reply is returned as an empty message, not an
// error.
func (c *Client) Invoke(ctx context.Context, model string, msgs []Message, p Params) (Message, error) {
	body := invokeRequest{
		Model:       model,
		MaxTokens:   p.MaxTokens,
		Temperature: p.Temperature,
		TopP:        p.TopP,
		Messages:    msgs,
	}

	if c.verbose {
		log.Printf("[DEBUG] invoke model=%s turns=%d max_tokens=%d", model, len(msgs), p.MaxTokens)
	}

	var out invokeResponse
	var apiErr errorEnvelope
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		SetError(&apiErr).
		Post("/v1/messages")
	if err != nil {
		return Message{}, fmt.Errorf("model invocation request failed: %w", err)
	}

	if resp.IsError() {
		msg := apiErr.Error.Message
		if msg == "" {
			msg = truncate(resp.String(), 500)
		}
		return Message{}, &APIError{
			StatusCode: resp.StatusCode(),
			Code:       apiErr.Error.Type,
			Message:    msg,
		}
	}

	reply := Message{Role: RoleAssistant}
	for _, block := range out.Content {
		if block.Type == "text" {
			reply.Text = block.Text
			break
		}
	}
	return reply, nil
}

// Close releases the client's idle connections. The client must not be
// used afterwards.
func (c *Client) Close() error {
	c.http.GetClient().CloseIdleConnections()
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
