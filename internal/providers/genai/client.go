package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"scriptreel/internal/domain"
	"scriptreel/internal/infra"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client talks to the Generative Language API's long-running video endpoints.
// It never interprets an operation beyond its name: whatever the API returns
// is handed back to the caller untouched.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

// VideoRequest is one predictLongRunning call.
type VideoRequest struct {
	Model       string
	Prompt      string
	AspectRatio string
	Image       *domain.ReferenceImage
	RequestID   string
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gemini status %d", e.Status)
	}
	return fmt.Sprintf("gemini status %d: %s", e.Status, e.Message)
}

type predictInstance struct {
	Prompt string        `json:"prompt"`
	Image  *predictImage `json:"image,omitempty"`
}

type predictImage struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MimeType           string `json:"mimeType"`
}

type predictParameters struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
	SampleCount int    `json:"sampleCount"`
}

type predictLongRunningRequest struct {
	Instances  []predictInstance `json:"instances"`
	Parameters predictParameters `json:"parameters"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// NewClient constructs a client. A missing API key is not an error here: the
// relay reports it per request as a configuration error.
func NewClient(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}

	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		httpClient: client,
		logger:     logger,
	}
}

// Configured reports whether a credential is available.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

// GenerateVideos starts a generation and returns the provider's initial operation.
func (c *Client) GenerateVideos(ctx context.Context, req VideoRequest) (domain.Operation, error) {
	if !c.Configured() {
		return domain.Operation{}, domain.ErrMissingAPIKey
	}
	instance := predictInstance{Prompt: req.Prompt}
	if req.Image != nil {
		instance.Image = &predictImage{BytesBase64Encoded: req.Image.Data, MimeType: req.Image.MimeType}
	}
	payload := predictLongRunningRequest{
		Instances:  []predictInstance{instance},
		Parameters: predictParameters{AspectRatio: req.AspectRatio, SampleCount: 1},
	}

	path := fmt.Sprintf("/models/%s:predictLongRunning", url.PathEscape(req.Model))
	raw, err := c.invoke(ctx, http.MethodPost, path, payload)
	if err != nil {
		return domain.Operation{}, err
	}
	op, err := domain.ParseOperation(raw)
	if err != nil {
		return domain.Operation{}, fmt.Errorf("decode operation: %w", err)
	}

	c.logger.Debug().
		Str("request_id", req.RequestID).
		Str("model", req.Model).
		Str("operation", op.Name()).
		Msg("genai: video generation submitted")

	return op, nil
}

// GetVideosOperation fetches the latest state of op.
func (c *Client) GetVideosOperation(ctx context.Context, op domain.Operation) (domain.Operation, error) {
	if !c.Configured() {
		return domain.Operation{}, domain.ErrMissingAPIKey
	}
	name := strings.Trim(op.Name(), "/")
	if name == "" {
		return domain.Operation{}, errors.New("operation has no name")
	}
	raw, err := c.invoke(ctx, http.MethodGet, "/"+name, nil)
	if err != nil {
		return domain.Operation{}, err
	}
	updated, err := domain.ParseOperation(raw)
	if err != nil {
		return domain.Operation{}, fmt.Errorf("decode operation: %w", err)
	}

	c.logger.Debug().
		Str("operation", name).
		Bool("done", updated.Done()).
		Msg("genai: operation status")

	return updated, nil
}

// AuthorizeDownload returns link with the API key appended as the "key" query
// parameter, which is how signed file links are fetched in API-key mode. The
// existing query is kept byte for byte; only the key is added.
func (c *Client) AuthorizeDownload(link string) (*url.URL, error) {
	if !c.Configured() {
		return nil, domain.ErrMissingAPIKey
	}
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return nil, fmt.Errorf("parse download link: %w", err)
	}
	if u.RawQuery != "" {
		u.RawQuery += "&"
	}
	u.RawQuery += "key=" + url.QueryEscape(c.apiKey)
	return u, nil
}

func (c *Client) invoke(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("invoke gemini: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read gemini response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr geminiErrorResponse
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Message != "" {
			return nil, &APIError{Status: resp.StatusCode, Message: apiErr.Error.Message}
		}
		return nil, &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}
	return data, nil
}
