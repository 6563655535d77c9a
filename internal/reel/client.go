// Package reel drives one script-to-video generation against the relay:
// quota gate, submission, polling, resolution and download.
package reel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"scriptreel/internal/domain"
	"scriptreel/internal/middleware"
)

// RequestError is a non-2xx answer from the relay.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string { return e.Message }

// Download is the relay's answer to a download request. The caller must
// close Body.
type Download struct {
	ContentType   string
	ContentLength int64
	Body          io.ReadCloser
}

// Client talks to the relay endpoints.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			ResponseHeaderTimeout: 5 * time.Minute,
		}}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// GenerateVideo submits req and returns the initial operation.
func (c *Client) GenerateVideo(ctx context.Context, req domain.GenerationRequest) (domain.Operation, error) {
	resp, err := c.post(ctx, "/generate-video", req)
	if err != nil {
		return domain.Operation{}, err
	}
	defer resp.Body.Close()
	if !ok(resp) {
		return domain.Operation{}, c.failure(resp, "Failed to start video generation: "+resp.Status)
	}
	return decodeOperation(resp.Body)
}

// GetVideoStatus sends the full current handle and returns the refreshed one.
func (c *Client) GetVideoStatus(ctx context.Context, op domain.Operation) (domain.Operation, error) {
	resp, err := c.post(ctx, "/get-video-status", map[string]any{"operation": op})
	if err != nil {
		return domain.Operation{}, err
	}
	defer resp.Body.Close()
	if !ok(resp) {
		return domain.Operation{}, c.failure(resp, fmt.Sprintf("Polling failed with status: %d", resp.StatusCode))
	}
	return decodeOperation(resp.Body)
}

// DownloadVideo asks the relay for the bytes behind link.
func (c *Client) DownloadVideo(ctx context.Context, link string) (*Download, error) {
	resp, err := c.post(ctx, "/download-video", map[string]string{"downloadLink": link})
	if err != nil {
		return nil, err
	}
	if !ok(resp) {
		defer resp.Body.Close()
		rerr := c.failure(resp, resp.Status)
		rerr.Message = "Failed to download video via proxy: " + rerr.Message
		return nil, rerr
	}
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "video/mp4"
	}
	return &Download{ContentType: ct, ContentLength: resp.ContentLength, Body: resp.Body}, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("reel: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("reel: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if rid := middleware.RequestIDFromContext(ctx); rid != "" {
		req.Header.Set(middleware.RequestIDHeader, rid)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reel: %s: %w", path, err)
	}
	return resp, nil
}

// failure prefers the relay's {error} message over fallback.
func (c *Client) failure(resp *http.Response, fallback string) *RequestError {
	var body struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	msg := fallback
	if err := json.Unmarshal(data, &body); err == nil && strings.TrimSpace(body.Error) != "" {
		msg = body.Error
	}
	return &RequestError{Status: resp.StatusCode, Message: msg}
}

func ok(resp *http.Response) bool {
	return resp.StatusCode >= 200 && resp.StatusCode <= 299
}

func decodeOperation(r io.Reader) (domain.Operation, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.Operation{}, fmt.Errorf("reel: read operation: %w", err)
	}
	op, err := domain.ParseOperation(data)
	if err != nil {
		return domain.Operation{}, fmt.Errorf("reel: decode operation: %w", err)
	}
	return op, nil
}
