// Package relay fetches provider-signed video links server-side and hands the
// bytes back to the caller, so the credential and the provider origin never
// reach the browser.
package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"scriptreel/internal/domain"
	"scriptreel/internal/infra"
)

// DefaultContentType is used when the upstream does not declare one.
const DefaultContentType = "video/mp4"

const maxErrorBody = 2048

// Authorizer attaches the provider credential to a download link.
type Authorizer interface {
	AuthorizeDownload(link string) (*url.URL, error)
}

// Options configures a Relay.
type Options struct {
	HTTPClient   *http.Client
	Authorizer   Authorizer
	AllowedHosts []string
	Logger       *infra.Logger
}

// Relay performs the server-side download.
type Relay struct {
	client     *http.Client
	authorizer Authorizer
	allowed    map[string]struct{}
	logger     *infra.Logger
}

// StatusError is a non-2xx answer from the download origin.
type StatusError struct {
	Status     int
	StatusText string
	Body       string
}

func (e *StatusError) Error() string {
	return "Failed to download video from source: " + e.StatusText
}

func (e *StatusError) HTTPStatus() int { return e.Status }

// Download is an upstream response ready to be relayed. Exactly one of Body
// and Data is used: Body is streamed, Data is written as one block.
type Download struct {
	ContentType   string
	ContentLength int64
	Body          io.ReadCloser
	Data          []byte
}

// Streamed reports whether the download will be copied as a stream.
func (d *Download) Streamed() bool {
	return d.Body != nil
}

// Close releases the upstream body.
func (d *Download) Close() error {
	if d.Body == nil {
		return nil
	}
	return d.Body.Close()
}

// WriteTo writes headers and payload to w and returns the bytes written.
func (d *Download) WriteTo(w http.ResponseWriter) (int64, error) {
	w.Header().Set("Content-Type", d.ContentType)
	if !d.Streamed() {
		w.Header().Set("Content-Length", strconv.Itoa(len(d.Data)))
		w.WriteHeader(http.StatusOK)
		n, err := w.Write(d.Data)
		return int64(n), err
	}
	if d.ContentLength >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(d.ContentLength, 10))
	}
	w.WriteHeader(http.StatusOK)
	return io.Copy(w, d.Body)
}

func New(opts Options) *Relay {
	client := opts.HTTPClient
	if client == nil {
		// No overall timeout: a video download may legitimately take minutes.
		client = &http.Client{Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			ResponseHeaderTimeout: 60 * time.Second,
			IdleConnTimeout:       90 * time.Second,
		}}
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	allowed := make(map[string]struct{}, len(opts.AllowedHosts))
	for _, host := range opts.AllowedHosts {
		if host = strings.ToLower(strings.TrimSpace(host)); host != "" {
			allowed[host] = struct{}{}
		}
	}
	return &Relay{client: client, authorizer: opts.Authorizer, allowed: allowed, logger: logger}
}

// Fetch requests link from the origin. The caller must Close the result.
func (r *Relay) Fetch(ctx context.Context, link string) (*Download, error) {
	if err := r.checkLink(link); err != nil {
		return nil, err
	}
	if r.authorizer == nil {
		return nil, domain.ErrMissingAPIKey
	}
	target, err := r.authorizer.AuthorizeDownload(link)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, &domain.UpstreamError{Op: "create download request", Err: err}
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Op: "download video", Err: redact(err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		r.logger.Error().
			Int("status", resp.StatusCode).
			Str("body", strings.TrimSpace(string(text))).
			Msg("relay: failed to fetch video from provider")
		return nil, &StatusError{
			Status:     resp.StatusCode,
			StatusText: statusText(resp),
			Body:       strings.TrimSpace(string(text)),
		}
	}

	dl := &Download{
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
	}
	if dl.ContentType == "" {
		dl.ContentType = DefaultContentType
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		dl.Data = []byte{}
		return dl, nil
	}
	dl.Body = resp.Body
	return dl, nil
}

func (r *Relay) checkLink(link string) error {
	link = strings.TrimSpace(link)
	if link == "" {
		return &domain.ValidationError{Message: "Missing downloadLink in request body"}
	}
	u, err := url.Parse(link)
	if err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
		return &domain.ValidationError{Message: "downloadLink must be an absolute http(s) URL"}
	}
	if _, ok := r.allowed[strings.ToLower(u.Hostname())]; !ok {
		return &domain.ValidationError{Message: "downloadLink host is not a known provider host"}
	}
	return nil
}

func statusText(resp *http.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return resp.Status
}

// redact drops the request URL from transport errors; it carries the key.
func redact(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s: %w", uerr.Op, uerr.Err)
	}
	return err
}
