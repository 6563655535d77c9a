package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"scriptreel/internal/adapter/repo"
	"scriptreel/internal/domain"
	"scriptreel/internal/infra"
	"scriptreel/internal/middleware"
	"scriptreel/internal/providers/video"
	"scriptreel/internal/relay"
)

// maxBodyBytes bounds request bodies. Reference images arrive base64 encoded
// inline, so this is generous.
const maxBodyBytes = 25 << 20

// Downloader fetches a finished video from the provider.
type Downloader interface {
	Fetch(ctx context.Context, link string) (*relay.Download, error)
}

// Ledger records what the relay did. Failures are logged and never reach the
// caller.
type Ledger interface {
	RecordSubmission(ctx context.Context, s repo.Submission) error
	RecordStatus(ctx context.Context, op domain.Operation) (int, error)
	RecordDownload(ctx context.Context, d repo.Download) error
}

type Deps struct {
	Videos           video.Generator
	Downloads        Downloader
	Ledger           Ledger
	Logger           *infra.Logger
	APIKeyConfigured bool
}

type App struct {
	videos     video.Generator
	downloads  Downloader
	ledger     Ledger
	logger     *infra.Logger
	configured bool
}

func NewApp(d Deps) *App {
	if d.Ledger == nil {
		d.Ledger = repo.NopRepo{}
	}
	if d.Logger == nil {
		d.Logger = infra.NopLogger()
	}
	return &App{
		videos:     d.Videos,
		downloads:  d.Downloads,
		ledger:     d.Ledger,
		logger:     d.Logger,
		configured: d.APIKeyConfigured,
	}
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	// Signed provider links carry '&'; keep them as sent.
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, msg, details string) {
	a.json(w, code, errorBody{Error: msg, Details: details})
}

// allowPost answers anything but POST with 405.
func (a *App) allowPost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodPost {
		return true
	}
	w.Header().Set("Allow", http.MethodPost)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusMethodNotAllowed)
	_, _ = w.Write([]byte("Method Not Allowed"))
	return false
}

func (a *App) decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

// fail maps err onto a response. Client mistakes and configuration problems
// are reported verbatim; anything else gets the handler's summary plus the
// underlying message as details.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error, summary string) {
	var (
		validation *domain.ValidationError
		config     *domain.ConfigError
		status     *relay.StatusError
		upstream   *domain.UpstreamError
	)
	switch {
	case errors.As(err, &validation):
		a.error(w, http.StatusBadRequest, validation.Message, "")
		return
	case errors.As(err, &config):
		a.error(w, http.StatusInternalServerError, config.Message, "")
		return
	case errors.As(err, &status):
		a.error(w, status.HTTPStatus(), status.Error(), "")
		return
	}

	a.logger.Error().
		Err(err).
		Str("request_id", middleware.RequestIDFromContext(r.Context())).
		Str("path", r.URL.Path).
		Msg("handler failed")
	details := err.Error()
	if errors.As(err, &upstream) && upstream.Err != nil {
		details = upstream.Err.Error()
	}
	a.error(w, domain.HTTPStatus(err), summary, details)
}
