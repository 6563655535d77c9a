package handlers

import (
	"net/http"
	"strings"

	"scriptreel/internal/adapter/repo"
	"scriptreel/internal/domain"
	"scriptreel/internal/middleware"
	"scriptreel/internal/providers/video"
)

const (
	msgGenerateFailed = "An internal server error occurred during video generation initiation."
	msgStatusFailed   = "Failed to get video generation status."
	msgDownloadFailed = "An internal server error occurred."
)

type statusRequest struct {
	Operation domain.Operation `json:"operation"`
}

type downloadRequest struct {
	DownloadLink string `json:"downloadLink"`
}

// GenerateVideo starts a generation and replies with the provider's initial
// operation, unmodified.
func (a *App) GenerateVideo(w http.ResponseWriter, r *http.Request) {
	if !a.allowPost(w, r) {
		return
	}
	var req domain.GenerationRequest
	if err := a.decode(w, r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "Missing required parameters in request body", "")
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		a.fail(w, r, err, msgGenerateFailed)
		return
	}
	if !a.configured {
		a.fail(w, r, domain.ErrMissingAPIKey, msgGenerateFailed)
		return
	}

	op, err := a.videos.Submit(r.Context(), req)
	if err != nil {
		a.fail(w, r, err, msgGenerateFailed)
		return
	}

	rid := middleware.RequestIDFromContext(r.Context())
	if err := a.ledger.RecordSubmission(r.Context(), repo.Submission{
		RequestID: rid,
		Operation: op,
		Request:   req,
		Prompt:    video.BuildPrompt(req),
	}); err != nil {
		a.logger.Warn().Err(err).Str("request_id", rid).Msg("ledger: record submission failed")
	}
	a.json(w, http.StatusOK, op)
}

// GetVideoStatus refreshes the operation sent by the caller.
func (a *App) GetVideoStatus(w http.ResponseWriter, r *http.Request) {
	if !a.allowPost(w, r) {
		return
	}
	var body statusRequest
	if err := a.decode(w, r, &body); err != nil || body.Operation.IsZero() {
		a.error(w, http.StatusBadRequest, "Missing operation in request body", "")
		return
	}
	if !a.configured {
		a.fail(w, r, domain.ErrMissingAPIKey, msgStatusFailed)
		return
	}

	op, err := a.videos.Refresh(r.Context(), body.Operation)
	if err != nil {
		a.fail(w, r, err, msgStatusFailed)
		return
	}

	rid := middleware.RequestIDFromContext(r.Context())
	polls, err := a.ledger.RecordStatus(r.Context(), op)
	if err != nil {
		a.logger.Warn().Err(err).Str("request_id", rid).Msg("ledger: record status failed")
	}
	if op.Done() {
		a.logger.Info().
			Str("request_id", rid).
			Str("operation", op.Name()).
			Int("polls", polls).
			Msg("video: operation finished")
	}
	a.json(w, http.StatusOK, op)
}

// DownloadVideo relays the finished video bytes from the provider to the
// caller, attaching the credential server side.
func (a *App) DownloadVideo(w http.ResponseWriter, r *http.Request) {
	if !a.allowPost(w, r) {
		return
	}
	var body downloadRequest
	if err := a.decode(w, r, &body); err != nil || strings.TrimSpace(body.DownloadLink) == "" {
		a.error(w, http.StatusBadRequest, "Missing downloadLink in request body", "")
		return
	}
	if !a.configured {
		a.fail(w, r, domain.ErrMissingAPIKey, msgDownloadFailed)
		return
	}

	rid := middleware.RequestIDFromContext(r.Context())
	dl, err := a.downloads.Fetch(r.Context(), strings.TrimSpace(body.DownloadLink))
	if err != nil {
		a.recordDownload(r, repo.Download{RequestID: rid, UpstreamStatus: domain.HTTPStatus(err)})
		a.fail(w, r, err, msgDownloadFailed)
		return
	}
	defer dl.Close()

	n, err := dl.WriteTo(w)
	if err != nil {
		// Headers are already out; all that is left is to log it.
		a.logger.Error().Err(err).Str("request_id", rid).Int64("bytes", n).Msg("relay: copy to client failed")
	}
	a.recordDownload(r, repo.Download{
		RequestID:      rid,
		UpstreamStatus: http.StatusOK,
		ContentType:    dl.ContentType,
		Bytes:          n,
		Streamed:       dl.Streamed(),
	})
}

func (a *App) recordDownload(r *http.Request, d repo.Download) {
	if err := a.ledger.RecordDownload(r.Context(), d); err != nil {
		a.logger.Warn().Err(err).Str("request_id", d.RequestID).Msg("ledger: record download failed")
	}
}
