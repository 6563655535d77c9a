package reel

import (
	"context"
	"io"
	"strings"
	"time"

	"scriptreel/internal/domain"
	"scriptreel/internal/infra"
	"scriptreel/internal/quota"
)

// API is the relay surface a flow needs. *Client implements it.
type API interface {
	StatusChecker
	GenerateVideo(ctx context.Context, req domain.GenerationRequest) (domain.Operation, error)
	DownloadVideo(ctx context.Context, link string) (*Download, error)
}

// Sink stores the downloaded video. storage.FileStore implements it.
type Sink interface {
	WriteStream(ctx context.Context, key string, r io.Reader) (string, int64, error)
}

// Result describes a finished generation.
type Result struct {
	Operation    domain.Operation
	DownloadLink string
	Key          string
	Bytes        int64
	ContentType  string
	Remaining    int
}

// Flow runs one generation end to end. A Flow holds no per-run state and may
// be reused sequentially.
type Flow struct {
	API    API
	Poller Poller
	Quota  quota.Store
	Sink   Sink
	Limit  int
	Now    func() time.Time
	// Progress receives user facing status lines; "" clears the line.
	Progress func(string)
	Logger   *infra.Logger
}

// Remaining reports how many generations are left today without changing
// the stored record.
func (f *Flow) Remaining(ctx context.Context) int {
	rec, err := f.Quota.Load(ctx)
	if err != nil {
		f.logger().Warn().Err(err).Msg("quota: read failed, assuming a fresh day")
		rec = domain.QuotaRecord{}
	}
	return rec.Remaining(domain.QuotaDay(f.now()), f.limit())
}

// Run gates on the daily quota, submits req, waits for the operation,
// resolves the video link and stores the bytes. The quota is charged only
// after the video was stored.
func (f *Flow) Run(ctx context.Context, req domain.GenerationRequest) (Result, error) {
	var res Result
	defer f.progress("")

	limit := f.limit()
	today := domain.QuotaDay(f.now())
	stored, err := f.Quota.Load(ctx)
	if err != nil {
		f.logger().Warn().Err(err).Msg("quota: read failed, assuming a fresh day")
		stored = domain.QuotaRecord{}
	}
	gated, err := domain.CheckQuota(stored, today, limit)
	if gated != stored {
		if err := f.Quota.Save(ctx, gated); err != nil {
			f.logger().Warn().Err(err).Msg("quota: reset failed")
		}
	}
	if err != nil {
		return res, err
	}
	if strings.TrimSpace(req.Script) == "" {
		return res, &domain.ValidationError{Message: "Please enter a script to generate a video."}
	}

	f.progress("Sending script to the AI director...")
	op, err := f.API.GenerateVideo(ctx, req)
	if err != nil {
		return res, err
	}
	f.logger().Info().Str("operation", op.Name()).Msg("reel: generation started")

	f.progress("Video generation started. The process is now running...")
	poller := f.Poller
	if poller.Checker == nil {
		poller.Checker = f.API
	}
	if poller.Progress == nil {
		poller.Progress = f.Progress
	}
	done, err := poller.Wait(ctx, op)
	if err != nil {
		return res, err
	}
	res.Operation = done

	link, err := done.Resolve()
	if err != nil {
		return res, err
	}
	res.DownloadLink = link

	f.progress("Downloading the final video...")
	dl, err := f.API.DownloadVideo(ctx, link)
	if err != nil {
		return res, err
	}
	defer dl.Body.Close()

	finished := f.now()
	key, n, err := f.Sink.WriteStream(ctx, FileName(finished, dl.ContentType), dl.Body)
	if err != nil {
		return res, err
	}
	res.Key, res.Bytes, res.ContentType = key, n, dl.ContentType
	f.progress("Video ready!")

	// Re-read so a generation finished elsewhere in the meantime still counts.
	current, err := f.Quota.Load(ctx)
	if err != nil {
		current = gated
	}
	day := domain.QuotaDay(finished)
	charged := domain.RecordGeneration(current, day)
	if err := f.Quota.Save(ctx, charged); err != nil {
		f.logger().Warn().Err(err).Msg("quota: update failed")
	}
	res.Remaining = charged.Remaining(day, limit)
	return res, nil
}

// FileName names a stored video after the time it finished.
func FileName(t time.Time, contentType string) string {
	return "scriptreel-" + t.Format("20060102-150405") + extension(contentType)
}

func extension(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch ct {
	case "video/webm":
		return ".webm"
	case "video/quicktime":
		return ".mov"
	default:
		return ".mp4"
	}
}

func (f *Flow) progress(msg string) {
	if f.Progress != nil {
		f.Progress(msg)
	}
}

func (f *Flow) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

func (f *Flow) limit() int {
	if f.Limit > 0 {
		return f.Limit
	}
	return domain.DailyGenerationLimit
}

func (f *Flow) logger() *infra.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return infra.NopLogger()
}
