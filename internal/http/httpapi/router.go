package httpapi

import (
	"net/http"
	"time"

	"scriptreel/internal/http/handlers"
	"scriptreel/internal/infra"
	mw "scriptreel/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Options struct {
	Logger             *infra.Logger
	CORSAllowedOrigins []string
	RateLimitPerMin    int
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}

	r := chi.NewRouter()
	r.Use(
		mw.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		mw.Logger(*logger),
		mw.CORS(opts.CORSAllowedOrigins),
	)

	// Health
	r.Get("/v1/healthz", app.Health)

	// Relay endpoints answer every method themselves so non-POST requests
	// get 405 with an Allow header.
	r.Group(func(r chi.Router) {
		r.Use(mw.RateLimit(opts.RateLimitPerMin, time.Minute))

		r.HandleFunc("/generate-video", app.GenerateVideo)
		r.HandleFunc("/get-video-status", app.GetVideoStatus)
		r.HandleFunc("/download-video", app.DownloadVideo)

		r.Route("/api", func(r chi.Router) {
			r.HandleFunc("/generateVideo", app.GenerateVideo)
			r.HandleFunc("/getVideoStatus", app.GetVideoStatus)
			r.HandleFunc("/downloadVideo", app.DownloadVideo)
			r.HandleFunc("/generate-video", app.GenerateVideo)
			r.HandleFunc("/poll-operation", app.GetVideoStatus)
		})
	})

	return r
}
