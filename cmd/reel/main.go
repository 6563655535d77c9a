package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"scriptreel/internal/domain"
	"scriptreel/internal/infra"
	"scriptreel/internal/quota"
	"scriptreel/internal/reel"
	"scriptreel/internal/storage"
)

func main() {
	_ = godotenv.Load()
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("reel", flag.ContinueOnError)
	var (
		server     = fs.String("server", envOr("REEL_SERVER_URL", "http://localhost:3001"), "relay base URL")
		scriptPath = fs.String("script", "", "file holding the script (\"-\" or empty reads stdin)")
		aspect     = fs.String("aspect", domain.AspectLandscape, "aspect ratio: 16:9, 9:16 or 1:1")
		style      = fs.String("style", domain.DefaultCreativeStyle, "creative style: "+strings.Join(domain.CreativeStyles, ", "))
		voice      = fs.String("voice", domain.VoiceNone, "voiceover: "+strings.Join(domain.Voices, ", "))
		music      = fs.String("music", "", "background music description")
		model      = fs.String("model", envOr("REEL_VIDEO_MODEL", domain.DefaultVideoModel), "video model")
		length     = fs.Int("length", 0, "video length in seconds (15-60, 0 lets the model decide)")
		imagePath  = fs.String("image", "", "optional reference image")
		outDir     = fs.String("out", ".", "directory for the finished video")
		showQuota  = fs.Bool("quota", false, "print today's remaining generations and exit")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logger := infra.NewLoggerTo(os.Stderr, envOr("APP_ENV", "development")).Level(logLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openQuotaStore(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	defer closeStore()

	progress := newProgressLine(os.Stdout)
	flow := &reel.Flow{
		API:      reel.NewClient(*server, nil),
		Poller:   reel.Poller{Interval: pollInterval()},
		Quota:    store,
		Progress: progress.Set,
		Logger:   &logger,
	}

	if *showQuota {
		fmt.Printf("%d of %d generations left today.\n", flow.Remaining(ctx), domain.DailyGenerationLimit)
		return 0
	}

	script, err := readScript(*scriptPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	req := domain.GenerationRequest{
		Script:          script,
		AspectRatio:     *aspect,
		CreativeStyle:   *style,
		Voice:           *voice,
		BackgroundMusic: *music,
		VideoModel:      *model,
		VideoLength:     *length,
	}
	if *imagePath != "" {
		img, err := loadReferenceImage(*imagePath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return 1
		}
		req.Image, req.ImageMimeType = img.Data, img.MimeType
	}

	sink, err := storage.NewFileStore(*outDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	flow.Sink = sink

	res, err := flow.Run(ctx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Cancelled. The provider may still finish the job; it will not count against your quota.")
			return 130
		}
		fmt.Fprintln(os.Stderr, "Error:", err.Error())
		return 1
	}

	fmt.Printf("Saved %s (%d bytes, %s)\n", sink.Path(res.Key), res.Bytes, res.ContentType)
	fmt.Printf("%d of %d generations left today.\n", res.Remaining, domain.DailyGenerationLimit)
	return 0
}

func readScript(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read script: %w", err)
	}
	return string(data), nil
}

// openQuotaStore prefers a shared redis counter when REEL_QUOTA_REDIS_URL is
// set and falls back to the local quota file.
func openQuotaStore(ctx context.Context) (quota.Store, func(), error) {
	if rawURL := strings.TrimSpace(os.Getenv("REEL_QUOTA_REDIS_URL")); rawURL != "" {
		rdb, err := quota.Connect(ctx, rawURL)
		if err != nil {
			return nil, nil, err
		}
		return quota.NewRedisStore(rdb, clientID()), func() { _ = rdb.Close() }, nil
	}

	path := strings.TrimSpace(os.Getenv("REEL_QUOTA_FILE"))
	if path == "" {
		var err error
		if path, err = quota.DefaultPath(); err != nil {
			return nil, nil, err
		}
	}
	return quota.NewFileStore(path), func() {}, nil
}

// clientID is stable per user and machine unless REEL_CLIENT_ID overrides it.
func clientID() string {
	if id := strings.TrimSpace(os.Getenv("REEL_CLIENT_ID")); id != "" {
		return id
	}
	host, _ := os.Hostname()
	home, _ := os.UserHomeDir()
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("scriptreel://"+host+home)).String()
}

func pollInterval() time.Duration {
	if v := os.Getenv("REEL_POLL_INTERVAL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return reel.DefaultPollInterval
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
