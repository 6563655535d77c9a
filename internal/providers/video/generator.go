package video

import (
	"context"
	"errors"

	"scriptreel/internal/domain"
	"scriptreel/internal/infra"
	"scriptreel/internal/middleware"
	"scriptreel/internal/providers/genai"
)

// Generator starts generations and refreshes their operation handles.
type Generator interface {
	Submit(ctx context.Context, req domain.GenerationRequest) (domain.Operation, error)
	Refresh(ctx context.Context, op domain.Operation) (domain.Operation, error)
}

// Provider is the subset of the Gemini client the generator drives.
type Provider interface {
	GenerateVideos(ctx context.Context, req genai.VideoRequest) (domain.Operation, error)
	GetVideosOperation(ctx context.Context, op domain.Operation) (domain.Operation, error)
}

// VeoGenerator submits scripts to Veo through the Gemini API.
type VeoGenerator struct {
	provider Provider
	logger   *infra.Logger
}

func NewVeoGenerator(provider Provider, logger *infra.Logger) *VeoGenerator {
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &VeoGenerator{provider: provider, logger: logger}
}

// Submit validates req, builds the prompt and returns the provider's initial
// operation unmodified.
func (g *VeoGenerator) Submit(ctx context.Context, req domain.GenerationRequest) (domain.Operation, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return domain.Operation{}, err
	}

	prompt := BuildPrompt(req)
	g.logger.Info().
		Str("model", req.VideoModel).
		Str("aspect_ratio", req.AspectRatio).
		Bool("audio", req.HasAudio()).
		Bool("image", req.ReferenceImage() != nil).
		Msg("video: starting generation")

	op, err := g.provider.GenerateVideos(ctx, genai.VideoRequest{
		Model:       req.VideoModel,
		Prompt:      prompt,
		AspectRatio: req.AspectRatio,
		Image:       req.ReferenceImage(),
		RequestID:   middleware.RequestIDFromContext(ctx),
	})
	if err != nil {
		return domain.Operation{}, upstream("start video generation", err)
	}
	return op, nil
}

// Refresh asks the provider for the latest state of op.
func (g *VeoGenerator) Refresh(ctx context.Context, op domain.Operation) (domain.Operation, error) {
	if op.IsZero() {
		return domain.Operation{}, &domain.ValidationError{Message: "Missing operation in request body"}
	}
	updated, err := g.provider.GetVideosOperation(ctx, op)
	if err != nil {
		return domain.Operation{}, upstream("get video generation status", err)
	}
	return updated, nil
}

func upstream(op string, err error) error {
	var cfg *domain.ConfigError
	if errors.As(err, &cfg) {
		return err
	}
	return &domain.UpstreamError{Op: op, Err: err}
}

var _ Generator = (*VeoGenerator)(nil)
