package domain

import (
	"encoding/base64"
	"strings"
)

// Aspect ratios accepted by the provider.
const (
	AspectLandscape = "16:9"
	AspectPortrait  = "9:16"
	AspectSquare    = "1:1"
)

const (
	// VoiceNone disables the voiceover clause of the prompt.
	VoiceNone = "None"

	DefaultVideoModel     = "veo-2.0-generate-001"
	DefaultCreativeStyle  = "Cinematic"
	DefaultImageMimeType  = "image/jpeg"
	MinVideoLengthSeconds = 15
	MaxVideoLengthSeconds = 60
)

// CreativeStyles lists the styles offered by the form. The provider accepts
// free text, so values outside this list are not rejected.
var CreativeStyles = []string{"Cinematic", "Documentary", "Animated", "Vibrant", "Minimalist"}

// Voices lists the voiceover options offered by the form.
var Voices = []string{VoiceNone, "Male - Deep", "Female - Warm", "Narrator"}

// GenerationRequest carries the user's parameters for one video.
type GenerationRequest struct {
	Script          string `json:"script"`
	AspectRatio     string `json:"aspectRatio"`
	CreativeStyle   string `json:"creativeStyle"`
	Voice           string `json:"voice"`
	BackgroundMusic string `json:"backgroundMusic"`
	VideoModel      string `json:"videoModel"`
	VideoLength     int    `json:"videoLength,omitempty"`
	Image           string `json:"image,omitempty"`
	ImageMimeType   string `json:"imageMimeType,omitempty"`
}

// ReferenceImage is the optional still the video should start from.
type ReferenceImage struct {
	Data     string
	MimeType string
}

// Normalize trims free-text fields and clamps the video length in place.
func (r *GenerationRequest) Normalize() {
	r.Script = strings.TrimSpace(r.Script)
	r.AspectRatio = strings.TrimSpace(r.AspectRatio)
	r.CreativeStyle = strings.TrimSpace(r.CreativeStyle)
	r.Voice = strings.TrimSpace(r.Voice)
	r.VideoModel = strings.TrimSpace(r.VideoModel)
	r.Image = strings.TrimSpace(r.Image)
	r.VideoLength = ClampVideoLength(r.VideoLength)
	if r.Image != "" && strings.TrimSpace(r.ImageMimeType) == "" {
		r.ImageMimeType = DefaultImageMimeType
	}
}

// Validate checks the fields the provider cannot do without.
func (r GenerationRequest) Validate() error {
	if strings.TrimSpace(r.Script) == "" {
		return &ValidationError{Message: "Script cannot be empty."}
	}
	if strings.TrimSpace(r.VideoModel) == "" || strings.TrimSpace(r.AspectRatio) == "" || strings.TrimSpace(r.CreativeStyle) == "" {
		return &ValidationError{Message: "Missing required parameters in request body"}
	}
	if !IsAspectRatio(strings.TrimSpace(r.AspectRatio)) {
		return &ValidationError{Message: "Unsupported aspect ratio: " + r.AspectRatio}
	}
	if r.Image != "" {
		if _, err := base64.StdEncoding.DecodeString(strings.TrimSpace(r.Image)); err != nil {
			return &ValidationError{Message: "Reference image must be base64 encoded"}
		}
	}
	return nil
}

// ReferenceImage returns the attached image, or nil when none was sent.
func (r GenerationRequest) ReferenceImage() *ReferenceImage {
	data := strings.TrimSpace(r.Image)
	if data == "" {
		return nil
	}
	mime := strings.TrimSpace(r.ImageMimeType)
	if mime == "" {
		mime = DefaultImageMimeType
	}
	return &ReferenceImage{Data: data, MimeType: mime}
}

// HasAudio reports whether the prompt will ask for an audio track.
func (r GenerationRequest) HasAudio() bool {
	return HasVoice(r.Voice) || strings.TrimSpace(r.BackgroundMusic) != ""
}

// HasVoice reports whether voice selects an actual voiceover.
func HasVoice(voice string) bool {
	voice = strings.TrimSpace(voice)
	return voice != "" && voice != VoiceNone
}

// IsAspectRatio reports whether v is one of the supported aspect ratios.
func IsAspectRatio(v string) bool {
	switch v {
	case AspectLandscape, AspectPortrait, AspectSquare:
		return true
	}
	return false
}

// ClampVideoLength keeps a requested length within the supported range.
// Zero means "not specified" and is left alone.
func ClampVideoLength(seconds int) int {
	switch {
	case seconds <= 0:
		return 0
	case seconds < MinVideoLengthSeconds:
		return MinVideoLengthSeconds
	case seconds > MaxVideoLengthSeconds:
		return MaxVideoLengthSeconds
	}
	return seconds
}
