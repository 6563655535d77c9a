package domain

import (
	"errors"
	"testing"
)

func validRequest() GenerationRequest {
	return GenerationRequest{
		Script:        "A cat on a skateboard",
		AspectRatio:   AspectLandscape,
		CreativeStyle: "Cinematic",
		Voice:         VoiceNone,
		VideoModel:    DefaultVideoModel,
	}
}

func TestGenerationRequestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GenerationRequest)
		ok     bool
	}{
		{"valid", func(r *GenerationRequest) {}, true},
		{"empty script", func(r *GenerationRequest) { r.Script = "" }, false},
		{"whitespace script", func(r *GenerationRequest) { r.Script = " \n\t " }, false},
		{"missing model", func(r *GenerationRequest) { r.VideoModel = "" }, false},
		{"missing aspect", func(r *GenerationRequest) { r.AspectRatio = "" }, false},
		{"unknown aspect", func(r *GenerationRequest) { r.AspectRatio = "4:3" }, false},
		{"missing style", func(r *GenerationRequest) { r.CreativeStyle = "" }, false},
		{"bad image", func(r *GenerationRequest) { r.Image = "not base64!" }, false},
		{"good image", func(r *GenerationRequest) { r.Image = "aGVsbG8=" }, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			err := req.Validate()
			if tc.ok {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() = %v, want ValidationError", err)
			}
			if HTTPStatus(err) != 400 {
				t.Fatalf("HTTPStatus = %d, want 400", HTTPStatus(err))
			}
		})
	}
}

func TestGenerationRequestNormalize(t *testing.T) {
	req := GenerationRequest{Script: "  hello  ", VideoLength: 5, Image: "aGVsbG8="}
	req.Normalize()
	if req.Script != "hello" {
		t.Fatalf("Script = %q", req.Script)
	}
	if req.VideoLength != MinVideoLengthSeconds {
		t.Fatalf("VideoLength = %d", req.VideoLength)
	}
	if req.ImageMimeType != DefaultImageMimeType {
		t.Fatalf("ImageMimeType = %q", req.ImageMimeType)
	}
	img := req.ReferenceImage()
	if img == nil || img.Data != "aGVsbG8=" {
		t.Fatalf("ReferenceImage() = %+v", img)
	}
}

func TestClampVideoLength(t *testing.T) {
	cases := map[int]int{0: 0, -4: 0, 1: 15, 15: 15, 30: 30, 60: 60, 61: 60, 600: 60}
	for in, want := range cases {
		if got := ClampVideoLength(in); got != want {
			t.Fatalf("ClampVideoLength(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&ValidationError{Message: "x"}, 400},
		{ErrMissingAPIKey, 500},
		{&UpstreamError{Op: "poll", Err: errors.New("boom")}, 500},
		{&GenerationFailedError{Reason: "x"}, 500},
		{&MissingResultError{}, 500},
		{&QuotaExceededError{Limit: 5}, 429},
		{errors.New("plain"), 500},
	}
	for _, tc := range tests {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Fatalf("HTTPStatus(%T) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
