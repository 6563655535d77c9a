package main

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"scriptreel/internal/domain"
)

const maxReferenceImageBytes = 15 << 20

var referenceMIMECandidates = map[string]string{
	"image/jpeg":  "image/jpeg",
	"image/jpg":   "image/jpeg",
	"image/pjpeg": "image/jpeg",
	"image/png":   "image/png",
	"image/x-png": "image/png",
	"image/webp":  "image/webp",
}

// loadReferenceImage reads path and returns it base64 encoded with its MIME
// type, sniffed from the content first and the extension second.
func loadReferenceImage(path string) (*domain.ReferenceImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reference image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("reference image %s is empty", path)
	}
	if len(data) > maxReferenceImageBytes {
		return nil, fmt.Errorf("reference image %s is larger than %d MiB", path, maxReferenceImageBytes>>20)
	}
	mimeType, ok := canonicalizeReferenceMIME(http.DetectContentType(data))
	if !ok {
		mimeType, ok = canonicalizeReferenceMIME(mime.TypeByExtension(strings.ToLower(filepath.Ext(path))))
	}
	if !ok {
		return nil, fmt.Errorf("unsupported reference image type; supported types: image/jpeg, image/png, image/webp")
	}
	return &domain.ReferenceImage{Data: base64.StdEncoding.EncodeToString(data), MimeType: mimeType}, nil
}

func canonicalizeReferenceMIME(mimeType string) (string, bool) {
	mimeType = strings.TrimSpace(strings.ToLower(mimeType))
	if idx := strings.Index(mimeType, ";"); idx != -1 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}
	if mimeType == "" {
		return "", false
	}
	canonical, ok := referenceMIMECandidates[mimeType]
	return canonical, ok
}
