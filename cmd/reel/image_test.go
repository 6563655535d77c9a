package main

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadReferenceImage(t *testing.T) {
	dir := t.TempDir()
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	pngPath := filepath.Join(dir, "still.bin")
	if err := os.WriteFile(pngPath, png, 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	img, err := loadReferenceImage(pngPath)
	if err != nil {
		t.Fatalf("loadReferenceImage: %v", err)
	}
	if img.MimeType != "image/png" {
		t.Fatalf("MimeType = %q, want image/png", img.MimeType)
	}
	if img.Data != base64.StdEncoding.EncodeToString(png) {
		t.Fatalf("Data not base64 of file contents")
	}

	txtPath := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(txtPath, []byte("just text"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := loadReferenceImage(txtPath); err == nil {
		t.Fatalf("expected unsupported type error")
	}
}

func TestCanonicalizeReferenceMIME(t *testing.T) {
	tests := map[string]string{
		"image/jpg":               "image/jpeg",
		" IMAGE/PNG ; charset=x ": "image/png",
		"image/webp":              "image/webp",
	}
	for in, want := range tests {
		got, ok := canonicalizeReferenceMIME(in)
		if !ok || got != want {
			t.Fatalf("canonicalizeReferenceMIME(%q) = %q, %v", in, got, ok)
		}
	}
	if _, ok := canonicalizeReferenceMIME("video/mp4"); ok {
		t.Fatalf("video/mp4 accepted as a reference image")
	}
}
