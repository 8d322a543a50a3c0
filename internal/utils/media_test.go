package utils

import (
	"encoding/base64"
	"testing"
)

func TestSplitDataURL(t *testing.T) {
	tests := []struct {
		name        string
		value       string
		wantMime    string
		wantPayload string
	}{
		{
			name:        "bare base64 defaults to jpeg",
			value:       "QUJD",
			wantMime:    "image/jpeg",
			wantPayload: "QUJD",
		},
		{
			name:        "data url",
			value:       "data:image/png;base64,QUJD",
			wantMime:    "image/png",
			wantPayload: "QUJD",
		},
		{
			name:        "malformed data url",
			value:       "data:image/png",
			wantMime:    "image/jpeg",
			wantPayload: "",
		},
	}
	for _, tt := range tests {
		mimeType, payload := SplitDataURL(tt.value)
		if mimeType != tt.wantMime || payload != tt.wantPayload {
			t.Fatalf("%s: got (%q, %q), want (%q, %q)", tt.name, mimeType, payload, tt.wantMime, tt.wantPayload)
		}
	}
}

func TestDecodeMediaPayload(t *testing.T) {
	pngHeader := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}
	encoded := base64.StdEncoding.EncodeToString(pngHeader)

	data, ext, err := DecodeMediaPayload("data:image/png;base64," + encoded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ext != "png" {
		t.Fatalf("expected png extension, got %q", ext)
	}
	if len(data) != len(pngHeader) {
		t.Fatalf("unexpected decoded size: %d", len(data))
	}

	if _, _, err := DecodeMediaPayload("   "); err == nil {
		t.Fatal("expected error for empty payload")
	}
	if _, _, err := DecodeMediaPayload("data:image/png;base64,!!!"); err == nil {
		t.Fatal("expected error for invalid base64")
	}
}
