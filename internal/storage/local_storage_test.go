package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStorePutAvatar(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	key, err := store.PutAvatar(context.Background(), 42, []byte("png-bytes"), ".PNG")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(key, "avatars/u42/") {
		t.Fatalf("unexpected key: %q", key)
	}
	if !strings.HasSuffix(key, ".png") {
		t.Fatalf("extension must be normalized: %q", key)
	}

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Fatalf("unexpected contents: %q", data)
	}
}

func TestLocalStorePutAvatarEmptyPayload(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.PutAvatar(context.Background(), 1, nil, "png"); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

func TestNormalizeExtension(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "png", want: "png"},
		{in: ".JPEG", want: "jpeg"},
		{in: "  .webp  ", want: "webp"},
		{in: "", want: "png"},
		{in: "../etc", want: "etc"},
	}
	for _, tt := range tests {
		if got := normalizeExtension(tt.in); got != tt.want {
			t.Fatalf("normalizeExtension(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
