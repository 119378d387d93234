package storage

import (
	"context"
	"strings"
	"testing"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := UploadKey("C:\\photos\\card.jpg")
	if !strings.HasSuffix(key, "/card.jpg") {
		t.Fatalf("UploadKey() = %q", key)
	}
	url, err := s.Save(context.Background(), key, []byte("img"), "image/jpeg")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !strings.HasPrefix(url, "file://") {
		t.Fatalf("url = %q", url)
	}
	got, err := s.Get(context.Background(), key)
	if err != nil || string(got) != "img" {
		t.Fatalf("Get() = %q, %v", got, err)
	}
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	s, _ := NewLocalStore(t.TempDir())
	if _, err := s.Save(context.Background(), "../../etc/passwd", nil, ""); err == nil {
		t.Fatalf("expected traversal to be rejected")
	}
}

func TestUploadKeyFallback(t *testing.T) {
	if k := UploadKey(""); !strings.HasSuffix(k, "/card") {
		t.Fatalf("UploadKey(\"\") = %q", k)
	}
}
