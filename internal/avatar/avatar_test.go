package avatar

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type fakeUploader struct {
	key         string
	contentType string
	data        []byte
	err         error
}

func (f *fakeUploader) Upload(_ context.Context, key, contentType string, data []byte) (string, error) {
	f.key, f.contentType, f.data = key, contentType, data
	if f.err != nil {
		return "", f.err
	}
	return "https://cdn.example.com/avatars/" + key, nil
}

func TestDataURL(t *testing.T) {
	url, err := DataURL(pngHeader)
	if err != nil {
		t.Fatalf("DataURL: %v", err)
	}
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Fatalf("unexpected url %q", url)
	}
}

func TestDataURLRejects(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want error
	}{
		{name: "empty", data: nil, want: ErrEmpty},
		{name: "text", data: []byte("hello world"), want: ErrNotImage},
		{name: "too large", data: append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, MaxBytes)...), want: ErrTooLarge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DataURL(tc.data); !errors.Is(err, tc.want) {
				t.Fatalf("DataURL() error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestServiceFromFileWithoutUploader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "me.png")
	if err := os.WriteFile(path, pngHeader, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	url, err := NewService(nil, nil).FromFile(context.Background(), path)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Fatalf("expected data url, got %q", url)
	}

	if _, err := NewService(nil, nil).FromFile(context.Background(), filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestServiceUploads(t *testing.T) {
	up := &fakeUploader{}
	url, err := NewService(up, nil).FromBytes(context.Background(), pngHeader)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	if !strings.HasPrefix(up.key, "avatars/") || !strings.HasSuffix(up.key, ".png") {
		t.Fatalf("unexpected key %q", up.key)
	}
	if up.contentType != "image/png" {
		t.Fatalf("content type = %q", up.contentType)
	}
	if url != "https://cdn.example.com/avatars/"+up.key {
		t.Fatalf("unexpected url %q", url)
	}

	up.err = errors.New("bucket gone")
	if _, err := NewService(up, nil).FromBytes(context.Background(), pngHeader); err == nil || !strings.Contains(err.Error(), "bucket gone") {
		t.Fatalf("expected upload error, got %v", err)
	}
}

func TestNewS3(t *testing.T) {
	if _, err := NewS3(S3Options{Bucket: "avatars"}); err == nil {
		t.Fatal("expected error without endpoint")
	}
	if _, err := NewS3(S3Options{Endpoint: "localhost:9000"}); err == nil {
		t.Fatal("expected error without bucket")
	}
	s, err := NewS3(S3Options{Endpoint: "localhost:9000", Bucket: "avatars", AccessKey: "k", SecretKey: "s"})
	if err != nil {
		t.Fatalf("NewS3: %v", err)
	}
	if s.publicURL != "http://localhost:9000" {
		t.Fatalf("public url = %q", s.publicURL)
	}
}

func TestObjectURL(t *testing.T) {
	got := objectURL("https://cdn.example.com/", "avatars", "/avatars/abc.png")
	if got != "https://cdn.example.com/avatars/avatars/abc.png" {
		t.Fatalf("objectURL() = %q", got)
	}
}
