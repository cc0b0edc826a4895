// Package avatar turns an image file into the URL stored as a profile
// avatar override.
package avatar

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"

	"irondoc/client/internal/util"
)

// MaxBytes caps the size of an avatar image.
const MaxBytes = 5 << 20

var (
	ErrNotImage = errors.New("avatar is not an image")
	ErrTooLarge = errors.New("avatar image is too large")
	ErrEmpty    = errors.New("avatar image is empty")
)

// Uploader stores an avatar image and returns the URL it is served from.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}

type Service struct {
	uploader Uploader
	logger   *zap.Logger
}

// NewService returns a service that uploads through uploader, or embeds
// images as data URLs when uploader is nil.
func NewService(uploader Uploader, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{uploader: uploader, logger: logger}
}

// FromFile reads path and returns its avatar URL.
func (s *Service) FromFile(ctx context.Context, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat avatar: %w", err)
	}
	if info.Size() > MaxBytes {
		return "", ErrTooLarge
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read avatar: %w", err)
	}
	return s.FromBytes(ctx, data)
}

func (s *Service) FromBytes(ctx context.Context, data []byte) (string, error) {
	contentType, err := detect(data)
	if err != nil {
		return "", err
	}
	if s.uploader == nil {
		return dataURL(contentType, data), nil
	}

	key := "avatars/" + util.NewID("") + extension(contentType)
	url, err := s.uploader.Upload(ctx, key, contentType, data)
	if err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}
	s.logger.Info("avatar uploaded", zap.String("key", key), zap.Int("bytes", len(data)))
	return url, nil
}

// DataURL encodes data as a base64 data URL after checking it is an image.
func DataURL(data []byte) (string, error) {
	contentType, err := detect(data)
	if err != nil {
		return "", err
	}
	return dataURL(contentType, data), nil
}

func dataURL(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func detect(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if len(data) > MaxBytes {
		return "", ErrTooLarge
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%w: detected %s", ErrNotImage, contentType)
	}
	return contentType, nil
}

func extension(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/bmp":
		return ".bmp"
	default:
		return ""
	}
}
