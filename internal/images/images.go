// Package images stores recipe pictures submitted as base64 data URIs and
// returns the public reference saved on the recipe.
package images

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"foodgram/internal/config"
)

// MaxImageBytes caps the decoded size of a single image.
const MaxImageBytes = 10 << 20

// ErrInvalidImage reports a payload that is not a supported base64 image.
var ErrInvalidImage = errors.New("invalid image")

var allowedExtensions = map[string]string{
	"png":  "png",
	"jpeg": "jpg",
	"jpg":  "jpg",
	"gif":  "gif",
	"webp": "webp",
}

// Store persists image bytes and returns their public reference.
type Store interface {
	Put(ctx context.Context, data []byte, ext string) (string, error)
}

// DecodeDataURI parses "data:image/<type>;base64,<payload>" and returns the
// bytes with a normalised file extension.
func DecodeDataURI(uri string) ([]byte, string, error) {
	header, payload, ok := strings.Cut(strings.TrimSpace(uri), ",")
	if !ok || !strings.HasPrefix(header, "data:image/") || !strings.HasSuffix(header, ";base64") {
		return nil, "", fmt.Errorf("%w: expected a base64 data URI", ErrInvalidImage)
	}

	kind := strings.TrimSuffix(strings.TrimPrefix(header, "data:image/"), ";base64")
	ext, ok := allowedExtensions[strings.ToLower(kind)]
	if !ok {
		return nil, "", fmt.Errorf("%w: unsupported type %q", ErrInvalidImage, kind)
	}

	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageBytes {
		return nil, "", fmt.Errorf("%w: larger than %d bytes", ErrInvalidImage, MaxImageBytes)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: empty payload", ErrInvalidImage)
	}
	return data, ext, nil
}

// New builds the store selected by cfg.Backend.
func New(ctx context.Context, cfg config.ImagesConfig) (Store, error) {
	switch cfg.Backend {
	case config.ImageBackendS3:
		return NewS3Store(ctx, cfg)
	case config.ImageBackendDisk, "":
		return NewDiskStore(cfg.Dir, cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unknown image backend %q", cfg.Backend)
	}
}
