// Package storage keeps uploaded recipe images on S3 or the local disk.
package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidImage is returned for payloads that are not base64 image data URLs.
var ErrInvalidImage = errors.New("image must be a base64 encoded data URL")

// ImageStore saves image bytes and returns the public URL they are served from.
type ImageStore interface {
	Save(ctx context.Context, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}

var extensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// DecodeDataURL parses "data:image/<type>;base64,<payload>" and checks that
// the decoded bytes really are an image of a supported type.
func DecodeDataURL(s string) ([]byte, string, error) {
	header, payload, ok := strings.Cut(s, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, "", ErrInvalidImage
	}
	declared := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
	if _, ok := extensions[declared]; !ok {
		return nil, "", fmt.Errorf("%w: unsupported type %q", ErrInvalidImage, declared)
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil || len(data) == 0 {
		return nil, "", ErrInvalidImage
	}

	detected := http.DetectContentType(data)
	if _, ok := extensions[detected]; !ok {
		return nil, "", fmt.Errorf("%w: content is %s", ErrInvalidImage, detected)
	}
	return data, detected, nil
}

// objectKey names a new recipe image object.
func objectKey(contentType string) string {
	return fmt.Sprintf("recipes/images/%s.%s", uuid.NewString(), extensions[contentType])
}
