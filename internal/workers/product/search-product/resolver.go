// internal/workers/product/search-product/resolver.go
package searchproduct

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"deal-hunter/internal/common/errors"
)

const (
	uploadContentType = "image/jpeg"
	base64Marker      = "base64,"
)

// ObjectStore stages inline images so the search provider can fetch them.
type ObjectStore interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) error
	PublicURL(name string) string
	Remove(ctx context.Context, name string) error
}

// Resolver turns a search request's image input into a public URL.
type Resolver struct {
	store    ObjectStore
	maxBytes int64
	newName  func() string
}

func NewResolver(store ObjectStore, maxBytes int64) *Resolver {
	return &Resolver{
		store:    store,
		maxBytes: maxBytes,
		newName:  objectName,
	}
}

// objectName is unique per call: a millisecond timestamp plus a random UUID.
func objectName() string {
	return fmt.Sprintf("%d-%s.jpg", time.Now().UnixMilli(), uuid.NewString())
}

// Resolve passes URL-mode input through untouched and uploads inline bytes.
// Failures are invalid-input or upload-failed errors.
func (r *Resolver) Resolve(ctx context.Context, input string, isURLMode bool) (*ResolvedImage, error) {
	if isURLMode {
		publicURL, err := validateImageURL(input)
		if err != nil {
			return nil, err
		}
		return &ResolvedImage{PublicURL: publicURL}, nil
	}

	data, err := r.decode(input)
	if err != nil {
		return nil, err
	}

	name := r.newName()
	if err := r.store.Upload(ctx, name, data, uploadContentType); err != nil {
		return nil, errors.NewUploadFailedError(err)
	}

	return &ResolvedImage{
		PublicURL:   r.store.PublicURL(name),
		IsTemporary: true,
		ObjectName:  name,
	}, nil
}

// Release removes the staged object behind img. It is a no-op for
// non-temporary images.
func (r *Resolver) Release(ctx context.Context, img *ResolvedImage) error {
	if img == nil || !img.IsTemporary {
		return nil
	}
	return r.store.Remove(ctx, img.ObjectName)
}

func (r *Resolver) decode(input string) ([]byte, error) {
	payload := input
	if idx := strings.Index(payload, base64Marker); idx >= 0 {
		payload = payload[idx+len(base64Marker):]
	}
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, errors.NewInvalidInputError("image payload is empty")
	}

	if r.maxBytes > 0 && int64(base64.StdEncoding.DecodedLen(len(payload))) > r.maxBytes+2 {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("image payload exceeds %d bytes", r.maxBytes))
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(payload)
	}
	if err != nil {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("image payload is not valid base64: %v", err))
	}
	if len(data) == 0 {
		return nil, errors.NewInvalidInputError("image payload is empty")
	}
	if r.maxBytes > 0 && int64(len(data)) > r.maxBytes {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("image payload exceeds %d bytes", r.maxBytes))
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil && !isHEIFFamily(data) {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("image payload is not a recognised image: %v", err))
	}
	return data, nil
}

// heifBrands are ISO-BMFF major brands of HEIC, HEIF and AVIF photos. No
// decoder is registered for them; the provider fetches them as-is.
var heifBrands = map[string]bool{
	"heic": true, "heix": true, "hevc": true, "hevx": true,
	"heim": true, "heis": true, "mif1": true, "msf1": true,
	"avif": true, "avis": true,
}

// isHEIFFamily checks for an "ftyp" box with a HEIF-family major brand.
func isHEIFFamily(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	return heifBrands[string(data[8:12])]
}

func validateImageURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	u, err := url.Parse(trimmed)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", errors.NewInvalidInputError("image URL must be an absolute http(s) URL")
	}
	return trimmed, nil
}
