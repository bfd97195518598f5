// internal/common/storage/transient.go
package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"deal-hunter/internal/common/aws"
	"deal-hunter/internal/common/config"
)

// TransientStore stages short-lived public objects in a fixed bucket. Objects
// are written with overwrite semantics and must be removed by the caller.
type TransientStore struct {
	client        aws.S3API
	bucket        string
	region        string
	keyPrefix     string
	publicBaseURL string
}

func NewTransientStore(client aws.S3API, cfg config.StorageConfig) *TransientStore {
	return &TransientStore{
		client:        client,
		bucket:        cfg.Bucket,
		region:        cfg.Region,
		keyPrefix:     strings.Trim(cfg.KeyPrefix, "/"),
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}
}

func (s *TransientStore) key(name string) string {
	if s.keyPrefix == "" {
		return name
	}
	return s.keyPrefix + "/" + name
}

// Upload writes data under name, replacing any existing object.
func (s *TransientStore) Upload(ctx context.Context, name string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        sdkaws.String(s.bucket),
		Key:           sdkaws.String(s.key(name)),
		Body:          bytes.NewReader(data),
		ContentType:   sdkaws.String(contentType),
		ContentLength: sdkaws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("put object %s/%s: %w", s.bucket, s.key(name), err)
	}
	return nil
}

// PublicURL returns the anonymous read URL for name.
func (s *TransientStore) PublicURL(name string) string {
	escaped := (&url.URL{Path: s.key(name)}).EscapedPath()
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + escaped
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, escaped)
}

func (s *TransientStore) Remove(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: sdkaws.String(s.bucket),
		Key:    sdkaws.String(s.key(name)),
	})
	if err != nil {
		return fmt.Errorf("delete object %s/%s: %w", s.bucket, s.key(name), err)
	}
	return nil
}
