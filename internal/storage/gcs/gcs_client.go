// Package gcs reads source documents from and writes reports to Google Cloud Storage.
package gcs

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"ordercheck/internal/config"
	"ordercheck/internal/port"
)

type gcsClient struct {
	client *storage.Client
}

// NewGCSClient creates a GCS-backed ObjectStorage. Explicit credentials JSON takes
// precedence over application default credentials.
func NewGCSClient(ctx context.Context, cfg *config.GCSConfig, opts ...option.ClientOption) (port.ObjectStorage, error) {
	if strings.TrimSpace(cfg.CredentialsJSON) != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating gcs client: %w", err)
	}
	return &gcsClient{client: client}, nil
}

func (c *gcsClient) Upload(ctx context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	wc := c.client.Bucket(input.Bucket).Object(input.Key).NewWriter(ctx)
	wc.ContentType = input.ContentType

	if _, err := io.Copy(wc, input.Body); err != nil {
		_ = wc.Close()
		return nil, fmt.Errorf("gcs upload: %w", err)
	}
	if err := wc.Close(); err != nil {
		return nil, fmt.Errorf("gcs upload: %w", err)
	}

	out := &port.UploadOutput{Location: fmt.Sprintf("gs://%s/%s", input.Bucket, input.Key)}
	if attrs := wc.Attrs(); attrs != nil {
		out.ETag = attrs.Etag
	}
	return out, nil
}

func (c *gcsClient) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	rc, err := c.client.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs download: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("gcs download read: %w", err)
	}
	return data, nil
}
