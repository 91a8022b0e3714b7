// Package local implements ObjectStorage on the local filesystem. The bucket is
// ignored and the key is a file path.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"ordercheck/internal/port"
)

type fileStore struct{}

// New returns a filesystem ObjectStorage.
func New() port.ObjectStorage {
	return fileStore{}
}

func (fileStore) Upload(ctx context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if dir := filepath.Dir(input.Key); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("local upload: %w", err)
		}
	}
	f, err := os.Create(input.Key)
	if err != nil {
		return nil, fmt.Errorf("local upload: %w", err)
	}
	if _, err := io.Copy(f, input.Body); err != nil {
		f.Close()
		return nil, fmt.Errorf("local upload: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("local upload: %w", err)
	}
	return &port.UploadOutput{Location: input.Key}, nil
}

func (fileStore) Download(ctx context.Context, _, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(key)
	if err != nil {
		return nil, fmt.Errorf("local download: %w", err)
	}
	return data, nil
}
