package port

import (
	"context"

	"ordercheck/internal/domain"
)

// ExtractInput carries one document to be turned into text lines.
type ExtractInput struct {
	Role   domain.DocumentRole
	Name   string
	Format domain.Format // empty means detect from name and content
	Data   []byte
}

// TextExtractor turns document bytes into ordered raw lines.
type TextExtractor interface {
	Extract(ctx context.Context, input ExtractInput) (*domain.Document, error)
}
