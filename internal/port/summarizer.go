package port

import (
	"context"

	"ordercheck/internal/domain"
)

// FilteredText is the classified text of one document, as handed to a summarizer.
type FilteredText struct {
	Role  domain.DocumentRole
	Name  string
	Lines []string
}

// SummaryInput carries a computed report and the filtered texts it was built from.
type SummaryInput struct {
	Report     *domain.Report
	ReportText string
	Documents  []FilteredText
}

// SummaryOutput is the free-form text returned by an inference backend.
type SummaryOutput struct {
	Text       string
	ModelUsed  string
	PromptUsed string
}

// Summarizer produces a natural-language summary of an already computed report.
type Summarizer interface {
	Summarize(ctx context.Context, input SummaryInput) (*SummaryOutput, error)
}
