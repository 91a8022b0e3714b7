package render

import (
	"fmt"
	"io"
	"strings"

	"ordercheck/internal/domain"
	"ordercheck/internal/report"
)

// Markdown is the default human-readable rendering.
type Markdown struct{}

func (Markdown) Format() string      { return "markdown" }
func (Markdown) ContentType() string { return "text/markdown; charset=utf-8" }
func (Markdown) Extension() string   { return "md" }

func (Markdown) Render(w io.Writer, in Input) error {
	var b strings.Builder
	for i, r := range in.Reports {
		if i > 0 {
			b.WriteString("\n")
		}
		writeReport(&b, r)
	}

	if in.Summary != nil && strings.TrimSpace(in.Summary.Text) != "" {
		b.WriteString("\n## Summary\n\n")
		b.WriteString(strings.TrimSpace(in.Summary.Text))
		b.WriteString("\n")
	}

	if len(in.Texts) > 0 {
		b.WriteString("\n## Filtered text\n")
		for _, t := range in.Texts {
			fmt.Fprintf(&b, "\n### %s (%s)\n\n```\n", t.Role.Label(), t.Name)
			for _, line := range t.Lines {
				b.WriteString(line)
				b.WriteString("\n")
			}
			b.WriteString("```\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// ReportMarkdown renders a single report without summary or texts.
func ReportMarkdown(r *domain.Report) string {
	var b strings.Builder
	writeReport(&b, r)
	return b.String()
}

func writeReport(b *strings.Builder, r *domain.Report) {
	fmt.Fprintf(b, "# %s\n\n", report.Title(r))

	if len(r.DateTable) > 0 {
		fmt.Fprintf(b, "| %s line range | %s date | %s line range | %s date |\n", r.LeftLabel, r.LeftLabel, r.RightLabel, r.RightLabel)
		b.WriteString("|---|---|---|---|\n")
		for _, row := range r.DateTable {
			fmt.Fprintf(b, "| %s | %s | %s | %s |\n", orDash(row.OALines), orDash(row.OADate), orDash(row.POLines), orDash(row.PODate))
		}
		b.WriteString("\n")
	}

	for i, f := range r.Findings {
		fmt.Fprintf(b, "%d. %s\n", i+1, report.Describe(f, r.LeftLabel, r.RightLabel))
	}
	if len(r.Findings) > 0 {
		b.WriteString("\n")
	}

	b.WriteString(r.Status)
	b.WriteString("\n")

	if len(r.Warnings) > 0 {
		b.WriteString("\n## Warnings\n\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(b, "- %s\n", w.String())
		}
	}
}
