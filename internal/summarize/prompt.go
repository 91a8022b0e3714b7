package summarize

import (
	"fmt"
	"strings"

	"ordercheck/internal/port"
)

// maxPromptLines caps the filtered lines sent per document.
const maxPromptLines = 400

// SystemPrompt is the fixed instruction given to every provider.
const SystemPrompt = `You review a factory Order Acknowledgement (OA) against the buyer's Purchase Order (PO).
A rule engine has already compared the two documents line by line. Its report is authoritative.

IMPORTANT INSTRUCTIONS:
- Do not add, remove or re-judge discrepancies. Do not state that any field matches.
- Summarize the report for a buyer in plain text, at most 200 words.
- Group related discrepancies and name the line numbers that need follow-up with the factory.
- Mention warnings that could hide further problems, such as truncated pages or ambiguous alignment.
- Use the filtered document text and datasheet only to explain the findings, never to contradict them.`

// BuildPrompt returns the user message: the rendered report followed by the
// filtered text of every document.
func BuildPrompt(input port.SummaryInput) string {
	var b strings.Builder
	b.WriteString("## Discrepancy report\n\n")
	b.WriteString(strings.TrimSpace(input.ReportText))
	b.WriteString("\n")

	for _, doc := range input.Documents {
		fmt.Fprintf(&b, "\n## %s text (%s)\n\n", doc.Role.Label(), doc.Name)
		lines := doc.Lines
		if len(lines) > maxPromptLines {
			lines = lines[:maxPromptLines]
		}
		for _, l := range lines {
			b.WriteString(l)
			b.WriteString("\n")
		}
		if omitted := len(doc.Lines) - len(lines); omitted > 0 {
			fmt.Fprintf(&b, "(%d more lines omitted)\n", omitted)
		}
	}
	return b.String()
}
