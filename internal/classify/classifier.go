package classify

import (
	"ordercheck/internal/domain"
	"ordercheck/internal/vocabulary"
)

// Result is the classified subsequence of a document. Dropped lines matched no role
// and cannot be recovered for comparison.
type Result struct {
	Role    domain.DocumentRole
	Name    string
	Lines   []domain.ClassifiedLine
	Total   int
	Dropped int
}

// Empty reports whether no line carried a recognized role.
func (r *Result) Empty() bool {
	return len(r.Lines) == 0
}

// Texts returns the text of every kept line in order.
func (r *Result) Texts() []string {
	out := make([]string, len(r.Lines))
	for i, l := range r.Lines {
		out[i] = l.Text
	}
	return out
}

// Classifier tags lines with field roles from a vocabulary and drops the rest.
type Classifier struct {
	vocab *vocabulary.Vocabulary
}

// New creates a Classifier over vocab.
func New(vocab *vocabulary.Vocabulary) *Classifier {
	return &Classifier{vocab: vocab}
}

// Classify keeps the lines of doc that carry at least one role, in their original order.
func (c *Classifier) Classify(doc *domain.Document) *Result {
	res := &Result{Role: doc.Role, Name: doc.Name, Total: len(doc.Lines)}
	for _, line := range doc.Lines {
		matches := c.Match(line.Text)
		if len(matches) == 0 {
			res.Dropped++
			continue
		}
		res.Lines = append(res.Lines, domain.ClassifiedLine{RawLine: line, Matches: matches})
	}
	return res
}
