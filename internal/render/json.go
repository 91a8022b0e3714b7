package render

import (
	"encoding/json"
	"io"

	"ordercheck/internal/domain"
)

// JSON renders the reports and summary for machine consumers.
type JSON struct{}

func (JSON) Format() string      { return "json" }
func (JSON) ContentType() string { return "application/json" }
func (JSON) Extension() string   { return "json" }

type jsonText struct {
	Role  domain.DocumentRole `json:"role"`
	Name  string              `json:"name"`
	Lines []string            `json:"lines"`
}

type jsonSummary struct {
	Text  string `json:"text"`
	Model string `json:"model,omitempty"`
}

type jsonDocument struct {
	Reports []*domain.Report `json:"reports"`
	Summary *jsonSummary     `json:"summary,omitempty"`
	Texts   []jsonText       `json:"texts,omitempty"`
}

func (JSON) Render(w io.Writer, in Input) error {
	doc := jsonDocument{Reports: in.Reports}
	if doc.Reports == nil {
		doc.Reports = []*domain.Report{}
	}
	if in.Summary != nil {
		doc.Summary = &jsonSummary{Text: in.Summary.Text, Model: in.Summary.ModelUsed}
	}
	for _, t := range in.Texts {
		doc.Texts = append(doc.Texts, jsonText{Role: t.Role, Name: t.Name, Lines: t.Lines})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
