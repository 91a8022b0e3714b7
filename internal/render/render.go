// Package render writes comparison reports as markdown, JSON, CSV, XLSX or PDF.
package render

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"ordercheck/internal/domain"
	"ordercheck/internal/port"
)

// ErrUnknownFormat is returned for an unregistered output format.
var ErrUnknownFormat = errors.New("unknown report format")

// Input is everything a renderer may show. Reports holds the primary comparison first.
type Input struct {
	Reports []*domain.Report
	Summary *port.SummaryOutput
	Texts   []port.FilteredText
}

// Renderer writes an Input in one output format.
type Renderer interface {
	Format() string
	ContentType() string
	Extension() string
	Render(w io.Writer, in Input) error
}

// Registry maps format names to renderers.
type Registry struct {
	renderers map[string]Renderer
}

// NewRegistry creates a Registry holding every built-in renderer.
func NewRegistry() *Registry {
	r := &Registry{renderers: make(map[string]Renderer)}
	for _, rd := range []Renderer{Markdown{}, JSON{}, CSV{}, XLSX{}, PDF{}} {
		r.Register(rd)
	}
	return r
}

// Register adds a renderer, replacing any with the same format.
func (r *Registry) Register(rd Renderer) {
	r.renderers[rd.Format()] = rd
}

// Get returns the renderer for format.
func (r *Registry) Get(format string) (Renderer, error) {
	rd, ok := r.renderers[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return rd, nil
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename replaces characters outside [A-Za-z0-9_-] with underscores,
// collapses runs and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a report file name.
// Format: ordercheck_{sanitized_run_id}_{YYYY-MM-DD}.{ext}
func BuildFilename(runID, ext string, now time.Time) string {
	return fmt.Sprintf("ordercheck_%s_%s.%s", SanitizeFilename(runID), now.Format("2006-01-02"), ext)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
