package compare

import (
	"github.com/shopspring/decimal"

	"ordercheck/internal/domain"
)

// Outcome is everything the engine computed for one document pair.
type Outcome struct {
	Findings []domain.Finding
	Total    domain.TotalSummary
}

// Engine applies a rule registry to aligned documents.
type Engine struct {
	registry  *Registry
	tolerance decimal.Decimal
}

// NewEngine creates an Engine. A negative tolerance falls back to DefaultTolerance.
func NewEngine(registry *Registry, tolerance decimal.Decimal) *Engine {
	if tolerance.IsNegative() {
		tolerance = DefaultTolerance
	}
	return &Engine{registry: registry, tolerance: tolerance}
}

// Compare emits header findings first, then the findings of each pair in order, then
// any order total finding. Match findings are included.
func (e *Engine) Compare(oa, po *domain.ParsedDocument, pairs []domain.AlignedPair) Outcome {
	var findings []domain.Finding
	for _, rule := range e.registry.Headers() {
		findings = append(findings, rule.Compare(oa, po)...)
	}
	for i, pair := range pairs {
		for _, rule := range e.registry.Items() {
			for _, f := range rule.Compare(pair) {
				f.Pair = i + 1
				findings = append(findings, f)
			}
		}
	}

	var oaTotal, poTotal domain.DocumentTotal
	if oa != nil {
		oaTotal = oa.Total
	}
	if po != nil {
		poTotal = po.Total
	}
	total, totalFindings := ReconcileTotals(oaTotal, poTotal, e.tolerance)
	findings = append(findings, totalFindings...)

	return Outcome{Findings: findings, Total: total}
}
