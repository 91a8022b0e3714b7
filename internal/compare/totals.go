package compare

import (
	"github.com/shopspring/decimal"

	"ordercheck/internal/domain"
)

// DefaultTolerance is the largest gap between a total difference and a surcharge sum
// that still counts as explained.
var DefaultTolerance = decimal.RequireFromString("0.005")

const orderTotalRule = "order_total.present"

// ReconcileTotals compares the final totals of both documents. A difference is explained
// when it equals the OA surcharges, the PO surcharges, or both together within tolerance.
func ReconcileTotals(oa, po domain.DocumentTotal, tolerance decimal.Decimal) (domain.TotalSummary, []domain.Finding) {
	summary := domain.TotalSummary{
		Verdict:      domain.TotalNotCompared,
		OATotal:      oa.Final,
		POTotal:      po.Final,
		SurchargeSum: oa.SurchargeSum().Add(po.SurchargeSum()),
	}

	switch {
	case oa.Final == nil && po.Final == nil:
		return summary, nil
	case oa.Final == nil:
		return summary, []domain.Finding{totalFinding(domain.ClassMissingOA, "", domain.FormatMoney(*po.Final))}
	case po.Final == nil:
		return summary, []domain.Finding{totalFinding(domain.ClassMissingPO, domain.FormatMoney(*oa.Final), "")}
	}

	diff := oa.Final.Sub(*po.Final).Abs()
	summary.Difference = diff
	if diff.IsZero() {
		summary.Verdict = domain.TotalMatch
		return summary, nil
	}

	summary.Verdict = domain.TotalUnexplained
	oaSum, poSum := oa.SurchargeSum(), po.SurchargeSum()
	for _, cand := range []decimal.Decimal{oaSum, poSum, oaSum.Add(poSum)} {
		if cand.IsZero() {
			continue
		}
		if cand.Abs().Sub(diff).Abs().LessThanOrEqual(tolerance) {
			summary.Verdict = domain.TotalTariffExplained
			summary.SurchargeSum = cand.Abs()
			break
		}
	}
	return summary, nil
}

func totalFinding(class domain.Classification, oa, po string) domain.Finding {
	return domain.Finding{
		Field:          domain.FieldFinalTotal,
		FieldName:      domain.FieldNames[domain.FieldFinalTotal],
		Rule:           orderTotalRule,
		Classification: class,
		OAValue:        oa,
		POValue:        po,
	}
}
