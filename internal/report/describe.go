package report

import (
	"fmt"

	"ordercheck/internal/domain"
)

// Describe renders one finding as a reviewer sentence, for example
// "OA line 10 / PO line 10: unit price differs (OA $3,499.61, PO $3,499.60)".
func Describe(f domain.Finding, left, right string) string {
	ref := f.LineRef(left, right)
	name := f.FieldName
	if name == "" {
		name = domain.FieldNames[f.Field]
	}
	switch f.Classification {
	case domain.ClassMismatch:
		return fmt.Sprintf("%s: %s differs (%s %s, %s %s)", ref, name, left, f.OAValue, right, f.POValue)
	case domain.ClassMissingOA:
		return fmt.Sprintf("%s: %s %s is on the %s but missing from the %s", ref, name, f.POValue, right, left)
	case domain.ClassMissingPO:
		return fmt.Sprintf("%s: %s %s is on the %s but missing from the %s", ref, name, f.OAValue, left, right)
	default:
		return fmt.Sprintf("%s: %s %s", ref, name, f.OAValue)
	}
}

// Title names the two sides of r, e.g. "OA vs PO".
func Title(r *domain.Report) string {
	return r.LeftLabel + " vs " + r.RightLabel
}
