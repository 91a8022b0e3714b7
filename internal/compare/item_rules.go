package compare

import (
	"fmt"

	"github.com/shopspring/decimal"

	"ordercheck/internal/domain"
	"ordercheck/internal/normalize"
)

// value is one side of a scalar comparison: the text shown in reports and the key
// used for equality.
type value struct {
	display string
	key     string
}

// scalarRule compares one single-valued item field.
type scalarRule struct {
	key   string
	field domain.FieldRole
	get   func(*domain.LineItem) (value, bool)
}

func (r *scalarRule) RuleKey() string         { return r.key }
func (r *scalarRule) Field() domain.FieldRole { return r.field }

func (r *scalarRule) Compare(pair domain.AlignedPair) []domain.Finding {
	oa, oaOK := sideValue(pair.OA, r.get)
	po, poOK := sideValue(pair.PO, r.get)
	if !oaOK && !poOK {
		return nil
	}
	f := newFinding(r.key, r.field, pair)
	f.OAValue, f.POValue = oa.display, po.display
	f.Classification = classify(oaOK, poOK, oa.key == po.key)
	return []domain.Finding{f}
}

func sideValue(it *domain.LineItem, get func(*domain.LineItem) (value, bool)) (value, bool) {
	if it == nil {
		return value{}, false
	}
	return get(it)
}

func classify(oaOK, poOK, equal bool) domain.Classification {
	switch {
	case !oaOK:
		return domain.ClassMissingOA
	case !poOK:
		return domain.ClassMissingPO
	case equal:
		return domain.ClassMatch
	default:
		return domain.ClassMismatch
	}
}

func newFinding(rule string, field domain.FieldRole, pair domain.AlignedPair) domain.Finding {
	f := domain.Finding{Field: field, FieldName: domain.FieldNames[field], Rule: rule}
	if pair.OA != nil {
		f.OARange = pair.OA.Range
		f.OALines = pair.OA.Ref()
	}
	if pair.PO != nil {
		f.PORange = pair.PO.Range
		f.POLines = pair.PO.Ref()
	}
	return f
}

// tagRule compares tag sets after normalization.
type tagRule struct{}

func (tagRule) RuleKey() string         { return "tag.normalized_set" }
func (tagRule) Field() domain.FieldRole { return domain.FieldTag }

type tag struct {
	display string
	norm    string
}

func distinctTags(it *domain.LineItem) []tag {
	if it == nil {
		return nil
	}
	var out []tag
	seen := make(map[string]bool)
	for _, t := range it.Tags {
		n := normalize.Tag(t)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, tag{display: t, norm: n})
	}
	return out
}

// Compare emits a match for every shared tag, pairs the leftover tags of both sides in
// order as mismatches, and reports whatever remains as missing on the other side.
func (r tagRule) Compare(pair domain.AlignedPair) []domain.Finding {
	oaTags, poTags := distinctTags(pair.OA), distinctTags(pair.PO)
	if len(oaTags) == 0 && len(poTags) == 0 {
		return nil
	}

	poIndex := make(map[string]tag, len(poTags))
	for _, t := range poTags {
		poIndex[t.norm] = t
	}
	oaIndex := make(map[string]bool, len(oaTags))
	for _, t := range oaTags {
		oaIndex[t.norm] = true
	}

	var findings []domain.Finding
	emit := func(class domain.Classification, oa, po string) {
		f := newFinding(r.RuleKey(), domain.FieldTag, pair)
		f.Classification, f.OAValue, f.POValue = class, oa, po
		findings = append(findings, f)
	}

	var oaOnly, poOnly []tag
	for _, t := range oaTags {
		if p, ok := poIndex[t.norm]; ok {
			emit(domain.ClassMatch, t.display, p.display)
			continue
		}
		oaOnly = append(oaOnly, t)
	}
	for _, t := range poTags {
		if !oaIndex[t.norm] {
			poOnly = append(poOnly, t)
		}
	}

	n := min(len(oaOnly), len(poOnly))
	for i := 0; i < n; i++ {
		emit(domain.ClassMismatch, oaOnly[i].display, poOnly[i].display)
	}
	for _, t := range oaOnly[n:] {
		emit(domain.ClassMissingPO, t.display, "")
	}
	for _, t := range poOnly[n:] {
		emit(domain.ClassMissingOA, "", t.display)
	}
	return findings
}

// moneyRule compares amounts exactly. The key is the canonical decimal string, so
// 3499.60 and 3499.6 agree while 3499.61 does not.
func moneyRule(key string, field domain.FieldRole, get func(*domain.LineItem) *decimal.Decimal) *scalarRule {
	return &scalarRule{
		key: key, field: field,
		get: func(it *domain.LineItem) (value, bool) {
			d := get(it)
			if d == nil {
				return value{}, false
			}
			return value{display: domain.FormatMoney(*d), key: d.String()}, true
		},
	}
}

// ItemRules returns the built-in item rules in report order.
func ItemRules() []ItemRule {
	return []ItemRule{
		&scalarRule{
			key: "model.exact", field: domain.FieldModel,
			get: func(it *domain.LineItem) (value, bool) {
				if it.Model == nil {
					return value{}, false
				}
				m := normalize.Model(*it.Model)
				return value{display: m, key: m}, true
			},
		},
		tagRule{},
		&scalarRule{
			key: "quantity.exact", field: domain.FieldQuantity,
			get: func(it *domain.LineItem) (value, bool) {
				if it.Quantity == nil {
					return value{}, false
				}
				q := fmt.Sprint(*it.Quantity)
				return value{display: q, key: q}, true
			},
		},
		moneyRule("unit_price.cents", domain.FieldUnitPrice, func(it *domain.LineItem) *decimal.Decimal {
			return it.UnitPrice
		}),
		moneyRule("extended_price.cents", domain.FieldExtendedPrice, func(it *domain.LineItem) *decimal.Decimal {
			return it.ExtendedPrice
		}),
		&scalarRule{
			key: "ship_date.exact", field: domain.FieldShipDate,
			get: func(it *domain.LineItem) (value, bool) {
				if it.ShipDate == nil {
					return value{}, false
				}
				d := domain.FormatDate(*it.ShipDate)
				return value{display: d, key: d}, true
			},
		},
		&scalarRule{
			key: "calibration.whitespace", field: domain.FieldCalibration,
			get: func(it *domain.LineItem) (value, bool) {
				if it.Calibration == nil {
					return value{}, false
				}
				c := normalize.Whitespace(*it.Calibration)
				if c == "" {
					return value{}, false
				}
				return value{display: c, key: c}, true
			},
		},
	}
}
