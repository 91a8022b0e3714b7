package compare

import (
	"ordercheck/internal/domain"
	"ordercheck/internal/normalize"
)

// headerRule compares one single-valued document field.
type headerRule struct {
	key   string
	field domain.FieldRole
	get   func(*domain.ParsedDocument) (value, bool)
}

func (r *headerRule) RuleKey() string         { return r.key }
func (r *headerRule) Field() domain.FieldRole { return r.field }

func (r *headerRule) Compare(oa, po *domain.ParsedDocument) []domain.Finding {
	oaVal, oaOK := docValue(oa, r.get)
	poVal, poOK := docValue(po, r.get)
	if !oaOK && !poOK {
		return nil
	}
	return []domain.Finding{{
		Field:          r.field,
		FieldName:      domain.FieldNames[r.field],
		Rule:           r.key,
		Classification: classify(oaOK, poOK, oaVal.key == poVal.key),
		OAValue:        oaVal.display,
		POValue:        poVal.display,
	}}
}

func docValue(doc *domain.ParsedDocument, get func(*domain.ParsedDocument) (value, bool)) (value, bool) {
	if doc == nil {
		return value{}, false
	}
	return get(doc)
}

// HeaderRules returns the built-in document-level rules.
func HeaderRules(poDelimiter string) []HeaderRule {
	return []HeaderRule{
		&headerRule{
			key: "po_number.prefix_stripped", field: domain.FieldPONumber,
			get: func(d *domain.ParsedDocument) (value, bool) {
				if d.PONumber == nil {
					return value{}, false
				}
				return value{display: *d.PONumber, key: normalize.PONumber(*d.PONumber, poDelimiter)}, true
			},
		},
		&headerRule{
			key: "ship_date.header", field: domain.FieldShipDate,
			get: func(d *domain.ParsedDocument) (value, bool) {
				if d.ShipDate == nil {
					return value{}, false
				}
				s := domain.FormatDate(*d.ShipDate)
				return value{display: s, key: s}, true
			},
		},
	}
}
