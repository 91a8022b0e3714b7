package align

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"ordercheck/internal/classify"
	"ordercheck/internal/domain"
	"ordercheck/internal/normalize"
)

// Group reduces classified lines to header fields, line items and totals.
//
// A line whose line-number value parses opens (or rejoins) the item with that number;
// item fields on later lines attach to it. In a document without any line numbers,
// repeating a scalar field starts a new item. Scalar fields keep their first value.
func Group(res *classify.Result) (*domain.ParsedDocument, []domain.Warning) {
	b := &grouper{
		role:     res.Role,
		doc:      &domain.ParsedDocument{Role: res.Role, Items: []*domain.LineItem{}},
		byRange:  make(map[domain.LineRange]*domain.LineItem),
		numbered: hasLineNumbers(res.Lines),
	}
	for _, line := range res.Lines {
		b.addLine(line)
	}
	return b.doc, b.warnings
}

type grouper struct {
	role     domain.DocumentRole
	doc      *domain.ParsedDocument
	byRange  map[domain.LineRange]*domain.LineItem
	current  *domain.LineItem
	numbered bool
	warnings []domain.Warning
}

func hasLineNumbers(lines []domain.ClassifiedLine) bool {
	for _, l := range lines {
		for _, m := range l.Matches {
			if m.Role != domain.FieldLine {
				continue
			}
			if _, err := ParseLineRange(m.Value); err == nil {
				return true
			}
		}
	}
	return false
}

func (b *grouper) addLine(line domain.ClassifiedLine) {
	// A sub-line ("Line 10.1") details a component of its item. Its quantity and
	// price are not the item's.
	for _, m := range line.Matches {
		if m.Role == domain.FieldLine && IsSubLine(m.Value) {
			return
		}
	}

	// Prices on a total or tariff line belong to the document, not to an item.
	docLevel := line.Has(domain.FieldFinalTotal) || line.Has(domain.FieldTariff)

	for _, m := range line.Matches {
		switch m.Role {
		case domain.FieldLine:
			r, err := ParseLineRange(m.Value)
			if err != nil {
				continue
			}
			b.current = b.itemFor(r)
			b.touch(b.current, line.RawLine)

		case domain.FieldPONumber:
			if fields := strings.Fields(m.Value); len(fields) > 0 && b.doc.PONumber == nil {
				po := fields[0]
				b.doc.PONumber = &po
			}

		case domain.FieldFinalTotal:
			if amount, ok := b.docMoney(line, m); ok {
				b.doc.Total.Final = &amount
			}

		case domain.FieldTariff:
			if amount, ok := b.docMoney(line, m); ok {
				b.doc.Total.Surcharges = append(b.doc.Total.Surcharges, domain.Surcharge{
					Label:  line.Text,
					Amount: amount,
					Source: line.RawLine,
				})
			}

		default:
			if docLevel && (m.Role == domain.FieldUnitPrice || m.Role == domain.FieldExtendedPrice) {
				continue
			}
			b.addItemField(line, m)
		}
	}
}

func (b *grouper) itemFor(r domain.LineRange) *domain.LineItem {
	if it, ok := b.byRange[r]; ok {
		return it
	}
	rc := r
	it := &domain.LineItem{Range: &rc}
	b.byRange[r] = it
	b.doc.Items = append(b.doc.Items, it)
	return it
}

func (b *grouper) touch(it *domain.LineItem, src domain.RawLine) {
	if n := len(it.Sources); n > 0 && it.Sources[n-1] == src {
		return
	}
	it.Sources = append(it.Sources, src)
}

// docMoney reads an amount for a document-level role. When the segment after the
// keyword holds no amount, the rest of the line is tried ("Tariff amount: $252.00").
func (b *grouper) docMoney(line domain.ClassifiedLine, m domain.RoleMatch) (decimal.Decimal, bool) {
	if d, err := ParseMoney(m.Value); err == nil {
		return d, true
	}
	if d, err := ParseMoney(line.Text[m.End:]); err == nil {
		return d, true
	}
	if m.Value != "" {
		b.warn(domain.WarnUnparsedValue, line.RawLine, "", fmt.Sprintf("%s %q has no amount", domain.FieldNames[m.Role], m.Value))
	}
	return decimal.Zero, false
}

func (b *grouper) addItemField(line domain.ClassifiedLine, m domain.RoleMatch) {
	if m.Value == "" {
		// Column headings and labels without values.
		return
	}

	prev := b.current
	it := prev
	if it == nil {
		if b.numbered {
			if m.Role == domain.FieldShipDate && b.doc.ShipDate == nil {
				if d, err := ParseDate(m.Value); err == nil {
					b.doc.ShipDate = &d
					return
				}
			}
			b.warn(domain.WarnTruncation, line.RawLine, "", fmt.Sprintf("%s %q appears before the first line item and is ignored", domain.FieldNames[m.Role], m.Value))
			return
		}
		it = b.newUnnumbered()
	} else if !b.numbered && m.Role != domain.FieldTag && hasScalar(it, m.Role) {
		it = b.newUnnumbered()
	}

	if b.setField(it, line.RawLine, m) {
		b.touch(it, line.RawLine)
		return
	}
	if it != prev && len(it.Sources) == 0 {
		// Nothing usable landed on the fresh item.
		b.doc.Items = b.doc.Items[:len(b.doc.Items)-1]
		b.current = prev
	}
}

func (b *grouper) newUnnumbered() *domain.LineItem {
	it := &domain.LineItem{}
	b.doc.Items = append(b.doc.Items, it)
	b.current = it
	return it
}

func hasScalar(it *domain.LineItem, role domain.FieldRole) bool {
	switch role {
	case domain.FieldModel:
		return it.Model != nil
	case domain.FieldQuantity:
		return it.Quantity != nil
	case domain.FieldUnitPrice:
		return it.UnitPrice != nil
	case domain.FieldExtendedPrice:
		return it.ExtendedPrice != nil
	case domain.FieldShipDate:
		return it.ShipDate != nil
	case domain.FieldCalibration:
		return it.Calibration != nil
	}
	return false
}

// setField stores one value on it and reports whether the line contributed to the item.
func (b *grouper) setField(it *domain.LineItem, src domain.RawLine, m domain.RoleMatch) bool {
	name := domain.FieldNames[m.Role]
	switch m.Role {
	case domain.FieldTag:
		for _, tag := range SplitTags(m.Value) {
			if !containsTag(it.Tags, tag) {
				it.Tags = append(it.Tags, tag)
			}
		}
		return true

	case domain.FieldModel:
		v := normalize.Model(m.Value)
		return setString(b, it, src, &it.Model, v, name)

	case domain.FieldCalibration:
		v := normalize.Whitespace(m.Value)
		return setString(b, it, src, &it.Calibration, v, name)

	case domain.FieldQuantity:
		q, err := ParseQuantity(m.Value)
		if err != nil {
			b.warn(domain.WarnUnparsedValue, src, it.Ref(), fmt.Sprintf("%s %q: %v", name, m.Value, err))
			return false
		}
		if it.Quantity != nil {
			if *it.Quantity != q {
				b.conflict(it, src, name, fmt.Sprint(*it.Quantity), fmt.Sprint(q))
			}
			return true
		}
		it.Quantity = &q
		return true

	case domain.FieldUnitPrice, domain.FieldExtendedPrice:
		d, err := ParseMoney(m.Value)
		if err != nil {
			b.warn(domain.WarnUnparsedValue, src, it.Ref(), fmt.Sprintf("%s %q: %v", name, m.Value, err))
			return false
		}
		target := &it.UnitPrice
		if m.Role == domain.FieldExtendedPrice {
			target = &it.ExtendedPrice
		}
		if *target != nil {
			if !(*target).Equal(d) {
				b.conflict(it, src, name, domain.FormatMoney(**target), domain.FormatMoney(d))
			}
			return true
		}
		*target = &d
		return true

	case domain.FieldShipDate:
		d, err := ParseDate(m.Value)
		if err != nil {
			b.warn(domain.WarnUnparsedValue, src, it.Ref(), fmt.Sprintf("%s %q: %v", name, m.Value, err))
			return false
		}
		if it.ShipDate != nil {
			if !it.ShipDate.Equal(d) {
				b.conflict(it, src, name, domain.FormatDate(*it.ShipDate), domain.FormatDate(d))
			}
			return true
		}
		it.ShipDate = &d
		return true
	}
	return false
}

func setString(b *grouper, it *domain.LineItem, src domain.RawLine, target **string, v, name string) bool {
	if v == "" {
		return false
	}
	if *target != nil {
		if **target != v {
			b.conflict(it, src, name, **target, v)
		}
		return true
	}
	*target = &v
	return true
}

func containsTag(tags []string, tag string) bool {
	n := normalize.Tag(tag)
	for _, t := range tags {
		if normalize.Tag(t) == n {
			return true
		}
	}
	return false
}

func (b *grouper) conflict(it *domain.LineItem, src domain.RawLine, name, kept, ignored string) {
	b.warn(domain.WarnConflictingValue, src, it.Ref(), fmt.Sprintf("%s %q ignored, keeping %q", name, ignored, kept))
}

func (b *grouper) warn(kind domain.WarningKind, src domain.RawLine, lines, msg string) {
	b.warnings = append(b.warnings, domain.Warning{
		Kind:    kind,
		Role:    b.role,
		Page:    src.Page,
		Line:    src.Line,
		Lines:   lines,
		Message: msg,
	})
}
