package align

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ordercheck/internal/domain"
)

var (
	errNoValue       = errors.New("no value found")
	errFractionalQty = errors.New("quantity is not a whole number")

	reMoney    = regexp.MustCompile(`(?i)(-)?(usd\s*|us\$|\$)?\s*(-)?(\d{1,3}(?:,\d{3})+|\d+)(\.\d+)?`)
	reQuantity = regexp.MustCompile(`(\d{1,3}(?:,\d{3})+|\d+)(?:\.(\d+))?`)
	reRange    = regexp.MustCompile(`^\s*0*(\d{1,6})(?:\s*(?:-|–|to|thru|through)\s*0*(\d{1,6}))?\b`)
	reTagSplit = regexp.MustCompile(`[,;]`)
)

// ParseMoney reads the first currency-marked amount in s, or the first number when
// none is marked. Thousands separators are dropped and the value is exact.
func ParseMoney(s string) (decimal.Decimal, error) {
	matches := reMoney.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return decimal.Zero, errNoValue
	}
	pick := matches[0]
	for _, m := range matches {
		if m[2] != "" {
			pick = m
			break
		}
	}
	num := strings.ReplaceAll(pick[4], ",", "") + pick[5]
	d, err := decimal.NewFromString(num)
	if err != nil {
		return decimal.Zero, err
	}
	if pick[1] == "-" || pick[3] == "-" {
		d = d.Neg()
	}
	return d, nil
}

// ParseQuantity reads the first whole number in s. "2.00" is accepted as 2.
func ParseQuantity(s string) (int, error) {
	m := reQuantity.FindStringSubmatch(s)
	if m == nil {
		return 0, errNoValue
	}
	if frac := strings.Trim(m[2], "0"); frac != "" {
		return 0, errFractionalQty
	}
	return strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
}

type dateForm struct {
	expr    *regexp.Regexp
	layouts []string
}

// Numeric dates are read month first.
var dateForms = []dateForm{
	{regexp.MustCompile(`\b\d{4}-\d{1,2}-\d{1,2}\b`), []string{"2006-1-2"}},
	{regexp.MustCompile(`\b\d{4}/\d{1,2}/\d{1,2}\b`), []string{"2006/1/2"}},
	{regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`), []string{"1/2/2006"}},
	{regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2}\b`), []string{"1/2/06"}},
	{regexp.MustCompile(`\b\d{1,2}[- ][A-Za-z]{3,9}\.?[- ]\d{4}\b`), []string{"2-Jan-2006", "2 Jan 2006", "2-January-2006", "2 January 2006"}},
	{regexp.MustCompile(`\b[A-Za-z]{3,9}\.? \d{1,2},? \d{4}\b`), []string{"Jan 2, 2006", "January 2, 2006", "Jan 2 2006", "January 2 2006"}},
}

// ParseDate reads the first calendar date in s.
func ParseDate(s string) (time.Time, error) {
	for _, form := range dateForms {
		for _, cand := range form.expr.FindAllString(s, -1) {
			cand = strings.Replace(cand, ".", "", 1)
			for _, layout := range form.layouts {
				if t, err := time.Parse(layout, cand); err == nil {
					return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
				}
			}
		}
	}
	return time.Time{}, errNoValue
}

// ParseLineRange reads a printed item line number ("10") or range ("10-30", "10 to 30").
// Sub-line numbers such as "10.1" are not item numbers.
func ParseLineRange(s string) (domain.LineRange, error) {
	m := reRange.FindStringSubmatch(s)
	if m == nil || isSubLine(s[len(m[0]):]) {
		return domain.LineRange{}, errNoValue
	}
	start, err := strconv.Atoi(m[1])
	if err != nil {
		return domain.LineRange{}, err
	}
	r := domain.LineRange{Start: start, End: start}
	if m[2] != "" {
		end, err := strconv.Atoi(m[2])
		if err == nil && end >= start {
			r.End = end
		}
	}
	return r, nil
}

// IsSubLine reports whether s starts with a printed sub-line number such as "10.1".
func IsSubLine(s string) bool {
	m := reRange.FindStringSubmatch(s)
	return m != nil && isSubLine(s[len(m[0]):])
}

func isSubLine(rest string) bool {
	return len(rest) > 1 && rest[0] == '.' && rest[1] >= '0' && rest[1] <= '9'
}

// SplitTags splits a tag value on commas and semicolons.
func SplitTags(s string) []string {
	var out []string
	for _, part := range reTagSplit.Split(s, -1) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
