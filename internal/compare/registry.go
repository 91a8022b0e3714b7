// Package compare holds the field comparison rules and the engine that applies them
// to aligned documents.
package compare

import "ordercheck/internal/domain"

// ItemRule compares one field of an aligned item pair.
type ItemRule interface {
	RuleKey() string
	Field() domain.FieldRole
	Compare(pair domain.AlignedPair) []domain.Finding
}

// HeaderRule compares one document-level field.
type HeaderRule interface {
	RuleKey() string
	Field() domain.FieldRole
	Compare(oa, po *domain.ParsedDocument) []domain.Finding
}

// Registry keeps rules in registration order. Registering a key again replaces the
// rule in place.
type Registry struct {
	items   []ItemRule
	headers []HeaderRule
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// DefaultRegistry returns a registry holding every built-in rule. poDelimiter ends the
// factory order prefix stripped from PO numbers.
func DefaultRegistry(poDelimiter string) *Registry {
	r := NewRegistry()
	for _, rule := range ItemRules() {
		r.RegisterItem(rule)
	}
	for _, rule := range HeaderRules(poDelimiter) {
		r.RegisterHeader(rule)
	}
	return r
}

// RegisterItem adds an item rule.
func (r *Registry) RegisterItem(rule ItemRule) {
	for i, existing := range r.items {
		if existing.RuleKey() == rule.RuleKey() {
			r.items[i] = rule
			return
		}
	}
	r.items = append(r.items, rule)
}

// RegisterHeader adds a header rule.
func (r *Registry) RegisterHeader(rule HeaderRule) {
	for i, existing := range r.headers {
		if existing.RuleKey() == rule.RuleKey() {
			r.headers[i] = rule
			return
		}
	}
	r.headers = append(r.headers, rule)
}

// Item returns the item rule for key, or nil if not found.
func (r *Registry) Item(key string) ItemRule {
	for _, rule := range r.items {
		if rule.RuleKey() == key {
			return rule
		}
	}
	return nil
}

// Header returns the header rule for key, or nil if not found.
func (r *Registry) Header(key string) HeaderRule {
	for _, rule := range r.headers {
		if rule.RuleKey() == key {
			return rule
		}
	}
	return nil
}

// Items returns the item rules in order.
func (r *Registry) Items() []ItemRule {
	return append([]ItemRule(nil), r.items...)
}

// Headers returns the header rules in order.
func (r *Registry) Headers() []HeaderRule {
	return append([]HeaderRule(nil), r.headers...)
}

// Keys returns every rule key, header rules first.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.items)+len(r.headers))
	for _, rule := range r.headers {
		keys = append(keys, rule.RuleKey())
	}
	for _, rule := range r.items {
		keys = append(keys, rule.RuleKey())
	}
	return keys
}
