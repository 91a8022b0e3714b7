package vocabulary

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"ordercheck/internal/domain"
)

//go:embed schema.json
var schemaJSON []byte

//go:embed default.json
var defaultJSON []byte

// RoleSpec is the vocabulary entry for one field role.
type RoleSpec struct {
	Keywords []string `json:"keywords,omitempty"`
	Patterns []string `json:"patterns,omitempty"`
}

type document struct {
	Version string              `json:"version"`
	Roles   map[string]RoleSpec `json:"roles"`
}

// Keyword is a lowercased trigger phrase for a role.
type Keyword struct {
	Role domain.FieldRole
	Text string
}

// Pattern is a case-insensitive regular expression for a role. When it has a capture
// group, the first group is the value.
type Pattern struct {
	Role domain.FieldRole
	Expr *regexp.Regexp
}

// Vocabulary maps field roles to the keywords and patterns that trigger them. It is
// immutable once built and safe to share between runs.
type Vocabulary struct {
	version  string
	keywords []Keyword
	patterns []Pattern
	roles    []domain.FieldRole
}

// Default returns the built-in vocabulary.
func Default() *Vocabulary {
	v, err := Parse(defaultJSON)
	if err != nil {
		panic(fmt.Sprintf("vocabulary: built-in default is invalid: %v", err))
	}
	return v
}

// DefaultJSON returns the raw built-in vocabulary document.
func DefaultJSON() []byte {
	return bytes.Clone(defaultJSON)
}

// Load reads and parses a vocabulary file. An empty path yields Default().
func Load(path string) (*Vocabulary, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vocabulary %s: %w", path, err)
	}
	v, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// Parse validates data against the vocabulary schema and builds a Vocabulary.
func Parse(data []byte) (*Vocabulary, error) {
	if err := validateSchema(data); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidVocabulary, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidVocabulary, err)
	}

	v := &Vocabulary{version: doc.Version}
	owner := make(map[string]domain.FieldRole)

	for _, role := range domain.AllFieldRoles {
		spec, ok := doc.Roles[string(role)]
		if !ok {
			continue
		}
		v.roles = append(v.roles, role)

		for _, kw := range spec.Keywords {
			text := strings.ToLower(strings.Join(strings.Fields(kw), " "))
			if text == "" {
				continue
			}
			if prev, dup := owner[text]; dup {
				if prev == role {
					continue
				}
				return nil, fmt.Errorf("%w: keyword %q is assigned to both %s and %s", domain.ErrInvalidVocabulary, text, prev, role)
			}
			owner[text] = role
			v.keywords = append(v.keywords, Keyword{Role: role, Text: text})
		}

		for _, expr := range spec.Patterns {
			re, err := regexp.Compile("(?i)" + expr)
			if err != nil {
				return nil, fmt.Errorf("%w: role %s pattern %q: %v", domain.ErrInvalidVocabulary, role, expr, err)
			}
			v.patterns = append(v.patterns, Pattern{Role: role, Expr: re})
		}
	}

	// Longest keywords first so that "line total" is tried before "line".
	sort.SliceStable(v.keywords, func(i, j int) bool {
		return len(v.keywords[i].Text) > len(v.keywords[j].Text)
	})
	return v, nil
}

func validateSchema(data []byte) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("vocabulary.schema.json", bytes.NewReader(schemaJSON)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("vocabulary.schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("unmarshal vocabulary: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("vocabulary does not match schema: %w", err)
	}
	return nil
}

// Version returns the vocabulary's declared version label.
func (v *Vocabulary) Version() string { return v.version }

// Keywords returns keywords ordered longest first.
func (v *Vocabulary) Keywords() []Keyword { return v.keywords }

// Patterns returns the compiled patterns in declaration order.
func (v *Vocabulary) Patterns() []Pattern { return v.patterns }

// Roles returns the roles the vocabulary defines.
func (v *Vocabulary) Roles() []domain.FieldRole { return v.roles }

// Has reports whether the vocabulary defines role.
func (v *Vocabulary) Has(role domain.FieldRole) bool {
	for _, r := range v.roles {
		if r == role {
			return true
		}
	}
	return false
}
