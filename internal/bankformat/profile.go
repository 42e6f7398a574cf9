// Package bankformat describes the CSV export layouts of known banks and
// picks the layout that matches an uploaded file's header row.
package bankformat

import (
	"maps"
	"slices"
	"strings"
)

// Field is a logical column a profile knows how to find.
type Field string

const (
	FieldDate        Field = "date"
	FieldDescription Field = "description"
	FieldAmount      Field = "amount"
	FieldDebit       Field = "debit"
	FieldCredit      Field = "credit"
	FieldType        Field = "type"
	FieldCheckNumber Field = "check_number"
	FieldReference   Field = "reference"
	FieldPayee       Field = "payee"
	// FieldDetails is a secondary type code, such as Chase's DSLIP marker.
	FieldDetails     Field = "details"
)

// Fields lists every logical field.
var Fields = []Field{
	FieldDate, FieldDescription, FieldAmount, FieldDebit, FieldCredit,
	FieldType, FieldCheckNumber, FieldReference, FieldPayee, FieldDetails,
}

// ParseField returns the field named s, ignoring case.
func ParseField(s string) (Field, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, f := range Fields {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// Convention says how a profile encodes the sign of an amount.
type Convention string

const (
	// Signed is a single amount column, negative for money out.
	Signed Convention = "signed"
	// SplitDebitCredit uses separate unsigned debit and credit columns.
	SplitDebitCredit Convention = "split_debit_credit"
)

// PredicateKind selects how a Predicate tests the header set.
type PredicateKind string

const (
	AllOf  PredicateKind = "all_of"
	AnyOf  PredicateKind = "any_of"
	NoneOf PredicateKind = "none_of"
)

// Predicate is a test over header presence.
type Predicate struct {
	Kind    PredicateKind `yaml:"kind" json:"kind"`
	Headers []string      `yaml:"headers" json:"headers"`
}

// Eval reports whether the predicate holds for hs. Unknown kinds never hold.
func (p Predicate) Eval(hs HeaderSet) bool {
	switch p.Kind {
	case AllOf:
		for _, h := range p.Headers {
			if !hs.Has(h) {
				return false
			}
		}
		return len(p.Headers) > 0
	case AnyOf:
		for _, h := range p.Headers {
			if hs.Has(h) {
				return true
			}
		}
		return false
	case NoneOf:
		for _, h := range p.Headers {
			if hs.Has(h) {
				return false
			}
		}
		return true
	}
	return false
}

// Profile is one bank's export layout. Profiles are plain data so they
// can be listed, serialized and compared in tests.
type Profile struct {
	ID            string             `yaml:"id" json:"id"`
	DisplayName   string             `yaml:"display_name" json:"displayName"`
	Detect        []Predicate        `yaml:"detect" json:"detect"`
	Aliases       map[Field][]string `yaml:"aliases" json:"aliases"`
	DateLayouts   []string           `yaml:"date_layouts" json:"dateLayouts"`
	Convention    Convention         `yaml:"convention" json:"convention"`
	NegateAmounts bool               `yaml:"negate_amounts,omitempty" json:"negateAmounts,omitempty"`
}

// Matches reports whether every detect predicate holds for hs.
// A profile without predicates never matches.
func (p Profile) Matches(hs HeaderSet) bool {
	if len(p.Detect) == 0 {
		return false
	}
	for _, pred := range p.Detect {
		if !pred.Eval(hs) {
			return false
		}
	}
	return true
}

// IsGeneric reports whether p is the fallback profile.
func (p Profile) IsGeneric() bool {
	return p.ID == GenericID
}

// Field returns the first non-empty value among the aliases of f.
// Header names are compared case-insensitively.
func (p Profile) Field(row map[string]string, f Field) (string, bool) {
	for _, alias := range p.Aliases[f] {
		if v, ok := lookup(row, alias); ok {
			return v, true
		}
	}
	return "", false
}

// WithMapping returns a copy of p whose alias lists start with the
// caller's chosen header for each mapped field.
func (p Profile) WithMapping(mapping map[Field]string) Profile {
	aliases := make(map[Field][]string, len(p.Aliases)+len(mapping))
	for f, names := range p.Aliases {
		aliases[f] = append([]string(nil), names...)
	}
	for f, header := range mapping {
		if strings.TrimSpace(header) == "" {
			continue
		}
		aliases[f] = append([]string{header}, aliases[f]...)
	}
	p.Aliases = aliases
	return p
}

func lookup(row map[string]string, header string) (string, bool) {
	if v, ok := row[header]; ok {
		v = strings.TrimSpace(v)
		return v, v != ""
	}
	want := NormalizeHeader(header)
	for _, k := range slices.Sorted(maps.Keys(row)) {
		if NormalizeHeader(k) != want {
			continue
		}
		if v := strings.TrimSpace(row[k]); v != "" {
			return v, true
		}
	}
	return "", false
}

// HeaderSet is a set of normalized header names.
type HeaderSet map[string]struct{}

// NewHeaderSet normalizes headers into a set.
func NewHeaderSet(headers []string) HeaderSet {
	hs := make(HeaderSet, len(headers))
	for _, h := range headers {
		hs[NormalizeHeader(h)] = struct{}{}
	}
	return hs
}

// Has reports whether header is present.
func (hs HeaderSet) Has(header string) bool {
	_, ok := hs[NormalizeHeader(header)]
	return ok
}

// NormalizeHeader trims whitespace and a UTF-8 BOM and lower-cases h.
func NormalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToLower(strings.TrimSpace(h))
}
