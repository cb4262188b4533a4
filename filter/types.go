package filter

import "fmt"

// Kind discriminates the supported predicate shapes.
type Kind string

const (
	// KindRange selects rows where a numeric field falls within a closed interval.
	KindRange Kind = "range"

	// KindCategorical selects rows where a field equals one of an enumerated
	// set of string values.
	KindCategorical Kind = "categorical"
)

// Filter is one AND-ed predicate on a single field.
//
// The set of implementations is closed: Range and Categorical are the only
// shapes the upstream widget emits. Filters are immutable value objects,
// built fresh on each parse and discarded after use.
type Filter interface {
	// Field returns the column the predicate constrains.
	Field() string

	// Kind returns the predicate shape.
	Kind() Kind

	isFilter()
}

// Filters is an ordered list of predicates combined with AND.
// Order mirrors clause order in the source text; nil means "no filter".
type Filters []Filter

// Range constrains a numeric field to the closed interval [Min, Max].
// Min <= Max is inherited from source order, not enforced.
type Range struct {
	Name string
	Min  float64
	Max  float64
}

func (r Range) Field() string { return r.Name }

func (Range) Kind() Kind { return KindRange }

func (Range) isFilter() {}

// Categorical constrains a field to an enumerated set of string values.
// Values has at least one entry; values may contain internal whitespace.
type Categorical struct {
	Name   string
	Values []string
}

func (c Categorical) Field() string { return c.Name }

func (Categorical) Kind() Kind { return KindCategorical }

func (Categorical) isFilter() {}

// UnsupportedConditionError reports a WHERE sub-condition that matches none
// of the supported predicate shapes. Extraction fails as a whole; partial
// results are never returned.
type UnsupportedConditionError struct {
	// Condition is the exact offending sub-condition text.
	Condition string
}

func (e *UnsupportedConditionError) Error() string {
	return fmt.Sprintf("filter: unsupported condition %q", e.Condition)
}
