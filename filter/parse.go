package filter

import (
	"regexp"
	"strconv"
	"strings"
)

// number matches a SQL numeric literal as the widget prints one.
const number = `-?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?`

var (
	whereRe       = regexp.MustCompile(`(?is)\bWHERE\s+(.*?)(?:\s+ORDER\s+BY\b|\s+GROUP\s+BY\b|\s+LIMIT\b|$)`)
	notDistinctRe = regexp.MustCompile(`(?i)^"([^"]+)"\s+IS\s+NOT\s+DISTINCT\s+FROM\s+'(.*)'$`)
	betweenRe     = regexp.MustCompile(`(?i)^"([^"]+)"\s+BETWEEN\s+(` + number + `)\s+AND\s+(` + number + `)$`)
	inListRe      = regexp.MustCompile(`(?i)^"([^"]+)"\s+IN\s+\((.+)\)$`)
	inValueRe     = regexp.MustCompile(`'([^']*)'`)
)

// Extract parses the WHERE clause of a widget-emitted SELECT statement into
// structured filters.
//
// The clause is located by a single case-insensitive match terminated by
// ORDER BY, GROUP BY, LIMIT or end of string. No WHERE clause is not an
// error: the result is nil ("no filter") and callers fall back to the
// unfiltered view.
//
// Compound predicates are assumed to be independently parenthesized
// AND-combined conditions, split on the literal ") AND (" separator. Each
// sub-condition must match one of the supported shapes; anything else
// (OR, negation, nested grouping, other operators) fails the whole
// extraction with *UnsupportedConditionError.
func Extract(sql string) (Filters, error) {
	m := whereRe.FindStringSubmatch(sql)
	if m == nil {
		return nil, nil
	}

	conds := strings.Split(m[1], ") AND (")
	conds[0] = strings.TrimPrefix(conds[0], "(")
	last := len(conds) - 1
	conds[last] = strings.TrimSuffix(conds[last], ")")

	fs := make(Filters, 0, len(conds))
	for _, cond := range conds {
		f, err := parseCondition(strings.TrimSpace(cond))
		if err != nil {
			return nil, err
		}
		fs = append(fs, f)
	}
	return fs, nil
}

// parseCondition classifies a single sub-condition.
func parseCondition(cond string) (Filter, error) {
	if m := notDistinctRe.FindStringSubmatch(cond); m != nil {
		return Categorical{Name: m[1], Values: []string{m[2]}}, nil
	}

	if m := betweenRe.FindStringSubmatch(cond); m != nil {
		lo, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return nil, &UnsupportedConditionError{Condition: cond}
		}
		hi, err := strconv.ParseFloat(m[3], 64)
		if err != nil {
			return nil, &UnsupportedConditionError{Condition: cond}
		}
		return Range{Name: m[1], Min: lo, Max: hi}, nil
	}

	if m := inListRe.FindStringSubmatch(cond); m != nil {
		var values []string
		for _, v := range inValueRe.FindAllStringSubmatch(m[2], -1) {
			values = append(values, v[1])
		}
		if len(values) > 0 {
			return Categorical{Name: m[1], Values: values}, nil
		}
	}

	return nil, &UnsupportedConditionError{Condition: cond}
}
