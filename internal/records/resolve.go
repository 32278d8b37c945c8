package records

import (
	"fmt"
	"strings"

	"github.com/burrima/bank-statement-analysis/internal/model"
)

// UnknownColumnError reports a selector matching no schema column.
type UnknownColumnError struct {
	Selector string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown column %q", e.Selector)
}

// AmbiguousColumnError reports a selector contained in more than one
// schema column name.
type AmbiguousColumnError struct {
	Selector string
	Matches  []string
}

func (e *AmbiguousColumnError) Error() string {
	return fmt.Sprintf("ambiguous column %q: matches %s", e.Selector, strings.Join(e.Matches, ", "))
}

// ResolveColumn maps a user-supplied selector to a schema column index.
// An exact name match wins; otherwise the selector must be a case-sensitive
// substring of exactly one column name.
func ResolveColumn(schema model.Schema, selector string) (int, error) {
	if i := schema.Index(selector); i >= 0 {
		return i, nil
	}

	var matches []int
	for i, c := range schema.Columns {
		if strings.Contains(c.Name, selector) {
			matches = append(matches, i)
		}
	}

	switch len(matches) {
	case 0:
		return 0, &UnknownColumnError{Selector: selector}
	case 1:
		return matches[0], nil
	}

	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = schema.Columns[m].Name
	}
	return 0, &AmbiguousColumnError{Selector: selector, Matches: names}
}
