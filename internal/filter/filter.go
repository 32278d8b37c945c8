// Package filter implements the comma-separated clause language used to
// narrow the record set, e.g. "Kategorie=unknown,Belastung>50". Parsing
// (including column resolution and operand coercion) is separate from
// evaluation so malformed expressions fail before any record is touched.
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/burrima/bank-statement-analysis/internal/model"
	"github.com/burrima/bank-statement-analysis/internal/records"
)

// Op is a filter clause operator.
type Op int

const (
	OpEq          Op = iota // exact, type-coerced equality
	OpLess                  // numeric less-than
	OpGreater               // numeric greater-than
	OpContains              // substring containment
	OpNotContains           // substring absence
)

// String returns the operator's source form.
func (o Op) String() string {
	switch o {
	case OpEq:
		return "="
	case OpLess:
		return "<"
	case OpGreater:
		return ">"
	case OpContains:
		return "?"
	case OpNotContains:
		return "!"
	}
	return "invalid"
}

const opRunes = "=<>?!"

// SyntaxError reports a clause that does not fit the grammar.
type SyntaxError struct {
	Clause string
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("filter clause %q: %s", e.Clause, e.Reason)
}

// InvalidOperandError reports an operand that does not coerce to the
// resolved column's type.
type InvalidOperandError struct {
	Column  string
	Operand string
	Kind    model.Kind
}

func (e *InvalidOperandError) Error() string {
	return fmt.Sprintf("operand %q does not parse as %s (column %s)", e.Operand, e.Kind, e.Column)
}

// TypeError reports a relational operator applied to a non-numeric column.
type TypeError struct {
	Column string
	Op     Op
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("operator %s requires a numeric column, %s is not", e.Op, e.Column)
}

// Clause is one parsed selector-operator-operand unit, with the column
// resolved and the operand coerced.
type Clause struct {
	Column  string
	Op      Op
	Operand string

	index  int
	kind   model.Kind
	number decimal.Decimal
	date   time.Time
}

// Expression is the conjunction of its clauses. The zero Expression is the
// identity filter.
type Expression struct {
	Clauses []Clause
}

// Parse builds an Expression from a filter string against a schema. An
// empty string yields the identity filter.
func Parse(expr string, schema model.Schema) (*Expression, error) {
	out := &Expression{}
	if strings.TrimSpace(expr) == "" {
		return out, nil
	}

	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		clause, err := parseClause(part, schema)
		if err != nil {
			return nil, err
		}
		out.Clauses = append(out.Clauses, clause)
	}
	return out, nil
}

func parseClause(part string, schema model.Schema) (Clause, error) {
	i := strings.IndexAny(part, opRunes)
	if i < 0 {
		return Clause{}, &SyntaxError{Clause: part, Reason: "missing operator (one of = < > ? !)"}
	}

	selector := strings.TrimSpace(part[:i])
	if selector == "" {
		return Clause{}, &SyntaxError{Clause: part, Reason: "empty column selector"}
	}
	operand := strings.TrimSpace(part[i+1:])

	var op Op
	switch part[i] {
	case '=':
		op = OpEq
	case '<':
		op = OpLess
	case '>':
		op = OpGreater
	case '?':
		op = OpContains
	case '!':
		op = OpNotContains
	}

	idx, err := records.ResolveColumn(schema, selector)
	if err != nil {
		return Clause{}, err
	}
	col := schema.Columns[idx]

	c := Clause{Column: col.Name, Op: op, Operand: operand, index: idx, kind: col.Kind}

	switch op {
	case OpLess, OpGreater:
		if col.Kind != model.KindNumber {
			return Clause{}, &TypeError{Column: col.Name, Op: op}
		}
		c.number, err = decimal.NewFromString(operand)
		if err != nil {
			return Clause{}, &InvalidOperandError{Column: col.Name, Operand: operand, Kind: col.Kind}
		}
	case OpEq:
		switch col.Kind {
		case model.KindNumber:
			c.number, err = decimal.NewFromString(operand)
			if err != nil {
				return Clause{}, &InvalidOperandError{Column: col.Name, Operand: operand, Kind: col.Kind}
			}
		case model.KindDate:
			c.date, err = time.Parse(col.Layout, operand)
			if err != nil {
				return Clause{}, &InvalidOperandError{Column: col.Name, Operand: operand, Kind: col.Kind}
			}
		}
	}

	return c, nil
}

// Match reports whether a record satisfies every clause.
func (e *Expression) Match(rec model.Record) bool {
	for _, c := range e.Clauses {
		if !c.match(rec.Values[c.index]) {
			return false
		}
	}
	return true
}

func (c Clause) match(v model.Value) bool {
	switch c.Op {
	case OpEq:
		switch c.kind {
		case model.KindNumber:
			return v.Number.Equal(c.number)
		case model.KindDate:
			return v.Date.Equal(c.date)
		}
		return v.Text == c.Operand
	case OpLess:
		return v.Number.LessThan(c.number)
	case OpGreater:
		return v.Number.GreaterThan(c.number)
	case OpContains:
		return strings.Contains(v.String(), c.Operand)
	case OpNotContains:
		return !strings.Contains(v.String(), c.Operand)
	}
	return false
}

// Apply parses expr against the store schema and returns the matching
// subset in original ID order.
func Apply(store *records.Store, expr string) (*records.Store, error) {
	parsed, err := Parse(expr, store.Schema())
	if err != nil {
		return nil, err
	}
	return store.Select(func(rec model.Record) (bool, error) {
		return parsed.Match(rec), nil
	})
}
