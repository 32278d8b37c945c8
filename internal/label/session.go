// Package label implements the interactive categorization workflow: a
// line-oriented state machine that walks the unclassified records, asks for
// a category and a pattern, and persists the category table after every
// confirmed pattern so an interrupted session loses at most the in-flight
// prompt.
package label

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/burrima/bank-statement-analysis/internal/category"
	"github.com/burrima/bank-statement-analysis/internal/model"
	"github.com/burrima/bank-statement-analysis/internal/records"
)

// State is the labeler's FSM state.
type State int

const (
	StateSelectCategory State = iota
	StateSelectPattern
	StateDone
	StateAborted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateSelectCategory:
		return "select-category"
	case StateSelectPattern:
		return "select-pattern"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	}
	return "invalid"
}

// SaveFunc persists the category table after a confirmed mutation.
type SaveFunc func(*category.Table) error

// Session drives one interactive labeling run. Input and output are
// injected so the workflow is scriptable in tests.
type Session struct {
	table     *category.Table
	save      SaveFunc
	in        *bufio.Scanner
	out       io.Writer
	confirmed int
}

// NewSession creates a Session over the given table.
func NewSession(table *category.Table, save SaveFunc, in io.Reader, out io.Writer) *Session {
	return &Session{
		table: table,
		save:  save,
		in:    bufio.NewScanner(in),
		out:   out,
	}
}

// Confirmed returns the number of persisted pattern confirmations.
func (s *Session) Confirmed() int {
	return s.confirmed
}

// Run walks every record in the store still categorized as unknown and
// prompts for a category and a pattern. It returns StateDone when all
// candidates were visited, StateAborted on end of input or context
// cancellation. Persisted mutations are never rolled back; a non-nil error
// means a failed table save and is fatal.
func (s *Session) Run(ctx context.Context, store *records.Store) (State, error) {
	schema := store.Schema()
	catCol := schema.Index(model.ColCategory)
	if catCol < 0 {
		return StateAborted, &records.UnknownColumnError{Selector: model.ColCategory}
	}

	for _, rec := range store.Records() {
		if rec.Values[catCol].Text != category.Unknown {
			continue
		}

		state, err := s.labelRecord(ctx, schema, rec)
		if err != nil {
			return state, err
		}
		if state == StateAborted {
			return StateAborted, nil
		}
	}
	return StateDone, nil
}

// labelRecord runs the SelectCategory -> SelectPattern transitions for one
// record. It returns StateDone when the record is handled (confirmed or
// skipped) and StateAborted on cancellation.
func (s *Session) labelRecord(ctx context.Context, schema model.Schema, rec model.Record) (State, error) {
	s.printRecord(schema, rec)

	state := StateSelectCategory
	var selected string
	for {
		if ctx.Err() != nil {
			return StateAborted, nil
		}

		switch state {
		case StateSelectCategory:
			s.printLabels()
			fmt.Fprint(s.out, "Category (number or name, empty to skip): ")
			line, ok := s.readLine()
			if !ok {
				return StateAborted, nil
			}
			if line == "" {
				return StateDone, nil // skip, no mutation
			}

			label, ok := s.resolveLabel(line)
			if !ok {
				fmt.Fprintf(s.out, "no category number %s\n", line)
				continue
			}
			selected = label
			s.table.Add(selected)
			state = StateSelectPattern

		case StateSelectPattern:
			fmt.Fprintf(s.out, "Pattern for %q (empty to skip): ", selected)
			line, ok := s.readLine()
			if !ok {
				return StateAborted, nil
			}
			if line == "" {
				return StateDone, nil // nothing confirmed, record is re-asked next run
			}

			s.table.AppendPattern(selected, line)
			if err := s.save(s.table); err != nil {
				return StateAborted, fmt.Errorf("saving categories: %w", err)
			}
			s.confirmed++
			return StateDone, nil
		}
	}
}

// resolveLabel maps input to a category label. A number selects an existing
// category (1-based as displayed); anything else is a literal label name,
// new or existing.
func (s *Session) resolveLabel(line string) (string, bool) {
	n, err := strconv.Atoi(line)
	if err != nil {
		return line, true
	}
	labels := s.table.Labels()
	if n < 1 || n > len(labels) {
		return "", false
	}
	return labels[n-1], true
}

// readLine reads one input line. ok is false on end of input, which aborts
// the session.
func (s *Session) readLine() (string, bool) {
	if !s.in.Scan() {
		return "", false
	}
	return s.in.Text(), true
}

func (s *Session) printRecord(schema model.Schema, rec model.Record) {
	fmt.Fprintln(s.out)
	for i, col := range schema.Columns {
		if col.Name == model.ColCategory || col.Name == model.ColCategoryIndex {
			continue
		}
		fmt.Fprintf(s.out, "  %-14s %s\n", col.Name, rec.Values[i].String())
	}
}

func (s *Session) printLabels() {
	for i, label := range s.table.Labels() {
		fmt.Fprintf(s.out, "  [%d] %s\n", i+1, label)
	}
}
