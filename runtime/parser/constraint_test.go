package parser

import (
	"testing"

	"github.com/aledsdavies/cadence/core/routine"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConstraint(t *testing.T) {
	tests := []struct {
		input string
		want  routine.Constraint
	}{
		{"3", routine.Constraint{Atoms: []routine.Atom{routine.Single(routine.Literal(3))}}},
		{"last", routine.Constraint{Atoms: []routine.Atom{routine.Single(routine.Last(0))}}},
		{"last - 1", routine.Constraint{Atoms: []routine.Atom{routine.Single(routine.Last(-1))}}},
		{"FIRST+2", routine.Constraint{Atoms: []routine.Atom{routine.Single(routine.First(2))}}},
		{"1..3", routine.Constraint{Atoms: []routine.Atom{routine.Range(routine.Literal(1), routine.Literal(3))}}},
		{"first..2..last", routine.Constraint{Atoms: []routine.Atom{
			routine.SteppedRange(routine.First(0), routine.Literal(2), routine.Last(0)),
		}}},
		{"^1, 3 ,last", routine.Constraint{Negated: true, Atoms: []routine.Atom{
			routine.Single(routine.Literal(1)),
			routine.Single(routine.Literal(3)),
			routine.Single(routine.Last(0)),
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseConstraint(tt.input)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("constraint mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConstraintPredicates(t *testing.T) {
	tests := []struct {
		input                string
		current, first, last int
		want                 bool
	}{
		{"1..2..5", 3, 1, 5, true},
		{"1..2..5", 2, 1, 5, false},
		{"1..2..5", 5, 1, 5, true},
		{"^first+1", 1, 1, 4, true},
		{"^first+1", 2, 1, 4, false},
		{"last-1..last", 9, 1, 10, true},
		{"last-1..last", 8, 1, 10, false},
		{"2..4", 4, 1, 10, true},
		{"1,last", 10, 1, 10, true},
	}

	for _, tt := range tests {
		c, err := ParseConstraint(tt.input)
		require.NoError(t, err, tt.input)
		got := c.Predicate()(tt.current, tt.first, tt.last)
		assert.Equal(t, tt.want, got, "%s at current=%d first=%d last=%d", tt.input, tt.current, tt.first, tt.last)
	}
}

func TestParseConstraintErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		column  int
		message string
	}{
		{name: "empty", input: "", column: 1},
		{name: "only negation", input: "^", column: 2},
		{name: "dangling range", input: "1..", column: 4},
		{name: "zero step", input: "1..0..5", column: 1, message: "range step must be positive"},
		{name: "too many bounds", input: "1..2..3..4", column: 1, message: "a range takes at most a low, a step and a high bound"},
		{name: "trailing comma", input: "1,", column: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConstraint(tt.input)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.column, perr.Column)
			assert.Equal(t, tt.message, perr.Message)
		})
	}
}
