package gosheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, source string) Expr {
	t.Helper()
	root, _, err := ParseFormulaAST(source)
	require.NoError(t, err)
	return root
}

func TestCanonicalPrintMinimalParens(t *testing.T) {
	cases := []struct {
		source string
		want   string
	}{
		{"1+2*3", "1+2*3"},
		{"(1+2)*3", "(1+2)*3"},
		{"1+2+3", "1+2+3"},
		{"1-2-3", "1-2-3"},
		{"1-(2-3)", "1-(2-3)"},
		{"(1-2)-3", "1-2-3"},
		{"1*2/3", "1*2/3"},
		{"1/(2/3)", "1/(2/3)"},
		{"(1/2)/3", "1/2/3"},
		{"-1", "-1"},
		{"-(1+2)", "-(1+2)"},
		{"-1+2", "-1+2"},
		{"-1*2", "-1*2"},
		{"2*-1", "2*-1"},
		{"--1", "--1"},
	}
	for _, tc := range cases {
		root := mustParse(t, tc.source)
		assert.Equal(t, tc.want, PrintFormula(root), tc.source)
	}
}

func TestCanonicalPrintRoundTrip(t *testing.T) {
	sources := []string{
		"1+2*3", "(1+2)*3", "1-2-3", "1-(2-3)", "A1+B2*3", "-(A1+1)/2",
	}
	for _, s := range sources {
		root := mustParse(t, s)
		printed := PrintFormula(root)
		reparsed := mustParse(t, printed)
		assert.Equal(t, printed, PrintFormula(reparsed), s)
	}
}

func TestEvaluateArithmetic(t *testing.T) {
	lookup := func(Position) (float64, *FormulaError) { return 0, nil }

	root := mustParse(t, "1+2*3")
	v, ferr := root.Evaluate(lookup)
	require.Nil(t, ferr)
	assert.Equal(t, 7.0, v)

	root = mustParse(t, "(1+2)*3")
	v, ferr = root.Evaluate(lookup)
	require.Nil(t, ferr)
	assert.Equal(t, 9.0, v)
}

func TestEvaluateDivisionByZero(t *testing.T) {
	lookup := func(Position) (float64, *FormulaError) { return 0, nil }
	root := mustParse(t, "1/0")
	_, ferr := root.Evaluate(lookup)
	require.NotNil(t, ferr)
	assert.Equal(t, ErrArithmetic, ferr.Kind)
}

func TestEvaluateNonFiniteResult(t *testing.T) {
	lookup := func(Position) (float64, *FormulaError) { return 0, nil }
	root := mustParse(t, "1e308*1e308")
	_, ferr := root.Evaluate(lookup)
	require.NotNil(t, ferr)
	assert.Equal(t, ErrArithmetic, ferr.Kind)
}

func TestEvaluateCellRefInvalidPosition(t *testing.T) {
	root := &CellRefNode{Pos: InvalidPos, Source: "ZZZZ99999999"}
	_, ferr := root.Evaluate(func(Position) (float64, *FormulaError) {
		t.Fatal("lookup should not be invoked for an invalid position")
		return 0, nil
	})
	require.NotNil(t, ferr)
	assert.Equal(t, ErrRef, ferr.Kind)
}

func TestEvaluatePropagatesLeftBeforeRight(t *testing.T) {
	var order []string
	lookup := func(p Position) (float64, *FormulaError) {
		order = append(order, p.String())
		if p.Row == 0 {
			return 0, &FormulaError{Kind: ErrValue}
		}
		return 1, nil
	}
	root := &BinaryOpNode{
		Op:    Add,
		Left:  &CellRefNode{Pos: Position{Row: 0, Col: 0}, Source: "A1"},
		Right: &CellRefNode{Pos: Position{Row: 1, Col: 0}, Source: "A2"},
	}
	_, ferr := root.Evaluate(lookup)
	require.NotNil(t, ferr)
	assert.Equal(t, ErrValue, ferr.Kind)
	assert.Equal(t, []string{"A1"}, order)
}

func TestFormulaErrorDisplay(t *testing.T) {
	assert.Equal(t, "#REF!", FormulaError{Kind: ErrRef}.Error())
	assert.Equal(t, "#VALUE!", FormulaError{Kind: ErrValue}.Error())
	assert.Equal(t, "#ARITHM!", FormulaError{Kind: ErrArithmetic}.Error())
}
