package gosheet

import (
	"sort"
	"strconv"
)

// Formula wraps a parsed AST: it caches the canonical re-serialization of
// the tree and the deduplicated, sorted list of valid positions the tree
// references, and it binds evaluation to a Sheet lookup.
type Formula struct {
	root            Expr
	expression      string
	referencedCells []Position
}

// NewFormula parses source (with the leading formula marker already
// stripped by the caller) into a Formula.
func NewFormula(source string) (*Formula, error) {
	root, rawRefs, err := ParseFormulaAST(source)
	if err != nil {
		return nil, err
	}
	return &Formula{
		root:            root,
		expression:      PrintFormula(root),
		referencedCells: dedupeValidSorted(rawRefs),
	}, nil
}

func dedupeValidSorted(raw []Position) []Position {
	seen := make(map[Position]struct{}, len(raw))
	out := make([]Position, 0, len(raw))
	for _, p := range raw {
		if !p.IsValid() {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// GetExpression returns the cached canonical re-serialization of the AST.
func (f *Formula) GetExpression() string {
	return f.expression
}

// GetReferencedCells returns the deduplicated, ascending-order list of valid
// positions the formula reads from.
func (f *Formula) GetReferencedCells() []Position {
	return f.referencedCells
}

// Evaluate binds the AST to sheet and folds it into a Primitive, converting
// a raised FormulaError into a returned value rather than a Go error.
func (f *Formula) Evaluate(sheet *Sheet) Primitive {
	lookup := func(p Position) (float64, *FormulaError) {
		if !p.IsValid() {
			return 0, &FormulaError{Kind: ErrRef}
		}
		cell, ok := sheet.cells[p]
		if !ok {
			return 0, nil
		}
		switch v := cell.GetValue().(type) {
		case float64:
			return v, nil
		case FormulaError:
			return 0, &v
		case string:
			if v == "" {
				return 0, nil
			}
			n, err := strconv.ParseFloat(v, 64)
			if err != nil || !isFinite(n) {
				return 0, &FormulaError{Kind: ErrValue}
			}
			return n, nil
		default:
			return 0, nil
		}
	}

	v, ferr := f.root.Evaluate(lookup)
	if ferr != nil {
		return *ferr
	}
	return v
}
