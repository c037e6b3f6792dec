package gosheet

// Text-encoding conventions.
const (
	FormulaSign = '=' // leading character designating a formula
	EscapeSign  = '\'' // leading character in plain text, suppressed in values
)

type cellKind int

const (
	cellEmpty cellKind = iota
	cellText
	cellFormula
)

// Cell is the storage unit at a single Position: one of Empty, Text, or
// Formula, plus a memoized value and the forward/back edges of the
// dependency graph.
//
// Cell holds a non-owning back-pointer to its Sheet, the idiomatic Go
// substitute for "callback into Sheet.GetCell" — the Sheet is the arena,
// cells never point at each other directly, only at positions.
type Cell struct {
	sheet *Sheet
	pos   Position

	kind    cellKind
	text    string
	formula *Formula

	cached *Primitive

	referenced []Position          // forward edges: positions this cell reads from
	dependents map[Position]struct{} // back edges: positions that read from this cell
}

func newCell(sheet *Sheet, pos Position) *Cell {
	return &Cell{
		sheet:      sheet,
		pos:        pos,
		kind:       cellEmpty,
		dependents: make(map[Position]struct{}),
	}
}

// Set parses and installs text as the cell's new content, atomically with
// respect to the dependency graph: cycle check, then edge rewrite, then
// cache invalidation, then the inner-state swap.
func (c *Cell) Set(text string) error {
	kind, plainText, formula, err := classify(text)
	if err != nil {
		return newEditError(Parsing, "%s", err.Error())
	}

	var candidateRefs []Position
	if formula != nil {
		candidateRefs = formula.GetReferencedCells()
	}

	if c.wouldCreateCycle(candidateRefs) {
		return newEditError(CircularDependency, "setting %s would create a circular dependency", c.pos)
	}

	// Materialize any missing referents before wiring edges to them.
	for _, r := range candidateRefs {
		c.sheet.GetOrCreateCell(r)
	}

	// Remove old back-edges, then install the new forward/back edges.
	for _, old := range c.referenced {
		if oldCell, ok := c.sheet.cells[old]; ok {
			delete(oldCell.dependents, c.pos)
		}
	}
	c.referenced = candidateRefs
	for _, r := range candidateRefs {
		c.sheet.cells[r].dependents[c.pos] = struct{}{}
	}

	c.sheet.invalidate(c.pos)

	c.kind = kind
	c.text = plainText
	c.formula = formula
	return nil
}

// classify builds the candidate inner state for Set, without touching the
// graph.
func classify(text string) (cellKind, string, *Formula, error) {
	if text == "" {
		return cellEmpty, "", nil, nil
	}
	if len(text) > 1 && text[0] == FormulaSign {
		f, err := NewFormula(text[1:])
		if err != nil {
			return 0, "", nil, err
		}
		return cellFormula, "", f, nil
	}
	return cellText, text, nil, nil
}

// wouldCreateCycle performs a DFS from each candidate referent over the
// *current* forward-edge graph, looking for a path back to this cell. A
// referent not yet materialized in the Sheet is treated as a fresh Empty
// node with no outgoing edges.
func (c *Cell) wouldCreateCycle(candidateRefs []Position) bool {
	visited := make(map[Position]struct{})

	var reachesSelf func(p Position) bool
	reachesSelf = func(p Position) bool {
		if p == c.pos {
			return true
		}
		if _, ok := visited[p]; ok {
			return false
		}
		visited[p] = struct{}{}

		cell, ok := c.sheet.cells[p]
		if !ok {
			return false
		}
		for _, next := range cell.referenced {
			if reachesSelf(next) {
				return true
			}
		}
		return false
	}

	for _, r := range candidateRefs {
		if reachesSelf(r) {
			return true
		}
	}
	return false
}

// Clear resets the cell to Empty, removing it from every referent's
// dependents set. Physical removal from the Sheet's map is the Sheet's
// decision, not the Cell's.
func (c *Cell) Clear() {
	for _, r := range c.referenced {
		if refCell, ok := c.sheet.cells[r]; ok {
			delete(refCell.dependents, c.pos)
		}
	}
	c.referenced = nil
	c.sheet.invalidate(c.pos)
	c.kind = cellEmpty
	c.text = ""
	c.formula = nil
}

// GetValue returns the cached value if present, otherwise evaluates the
// cell's inner state against the Sheet and memoizes the result. Evaluating
// a Formula cell may re-enter GetValue on other cells; acyclicity of the
// forward-edge graph guarantees termination.
func (c *Cell) GetValue() Primitive {
	if c.cached != nil {
		return *c.cached
	}

	var v Primitive
	switch c.kind {
	case cellEmpty:
		v = ""
	case cellText:
		if len(c.text) > 0 && c.text[0] == EscapeSign {
			v = c.text[1:]
		} else {
			v = c.text
		}
	case cellFormula:
		v = c.formula.Evaluate(c.sheet)
	}

	c.cached = &v
	return v
}

// GetText returns the cell's literal text: verbatim for Text cells (a
// leading escape character is kept), the formula marker plus canonical
// expression for Formula cells.
func (c *Cell) GetText() string {
	switch c.kind {
	case cellFormula:
		return string(rune(FormulaSign)) + c.formula.GetExpression()
	case cellText:
		return c.text
	default:
		return ""
	}
}

// GetReferencedCells returns the positions of this cell's current forward
// edges — empty unless the cell holds a Formula.
func (c *Cell) GetReferencedCells() []Position {
	if len(c.referenced) == 0 {
		return nil
	}
	out := make([]Position, len(c.referenced))
	copy(out, c.referenced)
	return out
}
