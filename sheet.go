package gosheet

import (
	"fmt"
	"io"
	"strings"
)

// Size is a printable rectangle: the smallest row/col extent covering every
// non-empty cell currently on a Sheet.
type Size struct {
	Rows int
	Cols int
}

// Sheet owns every Cell. It is the only type allowed to create or destroy a
// Cell; callers reach cells only through it (GetCell, GetOrCreateCell).
//
// A Sheet is not safe for concurrent use: no method locks, and even
// GetValue on one of its cells writes that cell's cache.
type Sheet struct {
	cells map[Position]*Cell
}

// NewSheet returns an empty sheet.
func NewSheet() *Sheet {
	return &Sheet{cells: make(map[Position]*Cell)}
}

// GetOrCreateCell returns the cell at pos, materializing an Empty one if
// none exists yet. Used internally when wiring a forward edge to a position
// that has never been written.
func (s *Sheet) GetOrCreateCell(pos Position) *Cell {
	if c, ok := s.cells[pos]; ok {
		return c
	}
	c := newCell(s, pos)
	s.cells[pos] = c
	return c
}

// GetCell returns the cell at pos, if one currently exists in the sheet. A
// cell removed by ClearCell is no longer found.
func (s *Sheet) GetCell(pos Position) (*Cell, bool) {
	c, ok := s.cells[pos]
	return c, ok
}

// SetCell installs text at pos, creating the cell if necessary. It rejects
// an invalid position outright and short-circuits when text already equals
// the cell's current literal text, leaving the dependency graph and caches
// untouched either way. A position with no prior cell is only inserted into
// the Sheet once Set succeeds, so a rejected edit (e.g. CircularDependency)
// leaves no phantom Empty cell behind.
func (s *Sheet) SetCell(pos Position, text string) error {
	if !pos.IsValid() {
		return newEditError(InvalidPosition, "position %s is out of range", pos)
	}

	if c, ok := s.cells[pos]; ok {
		if c.GetText() == text {
			return nil
		}
		return c.Set(text)
	}

	c := newCell(s, pos)
	if err := c.Set(text); err != nil {
		return err
	}
	s.cells[pos] = c
	return nil
}

// ClearCell resets pos to Empty. Clearing a position that was never
// materialized is a no-op. A cell is only physically removed from the
// Sheet once it has no remaining dependents, so that other cells' forward
// edges keep resolving to a live (now Empty) node.
func (s *Sheet) ClearCell(pos Position) error {
	if !pos.IsValid() {
		return newEditError(InvalidPosition, "position %s is out of range", pos)
	}

	c, ok := s.cells[pos]
	if !ok {
		return nil
	}

	c.Clear()
	if len(c.dependents) == 0 {
		delete(s.cells, pos)
	}
	return nil
}

// invalidate drops the memoized value of pos and every cell reachable by
// following dependents edges, guarding against revisits with a visited set.
func (s *Sheet) invalidate(start Position) {
	visited := make(map[Position]struct{})

	var walk func(pos Position)
	walk = func(pos Position) {
		if _, ok := visited[pos]; ok {
			return
		}
		visited[pos] = struct{}{}

		c, ok := s.cells[pos]
		if !ok {
			return
		}
		c.cached = nil
		for dep := range c.dependents {
			walk(dep)
		}
	}
	walk(start)
}

// GetPrintableSize returns the smallest rectangle, anchored at (0,0),
// covering every cell with non-empty text.
func (s *Sheet) GetPrintableSize() Size {
	var size Size
	for pos, c := range s.cells {
		if c.GetText() == "" {
			continue
		}
		if pos.Row+1 > size.Rows {
			size.Rows = pos.Row + 1
		}
		if pos.Col+1 > size.Cols {
			size.Cols = pos.Col + 1
		}
	}
	return size
}

// PrintValues writes the printable rectangle's values, tab-separated per
// row, newline-terminated. An absent cell prints as an empty field.
func (s *Sheet) PrintValues(w io.Writer) error {
	return s.printRect(w, func(c *Cell) string {
		return primitiveString(c.GetValue())
	})
}

// PrintTexts writes the printable rectangle's literal texts, tab-separated
// per row, newline-terminated.
func (s *Sheet) PrintTexts(w io.Writer) error {
	return s.printRect(w, func(c *Cell) string {
		return c.GetText()
	})
}

func (s *Sheet) printRect(w io.Writer, render func(*Cell) string) error {
	size := s.GetPrintableSize()
	for row := 0; row < size.Rows; row++ {
		var line strings.Builder
		for col := 0; col < size.Cols; col++ {
			if col > 0 {
				line.WriteByte('\t')
			}
			if c, ok := s.cells[Position{Row: row, Col: col}]; ok {
				line.WriteString(render(c))
			}
		}
		line.WriteByte('\n')
		if _, err := io.WriteString(w, line.String()); err != nil {
			return err
		}
	}
	return nil
}

// primitiveString renders a computed Primitive the way a printed sheet
// shows it: numbers in shortest round-trip form, errors as their display
// string, text verbatim.
func primitiveString(v Primitive) string {
	switch x := v.(type) {
	case float64:
		return formatNumber(x)
	case FormulaError:
		return x.Error()
	case string:
		return x
	default:
		return fmt.Sprintf("%v", x)
	}
}
