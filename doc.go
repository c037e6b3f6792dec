// Package gosheet is an in-memory evaluation core for a cell grid: text or
// arithmetic formulas go in, computed values come out. It owns the cell
// graph, detects circular references before they are committed, and keeps
// dependent cells' cached values coherent as the sheet is edited.
package gosheet
