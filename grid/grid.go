// Package grid partitions a rectangular domain into a uniform grid of cells,
// each belonging to one district.
package grid

import (
	"iter"
	"math"
	"slices"

	"github.com/votegrid/votegrid/model"
	"golang.org/x/xerrors"
)

// Cell is a single square of a grid and the district it belongs to.
type Cell struct {
	Row      int
	Column   int
	District model.District
}

// Grid is an immutable rows x columns partition of a width x height domain.
// Use Builder or FromArray to construct one.
type Grid struct {
	rows, columns int
	width, height float64
	cells         [][]Cell
}

// Rows returns the number of rows in the grid.
func (g *Grid) Rows() int { return g.rows }

// Columns returns the number of columns in the grid.
func (g *Grid) Columns() int { return g.columns }

// Width returns the horizontal extent of the domain.
func (g *Grid) Width() float64 { return g.width }

// Height returns the vertical extent of the domain.
func (g *Grid) Height() float64 { return g.height }

// Cell returns the cell at row i, column j.
func (g *Grid) Cell(i, j int) (Cell, error) {
	if i < 0 || i >= g.rows {
		return Cell{}, xerrors.Errorf("row %d not in [0, %d): %w", i, g.rows, ErrOutOfRange)
	}
	if j < 0 || j >= g.columns {
		return Cell{}, xerrors.Errorf("column %d not in [0, %d): %w", j, g.columns, ErrOutOfRange)
	}
	return g.cells[i][j], nil
}

// Contains checks whether the point x, y lies within the domain.
func (g *Grid) Contains(x, y float64) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// ComputeCell returns the cell that the point x, y falls in. The point must
// satisfy 0 <= x < Width() and 0 <= y < Height().
func (g *Grid) ComputeCell(x, y float64) (Cell, error) {
	if !(x >= 0 && x < g.width) {
		return Cell{}, xerrors.Errorf("x %v not in [0, %v): %w", x, g.width, ErrOutOfRange)
	}
	if !(y >= 0 && y < g.height) {
		return Cell{}, xerrors.Errorf("y %v not in [0, %v): %w", y, g.height, ErrOutOfRange)
	}
	i := int(math.Floor(y / g.height * float64(g.rows)))
	j := int(math.Floor(x / g.width * float64(g.columns)))
	// Guard against rounding pushing a point just below the extent into the
	// next bucket.
	i = min(i, g.rows-1)
	j = min(j, g.columns-1)
	return g.cells[i][j], nil
}

// Cells iterates over every cell in row-major order.
func (g *Grid) Cells() iter.Seq[Cell] {
	return func(yield func(Cell) bool) {
		for _, row := range g.cells {
			for _, cell := range row {
				if !yield(cell) {
					return
				}
			}
		}
	}
}

// Districts returns the distinct districts present in the grid, in the order
// they are first met scanning row by row.
func (g *Grid) Districts() []model.District {
	var districts []model.District
	seen := make(map[model.District]struct{})
	for cell := range g.Cells() {
		if _, ok := seen[cell.District]; !ok {
			seen[cell.District] = struct{}{}
			districts = append(districts, cell.District)
		}
	}
	return districts
}

// DistrictIDs returns the grid as a rows x columns array of district ids.
func (g *Grid) DistrictIDs() [][]int {
	ids := make([][]int, g.rows)
	for i, row := range g.cells {
		ids[i] = make([]int, g.columns)
		for j, cell := range row {
			ids[i][j] = int(cell.District)
		}
	}
	return ids
}

// FromArray builds a grid whose cell i, j belongs to district ids[i][j]. The
// array must be rectangular with at least one row and one column.
func FromArray(ids [][]int, width, height float64) (*Grid, error) {
	if len(ids) == 0 || len(ids[0]) == 0 {
		return nil, xerrors.Errorf("empty district array: %w", ErrInvalidDimension)
	}
	b := NewBuilder().
		SetRows(len(ids)).
		SetColumns(len(ids[0])).
		SetWidth(width).
		SetHeight(height)
	for i, row := range ids {
		if len(row) != len(ids[0]) {
			return nil, xerrors.Errorf("row %d has %d columns, want %d: %w", i, len(row), len(ids[0]), ErrInvalidDimension)
		}
		for j, id := range row {
			b.SetCell(Cell{Row: i, Column: j, District: model.District(id)})
		}
	}
	return b.Build()
}

// Equal checks whether two grids have the same shape, extent and districts.
func (g *Grid) Equal(o *Grid) bool {
	if g.rows != o.rows || g.columns != o.columns || g.width != o.width || g.height != o.height {
		return false
	}
	for i := range g.cells {
		if !slices.Equal(g.cells[i], o.cells[i]) {
			return false
		}
	}
	return true
}
