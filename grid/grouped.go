package grid

import (
	"github.com/votegrid/votegrid/model"
	"golang.org/x/xerrors"
)

// GroupedGrid is a mutable rows x columns array of district ids. It keeps
// count of how many cells each id occupies, so that the number of distinct
// districts is always known without a scan.
type GroupedGrid struct {
	rows, columns int
	ids           [][]model.District
	occupancy     map[model.District]int
}

// NewGrouped returns a grid with every cell in district 0.
func NewGrouped(rows, columns int) (*GroupedGrid, error) {
	if rows <= 0 {
		return nil, xerrors.Errorf("rows %d <= 0: %w", rows, ErrInvalidDimension)
	}
	if columns <= 0 {
		return nil, xerrors.Errorf("columns %d <= 0: %w", columns, ErrInvalidDimension)
	}
	ids := make([][]model.District, rows)
	for i := range ids {
		ids[i] = make([]model.District, columns)
	}
	return &GroupedGrid{
		rows:      rows,
		columns:   columns,
		ids:       ids,
		occupancy: map[model.District]int{0: rows * columns},
	}, nil
}

// NewGroupedFromArray returns a grid initialised from a rectangular array of
// ids with at least one row and one column.
func NewGroupedFromArray(ids [][]int) (*GroupedGrid, error) {
	if len(ids) == 0 {
		return nil, xerrors.Errorf("no rows: %w", ErrInvalidDimension)
	}
	g, err := NewGrouped(len(ids), len(ids[0]))
	if err != nil {
		return nil, err
	}
	for i, row := range ids {
		if len(row) != g.columns {
			return nil, xerrors.Errorf("row %d has %d columns, want %d: %w", i, len(row), g.columns, ErrInvalidDimension)
		}
		for j, id := range row {
			if _, err := g.SetCellID(i, j, model.District(id)); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

func (g *GroupedGrid) check(i, j int) error {
	if i < 0 || i >= g.rows {
		return xerrors.Errorf("row %d not in [0, %d): %w", i, g.rows, ErrOutOfRange)
	}
	if j < 0 || j >= g.columns {
		return xerrors.Errorf("column %d not in [0, %d): %w", j, g.columns, ErrOutOfRange)
	}
	return nil
}

// SetCellID moves cell i, j into district id and returns the district it was
// in before.
func (g *GroupedGrid) SetCellID(i, j int, id model.District) (model.District, error) {
	if err := g.check(i, j); err != nil {
		return 0, err
	}
	previous := g.ids[i][j]
	if g.occupancy[previous]--; g.occupancy[previous] == 0 {
		delete(g.occupancy, previous)
	}
	g.occupancy[id]++
	g.ids[i][j] = id
	return previous, nil
}

// CellID returns the district of cell i, j.
func (g *GroupedGrid) CellID(i, j int) (model.District, error) {
	if err := g.check(i, j); err != nil {
		return 0, err
	}
	return g.ids[i][j], nil
}

// Rows returns the number of rows in the grid.
func (g *GroupedGrid) Rows() int { return g.rows }

// Columns returns the number of columns in the grid.
func (g *GroupedGrid) Columns() int { return g.columns }

// NumberUniqueIDs returns the number of districts occupying at least one cell.
func (g *GroupedGrid) NumberUniqueIDs() int { return len(g.occupancy) }

// Occupancy returns the number of cells in district id.
func (g *GroupedGrid) Occupancy(id model.District) int { return g.occupancy[id] }

// Grid snapshots the current assignment into an immutable Grid spanning a
// width x height domain.
func (g *GroupedGrid) Grid(width, height float64) (*Grid, error) {
	b := NewBuilder().
		SetRows(g.rows).
		SetColumns(g.columns).
		SetWidth(width).
		SetHeight(height)
	for i, row := range g.ids {
		for j, id := range row {
			b.SetCell(Cell{Row: i, Column: j, District: id})
		}
	}
	return b.Build()
}
