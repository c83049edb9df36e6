package grid

import (
	"github.com/votegrid/votegrid/model"
	"golang.org/x/xerrors"
)

type cellIndex struct{ i, j int }

// Builder assembles a Grid cell by cell. Every setter records the first error
// it meets; Build reports it. A builder is single-use: once Build has been
// called, successfully or not, every further call fails with
// model.ErrBuilderSpent.
type Builder struct {
	rows, columns int
	width, height float64
	cells         map[cellIndex]Cell
	err           error
	spent         bool
}

// NewBuilder returns a builder with no dimensions set.
func NewBuilder() *Builder {
	return &Builder{
		rows:    -1,
		columns: -1,
		width:   -1,
		height:  -1,
		cells:   make(map[cellIndex]Cell),
	}
}

func (b *Builder) usable() bool {
	if b.spent {
		b.err = model.ErrBuilderSpent
		return false
	}
	return b.err == nil
}

// SetCell assigns a cell. Assigning the same row and column again replaces the
// earlier cell.
func (b *Builder) SetCell(c Cell) *Builder {
	switch {
	case !b.usable():
	case c.Row < 0:
		b.err = xerrors.Errorf("cell row %d < 0: %w", c.Row, ErrOutOfRange)
	case c.Column < 0:
		b.err = xerrors.Errorf("cell column %d < 0: %w", c.Column, ErrOutOfRange)
	default:
		b.cells[cellIndex{c.Row, c.Column}] = c
	}
	return b
}

// SetRows sets the number of rows, which must be at least 1.
func (b *Builder) SetRows(rows int) *Builder {
	switch {
	case !b.usable():
	case rows < 1:
		b.err = xerrors.Errorf("rows %d < 1: %w", rows, ErrInvalidDimension)
	default:
		b.rows = rows
	}
	return b
}

// SetColumns sets the number of columns, which must be at least 1.
func (b *Builder) SetColumns(columns int) *Builder {
	switch {
	case !b.usable():
	case columns < 1:
		b.err = xerrors.Errorf("columns %d < 1: %w", columns, ErrInvalidDimension)
	default:
		b.columns = columns
	}
	return b
}

// SetWidth sets the horizontal extent of the domain, which must be positive.
func (b *Builder) SetWidth(width float64) *Builder {
	switch {
	case !b.usable():
	case !(width > 0):
		b.err = xerrors.Errorf("width %v <= 0: %w", width, ErrInvalidDimension)
	default:
		b.width = width
	}
	return b
}

// SetHeight sets the vertical extent of the domain, which must be positive.
func (b *Builder) SetHeight(height float64) *Builder {
	switch {
	case !b.usable():
	case !(height > 0):
		b.err = xerrors.Errorf("height %v <= 0: %w", height, ErrInvalidDimension)
	default:
		b.height = height
	}
	return b
}

// Err reports the first error recorded by the builder, if any.
func (b *Builder) Err() error { return b.err }

// Build returns the grid. Every cell within the declared rows and columns
// must have been assigned, and no cell outside them.
func (b *Builder) Build() (*Grid, error) {
	if b.spent {
		return nil, model.ErrBuilderSpent
	}
	b.spent = true
	defer func() { b.cells = nil }()

	switch {
	case b.err != nil:
		return nil, b.err
	case b.rows == -1:
		return nil, xerrors.Errorf("rows: %w", ErrMissingField)
	case b.columns == -1:
		return nil, xerrors.Errorf("columns: %w", ErrMissingField)
	case b.height == -1:
		return nil, xerrors.Errorf("height: %w", ErrMissingField)
	case b.width == -1:
		return nil, xerrors.Errorf("width: %w", ErrMissingField)
	}

	cells := make([][]Cell, b.rows)
	for i := range cells {
		cells[i] = make([]Cell, b.columns)
	}
	for idx, cell := range b.cells {
		if idx.i >= b.rows {
			return nil, xerrors.Errorf("row index %d >= %d: %w", idx.i, b.rows, ErrOutOfRange)
		}
		if idx.j >= b.columns {
			return nil, xerrors.Errorf("column index %d >= %d: %w", idx.j, b.columns, ErrOutOfRange)
		}
		cells[idx.i][idx.j] = cell
	}
	if len(b.cells) != b.rows*b.columns {
		return nil, xerrors.Errorf("%d of %d cells assigned: %w", len(b.cells), b.rows*b.columns, ErrMissingCells)
	}
	return &Grid{
		rows:    b.rows,
		columns: b.columns,
		width:   b.width,
		height:  b.height,
		cells:   cells,
	}, nil
}
