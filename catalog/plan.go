package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"github.com/votegrid/votegrid/grid"
	cbg "github.com/whyrusleeping/cbor-gen"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/xerrors"
)

// MaxPlanName is the maximum length in bytes of a plan name.
const MaxPlanName = 256

// ErrInvalidPlan signals that a plan cannot describe a grid.
var ErrInvalidPlan = errors.New("invalid plan")

// Plan is a named districting plan: the district id of every cell of a grid,
// in row-major order.
type Plan struct {
	Name      string
	Districts [][]int
}

// Validate checks that the plan has a usable name and a non-empty rectangular
// array of districts.
func (p *Plan) Validate() error {
	switch {
	case p.Name == "":
		return xerrors.Errorf("empty name: %w", ErrInvalidPlan)
	case len(p.Name) > MaxPlanName:
		return xerrors.Errorf("name longer than %d bytes: %w", MaxPlanName, ErrInvalidPlan)
	case len(p.Districts) == 0 || len(p.Districts[0]) == 0:
		return xerrors.Errorf("plan %q has no cells: %w", p.Name, ErrInvalidPlan)
	case len(p.Districts) > cbg.MaxLength || len(p.Districts[0]) > cbg.MaxLength:
		return xerrors.Errorf("plan %q exceeds %d rows or columns: %w", p.Name, cbg.MaxLength, ErrInvalidPlan)
	}
	for i, row := range p.Districts {
		if len(row) != len(p.Districts[0]) {
			return xerrors.Errorf("plan %q row %d has %d columns, want %d: %w", p.Name, i, len(row), len(p.Districts[0]), ErrInvalidPlan)
		}
		for j, id := range row {
			if id > maxDistrictID || id < -maxDistrictID-1 {
				return xerrors.Errorf("plan %q cell %d, %d: district id %d out of range: %w", p.Name, i, j, id, ErrInvalidPlan)
			}
		}
	}
	return nil
}

// Grid lays the plan over a width x height domain.
func (p *Plan) Grid(width, height float64) (*grid.Grid, error) {
	return grid.FromArray(p.Districts, width, height)
}

// PlanFromGrid returns a plan holding the districts of g.
func PlanFromGrid(name string, g *grid.Grid) *Plan {
	return &Plan{Name: name, Districts: g.DistrictIDs()}
}

// CID returns the content identifier of the plan: the blake2b-256 hash of its
// CBOR encoding.
func (p *Plan) CID() (cid.Cid, error) {
	var buf bytes.Buffer
	if err := p.MarshalCBOR(&buf); err != nil {
		return cid.Undef, err
	}
	hash := blake2b.Sum256(buf.Bytes())
	mh, err := multihash.Encode(hash[:], multihash.BLAKE2B_MIN+31)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.DagCBOR, mh), nil
}

// MarshalCBOR encodes the plan as the array [name, [[district...]...]].
func (p *Plan) MarshalCBOR(w io.Writer) error {
	if p == nil {
		_, err := w.Write(cbg.CborNull)
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if _, err := w.Write(cbg.CborEncodeMajorType(cbg.MajArray, 2)); err != nil {
		return err
	}
	if _, err := w.Write(cbg.CborEncodeMajorType(cbg.MajTextString, uint64(len(p.Name)))); err != nil {
		return err
	}
	if _, err := io.WriteString(w, p.Name); err != nil {
		return err
	}
	if _, err := w.Write(cbg.CborEncodeMajorType(cbg.MajArray, uint64(len(p.Districts)))); err != nil {
		return err
	}
	for _, row := range p.Districts {
		if _, err := w.Write(cbg.CborEncodeMajorType(cbg.MajArray, uint64(len(row)))); err != nil {
			return err
		}
		for _, id := range row {
			var header []byte
			if id >= 0 {
				header = cbg.CborEncodeMajorType(cbg.MajUnsignedInt, uint64(id))
			} else {
				header = cbg.CborEncodeMajorType(cbg.MajNegativeInt, uint64(-id)-1)
			}
			if _, err := w.Write(header); err != nil {
				return err
			}
		}
	}
	return nil
}

// UnmarshalCBOR decodes a plan written by MarshalCBOR.
func (p *Plan) UnmarshalCBOR(r io.Reader) error {
	*p = Plan{}

	maj, extra, err := cbg.CborReadHeader(r)
	if err != nil {
		return err
	}
	if maj != cbg.MajArray || extra != 2 {
		return fmt.Errorf("cbor input for plan was not a two element array (%x, %d)", maj, extra)
	}

	maj, extra, err = cbg.CborReadHeader(r)
	if err != nil {
		return err
	}
	if maj != cbg.MajTextString {
		return fmt.Errorf("cbor input for plan name was not a text string (%x)", maj)
	}
	if extra > MaxPlanName {
		return fmt.Errorf("plan name too long (%d bytes)", extra)
	}
	name := make([]byte, extra)
	if _, err := io.ReadFull(r, name); err != nil {
		return err
	}
	p.Name = string(name)

	rows, err := readArrayHeader(r, "plan rows")
	if err != nil {
		return err
	}
	p.Districts = make([][]int, rows)
	for i := range p.Districts {
		columns, err := readArrayHeader(r, "plan row")
		if err != nil {
			return err
		}
		row := make([]int, columns)
		for j := range row {
			maj, extra, err := cbg.CborReadHeader(r)
			if err != nil {
				return err
			}
			switch {
			case extra > maxDistrictID:
				return fmt.Errorf("district id out of range at %d, %d", i, j)
			case maj == cbg.MajUnsignedInt:
				row[j] = int(extra)
			case maj == cbg.MajNegativeInt:
				row[j] = -int(extra) - 1
			default:
				return fmt.Errorf("cbor input for district id was not an integer (%x)", maj)
			}
		}
		p.Districts[i] = row
	}
	return p.Validate()
}

const maxDistrictID = 1<<31 - 1

func readArrayHeader(r io.Reader, what string) (int, error) {
	maj, extra, err := cbg.CborReadHeader(r)
	if err != nil {
		return 0, err
	}
	if maj != cbg.MajArray {
		return 0, fmt.Errorf("cbor input for %s was not an array (%x)", what, maj)
	}
	if extra > uint64(cbg.MaxLength) {
		return 0, fmt.Errorf("%s too long (%d elements)", what, extra)
	}
	return int(extra), nil
}
