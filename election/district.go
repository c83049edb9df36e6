package election

import (
	"github.com/votegrid/votegrid/model"
	"github.com/votegrid/votegrid/tally"
	"golang.org/x/xerrors"
)

// District is the result of an election in a single district.
type District struct {
	District model.District
	Shape    any
	Votes    *tally.VoteShare
	Winner   model.Party
}

// DistrictBuilder constructs a District. It may be built exactly once.
type DistrictBuilder struct {
	d     District
	set   bool
	err   error
	spent bool
}

// NewDistrictBuilder returns an empty DistrictBuilder.
func NewDistrictBuilder() *DistrictBuilder { return &DistrictBuilder{} }

func (b *DistrictBuilder) usable() bool {
	if b.spent {
		b.err = model.ErrBuilderSpent
		return false
	}
	return b.err == nil
}

// SetDistrict sets the district identifier.
func (b *DistrictBuilder) SetDistrict(d model.District) *DistrictBuilder {
	if b.usable() {
		b.d.District = d
		b.set = true
	}
	return b
}

// SetShape sets the opaque shape of the district.
func (b *DistrictBuilder) SetShape(shape any) *DistrictBuilder {
	if b.usable() {
		b.d.Shape = shape
	}
	return b
}

// SetVotes sets the votes cast in the district.
func (b *DistrictBuilder) SetVotes(votes *tally.VoteShare) *DistrictBuilder {
	switch {
	case !b.usable():
	case votes == nil:
		b.err = xerrors.New("district votes are nil")
	default:
		b.d.Votes = votes
	}
	return b
}

// SetWinner sets the party that won the district's seat.
func (b *DistrictBuilder) SetWinner(p model.Party) *DistrictBuilder {
	switch {
	case !b.usable():
	case p.IsZero():
		b.err = xerrors.New("winning party is the zero party")
	default:
		b.d.Winner = p
	}
	return b
}

// Err reports the first error recorded by the builder, if any.
func (b *DistrictBuilder) Err() error { return b.err }

// Build returns the district. The district id, votes and winner are required.
func (b *DistrictBuilder) Build() (*District, error) {
	if b.spent {
		return nil, model.ErrBuilderSpent
	}
	b.spent = true
	switch {
	case b.err != nil:
		return nil, b.err
	case !b.set:
		return nil, xerrors.Errorf("district id: %w", ErrMissingField)
	case b.d.Votes == nil:
		return nil, xerrors.Errorf("district votes: %w", ErrMissingField)
	case b.d.Winner.IsZero():
		return nil, xerrors.Errorf("district winner: %w", ErrMissingField)
	}
	d := b.d
	return &d, nil
}
