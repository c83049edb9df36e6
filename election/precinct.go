// Package election holds pre-tabulated election records for real maps:
// precincts, districts and the statewide result, as supplied by an external
// data source. Shapes are opaque to this package and are passed through
// untouched for the view layer.
package election

import (
	"errors"

	"github.com/votegrid/votegrid/model"
	"github.com/votegrid/votegrid/tally"
	"golang.org/x/xerrors"
)

// ErrMissingField signals that Build was called before a required field was
// set.
var ErrMissingField = errors.New("required field not set")

// Precinct is the result of an election in a single precinct.
type Precinct struct {
	ID     string
	County string
	Shape  any
	Votes  *tally.VoteShare
}

// PrecinctBuilder constructs a Precinct. It may be built exactly once.
type PrecinctBuilder struct {
	p     Precinct
	err   error
	spent bool
}

// NewPrecinctBuilder returns an empty PrecinctBuilder.
func NewPrecinctBuilder() *PrecinctBuilder { return &PrecinctBuilder{} }

func (b *PrecinctBuilder) usable() bool {
	if b.spent {
		b.err = model.ErrBuilderSpent
		return false
	}
	return b.err == nil
}

// SetID sets the precinct identifier, which must not be empty.
func (b *PrecinctBuilder) SetID(id string) *PrecinctBuilder {
	switch {
	case !b.usable():
	case id == "":
		b.err = xerrors.New("precinct id is empty")
	default:
		b.p.ID = id
	}
	return b
}

// SetCounty sets the county the precinct lies in, which must not be empty.
func (b *PrecinctBuilder) SetCounty(county string) *PrecinctBuilder {
	switch {
	case !b.usable():
	case county == "":
		b.err = xerrors.New("county is empty")
	default:
		b.p.County = county
	}
	return b
}

// SetShape sets the opaque shape of the precinct.
func (b *PrecinctBuilder) SetShape(shape any) *PrecinctBuilder {
	if b.usable() {
		b.p.Shape = shape
	}
	return b
}

// SetVotes sets the votes cast in the precinct.
func (b *PrecinctBuilder) SetVotes(votes *tally.VoteShare) *PrecinctBuilder {
	switch {
	case !b.usable():
	case votes == nil:
		b.err = xerrors.New("precinct votes are nil")
	default:
		b.p.Votes = votes
	}
	return b
}

// Err reports the first error recorded by the builder, if any.
func (b *PrecinctBuilder) Err() error { return b.err }

// Build returns the precinct. ID, county and votes are required.
func (b *PrecinctBuilder) Build() (*Precinct, error) {
	if b.spent {
		return nil, model.ErrBuilderSpent
	}
	b.spent = true
	switch {
	case b.err != nil:
		return nil, b.err
	case b.p.ID == "":
		return nil, xerrors.Errorf("precinct id: %w", ErrMissingField)
	case b.p.County == "":
		return nil, xerrors.Errorf("precinct county: %w", ErrMissingField)
	case b.p.Votes == nil:
		return nil, xerrors.Errorf("precinct votes: %w", ErrMissingField)
	}
	p := b.p
	return &p, nil
}
