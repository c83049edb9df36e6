package model

import (
	"iter"
	"slices"

	"golang.org/x/xerrors"
)

// Population is an ordered, immutable collection of voters.
type Population struct {
	voters []Voter
}

// Len returns the number of voters in the population.
func (p *Population) Len() int { return len(p.voters) }

// All iterates over the voters in insertion order. Each call starts a fresh
// pass over the same snapshot.
func (p *Population) All() iter.Seq[Voter] {
	return slices.Values(p.voters)
}

// PopulationBuilder accumulates voters into a Population. It may be built
// exactly once.
type PopulationBuilder struct {
	voters []Voter
	err    error
	spent  bool
}

// AddVoter appends v to the population under construction.
func (b *PopulationBuilder) AddVoter(v Voter) *PopulationBuilder {
	switch {
	case b.spent:
		b.err = ErrBuilderSpent
	case b.err != nil:
	case v.Party.IsZero():
		b.err = xerrors.Errorf("voter at %v has no party", v.Position)
	default:
		b.voters = append(b.voters, v)
	}
	return b
}

// Err reports the first error recorded by the builder, if any.
func (b *PopulationBuilder) Err() error { return b.err }

// Build returns the accumulated population. Any further use of the builder
// fails with ErrBuilderSpent.
func (b *PopulationBuilder) Build() (*Population, error) {
	if b.spent {
		return nil, ErrBuilderSpent
	}
	b.spent = true
	if b.err != nil {
		return nil, b.err
	}
	p := &Population{voters: b.voters}
	b.voters = nil
	return p, nil
}
