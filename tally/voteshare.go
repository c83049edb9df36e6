package tally

import (
	"github.com/votegrid/votegrid/model"
	"golang.org/x/xerrors"
)

// VoteShare is an immutable record of the votes cast for each party in some
// electoral unit.
type VoteShare struct {
	votes *PartToWhole[model.Party]
}

// Parties returns the parties in the order their amounts were set.
func (v *VoteShare) Parties() []model.Party { return v.votes.PartKeys() }

// Votes returns the votes cast for party, or zero if it received none.
func (v *VoteShare) Votes(party model.Party) int64 { return v.votes.Part(party) }

// Percent returns the fraction of all votes cast for party.
func (v *VoteShare) Percent(party model.Party) float64 { return v.votes.Percent(party) }

// Total returns the number of votes cast.
func (v *VoteShare) Total() int64 { return v.votes.Whole() }

// Leader returns the party with the most votes; see PartToWhole.Leader.
func (v *VoteShare) Leader() (model.Party, bool) {
	p, _, ok := v.votes.Leader()
	return p, ok
}

// NewVoteShare returns a vote share holding a copy of votes. Later changes to
// votes are not reflected in the result.
func NewVoteShare(votes *PartToWhole[model.Party]) *VoteShare {
	if votes == nil {
		return &VoteShare{votes: NewPartToWhole[model.Party]()}
	}
	return &VoteShare{votes: votes.Clone()}
}

// VoteShareBuilder constructs a VoteShare. It may be built exactly once.
type VoteShareBuilder struct {
	votes *PartToWhole[model.Party]
	err   error
	spent bool
}

// NewVoteShareBuilder returns an empty builder.
func NewVoteShareBuilder() *VoteShareBuilder {
	return &VoteShareBuilder{votes: NewPartToWhole[model.Party]()}
}

// SetPartyVotes records the votes cast for party, replacing any earlier value.
func (b *VoteShareBuilder) SetPartyVotes(party model.Party, votes int64) *VoteShareBuilder {
	switch {
	case b.spent:
		b.err = model.ErrBuilderSpent
	case b.err != nil:
	default:
		if _, _, err := b.votes.SetPart(party, votes); err != nil {
			b.err = xerrors.Errorf("setting votes for %q: %w", party, err)
		}
	}
	return b
}

// Err reports the first error recorded by the builder, if any.
func (b *VoteShareBuilder) Err() error { return b.err }

// Build returns the vote share. Any further use of the builder fails with
// model.ErrBuilderSpent.
func (b *VoteShareBuilder) Build() (*VoteShare, error) {
	if b.spent {
		return nil, model.ErrBuilderSpent
	}
	b.spent = true
	if b.err != nil {
		return nil, b.err
	}
	share := &VoteShare{votes: b.votes}
	b.votes = nil
	return share, nil
}
