// Package aggregate tabulates the events published by selectors into
// election results, and narrows those results down to a focused district.
package aggregate

import (
	"slices"

	"github.com/votegrid/votegrid/model"
	"github.com/votegrid/votegrid/tally"
)

// PartyResult is the overall result of one party.
type PartyResult struct {
	// VotePercent is the fraction of all votes cast for the party, in [0, 1].
	VotePercent float64
	// Seats is the number of districts the party won.
	Seats int
}

// ResultEvent is an immutable snapshot of an election result: the votes cast
// in each district and each party's overall share and seats. It never shares
// state with the aggregator that produced it.
type ResultEvent struct {
	parties   []model.Party
	overall   map[model.Party]PartyResult
	districts []model.District
	votes     map[model.District]*tally.VoteShare
	winners   map[model.District]model.Party
}

// Parties returns the parties in the result, in the order they were first
// seen.
func (r *ResultEvent) Parties() []model.Party { return slices.Clone(r.parties) }

// Districts returns the districts in the result, in the order they were first
// seen.
func (r *ResultEvent) Districts() []model.District { return slices.Clone(r.districts) }

// NumDistricts returns the number of districts in the result.
func (r *ResultEvent) NumDistricts() int { return len(r.districts) }

// Party returns the overall result of party.
func (r *ResultEvent) Party(party model.Party) (PartyResult, bool) {
	pr, found := r.overall[party]
	return pr, found
}

// PartyPercent returns the fraction of all votes cast for party, or zero if
// the party is not in the result.
func (r *ResultEvent) PartyPercent(party model.Party) float64 { return r.overall[party].VotePercent }

// Seats returns the number of districts won by party.
func (r *ResultEvent) Seats(party model.Party) int { return r.overall[party].Seats }

// TotalSeats returns the sum of seats across all parties.
func (r *ResultEvent) TotalSeats() int {
	var total int
	for _, pr := range r.overall {
		total += pr.Seats
	}
	return total
}

// DistrictVotes returns the votes cast in district d.
func (r *ResultEvent) DistrictVotes(d model.District) (*tally.VoteShare, bool) {
	votes, found := r.votes[d]
	return votes, found
}

// DistrictVotersByParty returns the votes cast for party in district d, or
// zero if either is not in the result.
func (r *ResultEvent) DistrictVotersByParty(d model.District, party model.Party) int64 {
	votes, found := r.votes[d]
	if !found {
		return 0
	}
	return votes.Votes(party)
}

// Winner returns the party that won district d.
func (r *ResultEvent) Winner(d model.District) (model.Party, bool) {
	winner, found := r.winners[d]
	return winner, found
}

// resultBuilder assembles a ResultEvent. Parties and districts keep the order
// in which they are first touched.
type resultBuilder struct {
	event ResultEvent
}

func newResultBuilder() *resultBuilder {
	return &resultBuilder{event: ResultEvent{
		overall: make(map[model.Party]PartyResult),
		votes:   make(map[model.District]*tally.VoteShare),
		winners: make(map[model.District]model.Party),
	}}
}

func (b *resultBuilder) party(party model.Party, update func(*PartyResult)) {
	pr, found := b.event.overall[party]
	if !found {
		b.event.parties = append(b.event.parties, party)
	}
	update(&pr)
	b.event.overall[party] = pr
}

func (b *resultBuilder) district(d model.District, votes *tally.VoteShare, winner model.Party) {
	if _, found := b.event.votes[d]; !found {
		b.event.districts = append(b.event.districts, d)
	}
	b.event.votes[d] = votes
	if winner.IsZero() {
		delete(b.event.winners, d)
	} else {
		b.event.winners[d] = winner
	}
}

func (b *resultBuilder) build() *ResultEvent {
	e := b.event
	return &e
}
