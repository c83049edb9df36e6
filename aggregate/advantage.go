package aggregate

import (
	"cmp"
	"slices"

	"github.com/votegrid/votegrid/model"
)

// PartyAdvantage is the lead of one party over the runner-up in a district.
type PartyAdvantage struct {
	Leader   model.Party
	RunnerUp model.Party
	// Margin is the leader's votes minus the runner-up's, or the leader's votes
	// if no other party received any.
	Margin int64
}

// Advantage returns the leading party of the focused district and its margin
// over the runner-up. Parties with no votes are ignored, and parties are
// considered in order of name, so that among equal counts the first by name
// leads. ok is false when no party received votes.
func Advantage(e DistrictFocusEvent) (adv PartyAdvantage, ok bool) {
	if e.Votes == nil {
		return PartyAdvantage{}, false
	}
	parties := e.Votes.Parties()
	slices.SortStableFunc(parties, func(a, b model.Party) int { return cmp.Compare(a.Name, b.Name) })

	var leaderVotes, runnerUpVotes int64 = -1, -2
	for _, party := range parties {
		votes := e.Votes.Votes(party)
		if votes == 0 {
			continue
		}
		switch {
		case votes > leaderVotes:
			adv.RunnerUp, runnerUpVotes = adv.Leader, leaderVotes
			adv.Leader, leaderVotes = party, votes
		case votes > runnerUpVotes:
			adv.RunnerUp, runnerUpVotes = party, votes
		}
	}
	switch {
	case adv.Leader.IsZero():
		return PartyAdvantage{}, false
	case adv.RunnerUp.IsZero():
		adv.Margin = leaderVotes
	default:
		adv.Margin = leaderVotes - runnerUpVotes
	}
	return adv, true
}
