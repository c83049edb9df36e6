package selector

import (
	"iter"
	"slices"

	"github.com/votegrid/votegrid/election"
	"github.com/votegrid/votegrid/grid"
	"github.com/votegrid/votegrid/model"
	"github.com/votegrid/votegrid/tally"
)

// Channel names on which selectors publish.
const (
	ChannelVoters    = "Voters"
	ChannelGridCells = "GridCells"
	ChannelDistricts = "Districts"
	ChannelPrecincts = "Precincts"
	ChannelStatewide = "Statewide"
)

// Event is the payload carried on a selector channel. Each channel carries
// exactly one concrete event type.
type Event interface {
	isEvent()
}

var (
	_ Event = (*VotersEvent)(nil)
	_ Event = (*CellsEvent)(nil)
	_ Event = (*DistrictsEvent)(nil)
	_ Event = (*PrecinctsEvent)(nil)
	_ Event = (*StatewideEvent)(nil)
)

// VoterState pairs a voter with the cell it falls in under the active grid.
type VoterState struct {
	Voter model.Voter
	Cell  grid.Cell
}

// VotersEvent is sent on ChannelVoters.
type VotersEvent struct {
	voters []VoterState
}

func (*VotersEvent) isEvent() {}

// Len returns the number of voters in the event.
func (e *VotersEvent) Len() int { return len(e.voters) }

// All iterates over the voter states in population order.
func (e *VotersEvent) All() iter.Seq[VoterState] { return slices.Values(e.voters) }

// CellState is a single cell of the active grid.
type CellState struct {
	Cell grid.Cell
}

// CellsEvent is sent on ChannelGridCells.
type CellsEvent struct {
	rows, columns int
	cells         []CellState
}

func (*CellsEvent) isEvent() {}

// Rows returns the number of rows of the active grid.
func (e *CellsEvent) Rows() int { return e.rows }

// Columns returns the number of columns of the active grid.
func (e *CellsEvent) Columns() int { return e.columns }

// All iterates over the cells in row-major order.
func (e *CellsEvent) All() iter.Seq[CellState] { return slices.Values(e.cells) }

// DistrictState is the election result of one district of the active state.
type DistrictState struct {
	District *election.District
}

// DistrictsEvent is sent on ChannelDistricts.
type DistrictsEvent struct {
	districts []DistrictState
}

func (*DistrictsEvent) isEvent() {}

// Len returns the number of districts in the event.
func (e *DistrictsEvent) Len() int { return len(e.districts) }

// All iterates over the districts in the order the state lists them.
func (e *DistrictsEvent) All() iter.Seq[DistrictState] { return slices.Values(e.districts) }

// PrecinctState is the election result of one precinct, along with the
// district it was assigned to, if any.
type PrecinctState struct {
	Precinct *election.Precinct
	District model.District
	Assigned bool
}

// PrecinctsEvent is sent on ChannelPrecincts.
type PrecinctsEvent struct {
	precincts []PrecinctState
}

func (*PrecinctsEvent) isEvent() {}

// Len returns the number of precincts in the event.
func (e *PrecinctsEvent) Len() int { return len(e.precincts) }

// All iterates over the precincts in the order the state lists them.
func (e *PrecinctsEvent) All() iter.Seq[PrecinctState] { return slices.Values(e.precincts) }

// StatewideEvent is sent on ChannelStatewide.
type StatewideEvent struct {
	Votes *tally.VoteShare
}

func (*StatewideEvent) isEvent() {}
