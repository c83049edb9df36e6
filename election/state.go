package election

import (
	"errors"

	"github.com/filecoin-project/go-bitfield"
	"github.com/votegrid/votegrid/model"
	"github.com/votegrid/votegrid/tally"
	"golang.org/x/xerrors"
)

// ErrOverlappingDistricts signals that a precinct was assigned to more than
// one district.
var ErrOverlappingDistricts = errors.New("precinct assigned to more than one district")

// State is the result of an election across a whole state: the statewide
// vote, the result in each district, and the precincts that make them up.
type State struct {
	statewide *tally.VoteShare
	districts []*District
	precincts []*Precinct
	// members holds, per district, the indices into precincts of the
	// precincts it contains.
	members map[model.District]bitfield.BitField
}

// Statewide returns the statewide vote.
func (s *State) Statewide() *tally.VoteShare { return s.statewide }

// Districts returns the district results in the order their ids were first
// added.
func (s *State) Districts() []*District {
	return append([]*District(nil), s.districts...)
}

// Precincts returns the precinct results in the order they were added.
func (s *State) Precincts() []*Precinct {
	return append([]*Precinct(nil), s.precincts...)
}

// PrecinctsOf returns the precincts assigned to district d.
func (s *State) PrecinctsOf(d model.District) ([]*Precinct, error) {
	bf, found := s.members[d]
	if !found {
		return nil, nil
	}
	indices, err := bf.All(uint64(len(s.precincts)))
	if err != nil {
		return nil, xerrors.Errorf("listing precincts of %s: %w", d, err)
	}
	precincts := make([]*Precinct, 0, len(indices))
	for _, i := range indices {
		precincts = append(precincts, s.precincts[i])
	}
	return precincts, nil
}

// DistrictOf returns the district precinct i is assigned to, if any.
func (s *State) DistrictOf(i int) (model.District, bool, error) {
	if i < 0 {
		return 0, false, nil
	}
	for _, d := range s.districts {
		bf, found := s.members[d.District]
		if !found {
			continue
		}
		set, err := bf.IsSet(uint64(i))
		if err != nil {
			return 0, false, xerrors.Errorf("checking precinct %d in %s: %w", i, d.District, err)
		}
		if set {
			return d.District, true, nil
		}
	}
	return 0, false, nil
}

// StateBuilder constructs a State. It may be built exactly once.
type StateBuilder struct {
	statewide   *tally.VoteShare
	districts   []*District
	byID        map[model.District]int
	precincts   []*Precinct
	assignments map[model.District][]uint64
	err         error
	spent       bool
}

// NewStateBuilder returns an empty builder.
func NewStateBuilder() *StateBuilder {
	return &StateBuilder{
		byID:        make(map[model.District]int),
		assignments: make(map[model.District][]uint64),
	}
}

func (b *StateBuilder) usable() bool {
	if b.spent {
		b.err = model.ErrBuilderSpent
		return false
	}
	return b.err == nil
}

// SetStatewide sets the statewide vote.
func (b *StateBuilder) SetStatewide(votes *tally.VoteShare) *StateBuilder {
	switch {
	case !b.usable():
	case votes == nil:
		b.err = xerrors.New("statewide votes are nil")
	default:
		b.statewide = votes
	}
	return b
}

// AddDistrict adds a district result. Adding a district whose id was already
// added replaces the earlier result in place.
func (b *StateBuilder) AddDistrict(d *District) *StateBuilder {
	switch {
	case !b.usable():
	case d == nil:
		b.err = xerrors.New("district is nil")
	default:
		if i, found := b.byID[d.District]; found {
			b.districts[i] = d
		} else {
			b.byID[d.District] = len(b.districts)
			b.districts = append(b.districts, d)
		}
	}
	return b
}

// AddPrecinct adds a precinct result. Its index is the number of precincts
// added before it.
func (b *StateBuilder) AddPrecinct(p *Precinct) *StateBuilder {
	switch {
	case !b.usable():
	case p == nil:
		b.err = xerrors.New("precinct is nil")
	default:
		b.precincts = append(b.precincts, p)
	}
	return b
}

// AssignPrecincts records that the precincts at the given indices belong to
// district d. Assignments are validated by Build.
func (b *StateBuilder) AssignPrecincts(d model.District, indices ...uint64) *StateBuilder {
	if b.usable() {
		b.assignments[d] = append(b.assignments[d], indices...)
	}
	return b
}

// Err reports the first error recorded by the builder, if any.
func (b *StateBuilder) Err() error { return b.err }

// Build returns the state. The statewide vote is required. Every assigned
// precinct index must refer to an added precinct, every assigned district must
// have been added, and no precinct may belong to two districts.
func (b *StateBuilder) Build() (*State, error) {
	if b.spent {
		return nil, model.ErrBuilderSpent
	}
	b.spent = true
	switch {
	case b.err != nil:
		return nil, b.err
	case b.statewide == nil:
		return nil, xerrors.Errorf("statewide votes: %w", ErrMissingField)
	}

	members := make(map[model.District]bitfield.BitField, len(b.assignments))
	claimed := bitfield.New()
	for _, d := range b.districts {
		indices, found := b.assignments[d.District]
		if !found {
			continue
		}
		for _, i := range indices {
			if i >= uint64(len(b.precincts)) {
				return nil, xerrors.Errorf("precinct index %d assigned to %s, but only %d precincts exist", i, d.District, len(b.precincts))
			}
		}
		bf := bitfield.NewFromSet(indices)
		overlap, err := bitfield.IntersectBitField(claimed, bf)
		if err != nil {
			return nil, xerrors.Errorf("checking precincts of %s: %w", d.District, err)
		}
		if empty, err := overlap.IsEmpty(); err != nil {
			return nil, xerrors.Errorf("checking precincts of %s: %w", d.District, err)
		} else if !empty {
			first, _ := overlap.First()
			return nil, xerrors.Errorf("precinct %d in %s: %w", first, d.District, ErrOverlappingDistricts)
		}
		if claimed, err = bitfield.MergeBitFields(claimed, bf); err != nil {
			return nil, xerrors.Errorf("merging precincts of %s: %w", d.District, err)
		}
		members[d.District] = bf
	}
	for d := range b.assignments {
		if _, found := b.byID[d]; !found {
			return nil, xerrors.Errorf("precincts assigned to %s, which was never added", d)
		}
	}

	return &State{
		statewide: b.statewide,
		districts: b.districts,
		precincts: b.precincts,
		members:   members,
	}, nil
}
